package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestCronJobMetricsExportsRunsAndDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)
	job := "otp_cleanup"
	m.ObserveDuration(job, 250*time.Millisecond)
	m.IncSuccess(job)
	m.IncSuccess(job)
	m.IncFailure(job)
	m.AddAffected(job, 7)
	m.AddAffected(job, 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	require.Equal(t, 2.0, counterValue(t, mfs, "cellsphere_cron_job_runs_total", map[string]string{"job": job, "outcome": "success"}))
	require.Equal(t, 1.0, counterValue(t, mfs, "cellsphere_cron_job_runs_total", map[string]string{"job": job, "outcome": "failure"}))
	require.Equal(t, 7.0, counterValue(t, mfs, "cellsphere_cron_rows_affected_total", map[string]string{"job": job}))

	hist := findMetric(t, mfs, "cellsphere_cron_job_duration_seconds", map[string]string{"job": job})
	require.Greater(t, hist.GetHistogram().GetSampleSum(), 0.0)
}

func TestNilRegistererIsNoop(t *testing.T) {
	m := NewCronJobMetrics(nil)
	m.IncSuccess("x")
	m.ObserveDuration("x", time.Second)

	var nilMetrics *CronJobMetrics
	nilMetrics.IncFailure("x")

	NewOrderMetrics(nil).Observe("place_order", nil)
}

func counterValue(t *testing.T, mfs []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	return findMetric(t, mfs, name, labels).GetCounter().GetValue()
}

func findMetric(t *testing.T, mfs []*dto.MetricFamily, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if matchesLabels(metric.GetLabel(), labels) {
				return metric
			}
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
