package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	pkgerrors "github.com/albin6/cellsphere/pkg/errors"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// OrderMetrics counts order operations by outcome. Failures are labelled with
// the typed error code so stock and balance rejections are visible apart from
// internal faults.
type OrderMetrics struct {
	operations *prometheus.CounterVec
}

func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "operations_total",
		Help:      "Order operations by outcome and error code.",
	}, []string{"operation", "outcome", "code"})
	reg.MustRegister(operations)
	return &OrderMetrics{operations: operations}
}

// Observe records one operation result.
func (m *OrderMetrics) Observe(operation string, err error) {
	if m == nil || m.operations == nil {
		return
	}
	outcome, code := outcomeSuccess, ""
	if err != nil {
		outcome = outcomeFailure
		code = string(pkgerrors.CodeInternal)
		if typed := pkgerrors.As(err); typed != nil {
			code = string(typed.Code())
		}
	}
	m.operations.WithLabelValues(normalizeLabel(operation), outcome, code).Inc()
}
