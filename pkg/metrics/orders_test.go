package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/albin6/cellsphere/pkg/errors"
)

func TestOrderMetricsLabelsByCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrderMetrics(reg)

	m.Observe("place_order", nil)
	m.Observe("place_order", pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock"))
	m.Observe("place_order", errors.New("boom"))

	mfs, err := reg.Gather()
	require.NoError(t, err)

	name := "cellsphere_orders_operations_total"
	require.Equal(t, 1.0, counterValue(t, mfs, name, map[string]string{"operation": "place_order", "outcome": "success", "code": ""}))
	require.Equal(t, 1.0, counterValue(t, mfs, name, map[string]string{"operation": "place_order", "outcome": "failure", "code": "INSUFFICIENT_STOCK"}))
	require.Equal(t, 1.0, counterValue(t, mfs, name, map[string]string{"operation": "place_order", "outcome": "failure", "code": "INTERNAL_ERROR"}))
}
