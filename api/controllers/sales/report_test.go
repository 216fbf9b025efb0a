package sales

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	internalsales "github.com/albin6/cellsphere/internal/sales"
	"github.com/albin6/cellsphere/pkg/db/models"
	"github.com/albin6/cellsphere/pkg/enums"
)

type stubService struct {
	reportFn func(ctx context.Context, query internalsales.ReportQuery) (*internalsales.Report, error)
}

func (stubService) CreateEntry(context.Context, *gorm.DB, *models.Order, string) (*models.SalesReportEntry, error) {
	return nil, nil
}

func (stubService) PatchStatus(context.Context, *gorm.DB, uuid.UUID, uuid.UUID, string, enums.OrderStatus) error {
	return nil
}

func (stubService) PatchFinalAmount(context.Context, *gorm.DB, uuid.UUID, decimal.Decimal) error {
	return nil
}

func (s stubService) Report(ctx context.Context, query internalsales.ReportQuery) (*internalsales.Report, error) {
	return s.reportFn(ctx, query)
}

func TestReportDefaultsToDaily(t *testing.T) {
	svc := stubService{
		reportFn: func(_ context.Context, query internalsales.ReportQuery) (*internalsales.Report, error) {
			require.Equal(t, enums.SalesPeriodDaily, query.Period)
			require.Nil(t, query.Start)
			require.Nil(t, query.End)
			return &internalsales.Report{}, nil
		},
	}
	resp := httptest.NewRecorder()
	Report(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/admin/sales", nil))

	require.Equal(t, http.StatusOK, resp.Code)
}

func TestReportCustomRange(t *testing.T) {
	svc := stubService{
		reportFn: func(_ context.Context, query internalsales.ReportQuery) (*internalsales.Report, error) {
			require.Equal(t, enums.SalesPeriodCustom, query.Period)
			require.NotNil(t, query.Start)
			require.NotNil(t, query.End)
			require.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *query.Start)
			require.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), *query.End)
			return &internalsales.Report{TotalSalesCount: 2}, nil
		},
	}
	resp := httptest.NewRecorder()
	Report(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/?period=custom&startDate=2026-03-01&endDate=2026-03-31", nil))

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func TestReportRejectsBadInput(t *testing.T) {
	for _, target := range []string{"/?period=hourly", "/?period=custom&startDate=yesterday"} {
		resp := httptest.NewRecorder()
		Report(stubService{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusBadRequest, resp.Code, target)
	}
}
