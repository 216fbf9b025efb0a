package sales

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/albin6/cellsphere/pkg/db/dbtest"
	"github.com/albin6/cellsphere/pkg/db/models"
	"github.com/albin6/cellsphere/pkg/enums"
	pkgerrors "github.com/albin6/cellsphere/pkg/errors"
)

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T, conn *gorm.DB, bySKU bool) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repository:  NewRepository(conn),
		StatusBySKU: bySKU,
		Now:         func() time.Time { return now },
	})
	require.NoError(t, err)
	return svc
}

func sampleOrder(placedAt time.Time) *models.Order {
	productID := uuid.New()
	return &models.Order{
		ID:                     uuid.New(),
		UserID:                 uuid.New(),
		PaymentMethod:          enums.PaymentMethodRazorpay,
		PaymentStatus:          enums.PaymentStatusPaid,
		TotalAmount:            decimal.NewFromInt(2200),
		TotalPriceWithDiscount: decimal.NewFromInt(1980),
		CouponDiscount:         decimal.NewFromInt(20),
		PlacedAt:               placedAt,
		OrderItems: []models.OrderLine{
			{ProductID: productID, SKU: "PX-128", ProductName: "Pixel", Quantity: 2, Price: decimal.NewFromInt(1000), Discount: decimal.NewFromInt(10), OrderStatus: enums.OrderStatusPending},
			{ProductID: productID, SKU: "PX-256", ProductName: "Pixel", Quantity: 1, Price: decimal.NewFromInt(200), Discount: decimal.Zero, OrderStatus: enums.OrderStatusPending},
		},
	}
}

func TestCreateEntryBreakdown(t *testing.T) {
	conn := dbtest.Open(t)
	svc := newService(t, conn, false)
	order := sampleOrder(now.Add(-time.Hour))

	entry, err := svc.CreateEntry(context.Background(), conn, order, "Asha")
	require.NoError(t, err)
	require.Len(t, entry.Products, 2)
	require.True(t, entry.Products[0].TotalPrice.Equal(decimal.NewFromInt(2000)))
	require.True(t, entry.Products[0].Discount.Equal(decimal.NewFromInt(200)))
	require.True(t, entry.Discount.Equal(decimal.NewFromInt(200)))
	require.True(t, entry.FinalAmount.Equal(decimal.NewFromInt(1980)))
	require.Equal(t, enums.OrderStatusPending, entry.DeliveryStatus)

	_, err = svc.CreateEntry(context.Background(), nil, order, "Asha")
	require.Error(t, err)
}

func TestPatchStatusByProductTouchesEveryVariant(t *testing.T) {
	conn := dbtest.Open(t)
	svc := newService(t, conn, false)
	order := sampleOrder(now)
	_, err := svc.CreateEntry(context.Background(), conn, order, "Asha")
	require.NoError(t, err)

	require.NoError(t, svc.PatchStatus(context.Background(), conn, order.ID, order.OrderItems[0].ProductID, "PX-128", enums.OrderStatusCancelled))

	entry, err := NewRepository(conn).FindByOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCancelled, entry.DeliveryStatus)
	for _, p := range entry.Products {
		require.Equal(t, enums.OrderStatusCancelled, p.DeliveryStatus, p.SKU)
	}
}

func TestPatchStatusBySKU(t *testing.T) {
	conn := dbtest.Open(t)
	svc := newService(t, conn, true)
	order := sampleOrder(now)
	_, err := svc.CreateEntry(context.Background(), conn, order, "Asha")
	require.NoError(t, err)

	require.NoError(t, svc.PatchStatus(context.Background(), conn, order.ID, order.OrderItems[0].ProductID, "PX-256", enums.OrderStatusShipped))

	entry, err := NewRepository(conn).FindByOrder(context.Background(), order.ID)
	require.NoError(t, err)
	statuses := map[string]enums.OrderStatus{}
	for _, p := range entry.Products {
		statuses[p.SKU] = p.DeliveryStatus
	}
	require.Equal(t, enums.OrderStatusPending, statuses["PX-128"])
	require.Equal(t, enums.OrderStatusShipped, statuses["PX-256"])

	err = svc.PatchStatus(context.Background(), conn, uuid.New(), uuid.New(), "X", enums.OrderStatusShipped)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestPatchFinalAmount(t *testing.T) {
	conn := dbtest.Open(t)
	svc := newService(t, conn, false)
	order := sampleOrder(now)
	_, err := svc.CreateEntry(context.Background(), conn, order, "Asha")
	require.NoError(t, err)

	require.NoError(t, svc.PatchFinalAmount(context.Background(), conn, order.ID, decimal.NewFromInt(900)))
	entry, err := NewRepository(conn).FindByOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.True(t, entry.FinalAmount.Equal(decimal.NewFromInt(900)))

	err = svc.PatchFinalAmount(context.Background(), conn, uuid.New(), decimal.NewFromInt(1))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestReportPeriods(t *testing.T) {
	conn := dbtest.Open(t)
	svc := newService(t, conn, false)
	ctx := context.Background()

	for _, placed := range []time.Time{
		now.Add(-2 * time.Hour),
		now.AddDate(0, 0, -3),
		now.AddDate(0, 0, -20),
		now.AddDate(0, -3, 0),
	} {
		_, err := svc.CreateEntry(ctx, conn, sampleOrder(placed), "Asha")
		require.NoError(t, err)
	}

	cases := []struct {
		query ReportQuery
		count int
	}{
		{ReportQuery{Period: enums.SalesPeriodDaily}, 1},
		{ReportQuery{Period: enums.SalesPeriodWeekly}, 2},
		{ReportQuery{Period: enums.SalesPeriodMonthly}, 3},
		{ReportQuery{Period: enums.SalesPeriodAll}, 4},
	}
	for _, tc := range cases {
		report, err := svc.Report(ctx, tc.query)
		require.NoError(t, err)
		require.Equal(t, tc.count, report.TotalSalesCount, tc.query.Period)
		require.True(t, report.TotalOrderAmount.Equal(decimal.NewFromInt(int64(1980*tc.count))))
		require.True(t, report.TotalDiscount.Equal(decimal.NewFromInt(int64(220*tc.count))))
	}

	start := now.AddDate(0, 0, -20)
	end := now.AddDate(0, 0, -3)
	report, err := svc.Report(ctx, ReportQuery{Period: enums.SalesPeriodCustom, Start: &start, End: &end})
	require.NoError(t, err)
	require.Equal(t, 2, report.TotalSalesCount)

	_, err = svc.Report(ctx, ReportQuery{Period: enums.SalesPeriodCustom})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = svc.Report(ctx, ReportQuery{Period: "yearly"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
