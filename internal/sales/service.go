package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/albin6/cellsphere/pkg/db/models"
	"github.com/albin6/cellsphere/pkg/enums"
	pkgerrors "github.com/albin6/cellsphere/pkg/errors"
)

// Service maintains the denormalized sales record.
type Service interface {
	CreateEntry(ctx context.Context, tx *gorm.DB, order *models.Order, customerName string) (*models.SalesReportEntry, error)
	PatchStatus(ctx context.Context, tx *gorm.DB, orderID, productID uuid.UUID, sku string, status enums.OrderStatus) error
	PatchFinalAmount(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, amount decimal.Decimal) error
	Report(ctx context.Context, query ReportQuery) (*Report, error)
}

type ServiceParams struct {
	Repository Repository
	// StatusBySKU narrows status patches to (order, sku) instead of (order, product).
	StatusBySKU bool
	Now         func() time.Time
}

type service struct {
	repo        Repository
	statusBySKU bool
	now         func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repository, statusBySKU: params.StatusBySKU, now: now}, nil
}

// CreateEntry writes the single report row for a freshly placed order. Each
// breakdown row carries the line's offer discount on its total and the
// order-level coupon deduction.
func (s *service) CreateEntry(ctx context.Context, tx *gorm.DB, order *models.Order, customerName string) (*models.SalesReportEntry, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required to record sale")
	}
	if order == nil || len(order.OrderItems) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order has no lines")
	}

	hundred := decimal.NewFromInt(100)
	entry := &models.SalesReportEntry{
		OrderID:         order.ID,
		CustomerID:      order.UserID,
		CustomerName:    customerName,
		PaymentMethod:   order.PaymentMethod,
		OrderDate:       order.PlacedAt,
		FinalAmount:     order.TotalPriceWithDiscount,
		Discount:        decimal.Zero,
		CouponDeduction: order.CouponDiscount,
		DeliveryStatus:  order.OrderItems[0].OrderStatus,
	}
	for _, line := range order.OrderItems {
		total := line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		discount := total.Mul(line.Discount).Div(hundred).Round(2)
		entry.Discount = entry.Discount.Add(discount)
		entry.Products = append(entry.Products, models.SalesReportProduct{
			OrderID:         order.ID,
			ProductID:       line.ProductID,
			SKU:             line.SKU,
			ProductName:     line.ProductName,
			Quantity:        line.Quantity,
			UnitPrice:       line.Price,
			TotalPrice:      total,
			Discount:        discount,
			CouponDeduction: order.CouponDiscount,
			DeliveryStatus:  line.OrderStatus,
		})
	}

	if err := s.repo.WithTx(tx).Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sales entry")
	}
	return entry, nil
}

// PatchStatus mirrors a line status change onto the report. A missing entry
// fails the caller's transaction.
func (s *service) PatchStatus(ctx context.Context, tx *gorm.DB, orderID, productID uuid.UUID, sku string, status enums.OrderStatus) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required to patch sale")
	}
	match := ProductMatch{ProductID: productID}
	if s.statusBySKU {
		match.SKU = sku
	}
	n, err := s.repo.WithTx(tx).PatchProductStatus(ctx, orderID, match, status)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "patch sales status")
	}
	if n == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "sales entry not found").
			WithDetails(map[string]any{"order_id": orderID, "product": productID})
	}
	return nil
}

func (s *service) PatchFinalAmount(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, amount decimal.Decimal) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required to patch sale")
	}
	n, err := s.repo.WithTx(tx).PatchFinalAmount(ctx, orderID, amount)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "patch sales amount")
	}
	if n == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "sales entry not found")
	}
	return nil
}

func (s *service) Report(ctx context.Context, query ReportQuery) (*Report, error) {
	window, err := s.windowFor(query)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.ListBetween(ctx, window)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
	}
	if entries == nil {
		entries = []models.SalesReportEntry{}
	}

	report := &Report{
		Reports:          entries,
		TotalSalesCount:  len(entries),
		TotalOrderAmount: decimal.Zero,
		TotalDiscount:    decimal.Zero,
	}
	for _, entry := range entries {
		report.TotalOrderAmount = report.TotalOrderAmount.Add(entry.FinalAmount)
		report.TotalDiscount = report.TotalDiscount.Add(entry.Discount).Add(entry.CouponDeduction)
	}
	return report, nil
}

func (s *service) windowFor(query ReportQuery) (Window, error) {
	now := s.now().UTC()
	switch query.Period {
	case enums.SalesPeriodDaily, "":
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return Window{From: start, To: now}, nil
	case enums.SalesPeriodWeekly:
		return Window{From: now.AddDate(0, 0, -7), To: now}, nil
	case enums.SalesPeriodMonthly:
		return Window{From: now.AddDate(0, -1, 0), To: now}, nil
	case enums.SalesPeriodAll:
		return Window{}, nil
	case enums.SalesPeriodCustom:
		if query.Start == nil || query.End == nil {
			return Window{}, pkgerrors.New(pkgerrors.CodeValidation, "startDate and endDate are required for a custom period")
		}
		start := query.Start.UTC()
		end := query.End.UTC()
		from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
		to := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, int(time.Millisecond*999), time.UTC)
		if to.Before(from) {
			return Window{}, pkgerrors.New(pkgerrors.CodeValidation, "endDate must not be before startDate")
		}
		return Window{From: from, To: to, Inclusive: true}, nil
	default:
		return Window{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid period").
			WithDetails(map[string]any{"period": query.Period})
	}
}
