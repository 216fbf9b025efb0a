package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/albin6/cellsphere/internal/cart"
	"github.com/albin6/cellsphere/internal/coupons"
	"github.com/albin6/cellsphere/internal/products"
	"github.com/albin6/cellsphere/internal/sales"
	"github.com/albin6/cellsphere/internal/stock"
	"github.com/albin6/cellsphere/internal/wallet"
	"github.com/albin6/cellsphere/pkg/config"
	"github.com/albin6/cellsphere/pkg/db"
	"github.com/albin6/cellsphere/pkg/db/dbtest"
	"github.com/albin6/cellsphere/pkg/db/models"
	"github.com/albin6/cellsphere/pkg/enums"
	pkgerrors "github.com/albin6/cellsphere/pkg/errors"
	"github.com/albin6/cellsphere/pkg/outbox"
	"github.com/albin6/cellsphere/pkg/pagination"
	"github.com/albin6/cellsphere/pkg/types"
)

var placedAt = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

type observed struct {
	operation string
	err       error
}

type recordingObserver struct {
	calls []observed
}

func (r *recordingObserver) Observe(operation string, err error) {
	r.calls = append(r.calls, observed{operation: operation, err: err})
}

type fixture struct {
	svc      Service
	db       *gorm.DB
	wallet   wallet.Ledger
	coupons  coupons.Service
	metrics  *recordingObserver
	now      *time.Time
	category models.Category
	phone    models.Product
	case_    models.Product
	user     uuid.UUID
}

func newFixture(t *testing.T, mutate ...func(*config.OrderPolicyConfig)) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	tx := db.NewFromGorm(conn)
	now := placedAt
	clock := func() time.Time { return now }

	policy := config.DefaultOrderPolicy()
	for _, fn := range mutate {
		fn(&policy)
	}

	walletLedger := wallet.NewLedger(conn)
	events := outbox.NewService(outbox.NewRepository(conn), nil)
	walletSvc, err := wallet.NewService(walletLedger, tx, events)
	require.NoError(t, err)
	couponSvc, err := coupons.NewService(coupons.ServiceParams{Repository: coupons.NewRepository(conn), Tx: tx, Now: clock})
	require.NoError(t, err)
	cartSvc, err := cart.NewService(cart.NewRepository(conn))
	require.NoError(t, err)
	salesSvc, err := sales.NewService(sales.ServiceParams{Repository: sales.NewRepository(conn), Now: clock})
	require.NoError(t, err)

	metrics := &recordingObserver{}
	svc, err := NewService(ServiceParams{
		Repository: NewRepository(conn),
		Tx:         tx,
		Outbox:     events,
		Catalog:    products.NewRepository(conn),
		Stock:      stock.NewLedger(conn),
		Wallet:     walletLedger,
		Refunds:    walletSvc,
		Coupons:    couponSvc,
		Cart:       cartSvc,
		Sales:      salesSvc,
		Policy:     policy,
		Metrics:    metrics,
		Now:        clock,
	})
	require.NoError(t, err)

	category := dbtest.SeedCategory(t, conn, "Phones")
	return &fixture{
		svc:      svc,
		db:       conn,
		wallet:   walletLedger,
		coupons:  couponSvc,
		metrics:  metrics,
		now:      &now,
		category: category,
		phone:    dbtest.SeedProduct(t, conn, "Pixel X", category.ID, "10", dbtest.VariantSpec{SKU: "PX-128", Price: "1000", Stock: 5}),
		case_:    dbtest.SeedProduct(t, conn, "Slim Case", category.ID, "0", dbtest.VariantSpec{SKU: "SC-1", Price: "200", Stock: 1}),
		user:     uuid.New(),
	}
}

func (f *fixture) fund(t *testing.T, amount string) {
	t.Helper()
	_, err := f.wallet.Credit(context.Background(), f.user, dec(amount), enums.TransactionCompleted, nil)
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T) decimal.Decimal {
	t.Helper()
	w, err := f.wallet.GetOrCreate(context.Background(), f.user)
	require.NoError(t, err)
	return w.Balance
}

func (f *fixture) order(t *testing.T, id uuid.UUID) *models.Order {
	t.Helper()
	order, err := f.svc.GetOrder(context.Background(), Viewer{Admin: true}, id)
	require.NoError(t, err)
	return order
}

func (f *fixture) eventCount(t *testing.T, eventType enums.OutboxEventType) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.OutboxEvent{}).Where("event_type = ?", eventType).Count(&n).Error)
	return n
}

func (f *fixture) place(t *testing.T, method enums.PaymentMethod, status string, lines ...DraftLine) uuid.UUID {
	t.Helper()
	id, err := f.svc.PlaceOrder(context.Background(), f.user, draft(method, status, lines...))
	require.NoError(t, err)
	return id
}

func (f *fixture) deliver(t *testing.T, id uuid.UUID, sku string) {
	t.Helper()
	for _, status := range []enums.OrderStatus{enums.OrderStatusShipped, enums.OrderStatusDelivered} {
		_, err := f.svc.UpdateOrderLineStatus(context.Background(), id, ref(sku), status)
		require.NoError(t, err)
	}
}

func draft(method enums.PaymentMethod, status string, lines ...DraftLine) OrderDraft {
	return OrderDraft{
		PaymentMethod: method.String(),
		PaymentStatus: status,
		ShippingAddress: &types.ShippingAddress{
			Name:    "Asha Menon",
			Phone:   "9876543210",
			Line1:   "12 MG Road",
			City:    "Kochi",
			State:   "Kerala",
			Pincode: "682001",
		},
		OrderItems: lines,
	}
}

func ref(sku string) LineRef {
	return LineRef{SKU: sku}
}

func lineOf(t *testing.T, order *models.Order, sku string) *models.OrderLine {
	t.Helper()
	lines := order.MatchLines(uuid.Nil, sku)
	require.Len(t, lines, 1)
	return lines[0]
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestPlaceOrderWalletDebitsAndReserves(t *testing.T) {
	f := newFixture(t)
	f.fund(t, "2000")
	ctx := context.Background()

	id := f.place(t, enums.PaymentMethodWallet, "", DraftLine{Product: f.phone.ID, Variant: "PX-128", Quantity: 2})

	order := f.order(t, id)
	require.Equal(t, enums.PaymentStatusPaid, order.PaymentStatus)
	require.True(t, order.TotalAmount.Equal(dec("2000")))
	require.True(t, order.TotalPriceWithDiscount.Equal(dec("1800")))
	require.Equal(t, "Asha Menon", order.CustomerName)
	require.True(t, order.DeliveryBy.Equal(placedAt.AddDate(0, 0, 7)))
	require.Len(t, order.OrderItems, 1)
	require.Equal(t, enums.OrderStatusPending, order.OrderItems[0].OrderStatus)

	require.Equal(t, 3, dbtest.VariantStock(t, f.db, f.phone.ID, "PX-128"))
	require.Equal(t, 2, dbtest.QuantitySold(t, f.db, f.phone.ID))
	require.True(t, f.balance(t).Equal(dec("200")))
	require.Equal(t, int64(1), f.eventCount(t, enums.EventOrderPlaced))

	var entry models.SalesReportEntry
	require.NoError(t, f.db.WithContext(ctx).Where("order_id = ?", id).First(&entry).Error)
	require.True(t, entry.FinalAmount.Equal(dec("1800")))

	require.Equal(t, "place_order", f.metrics.calls[0].operation)
	require.NoError(t, f.metrics.calls[0].err)
}

func TestPlaceOrderRejectsWholeOrderOnShortStock(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PlaceOrder(context.Background(), f.user, draft(enums.PaymentMethodCOD, "",
		DraftLine{Product: f.phone.ID, Variant: "PX-128", Quantity: 1},
		DraftLine{Product: f.case_.ID, Variant: "SC-1", Quantity: 3},
	))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock))

	require.Equal(t, 5, dbtest.VariantStock(t, f.db, f.phone.ID, "PX-128"))
	require.Equal(t, 1, dbtest.VariantStock(t, f.db, f.case_.ID, "SC-1"))

	var orders int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&orders).Error)
	require.Zero(t, orders)
	require.Zero(t, f.eventCount(t, enums.EventOrderPlaced))
}

func TestPlaceOrderRollsBackOnInsufficientBalance(t *testing.T) {
	f := newFixture(t, func(p *config.OrderPolicyConfig) { p.WalletCheckFirst = false })
	f.fund(t, "100")

	_, err := f.svc.PlaceOrder(context.Background(), f.user, draft(enums.PaymentMethodWallet, "",
		DraftLine{Product: f.phone.ID, Variant: "PX-128", Quantity: 1},
	))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientBalance))
	require.Equal(t, 5, dbtest.VariantStock(t, f.db, f.phone.ID, "PX-128"))
	require.Zero(t, dbtest.QuantitySold(t, f.db, f.phone.ID))
	require.True(t, f.balance(t).Equal(dec("100")))
}

func TestPlaceOrderCODCeiling(t *testing.T) {
	f := newFixture(t)
	fold := dbtest.SeedProduct(t, f.db, "Fold Z", f.category.ID, "0", dbtest.VariantSpec{SKU: "FZ-1", Price: "20000", Stock: 2})

	_, err := f.svc.PlaceOrder(context.Background(), f.user, draft(enums.PaymentMethodCOD, "",
		DraftLine{Product: fold.ID, Variant: "FZ-1", Quantity: 1},
	))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	require.Equal(t, 2, dbtest.VariantStock(t, f.db, fold.ID, "FZ-1"))
}

func TestPlaceOrderValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.PlaceOrder(ctx, f.user, draft(enums.PaymentMethodCOD, ""))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	bad := draft("Cheque", "", DraftLine{Product: f.phone.ID, Variant: "PX-128", Quantity: 1})
	_, err = f.svc.PlaceOrder(ctx, f.user, bad)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	dup := draft(enums.PaymentMethodCOD, "",
		DraftLine{Product: f.phone.ID, Variant: "PX-128", Quantity: 1},
		DraftLine{Product: f.phone.ID, Variant: "PX-128", Quantity: 1},
	)
	_, err = f.svc.PlaceOrder(ctx, f.user, dup)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.PlaceOrder(ctx, f.user, draft(enums.PaymentMethodCOD, "", DraftLine{Product: f.phone.ID, Variant: "PX-999", Quantity: 1}))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.PlaceOrder(ctx, uuid.Nil, draft(enums.PaymentMethodCOD, "", DraftLine{Product: f.phone.ID, Variant: "PX-128", Quantity: 1}))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestPlaceOrderAppliesCouponAndPrunesCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	coupon, err := f.coupons.Create(ctx, coupons.CouponInput{
		Code:               "PHONE10",
		Description:        "phones",
		DiscountType:       enums.DiscountPercentage,
		DiscountValue:      dec("10"),
		MinPurchaseAmount:  dec("100"),
		UsageLimit:         1,
		ExpirationDate:     placedAt.Add(48 * time.Hour),
		EligibleCategories: []uuid.UUID{f.category.ID},
	})
	require.NoError(t, err)

	cartRow := models.Cart{UserID: f.user, TotalAmount: dec("1100")}
	cartRow.Items = []models.CartItem{
		{ProductID: f.phone.ID, VariantSKU: "PX-128", Quantity: 1, Price: dec("900"), TotalPrice: dec("900")},
		{ProductID: f.case_.ID, VariantSKU: "SC-1", Quantity: 1, Price: dec("200"), TotalPrice: dec("200")},
	}
	require.NoError(t, f.db.Create(&cartRow).Error)

	code := "phone10"
	d := draft(enums.PaymentMethodRazorpay, "Paid", DraftLine{Product: f.phone.ID, Variant: "PX-128", Quantity: 1})
	d.CouponCode = &code
	id, err := f.svc.PlaceOrder(ctx, f.user, d)
	require.NoError(t, err)

	order := f.order(t, id)
	require.Equal(t, enums.PaymentStatusPaid, order.PaymentStatus)
	require.NotNil(t, order.CouponCode)
	require.Equal(t, coupon.Code, *order.CouponCode)
	require.True(t, order.CouponDiscount.Equal(dec("90")))
	require.True(t, order.TotalPriceWithDiscount.Equal(dec("810")))

	var items []models.CartItem
	require.NoError(t, f.db.Where("cart_id = ?", cartRow.ID).Find(&items).Error)
	require.Len(t, items, 1)
	require.Equal(t, "SC-1", items[0].VariantSKU)

	_, err = f.svc.PlaceOrder(ctx, f.user, d)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeCouponIneligible))
}

func TestAdminCancelDeliveredRefundsOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.place(t, enums.PaymentMethodRazorpay, "Paid", DraftLine{Product: f.phone.ID, Variant: "PX-128", Quantity: 1})

	_, err := f.svc.UpdateOrderLineStatus(ctx, id, ref("PX-128"), enums.OrderStatusShipped)
	require.NoError(t, err)
	_, err = f.svc.UpdateOrderLineStatus(ctx, id, ref("PX-128"), enums.OrderStatusDelivered)
	require.NoError(t, err)
	require.Equal(t, int64(2), f.eventCount(t, enums.EventOrderLineStatus))

	order, err := f.svc.UpdateOrderLineStatus(ctx, id, ref("PX-128"), enums.OrderStatusCancelled)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCancelled, lineOf(t, order, "PX-128").OrderStatus)

	require.True(t, f.balance(t).Equal(dec("900")))
	require.Equal(t, 5, dbtest.VariantStock(t, f.db, f.phone.ID, "PX-128"))

	var entry models.SalesReportEntry
	require.NoError(t, f.db.Where("order_id = ?", id).First(&entry).Error)
	require.True(t, entry.FinalAmount.Equal(dec("900")))
	require.Equal(t, enums.OrderStatusCancelled, entry.DeliveryStatus)

	_, err = f.svc.UpdateOrderLineStatus(ctx, id, ref("PX-128"), enums.OrderStatusShipped)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition))
}

func TestAdminDeliveredBlockedWhenPaymentFailed(t *testing.T) {
	f := newFixture(t)
	id := f.place(t, enums.PaymentMethodRazorpay, "Failed", DraftLine{Product: f.phone.ID, Variant: "PX-128", Quantity: 1})

	_, err := f.svc.UpdateOrderLineStatus(context.Background(), id, ref("PX-128"), enums.OrderStatusShipped)
	require.NoError(t, err)
	_, err = f.svc.UpdateOrderLineStatus(context.Background(), id, ref("PX-128"), enums.OrderStatusDelivered)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition))

	_, err = f.svc.UpdateOrderLineStatus(context.Background(), id, ref("PX-128"), enums.OrderStatusCancelled)
	require.NoError(t, err)
	require.True(t, f.balance(t).IsZero())
}

func TestCustomerCancelIsOnce(t *testing.T) {
	f := newFixture(t)
	f.fund(t, "2000")
	ctx := context.Background()
	id := f.place(t, enums.PaymentMethodWallet, "", DraftLine{Product: f.phone.ID, Variant: "PX-128", Quantity: 2})
	require.True(t, f.balance(t).Equal(dec("200")))
	require.Equal(t, 3, dbtest.VariantStock(t, f.db, f.phone.ID, "PX-128"))

	require.NoError(t, f.svc.CancelOrderLine(ctx, f.user, id, ref("PX-128")))
	require.Equal(t, 5, dbtest.VariantStock(t, f.db, f.phone.ID, "PX-128"))
	require.True(t, f.balance(t).Equal(dec("1100")))

	err := f.svc.CancelOrderLine(ctx, f.user, id, ref("PX-128"))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition))
	require.Equal(t, 5, dbtest.VariantStock(t, f.db, f.phone.ID, "PX-128"))
	require.True(t, f.balance(t).Equal(dec("1100")))
	require.Equal(t, int64(1), f.eventCount(t, enums.EventOrderLineCancelled))
}

func TestCustomerCancelRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.place(t, enums.PaymentMethodCOD, "", DraftLine{Product: f.phone.ID, Variant: "PX-128", Quantity: 1})

	err := f.svc.CancelOrderLine(ctx, uuid.New(), id, ref("PX-128"))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	err = f.svc.CancelOrderLine(ctx, f.user, id, ref("NOPE"))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	err = f.svc.CancelOrderLine(ctx, f.user, id, ref(""))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	f.deliver(t, id, "PX-128")
	err = f.svc.CancelOrderLine(ctx, f.user, id, ref("PX-128"))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition))
}

func TestCODCancelDoesNotRefund(t *testing.T) {
	f := newFixture(t)
	id := f.place(t, enums.PaymentMethodCOD, "", DraftLine{Product: f.phone.ID, Variant: "PX-128", Quantity: 1})

	require.NoError(t, f.svc.CancelOrderLine(context.Background(), f.user, id, ref("PX-128")))
	require.True(t, f.balance(t).IsZero())
	require.Equal(t, 5, dbtest.VariantStock(t, f.db, f.phone.ID, "PX-128"))
}

func TestReturnApprovedFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.place(t, enums.PaymentMethodRazorpay, "Paid", DraftLine{Product: f.phone.ID, Variant: "PX-128", Quantity: 1})
	f.deliver(t, id, "PX-128")

	input := ReturnInput{LineRef: ref("PX-128"), Reason: "Screen flicker", Comment: "after two days"}
	require.NoError(t, f.svc.RequestReturn(ctx, f.user, id, input))
	require.Equal(t, int64(1), f.eventCount(t, enums.EventReturnRequested))

	line := lineOf(t, f.order(t, id), "PX-128")
	require.Equal(t, enums.OrderStatusReturnRequested, line.OrderStatus)
	require.True(t, line.ReturnRequest.Requested)
	require.Equal(t, "Screen flicker", line.ReturnRequest.Reason)

	err := f.svc.RequestReturn(ctx, f.user, id, input)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition))

	require.NoError(t, f.svc.RespondToReturn(ctx, id, ref("PX-128"), true))
	line = lineOf(t, f.order(t, id), "PX-128")
	require.Equal(t, enums.OrderStatusReturned, line.OrderStatus)
	require.NotNil(t, line.ReturnRequest.Approved)
	require.True(t, *line.ReturnRequest.Approved)
	require.True(t, line.ReturnRequest.ResponseSent)
	require.True(t, f.balance(t).Equal(dec("900")))
	require.Equal(t, 5, dbtest.VariantStock(t, f.db, f.phone.ID, "PX-128"))

	err = f.svc.RespondToReturn(ctx, id, ref("PX-128"), true)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition))
	require.True(t, f.balance(t).Equal(dec("900")))
}

func TestReturnRejectedRestoresDelivered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.place(t, enums.PaymentMethodRazorpay, "Paid", DraftLine{Product: f.phone.ID, Variant: "PX-128", Quantity: 1})
	f.deliver(t, id, "PX-128")
	require.NoError(t, f.svc.RequestReturn(ctx, f.user, id, ReturnInput{LineRef: ref("PX-128"), Reason: "Changed mind"}))

	require.NoError(t, f.svc.RespondToReturn(ctx, id, ref("PX-128"), false))
	line := lineOf(t, f.order(t, id), "PX-128")
	require.Equal(t, enums.OrderStatusDelivered, line.OrderStatus)
	require.False(t, *line.ReturnRequest.Approved)
	require.True(t, f.balance(t).IsZero())
	require.Equal(t, 4, dbtest.VariantStock(t, f.db, f.phone.ID, "PX-128"))
	require.Equal(t, int64(1), f.eventCount(t, enums.EventReturnResolved))

	err := f.svc.RequestReturn(ctx, f.user, id, ReturnInput{LineRef: ref("PX-128"), Reason: "Again"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition))
}

func TestReturnWindowAndStatusChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.place(t, enums.PaymentMethodRazorpay, "Paid", DraftLine{Product: f.phone.ID, Variant: "PX-128", Quantity: 1})

	err := f.svc.RequestReturn(ctx, f.user, id, ReturnInput{LineRef: ref("PX-128"), Reason: "early"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition))

	f.deliver(t, id, "PX-128")

	*f.now = placedAt.Add(8 * 24 * time.Hour)
	err = f.svc.RequestReturn(ctx, f.user, id, ReturnInput{LineRef: ref("PX-128"), Reason: "late"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition))

	err = f.svc.RespondToReturn(ctx, id, ref("PX-128"), true)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition))
}

func TestListUserOrdersReturnEligibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.place(t, enums.PaymentMethodCOD, "", DraftLine{Product: f.phone.ID, Variant: "PX-128", Quantity: 1})
	*f.now = placedAt.Add(time.Hour)
	second := f.place(t, enums.PaymentMethodCOD, "", DraftLine{Product: f.case_.ID, Variant: "SC-1", Quantity: 1})
	f.deliver(t, first, "PX-128")

	list, err := f.svc.ListUserOrders(ctx, f.user)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, second, list[0].ID)
	require.Equal(t, first, list[1].ID)

	require.False(t, list[0].OrderItems[0].ReturnEligible)
	require.Equal(t, "Not eligible to return", list[0].OrderItems[0].ReturnMessage)
	require.True(t, list[1].OrderItems[0].ReturnEligible)
	require.Equal(t, "Eligible for return", list[1].OrderItems[0].ReturnMessage)

	other, err := f.svc.ListUserOrders(ctx, uuid.New())
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestGetOrderHidesForeignOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.place(t, enums.PaymentMethodCOD, "", DraftLine{Product: f.phone.ID, Variant: "PX-128", Quantity: 1})

	_, err := f.svc.GetOrder(ctx, Viewer{UserID: uuid.New()}, id)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	order, err := f.svc.GetOrder(ctx, Viewer{UserID: f.user}, id)
	require.NoError(t, err)
	require.Equal(t, id, order.ID)

	_, err = f.svc.GetOrder(ctx, Viewer{Admin: true}, uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListOrdersPaginates(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		*f.now = placedAt.Add(time.Duration(i) * time.Minute)
		f.place(t, enums.PaymentMethodCOD, "", DraftLine{Product: f.phone.ID, Variant: "PX-128", Quantity: 1})
	}

	list, err := f.svc.ListOrders(context.Background(), pagination.Params{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	require.Equal(t, int64(3), list.Total)
	require.Equal(t, 2, list.TotalPages)
	require.Equal(t, 2, list.CurrentPage)
	require.Equal(t, "Asha Menon", list.Orders[0].UserFullName)
}

func TestCancelUnpaidOnlineOrderRestocksWithoutRefund(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.place(t, enums.PaymentMethodRazorpay, "", DraftLine{Product: f.phone.ID, Variant: "PX-128", Quantity: 1})
	require.Equal(t, enums.PaymentStatusPending, f.order(t, id).PaymentStatus)
	require.Equal(t, 4, dbtest.VariantStock(t, f.db, f.phone.ID, "PX-128"))

	require.NoError(t, f.svc.CancelOrderLine(ctx, f.user, id, ref("PX-128")))
	require.True(t, f.balance(t).IsZero())
	require.Equal(t, 5, dbtest.VariantStock(t, f.db, f.phone.ID, "PX-128"))

	var credits int64
	require.NoError(t, f.db.Model(&models.WalletTransaction{}).Count(&credits).Error)
	require.Zero(t, credits)
}

func TestRefundCODOnlyAfterCashCollected(t *testing.T) {
	f := newFixture(t, func(p *config.OrderPolicyConfig) { p.RefundCOD = true })
	ctx := context.Background()

	early := f.place(t, enums.PaymentMethodCOD, "", DraftLine{Product: f.phone.ID, Variant: "PX-128", Quantity: 1})
	require.NoError(t, f.svc.CancelOrderLine(ctx, f.user, early, ref("PX-128")))
	require.True(t, f.balance(t).IsZero())

	delivered := f.place(t, enums.PaymentMethodCOD, "", DraftLine{Product: f.phone.ID, Variant: "PX-128", Quantity: 1})
	f.deliver(t, delivered, "PX-128")
	_, err := f.svc.UpdateOrderLineStatus(ctx, delivered, ref("PX-128"), enums.OrderStatusCancelled)
	require.NoError(t, err)
	require.True(t, f.balance(t).Equal(dec("900")))
}

func TestSameSKUUnderTwoProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tablet := dbtest.SeedProduct(t, f.db, "Pixel Tab", f.category.ID, "0", dbtest.VariantSpec{SKU: "PX-128", Price: "500", Stock: 3})

	id := f.place(t, enums.PaymentMethodCOD, "",
		DraftLine{Product: f.phone.ID, Variant: "PX-128", Quantity: 1},
		DraftLine{Product: tablet.ID, Variant: "PX-128", Quantity: 2},
	)
	order := f.order(t, id)
	require.Len(t, order.OrderItems, 2)
	require.Equal(t, 4, dbtest.VariantStock(t, f.db, f.phone.ID, "PX-128"))
	require.Equal(t, 1, dbtest.VariantStock(t, f.db, tablet.ID, "PX-128"))

	err := f.svc.CancelOrderLine(ctx, f.user, id, ref("PX-128"))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	require.NoError(t, f.svc.CancelOrderLine(ctx, f.user, id, LineRef{Product: &tablet.ID, SKU: "PX-128"}))
	require.Equal(t, 3, dbtest.VariantStock(t, f.db, tablet.ID, "PX-128"))
	require.Equal(t, 4, dbtest.VariantStock(t, f.db, f.phone.ID, "PX-128"))

	order = f.order(t, id)
	require.Equal(t, enums.OrderStatusPending, order.MatchLines(f.phone.ID, "PX-128")[0].OrderStatus)
	require.Equal(t, enums.OrderStatusCancelled, order.MatchLines(tablet.ID, "PX-128")[0].OrderStatus)

	dup := draft(enums.PaymentMethodCOD, "",
		DraftLine{Product: tablet.ID, Variant: "PX-128", Quantity: 1},
		DraftLine{Product: tablet.ID, Variant: " PX-128 ", Quantity: 1},
	)
	_, err = f.svc.PlaceOrder(ctx, f.user, dup)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
