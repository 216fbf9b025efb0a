package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/albin6/cellsphere/internal/coupons"
	"github.com/albin6/cellsphere/internal/products"
	"github.com/albin6/cellsphere/internal/stock"
	"github.com/albin6/cellsphere/internal/wallet"
	"github.com/albin6/cellsphere/pkg/config"
	"github.com/albin6/cellsphere/pkg/db/models"
	"github.com/albin6/cellsphere/pkg/enums"
	pkgerrors "github.com/albin6/cellsphere/pkg/errors"
	"github.com/albin6/cellsphere/pkg/logger"
	"github.com/albin6/cellsphere/pkg/outbox"
	"github.com/albin6/cellsphere/pkg/pagination"
	"github.com/albin6/cellsphere/pkg/validation"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type couponApplier interface {
	ApplyToOrder(ctx context.Context, tx *gorm.DB, userID uuid.UUID, code string, lines []coupons.OrderLineAmount) (*coupons.Application, error)
}

type walletRefunder interface {
	Refund(ctx context.Context, tx *gorm.DB, userID, orderID uuid.UUID, amount decimal.Decimal) (*models.Wallet, error)
}

type cartPruner interface {
	RemoveProducts(ctx context.Context, tx *gorm.DB, userID uuid.UUID, productIDs []uuid.UUID) error
}

type salesRecorder interface {
	CreateEntry(ctx context.Context, tx *gorm.DB, order *models.Order, customerName string) (*models.SalesReportEntry, error)
	PatchStatus(ctx context.Context, tx *gorm.DB, orderID, productID uuid.UUID, sku string, status enums.OrderStatus) error
	PatchFinalAmount(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, amount decimal.Decimal) error
}

type operationObserver interface {
	Observe(operation string, err error)
}

// Service is the order core: checkout plus the per-line state machine and its
// ledger compensations.
type Service interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, draft OrderDraft) (uuid.UUID, error)
	CancelOrderLine(ctx context.Context, userID, orderID uuid.UUID, ref LineRef) error
	UpdateOrderLineStatus(ctx context.Context, orderID uuid.UUID, ref LineRef, status enums.OrderStatus) (*models.Order, error)
	RequestReturn(ctx context.Context, userID, orderID uuid.UUID, input ReturnInput) error
	RespondToReturn(ctx context.Context, orderID uuid.UUID, ref LineRef, approved bool) error
	ListUserOrders(ctx context.Context, userID uuid.UUID) ([]UserOrder, error)
	GetOrder(ctx context.Context, viewer Viewer, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, params pagination.Params) (*OrderList, error)
}

// ServiceParams wires the order service. Metrics and Logger are optional.
type ServiceParams struct {
	Repository Repository
	Tx         txRunner
	Outbox     outboxPublisher
	Catalog    products.Repository
	Stock      stock.Ledger
	Wallet     wallet.Ledger
	Refunds    walletRefunder
	Coupons    couponApplier
	Cart       cartPruner
	Sales      salesRecorder
	Policy     config.OrderPolicyConfig
	Metrics    operationObserver
	Logger     *logger.Logger
	Now        func() time.Time
}

type service struct {
	repo     Repository
	tx       txRunner
	outbox   outboxPublisher
	catalog  products.Repository
	stock    stock.Ledger
	wallet   wallet.Ledger
	refunds  walletRefunder
	coupons  couponApplier
	cart     cartPruner
	sales    salesRecorder
	policy   config.OrderPolicyConfig
	metrics  operationObserver
	logg     *logger.Logger
	now      func() time.Time
	validate *validator.Validate
}

type nopObserver struct{}

func (nopObserver) Observe(string, error) {}

// NewService builds the order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repository == nil:
		return nil, fmt.Errorf("orders repository required")
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case params.Outbox == nil:
		return nil, fmt.Errorf("outbox publisher required")
	case params.Catalog == nil:
		return nil, fmt.Errorf("catalog repository required")
	case params.Stock == nil:
		return nil, fmt.Errorf("stock ledger required")
	case params.Wallet == nil:
		return nil, fmt.Errorf("wallet ledger required")
	case params.Refunds == nil:
		return nil, fmt.Errorf("wallet refunder required")
	case params.Coupons == nil:
		return nil, fmt.Errorf("coupon service required")
	case params.Cart == nil:
		return nil, fmt.Errorf("cart service required")
	case params.Sales == nil:
		return nil, fmt.Errorf("sales service required")
	}

	svc := &service{
		repo:     params.Repository,
		tx:       params.Tx,
		outbox:   params.Outbox,
		catalog:  params.Catalog,
		stock:    params.Stock,
		wallet:   params.Wallet,
		refunds:  params.Refunds,
		coupons:  params.Coupons,
		cart:     params.Cart,
		sales:    params.Sales,
		policy:   params.Policy,
		metrics:  params.Metrics,
		logg:     params.Logger,
		now:      params.Now,
		validate: validation.New(),
	}
	if svc.metrics == nil {
		svc.metrics = nopObserver{}
	}
	if svc.logg == nil {
		svc.logg = logger.Nop()
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc, nil
}

// pricedLine is a draft line resolved against the catalog.
type pricedLine struct {
	variant  *products.VariantInfo
	quantity int
	gross    decimal.Decimal
	total    decimal.Decimal
}

func (p pricedLine) key() stock.VariantKey {
	return stock.VariantKey{ProductID: p.variant.ProductID, SKU: p.variant.SKU}
}

// PlaceOrder creates the order and applies every ledger effect in one
// transaction: coupon usage, stock reservation, wallet debit, cart pruning,
// the sales entry and the order.placed event. Any failure rolls back all of it.
func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, draft OrderDraft) (orderID uuid.UUID, err error) {
	defer func() { s.metrics.Observe("place_order", err) }()

	if userID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	method, status, err := s.validateDraft(draft)
	if err != nil {
		return uuid.Nil, err
	}

	order := &models.Order{
		ID:              uuid.New(),
		UserID:          userID,
		CustomerName:    strings.TrimSpace(draft.ShippingAddress.Name),
		PaymentMethod:   method,
		PaymentStatus:   status,
		ShippingAddress: draft.ShippingAddress,
		CouponDiscount:  decimal.Zero,
	}
	ctx = s.logg.WithOrderID(ctx, order.ID.String())

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		lines, err := s.priceLines(ctx, tx, draft.OrderItems)
		if err != nil {
			return err
		}

		offerTotal := decimal.Zero
		for _, line := range lines {
			order.TotalAmount = order.TotalAmount.Add(line.gross)
			offerTotal = offerTotal.Add(line.total)
		}

		if code := couponCode(draft.CouponCode); code != "" {
			amounts := make([]coupons.OrderLineAmount, 0, len(lines))
			for _, line := range lines {
				amounts = append(amounts, coupons.OrderLineAmount{
					ProductID:  line.variant.ProductID,
					SKU:        line.variant.SKU,
					CategoryID: line.variant.CategoryID,
					Amount:     line.total,
				})
			}
			app, err := s.coupons.ApplyToOrder(ctx, tx, userID, code, amounts)
			if err != nil {
				return err
			}
			order.CouponCode = &app.Coupon.Code
			order.CouponDiscount = decimal.Min(app.TotalDiscount, offerTotal)
		}
		order.TotalPriceWithDiscount = offerTotal.Sub(order.CouponDiscount)

		if err := s.checkCODCeiling(method, order.TotalPriceWithDiscount); err != nil {
			return err
		}

		stockLedger := s.stock.WithTx(tx)
		checks := make([]stock.Line, 0, len(lines))
		for _, line := range lines {
			checks = append(checks, stock.Line{Key: line.key(), Quantity: line.quantity})
		}
		if err := stockLedger.Check(ctx, checks); err != nil {
			return err
		}

		if s.policy.WalletCheckFirst {
			if err := s.debitWallet(ctx, tx, order); err != nil {
				return err
			}
		}

		for _, line := range lines {
			if err := stockLedger.Reserve(ctx, line.key(), line.quantity); err != nil {
				return err
			}
		}

		productIDs := make([]uuid.UUID, 0, len(lines))
		for _, line := range lines {
			productIDs = append(productIDs, line.variant.ProductID)
		}
		if err := s.cart.RemoveProducts(ctx, tx, userID, productIDs); err != nil {
			return err
		}

		if !s.policy.WalletCheckFirst {
			if err := s.debitWallet(ctx, tx, order); err != nil {
				return err
			}
		}

		placedAt := s.now().UTC()
		order.PlacedAt = placedAt
		order.DeliveryBy = placedAt.AddDate(0, 0, s.deliveryDays())
		for i, line := range lines {
			order.OrderItems = append(order.OrderItems, models.OrderLine{
				ProductID:   line.variant.ProductID,
				SKU:         line.variant.SKU,
				Position:    i,
				ProductName: line.variant.ProductName,
				CategoryID:  line.variant.CategoryID,
				Quantity:    line.quantity,
				Price:       line.variant.Price,
				Discount:    line.variant.Discount,
				TotalPrice:  line.total,
				OrderStatus: enums.OrderStatusPending,
			})
		}
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		if _, err := s.sales.CreateEntry(ctx, tx, order, order.CustomerName); err != nil {
			return err
		}

		return s.emit(ctx, tx, order, enums.EventOrderPlaced, &outbox.ActorRef{UserID: userID, Role: enums.RoleUser}, orderPlacedPayload(order))
	})
	if err != nil {
		return uuid.Nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"user_id":        userID.String(),
		"payment_method": method.String(),
		"total":          order.TotalPriceWithDiscount.StringFixed(2),
		"lines":          len(order.OrderItems),
	}), "order placed")
	return order.ID, nil
}

func (s *service) validateDraft(draft OrderDraft) (enums.PaymentMethod, enums.PaymentStatus, error) {
	if err := s.validate.Struct(draft); err != nil {
		return "", "", validationError(err)
	}

	method, err := enums.ParsePaymentMethod(draft.PaymentMethod)
	if err != nil {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method").
			WithDetails(map[string]any{"field": "payment_method", "value": draft.PaymentMethod})
	}

	seen := make(map[stock.VariantKey]struct{}, len(draft.OrderItems))
	for _, item := range draft.OrderItems {
		key := stock.VariantKey{ProductID: item.Product, SKU: strings.TrimSpace(item.Variant)}
		if _, dup := seen[key]; dup {
			return "", "", pkgerrors.New(pkgerrors.CodeValidation, "duplicate variant in order").
				WithDetails(map[string]any{"field": "order_items", "product": key.ProductID, "variant": key.SKU})
		}
		seen[key] = struct{}{}
	}

	var status enums.PaymentStatus
	switch {
	case method == enums.PaymentMethodWallet:
		status = enums.PaymentStatusPaid
	case method == enums.PaymentMethodCOD:
		status = enums.PaymentStatusPending
	case strings.TrimSpace(draft.PaymentStatus) == "":
		status = enums.PaymentStatusPending
	default:
		status, err = enums.ParsePaymentStatus(draft.PaymentStatus)
		if err != nil {
			return "", "", pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status").
				WithDetails(map[string]any{"field": "payment_status", "value": draft.PaymentStatus})
		}
	}
	return method, status, nil
}

func (s *service) priceLines(ctx context.Context, tx *gorm.DB, items []DraftLine) ([]pricedLine, error) {
	catalog := s.catalog.WithTx(tx)
	lines := make([]pricedLine, 0, len(items))
	for _, item := range items {
		sku := strings.TrimSpace(item.Variant)
		variant, err := catalog.FindVariant(ctx, item.Product, sku)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product variant not found").
					WithDetails(map[string]any{"product": item.Product, "variant": sku})
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product variant")
		}
		if !variant.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available").
				WithDetails(map[string]any{"product": item.Product, "variant": sku})
		}
		qty := decimal.NewFromInt(int64(item.Quantity))
		lines = append(lines, pricedLine{
			variant:  variant,
			quantity: item.Quantity,
			gross:    variant.Price.Mul(qty),
			total:    variant.DiscountedPrice().Mul(qty),
		})
	}
	return lines, nil
}

func (s *service) checkCODCeiling(method enums.PaymentMethod, total decimal.Decimal) error {
	if method != enums.PaymentMethodCOD || s.policy.CODMaxAmount <= 0 {
		return nil
	}
	ceiling := s.policy.CODCeiling()
	if total.GreaterThan(ceiling) {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "cash on delivery is not available for orders above %s", ceiling.String()).
			WithDetails(map[string]any{"field": "payment_method", "total": total.StringFixed(2), "limit": ceiling.String()})
	}
	return nil
}

func (s *service) debitWallet(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	if order.PaymentMethod != enums.PaymentMethodWallet || !order.TotalPriceWithDiscount.IsPositive() {
		return nil
	}
	_, err := s.wallet.WithTx(tx).Debit(ctx, order.UserID, order.TotalPriceWithDiscount, &order.ID)
	return err
}

func (s *service) deliveryDays() int {
	if s.policy.DeliveryDays <= 0 {
		return 7
	}
	return s.policy.DeliveryDays
}

// CancelOrderLine is the customer cancel. Only undelivered lines qualify.
func (s *service) CancelOrderLine(ctx context.Context, userID, orderID uuid.UUID, ref LineRef) (err error) {
	defer func() { s.metrics.Observe("cancel_order_line", err) }()

	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if orderID == uuid.Nil || strings.TrimSpace(ref.SKU) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "Both Order ID and sku are required")
	}
	ctx = s.logg.WithOrderID(ctx, orderID.String())

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, line, err := loadLine(ctx, repo, orderID, ref)
		if err != nil {
			return err
		}
		if order.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
		}
		from := line.OrderStatus
		if err := checkCustomerCancel(from); err != nil {
			return err
		}
		if err := moveLine(ctx, repo, line, enums.OrderStatusCancelled, nil); err != nil {
			return err
		}
		refund, refunded, err := s.compensate(ctx, tx, order, line, from)
		if err != nil {
			return err
		}
		if err := s.sales.PatchStatus(ctx, tx, order.ID, line.ProductID, line.SKU, enums.OrderStatusCancelled); err != nil {
			return err
		}
		return s.emit(ctx, tx, order, enums.EventOrderLineCancelled, &outbox.ActorRef{UserID: userID, Role: enums.RoleUser}, cancelledPayload(order, line, from, refund, refunded))
	})
}

// UpdateOrderLineStatus is the admin status change. Entering Cancelled applies
// the same compensation as a customer cancel and records the refund as the
// sales entry's final amount.
func (s *service) UpdateOrderLineStatus(ctx context.Context, orderID uuid.UUID, ref LineRef, status enums.OrderStatus) (updated *models.Order, err error) {
	defer func() { s.metrics.Observe("update_order_line_status", err) }()

	if orderID == uuid.Nil || strings.TrimSpace(ref.SKU) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id and sku are required")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
			WithDetails(map[string]any{"field": "status", "value": status})
	}
	ctx = s.logg.WithOrderID(ctx, orderID.String())
	actor := &outbox.ActorRef{Role: enums.RoleAdmin}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, line, err := loadLine(ctx, repo, orderID, ref)
		if err != nil {
			return err
		}
		from := line.OrderStatus
		if err := checkAdminTransition(from, status, s.policy.AllowCancelDelivered); err != nil {
			return err
		}
		if status == enums.OrderStatusDelivered && order.PaymentStatus == enums.PaymentStatusFailed {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "cannot mark an item delivered when payment failed").
				WithDetails(map[string]any{"payment_status": order.PaymentStatus})
		}
		if err := moveLine(ctx, repo, line, status, nil); err != nil {
			return err
		}
		if err := s.sales.PatchStatus(ctx, tx, order.ID, line.ProductID, line.SKU, status); err != nil {
			return err
		}

		if status != enums.OrderStatusCancelled {
			updated = order
			return s.emit(ctx, tx, order, enums.EventOrderLineStatus, actor, statusChangedPayload(order, line, from))
		}

		refund, refunded, err := s.compensate(ctx, tx, order, line, from)
		if err != nil {
			return err
		}
		if refunded {
			if err := s.sales.PatchFinalAmount(ctx, tx, order.ID, refund); err != nil {
				return err
			}
		}
		updated = order
		return s.emit(ctx, tx, order, enums.EventOrderLineCancelled, actor, cancelledPayload(order, line, from, refund, refunded))
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RequestReturn records a customer's return request on a delivered line. No
// ledger moves until an admin approves it.
func (s *service) RequestReturn(ctx context.Context, userID, orderID uuid.UUID, input ReturnInput) (err error) {
	defer func() { s.metrics.Observe("request_return", err) }()

	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if err := s.validate.Struct(input); err != nil {
		return validationError(err)
	}
	ctx = s.logg.WithOrderID(ctx, orderID.String())

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, line, err := loadLine(ctx, repo, orderID, input.LineRef)
		if err != nil {
			return err
		}
		if order.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
		}
		if line.ReturnRequest.Requested {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "return already requested for this item")
		}
		if line.OrderStatus != enums.OrderStatusDelivered {
			return invalidTransition(line.OrderStatus, enums.OrderStatusReturnRequested)
		}
		if !s.withinReturnWindow(order) {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, returnNotEligibleMessage).
				WithDetails(map[string]any{"placed_at": order.PlacedAt})
		}

		fields := map[string]any{
			"return_requested": true,
			"return_reason":    strings.TrimSpace(input.Reason),
			"return_comment":   strings.TrimSpace(input.Comment),
		}
		if err := moveLine(ctx, repo, line, enums.OrderStatusReturnRequested, fields); err != nil {
			return err
		}
		if err := s.sales.PatchStatus(ctx, tx, order.ID, line.ProductID, line.SKU, enums.OrderStatusReturnRequested); err != nil {
			return err
		}
		return s.emit(ctx, tx, order, enums.EventReturnRequested, &outbox.ActorRef{UserID: userID, Role: enums.RoleUser}, returnRequestedPayload(order, line, input.Reason))
	})
}

// RespondToReturn resolves a pending return. Approval compensates like a
// cancel and ends in Returned; rejection puts the line back to Delivered.
func (s *service) RespondToReturn(ctx context.Context, orderID uuid.UUID, ref LineRef, approved bool) (err error) {
	defer func() { s.metrics.Observe("respond_to_return", err) }()

	if orderID == uuid.Nil || strings.TrimSpace(ref.SKU) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id and sku are required")
	}
	ctx = s.logg.WithOrderID(ctx, orderID.String())

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, line, err := loadLine(ctx, repo, orderID, ref)
		if err != nil {
			return err
		}
		if line.ReturnRequest.ResponseSent {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "return request already answered")
		}
		if line.OrderStatus != enums.OrderStatusReturnRequested || !line.ReturnRequest.Requested {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "no pending return request for this item").
				WithDetails(map[string]any{"order_status": line.OrderStatus})
		}

		from := line.OrderStatus
		target := enums.OrderStatusDelivered
		if approved {
			target = enums.OrderStatusReturned
		}
		fields := map[string]any{
			"return_approved":      approved,
			"return_response_sent": true,
		}
		if err := moveLine(ctx, repo, line, target, fields); err != nil {
			return err
		}

		refund := decimal.Zero
		refunded := false
		if approved {
			refund, refunded, err = s.compensate(ctx, tx, order, line, from)
			if err != nil {
				return err
			}
		}
		if err := s.sales.PatchStatus(ctx, tx, order.ID, line.ProductID, line.SKU, target); err != nil {
			return err
		}
		return s.emit(ctx, tx, order, enums.EventReturnResolved, &outbox.ActorRef{Role: enums.RoleAdmin}, returnResolvedPayload(order, line, approved, refund, refunded))
	})
}

// compensate restocks the line and refunds it to the owner's wallet when the
// order qualifies. from is the line status before the transition. The state
// machine guarantees it runs once per line.
func (s *service) compensate(ctx context.Context, tx *gorm.DB, order *models.Order, line *models.OrderLine, from enums.OrderStatus) (decimal.Decimal, bool, error) {
	key := stock.VariantKey{ProductID: line.ProductID, SKU: line.SKU}
	if err := s.stock.WithTx(tx).Release(ctx, key, line.Quantity); err != nil {
		if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return decimal.Zero, false, err
		}
		s.logg.Warn(s.logg.WithField(ctx, "variant", key.String()), "variant no longer exists; skipping restock")
	}

	amount := line.RefundAmount()
	if !s.refundEligible(order, from) || !amount.IsPositive() {
		return decimal.Zero, false, nil
	}
	if _, err := s.refunds.Refund(ctx, tx, order.UserID, order.ID, amount); err != nil {
		return decimal.Zero, false, err
	}
	return amount, true, nil
}

// refundEligible reports whether money for the line was actually received.
// Wallet and online payments must be Paid. Cash on delivery only counts as
// collected once the line was delivered, and is refunded only under RefundCOD.
func (s *service) refundEligible(order *models.Order, from enums.OrderStatus) bool {
	if order.PaymentStatus == enums.PaymentStatusFailed {
		return false
	}
	if order.PaymentMethod == enums.PaymentMethodCOD {
		return s.policy.RefundCOD && (from == enums.OrderStatusDelivered || from == enums.OrderStatusReturnRequested)
	}
	return order.PaymentStatus == enums.PaymentStatusPaid
}

func (s *service) withinReturnWindow(order *models.Order) bool {
	window := s.policy.ReturnWindow()
	if window == 0 {
		return true
	}
	return !s.now().After(order.PlacedAt.Add(window))
}

func (s *service) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]UserOrder, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	out := make([]UserOrder, 0, len(orders))
	for i := range orders {
		out = append(out, s.toUserOrder(&orders[i]))
	}
	return out, nil
}

func (s *service) GetOrder(ctx context.Context, viewer Viewer, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, mapOrderNotFound(err)
	}
	if !viewer.Admin && order.UserID != viewer.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, params pagination.Params) (*OrderList, error) {
	orders, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	list := &OrderList{
		Orders: make([]AdminOrder, 0, len(orders)),
		Page:   pagination.NewPage(params, total),
	}
	for i := range orders {
		list.Orders = append(list.Orders, toAdminOrder(&orders[i]))
	}
	return list, nil
}

func (s *service) toUserOrder(order *models.Order) UserOrder {
	view := UserOrder{
		ID:            order.ID,
		Date:          order.PlacedAt,
		DeliveryDate:  order.DeliveryBy,
		Total:         order.TotalPriceWithDiscount,
		CustomerName:  order.CustomerName,
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: order.PaymentStatus,
		OrderItems:    make([]UserOrderLine, 0, len(order.OrderItems)),
	}
	inWindow := s.withinReturnWindow(order)
	for _, line := range order.OrderItems {
		eligible := inWindow && line.OrderStatus == enums.OrderStatusDelivered && !line.ReturnRequest.Requested
		message := returnNotEligibleMessage
		if eligible {
			message = returnEligibleMessage
		}
		view.OrderItems = append(view.OrderItems, UserOrderLine{
			ID:             line.ID,
			ProductID:      line.ProductID,
			ProductName:    line.ProductName,
			SKU:            line.SKU,
			Quantity:       line.Quantity,
			Price:          line.TotalPrice,
			Status:         line.OrderStatus,
			ReturnEligible: eligible,
			ReturnMessage:  message,
		})
	}
	return view
}

func toAdminOrder(order *models.Order) AdminOrder {
	view := AdminOrder{
		ID:            order.ID,
		UserID:        order.UserID,
		UserFullName:  order.CustomerName,
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: order.PaymentStatus,
		PlacedAt:      order.PlacedAt,
		Total:         order.TotalPriceWithDiscount,
		OrderItems:    make([]AdminOrderLine, 0, len(order.OrderItems)),
	}
	for _, line := range order.OrderItems {
		view.OrderItems = append(view.OrderItems, AdminOrderLine{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			SKU:         line.SKU,
			Quantity:    line.Quantity,
			Price:       line.Price,
			Discount:    line.Discount,
			TotalPrice:  line.TotalPrice,
			OrderStatus: line.OrderStatus,
		})
	}
	return view
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, order *models.Order, eventType enums.OutboxEventType, actor *outbox.ActorRef, data any) error {
	err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actor,
		Data:          data,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit "+string(eventType))
	}
	return nil
}

func loadLine(ctx context.Context, repo Repository, orderID uuid.UUID, ref LineRef) (*models.Order, *models.OrderLine, error) {
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, nil, mapOrderNotFound(err)
	}
	sku := strings.TrimSpace(ref.SKU)
	matches := order.MatchLines(ref.productID(), sku)
	switch len(matches) {
	case 0:
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order item not found").
			WithDetails(map[string]any{"sku": sku})
	case 1:
		return order, matches[0], nil
	default:
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "product is required: sku matches more than one item").
			WithDetails(map[string]any{"field": "product", "sku": sku})
	}
}

func moveLine(ctx context.Context, repo Repository, line *models.OrderLine, to enums.OrderStatus, fields map[string]any) error {
	moved, err := repo.TransitionLine(ctx, line.ID, line.OrderStatus, to, fields)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order item")
	}
	if !moved {
		return invalidTransition(line.OrderStatus, to)
	}
	line.OrderStatus = to
	return nil
}

func mapOrderNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
}

func couponCode(code *string) string {
	if code == nil {
		return ""
	}
	return strings.TrimSpace(*code)
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request")
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Namespace()] = fe.Tag()
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid order request").WithDetails(fields)
}
