package payloads

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/albin6/cellsphere/pkg/enums"
)

// OrderLine is the line snapshot carried by order events.
type OrderLine struct {
	ProductID uuid.UUID       `json:"product"`
	SKU       string          `json:"variant"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Discount  decimal.Decimal `json:"discount"`
}

// OrderPlacedEvent is emitted once an order and all its ledger effects commit.
type OrderPlacedEvent struct {
	OrderID                uuid.UUID           `json:"order_id"`
	UserID                 uuid.UUID           `json:"user_id"`
	PaymentMethod          enums.PaymentMethod `json:"payment_method"`
	PaymentStatus          enums.PaymentStatus `json:"payment_status"`
	TotalAmount            decimal.Decimal     `json:"total_amount"`
	TotalPriceWithDiscount decimal.Decimal     `json:"total_price_with_discount"`
	CouponCode             *string             `json:"coupon_code,omitempty"`
	CouponDiscount         decimal.Decimal     `json:"coupon_discount"`
	Lines                  []OrderLine         `json:"order_items"`
}

// OrderLineCancelledEvent reports a cancellation and the compensation applied.
type OrderLineCancelledEvent struct {
	OrderID      uuid.UUID         `json:"order_id"`
	UserID       uuid.UUID         `json:"user_id"`
	SKU          string            `json:"sku"`
	Quantity     int               `json:"quantity"`
	FromStatus   enums.OrderStatus `json:"from_status"`
	RefundAmount decimal.Decimal   `json:"refund_amount"`
	Refunded     bool              `json:"refunded"`
}

// OrderLineStatusChangedEvent covers admin status moves that carry no compensation.
type OrderLineStatusChangedEvent struct {
	OrderID    uuid.UUID         `json:"order_id"`
	SKU        string            `json:"sku"`
	FromStatus enums.OrderStatus `json:"from_status"`
	ToStatus   enums.OrderStatus `json:"order_status"`
}

// ReturnRequestedEvent is emitted when a customer asks to return a delivered line.
type ReturnRequestedEvent struct {
	OrderID uuid.UUID `json:"order_id"`
	UserID  uuid.UUID `json:"user_id"`
	SKU     string    `json:"sku"`
	Reason  string    `json:"reason"`
}

// ReturnResolvedEvent is emitted when an admin approves or rejects a return.
type ReturnResolvedEvent struct {
	OrderID      uuid.UUID       `json:"order_id"`
	UserID       uuid.UUID       `json:"user_id"`
	SKU          string          `json:"sku"`
	Approved     bool            `json:"approved"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
	Refunded     bool            `json:"refunded"`
}

// WalletCreditedEvent is emitted for every credit appended to a wallet.
type WalletCreditedEvent struct {
	WalletID uuid.UUID               `json:"wallet_id"`
	UserID   uuid.UUID               `json:"user_id"`
	OrderID  *uuid.UUID              `json:"order_id,omitempty"`
	Amount   decimal.Decimal         `json:"amount"`
	Status   enums.TransactionStatus `json:"transaction_status"`
	Balance  decimal.Decimal         `json:"balance"`
}
