package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/albin6/cellsphere/pkg/enums"
	"github.com/albin6/cellsphere/pkg/pagination"
	"github.com/albin6/cellsphere/pkg/types"
)

// PlaceOrderRequest is the checkout body: {"order_data": {...}}.
type PlaceOrderRequest struct {
	OrderData OrderDraft `json:"order_data"`
}

// OrderDraft is what the storefront submits at checkout. Prices are resolved
// server side from the catalog; only identities and quantities are trusted.
type OrderDraft struct {
	PaymentMethod   string                 `json:"payment_method" validate:"required"`
	PaymentStatus   string                 `json:"payment_status,omitempty"`
	ShippingAddress *types.ShippingAddress `json:"shipping_address" validate:"required"`
	CouponCode      *string                `json:"coupon_code,omitempty" validate:"omitempty,max=32"`
	OrderItems      []DraftLine            `json:"order_items" validate:"required,min=1,max=50,dive"`
}

type DraftLine struct {
	Product  uuid.UUID `json:"product" validate:"required"`
	Variant  string    `json:"variant" validate:"required,max=64"`
	Quantity int       `json:"quantity" validate:"required,min=1,max=100"`
}

// LineRef addresses one order line. SKUs are only unique within a product, so
// Product is needed when an order holds the same SKU under two products.
type LineRef struct {
	Product *uuid.UUID `json:"product,omitempty"`
	SKU     string     `json:"sku" validate:"notblank,max=64"`
}

func (r LineRef) productID() uuid.UUID {
	if r.Product == nil {
		return uuid.Nil
	}
	return *r.Product
}

// CancelRequest is the customer cancel body.
type CancelRequest struct {
	LineRef
}

// StatusUpdateRequest is the admin line status body.
type StatusUpdateRequest struct {
	LineRef
	Status string `json:"status" validate:"required"`
}

// ReturnInput is the customer return request body.
type ReturnInput struct {
	LineRef
	Reason  string `json:"reason" validate:"notblank,max=200"`
	Comment string `json:"comment" validate:"max=1000"`
}

// ReturnResponse is the admin verdict on a return request.
type ReturnResponse struct {
	LineRef
	Approved *bool `json:"approved" validate:"required"`
}

// Viewer identifies who is reading an order. Admins may read any order.
type Viewer struct {
	UserID uuid.UUID
	Admin  bool
}

const (
	returnEligibleMessage    = "Eligible for return"
	returnNotEligibleMessage = "Not eligible to return"
)

// UserOrder is the customer's order history card.
type UserOrder struct {
	ID            uuid.UUID           `json:"id"`
	Date          time.Time           `json:"date"`
	DeliveryDate  time.Time           `json:"delivery_date"`
	Total         decimal.Decimal     `json:"total"`
	CustomerName  string              `json:"customerName"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	PaymentStatus enums.PaymentStatus `json:"paymentStatus"`
	OrderItems    []UserOrderLine     `json:"orderItems"`
}

type UserOrderLine struct {
	ID             uuid.UUID         `json:"id"`
	ProductID      uuid.UUID         `json:"product"`
	ProductName    string            `json:"productName"`
	SKU            string            `json:"sku"`
	Quantity       int               `json:"quantity"`
	Price          decimal.Decimal   `json:"price"`
	Status         enums.OrderStatus `json:"status"`
	ReturnEligible bool              `json:"is_return_eligible"`
	ReturnMessage  string            `json:"return_eligible"`
}

// AdminOrder is one row of the admin order table.
type AdminOrder struct {
	ID            uuid.UUID           `json:"_id"`
	UserID        uuid.UUID           `json:"user"`
	UserFullName  string              `json:"user_full_name"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	PlacedAt      time.Time           `json:"placed_at"`
	Total         decimal.Decimal     `json:"total_price_with_discount"`
	OrderItems    []AdminOrderLine    `json:"order_items"`
}

type AdminOrderLine struct {
	ProductID   uuid.UUID         `json:"product"`
	ProductName string            `json:"product_name"`
	SKU         string            `json:"sku"`
	Quantity    int               `json:"quantity"`
	Price       decimal.Decimal   `json:"price"`
	Discount    decimal.Decimal   `json:"discount"`
	TotalPrice  decimal.Decimal   `json:"total_price"`
	OrderStatus enums.OrderStatus `json:"order_status"`
}

// OrderList is the paginated admin listing.
type OrderList struct {
	Orders []AdminOrder `json:"orders"`
	pagination.Page
}
