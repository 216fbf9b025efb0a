package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/albin6/cellsphere/pkg/enums"
	"github.com/albin6/cellsphere/pkg/types"
)

// Order is the customer order aggregate. Lines are never deleted; only their
// status and return fields change after placement.
type Order struct {
	ID                     uuid.UUID              `gorm:"column:id;type:uuid;primaryKey" json:"_id"`
	UserID                 uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index" json:"user"`
	CustomerName           string                 `gorm:"column:customer_name;not null;default:''" json:"customer_name"`
	PaymentMethod          enums.PaymentMethod    `gorm:"column:payment_method;not null" json:"payment_method"`
	PaymentStatus          enums.PaymentStatus    `gorm:"column:payment_status;not null;default:'Pending'" json:"payment_status"`
	ShippingAddress        *types.ShippingAddress `gorm:"column:shipping_address;type:jsonb" json:"shipping_address,omitempty"`
	TotalAmount            decimal.Decimal        `gorm:"column:total_amount;type:numeric(12,2);not null" json:"total_amount"`
	TotalPriceWithDiscount decimal.Decimal        `gorm:"column:total_price_with_discount;type:numeric(12,2);not null" json:"total_price_with_discount"`
	CouponCode             *string                `gorm:"column:coupon_code" json:"coupon_code,omitempty"`
	CouponDiscount         decimal.Decimal        `gorm:"column:coupon_discount;type:numeric(12,2);not null;default:0" json:"coupon_discount"`
	PlacedAt               time.Time              `gorm:"column:placed_at;not null;index" json:"placed_at"`
	DeliveryBy             time.Time              `gorm:"column:delivery_by;not null" json:"delivery_by"`
	OrderItems             []OrderLine            `gorm:"foreignKey:OrderID;constraint:OnDelete:RESTRICT" json:"order_items"`
	CreatedAt              time.Time              `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time              `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	assignID(&o.ID)
	return nil
}

// MatchLines returns the lines carrying sku. A nil productID matches the SKU
// under any product, since SKUs are only unique within a product.
func (o *Order) MatchLines(productID uuid.UUID, sku string) []*OrderLine {
	var out []*OrderLine
	for i := range o.OrderItems {
		line := &o.OrderItems[i]
		if line.SKU != sku {
			continue
		}
		if productID != uuid.Nil && line.ProductID != productID {
			continue
		}
		out = append(out, line)
	}
	return out
}

// OrderLine is one purchased variant. Discount is the offer percentage that
// was active at placement.
type OrderLine struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;primaryKey" json:"_id"`
	OrderID       uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index;uniqueIndex:idx_order_lines_order_product_sku" json:"-"`
	ProductID     uuid.UUID         `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_order_lines_order_product_sku" json:"product"`
	SKU           string            `gorm:"column:sku;not null;uniqueIndex:idx_order_lines_order_product_sku" json:"variant"`
	Position      int               `gorm:"column:position;not null;default:0" json:"-"`
	ProductName   string            `gorm:"column:product_name;not null;default:''" json:"product_name"`
	CategoryID    uuid.UUID         `gorm:"column:category_id;type:uuid" json:"category"`
	Quantity      int               `gorm:"column:quantity;not null;check:quantity > 0" json:"quantity"`
	Price         decimal.Decimal   `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	Discount      decimal.Decimal   `gorm:"column:discount;type:numeric(5,2);not null;default:0" json:"discount"`
	TotalPrice    decimal.Decimal   `gorm:"column:total_price;type:numeric(12,2);not null" json:"total_price"`
	OrderStatus   enums.OrderStatus `gorm:"column:order_status;not null;default:'Pending'" json:"order_status"`
	ReturnRequest ReturnRequest     `gorm:"embedded;embeddedPrefix:return_" json:"return_request"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (l *OrderLine) BeforeCreate(*gorm.DB) error {
	assignID(&l.ID)
	return nil
}

// RefundAmount is the unit price net of the line's offer discount.
func (l OrderLine) RefundAmount() decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	return l.Price.Mul(hundred.Sub(l.Discount)).Div(hundred).Round(2)
}

// ReturnRequest is the return sub-record of an order line.
type ReturnRequest struct {
	Requested    bool   `gorm:"column:requested;not null;default:false" json:"requested"`
	Approved     *bool  `gorm:"column:approved" json:"approved"`
	Reason       string `gorm:"column:reason;not null;default:''" json:"reason"`
	Comment      string `gorm:"column:comment;not null;default:''" json:"comment"`
	ResponseSent bool   `gorm:"column:response_sent;not null;default:false" json:"response_sent"`
}
