package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/albin6/cellsphere/pkg/enums"
)

// SalesReportEntry is the denormalized per-order reporting row, written at
// placement and patched as lines are cancelled or returned.
type SalesReportEntry struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;primaryKey" json:"_id"`
	OrderID         uuid.UUID            `gorm:"column:order_id;type:uuid;not null;uniqueIndex" json:"orderId"`
	CustomerID      uuid.UUID            `gorm:"column:customer_id;type:uuid;not null" json:"customer"`
	CustomerName    string               `gorm:"column:customer_name;not null;default:''" json:"customerName"`
	PaymentMethod   enums.PaymentMethod  `gorm:"column:payment_method;not null" json:"paymentMethod"`
	OrderDate       time.Time            `gorm:"column:order_date;not null;index" json:"orderDate"`
	FinalAmount     decimal.Decimal      `gorm:"column:final_amount;type:numeric(12,2);not null" json:"finalAmount"`
	Discount        decimal.Decimal      `gorm:"column:discount;type:numeric(12,2);not null;default:0" json:"discount"`
	CouponDeduction decimal.Decimal      `gorm:"column:coupon_deduction;type:numeric(12,2);not null;default:0" json:"couponDeduction"`
	DeliveryStatus  enums.OrderStatus    `gorm:"column:delivery_status;not null" json:"deliveryStatus"`
	Products        []SalesReportProduct `gorm:"foreignKey:EntryID;constraint:OnDelete:CASCADE" json:"product"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (e *SalesReportEntry) BeforeCreate(*gorm.DB) error {
	assignID(&e.ID)
	return nil
}

// SalesReportProduct is the per-line breakdown inside a sales entry.
type SalesReportProduct struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;primaryKey" json:"_id"`
	EntryID         uuid.UUID         `gorm:"column:entry_id;type:uuid;not null;index" json:"-"`
	OrderID         uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index" json:"-"`
	ProductID       uuid.UUID         `gorm:"column:product_id;type:uuid;not null" json:"product_id"`
	SKU             string            `gorm:"column:sku;not null" json:"sku"`
	ProductName     string            `gorm:"column:product_name;not null;default:''" json:"productName"`
	Quantity        int               `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice       decimal.Decimal   `gorm:"column:unit_price;type:numeric(12,2);not null" json:"unitPrice"`
	TotalPrice      decimal.Decimal   `gorm:"column:total_price;type:numeric(12,2);not null" json:"totalPrice"`
	Discount        decimal.Decimal   `gorm:"column:discount;type:numeric(12,2);not null;default:0" json:"discount"`
	CouponDeduction decimal.Decimal   `gorm:"column:coupon_deduction;type:numeric(12,2);not null;default:0" json:"couponDeduction"`
	DeliveryStatus  enums.OrderStatus `gorm:"column:delivery_status;not null" json:"deliveryStatus"`
}

func (p *SalesReportProduct) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}
