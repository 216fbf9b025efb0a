package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cart is the customer's single active cart.
type Cart struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"_id"`
	UserID      uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex" json:"user"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2);not null;default:0" json:"totalAmount"`
	Items       []CartItem      `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (c *Cart) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

type CartItem struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"_id"`
	CartID     uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;index" json:"-"`
	ProductID  uuid.UUID       `gorm:"column:product_id;type:uuid;not null" json:"product"`
	VariantSKU string          `gorm:"column:variant_sku;not null" json:"variant"`
	Quantity   int             `gorm:"column:quantity;not null" json:"quantity"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	TotalPrice decimal.Decimal `gorm:"column:total_price;type:numeric(12,2);not null" json:"totalPrice"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (i *CartItem) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}
