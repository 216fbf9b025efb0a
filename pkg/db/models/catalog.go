package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category groups products and scopes coupon eligibility.
type Category struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"_id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// Product is a catalog listing. Discount is the offer percentage currently
// applied to every variant; QuantitySold feeds best-seller ranking.
type Product struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;primaryKey" json:"_id"`
	Name         string           `gorm:"column:name;not null" json:"name"`
	CategoryID   uuid.UUID        `gorm:"column:category_id;type:uuid;not null;index" json:"category"`
	Brand        string           `gorm:"column:brand;not null;default:''" json:"brand"`
	Discount     decimal.Decimal  `gorm:"column:discount;type:numeric(5,2);not null;default:0" json:"discount"`
	QuantitySold int              `gorm:"column:quantity_sold;not null;default:0" json:"quantity_sold"`
	IsActive     bool             `gorm:"column:is_active;not null;default:true" json:"is_active"`
	Variants     []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// ProductVariant is one sellable SKU of a product with its own stock counter.
type ProductVariant struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"_id"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_product_variants_product_sku" json:"product"`
	SKU       string          `gorm:"column:sku;not null;uniqueIndex:idx_product_variants_product_sku" json:"sku"`
	Color     string          `gorm:"column:color;not null;default:''" json:"color"`
	RAM       string          `gorm:"column:ram;not null;default:''" json:"ram"`
	Storage   string          `gorm:"column:storage;not null;default:''" json:"storage"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	Stock     int             `gorm:"column:stock;not null;default:0;check:stock >= 0" json:"stock"`
	Images    []string        `gorm:"column:images;type:jsonb;serializer:json" json:"images"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (v *ProductVariant) BeforeCreate(*gorm.DB) error {
	assignID(&v.ID)
	return nil
}
