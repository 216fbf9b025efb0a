package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/albin6/cellsphere/pkg/enums"
)

// Coupon is an admin-defined discount code scoped to a set of categories.
type Coupon struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;primaryKey" json:"_id"`
	Code               string              `gorm:"column:code;not null;uniqueIndex:coupons_code_key" json:"code"`
	Description        string              `gorm:"column:description;not null;default:''" json:"description"`
	DiscountType       enums.DiscountType  `gorm:"column:discount_type;not null" json:"discount_type"`
	DiscountValue      decimal.Decimal     `gorm:"column:discount_value;type:numeric(12,2);not null" json:"discount_value"`
	MinPurchaseAmount  decimal.Decimal     `gorm:"column:min_purchase_amount;type:numeric(12,2);not null;default:0" json:"min_purchase_amount"`
	MaxDiscountAmount  decimal.NullDecimal `gorm:"column:max_discount_amount;type:numeric(12,2)" json:"max_discount_amount"`
	UsageLimit         int                 `gorm:"column:usage_limit;not null;default:1" json:"usage_limit"`
	ExpirationDate     time.Time           `gorm:"column:expiration_date;not null" json:"expiration_date"`
	IsActive           bool                `gorm:"column:is_active;not null;default:true" json:"is_active"`
	EligibleCategories []CouponCategory    `gorm:"foreignKey:CouponID;constraint:OnDelete:CASCADE" json:"eligible_categories"`
	UsersApplied       []CouponUsage       `gorm:"foreignKey:CouponID;constraint:OnDelete:CASCADE" json:"users_applied,omitempty"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (c *Coupon) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// CoversCategory reports whether the coupon may discount products of categoryID.
func (c Coupon) CoversCategory(categoryID uuid.UUID) bool {
	for _, eligible := range c.EligibleCategories {
		if eligible.CategoryID == categoryID {
			return true
		}
	}
	return false
}

// CouponCategory is one entry of a coupon's eligible category set.
type CouponCategory struct {
	CouponID   uuid.UUID `gorm:"column:coupon_id;type:uuid;primaryKey" json:"-"`
	CategoryID uuid.UUID `gorm:"column:category_id;type:uuid;primaryKey" json:"category"`
}

// CouponUsage counts how many times a user redeemed a coupon.
type CouponUsage struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"_id"`
	CouponID  uuid.UUID `gorm:"column:coupon_id;type:uuid;not null;uniqueIndex:idx_coupon_usages_coupon_user" json:"-"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_coupon_usages_coupon_user" json:"user"`
	UsedCount int       `gorm:"column:used_count;not null;default:0" json:"used_count"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (u *CouponUsage) BeforeCreate(*gorm.DB) error {
	assignID(&u.ID)
	return nil
}
