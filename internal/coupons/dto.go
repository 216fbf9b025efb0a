package coupons

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/albin6/cellsphere/pkg/db/models"
	"github.com/albin6/cellsphere/pkg/enums"
	"github.com/albin6/cellsphere/pkg/pagination"
)

// PreviewLine is one cart line sent to the apply-coupon preview. The
// storefront sends the line's category under "id".
type PreviewLine struct {
	CategoryID uuid.UUID       `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	Code       string          `json:"code"`
}

// PreviewResult is the per-line verdict returned by the preview, echoing the
// category it was evaluated against.
type PreviewResult struct {
	CategoryID         uuid.UUID       `json:"id"`
	Message            string          `json:"message"`
	Reason             Reason          `json:"reason,omitempty"`
	OriginalAmount     decimal.Decimal `json:"original_amount"`
	DiscountAmount     decimal.Decimal `json:"discountAmount"`
	TotalAfterDiscount decimal.Decimal `json:"total_after_discount"`
}

// OrderLineAmount is a checkout line as seen by the coupon tracker.
type OrderLineAmount struct {
	ProductID  uuid.UUID
	SKU        string
	CategoryID uuid.UUID
	Amount     decimal.Decimal
}

// LineDiscount is the coupon verdict for one checkout line.
type LineDiscount struct {
	ProductID uuid.UUID
	SKU       string
	Reason   Reason
	Discount decimal.Decimal
}

// Application is the coupon outcome for a whole order.
type Application struct {
	Coupon        *models.Coupon
	Lines         []LineDiscount
	TotalDiscount decimal.Decimal
}

// DiscountFor returns the discount applied to the product's sku, or zero.
func (a *Application) DiscountFor(productID uuid.UUID, sku string) decimal.Decimal {
	if a == nil {
		return decimal.Zero
	}
	for _, line := range a.Lines {
		if line.ProductID == productID && line.SKU == sku {
			return line.Discount
		}
	}
	return decimal.Zero
}

// CouponInput is the admin create/update payload.
type CouponInput struct {
	Code               string             `json:"code" validate:"required,min=3,max=32"`
	Description        string             `json:"description" validate:"required,max=500"`
	DiscountType       enums.DiscountType `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue      decimal.Decimal    `json:"discount_value"`
	MinPurchaseAmount  decimal.Decimal    `json:"min_purchase_amount"`
	MaxDiscountAmount  *decimal.Decimal   `json:"max_discount_amount"`
	UsageLimit         int                `json:"usage_limit" validate:"required,min=1"`
	ExpirationDate     time.Time          `json:"expiration_date" validate:"required"`
	EligibleCategories []uuid.UUID        `json:"eligible_categories" validate:"required,min=1"`
	IsActive           *bool              `json:"is_active"`
}

// CouponList is the paginated admin listing.
type CouponList struct {
	Coupons []models.Coupon `json:"coupons"`
	pagination.Page
}
