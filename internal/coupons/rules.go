package coupons

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/albin6/cellsphere/pkg/db/models"
	"github.com/albin6/cellsphere/pkg/enums"
)

// Reason explains why a coupon cannot discount a line. The empty Reason means eligible.
type Reason string

const (
	ReasonEligible            Reason = ""
	ReasonNotFound            Reason = "NotFound"
	ReasonNotActive           Reason = "NotActive"
	ReasonExpired             Reason = "Expired"
	ReasonCategoryNotEligible Reason = "CategoryNotEligible"
	ReasonMinPurchaseNotMet   Reason = "MinPurchaseNotMet"
	ReasonUsageLimitReached   Reason = "UsageLimitReached"
)

var reasonMessages = map[Reason]string{
	ReasonEligible:            "Coupon applied successfully",
	ReasonNotFound:            "Coupon not found",
	ReasonNotActive:           "Coupon is not active",
	ReasonExpired:             "Coupon has expired",
	ReasonCategoryNotEligible: "This product category is not eligible for the coupon",
	ReasonMinPurchaseNotMet:   "Coupon minimum purchase amount not met",
	ReasonUsageLimitReached:   "Coupon usage limit reached for this user",
}

// Message is the customer-facing text for the reason.
func (r Reason) Message() string {
	return reasonMessages[r]
}

// Eligible reports whether the reason is the eligible verdict.
func (r Reason) Eligible() bool {
	return r == ReasonEligible
}

// CheckCoupon runs the coupon-level checks that fail a whole application.
func CheckCoupon(coupon *models.Coupon, now time.Time) Reason {
	switch {
	case coupon == nil:
		return ReasonNotFound
	case !coupon.IsActive:
		return ReasonNotActive
	case coupon.ExpirationDate.Before(now):
		return ReasonExpired
	}
	return ReasonEligible
}

// Validate returns the verdict for one line of categoryID worth amount.
// usage may be nil when the user never redeemed the coupon.
func Validate(coupon *models.Coupon, usage *models.CouponUsage, categoryID uuid.UUID, amount decimal.Decimal, now time.Time) Reason {
	if reason := CheckCoupon(coupon, now); !reason.Eligible() {
		return reason
	}
	if !coupon.CoversCategory(categoryID) {
		return ReasonCategoryNotEligible
	}
	if coupon.MinPurchaseAmount.GreaterThan(amount) {
		return ReasonMinPurchaseNotMet
	}
	if usage != nil && usage.UsedCount >= coupon.UsageLimit {
		return ReasonUsageLimitReached
	}
	return ReasonEligible
}

// ComputeDiscount returns the discount for amount. Percentage discounts round
// up to a whole unit. A fixed discount is only limited by the amount when
// clampFixed is set, so by default it can exceed the line it applies to.
func ComputeDiscount(coupon *models.Coupon, amount decimal.Decimal, clampFixed bool) decimal.Decimal {
	var discount decimal.Decimal
	switch coupon.DiscountType {
	case enums.DiscountPercentage:
		discount = amount.Mul(coupon.DiscountValue).Div(decimal.NewFromInt(100)).Ceil()
	default:
		discount = coupon.DiscountValue
		if clampFixed && discount.GreaterThan(amount) {
			discount = amount
		}
	}
	if maxDiscount := coupon.MaxDiscountAmount; maxDiscount.Valid && maxDiscount.Decimal.IsPositive() {
		discount = decimal.Min(discount, maxDiscount.Decimal)
	}
	return discount
}
