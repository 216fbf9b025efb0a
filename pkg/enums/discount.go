package enums

import (
	"fmt"
	"strings"
)

// DiscountType is shared by coupons and offers.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// IsValid reports whether the value is a known DiscountType.
func (d DiscountType) IsValid() bool {
	return d == DiscountPercentage || d == DiscountFixed
}

// ParseDiscountType converts raw input into a DiscountType.
func ParseDiscountType(value string) (DiscountType, error) {
	candidate := DiscountType(strings.ToLower(strings.TrimSpace(value)))
	if !candidate.IsValid() {
		return "", fmt.Errorf("invalid discount type %q", value)
	}
	return candidate, nil
}

// OfferTarget selects what an offer's discount is written onto.
type OfferTarget string

const (
	OfferTargetProduct  OfferTarget = "product"
	OfferTargetCategory OfferTarget = "category"
)

// IsValid reports whether the value is a known OfferTarget.
func (o OfferTarget) IsValid() bool {
	return o == OfferTargetProduct || o == OfferTargetCategory
}

// ParseOfferTarget converts raw input into an OfferTarget.
func ParseOfferTarget(value string) (OfferTarget, error) {
	candidate := OfferTarget(strings.ToLower(strings.TrimSpace(value)))
	if !candidate.IsValid() {
		return "", fmt.Errorf("invalid offer target %q", value)
	}
	return candidate, nil
}
