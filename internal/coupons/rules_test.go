package coupons

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albin6/cellsphere/pkg/db/models"
	"github.com/albin6/cellsphere/pkg/enums"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestComputeDiscount(t *testing.T) {
	percent := &models.Coupon{DiscountType: enums.DiscountPercentage, DiscountValue: dec("10")}
	capped := &models.Coupon{
		DiscountType:      enums.DiscountPercentage,
		DiscountValue:     dec("10"),
		MaxDiscountAmount: decimal.NewNullDecimal(dec("30")),
	}
	fixed := &models.Coupon{DiscountType: enums.DiscountFixed, DiscountValue: dec("75")}

	assert.True(t, ComputeDiscount(percent, dec("500"), false).Equal(dec("50")))
	assert.True(t, ComputeDiscount(capped, dec("500"), false).Equal(dec("30")))
	assert.True(t, ComputeDiscount(fixed, dec("50"), false).Equal(dec("75")))
	assert.True(t, ComputeDiscount(fixed, dec("50"), true).Equal(dec("50")))
}

func TestComputeDiscountRoundsPercentageUp(t *testing.T) {
	coupon := &models.Coupon{DiscountType: enums.DiscountPercentage, DiscountValue: dec("15")}
	assert.True(t, ComputeDiscount(coupon, dec("333"), false).Equal(dec("50")))
}

func TestComputeDiscountIgnoresZeroCap(t *testing.T) {
	coupon := &models.Coupon{
		DiscountType:      enums.DiscountFixed,
		DiscountValue:     dec("40"),
		MaxDiscountAmount: decimal.NewNullDecimal(decimal.Zero),
	}
	assert.True(t, ComputeDiscount(coupon, dec("100"), false).Equal(dec("40")))
}

func TestValidateReasons(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	phones := uuid.New()
	coupon := &models.Coupon{
		IsActive:           true,
		ExpirationDate:     now.Add(24 * time.Hour),
		MinPurchaseAmount:  dec("100"),
		UsageLimit:         2,
		EligibleCategories: []models.CouponCategory{{CategoryID: phones}},
	}

	require.Equal(t, ReasonNotFound, Validate(nil, nil, phones, dec("500"), now))
	require.Equal(t, ReasonEligible, Validate(coupon, nil, phones, dec("500"), now))
	require.Equal(t, ReasonCategoryNotEligible, Validate(coupon, nil, uuid.New(), dec("500"), now))
	require.Equal(t, ReasonMinPurchaseNotMet, Validate(coupon, nil, phones, dec("99"), now))
	require.Equal(t, ReasonEligible, Validate(coupon, &models.CouponUsage{UsedCount: 1}, phones, dec("500"), now))
	require.Equal(t, ReasonUsageLimitReached, Validate(coupon, &models.CouponUsage{UsedCount: 2}, phones, dec("500"), now))

	expired := *coupon
	expired.ExpirationDate = now.Add(-time.Minute)
	require.Equal(t, ReasonExpired, Validate(&expired, nil, phones, dec("500"), now))

	inactive := *coupon
	inactive.IsActive = false
	require.Equal(t, ReasonNotActive, Validate(&inactive, nil, phones, dec("500"), now))
}
