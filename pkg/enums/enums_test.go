package enums

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseOrderStatusIgnoresCase(t *testing.T) {
	status, err := ParseOrderStatus("cancelled")
	require.NoError(t, err)
	require.Equal(t, OrderStatusCancelled, status)

	status, err = ParseOrderStatus(" return requested ")
	require.NoError(t, err)
	require.Equal(t, OrderStatusReturnRequested, status)

	_, err = ParseOrderStatus("lost")
	require.Error(t, err)
}

func TestOrderStatusTerminal(t *testing.T) {
	require.True(t, OrderStatusCancelled.IsTerminal())
	require.True(t, OrderStatusReturned.IsTerminal())
	require.False(t, OrderStatusDelivered.IsTerminal())
	require.False(t, OrderStatusReturnRequested.IsTerminal())
}

func TestParsePaymentMethodAliases(t *testing.T) {
	cases := map[string]PaymentMethod{
		"Wallet":           PaymentMethodWallet,
		"paypal":           PaymentMethodPaypal,
		"UPI":              PaymentMethodRazorpay,
		"Razorpay":         PaymentMethodRazorpay,
		"Cash on Delivery": PaymentMethodCOD,
		"cod":              PaymentMethodCOD,
	}
	for raw, want := range cases {
		got, err := ParsePaymentMethod(raw)
		require.NoError(t, err, raw)
		require.Equal(t, want, got, raw)
	}
	_, err := ParsePaymentMethod("barter")
	require.Error(t, err)

	require.True(t, PaymentMethodRazorpay.IsOnline())
	require.False(t, PaymentMethodWallet.IsOnline())
}

func TestParseSalesPeriodDefaultsToDaily(t *testing.T) {
	period, err := ParseSalesPeriod("")
	require.NoError(t, err)
	require.Equal(t, SalesPeriodDaily, period)

	period, err = ParseSalesPeriod("Monthly")
	require.NoError(t, err)
	require.Equal(t, SalesPeriodMonthly, period)

	_, err = ParseSalesPeriod("yearly")
	require.Error(t, err)
}

func TestParseDiscountAndOfferTarget(t *testing.T) {
	d, err := ParseDiscountType("Percentage")
	require.NoError(t, err)
	require.Equal(t, DiscountPercentage, d)
	_, err = ParseDiscountType("bogo")
	require.Error(t, err)

	target, err := ParseOfferTarget("category")
	require.NoError(t, err)
	require.Equal(t, OfferTargetCategory, target)
	_, err = ParseOfferTarget("brand")
	require.Error(t, err)
}
