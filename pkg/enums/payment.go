package enums

import (
	"fmt"
	"strings"
)

// PaymentMethod describes how a customer settled an order.
type PaymentMethod string

const (
	PaymentMethodWallet   PaymentMethod = "Wallet"
	PaymentMethodPaypal   PaymentMethod = "Paypal"
	PaymentMethodRazorpay PaymentMethod = "Razorpay"
	PaymentMethodCOD      PaymentMethod = "Cash on Delivery"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodWallet,
	PaymentMethodPaypal,
	PaymentMethodRazorpay,
	PaymentMethodCOD,
}

// paymentMethodAliases covers labels the storefront has sent historically.
var paymentMethodAliases = map[string]PaymentMethod{
	"upi": PaymentMethodRazorpay,
	"cod": PaymentMethodCOD,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsOnline reports whether the payment was captured before the order was placed.
func (p PaymentMethod) IsOnline() bool {
	return p == PaymentMethodPaypal || p == PaymentMethodRazorpay
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validPaymentMethods {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	if alias, ok := paymentMethodAliases[strings.ToLower(trimmed)]; ok {
		return alias, nil
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}

// PaymentStatus is the settlement state of the whole order.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusFailed  PaymentStatus = "Failed"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusPaid,
	PaymentStatusFailed,
}

// String implements fmt.Stringer.
func (p PaymentStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentStatus.
func (p PaymentStatus) IsValid() bool {
	for _, candidate := range validPaymentStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentStatus converts raw input into a PaymentStatus.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validPaymentStatuses {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}
