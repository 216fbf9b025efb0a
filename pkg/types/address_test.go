package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShippingAddressScanAcceptsDriverShapes(t *testing.T) {
	addr := ShippingAddress{Name: "Asha", Phone: "9000000000", Line1: "12 MG Road", City: "Kochi", State: "Kerala", Pincode: "682001"}
	value, err := addr.Value()
	require.NoError(t, err)

	var fromString ShippingAddress
	require.NoError(t, fromString.Scan(value))
	require.Equal(t, addr, fromString)

	var fromBytes ShippingAddress
	require.NoError(t, fromBytes.Scan([]byte(value.(string))))
	require.Equal(t, addr, fromBytes)

	var empty ShippingAddress
	require.NoError(t, empty.Scan(nil))
	require.Equal(t, ShippingAddress{}, empty)

	require.Error(t, empty.Scan(42))
}
