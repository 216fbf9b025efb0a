package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/albin6/cellsphere/pkg/enums"
	pkgerrors "github.com/albin6/cellsphere/pkg/errors"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, canTransition(enums.OrderStatusPending, enums.OrderStatusShipped))
	assert.True(t, canTransition(enums.OrderStatusShipped, enums.OrderStatusDelivered))
	assert.True(t, canTransition(enums.OrderStatusDelivered, enums.OrderStatusReturnRequested))
	assert.True(t, canTransition(enums.OrderStatusReturnRequested, enums.OrderStatusReturned))

	assert.False(t, canTransition(enums.OrderStatusPending, enums.OrderStatusDelivered))
	assert.False(t, canTransition(enums.OrderStatusCancelled, enums.OrderStatusPending))
	assert.False(t, canTransition(enums.OrderStatusReturned, enums.OrderStatusDelivered))
	assert.False(t, canTransition(enums.OrderStatusCancelled, enums.OrderStatusCancelled))
}

func TestCheckCustomerCancel(t *testing.T) {
	assert.NoError(t, checkCustomerCancel(enums.OrderStatusPending))
	assert.NoError(t, checkCustomerCancel(enums.OrderStatusShipped))
	for _, from := range []enums.OrderStatus{
		enums.OrderStatusDelivered,
		enums.OrderStatusCancelled,
		enums.OrderStatusReturnRequested,
		enums.OrderStatusReturned,
	} {
		err := checkCustomerCancel(from)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition), from)
	}
}

func TestCheckAdminTransition(t *testing.T) {
	assert.NoError(t, checkAdminTransition(enums.OrderStatusDelivered, enums.OrderStatusCancelled, true))
	assert.Error(t, checkAdminTransition(enums.OrderStatusDelivered, enums.OrderStatusCancelled, false))
	assert.Error(t, checkAdminTransition(enums.OrderStatusDelivered, enums.OrderStatusReturned, true))
	assert.Error(t, checkAdminTransition(enums.OrderStatusShipped, enums.OrderStatusShipped, true))
	assert.Error(t, checkAdminTransition(enums.OrderStatusReturned, enums.OrderStatusCancelled, true))
	assert.NoError(t, checkAdminTransition(enums.OrderStatusPending, enums.OrderStatusCancelled, false))

	err := invalidTransition(enums.OrderStatusCancelled, enums.OrderStatusCancelled)
	assert.Equal(t, "order item is already Cancelled", pkgerrors.As(err).Message())
}
