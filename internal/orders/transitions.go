package orders

import (
	"github.com/albin6/cellsphere/pkg/enums"
	pkgerrors "github.com/albin6/cellsphere/pkg/errors"
)

var lineTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:         {enums.OrderStatusShipped, enums.OrderStatusCancelled},
	enums.OrderStatusShipped:         {enums.OrderStatusDelivered, enums.OrderStatusCancelled},
	enums.OrderStatusDelivered:       {enums.OrderStatusReturnRequested},
	enums.OrderStatusReturnRequested: {enums.OrderStatusReturned, enums.OrderStatusDelivered},
}

// adminTargets are the statuses an admin may set directly; the return states
// are only reachable through the return flow.
var adminTargets = map[enums.OrderStatus]bool{
	enums.OrderStatusShipped:   true,
	enums.OrderStatusDelivered: true,
	enums.OrderStatusCancelled: true,
}

func canTransition(from, to enums.OrderStatus) bool {
	for _, next := range lineTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// checkCustomerCancel only lets customers cancel lines that have not been delivered.
func checkCustomerCancel(from enums.OrderStatus) error {
	if from == enums.OrderStatusPending || from == enums.OrderStatusShipped {
		return nil
	}
	return invalidTransition(from, enums.OrderStatusCancelled)
}

func checkAdminTransition(from, to enums.OrderStatus, allowCancelDelivered bool) error {
	if !adminTargets[to] {
		return invalidTransition(from, to)
	}
	if from == enums.OrderStatusDelivered && to == enums.OrderStatusCancelled && allowCancelDelivered {
		return nil
	}
	if !canTransition(from, to) {
		return invalidTransition(from, to)
	}
	return nil
}

func invalidTransition(from, to enums.OrderStatus) error {
	message := "cannot move order item from " + from.String() + " to " + to.String()
	if from == to {
		message = "order item is already " + from.String()
	}
	return pkgerrors.New(pkgerrors.CodeInvalidTransition, message).
		WithDetails(map[string]any{"from": from, "to": to})
}
