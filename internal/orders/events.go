package orders

import (
	"github.com/shopspring/decimal"

	"github.com/albin6/cellsphere/pkg/db/models"
	"github.com/albin6/cellsphere/pkg/enums"
	"github.com/albin6/cellsphere/pkg/outbox/payloads"
)

func orderPlacedPayload(order *models.Order) payloads.OrderPlacedEvent {
	lines := make([]payloads.OrderLine, 0, len(order.OrderItems))
	for _, line := range order.OrderItems {
		lines = append(lines, payloads.OrderLine{
			ProductID: line.ProductID,
			SKU:       line.SKU,
			Quantity:  line.Quantity,
			Price:     line.Price,
			Discount:  line.Discount,
		})
	}
	return payloads.OrderPlacedEvent{
		OrderID:                order.ID,
		UserID:                 order.UserID,
		PaymentMethod:          order.PaymentMethod,
		PaymentStatus:          order.PaymentStatus,
		TotalAmount:            order.TotalAmount,
		TotalPriceWithDiscount: order.TotalPriceWithDiscount,
		CouponCode:             order.CouponCode,
		CouponDiscount:         order.CouponDiscount,
		Lines:                  lines,
	}
}

func cancelledPayload(order *models.Order, line *models.OrderLine, from enums.OrderStatus, refund decimal.Decimal, refunded bool) payloads.OrderLineCancelledEvent {
	return payloads.OrderLineCancelledEvent{
		OrderID:      order.ID,
		UserID:       order.UserID,
		SKU:          line.SKU,
		Quantity:     line.Quantity,
		FromStatus:   from,
		RefundAmount: refund,
		Refunded:     refunded,
	}
}

func statusChangedPayload(order *models.Order, line *models.OrderLine, from enums.OrderStatus) payloads.OrderLineStatusChangedEvent {
	return payloads.OrderLineStatusChangedEvent{
		OrderID:    order.ID,
		SKU:        line.SKU,
		FromStatus: from,
		ToStatus:   line.OrderStatus,
	}
}

func returnRequestedPayload(order *models.Order, line *models.OrderLine, reason string) payloads.ReturnRequestedEvent {
	return payloads.ReturnRequestedEvent{
		OrderID: order.ID,
		UserID:  order.UserID,
		SKU:     line.SKU,
		Reason:  reason,
	}
}

func returnResolvedPayload(order *models.Order, line *models.OrderLine, approved bool, refund decimal.Decimal, refunded bool) payloads.ReturnResolvedEvent {
	return payloads.ReturnResolvedEvent{
		OrderID:      order.ID,
		UserID:       order.UserID,
		SKU:          line.SKU,
		Approved:     approved,
		RefundAmount: refund,
		Refunded:     refunded,
	}
}
