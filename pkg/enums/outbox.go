package enums

import "fmt"

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateOrder  OutboxAggregateType = "order"
	AggregateWallet OutboxAggregateType = "wallet"
	AggregateCoupon OutboxAggregateType = "coupon"
)

// IsValid reports whether the value is a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	switch a {
	case AggregateOrder, AggregateWallet, AggregateCoupon:
		return true
	}
	return false
}

// OutboxEventType names a domain event relayed by the outbox publisher.
type OutboxEventType string

const (
	EventOrderPlaced        OutboxEventType = "order.placed"
	EventOrderLineCancelled OutboxEventType = "order.line_cancelled"
	EventOrderLineStatus    OutboxEventType = "order.line_status_changed"
	EventReturnRequested    OutboxEventType = "order.return_requested"
	EventReturnResolved     OutboxEventType = "order.return_resolved"
	EventWalletCredited     OutboxEventType = "wallet.credited"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderPlaced,
	EventOrderLineCancelled,
	EventOrderLineStatus,
	EventReturnRequested,
	EventReturnResolved,
	EventWalletCredited,
}

// IsValid reports whether the value is a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}

// OutboxDLQErrorReason records why an outbox row stopped being retried.
type OutboxDLQErrorReason string

const (
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
)
