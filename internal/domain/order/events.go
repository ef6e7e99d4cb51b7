package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// AggregateTypeOrder is the aggregate type of order events
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderPlaced        = "OrderPlaced"
	EventTypeOrderPaid          = "OrderPaid"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
	EventTypePaymentFailed      = "OrderPaymentFailed"
)

// PlacedEvent is published when an order is created awaiting payment
type PlacedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	UserID      uuid.UUID       `json:"user_id"`
	Total       decimal.Decimal `json:"total"`
}

// NewPlacedEvent creates a new PlacedEvent
func NewPlacedEvent(o *Order) *PlacedEvent {
	return &PlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		Total:           o.Total,
	}
}

// PaidEvent is published once a payment is verified
type PaidEvent struct {
	shared.BaseDomainEvent
	OrderID          uuid.UUID       `json:"order_id"`
	OrderNumber      string          `json:"order_number"`
	UserID           uuid.UUID       `json:"user_id"`
	Total            decimal.Decimal `json:"total"`
	DiscountID       *uuid.UUID      `json:"discount_id,omitempty"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
	GatewayPaymentID string          `json:"gateway_payment_id"`
}

// NewPaidEvent creates a new PaidEvent
func NewPaidEvent(o *Order) *PaidEvent {
	return &PaidEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeOrderPaid, AggregateTypeOrder, o.ID),
		OrderID:          o.ID,
		OrderNumber:      o.OrderNumber,
		UserID:           o.UserID,
		Total:            o.Total,
		DiscountID:       o.DiscountID,
		DiscountAmount:   o.DiscountAmount,
		GatewayPaymentID: o.GatewayPaymentID,
	}
}

// StatusChangedEvent is published on admin status changes
type StatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID `json:"order_id"`
	From    Status    `json:"from"`
	To      Status    `json:"to"`
}

// NewStatusChangedEvent creates a new StatusChangedEvent
func NewStatusChangedEvent(o *Order, from Status) *StatusChangedEvent {
	return &StatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		From:            from,
		To:              o.Status,
	}
}

// PaymentFailedEvent is published for every recorded payment failure
type PaymentFailedEvent struct {
	shared.BaseDomainEvent
	OrderID  uuid.UUID   `json:"order_id"`
	Kind     FailureKind `json:"kind"`
	Reason   string      `json:"reason,omitempty"`
	Attempts int         `json:"attempts"`
}

// NewPaymentFailedEvent creates a new PaymentFailedEvent
func NewPaymentFailedEvent(o *Order, kind FailureKind, reason string) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentFailed, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		Kind:            kind,
		Reason:          reason,
		Attempts:        o.PaymentAttempts,
	}
}
