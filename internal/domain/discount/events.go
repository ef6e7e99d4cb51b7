package discount

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// AggregateTypeDiscount is the aggregate type of discount events
const AggregateTypeDiscount = "Discount"

// Event type constants
const (
	EventTypeDiscountCreated       = "DiscountCreated"
	EventTypeDiscountStatusChanged = "DiscountStatusChanged"
	EventTypeDiscountRedeemed      = "DiscountRedeemed"
)

// CreatedEvent is published when an admin creates a discount
type CreatedEvent struct {
	shared.BaseDomainEvent
	DiscountID uuid.UUID `json:"discount_id"`
	Name       string    `json:"name"`
	Type       Type      `json:"discount_type"`
}

// NewCreatedEvent creates a new CreatedEvent
func NewCreatedEvent(d *Discount) *CreatedEvent {
	return &CreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDiscountCreated, AggregateTypeDiscount, d.ID),
		DiscountID:      d.ID,
		Name:            d.Name,
		Type:            d.Type,
	}
}

// StatusChangedEvent is published when a discount is toggled
type StatusChangedEvent struct {
	shared.BaseDomainEvent
	DiscountID uuid.UUID `json:"discount_id"`
	IsActive   bool      `json:"is_active"`
}

// NewStatusChangedEvent creates a new StatusChangedEvent
func NewStatusChangedEvent(d *Discount) *StatusChangedEvent {
	return &StatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDiscountStatusChanged, AggregateTypeDiscount, d.ID),
		DiscountID:      d.ID,
		IsActive:        d.IsActive,
	}
}

// RedeemedEvent is published when a paid order used the discount
type RedeemedEvent struct {
	shared.BaseDomainEvent
	DiscountID uuid.UUID       `json:"discount_id"`
	UserID     uuid.UUID       `json:"user_id"`
	OrderID    uuid.UUID       `json:"order_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// NewRedeemedEvent creates a new RedeemedEvent
func NewRedeemedEvent(d *Discount, userID, orderID uuid.UUID, amount decimal.Decimal) *RedeemedEvent {
	return &RedeemedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDiscountRedeemed, AggregateTypeDiscount, d.ID),
		DiscountID:      d.ID,
		UserID:          userID,
		OrderID:         orderID,
		Amount:          amount,
	}
}
