package cart

import "github.com/storefront/backend/internal/domain/shared"

// AggregateTypeCart is the aggregate type of cart events
const AggregateTypeCart = "Cart"

// EventTypeCartUpdated is published after every cart mutation
const EventTypeCartUpdated = "CartUpdated"

// Op names the mutation that produced a change
type Op string

const (
	OpAdd      Op = "add"
	OpIncrease Op = "increase"
	OpDecrease Op = "decrease"
	OpRemove   Op = "remove"
	OpClear    Op = "clear"
	OpMerge    Op = "merge"
)

// UpdatedEvent carries the cart state after a mutation
type UpdatedEvent struct {
	shared.BaseDomainEvent
	OwnerID   string `json:"owner_id"`
	Op        Op     `json:"op"`
	ItemCount int    `json:"item_count"`
	Version   int    `json:"version"`
}

// NewUpdatedEvent creates a new UpdatedEvent
func NewUpdatedEvent(c *Cart, op Op) *UpdatedEvent {
	return &UpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCartUpdated, AggregateTypeCart, c.AggregateID()),
		OwnerID:         c.OwnerID,
		Op:              op,
		ItemCount:       c.ItemCount(),
		Version:         c.Version,
	}
}
