package shared

import "context"

// EventHandler consumes domain events.
//
// EventTypes lists the routes the handler wants when it is subscribed without
// explicit ones: an event type such as "OrderPaid", or "Order.*" for every
// event of an aggregate. Nil subscribes to everything.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// EventPublisher publishes domain events after the state change that raised
// them has been stored
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber manages handler routes
type EventSubscriber interface {
	Subscribe(handler EventHandler, routes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus is the process-wide publisher and subscriber
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
