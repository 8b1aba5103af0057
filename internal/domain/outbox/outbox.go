package outbox

import "context"

// Event is a domain event. AggregateID names the entity the event is about
// (the order number for payment events) and is used for log correlation.
type Event interface {
	EventName() string
	AggregateID() string
}

// Handler processes a published event.
type Handler func(ctx context.Context, e Event) error

// Publisher publishes events to interested subscribers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Subscriber registers handlers for event names.
type Subscriber interface {
	Subscribe(eventName string, h Handler)
}
