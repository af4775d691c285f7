// Package eventbus carries flowgen lifecycle events (generations, saves,
// catalog seeds) between processes.
package eventbus

import (
	"context"

	"github.com/dukex/flowgen/pkg/events"
)

// Event is any payload defined in pkg/events.
type Event interface {
	GetType() events.EventType
}

// EventPublisher is what the services depend on. key partitions the topic.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

// EventSubscriber dispatches decoded events to one handler per event type.
// Handlers must be registered before Subscribe.
type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

// EventHandler receives a pointer to the decoded event struct.
type EventHandler func(ctx context.Context, event any) error

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
