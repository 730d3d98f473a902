package pubsub

import (
	"context"
)

// Message travels on the in-process bus. Payload is the JSON encoding of a
// typed event; see Publish and Subscribe in typed.go.
type Message struct {
	Topic    string
	UserID   string // empty for events that concern no particular account
	Payload  []byte
	Metadata map[string]string
}

// Handler processes one delivered message.
type Handler func(ctx context.Context, msg Message) error

// Publisher puts messages on the bus.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Subscriber takes messages off the bus.
type Subscriber interface {
	// Subscribe starts listening to the given topic, processing messages with
	// the handler on a background goroutine. The subscription ends when ctx is
	// cancelled.
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Close() error
}
