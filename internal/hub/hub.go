// Package hub fans messages out to connected feed clients.
package hub

import (
	"context"
	"log/slog"

	"github.com/nfrund/editorimages/internal/pubsub"
)

// Subscriber is a single feed client.
type Subscriber struct {
	// Send is a buffered channel of outbound messages. The Hub closes it when
	// the subscriber is unregistered or falls behind.
	Send chan []byte
}

// NewSubscriber creates a subscriber with a send buffer of size n.
func NewSubscriber(n int) *Subscriber {
	return &Subscriber{Send: make(chan []byte, n)}
}

// Hub maintains the set of active subscribers and broadcasts messages to
// them. New subscribers first receive the most recent message, so a client
// that connects late still learns the current state.
type Hub struct {
	subscribers map[*Subscriber]bool
	last        []byte

	// Broadcast is the channel for messages to send to every subscriber.
	Broadcast chan []byte

	// Register is a channel for new subscribers to register with the hub.
	Register chan *Subscriber

	// Unregister is a channel for subscribers to unregister from the hub.
	Unregister chan *Subscriber
}

// NewHub creates and returns a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		Broadcast:   make(chan []byte),
		Register:    make(chan *Subscriber),
		Unregister:  make(chan *Subscriber),
		subscribers: make(map[*Subscriber]bool),
	}
}

// Run is the hub's loop. It owns the subscriber set and returns when ctx is
// cancelled, closing every remaining subscriber.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for s := range h.subscribers {
			close(s.Send)
			delete(h.subscribers, s)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case subscriber := <-h.Register:
			h.subscribers[subscriber] = true
			slog.Info("New subscriber registered", "total_subscribers", len(h.subscribers))
			if h.last != nil {
				h.deliver(subscriber, h.last)
			}

		case subscriber := <-h.Unregister:
			if _, ok := h.subscribers[subscriber]; ok {
				delete(h.subscribers, subscriber)
				close(subscriber.Send)
				slog.Info("Subscriber unregistered", "total_subscribers", len(h.subscribers))
			}

		case message := <-h.Broadcast:
			h.last = message
			slog.Debug("Broadcasting message", "recipient_count", len(h.subscribers))
			for subscriber := range h.subscribers {
				h.deliver(subscriber, message)
			}
		}
	}
}

// deliver is a non-blocking send. A full buffer means the client is lagging
// or gone, so it is dropped.
func (h *Hub) deliver(subscriber *Subscriber, message []byte) {
	select {
	case subscriber.Send <- message:
	default:
		close(subscriber.Send)
		delete(h.subscribers, subscriber)
		slog.Warn("Unregistering slow subscriber", "total_subscribers", len(h.subscribers))
	}
}

// Forward broadcasts the raw payload of every message published on topic
// until ctx is cancelled.
func (h *Hub) Forward(ctx context.Context, sub pubsub.Subscriber, topic string) error {
	return sub.Subscribe(ctx, topic, func(ctx context.Context, msg pubsub.Message) error {
		select {
		case h.Broadcast <- msg.Payload:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}
