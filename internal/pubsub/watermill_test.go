package pubsub

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeting struct {
	Text string `json:"text"`
}

var testGreeting = NewEvent[greeting]("test.greeting", "used by the bridge tests")

func TestWatermillBridge(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bridge := NewWatermillBridge()
	defer bridge.Close()

	t.Run("typed round trip", func(t *testing.T) {
		got := make(chan greeting, 1)
		require.NoError(t, Subscribe(ctx, bridge, testGreeting, func(ctx context.Context, g greeting) error {
			got <- g
			return nil
		}))

		require.NoError(t, Publish(ctx, bridge, testGreeting, greeting{Text: "hi"}))

		select {
		case g := <-got:
			assert.Equal(t, "hi", g.Text)
		case <-time.After(2 * time.Second):
			t.Fatal("message not delivered")
		}
	})

	t.Run("failing handler does not stall the subscription", func(t *testing.T) {
		calls := make(chan struct{}, 2)
		require.NoError(t, bridge.Subscribe(ctx, "test.failing", func(ctx context.Context, msg Message) error {
			calls <- struct{}{}
			return errors.New("boom")
		}))

		require.NoError(t, bridge.Publish(ctx, Message{Topic: "test.failing"}))
		require.NoError(t, bridge.Publish(ctx, Message{Topic: "test.failing"}))

		for i := 0; i < 2; i++ {
			select {
			case <-calls:
			case <-time.After(2 * time.Second):
				t.Fatalf("handler call %d missing", i+1)
			}
		}
	})

	t.Run("subscription ends with its context", func(t *testing.T) {
		subCtx, subCancel := context.WithCancel(ctx)
		got := make(chan Message, 1)
		require.NoError(t, bridge.Subscribe(subCtx, "test.scoped", func(ctx context.Context, msg Message) error {
			got <- msg
			return nil
		}))
		subCancel()

		// Give the bridge a moment to drop the cancelled subscriber.
		time.Sleep(50 * time.Millisecond)
		require.NoError(t, bridge.Publish(ctx, Message{Topic: "test.scoped"}))

		select {
		case <-got:
			t.Fatal("cancelled subscription still received a message")
		case <-time.After(100 * time.Millisecond):
		}
	})
}
