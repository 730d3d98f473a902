package deeplink

import (
	"context"
	"sync"
	"testing"

	"github.com/nfrund/editorimages/internal/events"
	"github.com/nfrund/editorimages/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *recordingPublisher) Publish(_ context.Context, msg pubsub.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, msg.Topic)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestHandler_Handle(t *testing.T) {
	tests := []struct {
		name string
		link string
		want bool
	}{
		{"verify domain", "https://verifyeeditorimages.page.link/abc", true},
		{"host is case insensitive", "https://VerifyEEditorImages.page.link/?x=1", true},
		{"nested link parameter", "https://accounts.example.com/action?mode=verifyEmail&link=https%3A%2F%2Fverifyeeditorimages.page.link%2Fx", true},
		{"nested continueUrl", "https://auth.example.com/__/auth/action?continueUrl=https://verifyeeditorimages.page.link", true},
		{"other host", "https://example.com/verify", false},
		{"suffix is not a match", "https://evil-verifyeeditorimages.page.link.example.com/", false},
		{"custom scheme", "editorimages://open", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &recordingPublisher{}
			h := NewHandler("verifyeeditorimages.page.link", pub)

			handled, err := h.Handle(context.Background(), tt.link)
			require.NoError(t, err)
			assert.Equal(t, tt.want, handled)

			if tt.want {
				assert.Equal(t, []string{events.EmailVerifiedEvent.Name()}, pub.topics)
			} else {
				assert.Empty(t, pub.topics)
			}
		})
	}
}

func TestHandler_InvalidURL(t *testing.T) {
	h := NewHandler("verifyeeditorimages.page.link", &recordingPublisher{})
	_, err := h.Handle(context.Background(), "http://[::1")
	assert.ErrorContains(t, err, "invalid link")
}
