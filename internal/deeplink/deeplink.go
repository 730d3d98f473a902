// Package deeplink routes incoming app links. Only the email verification
// link is recognised today.
package deeplink

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/nfrund/editorimages/internal/events"
	"github.com/nfrund/editorimages/internal/pubsub"
)

// nestedParams are query parameters that short-link services use to wrap
// the real target URL.
var nestedParams = []string{"link", "continueUrl"}

// Handler turns verification links into EmailVerified events.
type Handler struct {
	verifyDomain string
	publisher    pubsub.Publisher
}

// NewHandler creates a handler for links on verifyDomain.
func NewHandler(verifyDomain string, publisher pubsub.Publisher) *Handler {
	return &Handler{verifyDomain: strings.ToLower(verifyDomain), publisher: publisher}
}

// Handle reports whether rawURL was a verification link. Other links are
// ignored without error.
func (h *Handler) Handle(ctx context.Context, rawURL string) (bool, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false, fmt.Errorf("invalid link: %w", err)
	}
	if !h.IsVerificationLink(u) {
		slog.DebugContext(ctx, "deeplink: ignored", "host", u.Hostname())
		return false, nil
	}

	if err := pubsub.Publish(ctx, h.publisher, events.EmailVerifiedEvent, events.EmailVerified{}); err != nil {
		return true, fmt.Errorf("failed to publish email verified: %w", err)
	}
	slog.InfoContext(ctx, "deeplink: email verification link received")
	return true, nil
}

// IsVerificationLink checks the link host and, one level deep, the hosts of
// wrapped target URLs.
func (h *Handler) IsVerificationLink(u *url.URL) bool {
	if h.matches(u) {
		return true
	}
	q := u.Query()
	for _, p := range nestedParams {
		raw := q.Get(p)
		if raw == "" {
			continue
		}
		if nested, err := url.Parse(raw); err == nil && h.matches(nested) {
			return true
		}
	}
	return false
}

func (h *Handler) matches(u *url.URL) bool {
	return h.verifyDomain != "" && strings.ToLower(u.Hostname()) == h.verifyDomain
}
