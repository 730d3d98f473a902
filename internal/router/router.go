// Package router decides which screen is visible and keeps the modal stack.
package router

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nfrund/editorimages/internal/domain"
	"github.com/nfrund/editorimages/internal/events"
	"github.com/nfrund/editorimages/internal/pubsub"
)

// Resolve picks the root screen for a session.
func Resolve(session *domain.Session) domain.Screen {
	if session.Verified() {
		return domain.ScreenEditor
	}
	return domain.ScreenAuth
}

// SessionSource is the part of the auth gateway Start needs.
type SessionSource interface {
	CurrentSession() *domain.Session
	Logout(ctx context.Context)
}

// Router implements flow.Navigator. Every change is published as a
// ScreenChanged event when a publisher is configured.
type Router struct {
	publisher pubsub.Publisher

	mu     sync.Mutex
	root   domain.Screen
	modals []domain.Screen
}

// New creates a router. publisher may be nil.
func New(publisher pubsub.Publisher) *Router {
	return &Router{publisher: publisher}
}

// Start shows the screen for the restored session. A session that was
// persisted before its email was confirmed is logged out first, so the user
// lands on the login screen rather than half signed in.
func (r *Router) Start(ctx context.Context, source SessionSource) domain.Screen {
	session := source.CurrentSession()
	if session != nil && !session.EmailVerified {
		slog.InfoContext(ctx, "router: discarding unverified session", "user_id", session.UserID)
		source.Logout(ctx)
		session = nil
	}

	screen := Resolve(session)
	r.Show(screen)
	return screen
}

func (r *Router) Show(screen domain.Screen) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.root = screen
	r.modals = nil
	r.changed()
}

func (r *Router) Present(screen domain.Screen) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modals = append(r.modals, screen)
	r.changed()
}

// Dismiss pops the top modal. It is a no-op without one.
func (r *Router) Dismiss() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.modals) == 0 {
		return
	}
	r.modals = r.modals[:len(r.modals)-1]
	r.changed()
}

// Current is the top modal or, without modals, the root screen.
func (r *Router) Current() domain.Screen {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := len(r.modals); n > 0 {
		return r.modals[n-1]
	}
	return r.root
}

// Snapshot returns the current navigation state as an event payload.
func (r *Router) Snapshot() events.ScreenChanged {
	r.mu.Lock()
	defer r.mu.Unlock()
	return events.NewScreenChanged(r.root, r.modals)
}

// changed runs with mu held so events go out in the order changes were made.
func (r *Router) changed() {
	payload := events.NewScreenChanged(r.root, r.modals)
	slog.Debug("router: screen changed", "root", payload.Root, "current", payload.Current, "modals", payload.Modals)
	if r.publisher == nil {
		return
	}
	if err := pubsub.Publish(context.Background(), r.publisher, events.ScreenChangedEvent, payload); err != nil {
		slog.Warn("router: failed to publish screen change", "error", err)
	}
}
