// Package confirmation runs the "check your inbox" screen shown after
// registration or an unverified login.
package confirmation

import (
	"context"
	"log/slog"
	"time"

	"github.com/nfrund/editorimages/internal/domain"
	"github.com/nfrund/editorimages/internal/events"
	"github.com/nfrund/editorimages/internal/pubsub"
)

// Gateway is the part of the auth gateway the screen needs.
type Gateway interface {
	SendVerificationEmail(ctx context.Context, session *domain.Session) error
	Reload(ctx context.Context) (*domain.Session, error)
	Logout(ctx context.Context)
}

// Navigator switches screens.
type Navigator interface {
	Show(screen domain.Screen)
	Dismiss()
}

// Intent is a user action on the screen.
type Intent interface {
	intent()
}

// DismissTapped abandons the confirmation: the user is signed out.
type DismissTapped struct{}

func (DismissTapped) intent() {}

// State is what the screen displays.
type State struct {
	EmailSent bool
	Checking  bool
	Verified  bool
}

type reloadResult struct {
	session *domain.Session
	err     error
}

// Screen is the controller behind the confirmation screen. It is single use:
// Run returns once the user is verified or has dismissed the screen.
type Screen struct {
	gateway      Gateway
	nav          Navigator
	subscriber   pubsub.Subscriber
	pollInterval time.Duration

	intents   chan Intent
	signals   chan struct{}
	sent      chan error
	results   chan reloadResult
	observers []func(State)

	state State
}

// New creates the screen. subscriber may be nil, leaving polling as the
// only way to notice verification.
func New(gateway Gateway, nav Navigator, subscriber pubsub.Subscriber, pollInterval time.Duration) *Screen {
	return &Screen{
		gateway:      gateway,
		nav:          nav,
		subscriber:   subscriber,
		pollInterval: pollInterval,
		intents:      make(chan Intent, 4),
		signals:      make(chan struct{}, 1),
		sent:         make(chan error, 1),
		results:      make(chan reloadResult, 1),
	}
}

// Observe registers fn to receive every state change. Register before Run.
func (s *Screen) Observe(fn func(State)) {
	s.observers = append(s.observers, fn)
}

// Send queues an intent.
func (s *Screen) Send(ctx context.Context, in Intent) error {
	select {
	case s.intents <- in:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run sends the verification email and waits for the account to be
// verified, either through an EmailVerified event or by polling.
func (s *Screen) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.subscriber != nil {
		err := pubsub.Subscribe(ctx, s.subscriber, events.EmailVerifiedEvent, func(context.Context, events.EmailVerified) error {
			s.signal()
			return nil
		})
		if err != nil {
			slog.WarnContext(ctx, "confirmation: subscribe failed, polling only", "error", err)
		}
	}

	go func() {
		s.sent <- s.gateway.SendVerificationEmail(ctx, nil)
	}()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	s.emit()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case in := <-s.intents:
			if _, ok := in.(DismissTapped); ok {
				s.gateway.Logout(ctx)
				s.nav.Dismiss()
				return nil
			}

		case err := <-s.sent:
			if err != nil {
				slog.WarnContext(ctx, "confirmation: failed to send verification email", "error", err)
				continue
			}
			s.state.EmailSent = true
			s.emit()

		case <-s.signals:
			slog.DebugContext(ctx, "confirmation: verification signal received")
			s.reload(ctx)

		case <-ticker.C:
			s.reload(ctx)

		case res := <-s.results:
			s.state.Checking = false
			if res.err != nil {
				slog.WarnContext(ctx, "confirmation: reload failed", "error", res.err)
				s.emit()
				continue
			}
			if res.session.Verified() {
				s.state.Verified = true
				s.emit()
				s.nav.Show(domain.ScreenEditor)
				return nil
			}
			s.emit()
		}
	}
}

// signal records that a verification event arrived. Repeated events
// collapse into one pending reload.
func (s *Screen) signal() {
	select {
	case s.signals <- struct{}{}:
	default:
	}
}

func (s *Screen) reload(ctx context.Context) {
	if s.state.Checking {
		return
	}
	s.state.Checking = true
	s.emit()

	go func() {
		session, err := s.gateway.Reload(ctx)
		s.results <- reloadResult{session: session, err: err}
	}()
}

func (s *Screen) emit() {
	for _, fn := range s.observers {
		fn(s.state)
	}
}
