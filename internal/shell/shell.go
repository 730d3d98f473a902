// Package shell keeps a controller running for whichever screen the router
// shows, so a UI in another process can drive the app over HTTP.
//
// The Shell sits between the controllers and the router: controllers
// navigate through it, and every navigation stops the controller of the
// screen that was left and starts the one for the screen that is now on top.
// States from a stopped controller are dropped using a generation counter.
package shell

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nfrund/editorimages/internal/confirmation"
	"github.com/nfrund/editorimages/internal/domain"
	"github.com/nfrund/editorimages/internal/editor"
	"github.com/nfrund/editorimages/internal/flow"
	"github.com/nfrund/editorimages/internal/i18n"
	"github.com/nfrund/editorimages/internal/pubsub"
	"github.com/nfrund/editorimages/internal/router"
)

var (
	// ErrStaleScreen is returned when an intent targets a screen that is no
	// longer on top.
	ErrStaleScreen = errors.New("screen is not active")
	// ErrInvalidIntent is returned for intent types the screen does not know
	// and for payloads that cannot be decoded.
	ErrInvalidIntent = errors.New("invalid intent")
)

// Gateway is everything the hosted controllers need from the auth gateway.
type Gateway interface {
	flow.Gateway
	confirmation.Gateway
	router.SessionSource
}

// Shell implements flow.Navigator and confirmation.Navigator on top of a
// router.
type Shell struct {
	gateway      Gateway
	router       *router.Router
	subscriber   pubsub.Subscriber
	library      editor.Library
	tr           *i18n.Translator
	pollInterval time.Duration
	logger       *slog.Logger

	mu     sync.Mutex
	base   context.Context
	screen domain.Screen
	gen    uint64
	cancel context.CancelFunc
	send   func(ctx context.Context, req Request) error
	state  any
}

// New creates a shell. Nothing runs until Start.
func New(gateway Gateway, r *router.Router, subscriber pubsub.Subscriber, library editor.Library, tr *i18n.Translator, pollInterval time.Duration) *Shell {
	return &Shell{
		gateway:      gateway,
		router:       r,
		subscriber:   subscriber,
		library:      library,
		tr:           tr,
		pollInterval: pollInterval,
		logger:       slog.Default().With("component", "shell"),
	}
}

// Start resolves the first screen from the restored session and starts its
// controller. Controllers stop when ctx is done.
func (s *Shell) Start(ctx context.Context) domain.Screen {
	s.mu.Lock()
	s.base = ctx
	s.mu.Unlock()

	screen := s.router.Start(ctx, s.gateway)
	s.sync()
	return screen
}

func (s *Shell) Show(screen domain.Screen) {
	s.router.Show(screen)
	s.sync()
}

func (s *Shell) Present(screen domain.Screen) {
	s.router.Present(screen)
	s.sync()
}

func (s *Shell) Dismiss() {
	s.router.Dismiss()
	s.sync()
}

// Dispatch hands req to the controller of screen. The screen name must match
// the one on top, otherwise ErrStaleScreen is returned.
func (s *Shell) Dispatch(ctx context.Context, screen string, req Request) error {
	s.mu.Lock()
	current, send := s.screen, s.send
	s.mu.Unlock()

	if send == nil || current.String() != screen {
		return fmt.Errorf("%w: %s is showing", ErrStaleScreen, current)
	}
	return send(ctx, req)
}

// Snapshot is the visible screen and the last state its controller emitted.
type Snapshot struct {
	Screen string `json:"screen"`
	State  any    `json:"state,omitempty"`
}

// Snapshot returns what is on screen right now.
func (s *Shell) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Screen: s.screen.String(), State: s.state}
}

// sync starts the controller for the router's top screen if it changed.
func (s *Shell) sync() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.base == nil {
		return
	}
	screen := s.router.Current()
	if screen == s.screen && s.send != nil {
		return
	}
	if s.cancel != nil {
		s.cancel()
	}

	s.gen++
	gen := s.gen
	ctx, cancel := context.WithCancel(s.base)
	s.cancel = cancel
	s.screen = screen
	s.state = nil
	s.send = nil

	s.logger.Debug("starting controller", "screen", screen.String(), "generation", gen)

	switch screen {
	case domain.ScreenAuth, domain.ScreenRegistration:
		mode := flow.ModeLogin
		if screen == domain.ScreenRegistration {
			mode = flow.ModeRegister
		}
		c := flow.New(mode, s.gateway, s, s.tr)
		c.Observe(func(st flow.State) { s.record(gen, newFormView(st)) })
		s.send = func(ctx context.Context, req Request) error {
			if screen == domain.ScreenRegistration && req.Type == IntentDismiss {
				s.Dismiss()
				return nil
			}
			in, err := formIntent(req)
			if err != nil {
				return err
			}
			return c.Send(ctx, in)
		}
		go s.run(ctx, screen, c.Run)

	case domain.ScreenConfirmation:
		c := confirmation.New(s.gateway, s, s.subscriber, s.pollInterval)
		c.Observe(func(st confirmation.State) { s.record(gen, newConfirmationView(st)) })
		s.send = func(ctx context.Context, req Request) error {
			if req.Type != IntentDismiss {
				return fmt.Errorf("%w: %q", ErrInvalidIntent, req.Type)
			}
			return c.Send(ctx, confirmation.DismissTapped{})
		}
		go s.run(ctx, screen, c.Run)

	case domain.ScreenEditor:
		e := editor.New(s.library, s.tr)
		e.Observe(func(st editor.State) { s.record(gen, newEditorView(st)) })
		s.send = func(ctx context.Context, req Request) error {
			in, err := editorIntent(req)
			if err != nil {
				return err
			}
			return e.Send(ctx, in)
		}
		go s.run(ctx, screen, e.Run)

	default:
		cancel()
	}
}

// record stores a state unless it came from a controller that has since
// been replaced.
func (s *Shell) record(gen uint64, state any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.state = state
}

func (s *Shell) run(ctx context.Context, screen domain.Screen, run func(context.Context) error) {
	err := run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("controller stopped", "screen", screen.String(), "error", err)
		return
	}
	s.logger.Debug("controller stopped", "screen", screen.String())
}
