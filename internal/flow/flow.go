// Package flow drives the login and registration screens.
//
// A Controller owns the form state. Intents are queued with Send and handled
// one at a time by Run, which is the only goroutine that touches the state.
// Gateway calls run on a helper goroutine and their result is handed back to
// the loop, so observers always see state changes in the order they happened.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nfrund/editorimages/internal/domain"
	"github.com/nfrund/editorimages/internal/i18n"
	"github.com/nfrund/editorimages/internal/validation"
)

// Mode selects which gateway operation a submit performs.
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

func (m Mode) String() string {
	if m == ModeRegister {
		return "register"
	}
	return "login"
}

// Phase is where the form is in its submit cycle.
type Phase int

const (
	PhaseEditing Phase = iota
	PhaseSubmitting
)

func (p Phase) String() string {
	if p == PhaseSubmitting {
		return "submitting"
	}
	return "editing"
}

// State is a snapshot of the form.
type State struct {
	Mode          Mode
	Email         string
	Password      string
	Phase         Phase
	SubmitEnabled bool
	Alert         *domain.Alert
}

// Gateway is the part of the auth gateway the form needs.
type Gateway interface {
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Register(ctx context.Context, email, password string) (*domain.Session, error)
}

// Navigator switches screens.
type Navigator interface {
	// Show replaces the root screen and drops any modals.
	Show(screen domain.Screen)
	// Present pushes a modal screen.
	Present(screen domain.Screen)
	// Dismiss pops the top modal.
	Dismiss()
}

// Intent is a user action on the form.
type Intent interface {
	intent()
}

type (
	EmailChanged    struct{ Value string }
	PasswordChanged struct{ Value string }
	SubmitTapped    struct{}
	// RegisterTapped opens the registration screen from the login screen.
	RegisterTapped struct{}
	AlertDismissed struct{}
)

func (EmailChanged) intent()    {}
func (PasswordChanged) intent() {}
func (SubmitTapped) intent()    {}
func (RegisterTapped) intent()  {}
func (AlertDismissed) intent()  {}

type submitResult struct {
	session *domain.Session
	err     error
}

const intentBuffer = 16

// Controller runs one auth form.
type Controller struct {
	gateway Gateway
	nav     Navigator
	tr      *i18n.Translator
	logger  *slog.Logger

	intents   chan Intent
	results   chan submitResult
	observers []func(State)

	state State
}

// New creates a controller for mode. Observers must be registered before Run.
func New(mode Mode, gateway Gateway, nav Navigator, tr *i18n.Translator) *Controller {
	return &Controller{
		gateway: gateway,
		nav:     nav,
		tr:      tr,
		logger:  slog.Default().With("component", "flow", "mode", mode.String()),
		intents: make(chan Intent, intentBuffer),
		// At most one submit is in flight, so the sender never blocks.
		results: make(chan submitResult, 1),
		state:   State{Mode: mode},
	}
}

// Observe registers fn to receive every state change. fn runs on the
// controller goroutine and must not call Send synchronously.
func (c *Controller) Observe(fn func(State)) {
	c.observers = append(c.observers, fn)
}

// Send queues an intent. It blocks while the queue is full and gives up
// when ctx is done.
func (c *Controller) Send(ctx context.Context, in Intent) error {
	select {
	case c.intents <- in:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes intents until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	c.emit()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in := <-c.intents:
			c.handle(ctx, in)
		case res := <-c.results:
			c.finish(res)
		}
	}
}

func (c *Controller) handle(ctx context.Context, in Intent) {
	switch in := in.(type) {
	case EmailChanged:
		if c.state.Phase != PhaseEditing {
			return
		}
		c.state.Email = in.Value
		c.updateSubmitEnabled()
	case PasswordChanged:
		if c.state.Phase != PhaseEditing {
			return
		}
		c.state.Password = in.Value
		c.updateSubmitEnabled()
	case SubmitTapped:
		if c.state.Phase != PhaseEditing || !c.state.SubmitEnabled {
			c.logger.Debug("submit ignored", "phase", c.state.Phase.String(), "enabled", c.state.SubmitEnabled)
			return
		}
		c.submit(ctx)
	case RegisterTapped:
		if c.state.Mode != ModeLogin {
			return
		}
		c.nav.Present(domain.ScreenRegistration)
		return
	case AlertDismissed:
		if c.state.Alert == nil {
			return
		}
		c.state.Alert = nil
	default:
		c.logger.Warn("unknown intent", "type", fmt.Sprintf("%T", in))
		return
	}
	c.emit()
}

func (c *Controller) updateSubmitEnabled() {
	c.state.SubmitEnabled = domain.Credentials{Email: c.state.Email, Password: c.state.Password}.Complete()
}

func (c *Controller) submit(ctx context.Context) {
	creds := domain.Credentials{Email: c.state.Email, Password: c.state.Password}
	if result := validation.Validate(creds); result != domain.Valid {
		c.state.Alert = c.validationAlert(result)
		return
	}

	c.state.Alert = nil
	c.state.Phase = PhaseSubmitting

	mode := c.state.Mode
	go func() {
		var res submitResult
		if mode == ModeRegister {
			res.session, res.err = c.gateway.Register(ctx, creds.Email, creds.Password)
		} else {
			res.session, res.err = c.gateway.Login(ctx, creds.Email, creds.Password)
		}
		c.results <- res
	}()
}

func (c *Controller) finish(res submitResult) {
	c.state.Phase = PhaseEditing

	if res.err != nil {
		c.state.Alert = c.authAlert(res.err)
		c.emit()
		return
	}

	c.emit()
	if c.state.Mode == ModeLogin && res.session.Verified() {
		c.nav.Show(domain.ScreenEditor)
		return
	}
	c.nav.Present(domain.ScreenConfirmation)
}

func (c *Controller) emit() {
	snapshot := c.state
	if snapshot.Alert != nil {
		alert := *snapshot.Alert
		snapshot.Alert = &alert
	}
	for _, fn := range c.observers {
		fn(snapshot)
	}
}

func (c *Controller) validationAlert(result domain.ValidationResult) *domain.Alert {
	if result == domain.InvalidEmail {
		return &domain.Alert{Title: c.tr.Text(i18n.InvalidEmailTitle), Message: c.tr.Text(i18n.InvalidEmailMessage)}
	}
	return &domain.Alert{Title: c.tr.Text(i18n.InvalidPasswordTitle), Message: c.tr.Text(i18n.InvalidPasswordMessage)}
}

func (c *Controller) authAlert(err error) *domain.Alert {
	var authErr *domain.AuthError
	if !errors.As(err, &authErr) {
		authErr = domain.NewOtherAuthError(err.Error())
	}

	switch authErr.Kind {
	case domain.AuthErrorEmailAlreadyInUse:
		return &domain.Alert{Title: c.tr.Text(i18n.EmailInUseTitle), Message: c.tr.Text(i18n.EmailInUseMessage)}
	case domain.AuthErrorInvalidCredential:
		return &domain.Alert{Title: c.tr.Text(i18n.InvalidCredentialTitle), Message: c.tr.Text(i18n.InvalidCredentialMessage)}
	default:
		return &domain.Alert{Title: c.tr.Text(i18n.GenericErrorTitle), Message: authErr.Message}
	}
}
