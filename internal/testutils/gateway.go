package testutils

import (
	"context"
	"sync"

	"github.com/nfrund/editorimages/internal/domain"
)

// FakeGateway is an in-memory auth gateway. Sign-ins always succeed and
// Reload reports whatever Verify last set.
type FakeGateway struct {
	mu       sync.Mutex
	current  *domain.Session
	verified bool
	sends    int
	logouts  int
}

// NewFakeGateway starts signed in as session when it is non-nil.
func NewFakeGateway(session *domain.Session) *FakeGateway {
	g := &FakeGateway{current: session}
	if session != nil {
		g.verified = session.EmailVerified
	}
	return g
}

// Verify marks the account as confirmed for subsequent reloads.
func (g *FakeGateway) Verify() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verified = true
}

func (g *FakeGateway) Login(_ context.Context, email, _ string) (*domain.Session, error) {
	return g.signIn(email), nil
}

func (g *FakeGateway) Register(_ context.Context, email, _ string) (*domain.Session, error) {
	return g.signIn(email), nil
}

func (g *FakeGateway) signIn(email string) *domain.Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current = &domain.Session{UserID: "u1", Email: email, EmailVerified: g.verified}
	c := *g.current
	return &c
}

func (g *FakeGateway) SendVerificationEmail(context.Context, *domain.Session) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sends++
	return nil
}

func (g *FakeGateway) Reload(context.Context) (*domain.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil {
		return nil, domain.ErrNoSession
	}
	g.current.EmailVerified = g.verified
	c := *g.current
	return &c, nil
}

func (g *FakeGateway) Logout(context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current = nil
	g.logouts++
}

func (g *FakeGateway) CurrentSession() *domain.Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil {
		return nil
	}
	c := *g.current
	return &c
}

// Sends counts verification emails requested.
func (g *FakeGateway) Sends() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sends
}

// Logouts counts sign-outs.
func (g *FakeGateway) Logouts() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.logouts
}
