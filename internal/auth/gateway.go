package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nfrund/editorimages/internal/domain"
)

// refreshSkew renews an ID token this long before it expires.
const refreshSkew = time.Minute

// Gateway wraps a Provider. It remembers the current session in memory and,
// when a SessionStore is configured, on disk.
type Gateway struct {
	provider    Provider
	store       SessionStore
	continueURL string
	now         func() time.Time

	mu      sync.RWMutex
	current *domain.Session
}

// NewGateway creates a Gateway. store may be nil, in which case sessions only
// live for the lifetime of the process.
func NewGateway(provider Provider, store SessionStore, continueURL string) *Gateway {
	return &Gateway{
		provider:    provider,
		store:       store,
		continueURL: continueURL,
		now:         time.Now,
	}
}

// Restore loads a previously persisted session into memory.
func (g *Gateway) Restore(ctx context.Context) error {
	if g.store == nil {
		return nil
	}
	session, err := g.store.Load(ctx)
	if err != nil {
		return err
	}

	g.mu.Lock()
	g.current = session
	g.mu.Unlock()
	return nil
}

// Login signs an existing account in and makes it the current session.
func (g *Gateway) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	session, err := g.provider.SignIn(ctx, email, password)
	return g.finish(ctx, "login", session, err)
}

// Register creates an account and makes it the current session.
func (g *Gateway) Register(ctx context.Context, email, password string) (*domain.Session, error) {
	session, err := g.provider.SignUp(ctx, email, password)
	return g.finish(ctx, "register", session, err)
}

func (g *Gateway) finish(ctx context.Context, op string, session *domain.Session, err error) (*domain.Session, error) {
	if err != nil {
		authErr := Translate(err)
		slog.WarnContext(ctx, "auth: provider call failed", "op", op, "kind", authErr.Kind.String(), "error", err)
		return nil, authErr
	}
	if session == nil {
		return nil, domain.NewOtherAuthError(errDataNotLoaded)
	}

	g.setCurrent(ctx, session)
	slog.InfoContext(ctx, "auth: signed in", "op", op, "user_id", session.UserID, "verified", session.EmailVerified)
	return cloneSession(session), nil
}

// Logout forgets the current session. It never fails; persistence errors
// are logged.
func (g *Gateway) Logout(ctx context.Context) {
	g.mu.Lock()
	g.current = nil
	g.mu.Unlock()

	if g.store != nil {
		if err := g.store.Clear(ctx); err != nil {
			slog.WarnContext(ctx, "auth: failed to clear persisted session", "error", err)
		}
	}
	slog.InfoContext(ctx, "auth: signed out")
}

// SendVerificationEmail asks the provider to mail a confirmation link for
// session. A nil session means the current one.
func (g *Gateway) SendVerificationEmail(ctx context.Context, session *domain.Session) error {
	if session == nil {
		session = g.CurrentSession()
	}
	if session == nil {
		return domain.ErrNoSession
	}
	session, err := g.refreshIfExpired(ctx, session)
	if err != nil {
		return err
	}
	if err := g.provider.SendVerification(ctx, session, g.continueURL); err != nil {
		return Translate(err)
	}
	slog.InfoContext(ctx, "auth: verification email requested", "user_id", session.UserID)
	return nil
}

// Reload re-reads the current account from the provider so EmailVerified
// reflects links the user has opened since signing in.
func (g *Gateway) Reload(ctx context.Context) (*domain.Session, error) {
	current := g.CurrentSession()
	if current == nil {
		return nil, domain.ErrNoSession
	}
	current, err := g.refreshIfExpired(ctx, current)
	if err != nil {
		return nil, err
	}

	fresh, err := g.provider.Lookup(ctx, current)
	if err != nil {
		return nil, Translate(err)
	}
	if fresh == nil {
		return nil, domain.NewOtherAuthError(errDataNotLoaded)
	}

	// A logout that raced the lookup wins: the fresh copy is not installed.
	g.mu.Lock()
	if g.current == nil || g.current.UserID != fresh.UserID {
		g.mu.Unlock()
		return nil, domain.ErrNoSession
	}
	g.current = cloneSession(fresh)
	g.mu.Unlock()

	g.persist(ctx, fresh)
	return cloneSession(fresh), nil
}

// refreshIfExpired swaps an expired ID token for a new one. Verification
// links outlive ID tokens, so a user who confirms late still gets through.
// The refreshed session replaces the current one when it is the same account.
func (g *Gateway) refreshIfExpired(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	if session.ExpiresAt.IsZero() || g.now().Add(refreshSkew).Before(session.ExpiresAt) {
		return session, nil
	}

	fresh, err := g.provider.Refresh(ctx, session)
	if err != nil {
		return nil, Translate(err)
	}
	if fresh == nil {
		return nil, domain.NewOtherAuthError(errDataNotLoaded)
	}

	g.mu.Lock()
	installed := g.current != nil && g.current.UserID == fresh.UserID
	if installed {
		g.current = cloneSession(fresh)
	}
	g.mu.Unlock()
	if installed {
		g.persist(ctx, fresh)
	}

	slog.InfoContext(ctx, "auth: session refreshed", "user_id", fresh.UserID)
	return cloneSession(fresh), nil
}

// CurrentSession returns a copy of the signed-in session, or nil.
func (g *Gateway) CurrentSession() *domain.Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return cloneSession(g.current)
}

func (g *Gateway) setCurrent(ctx context.Context, session *domain.Session) {
	g.mu.Lock()
	g.current = cloneSession(session)
	g.mu.Unlock()
	g.persist(ctx, session)
}

func (g *Gateway) persist(ctx context.Context, session *domain.Session) {
	if g.store == nil {
		return
	}
	if err := g.store.Save(ctx, session); err != nil {
		slog.WarnContext(ctx, "auth: failed to persist session", "error", err)
	}
}

func cloneSession(s *domain.Session) *domain.Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
