package auth

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/nfrund/editorimages/internal/domain"
	"github.com/nfrund/editorimages/internal/storage"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProvider is a scripted Provider.
type mockProvider struct {
	signInSession *domain.Session
	signInErr     error
	signUpSession *domain.Session
	signUpErr     error
	lookupSession *domain.Session
	lookupErr     error
	sendErr       error
	refreshed     *domain.Session
	refreshErr    error

	sentTo       *domain.Session
	sentContinue string
	lookedUp     *domain.Session
	refreshes    int
}

func (m *mockProvider) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	return m.signInSession, m.signInErr
}

func (m *mockProvider) SignUp(ctx context.Context, email, password string) (*domain.Session, error) {
	return m.signUpSession, m.signUpErr
}

func (m *mockProvider) SendVerification(ctx context.Context, session *domain.Session, continueURL string) error {
	m.sentTo = session
	m.sentContinue = continueURL
	return m.sendErr
}

func (m *mockProvider) Lookup(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	m.lookedUp = session
	return m.lookupSession, m.lookupErr
}

func (m *mockProvider) Refresh(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	m.refreshes++
	return m.refreshed, m.refreshErr
}

func newTestGateway(p Provider) (*Gateway, *FileSessionStore) {
	store := NewFileSessionStore(storage.NewAferoStore(afero.NewMemMapFs()), "")
	return NewGateway(p, store, "https://verify.example.com"), store
}

func TestGateway_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success sets and persists the current session", func(t *testing.T) {
		p := &mockProvider{signInSession: &domain.Session{UserID: "u1", Email: "a@b.com", EmailVerified: true}}
		g, store := newTestGateway(p)

		session, err := g.Login(ctx, "a@b.com", "123456")
		require.NoError(t, err)
		assert.Equal(t, "u1", session.UserID)
		assert.Equal(t, "u1", g.CurrentSession().UserID)

		persisted, err := store.Load(ctx)
		require.NoError(t, err)
		require.NotNil(t, persisted)
		assert.True(t, persisted.EmailVerified)
	})

	t.Run("provider code is translated", func(t *testing.T) {
		p := &mockProvider{signInErr: &domain.ProviderError{Code: CodeInvalidLoginCredentials}}
		g, _ := newTestGateway(p)

		_, err := g.Login(ctx, "a@b.com", "123456")
		assert.ErrorIs(t, err, domain.ErrInvalidCredential)
		assert.Nil(t, g.CurrentSession())
	})

	t.Run("nil session without error", func(t *testing.T) {
		g, _ := newTestGateway(&mockProvider{})

		_, err := g.Login(ctx, "a@b.com", "123456")
		var authErr *domain.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, domain.AuthErrorOther, authErr.Kind)
		assert.Equal(t, "Data not loaded", authErr.Message)
	})

	t.Run("failure does not log the email", func(t *testing.T) {
		var buf bytes.Buffer
		prev := slog.Default()
		slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
		t.Cleanup(func() { slog.SetDefault(prev) })

		p := &mockProvider{signInErr: &domain.ProviderError{Code: CodeInvalidLoginCredentials}}
		g, _ := newTestGateway(p)

		_, err := g.Login(ctx, "secret.person@example.com", "123456")
		require.Error(t, err)
		assert.Contains(t, buf.String(), "auth: provider call failed")
		assert.NotContains(t, buf.String(), "secret.person")
	})

	t.Run("returned session is a copy", func(t *testing.T) {
		p := &mockProvider{signInSession: &domain.Session{UserID: "u1"}}
		g, _ := newTestGateway(p)

		session, err := g.Login(ctx, "a@b.com", "123456")
		require.NoError(t, err)
		session.EmailVerified = true
		assert.False(t, g.CurrentSession().EmailVerified)
	})
}

func TestGateway_Register(t *testing.T) {
	ctx := context.Background()

	p := &mockProvider{signUpErr: &domain.ProviderError{Code: CodeEmailExists, Message: "EMAIL_EXISTS"}}
	g, _ := newTestGateway(p)

	_, err := g.Register(ctx, "a@b.com", "123456")
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyInUse)

	p.signUpErr = nil
	p.signUpSession = &domain.Session{UserID: "u2"}
	session, err := g.Register(ctx, "a@b.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, "u2", session.UserID)
}

func TestGateway_Logout(t *testing.T) {
	ctx := context.Background()
	p := &mockProvider{signInSession: &domain.Session{UserID: "u1"}}
	g, store := newTestGateway(p)

	_, err := g.Login(ctx, "a@b.com", "123456")
	require.NoError(t, err)

	g.Logout(ctx)
	assert.Nil(t, g.CurrentSession())

	persisted, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, persisted)

	// Logging out twice is harmless.
	g.Logout(ctx)
}

func TestGateway_SendVerificationEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("without a session", func(t *testing.T) {
		g, _ := newTestGateway(&mockProvider{})
		assert.ErrorIs(t, g.SendVerificationEmail(ctx, nil), domain.ErrNoSession)
	})

	t.Run("defaults to the current session", func(t *testing.T) {
		p := &mockProvider{signInSession: &domain.Session{UserID: "u1"}}
		g, _ := newTestGateway(p)
		_, err := g.Login(ctx, "a@b.com", "123456")
		require.NoError(t, err)

		require.NoError(t, g.SendVerificationEmail(ctx, nil))
		assert.Equal(t, "u1", p.sentTo.UserID)
		assert.Equal(t, "https://verify.example.com", p.sentContinue)
	})

	t.Run("an expired session is refreshed first", func(t *testing.T) {
		p := &mockProvider{
			signInSession: &domain.Session{UserID: "u1", IDToken: "old", ExpiresAt: time.Now().Add(-time.Minute)},
			refreshed:     &domain.Session{UserID: "u1", IDToken: "new", ExpiresAt: time.Now().Add(time.Hour)},
		}
		g, _ := newTestGateway(p)
		_, err := g.Login(ctx, "a@b.com", "123456")
		require.NoError(t, err)

		require.NoError(t, g.SendVerificationEmail(ctx, nil))
		assert.Equal(t, "new", p.sentTo.IDToken)
		assert.Equal(t, "new", g.CurrentSession().IDToken)
	})

	t.Run("transport failure is Other", func(t *testing.T) {
		p := &mockProvider{sendErr: errors.New("connection reset")}
		g, _ := newTestGateway(p)

		err := g.SendVerificationEmail(ctx, &domain.Session{UserID: "u1"})
		var authErr *domain.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "connection reset", authErr.Message)
	})
}

func TestGateway_Reload(t *testing.T) {
	ctx := context.Background()

	t.Run("refreshes verification", func(t *testing.T) {
		p := &mockProvider{
			signInSession: &domain.Session{UserID: "u1"},
			lookupSession: &domain.Session{UserID: "u1", EmailVerified: true},
		}
		g, store := newTestGateway(p)
		_, err := g.Login(ctx, "a@b.com", "123456")
		require.NoError(t, err)

		fresh, err := g.Reload(ctx)
		require.NoError(t, err)
		assert.True(t, fresh.EmailVerified)
		assert.True(t, g.CurrentSession().EmailVerified)

		persisted, err := store.Load(ctx)
		require.NoError(t, err)
		assert.True(t, persisted.EmailVerified)
	})

	t.Run("no session", func(t *testing.T) {
		g, _ := newTestGateway(&mockProvider{})
		_, err := g.Reload(ctx)
		assert.ErrorIs(t, err, domain.ErrNoSession)
	})

	t.Run("a different account is not installed", func(t *testing.T) {
		p := &mockProvider{
			signInSession: &domain.Session{UserID: "u1"},
			lookupSession: &domain.Session{UserID: "u2", EmailVerified: true},
		}
		g, _ := newTestGateway(p)
		_, err := g.Login(ctx, "a@b.com", "123456")
		require.NoError(t, err)

		_, err = g.Reload(ctx)
		assert.ErrorIs(t, err, domain.ErrNoSession)
		assert.Equal(t, "u1", g.CurrentSession().UserID)
	})

	t.Run("an expired session is refreshed before the lookup", func(t *testing.T) {
		now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
		p := &mockProvider{
			signInSession: &domain.Session{UserID: "u1", IDToken: "old", RefreshToken: "r1", ExpiresAt: now.Add(time.Hour)},
			refreshed:     &domain.Session{UserID: "u1", IDToken: "new", RefreshToken: "r2", ExpiresAt: now.Add(3 * time.Hour)},
			lookupSession: &domain.Session{UserID: "u1", IDToken: "new", RefreshToken: "r2", EmailVerified: true},
		}
		g, store := newTestGateway(p)
		g.now = func() time.Time { return now }
		_, err := g.Login(ctx, "a@b.com", "123456")
		require.NoError(t, err)

		g.now = func() time.Time { return now.Add(58 * time.Minute) }
		valid, err := g.refreshIfExpired(ctx, g.CurrentSession())
		require.NoError(t, err)
		assert.Equal(t, "old", valid.IDToken)
		assert.Zero(t, p.refreshes)

		g.now = func() time.Time { return now.Add(90 * time.Minute) }
		fresh, err := g.Reload(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, p.refreshes)
		assert.Equal(t, "new", p.lookedUp.IDToken)
		assert.True(t, fresh.EmailVerified)

		persisted, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "r2", persisted.RefreshToken)
	})

	t.Run("a failed refresh is translated", func(t *testing.T) {
		p := &mockProvider{
			signInSession: &domain.Session{UserID: "u1", ExpiresAt: time.Now().Add(-time.Minute)},
			refreshErr:    &domain.ProviderError{Code: "INVALID_REFRESH_TOKEN", Message: "INVALID_REFRESH_TOKEN"},
		}
		g, _ := newTestGateway(p)
		_, err := g.Login(ctx, "a@b.com", "123456")
		require.NoError(t, err)

		_, err = g.Reload(ctx)
		var authErr *domain.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, domain.AuthErrorOther, authErr.Kind)
		assert.Nil(t, p.lookedUp)
	})
}

func TestGateway_Restore(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	store := NewFileSessionStore(storage.NewAferoStore(fs), "")
	require.NoError(t, store.Save(ctx, &domain.Session{UserID: "u9", EmailVerified: true}))

	g := NewGateway(&mockProvider{}, store, "")
	require.NoError(t, g.Restore(ctx))
	assert.Equal(t, "u9", g.CurrentSession().UserID)

	require.NoError(t, afero.WriteFile(fs, DefaultSessionPath, []byte("{not json"), 0o600))
	assert.Error(t, g.Restore(ctx))
}
