// Package surreal is a self-hosted identity provider: accounts live in
// SurrealDB, sessions are HS256 tokens and verification links are mailed
// through the configured email sender.
package surreal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nfrund/editorimages/internal/domain"
	"github.com/nfrund/editorimages/internal/i18n"
	"github.com/nfrund/editorimages/internal/validation"
	"github.com/nfrund/editorimages/internal/views"
)

// Error codes use the same spellings as the hosted REST provider so the
// auth gateway maps both identically.
const (
	codeEmailExists     = "EMAIL_EXISTS"
	codeEmailNotFound   = "EMAIL_NOT_FOUND"
	codeInvalidPassword = "INVALID_PASSWORD"
	codeWeakPassword    = "WEAK_PASSWORD"
	codeInvalidIDToken  = "INVALID_ID_TOKEN"
	codeUserNotFound    = "USER_NOT_FOUND"
	codeInvalidRefresh  = "INVALID_REFRESH_TOKEN"
)

const (
	verifyTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour
	// refreshAudience marks refresh tokens so they cannot stand in for ID
	// tokens and the other way round.
	refreshAudience = "refresh"
)

// Options configures a Provider.
type Options struct {
	Secret     []byte
	Expiry     time.Duration
	AppBaseURL string
}

// Provider implements auth.Provider.
type Provider struct {
	store  AccountStore
	sender domain.EmailSender
	tr     *i18n.Translator
	opts   Options
	now    func() time.Time
}

// NewProvider creates a provider.
func NewProvider(store AccountStore, sender domain.EmailSender, tr *i18n.Translator, opts Options) *Provider {
	if opts.Expiry <= 0 {
		opts.Expiry = time.Hour
	}
	opts.AppBaseURL = strings.TrimRight(opts.AppBaseURL, "/")
	return &Provider{store: store, sender: sender, tr: tr, opts: opts, now: time.Now}
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	account, err := p.store.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, &domain.ProviderError{Code: codeEmailNotFound}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, &domain.ProviderError{Code: codeInvalidPassword}
	}
	return p.issue(account)
}

func (p *Provider) SignUp(ctx context.Context, email, password string) (*domain.Session, error) {
	if !validation.IsValidPassword(password) {
		return nil, &domain.ProviderError{Code: codeWeakPassword, Message: "Password should be at least 6 characters"}
	}

	email = normalizeEmail(email)
	existing, err := p.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &domain.ProviderError{Code: codeEmailExists}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &Account{UID: uuid.NewString(), Email: email, PasswordHash: string(hash)}
	if err := p.store.Create(ctx, account); err != nil {
		if errors.Is(err, errAccountExists) {
			return nil, &domain.ProviderError{Code: codeEmailExists}
		}
		return nil, err
	}

	slog.Info("Account created", "uid", account.UID)
	return p.issue(account)
}

func (p *Provider) SendVerification(ctx context.Context, session *domain.Session, continueURL string) error {
	account, err := p.accountFor(ctx, session)
	if err != nil {
		return err
	}

	token := uuid.NewString()
	if err := p.store.SetVerifyToken(ctx, account.UID, token, p.now().Add(verifyTokenTTL)); err != nil {
		return err
	}

	body, err := views.RenderString(views.VerificationEmail(p.tr, p.verifyLink(token, continueURL)))
	if err != nil {
		return fmt.Errorf("failed to render verification email: %w", err)
	}
	return p.sender.Send(account.Email, p.tr.Text(i18n.VerifyEmailSubject), body)
}

func (p *Provider) Lookup(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	account, err := p.accountFor(ctx, session)
	if err != nil {
		return nil, err
	}

	fresh := *session
	fresh.Email = account.Email
	fresh.EmailVerified = account.EmailVerified
	return &fresh, nil
}

// Refresh issues a new session for a valid refresh token. The ID token may
// already have expired.
func (p *Provider) Refresh(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	if session == nil || session.RefreshToken == "" {
		return nil, &domain.ProviderError{Code: codeInvalidRefresh, Message: "session has no refresh token"}
	}

	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(p.now),
		jwt.WithAudience(refreshAudience),
		jwt.WithExpirationRequired(),
	)
	_, err := parser.ParseWithClaims(session.RefreshToken, claims, func(*jwt.Token) (any, error) {
		return p.opts.Secret, nil
	})
	if err != nil {
		return nil, &domain.ProviderError{Code: codeInvalidRefresh, Message: err.Error()}
	}

	account, err := p.store.FindByUID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, &domain.ProviderError{Code: codeUserNotFound}
	}
	return p.issue(account)
}

// ConfirmEmail consumes a verification token and marks its account verified.
func (p *Provider) ConfirmEmail(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrInvalidVerifyToken
	}
	account, err := p.store.ConfirmToken(ctx, token, p.now())
	if err != nil {
		return err
	}
	if account == nil {
		return domain.ErrInvalidVerifyToken
	}
	slog.Info("Email confirmed", "uid", account.UID)
	return nil
}

func (p *Provider) verifyLink(token, continueURL string) string {
	q := url.Values{"token": {token}}
	if continueURL != "" {
		q.Set("continueUrl", continueURL)
	}
	return p.opts.AppBaseURL + "/auth/verify?" + q.Encode()
}

func (p *Provider) issue(account *Account) (*domain.Session, error) {
	now := p.now()
	expires := now.Add(p.opts.Expiry)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Email:         account.Email,
		EmailVerified: account.EmailVerified,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.opts.Secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   account.UID,
		Audience:  jwt.ClaimStrings{refreshAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(refreshTokenTTL)),
	}).SignedString(p.opts.Secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &domain.Session{
		UserID:        account.UID,
		Email:         account.Email,
		IDToken:       signed,
		RefreshToken:  refresh,
		EmailVerified: account.EmailVerified,
		ExpiresAt:     expires,
	}, nil
}

// accountFor verifies the session token and loads its account.
func (p *Provider) accountFor(ctx context.Context, session *domain.Session) (*Account, error) {
	if session == nil {
		return nil, &domain.ProviderError{Code: codeInvalidIDToken}
	}

	claims := &sessionClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(p.now),
	)
	_, err := parser.ParseWithClaims(session.IDToken, claims, func(*jwt.Token) (any, error) {
		return p.opts.Secret, nil
	})
	if err != nil {
		return nil, &domain.ProviderError{Code: codeInvalidIDToken, Message: err.Error()}
	}
	if slices.Contains(claims.Audience, refreshAudience) {
		return nil, &domain.ProviderError{Code: codeInvalidIDToken, Message: "refresh token used as ID token"}
	}

	account, err := p.store.FindByUID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, &domain.ProviderError{Code: codeUserNotFound}
	}
	return account, nil
}
