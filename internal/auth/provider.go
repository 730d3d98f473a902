// Package auth is the boundary between the screen controllers and the
// identity provider: it signs users in and out, owns the current session and
// translates provider failures into domain.AuthError.
package auth

import (
	"context"

	"github.com/nfrund/editorimages/internal/domain"
)

// Provider is an email/password identity backend.
type Provider interface {
	// SignIn authenticates an existing account.
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	// SignUp creates an account and signs it in.
	SignUp(ctx context.Context, email, password string) (*domain.Session, error)
	// SendVerification mails a confirmation link that lands on continueURL.
	SendVerification(ctx context.Context, session *domain.Session, continueURL string) error
	// Lookup re-reads the account behind session, refreshing EmailVerified.
	Lookup(ctx context.Context, session *domain.Session) (*domain.Session, error)
	// Refresh exchanges the session's refresh token for a new ID token.
	Refresh(ctx context.Context, session *domain.Session) (*domain.Session, error)
}

// Provider error codes the gateway recognises. Both the REST spellings and
// the mobile SDK spellings are accepted.
const (
	CodeEmailExists             = "EMAIL_EXISTS"
	CodeEmailAlreadyInUse       = "ERROR_EMAIL_ALREADY_IN_USE"
	CodeInvalidLoginCredentials = "INVALID_LOGIN_CREDENTIALS"
	CodeInvalidCredential       = "ERROR_INVALID_CREDENTIAL"
	CodeInvalidPassword         = "INVALID_PASSWORD"
	CodeEmailNotFound           = "EMAIL_NOT_FOUND"
)

var codeKinds = map[string]domain.AuthErrorKind{
	CodeEmailExists:             domain.AuthErrorEmailAlreadyInUse,
	CodeEmailAlreadyInUse:       domain.AuthErrorEmailAlreadyInUse,
	CodeInvalidLoginCredentials: domain.AuthErrorInvalidCredential,
	CodeInvalidCredential:       domain.AuthErrorInvalidCredential,
	CodeInvalidPassword:         domain.AuthErrorInvalidCredential,
	CodeEmailNotFound:           domain.AuthErrorInvalidCredential,
}

// errDataNotLoaded is reported when a provider returns neither a session nor an error.
const errDataNotLoaded = "Data not loaded"
