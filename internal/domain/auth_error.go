package domain

import "fmt"

// AuthErrorKind classifies failures reported by the auth gateway.
type AuthErrorKind int

const (
	AuthErrorOther AuthErrorKind = iota
	AuthErrorEmailAlreadyInUse
	AuthErrorInvalidCredential
)

func (k AuthErrorKind) String() string {
	switch k {
	case AuthErrorEmailAlreadyInUse:
		return "email_already_in_use"
	case AuthErrorInvalidCredential:
		return "invalid_credential"
	default:
		return "other"
	}
}

// AuthError is the gateway's error taxonomy. Message carries the provider's
// text for AuthErrorOther and is informational for the other kinds.
type AuthError struct {
	Kind    AuthErrorKind
	Message string
}

// Sentinels for errors.Is checks; only the Kind is compared.
var (
	ErrEmailAlreadyInUse = &AuthError{Kind: AuthErrorEmailAlreadyInUse, Message: "email already in use"}
	ErrInvalidCredential = &AuthError{Kind: AuthErrorInvalidCredential, Message: "invalid credential"}
)

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "auth: " + e.Kind.String()
	}
	return fmt.Sprintf("auth: %s: %s", e.Kind, e.Message)
}

// Is matches any AuthError of the same kind.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewOtherAuthError wraps an arbitrary provider or transport message.
func NewOtherAuthError(message string) *AuthError {
	return &AuthError{Kind: AuthErrorOther, Message: message}
}

// ProviderError is returned by identity providers. Code is the provider's
// machine-readable error code and is what the gateway translates.
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}
