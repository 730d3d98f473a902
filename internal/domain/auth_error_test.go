package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthError_Is(t *testing.T) {
	err := fmt.Errorf("register: %w", &AuthError{Kind: AuthErrorEmailAlreadyInUse, Message: "EMAIL_EXISTS"})

	assert.True(t, errors.Is(err, ErrEmailAlreadyInUse))
	assert.False(t, errors.Is(err, ErrInvalidCredential))

	var authErr *AuthError
	assert.True(t, errors.As(err, &authErr))
	assert.Equal(t, "EMAIL_EXISTS", authErr.Message)
}

func TestAuthError_Error(t *testing.T) {
	assert.Equal(t, "auth: other: network down", NewOtherAuthError("network down").Error())
	assert.Equal(t, "auth: invalid_credential", (&AuthError{Kind: AuthErrorInvalidCredential}).Error())
}

func TestCredentials_Complete(t *testing.T) {
	assert.False(t, Credentials{}.Complete())
	assert.False(t, Credentials{Email: "a@b.com"}.Complete())
	assert.False(t, Credentials{Password: "123456"}.Complete())
	assert.True(t, Credentials{Email: "bad", Password: "1"}.Complete())
}

func TestSession_Verified(t *testing.T) {
	var s *Session
	assert.False(t, s.Verified())
	assert.True(t, (&Session{EmailVerified: true}).Verified())
}
