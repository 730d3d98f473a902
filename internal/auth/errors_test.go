package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/nfrund/editorimages/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantKind    domain.AuthErrorKind
		wantMessage string
	}{
		{"rest email exists", &domain.ProviderError{Code: CodeEmailExists}, domain.AuthErrorEmailAlreadyInUse, CodeEmailExists},
		{"sdk email in use", &domain.ProviderError{Code: CodeEmailAlreadyInUse}, domain.AuthErrorEmailAlreadyInUse, CodeEmailAlreadyInUse},
		{"rest invalid login", &domain.ProviderError{Code: CodeInvalidLoginCredentials}, domain.AuthErrorInvalidCredential, CodeInvalidLoginCredentials},
		{"sdk invalid credential", &domain.ProviderError{Code: CodeInvalidCredential}, domain.AuthErrorInvalidCredential, CodeInvalidCredential},
		{"legacy invalid password", &domain.ProviderError{Code: CodeInvalidPassword}, domain.AuthErrorInvalidCredential, CodeInvalidPassword},
		{"legacy unknown email", &domain.ProviderError{Code: CodeEmailNotFound}, domain.AuthErrorInvalidCredential, CodeEmailNotFound},
		{"unknown code keeps message", &domain.ProviderError{Code: "TOO_MANY_ATTEMPTS_TRY_LATER", Message: "Too many attempts"}, domain.AuthErrorOther, "Too many attempts"},
		{"unknown code without message", &domain.ProviderError{Code: "WEAK_PASSWORD"}, domain.AuthErrorOther, "WEAK_PASSWORD"},
		{"transport error", errors.New("dial tcp: no route to host"), domain.AuthErrorOther, "dial tcp: no route to host"},
		{"context deadline", context.DeadlineExceeded, domain.AuthErrorOther, "context deadline exceeded"},
		{"already translated", domain.ErrEmailAlreadyInUse, domain.AuthErrorEmailAlreadyInUse, "email already in use"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Translate(tt.err)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantMessage, got.Message)
		})
	}

	assert.Nil(t, Translate(nil))
}
