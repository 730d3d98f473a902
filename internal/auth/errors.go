package auth

import (
	"errors"

	"github.com/nfrund/editorimages/internal/domain"
)

// Translate maps any provider or transport error onto the gateway taxonomy.
// Unrecognised provider codes and plain errors become AuthErrorOther with the
// original message kept verbatim.
func Translate(err error) *domain.AuthError {
	if err == nil {
		return nil
	}

	var authErr *domain.AuthError
	if errors.As(err, &authErr) {
		return authErr
	}

	var providerErr *domain.ProviderError
	if errors.As(err, &providerErr) {
		if kind, ok := codeKinds[providerErr.Code]; ok {
			return &domain.AuthError{Kind: kind, Message: providerErr.Code}
		}
		if providerErr.Message != "" {
			return domain.NewOtherAuthError(providerErr.Message)
		}
		return domain.NewOtherAuthError(providerErr.Code)
	}

	return domain.NewOtherAuthError(err.Error())
}
