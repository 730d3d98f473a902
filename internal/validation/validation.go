// Package validation checks the shape of auth form fields before anything is
// sent to the identity provider.
package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/nfrund/editorimages/internal/domain"
)

// MinPasswordLength is the shortest password the identity provider accepts.
const MinPasswordLength = 6

// emailPattern is the local@domain.tld shape used by the mobile clients: no
// whitespace, one '@', and a dotted domain ending in a 2-64 letter TLD.
var emailPattern = regexp.MustCompile(`^[A-Z0-9a-z._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,64}$`)

// validatorInstance caches struct metadata across calls.
var validatorInstance = validator.New()

func init() {
	_ = validatorInstance.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
}

// IsValidEmail reports whether s looks like local@domain.tld.
func IsValidEmail(s string) bool {
	return validatorInstance.Var(s, "required,emailshape") == nil
}

// IsValidPassword reports whether s is at least MinPasswordLength characters.
func IsValidPassword(s string) bool {
	return validatorInstance.Var(s, "min=6") == nil
}

// Validate checks both fields. The email is checked first, so it wins when
// both are malformed.
func Validate(c domain.Credentials) domain.ValidationResult {
	if !IsValidEmail(c.Email) {
		return domain.InvalidEmail
	}
	if !IsValidPassword(c.Password) {
		return domain.InvalidPassword
	}
	return domain.Valid
}
