package domain

// Credentials is the email/password pair typed into an auth form. It only
// lives in memory for as long as the form does.
type Credentials struct {
	Email    string
	Password string
}

// Complete reports whether both fields hold something. It says nothing about
// whether the values are well-formed.
func (c Credentials) Complete() bool {
	return c.Email != "" && c.Password != ""
}

// ValidationResult is the outcome of checking Credentials field shapes.
type ValidationResult int

const (
	Valid ValidationResult = iota
	InvalidEmail
	InvalidPassword
)

func (r ValidationResult) String() string {
	switch r {
	case Valid:
		return "valid"
	case InvalidEmail:
		return "invalid_email"
	case InvalidPassword:
		return "invalid_password"
	default:
		return "unknown"
	}
}
