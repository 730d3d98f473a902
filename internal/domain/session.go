package domain

import "time"

// Session is a signed-in identity handed out by the identity provider.
// Everything except EmailVerified is opaque to the screen controllers.
type Session struct {
	UserID        string    `json:"user_id"`
	Email         string    `json:"email"`
	IDToken       string    `json:"id_token"`
	RefreshToken  string    `json:"refresh_token,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	ExpiresAt     time.Time `json:"expires_at,omitempty"`
}

// Verified is a nil-safe accessor for EmailVerified.
func (s *Session) Verified() bool {
	return s != nil && s.EmailVerified
}
