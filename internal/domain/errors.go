package domain

import "errors"

// Failures that are not auth errors. Callers match them with errors.Is.
var (
	ErrNoSession          = errors.New("no signed-in session")
	ErrNotVerified        = errors.New("email address is not verified")
	ErrNoDrawing          = errors.New("nothing has been drawn")
	ErrNoImage            = errors.New("no image selected")
	ErrInvalidVerifyToken = errors.New("invalid or expired verification token")
	ErrNotFound           = errors.New("requested resource not found")
)
