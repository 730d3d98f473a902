package domain

// Screen identifies one of the application's screens.
type Screen int

const (
	ScreenNone Screen = iota
	ScreenAuth
	ScreenRegistration
	ScreenConfirmation
	ScreenEditor
)

func (s Screen) String() string {
	switch s {
	case ScreenAuth:
		return "auth"
	case ScreenRegistration:
		return "registration"
	case ScreenConfirmation:
		return "confirmation"
	case ScreenEditor:
		return "editor"
	default:
		return "none"
	}
}
