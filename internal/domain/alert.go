package domain

// Alert is a title/message pair a screen shows to the user.
type Alert struct {
	Title   string
	Message string
}
