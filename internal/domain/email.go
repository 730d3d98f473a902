package domain

// EmailSender delivers one HTML email.
type EmailSender interface {
	Send(to, subject, htmlBody string) error
}
