package email

import (
	"fmt"
	"log/slog"

	"github.com/nfrund/editorimages/internal/config"
	"github.com/nfrund/editorimages/internal/domain"
)

// Values accepted by EMAIL_PROVIDER.
const (
	ProviderLog    = "log"
	ProviderResend = "resend"
)

// NewEmailService picks the sender that delivers verification emails.
func NewEmailService(cfg config.Provider) (domain.EmailSender, error) {
	switch cfg.GetEmailProvider() {
	case ProviderLog, "":
		return &LogSender{senderAddress: cfg.GetEmailSender(), logger: slog.Default().With("component", "email")}, nil
	case ProviderResend:
		if cfg.GetEmailAPIKey() == "" {
			return nil, fmt.Errorf("email provider is %q but EMAIL_API_KEY is not set", ProviderResend)
		}
		return &ResendSender{apiKey: cfg.GetEmailAPIKey(), senderAddress: cfg.GetEmailSender()}, nil
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.GetEmailProvider())
	}
}
