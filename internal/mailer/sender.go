package mailer

import (
	"context"
	"fmt"

	"github.com/clinicore/contact-api/internal/config"
)

// Sender delivers one composed message through a specific backend.
// Verify confirms connectivity/credentials ahead of a send; backends without
// a meaningful pre-flight (HTTP APIs) only check their static configuration.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
	Verify(ctx context.Context) error
}

// NewSender selects the delivery backend from the configuration. The choice
// is made once at startup, not per request.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	switch cfg.Service {
	case "resend":
		return NewResendSender(cfg), nil
	case "gmail":
		return NewGmailSender(cfg), nil
	case "smtp":
		return NewSMTPSender(cfg), nil
	case "ses":
		return NewSESSender(cfg), nil
	default:
		return nil, fmt.Errorf("unknown email service %q (want resend, gmail, smtp or ses)", cfg.Service)
	}
}
