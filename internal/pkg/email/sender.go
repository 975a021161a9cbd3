package email

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/foodiehub-backend/internal/config"
)

// Sender delivers a composed email through one provider
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// NewSender returns the sender for the configured provider
func NewSender(cfg config.EmailConfig, logger logrus.FieldLogger) (Sender, error) {
	switch cfg.Provider {
	case "smtp":
		if cfg.SMTPHost == "" || cfg.SMTPUsername == "" {
			return nil, fmt.Errorf("SMTP configuration incomplete: missing host or username")
		}
		return &SMTPSender{cfg: cfg}, nil
	case "resend":
		return NewResendSender(cfg)
	case "sendgrid":
		return NewSendGridSender(cfg)
	case "log":
		return &LogSender{logger: logger}, nil
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", cfg.Provider)
	}
}

// LogSender writes emails to the log instead of sending them. Used in development.
type LogSender struct {
	logger logrus.FieldLogger
}

func (s *LogSender) Send(ctx context.Context, email *Email) error {
	s.logger.WithFields(logrus.Fields{
		"to":      email.To,
		"subject": email.Subject,
		"type":    email.Type,
		"html":    email.IsHTML(),
	}).Info("Email not sent, log provider active")
	return nil
}

func formatFrom(cfg config.EmailConfig) string {
	if cfg.FromName != "" {
		return fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail)
	}
	return cfg.FromEmail
}
