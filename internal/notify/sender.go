// Package notify renders and sends the applicant emails.
package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Jogatev/chebeneleven-sub000/internal/config"
)

// Email providers
const (
	ProviderLog  = "log"
	ProviderSES  = "ses"
	ProviderSMTP = "smtp"
)

// Message is a rendered HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender builds the Sender selected by settings.Provider.
func NewSender(ctx context.Context, settings config.EmailSettings, log *zap.Logger) (Sender, error) {
	switch settings.Provider {
	case "", ProviderLog:
		return NewLogSender(log), nil
	case ProviderSES:
		return NewSESSender(ctx, settings.AWSRegion, settings.From)
	case ProviderSMTP:
		if settings.SMTPHost == "" {
			return nil, fmt.Errorf("SMTP_HOST is required for the smtp email provider")
		}
		return NewSMTPSender(settings), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", settings.Provider)
	}
}

// LogSender only logs the messages it is given. It is the default outside production.
type LogSender struct {
	log *zap.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(log *zap.Logger) *LogSender {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogSender{log: log}
}

// Send implements Sender.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.log.Info("email not sent, log provider",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("body_bytes", len(msg.HTML)),
	)
	return nil
}
