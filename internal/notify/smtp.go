package notify

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"github.com/Jogatev/chebeneleven-sub000/internal/config"
)

// SMTPSender sends through a plain-auth SMTP relay.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string

	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender creates an SMTPSender from the email settings.
func NewSMTPSender(settings config.EmailSettings) *SMTPSender {
	return &SMTPSender{
		host:     settings.SMTPHost,
		port:     settings.SMTPPort,
		username: settings.SMTPUsername,
		password: settings.SMTPPassword,
		from:     settings.From,
		sendMail: smtp.SendMail,
	}
}

// Send implements Sender.
func (s *SMTPSender) Send(_ context.Context, msg Message) error {
	headers := [][2]string{
		{"From", headerValue(s.from)},
		{"To", headerValue(msg.To)},
		{"Subject", mime.QEncoding.Encode("utf-8", headerValue(msg.Subject))},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var message bytes.Buffer
	for _, h := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", h[0], h[1]))
	}
	message.WriteString("\r\n")
	message.WriteString(msg.HTML)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	if err := s.sendMail(addr, auth, headerValue(s.from), []string{headerValue(msg.To)}, message.Bytes()); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	return nil
}

// headerValue folds line breaks into spaces so a value can never start a new header.
func headerValue(v string) string {
	return strings.Join(strings.FieldsFunc(v, func(r rune) bool { return r == '\r' || r == '\n' }), " ")
}
