// Package mail handles outbound email delivery.
package mail

import (
	"inkwell/internal/config"
	"inkwell/internal/middleware"

	"gopkg.in/gomail.v2"
)

// Mailer sends a plain-text email to a single recipient.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer delivers mail through an SMTP relay using gomail.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer builds an SMTPMailer from configuration.
func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.SMTPFrom,
	}
}

// Send delivers a single plain-text message. Each call dials a fresh
// connection; password-reset volume does not justify connection reuse.
func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		middleware.EmailsSent.WithLabelValues("error").Inc()
		return err
	}
	middleware.EmailsSent.WithLabelValues("ok").Inc()
	return nil
}
