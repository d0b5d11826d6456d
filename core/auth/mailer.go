package auth

import (
	"context"
	"fmt"
	"html"

	"melodify/logger"

	"gopkg.in/gomail.v2"
)

// Mailer delivers verification links.
type Mailer interface {
	SendVerification(ctx context.Context, to, link string) error
}

// SMTPMailer sends mail through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer returns a mailer for host:port.
func NewSMTPMailer(host string, port int, user, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (m *SMTPMailer) SendVerification(_ context.Context, to, link string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Confirm your Melodify account")
	msg.SetBody("text/plain", "Confirm your email address by opening this link:\n\n"+link+"\n")
	msg.AddAlternative("text/html", fmt.Sprintf(
		"<html><body><p>Confirm your email address by following <a href=\"%s\">this link</a>.</p></body></html>",
		html.EscapeString(link)))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

// LogMailer writes verification links to the log. Used when no SMTP host is configured.
type LogMailer struct{}

func (LogMailer) SendVerification(_ context.Context, to, link string) error {
	logger.Info("Verification email (SMTP disabled)", logger.String("to", to), logger.String("link", link))
	return nil
}
