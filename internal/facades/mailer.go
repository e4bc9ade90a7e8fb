package facades

import (
	"context"

	"github.com/sbilibin2017/gw-bank-ledger/internal/logger"
	"gopkg.in/gomail.v2"
)

// MailDialer sends prepared messages over SMTP. *gomail.Dialer satisfies it.
type MailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailerFacade implements the alert Mailer using gomail.
type SMTPMailerFacade struct {
	dialer MailDialer
	from   string
}

// NewSMTPMailerFacade creates a new facade sending from the given address.
func NewSMTPMailerFacade(dialer MailDialer, from string) *SMTPMailerFacade {
	return &SMTPMailerFacade{dialer: dialer, from: from}
}

// NewSMTPDialer builds a STARTTLS-capable dialer for the SMTP relay.
func NewSMTPDialer(host string, port int, username, password string) *gomail.Dialer {
	return gomail.NewDialer(host, port, username, password)
}

// Send delivers a plain-text email.
func (f *SMTPMailerFacade) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", f.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := f.dialer.DialAndSend(m); err != nil {
		logger.Log.Errorw("failed to send email via SMTP", "to", to, "error", err)
		return err
	}
	return nil
}
