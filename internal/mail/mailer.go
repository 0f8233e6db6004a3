// Package mail delivers the transactional emails the auth flows depend
// on: registration OTPs and password-reset links.
package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/spf13/viper"
)

// Mailer sends one message to one recipient.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends over a configured SMTP relay.
type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
}

// NewFromConfig returns an SMTP mailer when smtp.host is configured, and
// a log-only mailer otherwise so development setups work without a relay.
func NewFromConfig() Mailer {
	viper.SetDefault("smtp.port", "587")

	host := viper.GetString("smtp.host")
	if host == "" {
		log.Println("SMTP not configured, emails will be logged only")
		return LogMailer{}
	}

	var auth smtp.Auth
	if user := viper.GetString("smtp.user"); user != "" {
		auth = smtp.PlainAuth("", user, viper.GetString("smtp.password"), host)
	}

	return &SMTPMailer{
		addr: host + ":" + viper.GetString("smtp.port"),
		from: viper.GetString("smtp.from"),
		auth: auth,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.from, to, subject, body)
	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// LogMailer writes the message to the server log instead of sending it.
type LogMailer struct{}

func (LogMailer) Send(to, subject, body string) error {
	log.Printf("[MAIL] To: %s, Subject: %s, Body: %s", to, subject, body)
	return nil
}
