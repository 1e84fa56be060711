package mailer

import (
	"fmt"
	"log"
	"time"

	mail "github.com/go-mail/mail/v2"

	"github.com/pitchside/uct-api/config"
)

// Mailer sends transactional email. All callers treat dispatch as
// best-effort: a send failure is logged and never turned into an API error.
type Mailer interface {
	SendVerificationEmail(to, name, code string) error
	SendWelcomeEmail(to, name string) error
	SendPasswordResetEmail(to, name, code, resetURL string) error
	SendPasswordChangedEmail(to, name string) error
	SendLoginCodeEmail(to, name, code string) error
	SendTeamCreatedEmail(to, name, teamName string) error
}

// New returns an SMTP mailer when a host is configured, otherwise a
// log-only mailer so development environments work without an SMTP server.
func New(cfg *config.Config) Mailer {
	if cfg.Mail.Host == "" {
		log.Println("MAIL_HOST not set, using log-only mailer")
		return &logMailer{}
	}
	return &smtpMailer{
		dialer: mail.NewDialer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password),
		from:   cfg.Mail.From,
	}
}

type smtpMailer struct {
	dialer *mail.Dialer
	from   string
}

func (m *smtpMailer) send(to, subject, body string) error {
	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	m.dialer.Timeout = 10 * time.Second
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func (m *smtpMailer) SendVerificationEmail(to, name, code string) error {
	return m.send(to, "Verify your account", verificationBody(name, code))
}

func (m *smtpMailer) SendWelcomeEmail(to, name string) error {
	return m.send(to, "Welcome to the tournament", welcomeBody(name))
}

func (m *smtpMailer) SendPasswordResetEmail(to, name, code, resetURL string) error {
	return m.send(to, "Reset your password", passwordResetBody(name, code, resetURL))
}

func (m *smtpMailer) SendPasswordChangedEmail(to, name string) error {
	return m.send(to, "Your password was changed", passwordChangedBody(name))
}

func (m *smtpMailer) SendLoginCodeEmail(to, name, code string) error {
	return m.send(to, "Your login code", loginCodeBody(name, code))
}

func (m *smtpMailer) SendTeamCreatedEmail(to, name, teamName string) error {
	return m.send(to, "Your team is registered", teamCreatedBody(name, teamName))
}

// logMailer writes the message to the application log instead of the wire.
type logMailer struct{}

func (m *logMailer) SendVerificationEmail(to, name, code string) error {
	log.Printf("mail [verification] to=%s name=%s code=%s", to, name, code)
	return nil
}

func (m *logMailer) SendWelcomeEmail(to, name string) error {
	log.Printf("mail [welcome] to=%s name=%s", to, name)
	return nil
}

func (m *logMailer) SendPasswordResetEmail(to, name, code, resetURL string) error {
	log.Printf("mail [password-reset] to=%s name=%s code=%s url=%s", to, name, code, resetURL)
	return nil
}

func (m *logMailer) SendPasswordChangedEmail(to, name string) error {
	log.Printf("mail [password-changed] to=%s name=%s", to, name)
	return nil
}

func (m *logMailer) SendLoginCodeEmail(to, name, code string) error {
	log.Printf("mail [login-code] to=%s name=%s code=%s", to, name, code)
	return nil
}

func (m *logMailer) SendTeamCreatedEmail(to, name, teamName string) error {
	log.Printf("mail [team-created] to=%s name=%s team=%s", to, name, teamName)
	return nil
}
