package smtp

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/facility-dashboard-api/internal/config"
	"github.com/facility-dashboard-api/internal/domain"
)

// Mailer sends HTML emails to one or more recipients.
type Mailer interface {
	SendEmail(to []string, subject, htmlBody string) error
}

type mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
	}
}

// SendEmail sends one HTML email to all recipients. When SMTP is not
// configured it returns domain.ErrNotConfigured so callers can treat the
// channel as absent instead of failed.
func (m *mailer) SendEmail(to []string, subject, htmlBody string) error {
	if m.host == "" || m.from == "" {
		return domain.ErrNotConfigured
	}
	if len(to) == 0 {
		return fmt.Errorf("no recipients: %w", domain.ErrBadRequest)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		m.from, strings.Join(to, ", "), subject, htmlBody)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, to, []byte(msg))
}
