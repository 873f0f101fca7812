package mail

import (
	"gopkg.in/gomail.v2"

	"qualitivate/internal/config"
)

// Mailer sends survey invitations over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// New returns nil when no SMTP host is configured, which disables the
// email distribution channel.
func New(cfg config.SMTPConfig) *Mailer {
	if cfg.Host == "" {
		return nil
	}
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *Mailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}
