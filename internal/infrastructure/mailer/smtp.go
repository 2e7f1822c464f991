package mailer

import (
	"context"
	"fmt"
	"html"
	"strings"

	"skillxintell/internal/config"
	"skillxintell/internal/domain/verification"
	"skillxintell/internal/pkg/logger"

	"gopkg.in/gomail.v2"
)

// Mailer e-mails the party who has to act on, or learn about, a verification
// event. It is disabled when no SMTP host is configured.
type Mailer struct {
	from   string
	send   func(m ...*gomail.Message) error
	logger logger.Logger
}

func New(cfg config.SMTPConfig, log logger.Logger) *Mailer {
	if !cfg.Enabled() {
		if log != nil {
			log.Warn("smtp host is empty, e-mail notifications are disabled")
		}
		return &Mailer{logger: log}
	}

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	return &Mailer{from: cfg.From, send: d.DialAndSend, logger: log}
}

func (m *Mailer) Enabled() bool {
	return m != nil && m.send != nil
}

func (m *Mailer) Notify(_ context.Context, ev verification.Event) error {
	if !m.Enabled() {
		return nil
	}

	to, subject, body := compose(ev)
	if strings.TrimSpace(to) == "" {
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.send(msg); err != nil {
		return fmt.Errorf("send %s mail: %w", ev.Type, err)
	}
	return nil
}

func compose(ev verification.Event) (to, subject, body string) {
	skillName := html.EscapeString(ev.SkillName)

	switch ev.Type {
	case verification.EventRequestCreated:
		to = ev.ReviewerEmail
		subject = fmt.Sprintf("Verification requested: %s", ev.SkillName)
		body = fmt.Sprintf(
			"<p>Hi %s,</p><p>%s asked you to verify the skill <b>%s</b>.</p>",
			html.EscapeString(ev.ReviewerName), html.EscapeString(ev.RequesterName), skillName,
		)
	default:
		to = ev.RequesterEmail
		decision := strings.ToLower(string(ev.Status))
		subject = fmt.Sprintf("Verification %s: %s", decision, ev.SkillName)
		body = fmt.Sprintf(
			"<p>Hi %s,</p><p>%s %s your verification request for <b>%s</b>.</p>",
			html.EscapeString(ev.RequesterName), html.EscapeString(ev.ReviewerName), decision, skillName,
		)
		if ev.Note != nil && strings.TrimSpace(*ev.Note) != "" {
			body += fmt.Sprintf("<p>Note: %s</p>", html.EscapeString(*ev.Note))
		}
	}
	return to, subject, body
}
