package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"github.com/Miraines/MoonyAndStarry/contacts-service/internal/infra/config"
	"html/template"
	"strings"

	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	verifyTemplate = "verify_email.html"
	resetTemplate  = "reset_password.html"

	SubjectVerify = "Confirm your email "
	SubjectReset  = "Confirm reset of password "
)

type templateData struct {
	Host     string
	Username string
	Token    string
	Link     string
}

// SMTPMailer renders the embedded html templates and sends them over SMTP.
type SMTPMailer struct {
	from     string
	fromName string
	send     func(...*gomail.Message) error
	tpl      *template.Template
}

func New(cfg *config.Config) *SMTPMailer {
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	return newMailer(cfg, d.DialAndSend)
}

// NewWithSender delivers through s instead of dialing an SMTP server.
func NewWithSender(cfg *config.Config, s gomail.Sender) *SMTPMailer {
	return newMailer(cfg, func(m ...*gomail.Message) error {
		return gomail.Send(s, m...)
	})
}

func newMailer(cfg *config.Config, send func(...*gomail.Message) error) *SMTPMailer {
	from := cfg.MailFrom
	if from == "" {
		from = cfg.SMTPUsername
	}
	return &SMTPMailer{
		from:     from,
		fromName: cfg.MailFromName,
		send:     send,
		tpl:      template.Must(template.ParseFS(templatesFS, "templates/*.html")),
	}
}

func (m *SMTPMailer) SendVerification(ctx context.Context, email, username, host, token string) error {
	link := joinURL(host, "api/auth/confirmed_email/"+token)
	return m.deliver(ctx, email, SubjectVerify, verifyTemplate, templateData{host, username, token, link})
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, email, username, host, token string) error {
	link := joinURL(host, "api/auth/password-reset/"+token)
	return m.deliver(ctx, email, SubjectReset, resetTemplate, templateData{host, username, token, link})
}

func (m *SMTPMailer) deliver(ctx context.Context, to, subject, name string, data templateData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := m.render(name, data)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, m.fromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.send(msg); err != nil {
		return fmt.Errorf("send %s: %w", name, err)
	}
	return nil
}

func (m *SMTPMailer) render(name string, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := m.tpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func joinURL(host, path string) string {
	return strings.TrimRight(host, "/") + "/" + path
}
