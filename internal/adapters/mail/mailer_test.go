package mail

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/Miraines/MoonyAndStarry/contacts-service/internal/infra/config"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type captured struct {
	from string
	to   []string
	msg  *gomail.Message
}

func newTestMailer(t *testing.T, fail error) (*SMTPMailer, *[]captured) {
	t.Helper()
	var sent []captured
	sender := gomail.SendFunc(func(from string, to []string, msg io.WriterTo) error {
		if fail != nil {
			return fail
		}
		sent = append(sent, captured{from, to, msg.(*gomail.Message)})
		return nil
	})
	cfg := &config.Config{MailFrom: "noreply@addressbook.io", MailFromName: "ADDRESSBOOK Systems"}
	return NewWithSender(cfg, sender), &sent
}

func TestSMTPMailer_SendVerification(t *testing.T) {
	m, sent := newTestMailer(t, nil)

	err := m.SendVerification(context.Background(), "agent007@gmail.com", "agent007", "http://localhost:8080/", "tok123")
	require.NoError(t, err)
	require.Len(t, *sent, 1)

	got := (*sent)[0]
	require.Equal(t, "noreply@addressbook.io", got.from)
	require.Equal(t, []string{"agent007@gmail.com"}, got.to)
	require.Equal(t, []string{SubjectVerify}, got.msg.GetHeader("Subject"))
	require.Contains(t, got.msg.GetHeader("From")[0], "ADDRESSBOOK Systems")
}

func TestSMTPMailer_SendPasswordReset(t *testing.T) {
	m, sent := newTestMailer(t, nil)

	err := m.SendPasswordReset(context.Background(), "agent007@gmail.com", "agent007", "http://localhost:8080", "tok123")
	require.NoError(t, err)
	require.Equal(t, []string{SubjectReset}, (*sent)[0].msg.GetHeader("Subject"))
}

func TestSMTPMailer_Render(t *testing.T) {
	m, _ := newTestMailer(t, nil)

	body, err := m.render(verifyTemplate, templateData{
		Username: "<b>bond</b>",
		Link:     joinURL("http://localhost:8080/", "api/auth/confirmed_email/tok"),
	})
	require.NoError(t, err)
	require.Contains(t, body, `href="http://localhost:8080/api/auth/confirmed_email/tok"`)
	require.Contains(t, body, "&lt;b&gt;bond&lt;/b&gt;")
	require.False(t, strings.Contains(body, "<b>bond</b>"))

	body, err = m.render(resetTemplate, templateData{Username: "bond", Link: "http://h/api/auth/password-reset/tok"})
	require.NoError(t, err)
	require.Contains(t, body, "password-reset/tok")
}

func TestSMTPMailer_SendError(t *testing.T) {
	m, _ := newTestMailer(t, errors.New("smtp down"))

	err := m.SendVerification(context.Background(), "a@b.io", "a", "http://h/", "tok")
	require.ErrorContains(t, err, "smtp down")
}

func TestSMTPMailer_CancelledContext(t *testing.T) {
	m, sent := newTestMailer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, m.SendVerification(ctx, "a@b.io", "a", "http://h/", "tok"), context.Canceled)
	require.Empty(t, *sent)
}
