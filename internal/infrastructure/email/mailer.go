package email

import (
	"context"
	"fmt"

	"github.com/nthottathil/bridge-web-app/internal/config"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer sends transactional email over SMTP. When no SMTP host is
// configured it degrades to logging the message, which keeps local
// development working without a mail server.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

func NewMailer(cfg *config.EmailConfig, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Mailer{
		from:   cfg.From,
		logger: logger,
	}
	if cfg.SMTPHost != "" {
		m.dialer = gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password)
	} else {
		logger.Warn("no SMTP host configured, emails will only be logged")
	}
	return m
}

// SendVerificationCode emails a signup verification code.
func (m *Mailer) SendVerificationCode(ctx context.Context, toEmail, code string) error {
	subject := "Verify your Bridge account"
	body := fmt.Sprintf(
		"<p>Welcome to Bridge!</p><p>Your verification code is <b>%s</b>.</p>",
		code,
	)
	return m.send(ctx, toEmail, subject, body)
}

// SendMatchRequest notifies a user that someone wants to connect.
func (m *Mailer) SendMatchRequest(ctx context.Context, toEmail, requesterName string) error {
	subject := "New connection request on Bridge"
	body := fmt.Sprintf(
		"<p>%s would like to connect with you.</p><p>Open Bridge to respond.</p>",
		requesterName,
	)
	return m.send(ctx, toEmail, subject, body)
}

// SendGroupJoined notifies existing group members about a new member.
func (m *Mailer) SendGroupJoined(ctx context.Context, toEmail, memberName string) error {
	subject := "Your Bridge group has a new member"
	body := fmt.Sprintf(
		"<p>%s just joined your group. Say hello!</p>",
		memberName,
	)
	return m.send(ctx, toEmail, subject, body)
}

func (m *Mailer) send(ctx context.Context, to, subject, body string) error {
	if m.dialer == nil {
		m.logger.Info("email skipped",
			zap.String("to", to),
			zap.String("subject", subject),
		)
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
