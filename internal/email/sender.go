// Package email provides outbound mail delivery for the application.
package email

import (
	"context"
	"fmt"

	"pipeline_crm_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

// Sender delivers the application's transactional mail.
type Sender interface {
	SendPasswordResetEmail(ctx context.Context, toEmail, resetURL string) error
	SendWelcomeEmail(ctx context.Context, toEmail, name string) error
}

// NoopSender is used when mail is disabled (local development, tests).
type NoopSender struct{}

func (NoopSender) SendPasswordResetEmail(ctx context.Context, toEmail, resetURL string) error {
	return nil
}

func (NoopSender) SendWelcomeEmail(ctx context.Context, toEmail, name string) error {
	return nil
}

// NewSender builds a Sender from config, falling back to NoopSender when
// email is disabled.
func NewSender(cfg config.EmailConfig) Sender {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}
	}
	return &SMTPSender{cfg: cfg}
}

// SMTPSender delivers mail over SMTP via go-mail.
type SMTPSender struct {
	cfg config.EmailConfig
}

func (s *SMTPSender) SendPasswordResetEmail(ctx context.Context, toEmail, resetURL string) error {
	body := fmt.Sprintf(
		"<p>A password reset was requested for your account.</p>"+
			"<p><a href=%q>Reset your password</a></p>"+
			"<p>If you did not request this, you can ignore this email.</p>", resetURL)
	return s.send(ctx, toEmail, "Reset your password", body)
}

func (s *SMTPSender) SendWelcomeEmail(ctx context.Context, toEmail, name string) error {
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>An account was created for you. "+
			"Use the password reset flow to set your password.</p>", name)
	return s.send(ctx, toEmail, "Your account is ready", body)
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlBody string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.cfg.GetEmailFromName(), s.cfg.GetEmailFromAddress()); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	client, err := gomail.NewClient(s.cfg.GetSMTPHost(),
		gomail.WithPort(s.cfg.GetSMTPPort()),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.cfg.GetSMTPUsername()),
		gomail.WithPassword(s.cfg.GetSMTPPassword()),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	return client.DialAndSendWithContext(ctx, msg)
}
