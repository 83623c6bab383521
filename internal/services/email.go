package services

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"apartment_app_echo/internal/config"
)

// EmailService delivers HTML mail over SMTP
type EmailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(cfg config.SMTPConfig) *EmailService {
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &EmailService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   from,
	}
}

func (e *EmailService) Configured() bool {
	return e.dialer.Host != "" && e.dialer.Username != "" && e.dialer.Password != ""
}

func (e *EmailService) Send(ctx context.Context, to, subject, htmlBody string) error {
	if !e.Configured() {
		return fmt.Errorf("SMTP credentials not fully configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := e.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
