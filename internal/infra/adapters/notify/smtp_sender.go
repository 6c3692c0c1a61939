package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"github.com/rs/zerolog"

	"scouting-backend/internal/config"
	"scouting-backend/internal/domain/ports/adapter"
)

var _ adapter.NotificationSender = (*SMTPSender)(nil)

// SMTPSender delivers transactional mail over plain SMTP with auth.
type SMTPSender struct {
	host string
	port int
	auth smtp.Auth
	from string
	log  *zerolog.Logger
}

func NewSMTPSender(cfg config.NotificationConfig, logger *zerolog.Logger) *SMTPSender {
	sLog := logger.With().Str("component", "SMTPSender").Logger()
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.SMTPHost)
	}
	return &SMTPSender{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		auth: auth,
		from: cfg.From,
		log:  &sLog,
	}
}

func (s *SMTPSender) SendSubscriptionActivated(ctx context.Context, email string, expiresAt time.Time) error {
	subject := "Your subscription is active"
	body := fmt.Sprintf(
		"Your subscription has been activated and is valid until %s.\r\n\r\nThank you for subscribing.",
		expiresAt.Format("2 January 2006"),
	)
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		s.from, email, subject, body,
	))

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	if err := smtp.SendMail(addr, s.auth, s.from, []string{email}, msg); err != nil {
		return fmt.Errorf("send activation mail: %w", err)
	}
	s.log.Debug().Str("to", email).Msg("activation mail sent")
	return nil
}

// NoopSender is wired when notifications are disabled.
type NoopSender struct{}

var _ adapter.NotificationSender = (*NoopSender)(nil)

func (NoopSender) SendSubscriptionActivated(ctx context.Context, email string, expiresAt time.Time) error {
	return nil
}
