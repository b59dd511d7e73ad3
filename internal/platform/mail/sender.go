// Package mail sends notification email through the configured SMTP host.
// The local stack points this at the mail-capture service, so messages are
// viewable in its UI instead of being delivered.
package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stencilhq/stencil-api/internal/config"
	"github.com/stencilhq/stencil-api/internal/platform/logger"
	"gopkg.in/gomail.v2"
)

// Sender delivers plain-text notification messages.
type Sender interface {
	// Send delivers a message with the given subject and body to the
	// configured recipient.
	Send(ctx context.Context, subject, body string) error
}

// smtpSender implements Sender over SMTP via gomail.
type smtpSender struct {
	cfg    config.MailConfig
	dialer *gomail.Dialer
	logger *slog.Logger
}

// NewSMTPSender creates a Sender from the mail configuration.
// If logger is nil, a default logger will be used.
func NewSMTPSender(cfg config.MailConfig, logger *slog.Logger) (Sender, error) {
	if cfg.Host == "" || cfg.Port == 0 || cfg.From == "" {
		return nil, fmt.Errorf("mail host, port and from address must be configured")
	}

	if logger == nil {
		logger = slog.Default()
	}

	// No credentials: the local mail-capture service accepts anything.
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, "", "")

	return &smtpSender{
		cfg:    cfg,
		dialer: dialer,
		logger: logger.With(slog.String("component", "mail_sender")),
	}, nil
}

// Send implements Sender.Send.
// The dial-and-send runs in a goroutine so a stalled SMTP server cannot
// hold the request past its context deadline.
func (s *smtpSender) Send(ctx context.Context, subject, body string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", s.cfg.To)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case <-ctx.Done():
		log.Warn("mail send cancelled by context",
			slog.String("subject", subject),
			slog.String("error", ctx.Err().Error()))
		return fmt.Errorf("mail send cancelled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			log.Error("failed to send mail",
				slog.String("subject", subject),
				slog.String("error", err.Error()))
			return fmt.Errorf("failed to send mail: %w", err)
		}
	}

	log.Info("mail sent",
		slog.String("subject", subject),
		slog.String("to", s.cfg.To))
	return nil
}
