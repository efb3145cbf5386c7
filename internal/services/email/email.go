// Copyright 2025 Mara Köpke
// Licensed under the EUPL-1.2

// Package email is the mail collaborator boundary. The account service
// hands it {recipient, code}; delivery failures are the caller's to log,
// never to abort on.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wneessen/go-mail"

	"codeberg.org/mkoepke/accountd/internal/config"
)

// Sender delivers verification mails.
type Sender interface {
	SendVerification(ctx context.Context, recipient, code string) error
}

// Service sends verification mails via SMTP using go-mail.
type Service struct {
	cfg     *config.SMTPConfig
	baseURL string
}

// NewService creates a new SMTP email service.
func NewService(cfg *config.SMTPConfig, baseURL string) (*Service, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}

	return &Service{
		cfg:     cfg,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// SendVerification sends an activation link for the given code.
func (s *Service) SendVerification(_ context.Context, recipient, code string) error {
	activateURL := fmt.Sprintf("%s/activate/%s", s.baseURL, code)

	subject := "Confirm your email address"
	body := fmt.Sprintf(
		"Open the following link to confirm your email address:\n\n%s\n\nThe link is valid for 48 hours.\n",
		activateURL)

	return s.send(recipient, subject, body)
}

// send sends an email via SMTP using go-mail.
func (s *Service) send(to, subject, body string) error {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Implicit TLS (SSL) for port 465, STARTTLS for others
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}

// LogSender logs the activation link instead of delivering it. Used when no
// SMTP host is configured.
type LogSender struct {
	baseURL string
}

// NewLogSender creates a log-only sender.
func NewLogSender(baseURL string) *LogSender {
	return &LogSender{baseURL: strings.TrimSuffix(baseURL, "/")}
}

// SendVerification logs the activation link.
func (s *LogSender) SendVerification(_ context.Context, recipient, code string) error {
	slog.Info("verification_mail_stub",
		"recipient", recipient,
		"activate_url", fmt.Sprintf("%s/activate/%s", s.baseURL, code),
	)
	return nil
}
