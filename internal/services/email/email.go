// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

// Package email sends transactional mail for the auth flows.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/orbitours/backoffice/internal/config"
)

// Sender delivers auth-flow messages. The auth service only depends on this
// interface; tests and dev setups swap in the log sender.
type Sender interface {
	SendVerification(ctx context.Context, toEmail, token string) error
	SendPasswordReset(ctx context.Context, toEmail, token string) error
}

// NewSender returns an SMTP sender when a host is configured, otherwise a
// sender that only logs the links (dev mode).
func NewSender(cfg *config.SMTPConfig, baseURL string) (Sender, error) {
	if cfg.Host == "" {
		return &LogSender{baseURL: strings.TrimSuffix(baseURL, "/")}, nil
	}
	return NewSMTPSender(cfg, baseURL)
}

// SMTPSender delivers mail through go-mail.
type SMTPSender struct {
	cfg     *config.SMTPConfig
	baseURL string
}

// NewSMTPSender creates an SMTP-backed sender.
func NewSMTPSender(cfg *config.SMTPConfig, baseURL string) (*SMTPSender, error) {
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}
	return &SMTPSender{
		cfg:     cfg,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// SendVerification sends an email-verification link.
func (s *SMTPSender) SendVerification(_ context.Context, toEmail, token string) error {
	verifyURL := fmt.Sprintf("%s/verify-email?token=%s", s.baseURL, token)
	body := fmt.Sprintf(
		"Welcome to the Orbitours backoffice.\n\nConfirm your email address by opening this link:\n\n%s\n\nThe link is valid for 24 hours.\n",
		verifyURL)
	return s.send(toEmail, "Confirm your email address", body)
}

// SendPasswordReset sends a password-reset link.
func (s *SMTPSender) SendPasswordReset(_ context.Context, toEmail, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, token)
	body := fmt.Sprintf(
		"A password reset was requested for your account.\n\nChoose a new password by opening this link:\n\n%s\n\nThe link is valid for one hour. If you did not request a reset, ignore this message.\n",
		resetURL)
	return s.send(toEmail, "Reset your password", body)
}

func (s *SMTPSender) send(to, subject, body string) error {
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

// LogSender writes the links to the log instead of sending mail.
type LogSender struct {
	baseURL string
}

// SendVerification logs the verification link.
func (s *LogSender) SendVerification(_ context.Context, toEmail, token string) error {
	slog.Info("email_verification_link",
		"to", toEmail,
		"url", fmt.Sprintf("%s/verify-email?token=%s", s.baseURL, token))
	return nil
}

// SendPasswordReset logs the reset link.
func (s *LogSender) SendPasswordReset(_ context.Context, toEmail, token string) error {
	slog.Info("password_reset_link",
		"to", toEmail,
		"url", fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, token))
	return nil
}
