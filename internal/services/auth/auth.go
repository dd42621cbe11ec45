// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

// Package auth implements registration, login and the token-based
// verification and reset flows.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/orbitours/backoffice/internal/config"
	"github.com/orbitours/backoffice/internal/models"
	"github.com/orbitours/backoffice/internal/repository"
	"github.com/orbitours/backoffice/internal/services/email"
	"github.com/orbitours/backoffice/internal/services/history"
	"github.com/orbitours/backoffice/internal/services/password"
	"github.com/orbitours/backoffice/internal/services/token"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("account is deactivated")
	ErrRegistrationClosed = errors.New("registration is closed")
	ErrInvalidEmail       = errors.New("invalid email format")
	// ErrTokenInvalid covers unknown, expired and already-used tokens alike,
	// so a caller probing tokens learns nothing about which case they hit.
	ErrTokenInvalid = errors.New("invalid or expired token")
)

const (
	verificationTTL = 24 * time.Hour
	resetTTL        = time.Hour
)

// Failure reasons stored in login history.
const (
	ReasonInvalidPassword = "invalid_password"
	ReasonNoPassword      = "no_password"
	ReasonInactive        = "account_inactive"
)

// dummyHash is verified against when the email is unknown, so the wrong-email
// and wrong-password paths cost the same.
var dummyHash, _ = password.Hash("dummy-password-for-timing")

// Attempt carries the request metadata recorded in login history.
type Attempt struct {
	IP        string
	UserAgent string
}

// Service implements the authentication flows.
type Service struct {
	repo    *repository.Repository
	cfg     *config.AuthConfig
	sender  email.Sender
	history *history.Recorder
}

// NewService creates an auth service.
func NewService(repo *repository.Repository, cfg *config.AuthConfig, sender email.Sender, recorder *history.Recorder) *Service {
	return &Service{
		repo:    repo,
		cfg:     cfg,
		sender:  sender,
		history: recorder,
	}
}

// Register creates a new user account in unverified state and mails a
// verification link.
func (s *Service) Register(ctx context.Context, emailAddr, plaintext string) (*models.User, error) {
	if _, err := mail.ParseAddress(emailAddr); err != nil {
		return nil, ErrInvalidEmail
	}

	if !s.cfg.RegistrationOpen {
		return nil, ErrRegistrationClosed
	}

	if _, err := s.repo.GetUserByEmail(ctx, emailAddr); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("checking existing user: %w", err)
	}

	hash, err := password.Hash(plaintext)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		UUID:     token.NewUUID(),
		Email:    emailAddr,
		IsActive: 1,
	}
	user.PasswordHash.String = hash
	user.PasswordHash.Valid = true

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	if err := s.sendVerification(ctx, user); err != nil {
		// The account exists either way; the link can be re-requested.
		slog.Warn("verification_mail_failed", "user_id", user.ID, "error", err)
	}

	slog.Info("register_success", "user_id", user.ID, "email", emailAddr)
	return user, nil
}

func (s *Service) sendVerification(ctx context.Context, user *models.User) error {
	tok := token.New()
	expiresAt := time.Now().UTC().Add(verificationTTL)
	if err := s.repo.CreateEmailVerificationToken(ctx, user.ID, tok, expiresAt); err != nil {
		return err
	}
	return s.sender.SendVerification(ctx, user.Email, tok)
}

// Login authenticates a user. The unknown-email and wrong-password paths
// return the same error; both verify a hash so they cost the same. Every
// attempt against a known account lands in login history.
func (s *Service) Login(ctx context.Context, emailAddr, plaintext string, attempt Attempt) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_, _ = password.Verify(plaintext, dummyHash)
			slog.Warn("login_failed", "email", emailAddr, "reason", "user_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if !user.Active() {
		s.history.Record(ctx, user.ID, models.LoginStatusFailed, ReasonInactive, attempt.IP, attempt.UserAgent)
		slog.Warn("login_failed", "user_id", user.ID, "reason", ReasonInactive)
		return nil, ErrInactiveAccount
	}

	if !user.PasswordHash.Valid {
		// Pending invite: no usable password yet.
		_, _ = password.Verify(plaintext, dummyHash)
		s.history.Record(ctx, user.ID, models.LoginStatusFailed, ReasonNoPassword, attempt.IP, attempt.UserAgent)
		slog.Warn("login_failed", "user_id", user.ID, "reason", ReasonNoPassword)
		return nil, ErrInvalidCredentials
	}

	ok, err := password.Verify(plaintext, user.PasswordHash.String)
	if err != nil {
		return nil, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		s.history.Record(ctx, user.ID, models.LoginStatusFailed, ReasonInvalidPassword, attempt.IP, attempt.UserAgent)
		slog.Warn("login_failed", "user_id", user.ID, "reason", ReasonInvalidPassword)
		return nil, ErrInvalidCredentials
	}

	s.history.Record(ctx, user.ID, models.LoginStatusSuccess, "", attempt.IP, attempt.UserAgent)
	slog.Info("login_success", "user_id", user.ID, "email", emailAddr)
	return user, nil
}

// VerifyEmail consumes a verification token and stamps the user verified.
func (s *Service) VerifyEmail(ctx context.Context, tok string) error {
	if err := s.repo.ConsumeEmailVerificationToken(ctx, tok); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTokenInvalid
		}
		return err
	}
	return nil
}

// RequestPasswordReset mails a reset link if the account exists. The caller
// always gets the same answer, so the endpoint is not an email oracle.
func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	user, err := s.repo.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("looking up user: %w", err)
	}

	tok := token.New()
	expiresAt := time.Now().UTC().Add(resetTTL)
	if err := s.repo.CreatePasswordResetToken(ctx, user.Email, tok, expiresAt); err != nil {
		return fmt.Errorf("creating reset token: %w", err)
	}

	if err := s.sender.SendPasswordReset(ctx, user.Email, tok); err != nil {
		slog.Warn("reset_mail_failed", "user_id", user.ID, "error", err)
	}
	return nil
}

// ResetPassword consumes a reset token and writes the new password in one
// transaction. Token consumed but password unchanged (or vice versa) is
// never observable.
func (s *Service) ResetPassword(ctx context.Context, tok, plaintext string) error {
	hash, err := password.Hash(plaintext)
	if err != nil {
		return err
	}

	if err := s.repo.ConsumeResetTokenAndUpdatePassword(ctx, tok, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTokenInvalid
		}
		return err
	}
	return nil
}

// ChangePassword changes a password for a user who knows their current one.
// All other sessions of the user are revoked.
func (s *Service) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("looking up user: %w", err)
	}

	if !user.PasswordHash.Valid {
		return ErrInvalidCredentials
	}
	ok, err := password.Verify(current, user.PasswordHash.String)
	if err != nil {
		return fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	hash, err := password.Hash(next)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateUserPassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	return s.repo.DeleteUserSessions(ctx, userID)
}
