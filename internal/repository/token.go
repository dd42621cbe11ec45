// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/vinovest/sqlx"

	"github.com/orbitours/backoffice/internal/models"
)

// CreateEmailVerificationToken creates a new email verification token.
func (r *Repository) CreateEmailVerificationToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO email_verification_tokens (user_id, token, expires_at) VALUES (?, ?, ?)`,
		userID, token, expiresAt)
	return err
}

// ConsumeEmailVerificationToken marks a token used and stamps the user's
// email_verified_at in one transaction. A token that is unknown, expired or
// already used yields ErrNotFound; the caller cannot tell which.
func (r *Repository) ConsumeEmailVerificationToken(ctx context.Context, token string) error {
	now := time.Now().UTC()
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		var row models.EmailVerificationToken
		err := tx.GetContext(ctx, &row,
			`SELECT * FROM email_verification_tokens
			 WHERE token = ? AND used_at IS NULL AND expires_at > ?`, token, now)
		if err != nil {
			return wrapError(err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE email_verification_tokens SET used_at = ? WHERE id = ?`, now, row.ID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE users SET email_verified_at = ?, updated_at = ? WHERE id = ? AND email_verified_at IS NULL`,
			now, now, row.UserID)
		return err
	})
}

// CreatePasswordResetToken creates a new password reset token for an email.
func (r *Repository) CreatePasswordResetToken(ctx context.Context, email, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO password_reset_tokens (email, token, expires_at) VALUES (?, ?, ?)`,
		email, token, expiresAt)
	return err
}

// GetActiveResetToken returns an unexpired, unused reset token.
func (r *Repository) GetActiveResetToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	var row models.PasswordResetToken
	err := r.db.GetContext(ctx, &row,
		`SELECT * FROM password_reset_tokens
		 WHERE token = ? AND used_at IS NULL AND expires_at > ?`, token, time.Now().UTC())
	if err != nil {
		return nil, wrapError(err)
	}
	return &row, nil
}

// ConsumeResetTokenAndUpdatePassword marks the token used and writes the new
// password hash as one atomic transaction. Either both mutations apply or
// neither does. All invalid-token shapes collapse into ErrNotFound. All
// existing sessions of the user are revoked in the same transaction.
func (r *Repository) ConsumeResetTokenAndUpdatePassword(ctx context.Context, token, passwordHash string) error {
	now := time.Now().UTC()
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		var row models.PasswordResetToken
		err := tx.GetContext(ctx, &row,
			`SELECT * FROM password_reset_tokens
			 WHERE token = ? AND used_at IS NULL AND expires_at > ?`, token, now)
		if err != nil {
			return wrapError(err)
		}

		var user models.User
		if err := tx.GetContext(ctx, &user, `SELECT * FROM users WHERE email = ?`, row.Email); err != nil {
			return wrapError(err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE password_reset_tokens SET used_at = ? WHERE id = ?`, now, row.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
			passwordHash, now, user.ID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, user.ID)
		return err
	})
}

// DeleteExpiredTokens removes stale verification and reset tokens.
func (r *Repository) DeleteExpiredTokens(ctx context.Context) error {
	now := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM email_verification_tokens WHERE expires_at <= ?`, now); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM password_reset_tokens WHERE expires_at <= ?`, now)
	return err
}
