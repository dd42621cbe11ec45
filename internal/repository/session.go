// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/orbitours/backoffice/internal/models"
)

// CreateSession inserts a session row.
func (r *Repository) CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)`,
		token, userID, expiresAt)
	return err
}

// GetActiveSession returns the unexpired session for a token.
func (r *Repository) GetActiveSession(ctx context.Context, token string) (*models.Session, error) {
	var sess models.Session
	err := r.db.GetContext(ctx, &sess,
		`SELECT * FROM sessions WHERE token = ? AND expires_at > ?`, token, time.Now().UTC())
	if err != nil {
		return nil, wrapError(err)
	}
	return &sess, nil
}

// DeleteSession removes a session row, revoking the token server-side.
func (r *Repository) DeleteSession(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	return err
}

// DeleteUserSessions removes all sessions for a user (password change,
// account deactivation).
func (r *Repository) DeleteUserSessions(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

// DeleteExpiredSessions removes stale rows.
func (r *Repository) DeleteExpiredSessions(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, time.Now().UTC())
	return err
}
