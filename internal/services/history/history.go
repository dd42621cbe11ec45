// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

// Package history records login attempts for auditing.
package history

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/orbitours/backoffice/internal/models"
)

// Store is the persistence the recorder consumes.
type Store interface {
	CreateLoginHistory(ctx context.Context, entry *models.LoginHistory) error
}

// Recorder appends immutable audit rows for authentication attempts.
type Recorder struct {
	store Store
}

// NewRecorder creates a Recorder.
func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// Record appends an audit row. It is fire-and-forget: a persistence failure
// is logged and swallowed, it must never fail the login flow it observes.
func (r *Recorder) Record(ctx context.Context, userID int64, status, reason, ip, userAgent string) {
	entry := &models.LoginHistory{
		UserID:    userID,
		Status:    status,
		Reason:    nullString(reason),
		IP:        nullString(ip),
		UserAgent: nullString(userAgent),
	}
	if err := r.store.CreateLoginHistory(ctx, entry); err != nil {
		slog.Warn("login_history_record_failed", "user_id", userID, "status", status, "error", err)
	}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
