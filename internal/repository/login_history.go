// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"github.com/orbitours/backoffice/internal/models"
)

// CreateLoginHistory appends an audit row. Rows are immutable.
func (r *Repository) CreateLoginHistory(ctx context.Context, entry *models.LoginHistory) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO login_history (user_id, status, reason, ip, user_agent)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.UserID, entry.Status, entry.Reason, entry.IP, entry.UserAgent)
	if err != nil {
		return err
	}
	entry.ID, err = res.LastInsertId()
	return err
}

// ListLoginHistory returns a page of audit rows for a user, newest first.
func (r *Repository) ListLoginHistory(ctx context.Context, userID int64, limit, offset int) ([]models.LoginHistory, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []models.LoginHistory
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM login_history WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountLoginHistory returns the number of audit rows for a user.
func (r *Repository) CountLoginHistory(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM login_history WHERE user_id = ?`, userID)
	return count, err
}
