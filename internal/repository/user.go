// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/vinovest/sqlx"

	"github.com/orbitours/backoffice/internal/models"
)

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = ?`, email); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// CreateUser inserts a new user and fills in the generated ID.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (uuid, email, password_hash, is_active, email_verified_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.UUID, user.Email, user.PasswordHash, user.IsActive, user.EmailVerifiedAt)
	if err != nil {
		return err
	}
	user.ID, err = res.LastInsertId()
	return err
}

// UpdateUser updates the mutable profile fields of a user.
func (r *Repository) UpdateUser(ctx context.Context, user *models.User) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET email = ?, is_active = ?, updated_at = ? WHERE id = ?`,
		user.Email, user.IsActive, time.Now().UTC(), user.ID)
	return err
}

// UpdateUserPassword updates a user's password hash.
func (r *Repository) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, time.Now().UTC(), id)
	return err
}

// SetUserActive toggles the active flag.
func (r *Repository) SetUserActive(ctx context.Context, id int64, active bool) error {
	val := int64(0)
	if active {
		val = 1
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?`,
		val, time.Now().UTC(), id)
	return err
}

// ListUsers returns all users ordered by creation date (newest first).
func (r *Repository) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, `SELECT * FROM users ORDER BY created_at DESC, id DESC`); err != nil {
		return nil, err
	}
	return users, nil
}

// GetRolesForUser returns the roles currently held by a user.
func (r *Repository) GetRolesForUser(ctx context.Context, userID int64) ([]models.Role, error) {
	var roles []models.Role
	err := r.db.SelectContext(ctx, &roles,
		`SELECT r.* FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = ?
		 ORDER BY r.name`, userID)
	if err != nil {
		return nil, err
	}
	return roles, nil
}

// GetPermissionNamesForUser returns the union of permission names reachable
// through all of the user's current role memberships. An unknown user simply
// yields an empty slice.
func (r *Repository) GetPermissionNamesForUser(ctx context.Context, userID int64) ([]string, error) {
	var names []string
	err := r.db.SelectContext(ctx, &names,
		`SELECT DISTINCT p.name FROM permissions p
		 JOIN role_permissions rp ON rp.permission_id = p.id
		 JOIN user_roles ur ON ur.role_id = rp.role_id
		 WHERE ur.user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	return names, nil
}

// SetUserRoles replaces a user's role memberships in one transaction.
func (r *Repository) SetUserRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = ?`, userID); err != nil {
			return err
		}
		for _, roleID := range roleIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)`, userID, roleID); err != nil {
				return err
			}
		}
		return nil
	})
}

// MarkEmailVerified sets the verification timestamp if not already set.
func (r *Repository) MarkEmailVerified(ctx context.Context, userID int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET email_verified_at = ?, updated_at = ? WHERE id = ? AND email_verified_at IS NULL`,
		sql.NullTime{Time: at, Valid: true}, time.Now().UTC(), userID)
	return err
}
