// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

package models

import (
	"database/sql"
	"time"
)

// EmailVerificationToken is a single-use token mailed out at registration.
// Valid iff used_at IS NULL and expires_at is in the future.
type EmailVerificationToken struct { //nolint:govet // fieldalignment: readability over optimization
	ID        int64        `db:"id" json:"id"`
	UserID    int64        `db:"user_id" json:"user_id"`
	Token     string       `db:"token" json:"-"`
	ExpiresAt time.Time    `db:"expires_at" json:"expires_at"`
	UsedAt    sql.NullTime `db:"used_at" json:"used_at"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}

// PasswordResetToken is a single-use token mailed out on a reset request.
// Keyed by email rather than user id so a request for a since-deleted
// account leaves no dangling reference.
type PasswordResetToken struct { //nolint:govet // fieldalignment: readability over optimization
	ID        int64        `db:"id" json:"id"`
	Email     string       `db:"email" json:"email"`
	Token     string       `db:"token" json:"-"`
	ExpiresAt time.Time    `db:"expires_at" json:"expires_at"`
	UsedAt    sql.NullTime `db:"used_at" json:"used_at"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}
