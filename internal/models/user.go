// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

package models

import (
	"database/sql"
	"time"
)

// User is an identity record. PasswordHash is nullable: a user created via
// invite exists without a usable password until they complete registration.
type User struct { //nolint:govet // fieldalignment: readability over optimization
	ID              int64          `db:"id" json:"id"`
	UUID            string         `db:"uuid" json:"uuid"`
	Email           string         `db:"email" json:"email"`
	PasswordHash    sql.NullString `db:"password_hash" json:"-"`
	IsActive        int64          `db:"is_active" json:"is_active"`
	EmailVerifiedAt sql.NullTime   `db:"email_verified_at" json:"email_verified_at"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// Active reports whether the account may log in.
func (u *User) Active() bool {
	return u.IsActive != 0
}

// Verified reports whether the email address has been confirmed.
func (u *User) Verified() bool {
	return u.EmailVerifiedAt.Valid
}
