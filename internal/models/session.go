// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

package models

import "time"

// Session is a server-side session row. The token is a dedicated random
// credential, decoupled from the user's stable UUID, so logout can revoke
// it and a leaked cookie dies with the row.
type Session struct {
	ID        int64     `db:"id" json:"id"`
	Token     string    `db:"token" json:"-"`
	UserID    int64     `db:"user_id" json:"user_id"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
