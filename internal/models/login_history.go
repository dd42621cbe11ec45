// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

package models

import (
	"database/sql"
	"time"
)

// Login outcome values stored in login_history.status.
const (
	LoginStatusSuccess = "success"
	LoginStatusFailed  = "failed"
)

// LoginHistory is an append-only audit row for an authentication attempt.
// Rows are never updated or deleted by the application.
type LoginHistory struct { //nolint:govet // fieldalignment: readability over optimization
	ID        int64          `db:"id" json:"id"`
	UserID    int64          `db:"user_id" json:"user_id"`
	Status    string         `db:"status" json:"status"`
	Reason    sql.NullString `db:"reason" json:"reason"`
	IP        sql.NullString `db:"ip" json:"ip"`
	UserAgent sql.NullString `db:"user_agent" json:"user_agent"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}
