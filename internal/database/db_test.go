// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitours/backoffice/internal/database"
)

func TestOpenAppliesMigrations(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	tables := []string{
		"users", "roles", "permissions", "user_roles", "role_permissions",
		"sessions", "login_history",
		"email_verification_tokens", "password_reset_tokens", "menu_items",
	}
	for _, table := range tables {
		var count int64
		err := db.GetContext(ctx, &count,
			`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count, "missing table %s", table)
	}
}

func TestOpenEnforcesForeignKeys(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// A membership row for a user that does not exist must be refused.
	_, err = db.ExecContext(context.Background(),
		`INSERT INTO user_roles (user_id, role_id) VALUES (999, 999)`)
	assert.Error(t, err)
}
