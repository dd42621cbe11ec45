// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"

	"github.com/orbitours/backoffice/internal/database"
	"github.com/orbitours/backoffice/internal/models"
	"github.com/orbitours/backoffice/internal/repository"
	"github.com/orbitours/backoffice/internal/services/password"
	"github.com/orbitours/backoffice/internal/services/token"
)

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// NewTestUser creates an active user with the given password.
func NewTestUser(t *testing.T, repo *repository.Repository, email, plaintext string) *models.User {
	t.Helper()
	ctx := context.Background()

	user := &models.User{
		UUID:     token.NewUUID(),
		Email:    email,
		IsActive: 1,
	}
	if plaintext != "" {
		hash, err := password.Hash(plaintext)
		require.NoError(t, err)
		user.PasswordHash.String = hash
		user.PasswordHash.Valid = true
	}
	require.NoError(t, repo.CreateUser(ctx, user))
	return user
}

// NewTestRole creates a role holding the given permission names, creating
// the permissions as needed.
func NewTestRole(t *testing.T, repo *repository.Repository, name string, permNames ...string) *models.Role {
	t.Helper()
	ctx := context.Background()

	permIDs := make([]int64, 0, len(permNames))
	for _, permName := range permNames {
		require.NoError(t, repo.UpsertPermission(ctx, permName, ""))
		perm, err := repo.GetPermissionByName(ctx, permName)
		require.NoError(t, err)
		permIDs = append(permIDs, perm.ID)
	}

	role := &models.Role{Name: name}
	require.NoError(t, repo.CreateRole(ctx, role, permIDs))
	return role
}

// GrantRole assigns roles to a user, replacing existing memberships.
func GrantRole(t *testing.T, repo *repository.Repository, userID int64, roleIDs ...int64) {
	t.Helper()
	require.NoError(t, repo.SetUserRoles(context.Background(), userID, roleIDs))
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}
