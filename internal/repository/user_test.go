// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitours/backoffice/internal/repository"
	"github.com/orbitours/backoffice/internal/testutil"
)

func TestCreateAndGetUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "alice@example.com", "passw0rd!")
	require.NotZero(t, user.ID)

	byID, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)
	assert.True(t, byID.Active())
	assert.False(t, byID.Verified())

	byEmail, err := repo.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPermissionUnionAcrossRoles(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	// Overlapping bundles: the union must deduplicate users:view.
	support := testutil.NewTestRole(t, repo, "support", "users:view", "history:view")
	sales := testutil.NewTestRole(t, repo, "sales", "users:view", "reports:view")
	user := testutil.NewTestUser(t, repo, "bob@example.com", "passw0rd!")
	testutil.GrantRole(t, repo, user.ID, support.ID, sales.ID)

	names, err := repo.GetPermissionNamesForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"users:view", "history:view", "reports:view"}, names)
}

func TestPermissionsForUnknownUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	names, err := repo.GetPermissionNamesForUser(context.Background(), 9999)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestSetUserRolesReplaces(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	support := testutil.NewTestRole(t, repo, "support", "users:view")
	sales := testutil.NewTestRole(t, repo, "sales", "reports:view")
	user := testutil.NewTestUser(t, repo, "carol@example.com", "passw0rd!")

	testutil.GrantRole(t, repo, user.ID, support.ID)
	testutil.GrantRole(t, repo, user.ID, sales.ID)

	roles, err := repo.GetRolesForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, "sales", roles[0].Name)
}

func TestSetUserActive(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "dave@example.com", "passw0rd!")

	require.NoError(t, repo.SetUserActive(ctx, user.ID, false))
	got, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.Active())

	require.NoError(t, repo.SetUserActive(ctx, user.ID, true))
	got, err = repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.Active())
}

func TestMarkEmailVerifiedOnce(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "erin@example.com", "passw0rd!")

	first := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.MarkEmailVerified(ctx, user.ID, first))

	// The second stamp must not move the timestamp.
	require.NoError(t, repo.MarkEmailVerified(ctx, user.ID, first.Add(time.Hour)))

	got, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, got.Verified())
	assert.True(t, got.EmailVerifiedAt.Time.Equal(first))
}
