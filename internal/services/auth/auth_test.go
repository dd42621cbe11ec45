// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitours/backoffice/internal/config"
	"github.com/orbitours/backoffice/internal/models"
	"github.com/orbitours/backoffice/internal/repository"
	"github.com/orbitours/backoffice/internal/services/auth"
	"github.com/orbitours/backoffice/internal/services/history"
	"github.com/orbitours/backoffice/internal/testutil"
)

// captureSender records outgoing tokens instead of sending mail.
type captureSender struct {
	verifyTokens []string
	resetTokens  []string
}

func (s *captureSender) SendVerification(_ context.Context, _, token string) error {
	s.verifyTokens = append(s.verifyTokens, token)
	return nil
}

func (s *captureSender) SendPasswordReset(_ context.Context, _, token string) error {
	s.resetTokens = append(s.resetTokens, token)
	return nil
}

func newService(t *testing.T, registrationOpen bool) (*auth.Service, *repository.Repository, *captureSender) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	sender := &captureSender{}
	svc := auth.NewService(repo,
		&config.AuthConfig{RegistrationOpen: registrationOpen},
		sender,
		history.NewRecorder(repo),
	)
	return svc, repo, sender
}

var attempt = auth.Attempt{IP: "203.0.113.7", UserAgent: "test-agent"}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, sender := newService(t, true)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice@example.com", "passw0rd!")
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.Len(t, sender.verifyTokens, 1)

	got, err := svc.Login(ctx, "alice@example.com", "passw0rd!", attempt)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _, _ := newService(t, true)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "passw0rd!")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "alice@example.com", "other-pass!")
	assert.ErrorIs(t, err, auth.ErrUserExists)
}

func TestRegisterInvalidEmail(t *testing.T) {
	svc, _, _ := newService(t, true)
	_, err := svc.Register(context.Background(), "not-an-email", "passw0rd!")
	assert.ErrorIs(t, err, auth.ErrInvalidEmail)
}

func TestRegisterClosed(t *testing.T) {
	svc, _, _ := newService(t, false)
	_, err := svc.Register(context.Background(), "alice@example.com", "passw0rd!")
	assert.ErrorIs(t, err, auth.ErrRegistrationClosed)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _ := newService(t, true)
	_, err := svc.Login(context.Background(), "nobody@example.com", "passw0rd!", attempt)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLoginWrongPasswordRecordsHistory(t *testing.T) {
	svc, repo, _ := newService(t, true)
	ctx := context.Background()

	user, err := svc.Register(ctx, "bob@example.com", "passw0rd!")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "bob@example.com", "wrong-pass", attempt)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	rows, err := repo.ListLoginHistory(ctx, user.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.LoginStatusFailed, rows[0].Status)
	assert.Equal(t, auth.ReasonInvalidPassword, rows[0].Reason.String)
	assert.Equal(t, "203.0.113.7", rows[0].IP.String)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, repo, _ := newService(t, true)
	ctx := context.Background()

	user, err := svc.Register(ctx, "carol@example.com", "passw0rd!")
	require.NoError(t, err)
	require.NoError(t, repo.SetUserActive(ctx, user.ID, false))

	_, err = svc.Login(ctx, "carol@example.com", "passw0rd!", attempt)
	assert.ErrorIs(t, err, auth.ErrInactiveAccount)

	rows, err := repo.ListLoginHistory(ctx, user.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, auth.ReasonInactive, rows[0].Reason.String)
}

func TestLoginPendingInvite(t *testing.T) {
	svc, repo, _ := newService(t, true)
	ctx := context.Background()

	// Invited account: row exists but no password hash yet.
	user := testutil.NewTestUser(t, repo, "invited@example.com", "")

	_, err := svc.Login(ctx, "invited@example.com", "anything", attempt)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	rows, err := repo.ListLoginHistory(ctx, user.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, auth.ReasonNoPassword, rows[0].Reason.String)
}

func TestLoginSuccessRecordsHistory(t *testing.T) {
	svc, repo, _ := newService(t, true)
	ctx := context.Background()

	user, err := svc.Register(ctx, "dave@example.com", "passw0rd!")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "dave@example.com", "passw0rd!", attempt)
	require.NoError(t, err)

	rows, err := repo.ListLoginHistory(ctx, user.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.LoginStatusSuccess, rows[0].Status)
	assert.False(t, rows[0].Reason.Valid)
}

func TestVerifyEmailFlow(t *testing.T) {
	svc, repo, sender := newService(t, true)
	ctx := context.Background()

	user, err := svc.Register(ctx, "erin@example.com", "passw0rd!")
	require.NoError(t, err)
	require.Len(t, sender.verifyTokens, 1)

	require.NoError(t, svc.VerifyEmail(ctx, sender.verifyTokens[0]))

	got, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.Verified())

	// Replaying the link fails.
	err = svc.VerifyEmail(ctx, sender.verifyTokens[0])
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestVerifyEmailUnknownToken(t *testing.T) {
	svc, _, _ := newService(t, true)
	err := svc.VerifyEmail(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, _, sender := newService(t, true)
	ctx := context.Background()

	_, err := svc.Register(ctx, "frank@example.com", "old-passw0rd")
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(ctx, "frank@example.com"))
	require.Len(t, sender.resetTokens, 1)

	require.NoError(t, svc.ResetPassword(ctx, sender.resetTokens[0], "new-passw0rd"))

	_, err = svc.Login(ctx, "frank@example.com", "old-passw0rd", attempt)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "frank@example.com", "new-passw0rd", attempt)
	require.NoError(t, err)

	// Token is single use.
	err = svc.ResetPassword(ctx, sender.resetTokens[0], "third-passw0rd")
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	svc, _, sender := newService(t, true)

	// No account, no mail, no error: the endpoint is not an email oracle.
	require.NoError(t, svc.RequestPasswordReset(context.Background(), "ghost@example.com"))
	assert.Empty(t, sender.resetTokens)
}

func TestChangePassword(t *testing.T) {
	svc, repo, _ := newService(t, true)
	ctx := context.Background()

	user, err := svc.Register(ctx, "grace@example.com", "old-passw0rd")
	require.NoError(t, err)

	require.NoError(t, repo.CreateSession(ctx, "sess-grace", user.ID, futureExpiry()))

	err = svc.ChangePassword(ctx, user.ID, "wrong-current", "new-passw0rd")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "old-passw0rd", "new-passw0rd"))

	_, err = svc.Login(ctx, "grace@example.com", "new-passw0rd", attempt)
	require.NoError(t, err)

	// The change killed existing sessions.
	_, err = repo.GetActiveSession(ctx, "sess-grace")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func futureExpiry() time.Time {
	return time.Now().UTC().Add(time.Hour)
}
