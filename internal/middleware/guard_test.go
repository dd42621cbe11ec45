// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitours/backoffice/internal/config"
	"github.com/orbitours/backoffice/internal/middleware"
	"github.com/orbitours/backoffice/internal/repository"
	"github.com/orbitours/backoffice/internal/services/authz"
	"github.com/orbitours/backoffice/internal/services/session"
	"github.com/orbitours/backoffice/internal/testutil"
)

func testRoutes(policy middleware.Policy) middleware.Routes {
	return middleware.Routes{
		Public:   []string{"/health", "/static", "/unauthorized"},
		AuthOnly: []string{"/login"},
		Protected: map[string]string{
			"/":      "",
			"/users": authz.PermUsersView,
			"/roles": authz.PermRolesView,
		},
		DefaultPolicy: policy,
	}
}

func newGuardedEcho(t *testing.T, repo *repository.Repository, policy middleware.Policy) (*echo.Echo, *session.Manager) {
	t.Helper()

	sessions, err := session.NewManager(&config.SessionConfig{
		CookieName: "_session",
		MaxAge:     3600,
	}, false, repo)
	require.NoError(t, err)

	e := echo.New()
	guard := middleware.NewGuard(testRoutes(policy), sessions, repo)
	e.Use(guard.Middleware())

	ok := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	e.GET("/health", ok)
	e.GET("/login", ok)
	e.GET("/", ok)
	e.GET("/users", ok)
	e.GET("/users/:id", ok)
	e.GET("/roles", ok)
	e.GET("/somewhere-else", ok)
	e.GET("/whoami", func(c echo.Context) error {
		user := authz.UserFrom(c.Request().Context())
		if user == nil {
			return c.String(http.StatusOK, "anonymous")
		}
		return c.String(http.StatusOK, user.Email)
	})

	return e, sessions
}

func get(e *echo.Echo, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, repo *repository.Repository, sessions *session.Manager, email string, perms ...string) *http.Cookie {
	t.Helper()
	user := testutil.NewTestUser(t, repo, email, "passw0rd!")
	if len(perms) > 0 {
		role := testutil.NewTestRole(t, repo, "role-for-"+email, perms...)
		testutil.GrantRole(t, repo, user.ID, role.ID)
	}
	cookie, err := sessions.Issue(context.Background(), user)
	require.NoError(t, err)
	return cookie
}

func TestPublicPathsSkipChecks(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	e, _ := newGuardedEcho(t, repo, middleware.PolicyAllow)

	rec := get(e, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectedPathAnonymousRedirectsToLogin(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	e, _ := newGuardedEcho(t, repo, middleware.PolicyAllow)

	rec := get(e, "/users", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
}

func TestProtectedPathWithoutPermission(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	e, sessions := newGuardedEcho(t, repo, middleware.PolicyAllow)
	cookie := login(t, repo, sessions, "viewer@example.com", authz.PermRolesView)

	rec := get(e, "/users", cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/unauthorized", rec.Header().Get(echo.HeaderLocation))
}

func TestProtectedPathWithPermission(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	e, sessions := newGuardedEcho(t, repo, middleware.PolicyAllow)
	cookie := login(t, repo, sessions, "admin@example.com", authz.PermUsersView)

	rec := get(e, "/users", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Prefix matching covers subpaths on segment boundaries.
	rec = get(e, "/users/42", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRootRequiresOnlyAuthentication(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	e, sessions := newGuardedEcho(t, repo, middleware.PolicyAllow)

	rec := get(e, "/", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	cookie := login(t, repo, sessions, "plain@example.com")
	rec = get(e, "/", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthOnlyBouncesAuthenticated(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	e, sessions := newGuardedEcho(t, repo, middleware.PolicyAllow)

	rec := get(e, "/login", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	cookie := login(t, repo, sessions, "back@example.com")
	rec = get(e, "/login", cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
}

func TestDefaultPolicyAllow(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	e, _ := newGuardedEcho(t, repo, middleware.PolicyAllow)

	rec := get(e, "/somewhere-else", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDefaultPolicyDeny(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	e, sessions := newGuardedEcho(t, repo, middleware.PolicyDeny)

	rec := get(e, "/somewhere-else", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))

	cookie := login(t, repo, sessions, "denied@example.com")
	rec = get(e, "/somewhere-else", cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/unauthorized", rec.Header().Get(echo.HeaderLocation))
}

func TestGuardAttachesUserToContext(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	e, sessions := newGuardedEcho(t, repo, middleware.PolicyAllow)

	rec := get(e, "/whoami", nil)
	assert.Equal(t, "anonymous", rec.Body.String())

	cookie := login(t, repo, sessions, "ctx@example.com")
	rec = get(e, "/whoami", cookie)
	assert.Equal(t, "ctx@example.com", rec.Body.String())
}

func TestDeactivatedUserDropsToAnonymous(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	e, sessions := newGuardedEcho(t, repo, middleware.PolicyAllow)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "gone@example.com", "passw0rd!")
	role := testutil.NewTestRole(t, repo, "full", authz.PermUsersView)
	testutil.GrantRole(t, repo, user.ID, role.ID)
	cookie, err := sessions.Issue(ctx, user)
	require.NoError(t, err)

	rec := get(e, "/users", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	// Deactivation takes effect on the very next request.
	require.NoError(t, repo.SetUserActive(ctx, user.ID, false))
	rec = get(e, "/users", cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
}
