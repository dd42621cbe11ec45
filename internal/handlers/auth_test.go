// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitours/backoffice/internal/config"
	"github.com/orbitours/backoffice/internal/handlers"
	"github.com/orbitours/backoffice/internal/repository"
	"github.com/orbitours/backoffice/internal/services/auth"
	"github.com/orbitours/backoffice/internal/services/history"
	"github.com/orbitours/backoffice/internal/services/session"
	"github.com/orbitours/backoffice/internal/testutil"
)

type testValidator struct {
	validate *validator.Validate
}

func (v *testValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

type nullSender struct{}

func (nullSender) SendVerification(context.Context, string, string) error  { return nil }
func (nullSender) SendPasswordReset(context.Context, string, string) error { return nil }

func newAuthEcho(t *testing.T) (*echo.Echo, *repository.Repository, *session.Manager) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)

	sessions, err := session.NewManager(&config.SessionConfig{
		CookieName: "_session",
		MaxAge:     3600,
	}, false, repo)
	require.NoError(t, err)

	svc := auth.NewService(repo,
		&config.AuthConfig{RegistrationOpen: true},
		nullSender{},
		history.NewRecorder(repo),
	)

	e := echo.New()
	e.Validator = &testValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
	h := handlers.NewAuth(svc, sessions)
	e.POST("/login", h.Login)
	e.POST("/register", h.Register)
	e.POST("/logout", h.Logout)
	e.POST("/forgot-password", h.ForgotPassword)
	e.POST("/reset-password", h.ResetPassword)
	e.GET("/verify-email", h.VerifyEmail)

	return e, repo, sessions
}

func postJSON(e *echo.Echo, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRegisterHandler(t *testing.T) {
	e, repo, _ := newAuthEcho(t)

	rec := postJSON(e, "/register", `{"email":"alice@example.com","password":"passw0rd!"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	user, err := repo.GetUserByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.True(t, user.Active())

	// Duplicate registration conflicts.
	rec = postJSON(e, "/register", `{"email":"alice@example.com","password":"passw0rd!"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterHandlerRejectsShortPassword(t *testing.T) {
	e, _, _ := newAuthEcho(t)
	rec := postJSON(e, "/register", `{"email":"bob@example.com","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginHandlerSetsSessionCookie(t *testing.T) {
	e, _, _ := newAuthEcho(t)
	postJSON(e, "/register", `{"email":"carol@example.com","password":"passw0rd!"}`)

	rec := postJSON(e, "/login", `{"email":"carol@example.com","password":"passw0rd!"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestLoginHandlerGenericFailure(t *testing.T) {
	e, repo, _ := newAuthEcho(t)
	postJSON(e, "/register", `{"email":"dave@example.com","password":"passw0rd!"}`)

	// Unknown email, wrong password and deactivated account all read the same.
	wrongEmail := postJSON(e, "/login", `{"email":"ghost@example.com","password":"passw0rd!"}`)
	wrongPass := postJSON(e, "/login", `{"email":"dave@example.com","password":"nope-nope!"}`)

	user, err := repo.GetUserByEmail(context.Background(), "dave@example.com")
	require.NoError(t, err)
	require.NoError(t, repo.SetUserActive(context.Background(), user.ID, false))
	inactive := postJSON(e, "/login", `{"email":"dave@example.com","password":"passw0rd!"}`)

	for _, rec := range []*httptest.ResponseRecorder{wrongEmail, wrongPass, inactive} {
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"invalid credentials"}`, rec.Body.String())
	}
}

func TestLogoutHandlerRevokesSession(t *testing.T) {
	e, _, sessions := newAuthEcho(t)
	postJSON(e, "/register", `{"email":"erin@example.com","password":"passw0rd!"}`)

	loginRec := postJSON(e, "/login", `{"email":"erin@example.com","password":"passw0rd!"}`)
	require.Equal(t, http.StatusOK, loginRec.Code)
	cookie := loginRec.Result().Cookies()[0]

	rec := postJSON(e, "/logout", "", cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	user, err := sessions.Resolve(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestForgotPasswordNeverDiscloses(t *testing.T) {
	e, _, _ := newAuthEcho(t)
	postJSON(e, "/register", `{"email":"frank@example.com","password":"passw0rd!"}`)

	known := postJSON(e, "/forgot-password", `{"email":"frank@example.com"}`)
	unknown := postJSON(e, "/forgot-password", `{"email":"ghost@example.com"}`)

	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())
}

func TestVerifyEmailHandlerInvalidToken(t *testing.T) {
	e, _, _ := newAuthEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/verify-email?token=bogus", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/verify-email", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResetPasswordHandlerInvalidToken(t *testing.T) {
	e, _, _ := newAuthEcho(t)
	rec := postJSON(e, "/reset-password", `{"token":"bogus","password":"new-passw0rd"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
