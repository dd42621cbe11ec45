// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orbitours/backoffice/internal/services/auth"
	"github.com/orbitours/backoffice/internal/services/authz"
	"github.com/orbitours/backoffice/internal/services/password"
	"github.com/orbitours/backoffice/internal/services/session"
)

// AuthHandlers contains handlers for the authentication flows.
type AuthHandlers struct {
	auth     *auth.Service
	sessions *session.Manager
}

// NewAuth creates a new AuthHandlers instance.
func NewAuth(svc *auth.Service, sessions *session.Manager) *AuthHandlers {
	return &AuthHandlers{auth: svc, sessions: sessions}
}

// RegisterRequest is the request body for registration.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Register creates a new account and mails a verification link.
func (h *AuthHandlers) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid email or password"})
	}

	user, err := h.auth.Register(c.Request().Context(), req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrUserExists):
		return c.JSON(http.StatusConflict, map[string]string{"error": "email already registered"})
	case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, password.ErrEmptyPassword):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid email or password"})
	case errors.Is(err, auth.ErrRegistrationClosed):
		return c.JSON(http.StatusForbidden, map[string]string{"error": "registration is closed"})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "registration failed"})
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"status": "ok",
		"user":   user,
	})
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates and sets the session cookie. Unknown email and wrong
// password produce the same response.
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}

	user, err := h.auth.Login(c.Request().Context(), req.Email, req.Password, auth.Attempt{
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrInactiveAccount) {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "login failed"})
	}

	cookie, err := h.sessions.Issue(c.Request().Context(), user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create session"})
	}
	c.SetCookie(cookie)

	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"user":   user,
	})
}

// Logout revokes the session server-side and clears the cookie.
func (h *AuthHandlers) Logout(c echo.Context) error {
	cookie, err := h.sessions.Revoke(c.Request().Context(), c.Request())
	if err != nil {
		// The cookie is cleared regardless; the row expires on its own.
		cookie = h.sessions.Clear()
	}
	c.SetCookie(cookie)
	return c.Redirect(http.StatusSeeOther, "/")
}

// VerifyEmail consumes the token from the mailed link.
func (h *AuthHandlers) VerifyEmail(c echo.Context) error {
	tok := c.QueryParam("token")
	if tok == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid or expired link"})
	}

	if err := h.auth.VerifyEmail(c.Request().Context(), tok); err != nil {
		if errors.Is(err, auth.ErrTokenInvalid) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid or expired link"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "verification failed"})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ForgotPasswordRequest is the request body for requesting a reset link.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword requests a reset link. The response never discloses
// whether the email exists.
func (h *AuthHandlers) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}

	if err := h.auth.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "request failed"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ResetPasswordRequest is the request body for performing a reset.
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// ResetPassword consumes a reset token and sets the new password.
func (h *AuthHandlers) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if err := h.auth.ResetPassword(c.Request().Context(), req.Token, req.Password); err != nil {
		if errors.Is(err, auth.ErrTokenInvalid) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid or expired link"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "reset failed"})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ChangePasswordRequest is the request body for an authenticated change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// ChangePassword updates the caller's password.
func (h *AuthHandlers) ChangePassword(c echo.Context) error {
	user := authz.UserFrom(c.Request().Context())
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if err := h.auth.ChangePassword(c.Request().Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "password change failed"})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
