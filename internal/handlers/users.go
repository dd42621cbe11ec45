// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/orbitours/backoffice/internal/models"
	"github.com/orbitours/backoffice/internal/repository"
	"github.com/orbitours/backoffice/internal/services/password"
	"github.com/orbitours/backoffice/internal/services/token"
)

// UserHandlers contains the user administration handlers.
type UserHandlers struct {
	repo *repository.Repository
}

// NewUsers creates a new UserHandlers instance.
func NewUsers(repo *repository.Repository) *UserHandlers {
	return &UserHandlers{repo: repo}
}

// List returns all users.
func (h *UserHandlers) List(c echo.Context) error {
	users, err := h.repo.ListUsers(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
	}
	return c.JSON(http.StatusOK, map[string]any{"users": users})
}

// Get returns one user with their role memberships.
func (h *UserHandlers) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}

	ctx := c.Request().Context()
	user, err := h.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
	}

	roles, err := h.repo.GetRolesForUser(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
	}

	return c.JSON(http.StatusOK, map[string]any{"user": user, "roles": roles})
}

// CreateUserRequest is the request body for creating a user. Password is
// optional: without one the account is a pending invite that cannot log in
// until a password is set through the reset flow.
type CreateUserRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"omitempty,min=8"`
	RoleIDs  []int64 `json:"role_ids"`
}

// Create adds a user account.
func (h *UserHandlers) Create(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid email or password"})
	}

	ctx := c.Request().Context()
	if _, err := h.repo.GetUserByEmail(ctx, req.Email); err == nil {
		return c.JSON(http.StatusConflict, map[string]string{"error": "email already registered"})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
	}

	user := &models.User{
		UUID:     token.NewUUID(),
		Email:    req.Email,
		IsActive: 1,
	}
	if req.Password != "" {
		hash, err := password.Hash(req.Password)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid password"})
		}
		user.PasswordHash.String = hash
		user.PasswordHash.Valid = true
	}

	if err := h.repo.CreateUser(ctx, user); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
	}
	if len(req.RoleIDs) > 0 {
		if err := h.repo.SetUserRoles(ctx, user.ID, req.RoleIDs); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
		}
	}

	return c.JSON(http.StatusCreated, map[string]any{"user": user})
}

// UpdateUserRequest is the request body for updating a user.
type UpdateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	IsActive bool   `json:"is_active"`
}

// Update changes a user's email and active flag.
func (h *UserHandlers) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid email"})
	}

	ctx := c.Request().Context()
	user, err := h.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
	}

	user.Email = req.Email
	user.IsActive = 0
	if req.IsActive {
		user.IsActive = 1
	}
	if err := h.repo.UpdateUser(ctx, user); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
	}

	// Deactivation ends the user's sessions immediately, not at next expiry.
	if !req.IsActive {
		if err := h.repo.DeleteUserSessions(ctx, id); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
		}
	}

	return c.JSON(http.StatusOK, map[string]any{"user": user})
}

// SetRolesRequest is the request body for replacing role memberships.
type SetRolesRequest struct {
	RoleIDs []int64 `json:"role_ids"`
}

// SetRoles replaces a user's role memberships. The change applies to the
// user's next request; no re-login is needed.
func (h *UserHandlers) SetRoles(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}

	var req SetRolesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	ctx := c.Request().Context()
	if _, err := h.repo.GetUserByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
	}

	if err := h.repo.SetUserRoles(ctx, id, req.RoleIDs); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
	}

	roles, err := h.repo.GetRolesForUser(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
	}
	return c.JSON(http.StatusOK, map[string]any{"roles": roles})
}

func pathID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
