// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orbitours/backoffice/internal/models"
	"github.com/orbitours/backoffice/internal/repository"
)

// RoleHandlers contains the role administration handlers.
type RoleHandlers struct {
	repo *repository.Repository
}

// NewRoles creates a new RoleHandlers instance.
func NewRoles(repo *repository.Repository) *RoleHandlers {
	return &RoleHandlers{repo: repo}
}

// List returns all roles with their permission bundles.
func (h *RoleHandlers) List(c echo.Context) error {
	roles, err := h.repo.ListRoles(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
	}
	return c.JSON(http.StatusOK, map[string]any{"roles": roles})
}

// RoleRequest is the request body for creating or updating a role.
type RoleRequest struct {
	Name          string  `json:"name" validate:"required"`
	Description   string  `json:"description"`
	PermissionIDs []int64 `json:"permission_ids"`
}

// Create adds a role with its permission bundle.
func (h *RoleHandlers) Create(c echo.Context) error {
	var req RoleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}

	role := &models.Role{Name: req.Name, Description: req.Description}
	if err := h.repo.CreateRole(c.Request().Context(), role, req.PermissionIDs); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, map[string]any{"role": role})
}

// Update renames a role and replaces its permission bundle.
func (h *RoleHandlers) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}

	var req RoleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}

	err = h.repo.UpdateRole(c.Request().Context(), id, req.Name, req.Description, req.PermissionIDs)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "role not found"})
	case errors.Is(err, repository.ErrAdminRoleImmutable):
		return c.JSON(http.StatusConflict, map[string]string{"error": "the admin role cannot be renamed"})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Delete removes a role. Memberships cascade; the admin role is refused.
func (h *RoleHandlers) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}

	err = h.repo.DeleteRole(c.Request().Context(), id)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "role not found"})
	case errors.Is(err, repository.ErrAdminRoleImmutable):
		return c.JSON(http.StatusConflict, map[string]string{"error": "the admin role cannot be deleted"})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
