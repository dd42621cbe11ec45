// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orbitours/backoffice/internal/repository"
)

// PermissionHandlers exposes the permission catalog. Permissions are seeded
// reference data; there is no create or delete surface.
type PermissionHandlers struct {
	repo *repository.Repository
}

// NewPermissions creates a new PermissionHandlers instance.
func NewPermissions(repo *repository.Repository) *PermissionHandlers {
	return &PermissionHandlers{repo: repo}
}

// List returns the full permission catalog.
func (h *PermissionHandlers) List(c echo.Context) error {
	perms, err := h.repo.ListPermissions(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
	}
	return c.JSON(http.StatusOK, map[string]any{"permissions": perms})
}
