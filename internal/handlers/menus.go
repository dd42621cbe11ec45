// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orbitours/backoffice/internal/models"
	"github.com/orbitours/backoffice/internal/repository"
	"github.com/orbitours/backoffice/internal/services/authz"
)

// MenuHandlers serves the navigation sidebar.
type MenuHandlers struct {
	repo *repository.Repository
}

// NewMenus creates a new MenuHandlers instance.
func NewMenus(repo *repository.Repository) *MenuHandlers {
	return &MenuHandlers{repo: repo}
}

// List returns the menu entries visible to the caller. Entries with no
// permission requirement are visible to every authenticated user; the rest
// are filtered against the caller's effective permission set.
func (h *MenuHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()
	user := authz.UserFrom(ctx)
	resolver := authz.ResolverFrom(ctx)
	if user == nil || resolver == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
	}

	items, err := h.repo.ListMenuItems(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
	}

	set, err := resolver.Resolve(ctx, user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
	}

	visible := make([]models.MenuItem, 0, len(items))
	for _, item := range items {
		if item.Permission.Valid && !set.Contains(item.Permission.String) {
			continue
		}
		visible = append(visible, item)
	}

	return c.JSON(http.StatusOK, map[string]any{"items": visible})
}
