// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

// Package handlers contains all HTTP handlers.
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orbitours/backoffice/internal/repository"
	"github.com/orbitours/backoffice/internal/services/authz"
)

// Handlers contains the basic page handlers.
type Handlers struct {
	repo *repository.Repository
}

// New creates a new Handlers instance.
func New(repo *repository.Repository) *Handlers {
	return &Handlers{repo: repo}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Home returns the dashboard entry point: the caller's identity and
// effective permissions.
func (h *Handlers) Home(c echo.Context) error {
	ctx := c.Request().Context()
	user := authz.UserFrom(ctx)
	if user == nil {
		return c.JSON(http.StatusOK, map[string]any{"authenticated": false})
	}

	perms := []string{}
	if resolver := authz.ResolverFrom(ctx); resolver != nil {
		set, err := resolver.Resolve(ctx, user.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
		}
		perms = set.Names()
	}

	return c.JSON(http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          user,
		"permissions":   perms,
	})
}

// Unauthorized is the dedicated page authenticated-but-forbidden requests
// land on, distinct from the login redirect for anonymous ones.
func (h *Handlers) Unauthorized(c echo.Context) error {
	return c.JSON(http.StatusForbidden, map[string]string{
		"error": "you do not have permission to access this page",
	})
}
