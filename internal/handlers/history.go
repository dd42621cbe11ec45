// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/orbitours/backoffice/internal/repository"
)

// HistoryHandlers serves the login history audit trail.
type HistoryHandlers struct {
	repo *repository.Repository
}

// NewHistory creates a new HistoryHandlers instance.
func NewHistory(repo *repository.Repository) *HistoryHandlers {
	return &HistoryHandlers{repo: repo}
}

// ListForUser returns a page of login attempts for one user, newest first.
func (h *HistoryHandlers) ListForUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}

	ctx := c.Request().Context()
	rows, err := h.repo.ListLoginHistory(ctx, id, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
	}
	total, err := h.repo.CountLoginHistory(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"entries": rows,
		"total":   total,
	})
}
