// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"github.com/orbitours/backoffice/internal/models"
)

// ListMenuItems returns all menu entries in display order.
func (r *Repository) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := r.db.SelectContext(ctx, &items,
		`SELECT * FROM menu_items ORDER BY sort_order, id`)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// UpsertMenuItem inserts a menu entry if one with the same path does not
// exist yet. Used by the seeder.
func (r *Repository) UpsertMenuItem(ctx context.Context, item *models.MenuItem) error {
	var count int64
	if err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM menu_items WHERE path = ?`, item.Path); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO menu_items (label, path, icon, permission, sort_order, parent_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		item.Label, item.Path, item.Icon, item.Permission, item.SortOrder, item.ParentID)
	if err != nil {
		return err
	}
	item.ID, err = res.LastInsertId()
	return err
}
