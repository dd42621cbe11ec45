// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"github.com/orbitours/backoffice/internal/models"
)

// ListPermissions returns all permissions ordered by name.
func (r *Repository) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	var perms []models.Permission
	if err := r.db.SelectContext(ctx, &perms, `SELECT * FROM permissions ORDER BY name`); err != nil {
		return nil, err
	}
	return perms, nil
}

// GetPermissionByName retrieves a permission by its unique name.
func (r *Repository) GetPermissionByName(ctx context.Context, name string) (*models.Permission, error) {
	var perm models.Permission
	if err := r.db.GetContext(ctx, &perm, `SELECT * FROM permissions WHERE name = ?`, name); err != nil {
		return nil, wrapError(err)
	}
	return &perm, nil
}

// UpsertPermission inserts a permission if it does not exist yet. Used by
// the seeder; permission rows are reference data and never change after.
func (r *Repository) UpsertPermission(ctx context.Context, name, description string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO permissions (name, description) VALUES (?, ?)
		 ON CONFLICT (name) DO NOTHING`, name, description)
	return err
}
