// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"errors"

	"github.com/vinovest/sqlx"

	"github.com/orbitours/backoffice/internal/models"
)

// ErrAdminRoleImmutable is returned when an update would rename the admin role.
var ErrAdminRoleImmutable = errors.New("admin role cannot be renamed")

// GetRoleByID retrieves a role by ID.
func (r *Repository) GetRoleByID(ctx context.Context, id int64) (*models.Role, error) {
	var role models.Role
	if err := r.db.GetContext(ctx, &role, `SELECT * FROM roles WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &role, nil
}

// GetRoleByName retrieves a role by its unique name.
func (r *Repository) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := r.db.GetContext(ctx, &role, `SELECT * FROM roles WHERE name = ?`, name); err != nil {
		return nil, wrapError(err)
	}
	return &role, nil
}

// ListRoles returns all roles with their permission bundles.
func (r *Repository) ListRoles(ctx context.Context) ([]models.RoleWithPermissions, error) {
	var roles []models.Role
	if err := r.db.SelectContext(ctx, &roles, `SELECT * FROM roles ORDER BY name`); err != nil {
		return nil, err
	}

	out := make([]models.RoleWithPermissions, 0, len(roles))
	for _, role := range roles {
		perms, err := r.GetPermissionsForRole(ctx, role.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, models.RoleWithPermissions{Role: role, Permissions: perms})
	}
	return out, nil
}

// GetPermissionsForRole returns the permission bundle of one role.
func (r *Repository) GetPermissionsForRole(ctx context.Context, roleID int64) ([]models.Permission, error) {
	var perms []models.Permission
	err := r.db.SelectContext(ctx, &perms,
		`SELECT p.* FROM permissions p
		 JOIN role_permissions rp ON rp.permission_id = p.id
		 WHERE rp.role_id = ?
		 ORDER BY p.name`, roleID)
	if err != nil {
		return nil, err
	}
	return perms, nil
}

// CreateRole inserts a role and its permission bundle in one transaction.
func (r *Repository) CreateRole(ctx context.Context, role *models.Role, permissionIDs []int64) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO roles (name, description) VALUES (?, ?)`, role.Name, role.Description)
		if err != nil {
			return err
		}
		if role.ID, err = res.LastInsertId(); err != nil {
			return err
		}
		return insertRolePermissions(ctx, tx, role.ID, permissionIDs)
	})
}

// UpdateRole renames a role and replaces its permission bundle atomically.
// The permission sync is delete-all-then-reinsert; a concurrent reader sees
// either the fully-old or fully-new bundle, never a partial one. Renaming
// the admin role is refused.
func (r *Repository) UpdateRole(ctx context.Context, id int64, name, description string, permissionIDs []int64) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		var current models.Role
		if err := tx.GetContext(ctx, &current, `SELECT * FROM roles WHERE id = ?`, id); err != nil {
			return wrapError(err)
		}
		if current.Name == models.AdminRoleName && name != models.AdminRoleName {
			return ErrAdminRoleImmutable
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE roles SET name = ?, description = ? WHERE id = ?`, name, description, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM role_permissions WHERE role_id = ?`, id); err != nil {
			return err
		}
		return insertRolePermissions(ctx, tx, id, permissionIDs)
	})
}

// DeleteRole removes a role. Memberships and permission links cascade.
func (r *Repository) DeleteRole(ctx context.Context, id int64) error {
	role, err := r.GetRoleByID(ctx, id)
	if err != nil {
		return err
	}
	if role.Name == models.AdminRoleName {
		return ErrAdminRoleImmutable
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM roles WHERE id = ?`, id)
	return err
}

func insertRolePermissions(ctx context.Context, tx *sqlx.Tx, roleID int64, permissionIDs []int64) error {
	for _, permID := range permissionIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO role_permissions (role_id, permission_id) VALUES (?, ?)`, roleID, permID); err != nil {
			return err
		}
	}
	return nil
}
