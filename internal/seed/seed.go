// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

// Package seed loads reference data (permissions, roles, menu entries) and
// the bootstrap admin account at startup. Seeding is idempotent: existing
// rows are left alone, so it runs on every start.
package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/orbitours/backoffice/internal/config"
	"github.com/orbitours/backoffice/internal/models"
	"github.com/orbitours/backoffice/internal/repository"
	"github.com/orbitours/backoffice/internal/services/authz"
	"github.com/orbitours/backoffice/internal/services/password"
	"github.com/orbitours/backoffice/internal/services/token"
)

// Data is the TOML seed file layout.
type Data struct {
	Permissions []PermissionSeed `toml:"permissions"`
	Roles       []RoleSeed       `toml:"roles"`
	Menus       []MenuSeed       `toml:"menus"`
}

type PermissionSeed struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
}

type RoleSeed struct {
	Name        string   `toml:"name"`
	Description string   `toml:"description"`
	Permissions []string `toml:"permissions"`
}

type MenuSeed struct { //nolint:govet // fieldalignment: readability over optimization
	Label      string `toml:"label"`
	Path       string `toml:"path"`
	Icon       string `toml:"icon"`
	Permission string `toml:"permission"`
	SortOrder  int64  `toml:"sort_order"`
}

// Apply seeds the database. The core permission catalog and the admin role
// always exist; a seed file adds domain permissions, roles and menu entries
// on top. When admin credentials are configured, the admin account is
// created and linked to the admin role.
func Apply(ctx context.Context, repo *repository.Repository, cfg *config.AuthConfig) error {
	data := defaultData()

	if cfg.SeedFile != "" {
		extra, err := loadFile(cfg.SeedFile)
		if err != nil {
			return fmt.Errorf("loading seed file: %w", err)
		}
		data.Permissions = append(data.Permissions, extra.Permissions...)
		data.Roles = append(data.Roles, extra.Roles...)
		data.Menus = append(data.Menus, extra.Menus...)
	}

	if err := applyPermissions(ctx, repo, data.Permissions); err != nil {
		return err
	}
	if err := applyRoles(ctx, repo, data.Roles); err != nil {
		return err
	}
	if err := applyMenus(ctx, repo, data.Menus); err != nil {
		return err
	}
	return ensureAdmin(ctx, repo, cfg)
}

func loadFile(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data Data
	if err := toml.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// defaultData is the seed every installation gets: the core permission
// catalog, the admin role and the standard sidebar.
func defaultData() *Data {
	perms := make([]PermissionSeed, 0, len(authz.CoreScopes()))
	for _, name := range authz.CoreScopes() {
		perms = append(perms, PermissionSeed{Name: name})
	}

	return &Data{
		Permissions: perms,
		Roles: []RoleSeed{
			{
				Name:        models.AdminRoleName,
				Description: "Full access to the console",
				Permissions: authz.CoreScopes(),
			},
		},
		Menus: []MenuSeed{
			{Label: "Dashboard", Path: "/", Icon: "home", SortOrder: 10},
			{Label: "Users", Path: "/users", Icon: "users", Permission: authz.PermUsersView, SortOrder: 20},
			{Label: "Roles", Path: "/roles", Icon: "shield", Permission: authz.PermRolesView, SortOrder: 30},
			{Label: "Permissions", Path: "/permissions", Icon: "key", Permission: authz.PermPermissionsView, SortOrder: 40},
			{Label: "Login History", Path: "/history", Icon: "clock", Permission: authz.PermHistoryView, SortOrder: 50},
		},
	}
}

func applyPermissions(ctx context.Context, repo *repository.Repository, perms []PermissionSeed) error {
	for _, p := range perms {
		if err := repo.UpsertPermission(ctx, p.Name, p.Description); err != nil {
			return fmt.Errorf("seeding permission %q: %w", p.Name, err)
		}
	}
	return nil
}

// applyRoles creates roles that do not exist yet. Existing roles keep their
// permission bundle; seeding never overwrites admin edits.
func applyRoles(ctx context.Context, repo *repository.Repository, roles []RoleSeed) error {
	for _, r := range roles {
		if _, err := repo.GetRoleByName(ctx, r.Name); err == nil {
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("looking up role %q: %w", r.Name, err)
		}

		permIDs := make([]int64, 0, len(r.Permissions))
		for _, name := range r.Permissions {
			perm, err := repo.GetPermissionByName(ctx, name)
			if err != nil {
				return fmt.Errorf("role %q references unknown permission %q: %w", r.Name, name, err)
			}
			permIDs = append(permIDs, perm.ID)
		}

		role := &models.Role{Name: r.Name, Description: r.Description}
		if err := repo.CreateRole(ctx, role, permIDs); err != nil {
			return fmt.Errorf("seeding role %q: %w", r.Name, err)
		}
		slog.Info("seeded role", "name", r.Name, "permissions", len(permIDs))
	}
	return nil
}

func applyMenus(ctx context.Context, repo *repository.Repository, menus []MenuSeed) error {
	for _, m := range menus {
		item := &models.MenuItem{
			Label:     m.Label,
			Path:      m.Path,
			Icon:      m.Icon,
			SortOrder: m.SortOrder,
		}
		if m.Permission != "" {
			item.Permission = sql.NullString{String: m.Permission, Valid: true}
		}
		if err := repo.UpsertMenuItem(ctx, item); err != nil {
			return fmt.Errorf("seeding menu item %q: %w", m.Path, err)
		}
	}
	return nil
}

// ensureAdmin creates the bootstrap admin account when credentials are
// configured and no account with that email exists.
func ensureAdmin(ctx context.Context, repo *repository.Repository, cfg *config.AuthConfig) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	if _, err := repo.GetUserByEmail(ctx, cfg.AdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("looking up admin account: %w", err)
	}

	hash, err := password.Hash(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	user := &models.User{
		UUID:     token.NewUUID(),
		Email:    cfg.AdminEmail,
		IsActive: 1,
	}
	user.PasswordHash.String = hash
	user.PasswordHash.Valid = true

	if err := repo.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("creating admin account: %w", err)
	}

	adminRole, err := repo.GetRoleByName(ctx, models.AdminRoleName)
	if err != nil {
		return fmt.Errorf("looking up admin role: %w", err)
	}
	if err := repo.SetUserRoles(ctx, user.ID, []int64{adminRole.ID}); err != nil {
		return fmt.Errorf("assigning admin role: %w", err)
	}

	slog.Info("seeded admin account", "email", cfg.AdminEmail)
	return nil
}
