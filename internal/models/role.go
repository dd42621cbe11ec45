// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

package models

// AdminRoleName is the distinguished role whose name may never change.
const AdminRoleName = "admin"

// Role is a named bundle of permissions.
type Role struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
}

// Permission is a named capability of the form "resource:action".
// Effectively immutable reference data seeded once.
type Permission struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
}

// RoleWithPermissions pairs a role with its current permission bundle.
type RoleWithPermissions struct {
	Role
	Permissions []Permission `json:"permissions"`
}
