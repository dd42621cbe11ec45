// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

package authz

// Core console permissions. Names follow the "resource:action" convention;
// the set is seeded once and extended only through new seed data.
const (
	PermUsersView = "users:view"
	PermUsersEdit = "users:edit"

	PermRolesView = "roles:view"
	PermRolesEdit = "roles:edit"

	PermPermissionsView = "permissions:view"

	PermMenusView = "menus:view"
	PermMenusEdit = "menus:edit"

	PermHistoryView = "history:view"

	PermReportsView = "reports:view"
)

// CoreScopes lists all permissions the console itself depends on.
func CoreScopes() []string {
	return []string{
		PermUsersView,
		PermUsersEdit,
		PermRolesView,
		PermRolesEdit,
		PermPermissionsView,
		PermMenusView,
		PermMenusEdit,
		PermHistoryView,
		PermReportsView,
	}
}
