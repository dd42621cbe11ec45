// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

package models

import "database/sql"

// MenuItem is a sidebar entry. Items with a permission set are only shown
// to users whose effective permission set contains it.
type MenuItem struct { //nolint:govet // fieldalignment: readability over optimization
	ID         int64          `db:"id" json:"id"`
	Label      string         `db:"label" json:"label"`
	Path       string         `db:"path" json:"path"`
	Icon       string         `db:"icon" json:"icon"`
	Permission sql.NullString `db:"permission" json:"permission"`
	SortOrder  int64          `db:"sort_order" json:"sort_order"`
	ParentID   sql.NullInt64  `db:"parent_id" json:"parent_id"`
}
