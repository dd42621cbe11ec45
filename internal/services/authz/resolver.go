// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

// Package authz computes effective permission sets from role memberships.
package authz

import "context"

// Set is a collapsed set of permission names.
type Set map[string]struct{}

// Contains reports whether the set holds the given permission name.
func (s Set) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the permission names in the set, in no particular order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	return names
}

// PermissionSource is the read side the resolver consumes.
type PermissionSource interface {
	GetPermissionNamesForUser(ctx context.Context, userID int64) ([]string, error)
}

// Resolver computes a user's effective permissions: the additive union
// across all held roles. There is no deny or precedence.
//
// A Resolver is created per inbound request and memoizes results keyed by
// user id for that request only. It must never be shared across requests:
// a role edit made elsewhere becomes visible on the next request, and
// staleness is bounded to one request's duration.
type Resolver struct {
	source PermissionSource
	memo   map[int64]Set
}

// NewResolver returns a request-scoped resolver.
func NewResolver(source PermissionSource) *Resolver {
	return &Resolver{
		source: source,
		memo:   make(map[int64]Set),
	}
}

// Resolve returns the effective permission set for a user. An unknown or
// deleted user yields an empty set, not an error.
func (r *Resolver) Resolve(ctx context.Context, userID int64) (Set, error) {
	if cached, ok := r.memo[userID]; ok {
		return cached, nil
	}

	names, err := r.source.GetPermissionNamesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	set := make(Set, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}

	r.memo[userID] = set
	return set, nil
}

// Has reports whether the user's effective permission set contains name.
func (r *Resolver) Has(ctx context.Context, userID int64, name string) (bool, error) {
	set, err := r.Resolve(ctx, userID)
	if err != nil {
		return false, err
	}
	return set.Contains(name), nil
}
