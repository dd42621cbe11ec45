// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

package authz

import (
	"context"

	"github.com/orbitours/backoffice/internal/models"
)

type userKey struct{}
type resolverKey struct{}

// WithUser stores the authenticated user in the context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFrom returns the authenticated user, or nil for anonymous requests.
func UserFrom(ctx context.Context) *models.User {
	if user, ok := ctx.Value(userKey{}).(*models.User); ok {
		return user
	}
	return nil
}

// WithResolver stores the request-scoped resolver in the context so
// handlers reuse the same memo the route guard populated.
func WithResolver(ctx context.Context, r *Resolver) context.Context {
	return context.WithValue(ctx, resolverKey{}, r)
}

// ResolverFrom returns the request-scoped resolver, or nil.
func ResolverFrom(ctx context.Context) *Resolver {
	if r, ok := ctx.Value(resolverKey{}).(*Resolver); ok {
		return r
	}
	return nil
}
