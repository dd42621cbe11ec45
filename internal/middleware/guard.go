// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

// Package middleware holds the route guard that gates every request
// against the session and the caller's effective permissions.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/orbitours/backoffice/internal/services/authz"
	"github.com/orbitours/backoffice/internal/services/session"
)

// Policy decides the fate of paths not listed in the route table.
type Policy string

const (
	// PolicyAllow passes unlisted paths through (historical behavior).
	PolicyAllow Policy = "allow"
	// PolicyDeny requires a session for unlisted paths.
	PolicyDeny Policy = "deny"
)

const (
	loginPath        = "/login"
	unauthorizedPath = "/unauthorized"
	rootPath         = "/"
)

// Routes is the static route table the guard evaluates.
type Routes struct {
	// Public prefixes are allowed through with no checks at all
	// (static assets, health, the auth pages themselves).
	Public []string
	// AuthOnly prefixes are the login/register/reset/verify pages: shown to
	// anonymous visitors, bounced to the root for authenticated ones.
	AuthOnly []string
	// Protected maps a path prefix to the permission it requires. An empty
	// permission means any authenticated user. The root path matches exactly,
	// never as a prefix of everything.
	Protected map[string]string
	// DefaultPolicy applies to paths matching none of the above.
	DefaultPolicy Policy
}

// Guard intercepts every request before handler dispatch. It only reads:
// session lookup and permission resolution are side-effect free. It never
// returns an error to the handler chain; every outcome is allow or redirect.
type Guard struct {
	routes   Routes
	sessions *session.Manager
	source   authz.PermissionSource
}

// NewGuard creates a route guard.
func NewGuard(routes Routes, sessions *session.Manager, source authz.PermissionSource) *Guard {
	return &Guard{routes: routes, sessions: sessions, source: source}
}

// Middleware returns the echo middleware evaluating the route table.
func (g *Guard) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path

			if g.isPublic(path) {
				return next(c)
			}

			ctx := c.Request().Context()
			user, err := g.sessions.Resolve(ctx, c.Request())
			if err != nil {
				// Persistence failure: deny, never fail open.
				slog.Error("guard_session_resolve_failed", "path", path, "error", err)
				return c.Redirect(http.StatusSeeOther, loginPath)
			}

			// One resolver per request; memoized permission lookups are
			// shared with the handlers but never outlive the request.
			resolver := authz.NewResolver(g.source)
			if user != nil {
				ctx = authz.WithUser(ctx, user)
				ctx = authz.WithResolver(ctx, resolver)
				c.SetRequest(c.Request().WithContext(ctx))
			}

			if g.isAuthOnly(path) {
				if user != nil {
					return c.Redirect(http.StatusSeeOther, rootPath)
				}
				return next(c)
			}

			required, protected := g.requiredPermission(path)
			if !protected {
				if g.routes.DefaultPolicy == PolicyDeny {
					if user == nil {
						return c.Redirect(http.StatusSeeOther, loginPath)
					}
					return c.Redirect(http.StatusSeeOther, unauthorizedPath)
				}
				return next(c)
			}

			if user == nil {
				return c.Redirect(http.StatusSeeOther, loginPath)
			}
			if required == "" {
				return next(c)
			}

			allowed, err := resolver.Has(ctx, user.ID, required)
			if err != nil {
				slog.Error("guard_permission_resolve_failed", "path", path, "user_id", user.ID, "error", err)
				return c.Redirect(http.StatusSeeOther, unauthorizedPath)
			}
			if !allowed {
				return c.Redirect(http.StatusSeeOther, unauthorizedPath)
			}

			return next(c)
		}
	}
}

func (g *Guard) isPublic(path string) bool {
	return matchesAny(path, g.routes.Public)
}

func (g *Guard) isAuthOnly(path string) bool {
	return matchesAny(path, g.routes.AuthOnly)
}

// requiredPermission finds the longest protected prefix covering the path.
func (g *Guard) requiredPermission(path string) (string, bool) {
	var (
		best    string
		bestLen = -1
	)
	for prefix, perm := range g.routes.Protected {
		if !matchesPrefix(path, prefix) {
			continue
		}
		if len(prefix) > bestLen {
			best = perm
			bestLen = len(prefix)
		}
	}
	return best, bestLen >= 0
}

func matchesAny(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if matchesPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// matchesPrefix matches on path-segment boundaries. The root path matches
// exactly, so it never shadows the whole tree.
func matchesPrefix(path, prefix string) bool {
	if prefix == rootPath {
		return path == rootPath
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
