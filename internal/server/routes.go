// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

package server

import (
	"github.com/labstack/echo/v4"

	"github.com/orbitours/backoffice/internal/config"
	"github.com/orbitours/backoffice/internal/handlers"
	appmw "github.com/orbitours/backoffice/internal/middleware"
	"github.com/orbitours/backoffice/internal/repository"
	"github.com/orbitours/backoffice/internal/services/auth"
	"github.com/orbitours/backoffice/internal/services/authz"
	"github.com/orbitours/backoffice/internal/services/session"
)

// routeTable is the single place access rules live. Handlers never check
// permissions for page access themselves; the guard evaluates this table
// before any of them run.
func routeTable(cfg *config.Config) appmw.Routes {
	policy := appmw.PolicyAllow
	if cfg.Guard.DefaultPolicy == string(appmw.PolicyDeny) {
		policy = appmw.PolicyDeny
	}

	return appmw.Routes{
		Public: []string{
			"/static",
			"/health",
			"/favicon.ico",
			"/unauthorized",
			"/verify-email",
			"/logout",
		},
		AuthOnly: []string{
			"/login",
			"/register",
			"/forgot-password",
			"/reset-password",
		},
		Protected: map[string]string{
			"/":            "",
			"/menus":       "",
			"/account":     "",
			"/users":       authz.PermUsersView,
			"/roles":       authz.PermRolesView,
			"/permissions": authz.PermPermissionsView,
			"/history":     authz.PermHistoryView,
		},
		DefaultPolicy: policy,
	}
}

func setupRoutes(e *echo.Echo, cfg *config.Config, repo *repository.Repository, sessions *session.Manager, authSvc *auth.Service) {
	guard := appmw.NewGuard(routeTable(cfg), sessions, repo)
	e.Use(guard.Middleware())

	h := handlers.New(repo)
	authH := handlers.NewAuth(authSvc, sessions)
	userH := handlers.NewUsers(repo)
	roleH := handlers.NewRoles(repo)
	permH := handlers.NewPermissions(repo)
	menuH := handlers.NewMenus(repo)
	historyH := handlers.NewHistory(repo)

	// Static files
	e.Static("/static", "static")

	e.GET("/health", h.Health)
	e.GET("/", h.Home)
	e.GET("/unauthorized", h.Unauthorized)

	// Authentication flows
	e.POST("/login", authH.Login)
	e.POST("/register", authH.Register)
	e.POST("/logout", authH.Logout)
	e.GET("/verify-email", authH.VerifyEmail)
	e.POST("/forgot-password", authH.ForgotPassword)
	e.POST("/reset-password", authH.ResetPassword)
	e.POST("/account/password", authH.ChangePassword)

	// User administration
	e.GET("/users", userH.List)
	e.POST("/users", userH.Create)
	e.GET("/users/:id", userH.Get)
	e.PUT("/users/:id", userH.Update)
	e.PUT("/users/:id/roles", userH.SetRoles)

	// Role administration
	e.GET("/roles", roleH.List)
	e.POST("/roles", roleH.Create)
	e.PUT("/roles/:id", roleH.Update)
	e.DELETE("/roles/:id", roleH.Delete)

	// Permission catalog
	e.GET("/permissions", permH.List)

	// Navigation
	e.GET("/menus", menuH.List)

	// Login history
	e.GET("/history/users/:id", historyH.ListForUser)
}
