// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

// Package server wires configuration, storage, services and routes together
// and runs the HTTP server.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"

	"github.com/orbitours/backoffice/internal/config"
	"github.com/orbitours/backoffice/internal/database"
	"github.com/orbitours/backoffice/internal/repository"
	"github.com/orbitours/backoffice/internal/seed"
	"github.com/orbitours/backoffice/internal/services/auth"
	"github.com/orbitours/backoffice/internal/services/email"
	"github.com/orbitours/backoffice/internal/services/history"
	"github.com/orbitours/backoffice/internal/services/session"
)

const cleanupInterval = time.Hour

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	// Database (migrations run on open)
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	// Repository
	repo := repository.New(db)

	// Seed reference data and the bootstrap admin account
	if err := seed.Apply(ctx, repo, &cfg.Auth); err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}

	// Services
	sessions, err := session.NewManager(&cfg.Session, cfg.Secure(), repo)
	if err != nil {
		return fmt.Errorf("failed to create session manager: %w", err)
	}
	sender, err := email.NewSender(&cfg.SMTP, cfg.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to create email sender: %w", err)
	}
	recorder := history.NewRecorder(repo)
	authSvc := auth.NewService(repo, &cfg.Auth, sender, recorder)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()

	// Middleware
	setupMiddleware(e, cfg)

	// Routes (includes the route guard)
	setupRoutes(e, cfg, repo, sessions, authSvc)

	// Background cleanup of expired sessions and tokens
	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	go runCleanup(cleanupCtx, repo)

	// Start server
	return startWithGracefulShutdown(e, cfg)
}

// runCleanup periodically removes expired sessions and auth tokens.
func runCleanup(ctx context.Context, repo *repository.Repository) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.DeleteExpiredSessions(ctx); err != nil {
				slog.Warn("session cleanup failed", "error", err)
			}
			if err := repo.DeleteExpiredTokens(ctx); err != nil {
				slog.Warn("token cleanup failed", "error", err)
			}
		}
	}
}

func startWithGracefulShutdown(e *echo.Echo, cfg *config.Config) error {
	tlsResult, err := SetupTLS(cfg)
	if err != nil {
		return fmt.Errorf("TLS setup failed: %w", err)
	}

	errChan := make(chan error, 1)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	switch tlsResult.Mode {
	case TLSModeOff:
		go func() {
			slog.Info("Server running", "url", cfg.Server.BaseURL)
			if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	case TLSModeSelfSigned, TLSModeManual:
		go func() {
			slog.Info("Server running", "url", cfg.Server.BaseURL)
			if err := startTLSServer(e, addr, tlsResult.TLSConfig); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()
	}

	// Wait for interrupt signal or error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}

// startTLSServer starts the Echo server with a custom TLS configuration.
func startTLSServer(e *echo.Echo, addr string, tlsConfig *tls.Config) error {
	lc := &net.ListenConfig{}
	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return err
	}
	e.TLSListener = tls.NewListener(ln, tlsConfig)
	e.TLSServer.TLSConfig = tlsConfig
	return e.Server.Serve(e.TLSListener)
}
