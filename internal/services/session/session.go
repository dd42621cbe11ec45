// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

// Package session issues, resolves and revokes cookie-backed sessions.
//
// The cookie carries a dedicated random session token, signed with
// gorilla/securecookie. The token is mirrored in the sessions table, so a
// session can be revoked server-side and a leaked cookie dies with the row.
// The user's stable UUID is never used as a session credential.
package session

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"

	"github.com/orbitours/backoffice/internal/config"
	"github.com/orbitours/backoffice/internal/models"
	"github.com/orbitours/backoffice/internal/repository"
	"github.com/orbitours/backoffice/internal/services/token"
)

// Store is the persistence the manager consumes.
type Store interface {
	CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error
	GetActiveSession(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// Manager issues and validates session cookies.
type Manager struct {
	store      Store
	codec      *securecookie.SecureCookie
	cookieName string
	maxAge     int
	secure     bool
}

// NewManager creates a session manager from configuration. The hash key must
// be a 32-byte hex string; when empty a key is generated, which is fine for
// development but ties sessions to one process lifetime.
func NewManager(cfg *config.SessionConfig, secure bool, store Store) (*Manager, error) {
	hashKey, err := keyFromConfig(cfg.HashKey, "session hash key")
	if err != nil {
		return nil, err
	}

	var blockKey []byte
	if cfg.BlockKey != "" {
		if blockKey, err = keyFromConfig(cfg.BlockKey, "session block key"); err != nil {
			return nil, err
		}
	}

	codec := securecookie.New(hashKey, blockKey)
	codec.MaxAge(cfg.MaxAge)

	return &Manager{
		store:      store,
		codec:      codec,
		cookieName: cfg.CookieName,
		maxAge:     cfg.MaxAge,
		secure:     secure,
	}, nil
}

func keyFromConfig(value, label string) ([]byte, error) {
	if value == "" {
		return securecookie.GenerateRandomKey(32), nil
	}
	key, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", label, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%s must be 32 bytes, got %d", label, len(key))
	}
	return key, nil
}

// TTL returns the configured session lifetime.
func (m *Manager) TTL() time.Duration {
	return time.Duration(m.maxAge) * time.Second
}

// Issue mints a fresh session token for the user, records it server-side
// and returns the cookie to set. Each login gets its own token; tokens are
// never derived from the user's identity.
func (m *Manager) Issue(ctx context.Context, user *models.User) (*http.Cookie, error) {
	tok := token.New()
	expiresAt := time.Now().UTC().Add(m.TTL())

	if err := m.store.CreateSession(ctx, tok, user.ID, expiresAt); err != nil {
		return nil, fmt.Errorf("persisting session: %w", err)
	}

	encoded, err := m.codec.Encode(m.cookieName, tok)
	if err != nil {
		return nil, fmt.Errorf("encoding session cookie: %w", err)
	}

	return &http.Cookie{
		Name:     m.cookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   m.maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Resolve maps the request's session cookie back to a user. An absent,
// tampered, expired or revoked cookie degrades to (nil, nil), meaning
// anonymous. Only persistence failures are returned as errors, and the
// route guard treats those as deny.
func (m *Manager) Resolve(ctx context.Context, r *http.Request) (*models.User, error) {
	tok := m.tokenFromRequest(r)
	if tok == "" {
		return nil, nil
	}

	sess, err := m.store.GetActiveSession(ctx, tok)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	user, err := m.store.GetUserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !user.Active() {
		return nil, nil
	}

	return user, nil
}

// Revoke deletes the server-side session row and returns a clearing cookie.
func (m *Manager) Revoke(ctx context.Context, r *http.Request) (*http.Cookie, error) {
	if tok := m.tokenFromRequest(r); tok != "" {
		if err := m.store.DeleteSession(ctx, tok); err != nil {
			return nil, err
		}
	}
	return m.Clear(), nil
}

// Clear returns a cookie that removes the session from the client.
func (m *Manager) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *Manager) tokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return ""
	}
	var tok string
	if err := m.codec.Decode(m.cookieName, cookie.Value, &tok); err != nil {
		return ""
	}
	return tok
}
