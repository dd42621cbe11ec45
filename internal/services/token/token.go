// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

// Package token produces cryptographically random opaque identifiers.
package token

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// Length is the number of random bytes in an opaque token.
const Length = 32

// New returns a 256-bit random token, hex encoded. Callers assign their own
// expiry and usage semantics (sessions, verification links, reset links).
func New() string {
	b := make([]byte, Length)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms; a broken entropy
		// source is unrecoverable for an auth system.
		panic("token: reading random bytes: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// NewUUID returns a random UUID string, used as the user's stable external
// identifier.
func NewUUID() string {
	return uuid.NewString()
}
