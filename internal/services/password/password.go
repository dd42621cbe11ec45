// Copyright 2025 Orbitours GmbH
// Licensed under the EUPL-1.2

// Package password derives and verifies salted password hashes.
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// algorithmTag identifies the scheme inside a hash record.
	algorithmTag = "pbkdf2_sha256"
	// Iterations is the PBKDF2 work factor for newly derived hashes.
	Iterations = 150_000
	saltLen    = 16 // 128-bit salt
	keyLen     = 32 // 256-bit derived key
)

var (
	// ErrEmptyPassword is returned when the input password is empty.
	ErrEmptyPassword = errors.New("password must not be empty")
	// ErrInvalidHashFormat is returned when a hash record is malformed.
	ErrInvalidHashFormat = errors.New("invalid password hash format")
	// ErrInvalidIterations is returned when a record carries a non-positive
	// iteration count.
	ErrInvalidIterations = errors.New("invalid iteration count in password hash")
)

// Hash derives a salted hash of the password and returns a self-describing
// record "pbkdf2_sha256$<iterations>$<salt>$<key>" (salt and key base64).
// Verification never depends on external configuration: everything needed
// to re-derive is embedded in the record.
func Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, Iterations, keyLen, sha256.New)

	return fmt.Sprintf("%s$%d$%s$%s",
		algorithmTag,
		Iterations,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify re-derives the password with the salt and iteration count embedded
// in the record and compares against the embedded key in constant time.
// A legitimate mismatch returns (false, nil); a malformed record returns an
// error, since that indicates data corruption rather than a wrong password.
func Verify(password, record string) (bool, error) {
	if password == "" {
		return false, ErrEmptyPassword
	}

	parts := strings.Split(record, "$")
	if len(parts) != 4 || parts[0] != algorithmTag {
		return false, ErrInvalidHashFormat
	}

	iterations, err := strconv.Atoi(parts[1])
	if err != nil {
		return false, ErrInvalidHashFormat
	}
	if iterations <= 0 {
		return false, ErrInvalidIterations
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil {
		return false, ErrInvalidHashFormat
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil {
		return false, ErrInvalidHashFormat
	}

	got := pbkdf2.Key([]byte(password), salt, iterations, len(want), sha256.New)

	return constantTimeEqual(got, want), nil
}

// constantTimeEqual compares two slices with a fixed-length XOR accumulate.
// No early exit: runtime does not depend on where a mismatch occurs.
func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := range a {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}
