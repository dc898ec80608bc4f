// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// OWASP-recommended argon2id parameters.
const (
	argon2Time    = 1         // iterations
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4         // parallelism
	argon2SaltLen = 16        // salt length in bytes
	argon2KeyLen  = 32        // output length in bytes
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// PasswordHasher provides password hashing and verification.
type PasswordHasher interface {
	// Hash produces a salted one-way digest of the password.
	Hash(password string) (string, error)

	// Verify checks if the password matches the digest. A digest that
	// cannot be parsed reports (false, nil): malformed stored data is a
	// mismatch, never a panic or an error the caller must branch on.
	Verify(password, digest string) (bool, error)

	// NeedsUpgrade returns true if the digest was produced with weaker
	// parameters than the current defaults and should be re-hashed on the
	// next successful login.
	NeedsUpgrade(digest string) bool
}

// Argon2idHasher implements PasswordHasher using argon2id.
type Argon2idHasher struct{}

// NewArgon2idHasher creates a new Argon2idHasher.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{}
}

// Hash produces an argon2id digest of the password.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	key := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// PHC string format: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return encoded, nil
}

// Verify checks if the password matches the digest.
func (h *Argon2idHasher) Verify(password, digest string) (bool, error) {
	salt, expected, params, ok := parseDigest(digest)
	if !ok {
		return false, nil
	}

	computed := argon2.IDKey([]byte(password), salt, params.time, params.memory, params.threads, uint32(len(expected)))

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

// NeedsUpgrade returns true if the digest is not argon2id with current
// parameters (e.g., a bcrypt digest from an older deployment, or argon2id
// produced with a smaller memory cost).
func (h *Argon2idHasher) NeedsUpgrade(digest string) bool {
	if !strings.HasPrefix(digest, "$argon2id$") {
		return true
	}
	_, _, params, ok := parseDigest(digest)
	if !ok {
		return true
	}
	return params.memory < argon2Memory || params.time < argon2Time
}

type argon2Params struct {
	memory  uint32
	time    uint32
	threads uint8
}

// parseDigest decodes a PHC-format argon2id digest. ok is false for
// anything that is not a well-formed argon2id string.
func parseDigest(digest string) (salt, key []byte, params argon2Params, ok bool) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, nil, argon2Params{}, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, nil, argon2Params{}, false
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return nil, nil, argon2Params{}, false
	}
	// threads must fit in uint8 to prevent silent truncation
	if threads == 0 || threads > 255 {
		return nil, nil, argon2Params{}, false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, argon2Params{}, false
	}

	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 || len(key) > 1<<10 {
		return nil, nil, argon2Params{}, false
	}

	return salt, key, argon2Params{memory: memory, time: time, threads: uint8(threads)}, true
}

// Compile-time interface check.
var _ PasswordHasher = (*Argon2idHasher)(nil)
