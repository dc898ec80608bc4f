// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// TokenBytes is the entropy of an opaque token in bytes. 32 bytes is well
// above the 128-bit floor and hex-encodes to 64 characters.
const TokenBytes = 32

// Token represents a stored opaque API token. The plaintext is handed to
// the client exactly once at login; only its SHA-256 hash is persisted.
// Tokens have no expiry by default and stay valid until revoked; an
// optional max-age policy is applied by SessionService at verification
// time.
type Token struct {
	ID         ulid.ULID
	AccountID  ulid.ULID
	TokenHash  string
	Revoked    bool
	CreatedAt  time.Time
	LastUsedAt time.Time
}

// NewToken creates a validated Token bound to an account.
func NewToken(accountID ulid.ULID, tokenHash string) (*Token, error) {
	if accountID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("TOKEN_INVALID_ACCOUNT").Errorf("account ID cannot be zero")
	}
	if tokenHash == "" {
		return nil, oops.Code("TOKEN_INVALID_HASH").Errorf("token hash cannot be empty")
	}

	now := time.Now()
	return &Token{
		ID:         ulid.Make(),
		AccountID:  accountID,
		TokenHash:  tokenHash,
		CreatedAt:  now,
		LastUsedAt: now,
	}, nil
}

// GenerateOpaqueToken creates a secure random token and its hash.
// Returns (plaintext_token, sha256_hash, error). The plaintext goes to the
// client; the hash goes to the database.
func GenerateOpaqueToken() (token, hash string, err error) {
	raw := make([]byte, TokenBytes)
	if _, err = rand.Read(raw); err != nil {
		return "", "", oops.Code("TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", TokenBytes).
			Wrap(err)
	}

	token = hex.EncodeToString(raw)
	hash = HashOpaqueToken(token)

	return token, hash, nil
}

// HashOpaqueToken computes the SHA-256 hash of an opaque token.
func HashOpaqueToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// VerifyOpaqueToken checks if the plaintext token matches the stored hash
// using a constant-time comparison.
func VerifyOpaqueToken(token, hash string) bool {
	if token == "" || hash == "" {
		return false
	}
	computed := HashOpaqueToken(token)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}

// TokenRepository manages opaque token persistence. Revocation writes must
// be durable before the call returns: a subsequent GetByTokenHash from any
// instance sees the revoked flag.
type TokenRepository interface {
	// Create stores a new token.
	Create(ctx context.Context, token *Token) error

	// GetByTokenHash retrieves a token by its hash, revoked or not.
	GetByTokenHash(ctx context.Context, tokenHash string) (*Token, error)

	// GetByAccount retrieves all tokens for an account, newest first.
	GetByAccount(ctx context.Context, accountID ulid.ULID) ([]*Token, error)

	// Revoke marks a single token revoked.
	Revoke(ctx context.Context, id ulid.ULID) error

	// RevokeAllForAccount marks every token owned by the account revoked.
	RevokeAllForAccount(ctx context.Context, accountID ulid.ULID) error

	// UpdateLastUsed updates the LastUsedAt timestamp.
	UpdateLastUsed(ctx context.Context, id ulid.ULID, lastUsed time.Time) error

	// DeleteOlderThan removes tokens created before the cutoff, revoked or
	// not, and returns the count of deleted rows. Used by the optional
	// max-age policy to bound table growth.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
