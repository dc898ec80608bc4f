// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"

	"github.com/inkwell/inkwell/internal/auth"
)

// Denylist implements auth.Denylist using PostgreSQL, so revocations are
// visible to every service instance. Retention is bounded by the expiry
// stored with each entry; Prune should run on a timer roughly as often as
// the refresh token lifetime.
type Denylist struct {
	pool *pgxpool.Pool
}

// NewDenylist creates a new Denylist.
func NewDenylist(pool *pgxpool.Pool) *Denylist {
	return &Denylist{pool: pool}
}

// Revoke records a token id until expiresAt. Revoking the same id twice
// keeps the original expiry; the token cannot outlive it either way.
func (d *Denylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO revoked_tokens (token_id, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (token_id) DO NOTHING
	`, tokenID, expiresAt)
	if err != nil {
		return oops.Code("DENYLIST_REVOKE_FAILED").
			With("operation", "insert revoked_token").
			Wrap(err)
	}
	return nil
}

// IsRevoked reports whether the token id is currently denylisted.
func (d *Denylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var revoked bool
	err := d.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM revoked_tokens
			WHERE token_id = $1 AND expires_at > $2
		)
	`, tokenID, time.Now()).Scan(&revoked)
	if err != nil {
		return false, oops.Code("DENYLIST_CHECK_FAILED").
			With("operation", "check revoked_token").
			Wrap(err)
	}
	return revoked, nil
}

// Prune removes entries whose underlying token has expired.
func (d *Denylist) Prune(ctx context.Context) (int64, error) {
	result, err := d.pool.Exec(ctx, `
		DELETE FROM revoked_tokens WHERE expires_at <= $1
	`, time.Now())
	if err != nil {
		return 0, oops.Code("DENYLIST_PRUNE_FAILED").
			With("operation", "delete expired revoked_tokens").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// Compile-time interface check.
var _ auth.Denylist = (*Denylist)(nil)
