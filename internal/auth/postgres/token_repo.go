// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/inkwell/inkwell/internal/auth"
)

// TokenRepository implements auth.TokenRepository using PostgreSQL.
// Revocation sets a flag rather than deleting the row, so a revoked token
// can never be silently reissued and the audit trail survives.
type TokenRepository struct {
	pool *pgxpool.Pool
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

// Create stores a new token.
func (r *TokenRepository) Create(ctx context.Context, token *auth.Token) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO api_tokens (id, account_id, token_hash, revoked, created_at, last_used_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		token.ID.String(),
		token.AccountID.String(),
		token.TokenHash,
		token.Revoked,
		token.CreatedAt,
		token.LastUsedAt,
	)
	if err != nil {
		return oops.Code("TOKEN_CREATE_FAILED").
			With("operation", "insert api_token").
			With("account_id", token.AccountID.String()).
			Wrap(err)
	}
	return nil
}

// GetByTokenHash retrieves a token by its hash, revoked or not.
func (r *TokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.Token, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, account_id, token_hash, revoked, created_at, last_used_at
		FROM api_tokens
		WHERE token_hash = $1
	`, tokenHash)

	token, err := scanToken(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TOKEN_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("TOKEN_GET_BY_HASH_FAILED").
			With("operation", "get token by hash").
			Wrap(err)
	}
	return token, nil
}

// GetByAccount retrieves all tokens for an account, newest first.
func (r *TokenRepository) GetByAccount(ctx context.Context, accountID ulid.ULID) ([]*auth.Token, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_id, token_hash, revoked, created_at, last_used_at
		FROM api_tokens
		WHERE account_id = $1
		ORDER BY created_at DESC
	`, accountID.String())
	if err != nil {
		return nil, oops.Code("TOKEN_GET_BY_ACCOUNT_FAILED").
			With("operation", "get tokens by account").
			With("account_id", accountID.String()).
			Wrap(err)
	}
	defer rows.Close()

	var tokens []*auth.Token
	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			return nil, oops.Code("TOKEN_SCAN_FAILED").
				With("operation", "scan token row").
				Wrap(err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, oops.Code("TOKEN_ROWS_ERROR").
			With("operation", "iterate token rows").
			Wrap(err)
	}

	return tokens, nil
}

// Revoke marks a single token revoked. The write is committed before this
// returns, so every subsequent lookup sees it.
func (r *TokenRepository) Revoke(ctx context.Context, id ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE api_tokens SET revoked = TRUE
		WHERE id = $1
	`, id.String())
	if err != nil {
		return oops.Code("TOKEN_REVOKE_FAILED").
			With("operation", "revoke token").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("TOKEN_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// RevokeAllForAccount marks every token owned by the account revoked.
func (r *TokenRepository) RevokeAllForAccount(ctx context.Context, accountID ulid.ULID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE api_tokens SET revoked = TRUE
		WHERE account_id = $1 AND NOT revoked
	`, accountID.String())
	if err != nil {
		return oops.Code("TOKEN_REVOKE_ALL_FAILED").
			With("operation", "revoke tokens by account").
			With("account_id", accountID.String()).
			Wrap(err)
	}
	// Note: No ErrNotFound if no rows updated - that's a valid state
	return nil
}

// UpdateLastUsed updates the LastUsedAt timestamp.
func (r *TokenRepository) UpdateLastUsed(ctx context.Context, id ulid.ULID, lastUsed time.Time) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE api_tokens SET last_used_at = $2
		WHERE id = $1
	`, id.String(), lastUsed)
	if err != nil {
		return oops.Code("TOKEN_UPDATE_LAST_USED_FAILED").
			With("operation", "update last_used_at").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("TOKEN_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// DeleteOlderThan removes tokens created before the cutoff and returns the
// count of deleted rows.
func (r *TokenRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM api_tokens WHERE created_at < $1
	`, cutoff)
	if err != nil {
		return 0, oops.Code("TOKEN_DELETE_OLDER_FAILED").
			With("operation", "delete aged tokens").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// scanToken scans a single row into a Token.
// Callers are responsible for handling pgx.ErrNoRows.
func scanToken(row pgx.Row) (*auth.Token, error) {
	var (
		idStr        string
		accountIDStr string
		tokenHash    string
		revoked      bool
		createdAt    time.Time
		lastUsedAt   time.Time
	)

	err := row.Scan(&idStr, &accountIDStr, &tokenHash, &revoked, &createdAt, &lastUsedAt)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("TOKEN_SCAN_FAILED").
			With("operation", "scan api_token").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("TOKEN_INVALID_ID").
			With("operation", "parse token id").
			With("id", idStr).
			Wrap(err)
	}

	accountID, err := ulid.Parse(accountIDStr)
	if err != nil {
		return nil, oops.Code("TOKEN_INVALID_ACCOUNT_ID").
			With("operation", "parse account id").
			With("account_id", accountIDStr).
			Wrap(err)
	}

	return &auth.Token{
		ID:         id,
		AccountID:  accountID,
		TokenHash:  tokenHash,
		Revoked:    revoked,
		CreatedAt:  createdAt,
		LastUsedAt: lastUsedAt,
	}, nil
}

// Compile-time interface check.
var _ auth.TokenRepository = (*TokenRepository)(nil)
