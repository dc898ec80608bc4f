// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package auth

import (
	"context"

	"github.com/oklog/ulid/v2"
)

type ctxKey string

const accountContextKey ctxKey = "inkwell.auth.account"

// WithAccountID returns a context carrying the authenticated account id.
func WithAccountID(ctx context.Context, id ulid.ULID) context.Context {
	return context.WithValue(ctx, accountContextKey, id)
}

// AccountIDFromContext extracts the authenticated account id set by Guard.
func AccountIDFromContext(ctx context.Context) (ulid.ULID, bool) {
	id, ok := ctx.Value(accountContextKey).(ulid.ULID)
	return id, ok
}
