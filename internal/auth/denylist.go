// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package auth

import (
	"context"
	"sync"
	"time"
)

// Denylist records revoked-but-not-yet-expired token ids. Retention is
// bounded: every entry carries the expiry of its underlying token, and
// entries past it can be pruned because the signature check would reject
// the token anyway.
type Denylist interface {
	// Revoke records a token id until expiresAt.
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error

	// IsRevoked reports whether the token id is currently denylisted.
	IsRevoked(ctx context.Context, tokenID string) (bool, error)

	// Prune removes entries whose underlying token has expired and returns
	// the count of removed entries.
	Prune(ctx context.Context) (int64, error)
}

// MemoryDenylist is an in-process Denylist. It is the right choice for a
// single-instance deployment; multi-instance deployments should use the
// Postgres-backed implementation so revocation is shared.
type MemoryDenylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryDenylist creates an empty MemoryDenylist.
func NewMemoryDenylist() *MemoryDenylist {
	return NewMemoryDenylistWithClock(nil)
}

// NewMemoryDenylistWithClock creates a MemoryDenylist on the given clock.
// Expiry judgments must run on the same clock that stamped the entries, so
// callers overriding CodecConfig.Now pass the same function here. Nil means
// time.Now.
func NewMemoryDenylistWithClock(now func() time.Time) *MemoryDenylist {
	if now == nil {
		now = time.Now
	}
	return &MemoryDenylist{
		entries: make(map[string]time.Time),
		now:     now,
	}
}

// Revoke records a token id until expiresAt.
func (d *MemoryDenylist) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[tokenID] = expiresAt
	return nil
}

// IsRevoked reports whether the token id is currently denylisted. Expired
// entries are dropped on the way out.
func (d *MemoryDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	expiresAt, ok := d.entries[tokenID]
	if !ok {
		return false, nil
	}
	if d.now().After(expiresAt) {
		delete(d.entries, tokenID)
		return false, nil
	}
	return true, nil
}

// Prune removes entries whose underlying token has expired.
func (d *MemoryDenylist) Prune(_ context.Context) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	var removed int64
	for id, expiresAt := range d.entries {
		if now.After(expiresAt) {
			delete(d.entries, id)
			removed++
		}
	}
	return removed, nil
}

// Compile-time interface check.
var _ Denylist = (*MemoryDenylist)(nil)
