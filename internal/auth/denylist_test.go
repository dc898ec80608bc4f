// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell/inkwell/internal/auth"
)

func TestMemoryDenylist_RevokeAndCheck(t *testing.T) {
	ctx := context.Background()
	dl := auth.NewMemoryDenylist()

	revoked, err := dl.IsRevoked(ctx, "token-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, dl.Revoke(ctx, "token-1", time.Now().Add(time.Hour)))

	revoked, err = dl.IsRevoked(ctx, "token-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = dl.IsRevoked(ctx, "token-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryDenylist_ExpiredEntryIsNotRevoked(t *testing.T) {
	ctx := context.Background()
	dl := auth.NewMemoryDenylist()

	require.NoError(t, dl.Revoke(ctx, "old", time.Now().Add(-time.Minute)))

	revoked, err := dl.IsRevoked(ctx, "old")
	require.NoError(t, err)
	assert.False(t, revoked, "entries past token expiry no longer matter")
}

func TestMemoryDenylist_InjectedClock(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
	dl := auth.NewMemoryDenylistWithClock(clock.Now)

	// The entry expires far in the real past; only the injected clock may
	// decide whether it is still live.
	require.NoError(t, dl.Revoke(ctx, "pinned", clock.Now().Add(time.Hour)))

	revoked, err := dl.IsRevoked(ctx, "pinned")
	require.NoError(t, err)
	assert.True(t, revoked, "entry is live on the injected clock")

	clock.Advance(2 * time.Hour)
	revoked, err = dl.IsRevoked(ctx, "pinned")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryDenylist_Prune(t *testing.T) {
	ctx := context.Background()
	dl := auth.NewMemoryDenylist()

	require.NoError(t, dl.Revoke(ctx, "expired-1", time.Now().Add(-time.Hour)))
	require.NoError(t, dl.Revoke(ctx, "expired-2", time.Now().Add(-time.Minute)))
	require.NoError(t, dl.Revoke(ctx, "live", time.Now().Add(time.Hour)))

	removed, err := dl.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	revoked, err := dl.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)
}
