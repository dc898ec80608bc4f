// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell/inkwell/internal/auth"
	"github.com/inkwell/inkwell/pkg/errutil"
)

var testSigningKey = []byte("0123456789abcdef0123456789abcdef")

// fakeClock lets tests walk time across expiry boundaries.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestCodec(t *testing.T, clock *fakeClock) *auth.TokenCodec {
	t.Helper()
	cfg := auth.CodecConfig{
		SigningKey: testSigningKey,
		Issuer:     "inkwell-test",
	}
	// Codec and denylist must judge expiry on the same clock.
	denylist := auth.NewMemoryDenylist()
	if clock != nil {
		cfg.Now = clock.Now
		denylist = auth.NewMemoryDenylistWithClock(clock.Now)
	}
	codec, err := auth.NewTokenCodec(cfg, denylist)
	require.NoError(t, err)
	return codec
}

func TestNewTokenCodec_ConfigValidation(t *testing.T) {
	t.Run("short key rejected", func(t *testing.T) {
		_, err := auth.NewTokenCodec(auth.CodecConfig{
			SigningKey: []byte("too short"),
			Issuer:     "inkwell-test",
		}, auth.NewMemoryDenylist())
		errutil.AssertErrorCode(t, err, "CODEC_KEY_TOO_SHORT")
	})

	t.Run("empty issuer rejected", func(t *testing.T) {
		_, err := auth.NewTokenCodec(auth.CodecConfig{
			SigningKey: testSigningKey,
		}, auth.NewMemoryDenylist())
		errutil.AssertErrorCode(t, err, "CODEC_ISSUER_EMPTY")
	})

	t.Run("nil denylist rejected", func(t *testing.T) {
		_, err := auth.NewTokenCodec(auth.CodecConfig{
			SigningKey: testSigningKey,
			Issuer:     "inkwell-test",
		}, nil)
		errutil.AssertErrorCode(t, err, "CODEC_INVALID_DEPS")
	})
}

func TestTokenCodec_IssueAndVerify(t *testing.T) {
	ctx := context.Background()
	codec := newTestCodec(t, nil)
	accountID := ulid.Make()

	access, err := codec.IssueAccessToken(accountID)
	require.NoError(t, err)

	gotID, tokenID, err := codec.Verify(ctx, access)
	require.NoError(t, err)
	assert.Equal(t, accountID, gotID)
	assert.NotEmpty(t, tokenID)
}

func TestTokenCodec_VerifyRejections(t *testing.T) {
	ctx := context.Background()
	codec := newTestCodec(t, nil)
	accountID := ulid.Make()

	t.Run("garbage token", func(t *testing.T) {
		_, _, err := codec.Verify(ctx, "not.a.jwt")
		errutil.AssertIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("token signed with a different key", func(t *testing.T) {
		other, err := auth.NewTokenCodec(auth.CodecConfig{
			SigningKey: []byte("ffffffffffffffffffffffffffffffff"),
			Issuer:     "inkwell-test",
		}, auth.NewMemoryDenylist())
		require.NoError(t, err)

		forged, err := other.IssueAccessToken(accountID)
		require.NoError(t, err)

		_, _, err = codec.Verify(ctx, forged)
		errutil.AssertIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other, err := auth.NewTokenCodec(auth.CodecConfig{
			SigningKey: testSigningKey,
			Issuer:     "someone-else",
		}, auth.NewMemoryDenylist())
		require.NoError(t, err)

		foreign, err := other.IssueAccessToken(accountID)
		require.NoError(t, err)

		_, _, err = codec.Verify(ctx, foreign)
		errutil.AssertIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("refresh token as bearer credential", func(t *testing.T) {
		refresh, err := codec.IssueRefreshToken(accountID)
		require.NoError(t, err)

		_, _, err = codec.Verify(ctx, refresh)
		errutil.AssertIs(t, err, auth.ErrInvalidToken)
	})
}

func TestTokenCodec_ExpiryBoundary(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, clock)
	accountID := ulid.Make()

	access, err := codec.IssueAccessToken(accountID)
	require.NoError(t, err)

	clock.Advance(auth.DefaultAccessTTL - time.Second)
	_, _, err = codec.Verify(ctx, access)
	assert.NoError(t, err, "still inside the lifetime")

	clock.Advance(2 * time.Second)
	_, _, err = codec.Verify(ctx, access)
	errutil.AssertIs(t, err, auth.ErrInvalidToken)
}

func TestTokenCodec_Refresh(t *testing.T) {
	ctx := context.Background()
	codec := newTestCodec(t, nil)
	accountID := ulid.Make()

	refresh, err := codec.IssueRefreshToken(accountID)
	require.NoError(t, err)

	t.Run("valid refresh mints a new access token", func(t *testing.T) {
		access, err := codec.Refresh(ctx, refresh)
		require.NoError(t, err)

		gotID, _, err := codec.Verify(ctx, access)
		require.NoError(t, err)
		assert.Equal(t, accountID, gotID)
	})

	t.Run("refresh token is reusable until revoked", func(t *testing.T) {
		_, err := codec.Refresh(ctx, refresh)
		assert.NoError(t, err)
	})

	t.Run("access token cannot refresh", func(t *testing.T) {
		access, err := codec.IssueAccessToken(accountID)
		require.NoError(t, err)

		_, err = codec.Refresh(ctx, access)
		errutil.AssertIs(t, err, auth.ErrInvalidToken)
	})
}

func TestTokenCodec_Revoke(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, clock)
	accountID := ulid.Make()

	refresh, err := codec.IssueRefreshToken(accountID)
	require.NoError(t, err)
	access, err := codec.IssueAccessToken(accountID)
	require.NoError(t, err)

	require.NoError(t, codec.Revoke(ctx, refresh))

	t.Run("revoked refresh token cannot mint", func(t *testing.T) {
		_, err := codec.Refresh(ctx, refresh)
		errutil.AssertIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("already-issued access token stays valid until expiry", func(t *testing.T) {
		_, _, err := codec.Verify(ctx, access)
		assert.NoError(t, err)

		clock.Advance(auth.DefaultAccessTTL + time.Second)
		_, _, err = codec.Verify(ctx, access)
		errutil.AssertIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("access token cannot be revoked", func(t *testing.T) {
		err := codec.Revoke(ctx, access)
		errutil.AssertIs(t, err, auth.ErrInvalidToken)
	})
}
