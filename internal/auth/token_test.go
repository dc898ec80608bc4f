// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package auth_test

import (
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell/inkwell/internal/auth"
)

func TestGenerateOpaqueToken(t *testing.T) {
	token, hash, err := auth.GenerateOpaqueToken()
	require.NoError(t, err)

	assert.Len(t, token, auth.TokenBytes*2) // hex-encoded
	assert.Equal(t, auth.HashOpaqueToken(token), hash)
	assert.NotEqual(t, token, hash)
}

func TestGenerateOpaqueToken_Unique(t *testing.T) {
	first, _, err := auth.GenerateOpaqueToken()
	require.NoError(t, err)
	second, _, err := auth.GenerateOpaqueToken()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerifyOpaqueToken(t *testing.T) {
	token, hash, err := auth.GenerateOpaqueToken()
	require.NoError(t, err)

	assert.True(t, auth.VerifyOpaqueToken(token, hash))
	assert.False(t, auth.VerifyOpaqueToken("wrong", hash))
	assert.False(t, auth.VerifyOpaqueToken("", hash))
	assert.False(t, auth.VerifyOpaqueToken(token, ""))
}

func TestNewToken(t *testing.T) {
	accountID := ulid.Make()

	token, err := auth.NewToken(accountID, "somehash")
	require.NoError(t, err)
	assert.NotZero(t, token.ID)
	assert.Equal(t, accountID, token.AccountID)
	assert.False(t, token.Revoked)
	assert.Equal(t, token.CreatedAt, token.LastUsedAt)

	t.Run("zero account rejected", func(t *testing.T) {
		_, err := auth.NewToken(ulid.ULID{}, "somehash")
		assert.Error(t, err)
	})

	t.Run("empty hash rejected", func(t *testing.T) {
		_, err := auth.NewToken(accountID, "")
		assert.Error(t, err)
	})
}
