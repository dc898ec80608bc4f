// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell/inkwell/internal/auth"
	"github.com/inkwell/inkwell/internal/auth/mocks"
	"github.com/inkwell/inkwell/pkg/errutil"
)

func newJWTService(t *testing.T, repo *mocks.MockAccountRepository) *auth.JWTService {
	t.Helper()
	core, err := auth.NewService(repo, auth.NewArgon2idHasher(), nil)
	require.NoError(t, err)
	svc, err := auth.NewJWTService(core, newTestCodec(t, nil))
	require.NoError(t, err)
	return svc
}

func TestJWTService_LoginAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewMockAccountRepository(t)
	svc := newJWTService(t, repo)

	account := newTestAccount(t, "user@example.com", "hunter2hunter2")
	repo.On("GetByEmail", ctx, "user@example.com").Return(account, nil)
	repo.On("Update", ctx, account).Return(nil)

	pair, err := svc.Login(ctx, "user@example.com", "hunter2hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	gotID, err := svc.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, account.ID, gotID)

	t.Run("refresh token is not a bearer credential", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, pair.RefreshToken)
		errutil.AssertIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "garbage")
		errutil.AssertIs(t, err, auth.ErrInvalidToken)
	})
}

func TestJWTService_LoginFailure(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewMockAccountRepository(t)
	svc := newJWTService(t, repo)

	repo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, auth.ErrNotFound)

	_, err := svc.Login(ctx, "nobody@example.com", "whatever password")
	errutil.AssertIs(t, err, auth.ErrInvalidCredentials)
}

func TestJWTService_RefreshAndLogout(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewMockAccountRepository(t)
	svc := newJWTService(t, repo)

	account := newTestAccount(t, "user@example.com", "hunter2hunter2")
	repo.On("GetByEmail", ctx, "user@example.com").Return(account, nil)
	repo.On("Update", ctx, account).Return(nil)

	pair, err := svc.Login(ctx, "user@example.com", "hunter2hunter2")
	require.NoError(t, err)

	access, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	gotID, err := svc.Authenticate(ctx, access)
	require.NoError(t, err)
	assert.Equal(t, account.ID, gotID)

	require.NoError(t, svc.Logout(ctx, pair.RefreshToken))

	t.Run("revoked refresh token cannot mint", func(t *testing.T) {
		_, err := svc.Refresh(ctx, pair.RefreshToken)
		errutil.AssertIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("access tokens issued before logout stay valid", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, pair.AccessToken)
		assert.NoError(t, err)
		_, err = svc.Authenticate(ctx, access)
		assert.NoError(t, err)
	})

	t.Run("logout with an access token is rejected", func(t *testing.T) {
		errutil.AssertIs(t, svc.Logout(ctx, access), auth.ErrInvalidToken)
	})
}
