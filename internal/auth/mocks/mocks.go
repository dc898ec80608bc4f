// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

// Package mocks provides testify mocks for the auth package interfaces.
package mocks

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/inkwell/inkwell/internal/auth"
)

// MockAccountRepository is a mock implementation of auth.AccountRepository.
type MockAccountRepository struct {
	mock.Mock
}

// NewMockAccountRepository creates a MockAccountRepository with expectations
// asserted on test cleanup.
func NewMockAccountRepository(t *testing.T) *MockAccountRepository {
	m := &MockAccountRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAccountRepository) Create(ctx context.Context, account *auth.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Account, error) {
	args := m.Called(ctx, id)
	if acc, ok := args.Get(0).(*auth.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*auth.Account, error) {
	args := m.Called(ctx, email)
	if acc, ok := args.Get(0).(*auth.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) Update(ctx context.Context, account *auth.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateEmail(ctx context.Context, id ulid.ULID, newEmail string) error {
	args := m.Called(ctx, id, newEmail)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockAccountRepository) Delete(ctx context.Context, id ulid.ULID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTokenRepository is a mock implementation of auth.TokenRepository.
type MockTokenRepository struct {
	mock.Mock
}

// NewMockTokenRepository creates a MockTokenRepository with expectations
// asserted on test cleanup.
func NewMockTokenRepository(t *testing.T) *MockTokenRepository {
	m := &MockTokenRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTokenRepository) Create(ctx context.Context, token *auth.Token) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.Token, error) {
	args := m.Called(ctx, tokenHash)
	if tok, ok := args.Get(0).(*auth.Token); ok {
		return tok, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenRepository) GetByAccount(ctx context.Context, accountID ulid.ULID) ([]*auth.Token, error) {
	args := m.Called(ctx, accountID)
	if toks, ok := args.Get(0).([]*auth.Token); ok {
		return toks, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenRepository) Revoke(ctx context.Context, id ulid.ULID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTokenRepository) RevokeAllForAccount(ctx context.Context, accountID ulid.ULID) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

func (m *MockTokenRepository) UpdateLastUsed(ctx context.Context, id ulid.ULID, lastUsed time.Time) error {
	args := m.Called(ctx, id, lastUsed)
	return args.Error(0)
}

func (m *MockTokenRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockPasswordHasher is a mock implementation of auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a MockPasswordHasher with expectations
// asserted on test cleanup.
func NewMockPasswordHasher(t *testing.T) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(password, digest string) (bool, error) {
	args := m.Called(password, digest)
	return args.Bool(0), args.Error(1)
}

func (m *MockPasswordHasher) NeedsUpgrade(digest string) bool {
	args := m.Called(digest)
	return args.Bool(0)
}

// MockDenylist is a mock implementation of auth.Denylist.
type MockDenylist struct {
	mock.Mock
}

// NewMockDenylist creates a MockDenylist with expectations asserted on
// test cleanup.
func NewMockDenylist(t *testing.T) *MockDenylist {
	m := &MockDenylist{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockDenylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	args := m.Called(ctx, tokenID, expiresAt)
	return args.Error(0)
}

func (m *MockDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDenylist) Prune(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockImageResolver is a mock implementation of auth.ImageResolver.
type MockImageResolver struct {
	mock.Mock
}

// NewMockImageResolver creates a MockImageResolver with expectations
// asserted on test cleanup.
func NewMockImageResolver(t *testing.T) *MockImageResolver {
	m := &MockImageResolver{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockImageResolver) Resolve(ctx context.Context, ref string) (string, error) {
	args := m.Called(ctx, ref)
	return args.String(0), args.Error(1)
}

// Compile-time interface checks.
var (
	_ auth.AccountRepository = (*MockAccountRepository)(nil)
	_ auth.TokenRepository   = (*MockTokenRepository)(nil)
	_ auth.PasswordHasher    = (*MockPasswordHasher)(nil)
	_ auth.Denylist          = (*MockDenylist)(nil)
	_ auth.ImageResolver     = (*MockImageResolver)(nil)
)
