// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package auth

import (
	"context"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// TokenPair is the result of a stateless-mode login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// JWTService is the stateless mode: self-contained signed tokens verified
// without a store round-trip. Suited to high request volume; the trade-off
// is that logout can only block the refresh lineage, documented on Logout.
type JWTService struct {
	core   *Service
	codec  *TokenCodec
	logger *slog.Logger
}

// NewJWTService creates a JWTService.
func NewJWTService(core *Service, codec *TokenCodec) (*JWTService, error) {
	return NewJWTServiceWithLogger(core, codec, slog.Default())
}

// NewJWTServiceWithLogger creates a JWTService with an explicit logger.
func NewJWTServiceWithLogger(core *Service, codec *TokenCodec, logger *slog.Logger) (*JWTService, error) {
	if core == nil {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("credential core is required")
	}
	if codec == nil {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("token codec is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("logger is required")
	}
	return &JWTService{core: core, codec: codec, logger: logger}, nil
}

// Login authenticates and issues an access/refresh pair.
func (s *JWTService) Login(ctx context.Context, email, password string) (TokenPair, error) {
	account, err := s.core.verifyCredentials(ctx, email, password)
	if err != nil {
		return TokenPair{}, err
	}

	access, err := s.codec.IssueAccessToken(account.ID)
	if err != nil {
		return TokenPair{}, oops.Code("AUTH_LOGIN_FAILED").With("operation", "issue access token").Wrap(err)
	}
	refresh, err := s.codec.IssueRefreshToken(account.ID)
	if err != nil {
		return TokenPair{}, oops.Code("AUTH_LOGIN_FAILED").With("operation", "issue refresh token").Wrap(err)
	}

	s.logger.Info("token pair issued", "account_id", account.ID.String())
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token is not rotated.
func (s *JWTService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	return s.codec.Refresh(ctx, refreshToken)
}

// Logout denylists the presented refresh token so it can never mint
// another access token. Access tokens already issued remain valid until
// their own expiry; with the default 60-minute lifetime that is the
// maximum blast radius of a logout in this mode.
func (s *JWTService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.codec.Revoke(ctx, refreshToken); err != nil {
		return err
	}
	s.logger.Info("refresh token revoked")
	return nil
}

// Authenticate resolves an access token to its account id.
func (s *JWTService) Authenticate(ctx context.Context, token string) (ulid.ULID, error) {
	accountID, _, err := s.codec.Verify(ctx, token)
	return accountID, err
}

// Compile-time interface check.
var _ Authenticator = (*JWTService)(nil)
