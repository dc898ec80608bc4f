// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// SessionConfig configures the stateful token mode.
type SessionConfig struct {
	// MaxAge bounds token lifetime. Zero means tokens live until explicit
	// logout, matching the default trust model of this mode.
	MaxAge time.Duration
}

// SessionService is the stateful mode: opaque tokens validated by store
// lookup. Every request pays that lookup, and in exchange revocation is
// immediate and precise; there is no blast-radius caveat here.
type SessionService struct {
	core   *Service
	tokens TokenRepository
	cfg    SessionConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewSessionService creates a SessionService.
func NewSessionService(core *Service, tokens TokenRepository, cfg SessionConfig) (*SessionService, error) {
	return NewSessionServiceWithLogger(core, tokens, cfg, slog.Default())
}

// NewSessionServiceWithLogger creates a SessionService with an explicit logger.
func NewSessionServiceWithLogger(core *Service, tokens TokenRepository, cfg SessionConfig, logger *slog.Logger) (*SessionService, error) {
	if core == nil {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("credential core is required")
	}
	if tokens == nil {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("tokens repository is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("logger is required")
	}
	return &SessionService{core: core, tokens: tokens, cfg: cfg, logger: logger, now: time.Now}, nil
}

// Login authenticates and issues a new opaque token. Multiple tokens may
// be live per account at once (one per device). Returns the stored token
// record and the plaintext, which is shown to the client exactly once.
func (s *SessionService) Login(ctx context.Context, email, password string) (*Token, string, error) {
	account, err := s.core.verifyCredentials(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	plaintext, hash, err := GenerateOpaqueToken()
	if err != nil {
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").With("operation", "generate token").Wrap(err)
	}

	token, err := NewToken(account.ID, hash)
	if err != nil {
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").With("operation", "create token").Wrap(err)
	}

	if err := s.tokens.Create(ctx, token); err != nil {
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").With("operation", "persist token").Wrap(err)
	}

	s.logger.Info("opaque token issued", "account_id", account.ID.String(), "token_id", token.ID.String())
	return token, plaintext, nil
}

// Authenticate resolves an opaque token to its account id. Unknown,
// revoked, and over-age tokens all collapse to ErrInvalidToken.
func (s *SessionService) Authenticate(ctx context.Context, plaintext string) (ulid.ULID, error) {
	if plaintext == "" {
		return ulid.ULID{}, invalidToken("empty token")
	}

	token, err := s.lookup(ctx, plaintext)
	if err != nil {
		return ulid.ULID{}, err
	}
	if token.Revoked {
		return ulid.ULID{}, invalidToken("token revoked")
	}
	if s.cfg.MaxAge > 0 && s.now().After(token.CreatedAt.Add(s.cfg.MaxAge)) {
		return ulid.ULID{}, invalidToken("token past max age")
	}

	// Authentication succeeds even if the bookkeeping update fails.
	_ = s.tokens.UpdateLastUsed(ctx, token.ID, s.now()) //nolint:errcheck // Best effort

	return token.AccountID, nil
}

// Logout revokes the presented token only; other sessions of the same
// account stay live. The revocation is durable before this returns.
func (s *SessionService) Logout(ctx context.Context, plaintext string) error {
	token, err := s.lookup(ctx, plaintext)
	if err != nil {
		return err
	}

	if err := s.tokens.Revoke(ctx, token.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return invalidToken("token already gone")
		}
		return oops.Code("AUTH_LOGOUT_FAILED").With("operation", "revoke token").Wrap(err)
	}

	s.logger.Info("opaque token revoked", "token_id", token.ID.String())
	return nil
}

// LogoutAll revokes every token owned by the account.
func (s *SessionService) LogoutAll(ctx context.Context, accountID ulid.ULID) error {
	if err := s.tokens.RevokeAllForAccount(ctx, accountID); err != nil {
		return oops.Code("AUTH_LOGOUT_FAILED").With("operation", "revoke all tokens").Wrap(err)
	}

	s.logger.Info("all opaque tokens revoked", "account_id", accountID.String())
	return nil
}

// Sessions lists the account's tokens, newest first, revoked ones
// included so clients can show a full device history.
func (s *SessionService) Sessions(ctx context.Context, accountID ulid.ULID) ([]*Token, error) {
	tokens, err := s.tokens.GetByAccount(ctx, accountID)
	if err != nil {
		return nil, oops.Code("TOKEN_LOOKUP_FAILED").With("operation", "list account tokens").Wrap(err)
	}
	return tokens, nil
}

// PruneExpired removes tokens past the max-age policy. A no-op when no
// max age is configured, since tokens then never age out.
func (s *SessionService) PruneExpired(ctx context.Context) (int64, error) {
	if s.cfg.MaxAge <= 0 {
		return 0, nil
	}
	removed, err := s.tokens.DeleteOlderThan(ctx, s.now().Add(-s.cfg.MaxAge))
	if err != nil {
		return 0, oops.Code("TOKEN_PRUNE_FAILED").With("operation", "delete aged tokens").Wrap(err)
	}
	return removed, nil
}

func (s *SessionService) lookup(ctx context.Context, plaintext string) (*Token, error) {
	token, err := s.tokens.GetByTokenHash(ctx, HashOpaqueToken(plaintext))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, invalidToken("token unknown")
		}
		return nil, oops.Code("TOKEN_LOOKUP_FAILED").With("operation", "get token by hash").Wrap(err)
	}
	return token, nil
}

// Compile-time interface check.
var _ Authenticator = (*SessionService)(nil)
