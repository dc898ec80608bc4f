// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Default token lifetimes for the stateless mode.
const (
	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 14 * 24 * time.Hour
)

// MinSigningKeyLength is the minimum HS256 key size in bytes.
const MinSigningKeyLength = 32

// CodecConfig is the immutable configuration injected into TokenCodec.
// There is no ambient key lookup: the signing key arrives here or nowhere.
type CodecConfig struct {
	// SigningKey is the HS256 secret. Must be at least MinSigningKeyLength
	// bytes.
	SigningKey []byte

	// Issuer is stamped into and required from every token.
	Issuer string

	// AccessTTL and RefreshTTL default to DefaultAccessTTL and
	// DefaultRefreshTTL when zero.
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Now overrides the clock. Nil means time.Now. Tests use this to pin
	// expiry boundaries.
	Now func() time.Time
}

// Validate checks that the configuration is usable.
func (c CodecConfig) Validate() error {
	if len(c.SigningKey) < MinSigningKeyLength {
		return oops.Code("CODEC_KEY_TOO_SHORT").
			With("min_bytes", MinSigningKeyLength).
			Errorf("signing key must be at least %d bytes", MinSigningKeyLength)
	}
	if c.Issuer == "" {
		return oops.Code("CODEC_ISSUER_EMPTY").Errorf("issuer cannot be empty")
	}
	return nil
}

// Claims are the JWT claims carried by both token kinds. The account id
// travels in the subject; Refresh marks the longer-lived token that may
// only be exchanged for a new access token, never presented as a bearer
// credential.
type Claims struct {
	jwt.RegisteredClaims
	Refresh bool `json:"rfr,omitempty"`
}

// TokenCodec signs and verifies self-contained access/refresh tokens.
// Verification is a pure computation plus one denylist probe; there is no
// per-request store round-trip, which is the point of this mode. The cost
// is delayed revocation: Revoke only blocks the refresh lineage, and
// access tokens already issued stay valid until their own expiry.
type TokenCodec struct {
	cfg      CodecConfig
	denylist Denylist
	now      func() time.Time
}

// NewTokenCodec creates a TokenCodec from a validated configuration.
func NewTokenCodec(cfg CodecConfig, denylist Denylist) (*TokenCodec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if denylist == nil {
		return nil, oops.Code("CODEC_INVALID_DEPS").Errorf("denylist is required")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &TokenCodec{cfg: cfg, denylist: denylist, now: now}, nil
}

// AccessTTL returns the configured access token lifetime.
func (c *TokenCodec) AccessTTL() time.Duration { return c.cfg.AccessTTL }

// IssueAccessToken mints a signed access token for the account.
func (c *TokenCodec) IssueAccessToken(accountID ulid.ULID) (string, error) {
	return c.issue(accountID, c.cfg.AccessTTL, false)
}

// IssueRefreshToken mints a signed refresh token for the account.
func (c *TokenCodec) IssueRefreshToken(accountID ulid.ULID) (string, error) {
	return c.issue(accountID, c.cfg.RefreshTTL, true)
}

func (c *TokenCodec) issue(accountID ulid.ULID, ttl time.Duration, refresh bool) (string, error) {
	if accountID.Compare(ulid.ULID{}) == 0 {
		return "", oops.Code("CODEC_INVALID_ACCOUNT").Errorf("account ID cannot be zero")
	}

	now := c.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.cfg.Issuer,
			Subject:   accountID.String(),
			ID:        ulid.Make().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Refresh: refresh,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.cfg.SigningKey)
	if err != nil {
		return "", oops.Code("CODEC_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// Verify resolves an access token to its account id and token id.
// Bad signature, malformed structure, expiry, wrong issuer, and
// refresh-token misuse all collapse to ErrInvalidToken; the oops context
// carries the sub-reason for internal logs only.
func (c *TokenCodec) Verify(_ context.Context, token string) (ulid.ULID, string, error) {
	claims, err := c.parse(token)
	if err != nil {
		return ulid.ULID{}, "", err
	}
	if claims.Refresh {
		return ulid.ULID{}, "", invalidToken("refresh token presented as bearer credential")
	}

	accountID, err := ulid.Parse(claims.Subject)
	if err != nil {
		return ulid.ULID{}, "", invalidToken("unparsable subject")
	}
	return accountID, claims.ID, nil
}

// Refresh validates a refresh token and mints a new access token for the
// same account. The refresh token itself is NOT rotated: one refresh token
// per login, reusable until logout or expiry.
func (c *TokenCodec) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := c.parse(refreshToken)
	if err != nil {
		return "", err
	}
	if !claims.Refresh {
		return "", invalidToken("access token presented for refresh")
	}

	revoked, err := c.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return "", oops.Code("DENYLIST_CHECK_FAILED").With("operation", "check denylist").Wrap(err)
	}
	if revoked {
		return "", invalidToken("refresh token revoked")
	}

	accountID, err := ulid.Parse(claims.Subject)
	if err != nil {
		return "", invalidToken("unparsable subject")
	}
	return c.IssueAccessToken(accountID)
}

// Revoke records the refresh token's id in the denylist until the token
// would have expired anyway, which bounds denylist retention. Previously
// issued access tokens remain valid until their own expiry; that bounded
// blast radius is the documented trade-off of the stateless mode, not a
// bug.
func (c *TokenCodec) Revoke(ctx context.Context, refreshToken string) error {
	claims, err := c.parse(refreshToken)
	if err != nil {
		return err
	}
	if !claims.Refresh {
		return invalidToken("access token presented for logout")
	}

	if err := c.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return oops.Code("DENYLIST_REVOKE_FAILED").With("operation", "record revocation").Wrap(err)
	}
	return nil
}

func (c *TokenCodec) parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return c.cfg.SigningKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, invalidToken(err.Error())
	}
	if !parsed.Valid || claims.ID == "" {
		return nil, invalidToken("missing token id")
	}
	return claims, nil
}

// invalidToken wraps ErrInvalidToken with the internal sub-reason attached
// as oops context. The reason is for logs; it never reaches a response.
func invalidToken(reason string) error {
	return oops.Code("TOKEN_INVALID").With("reason", reason).Wrap(ErrInvalidToken)
}
