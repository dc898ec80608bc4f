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

// dummyPasswordDigest is verified against when a login email is unknown,
// so the unknown-email and wrong-password paths do the same argon2 work
// and answer in the same approximate time. This is NOT a real credential;
// it can never match any password.
//
//nolint:gosec // G101: intentionally fake digest for enumeration resistance, not a credential.
const dummyPasswordDigest = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// ImageResolver turns a stored profile-image reference into a retrievable
// address. Satisfied by the blob storage collaborator; nil disables
// resolution and Profile returns an empty URL.
type ImageResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// Service is the credential core shared by both token modes: registration,
// credential verification, and profile projection. Token issuance lives in
// SessionService and JWTService.
type Service struct {
	accounts AccountRepository
	hasher   PasswordHasher
	images   ImageResolver
	logger   *slog.Logger
}

// NewService creates a Service. images may be nil.
func NewService(accounts AccountRepository, hasher PasswordHasher, images ImageResolver) (*Service, error) {
	return NewServiceWithLogger(accounts, hasher, images, slog.Default())
}

// NewServiceWithLogger creates a Service with an explicit logger.
func NewServiceWithLogger(accounts AccountRepository, hasher PasswordHasher, images ImageResolver, logger *slog.Logger) (*Service, error) {
	if accounts == nil {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("accounts repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("logger is required")
	}
	return &Service{accounts: accounts, hasher: hasher, images: images, logger: logger}, nil
}

// RegisterParams are the inputs to Register. ProfileImageRef is a blob
// storage reference produced by the upload collaborator, not raw bytes.
type RegisterParams struct {
	Email           string
	DisplayName     string
	Password        string
	ProfileImageRef *string
}

// Register creates a new account. The password is hashed before it goes
// anywhere near the repository and is never logged. Returns
// ErrDuplicateEmail when the email is already registered, including when a
// concurrent registration wins the race.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*Account, error) {
	if err := ValidatePassword(params.Password); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").With("operation", "hash password").Wrap(err)
	}

	account, err := NewAccount(params.Email, params.DisplayName, digest, params.ProfileImageRef)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, err
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").With("operation", "create account").Wrap(err)
	}

	s.logger.Info("account registered", "account_id", account.ID.String())
	return account, nil
}

// verifyCredentials authenticates an email/password pair. The unknown-email
// and wrong-password outcomes are the same ErrInvalidCredentials value, and
// both paths run one password verification so response time does not
// betray which one happened. The lockout check runs AFTER verification for
// the same reason.
func (s *Service) verifyCredentials(ctx context.Context, email, password string) (*Account, error) {
	account, lookupErr := s.accounts.GetByEmail(ctx, email)

	targetDigest := dummyPasswordDigest
	accountExists := false

	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, oops.Code("AUTH_LOGIN_FAILED").With("operation", "get account by email").Wrap(lookupErr)
		}
	} else {
		targetDigest = account.PasswordHash
		accountExists = true
	}

	valid, verifyErr := s.hasher.Verify(password, targetDigest)
	if verifyErr != nil {
		return nil, oops.Code("AUTH_LOGIN_FAILED").With("operation", "verify password").Wrap(verifyErr)
	}

	if !accountExists || !valid {
		if accountExists {
			account.RecordFailure()
			_ = s.accounts.Update(ctx, account) //nolint:errcheck // Best effort
		}
		reason := "unknown email"
		if accountExists {
			reason = "wrong password"
		}
		return nil, oops.Code("AUTH_INVALID_CREDENTIALS").With("reason", reason).Wrap(ErrInvalidCredentials)
	}

	if account.IsLocked() {
		return nil, oops.Code("AUTH_ACCOUNT_LOCKED").With("locked_until", account.LockedUntil).Wrap(ErrAccountLocked)
	}

	account.RecordSuccess()

	// Re-hash on login if the stored digest predates current parameters.
	if s.hasher.NeedsUpgrade(account.PasswordHash) {
		if digest, hashErr := s.hasher.Hash(password); hashErr == nil {
			account.PasswordHash = digest
		}
	}

	// Login succeeds even if the bookkeeping update fails.
	_ = s.accounts.Update(ctx, account) //nolint:errcheck // Best effort

	return account, nil
}

// AccountView is the outward projection of an Account. The password hash
// is excluded by construction: this type has no field for it, so no
// marshaling convention can leak it.
type AccountView struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	DisplayName     string    `json:"display_name"`
	ProfileImageURL string    `json:"profile_image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Profile returns the view of an authenticated account, resolving the
// profile-image reference to a retrievable address via the blob
// collaborator.
func (s *Service) Profile(ctx context.Context, accountID ulid.ULID) (*AccountView, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, oops.Code("AUTH_PROFILE_FAILED").With("operation", "get account by id").Wrap(err)
	}

	view := &AccountView{
		ID:          account.ID.String(),
		Email:       account.Email,
		DisplayName: account.DisplayName,
		CreatedAt:   account.CreatedAt,
	}

	if account.ProfileImageRef != nil && s.images != nil {
		url, resolveErr := s.images.Resolve(ctx, *account.ProfileImageRef)
		if resolveErr != nil {
			// The profile is still useful without the image address.
			s.logger.Warn("profile image resolution failed",
				"account_id", account.ID.String(),
				"error", resolveErr,
			)
		} else {
			view.ProfileImageURL = url
		}
	}

	return view, nil
}

// ChangeEmail moves the account to a new unique email. Returns
// ErrDuplicateEmail when another live account already holds it.
func (s *Service) ChangeEmail(ctx context.Context, accountID ulid.ULID, newEmail string) error {
	if err := ValidateEmail(newEmail); err != nil {
		return err
	}
	if err := s.accounts.UpdateEmail(ctx, accountID, newEmail); err != nil {
		if errors.Is(err, ErrDuplicateEmail) || errors.Is(err, ErrNotFound) {
			return err
		}
		return oops.Code("AUTH_CHANGE_EMAIL_FAILED").With("operation", "update email").Wrap(err)
	}
	return nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, accountID ulid.ULID, current, next string) error {
	if err := ValidatePassword(next); err != nil {
		return err
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return oops.Code("AUTH_CHANGE_PASSWORD_FAILED").With("operation", "get account by id").Wrap(err)
	}

	valid, err := s.hasher.Verify(current, account.PasswordHash)
	if err != nil {
		return oops.Code("AUTH_CHANGE_PASSWORD_FAILED").With("operation", "verify password").Wrap(err)
	}
	if !valid {
		return oops.Code("AUTH_INVALID_CREDENTIALS").With("reason", "wrong current password").Wrap(ErrInvalidCredentials)
	}

	digest, err := s.hasher.Hash(next)
	if err != nil {
		return oops.Code("AUTH_CHANGE_PASSWORD_FAILED").With("operation", "hash password").Wrap(err)
	}

	if err := s.accounts.UpdatePassword(ctx, accountID, digest); err != nil {
		return oops.Code("AUTH_CHANGE_PASSWORD_FAILED").With("operation", "update password").Wrap(err)
	}
	return nil
}
