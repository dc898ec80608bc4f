// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package auth

import (
	"context"
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Validation constraints for account fields.
const (
	MinPasswordLength    = 8
	MaxDisplayNameLength = 100
	MaxEmailLength       = 254
)

// emailRegex is deliberately loose: one @, no whitespace, a dot in the
// domain part. Deliverability is the mail system's problem, not ours.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Account represents a registered account. The email is the unique
// identifier; uniqueness is case-insensitive and enforced by the
// repository, not here.
type Account struct {
	ID              ulid.ULID
	Email           string
	DisplayName     string
	PasswordHash    string
	ProfileImageRef *string // blob storage reference, nil if never set
	FailedAttempts  int
	LockedUntil     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewAccount creates a validated Account. The password must already be
// hashed; this constructor never sees plaintext.
func NewAccount(email, displayName, passwordHash string, profileImageRef *string) (*Account, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidateDisplayName(displayName); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code("AUTH_VALIDATION").With("field", "password").Errorf("password hash cannot be empty")
	}

	now := time.Now()
	return &Account{
		ID:              ulid.Make(),
		Email:           email,
		DisplayName:     displayName,
		PasswordHash:    passwordHash,
		ProfileImageRef: profileImageRef,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// IsLocked returns true if the account is currently locked out.
func (a *Account) IsLocked() bool {
	return a.LockedUntil != nil && a.LockedUntil.After(time.Now())
}

// RecordFailure increments the failure counter and sets the lockout
// timestamp once the threshold is reached.
func (a *Account) RecordFailure() {
	a.FailedAttempts++
	if a.FailedAttempts >= LockoutThreshold {
		until := time.Now().Add(LockoutDuration)
		a.LockedUntil = &until
	}
	a.UpdatedAt = time.Now()
}

// RecordSuccess resets the failure counter and lockout.
func (a *Account) RecordSuccess() {
	a.FailedAttempts = 0
	a.LockedUntil = nil
	a.UpdatedAt = time.Now()
}

// Lockout policy after repeated login failures.
const (
	LockoutThreshold = 7
	LockoutDuration  = 15 * time.Minute
)

// ValidateEmail validates an account email.
func ValidateEmail(email string) error {
	if email == "" {
		return oops.Code("AUTH_VALIDATION").With("field", "email").Errorf("email cannot be empty")
	}
	if len(email) > MaxEmailLength {
		return oops.Code("AUTH_VALIDATION").With("field", "email").With("max", MaxEmailLength).
			Errorf("email must be at most %d characters", MaxEmailLength)
	}
	if !emailRegex.MatchString(email) {
		return oops.Code("AUTH_VALIDATION").With("field", "email").Errorf("email is not well-formed")
	}
	return nil
}

// ValidateDisplayName validates an account display name.
func ValidateDisplayName(name string) error {
	if name == "" {
		return oops.Code("AUTH_VALIDATION").With("field", "display_name").Errorf("display name cannot be empty")
	}
	if len(name) > MaxDisplayNameLength {
		return oops.Code("AUTH_VALIDATION").With("field", "display_name").With("max", MaxDisplayNameLength).
			Errorf("display name must be at most %d characters", MaxDisplayNameLength)
	}
	return nil
}

// ValidatePassword validates a plaintext password before hashing.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return oops.Code("AUTH_VALIDATION").With("field", "password").With("min", MinPasswordLength).
			Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// AccountRepository manages account persistence. Implementations own the
// email uniqueness invariant: Create and UpdateEmail must serialize on the
// email value so that concurrent duplicates resolve deterministically,
// returning ErrDuplicateEmail to all but one caller.
type AccountRepository interface {
	// Create stores a new account. Returns ErrDuplicateEmail if the email
	// is already registered (case-insensitive).
	Create(ctx context.Context, account *Account) error

	// GetByID retrieves an account by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Account, error)

	// GetByEmail retrieves an account by email (case-insensitive).
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// Update updates an existing account.
	Update(ctx context.Context, account *Account) error

	// UpdateEmail changes the account email. Returns ErrDuplicateEmail if
	// another account already holds the new email.
	UpdateEmail(ctx context.Context, id ulid.ULID, newEmail string) error

	// UpdatePassword updates only the password hash.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error

	// Delete removes an account.
	Delete(ctx context.Context, id ulid.ULID) error
}
