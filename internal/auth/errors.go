// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package auth

import "errors"

// Sentinel errors shared across repositories and services. Services wrap
// them with oops codes and context; callers test with errors.Is.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when creating or updating an account
	// would violate email uniqueness.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials is returned on login failure. It is deliberately
	// the same value whether the email is unknown or the password is wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidToken is returned when a token cannot be resolved to an
	// account. Malformed, expired, and revoked all collapse to this value
	// at the boundary; the wrapping error carries the sub-reason for logs.
	ErrInvalidToken = errors.New("invalid token")

	// ErrAccountLocked is returned when login is refused due to repeated
	// failures.
	ErrAccountLocked = errors.New("account temporarily locked")
)
