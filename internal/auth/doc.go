// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

// Package auth provides the authentication core for Inkwell.
//
// # Domain Types
//
// Domain types (Account, Token) should be created using their
// constructors:
//   - NewAccount - creates an Account with validated email and display name
//   - NewToken - creates an opaque Token bound to an account
//
// Direct struct initialization bypasses validation and may create invalid
// state. Repository implementations receive pre-validated types from these
// constructors.
//
// # Services
//
// Two trust models share one credential core:
//   - SessionService - stateful opaque tokens; revocation is immediate
//     because every verification is a store lookup
//   - JWTService - stateless signed tokens with a refresh pair; logout
//     denylists the refresh lineage while access tokens already issued
//     remain valid until their own expiry
//
// Both satisfy Authenticator, which Guard uses to protect HTTP routes.
// Services are created with New*Service constructors that validate
// dependencies.
package auth
