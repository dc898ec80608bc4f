// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/oklog/ulid/v2"
)

// Authenticator resolves a bearer credential to an account id. Both
// SessionService and JWTService satisfy it, so Guard does not know which
// trust model is wired in.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (ulid.ULID, error)
}

// Guard returns middleware that protects routes behind bearer
// authentication. The resolved account id is stored in the request
// context for handlers to read via AccountIDFromContext.
//
// Every failure answers the same bare 401: whether the token was missing,
// malformed, expired, or revoked is recorded in logs and metrics but never
// disclosed to the caller.
func Guard(authn Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				RecordVerification(VerifyMissing)
				unauthorized(w)
				return
			}

			accountID, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				RecordVerification(VerifyRejected)
				logger.Warn("bearer token rejected",
					"path", r.URL.Path,
					"error", err,
				)
				unauthorized(w)
				return
			}

			RecordVerification(VerifyOK)
			next.ServeHTTP(w, r.WithContext(WithAccountID(r.Context(), accountID)))
		})
	}
}

// BearerToken extracts the bearer credential from the Authorization
// header. Refresh tokens never travel here; they arrive only in the body
// of the refresh operation, so the two token kinds cannot be confused.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}
