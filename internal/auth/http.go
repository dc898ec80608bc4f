// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/samber/oops"

	"github.com/inkwell/inkwell/pkg/errutil"
)

// Handler exposes the auth verbs over HTTP. It is a thin translation
// layer: outcome variants from the services map to status codes and JSON
// bodies, and no authentication logic lives here. Exactly one of jwt or
// sessions is set, depending on the configured token mode.
type Handler struct {
	core     *Service
	jwt      *JWTService
	sessions *SessionService
	logger   *slog.Logger
}

// NewJWTHandler creates a Handler for the stateless mode.
func NewJWTHandler(core *Service, jwt *JWTService, logger *slog.Logger) (*Handler, error) {
	if core == nil || jwt == nil {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("credential core and jwt service are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{core: core, jwt: jwt, logger: logger}, nil
}

// NewSessionHandler creates a Handler for the stateful mode.
func NewSessionHandler(core *Service, sessions *SessionService, logger *slog.Logger) (*Handler, error) {
	if core == nil || sessions == nil {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("credential core and session service are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{core: core, sessions: sessions, logger: logger}, nil
}

// Routes registers the auth endpoints on the mux. The refresh endpoint
// exists only in the stateless mode.
func (h *Handler) Routes(mux *http.ServeMux) {
	guard := Guard(h.authenticator(), h.logger)

	mux.HandleFunc("POST /api/auth/register", h.register)
	mux.HandleFunc("POST /api/auth/login", h.login)
	if h.jwt != nil {
		mux.HandleFunc("POST /api/auth/refresh", h.refresh)
		mux.HandleFunc("POST /api/auth/logout", h.logoutJWT)
	} else {
		mux.Handle("POST /api/auth/logout", guard(http.HandlerFunc(h.logoutSession)))
		mux.Handle("GET /api/auth/sessions", guard(http.HandlerFunc(h.listSessions)))
	}
	mux.Handle("GET /api/auth/profile", guard(http.HandlerFunc(h.profile)))
}

func (h *Handler) authenticator() Authenticator {
	if h.jwt != nil {
		return h.jwt
	}
	return h.sessions
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email           string  `json:"email"`
		DisplayName     string  `json:"display_name"`
		Password        string  `json:"password"`
		ProfileImageRef *string `json:"profile_image_ref"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	account, err := h.core.Register(r.Context(), RegisterParams{
		Email:           in.Email,
		DisplayName:     in.DisplayName,
		Password:        in.Password,
		ProfileImageRef: in.ProfileImageRef,
	})
	if err != nil {
		RecordRegistration("error")
		h.writeOutcome(w, err)
		return
	}

	RecordRegistration("success")
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":    account.ID.String(),
		"email": account.Email,
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	if h.jwt != nil {
		pair, err := h.jwt.Login(r.Context(), in.Email, in.Password)
		if err != nil {
			RecordLogin(loginOutcome(err))
			h.writeOutcome(w, err)
			return
		}
		RecordLogin(LoginSuccess)
		writeJSON(w, http.StatusOK, pair)
		return
	}

	_, plaintext, err := h.sessions.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		RecordLogin(loginOutcome(err))
		h.writeOutcome(w, err)
		return
	}
	RecordLogin(LoginSuccess)
	writeJSON(w, http.StatusOK, map[string]any{"token": plaintext})
}

// refresh exchanges a refresh token for a new access token. The refresh
// token arrives in the body, never in the Authorization header.
func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	access, err := h.jwt.Refresh(r.Context(), in.RefreshToken)
	if err != nil {
		h.writeOutcome(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"access_token": access})
}

func (h *Handler) logoutJWT(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.jwt.Logout(r.Context(), in.RefreshToken); err != nil {
		h.writeOutcome(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) logoutSession(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Scope string `json:"scope"`
	}
	// An empty body means scope "one".
	_ = decodeJSON(r, &in) //nolint:errcheck // Optional body

	if in.Scope == "all" {
		accountID, ok := AccountIDFromContext(r.Context())
		if !ok {
			unauthorized(w)
			return
		}
		if err := h.sessions.LogoutAll(r.Context(), accountID); err != nil {
			h.writeOutcome(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	token, ok := BearerToken(r)
	if !ok {
		unauthorized(w)
		return
	}
	if err := h.sessions.Logout(r.Context(), token); err != nil {
		h.writeOutcome(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// listSessions returns the account's token history, newest first. Token
// hashes never leave the service; only metadata does.
func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	accountID, ok := AccountIDFromContext(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	tokens, err := h.sessions.Sessions(r.Context(), accountID)
	if err != nil {
		h.writeOutcome(w, err)
		return
	}

	type session struct {
		ID         string    `json:"id"`
		Revoked    bool      `json:"revoked"`
		CreatedAt  time.Time `json:"created_at"`
		LastUsedAt time.Time `json:"last_used_at"`
	}
	out := make([]session, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, session{
			ID:         tok.ID.String(),
			Revoked:    tok.Revoked,
			CreatedAt:  tok.CreatedAt,
			LastUsedAt: tok.LastUsedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	accountID, ok := AccountIDFromContext(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	view, err := h.core.Profile(r.Context(), accountID)
	if err != nil {
		h.writeOutcome(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// writeOutcome maps service outcomes to transport responses. Sub-reasons
// stay out of the body: an invalid token is "unauthorized" no matter why.
func (h *Handler) writeOutcome(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDuplicateEmail):
		writeErr(w, http.StatusConflict, "email already registered")
	case errors.Is(err, ErrInvalidCredentials):
		writeErr(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, ErrInvalidToken):
		unauthorized(w)
	case errors.Is(err, ErrAccountLocked):
		writeErr(w, http.StatusForbidden, "account temporarily locked")
	case errors.Is(err, ErrNotFound):
		writeErr(w, http.StatusNotFound, "not found")
	case isValidation(err):
		writeErr(w, http.StatusBadRequest, err.Error())
	default:
		errutil.LogError(h.logger, "auth request failed", err)
		writeErr(w, http.StatusInternalServerError, "internal error")
	}
}

func loginOutcome(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return LoginInvalid
	case errors.Is(err, ErrAccountLocked):
		return LoginLocked
	default:
		return LoginError
	}
}

// isValidation reports whether err carries the field-validation code.
func isValidation(err error) bool {
	if oopsErr, ok := oops.AsOops(err); ok {
		return oopsErr.Code() == "AUTH_VALIDATION"
	}
	return false
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // Response already committed
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}
