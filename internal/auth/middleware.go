// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package auth

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/accessboard/internal/config"
	"github.com/tomtom215/accessboard/internal/logging"
	"github.com/tomtom215/accessboard/internal/models"
)

// Authentication modes.
const (
	ModeNone  = "none"
	ModeBasic = "basic"
	ModeJWT   = "jwt"
)

type contextKey string

// ClaimsContextKey holds the *Claims of the current request.
const ClaimsContextKey contextKey = "claims"

// tokenCookie is read when no bearer token is present.
const tokenCookie = "token"

// Middleware resolves the caller of every request.
type Middleware struct {
	mode           string
	jwt            *JWTManager
	basic          *BasicAuthManager
	failures       *FailureLimiter
	trustedProxies map[string]bool
}

// NewMiddleware builds the managers the configured mode needs.
func NewMiddleware(cfg *config.SecurityConfig) (*Middleware, error) {
	m := &Middleware{
		mode:           cfg.AuthMode,
		failures:       NewFailureLimiter(DefaultFailureBurst, DefaultFailureInterval),
		trustedProxies: make(map[string]bool, len(cfg.TrustedProxies)),
	}
	for _, p := range cfg.TrustedProxies {
		m.trustedProxies[strings.TrimSpace(p)] = true
	}

	switch cfg.AuthMode {
	case "", ModeNone:
		m.mode = ModeNone
	case ModeBasic:
		basic, err := NewBasicAuthManager(cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			return nil, fmt.Errorf("basic auth: %w", err)
		}
		m.basic = basic
	case ModeJWT:
		jwtManager, err := NewJWTManager(cfg)
		if err != nil {
			return nil, fmt.Errorf("jwt auth: %w", err)
		}
		basic, err := NewBasicAuthManager(cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			return nil, fmt.Errorf("jwt login credentials: %w", err)
		}
		m.jwt = jwtManager
		m.basic = basic
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.AuthMode)
	}
	return m, nil
}

// Mode returns the active authentication mode.
func (m *Middleware) Mode() string {
	return m.mode
}

// FailureLimiter exposes the failed-auth limiter so it can be supervised.
func (m *Middleware) FailureLimiter() *FailureLimiter {
	return m.failures
}

// Handler adapts Authenticate to chi's middleware signature.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return m.Authenticate(next.ServeHTTP)
}

// Authenticate stores the caller's claims in the request context. Requests
// without credentials continue as an anonymous viewer; invalid credentials
// get a 401.
func (m *Middleware) Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.mode == ModeNone {
			next(w, r.WithContext(WithClaims(r.Context(), &Claims{Username: "anonymous", Role: RoleAdmin})))
			return
		}

		ip := m.ClientIP(r)
		authHeader := r.Header.Get("Authorization")
		if !m.hasCredentials(r, authHeader) {
			next(w, r.WithContext(WithClaims(r.Context(), &Claims{Username: "anonymous", Role: RoleViewer})))
			return
		}

		if m.failures.Blocked(ip) {
			writeError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Too many failed authentication attempts")
			return
		}

		claims, err := m.resolve(r, authHeader)
		if err != nil {
			m.failures.RecordFailure(ip)
			logging.Ctx(r.Context()).Warn().
				Err(err).
				Str("client_ip", ip).
				Str("auth_mode", m.mode).
				Msg("Authentication failed")
			if m.mode == ModeBasic {
				w.Header().Set("WWW-Authenticate", m.basic.Challenge())
			}
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid credentials")
			return
		}

		next(w, r.WithContext(WithClaims(r.Context(), claims)))
	}
}

func (m *Middleware) hasCredentials(r *http.Request, authHeader string) bool {
	if authHeader != "" {
		return true
	}
	if m.mode == ModeJWT {
		if c, err := r.Cookie(tokenCookie); err == nil && c.Value != "" {
			return true
		}
	}
	return false
}

func (m *Middleware) resolve(r *http.Request, authHeader string) (*Claims, error) {
	switch m.mode {
	case ModeBasic:
		username, err := m.basic.ValidateHeader(authHeader)
		if err != nil {
			return nil, err
		}
		return &Claims{Username: username, Role: RoleAdmin}, nil
	case ModeJWT:
		token := bearerToken(r, authHeader)
		if token == "" {
			return nil, fmt.Errorf("%w: expected bearer token", ErrInvalidToken)
		}
		return m.jwt.ValidateToken(token)
	}
	return nil, fmt.Errorf("unsupported auth mode %q", m.mode)
}

func bearerToken(r *http.Request, authHeader string) string {
	if authHeader != "" {
		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}
	if c, err := r.Cookie(tokenCookie); err == nil {
		return c.Value
	}
	return ""
}

// RequireRole rejects callers whose role differs from role. Admins pass every
// check.
func RequireRole(role string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}
		if claims.Role != role && claims.Role != RoleAdmin {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
			return
		}
		next(w, r)
	}
}

// WithClaims returns ctx carrying claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsContextKey, claims)
}

// ClaimsFromContext returns the request's claims or nil.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(ClaimsContextKey).(*Claims)
	return claims
}

// ClientIP returns the caller's address. X-Forwarded-For and X-Real-IP are
// honored only when the direct peer is a trusted proxy.
func (m *Middleware) ClientIP(r *http.Request) string {
	remote := r.RemoteAddr
	if host, _, err := net.SplitHostPort(remote); err == nil {
		remote = host
	}
	if !m.trustedProxies[remote] {
		return remote
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}
	return remote
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error:    &models.APIError{Code: code, Message: message},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("Failed to encode auth error")
	}
}
