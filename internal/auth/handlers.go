// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package auth

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/accessboard/internal/logging"
	"github.com/tomtom215/accessboard/internal/models"
)

const maxLoginBodyBytes = 4 << 10

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
}

// Login godoc
// @Summary Exchange admin credentials for a token
// @Description Available when AUTH_MODE=jwt. The token is returned in the body and set as an HTTP-only cookie.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Admin credentials"
// @Success 200 {object} models.APIResponse{data=LoginResponse}
// @Failure 400 {object} models.APIResponse
// @Failure 401 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse "Login disabled in this auth mode"
// @Failure 429 {object} models.APIResponse
// @Router /api/v1/auth/login [post]
func (m *Middleware) Login(w http.ResponseWriter, r *http.Request) {
	if m.mode != ModeJWT {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Login is only available in jwt auth mode")
		return
	}

	ip := m.ClientIP(r)
	if m.failures.Blocked(ip) {
		writeError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Too many failed authentication attempts")
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLoginBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "Request body must be a JSON object with username and password")
		return
	}

	if err := m.basic.CheckPassword(req.Username, req.Password); err != nil {
		m.failures.RecordFailure(ip)
		logging.Ctx(r.Context()).Warn().Str("client_ip", ip).Msg("Login failed")
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid credentials")
		return
	}
	m.failures.Reset(ip)

	token, expiresAt, err := m.jwt.GenerateToken(req.Username, RoleAdmin)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to issue token")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	w.Header().Set("Content-Type", "application/json")
	resp := models.APIResponse{
		Status: "success",
		Data: LoginResponse{
			Token:     token,
			ExpiresAt: expiresAt,
			Username:  req.Username,
			Role:      RoleAdmin,
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode login response")
	}
}
