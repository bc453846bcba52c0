// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tomtom215/accessboard/internal/auth"
)

func TestAuthorizeRequest(t *testing.T) {
	t.Parallel()

	mw := NewMiddleware(newTestEnforcer(t))
	ok := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }

	tests := []struct {
		name   string
		method string
		path   string
		claims *auth.Claims
		want   int
	}{
		{"no claims", http.MethodGet, "/api/v1/access/day", nil, http.StatusUnauthorized},
		{"anonymous read", http.MethodGet, "/api/v1/access/day", &auth.Claims{Username: "anonymous", Role: auth.RoleViewer}, http.StatusNoContent},
		{"anonymous import", http.MethodPost, "/api/v1/import", &auth.Claims{Username: "anonymous", Role: auth.RoleViewer}, http.StatusUnauthorized},
		{"named viewer import", http.MethodPost, "/api/v1/import", &auth.Claims{Username: "bob", Role: auth.RoleViewer}, http.StatusForbidden},
		{"admin import", http.MethodPost, "/api/v1/import", &auth.Claims{Username: "admin", Role: auth.RoleAdmin}, http.StatusNoContent},
		{"admin read", http.MethodGet, "/api/v1/import/history", &auth.Claims{Username: "admin", Role: auth.RoleAdmin}, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.claims != nil {
				req = req.WithContext(auth.WithClaims(req.Context(), tt.claims))
			}
			rec := httptest.NewRecorder()
			mw.Handler(http.HandlerFunc(ok)).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestMethodToAction(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		http.MethodGet:     ActionRead,
		http.MethodHead:    ActionRead,
		http.MethodOptions: ActionRead,
		http.MethodPost:    ActionWrite,
		http.MethodDelete:  ActionWrite,
	}
	for method, want := range tests {
		if got := methodToAction(method); got != want {
			t.Errorf("methodToAction(%s) = %q, want %q", method, got, want)
		}
	}
}
