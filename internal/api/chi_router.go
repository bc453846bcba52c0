// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/accessboard/internal/auth"
	"github.com/tomtom215/accessboard/internal/authz"
	"github.com/tomtom215/accessboard/internal/middleware"
)

// Router assembles handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	auth          *auth.Middleware
	authz         *authz.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. authMiddleware and authzMiddleware may be nil
// in tests, which leaves every route open. When authMiddleware is set, rate
// limits key on its trusted-proxy aware client IP.
func NewRouter(handler *Handler, authMiddleware *auth.Middleware, authzMiddleware *authz.Middleware, cfg *ChiMiddlewareConfig) *Router {
	if cfg == nil {
		cfg = DefaultChiMiddlewareConfig()
	}
	if authMiddleware != nil && cfg.RateLimitKeyFunc == nil {
		cfg.RateLimitKeyFunc = func(r *http.Request) (string, error) {
			return authMiddleware.ClientIP(r), nil
		}
	}
	return &Router{
		handler:       handler,
		auth:          authMiddleware,
		authz:         authzMiddleware,
		chiMiddleware: NewChiMiddleware(cfg),
	}
}

// protect adds authentication then authorization to a route group.
func (router *Router) protect(r chi.Router) {
	if router.auth != nil {
		r.Use(router.auth.Handler)
	}
	if router.authz != nil {
		r.Use(router.authz.Handler)
	}
}

// SetupChi builds the HTTP handler for all routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()
	h := router.handler
	mw := router.chiMiddleware

	// Request IDs first so every later log line carries them.
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusNotFound, "NOT_FOUND", "Resource not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		// Health probes stay unauthenticated for orchestrators.
		r.Route("/health", func(r chi.Router) {
			r.Use(mw.RateLimitHealth())
			r.Get("/", h.Health)
			r.Get("/live", h.HealthLive)
			r.Get("/ready", h.HealthReady)
		})

		if router.auth != nil {
			r.With(mw.RateLimitLogin()).Post("/auth/login", router.auth.Login)
		}

		r.Group(func(r chi.Router) {
			router.protect(r)

			r.Route("/access", func(r chi.Router) {
				r.Use(mw.RateLimitAnalytics())
				r.Get("/comparative", h.AccessComparative)
				r.Get("/day", h.AccessDay)
				r.Get("/average/weekdays", h.AccessWeekdayAverage)
				r.Get("/average/all", h.AccessAllDaysAverage)
			})

			r.Route("/import", func(r chi.Router) {
				r.With(mw.RateLimitImport()).Post("/", h.Import)
				r.Group(func(r chi.Router) {
					r.Use(mw.RateLimit())
					r.Get("/stats", h.ImportStats)
					r.Get("/history", h.ImportHistory)
				})
			})

			r.With(mw.RateLimitWebSocket()).Get("/ws", h.WebSocket)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	return r
}
