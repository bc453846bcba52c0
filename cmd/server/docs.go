// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

// Swagger general API information for swag init -g cmd/server/docs.go.
//
// @title Accessboard API
// @version 1.0
// @description Access-count dashboard over 30-minute buckets in a fixed business time zone.
// @description
// @description ## Views
// @description
// @description - **Comparative**: today against the two previous days, with per-slot deltas
// @description - **Day**: the 48 slots of any single date
// @description - **Averages**: weekday-only or all-days averages over the last N weeks
// @description
// @description ## Authentication
// @description
// @description Read endpoints are public. Imports require the admin role, via Basic Auth
// @description or a bearer token from `/api/v1/auth/login` depending on `AUTH_MODE`.
// @description
// @description ## Error Responses
// @description
// @description ```json
// @description {
// @description   "status": "error",
// @description   "error": {"code": "VALIDATION_ERROR", "message": "date is required"},
// @description   "metadata": {"timestamp": "2026-01-15T12:34:56Z"}
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/accessboard/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:3857
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.basic BasicAuth
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token from /api/v1/auth/login (AUTH_MODE=jwt).
//
// @tag.name Access
// @tag.description Dashboard views over 30-minute access buckets
//
// @tag.name Import
// @tag.description Export upload, import statistics and run history
//
// @tag.name Health
// @tag.description Liveness and readiness probes
//
// @tag.name Auth
// @tag.description Token login
//
// @tag.name Realtime
// @tag.description WebSocket notifications when an import commits
package main
