// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

/*
Package api provides the HTTP interface of Accessboard.

Routes are served by a chi router (see SetupChi) and grouped under /api/v1:

	POST /api/v1/import                     replace stored buckets from an export
	GET  /api/v1/import/stats               totals, covered date range, last import
	GET  /api/v1/import/history             recent import attempts
	GET  /api/v1/access/comparative         today, yesterday, day before, deltas
	GET  /api/v1/access/day                 48 slots of one day
	GET  /api/v1/access/average/weekdays    Monday-Friday slot average
	GET  /api/v1/access/average/all         all-days slot average
	GET  /api/v1/ws                         WebSocket push channel
	GET  /api/v1/health[/live|/ready]       health probes
	POST /api/v1/auth/login                 token login (jwt mode)

/metrics exposes Prometheus metrics and /swagger/* serves the OpenAPI UI.

Every JSON body uses the models.APIResponse envelope. Handlers map the
sentinel errors from the models package to HTTP status codes in one place
(see errorStatus), so storage and import code never deal with HTTP.

Middleware order on the /api/v1 group is: rate limit, security headers,
Prometheus metrics, authentication, authorization. Reads are open to the
anonymous viewer role; POST /api/v1/import requires the admin role.
*/
package api
