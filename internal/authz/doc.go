// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

/*
Package authz decides what each role may do, using a Casbin RBAC model.

The built-in policy has two roles:

	viewer  read   /api/v1/access/*, /api/v1/import/stats,
	               /api/v1/import/history, /api/v1/ws
	admin   write  /api/v1/import       (and inherits viewer)

A CSV policy file (AUTHZ_POLICY_PATH) replaces the built-in rules. Decisions
are cached per role, object and action for a short TTL and counted in
Prometheus.
*/
package authz
