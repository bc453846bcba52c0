// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

/*
Package auth authenticates dashboard requests.

Three modes are selected with AUTH_MODE:

  - none: every request acts as the admin. Development only; config
    validation rejects it in production.
  - basic: HTTP Basic credentials checked against ADMIN_USERNAME and a bcrypt
    hash of ADMIN_PASSWORD.
  - jwt: HS256 bearer tokens (or the "token" cookie) issued by the login
    handler for the admin credentials.

Requests without credentials are served as an anonymous viewer, so the
read-only dashboard stays public while importing requires the admin role.
Invalid credentials are rejected with 401, and repeated failures from one
client IP are throttled by FailureLimiter.

The resolved identity is stored as *Claims in the request context; the authz
package decides what each role may do.

Example:

	mw, err := auth.NewMiddleware(&cfg.Security)
	if err != nil {
	    return err
	}
	r.Use(mw.Handler)
*/
package auth
