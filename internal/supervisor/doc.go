// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

/*
Package supervisor runs the long-lived parts of Accessboard under a suture v4
tree.

	root ("accessboard")
	├── data-layer
	│   └── startup-import          (if IMPORT_FILE_PATH and IMPORT_AUTO_START)
	├── messaging-layer
	│   ├── nats-embedded           (if EVENTS_EMBEDDED_SERVER)
	│   ├── event-bus
	│   └── websocket-hub
	└── api-layer
	    ├── auth-failure-limiter
	    └── http-server

Each layer restarts its own services with backoff, so a crashing event
handler does not take the HTTP server down. Supervisor events are logged
through sutureslog on the zerolog-backed slog handler.
*/
package supervisor
