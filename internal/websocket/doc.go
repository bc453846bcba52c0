// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

/*
Package websocket pushes live notifications to open dashboards.

A Hub owns the set of connected clients. Each Client runs two goroutines:
readPump answers application pings and detects disconnects, writePump is the
only writer and also sends protocol pings every 54 seconds.

Messages are JSON envelopes {"type": ..., "data": ...}:

  - import_completed: an import committed; data is models.ImportCompletedEvent.
    Dashboards refetch their views when they receive it.
  - ping / pong: client keepalive.

Broadcasts never block the caller. When the hub queue is full the message is
dropped, and a client whose own buffer is full is disconnected.

Usage:

	hub := websocket.NewHub()
	tree.AddMessagingService(services.NewHubService(hub))

	upgrader := websocket.NewUpgrader(cfg.Security.CORSOrigins)
	r.Get("/api/v1/ws", func(w http.ResponseWriter, r *http.Request) {
	    websocket.ServeWS(hub, &upgrader, w, r)
	})
*/
package websocket
