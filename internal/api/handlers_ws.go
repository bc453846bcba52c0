// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package api

import (
	"net/http"

	"github.com/tomtom215/accessboard/internal/websocket"
)

// WebSocket upgrades the connection and subscribes it to import_completed
// notifications.
//
// @Summary Live update channel
// @Description Pushes {"type":"import_completed","data":{...}} after every successful import. The server pings every 54s.
// @Tags Realtime
// @Success 101 {string} string "Switching Protocols"
// @Failure 503 {object} models.APIResponse "Live updates disabled"
// @Router /api/v1/ws [get]
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil || h.upgrader == nil {
		respondError(w, r, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Live updates are not available", nil)
		return
	}
	websocket.ServeWS(h.hub, h.upgrader, w, r)
}
