// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/accessboard/internal/metrics"
	"github.com/tomtom215/accessboard/internal/models"
)

const healthPingTimeout = 2 * time.Second

// uptime returns the seconds since the handler was created and exports
// them as accessboard_app_uptime_seconds.
func (h *Handler) uptime() float64 {
	seconds := time.Since(h.startTime).Seconds()
	metrics.AppUptime.Set(seconds)
	return seconds
}

func (h *Handler) databaseConnected(ctx context.Context) bool {
	if h.db == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()
	return h.db.Ping(ctx) == nil
}

// Health reports overall status, storage connectivity and the time of the
// last successful import.
//
// @Summary Detailed health
// @Tags Health
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthStatus}
// @Router /api/v1/health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.databaseConnected(r.Context())

	status := "healthy"
	if !dbConnected {
		status = "degraded"
	}

	var lastImport *time.Time
	if h.importer != nil {
		if run := h.importer.LastRun(); run != nil && run.Success {
			finished := run.FinishedAt
			lastImport = &finished
		}
	}

	respondJSON(w, r, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.HealthStatus{
			Status:            status,
			Version:           h.config.Version,
			DatabaseConnected: dbConnected,
			LastImport:        lastImport,
			Uptime:            h.uptime(),
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// HealthLive answers 200 while the process is running.
//
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} models.APIResponse
// @Router /api/v1/health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": h.uptime(),
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// HealthReady answers 200 only when storage is reachable.
//
// @Summary Readiness probe
// @Tags Health
// @Produce json
// @Success 200 {object} models.APIResponse "Ready"
// @Failure 503 {object} models.APIResponse "Storage unreachable"
// @Router /api/v1/health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ready := h.databaseConnected(r.Context())

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, r, statusCode, &models.APIResponse{
		Status: status,
		Data: map[string]interface{}{
			"database_connected": ready,
			"ready_to_serve":     ready,
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}
