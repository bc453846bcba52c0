// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/accessboard/internal/logging"
	"github.com/tomtom215/accessboard/internal/models"
	"github.com/tomtom215/accessboard/internal/validation"
)

const importSourceAPI = "api"

// Import replaces all stored buckets with the aggregation of the posted
// export. The replace is atomic: on failure the previous data stays.
//
// @Summary Import an access export
// @Description Body is a JSON array of access records, or an object with the records under "data". Every record needs _id, userId, sequenceNumber and accessDay; a record missing any of them rejects the whole batch. An empty array clears all data.
// @Tags Import
// @Accept json
// @Produce json
// @Param export body []accessimport.AccessRecord true "Access records"
// @Success 200 {object} models.APIResponse{data=models.ImportResult}
// @Failure 400 {object} models.APIResponse "Malformed export"
// @Failure 401 {object} models.APIResponse "Authentication required"
// @Failure 403 {object} models.APIResponse "Admin role required"
// @Failure 409 {object} models.APIResponse "Import already running"
// @Failure 413 {object} models.APIResponse "Body too large"
// @Failure 500 {object} models.APIResponse "Import rolled back"
// @Failure 503 {object} models.APIResponse "Storage unavailable"
// @Security BasicAuth
// @Security BearerAuth
// @Router /api/v1/import [post]
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.ContentLength > h.config.MaxBodyBytes {
		respondError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Import body exceeds the configured limit", nil)
		return
	}
	if h.importer.IsRunning() {
		respondError(w, r, http.StatusConflict, "IMPORT_IN_PROGRESS", "Another import is already running", nil)
		return
	}

	// One byte of headroom lets the importer detect and report oversized
	// chunked bodies itself.
	body := http.MaxBytesReader(w, r.Body, h.config.MaxBodyBytes+1)

	result, err := h.importer.Import(r.Context(), importSourceAPI, body)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Int("total_records", result.TotalRecords).
		Int("processed_intervals", result.ProcessedIntervals).
		Dur("duration", time.Since(start)).
		Msg("Import via API completed")

	respondSuccess(w, r, result, start, false)
}

// ImportStats reports how much data is stored and when it was last replaced.
//
// @Summary Import statistics
// @Description Degrades to zero totals and null range when storage is unavailable.
// @Tags Import
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.ImportStats}
// @Router /api/v1/import/stats [get]
func (h *Handler) ImportStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, r, h.dashboard.ImportStats(r.Context()), start, false)
}

// ImportHistory lists recent import attempts, newest first.
//
// @Summary Import history
// @Tags Import
// @Produce json
// @Param limit query int false "Maximum entries (1-100)" default(20)
// @Success 200 {object} models.APIResponse{data=[]models.ImportRun}
// @Failure 400 {object} models.APIResponse "Invalid limit"
// @Router /api/v1/import/history [get]
func (h *Handler) ImportHistory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, apiErr := parseIntQuery(r, "limit", h.config.HistoryLimit)
	if apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}
	req := validation.HistoryRequest{Limit: limit}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}

	runs, err := h.importer.History(r.Context(), req.Limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if runs == nil {
		runs = []models.ImportRun{}
	}
	respondSuccess(w, r, runs, start, false)
}
