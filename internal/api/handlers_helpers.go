// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package api

import (
	"fmt"
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/accessboard/internal/logging"
	"github.com/tomtom215/accessboard/internal/models"
	"github.com/tomtom215/accessboard/internal/validation"
)

// sanitizeLogValue escapes control characters so request-derived values
// cannot forge log lines.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// generateETag hashes the response payload with FNV-1a.
func generateETag(data []byte) string {
	h := fnv.New64a()
	_, _ = h.Write(data)
	return `"` + strconv.FormatUint(h.Sum64(), 16) + `"`
}

// respondJSON writes response with status. Successful GET responses carry an
// ETag computed over the data only, so the per-response timestamp does not
// defeat revalidation, and a matching If-None-Match yields 304.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Vary", "Accept-Encoding")

	if status == http.StatusOK && response.Data != nil && r != nil && r.Method == http.MethodGet {
		payload, err := json.Marshal(response.Data)
		if err != nil {
			logging.Error().Err(err).Msg("Failed to marshal response data")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		etag := generateETag(payload)
		w.Header().Set("ETag", etag)
		if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		response.Data = json.RawMessage(payload)
	}

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess wraps data in a success envelope. Cached responses report
// a query time of zero.
func respondSuccess(w http.ResponseWriter, r *http.Request, data interface{}, start time.Time, cached bool) {
	meta := models.Metadata{Timestamp: time.Now(), Cached: cached}
	if !cached {
		meta.QueryTimeMS = time.Since(start).Milliseconds()
	}
	respondJSON(w, r, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: meta,
	})
}

// respondError sends an error envelope. err, when set, is logged with the
// request's correlation ID and never sent to the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		logger := logging.Ctx(r.Context())
		event := logger.Warn()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.Str("code", sanitizeLogValue(code)).
			Str("error", sanitizeLogValue(err.Error())).
			Str("path", sanitizeLogValue(r.URL.Path)).
			Msg("API error")
	}

	respondJSON(w, r, status, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondAPIError sends a prepared APIError with its details.
func respondAPIError(w http.ResponseWriter, r *http.Request, status int, apiErr *models.APIError) {
	respondJSON(w, r, status, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error:    apiErr,
	})
}

// validateRequest runs the struct validator and converts failures into a
// VALIDATION_ERROR payload.
func validateRequest(v interface{}) *models.APIError {
	if errs := validation.ValidateStruct(v); errs != nil {
		return errs.ToAPIError()
	}
	return nil
}

// parseIntQuery reads an integer query parameter. A missing parameter yields
// defaultValue; a present but non-integer value is a validation error rather
// than a silent fallback.
func parseIntQuery(r *http.Request, key string, defaultValue int) (int, *models.APIError) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &models.APIError{
			Code:    "VALIDATION_ERROR",
			Message: fmt.Sprintf("%s must be an integer", key),
			Details: map[string]interface{}{
				"field": key,
				"tag":   "integer",
				"value": raw,
			},
		}
	}
	return value, nil
}
