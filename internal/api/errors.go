// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/accessboard/internal/models"
)

// errorStatus maps a service error to the HTTP status, error code and client
// message of the response.
func errorStatus(err error) (status int, code, message string) {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Import body exceeds the configured limit"
	case errors.Is(err, models.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Storage is temporarily unavailable"
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_INPUT", err.Error()
	case errors.Is(err, models.ErrImportInProgress):
		return http.StatusConflict, "IMPORT_IN_PROGRESS", "Another import is already running"
	case errors.Is(err, models.ErrImportTransaction):
		return http.StatusInternalServerError, "IMPORT_TRANSACTION_FAILED", "Import failed and was rolled back; previous data is intact"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "TIMEOUT", "Request timed out"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"
	}
}

// respondServiceError logs err and answers with its mapped status.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := errorStatus(err)
	respondError(w, r, status, code, message, err)
}
