// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package models

import (
	"time"
)

// APIResponse is the envelope returned by every JSON endpoint.
//
// Status is "success" (see Data) or "error" (see Error).
//
//	{
//	  "status": "success",
//	  "data": [{"hour": 0, "minute": 0, "accessCount": 12}, ...],
//	  "metadata": {"timestamp": "2026-01-10T12:00:00Z", "query_time_ms": 4}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing and cache information.
// QueryTimeMS is 0 and Cached is true when the response came from the cache.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError is a machine-readable error code plus a human-readable message.
//
// Codes used by the service:
//   - VALIDATION_ERROR: invalid query parameters
//   - INVALID_INPUT: malformed import payload or timestamp
//   - STORAGE_UNAVAILABLE: database unreachable or circuit open
//   - IMPORT_TRANSACTION_FAILED: replace rolled back, previous data intact
//   - IMPORT_IN_PROGRESS: another import is running
//   - PAYLOAD_TOO_LARGE: import body exceeds the configured limit
//   - RATE_LIMIT_EXCEEDED: too many requests
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
