// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared by all handlers; it caches struct
// metadata and is safe for concurrent use. Query parameters are parsed into
// the request structs in requests.go and validated before any storage call:
//
//	req := validation.AverageRequest{Weeks: 4}
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    // 400 VALIDATION_ERROR
//	}
//
// Errors name the query parameter (from the `query` tag) rather than the Go
// field, and translate to the VALIDATION_ERROR envelope via ToAPIError.
package validation
