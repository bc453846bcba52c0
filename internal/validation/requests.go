// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package validation

// DayRequest holds the query parameters of GET /api/v1/access/day.
type DayRequest struct {
	Date string `query:"date" validate:"required,civildate"`
}

// ComparativeRequest holds the query parameters of GET /api/v1/access/comparative.
type ComparativeRequest struct {
	ReferenceDate string `query:"referenceDate" validate:"omitempty,civildate"`
}

// AverageRequest holds the query parameters of the average endpoints.
type AverageRequest struct {
	Weeks int `query:"weeks" validate:"min=1,max=52"`
}

// HistoryRequest holds the query parameters of GET /api/v1/import/history.
type HistoryRequest struct {
	Limit int `query:"limit" validate:"min=1,max=100"`
}
