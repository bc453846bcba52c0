// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/accessboard/internal/models"
	"github.com/tomtom215/accessboard/internal/slots"
	"github.com/tomtom215/accessboard/internal/validation"
)

// AccessComparative returns today, yesterday and the day before as 48 dense
// slots each, plus the per-slot day-over-day deltas.
//
// @Summary Three-day comparative view
// @Description "Today" is referenceDate, or the current business day when omitted. Slots after the current time of the current day are zero and marked unobserved in deltas.
// @Tags Access
// @Produce json
// @Param referenceDate query string false "Reference day (YYYY-MM-DD)"
// @Success 200 {object} models.APIResponse{data=models.ComparativeData}
// @Failure 400 {object} models.APIResponse "Invalid referenceDate"
// @Failure 503 {object} models.APIResponse "Storage unavailable"
// @Router /api/v1/access/comparative [get]
func (h *Handler) AccessComparative(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := validation.ComparativeRequest{ReferenceDate: r.URL.Query().Get("referenceDate")}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}

	var reference *slots.Date
	if req.ReferenceDate != "" {
		date, err := slots.ParseDate(req.ReferenceDate)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "referenceDate must be a valid date (YYYY-MM-DD)", nil)
			return
		}
		reference = &date
	}

	data, cached, err := h.dashboard.Comparative(r.Context(), reference)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, data, start, cached)
}

// AccessDay returns the 48 slots of one day.
//
// @Summary Slots of one day
// @Tags Access
// @Produce json
// @Param date query string true "Day (YYYY-MM-DD)"
// @Success 200 {object} models.APIResponse{data=[]models.DaySlot}
// @Failure 400 {object} models.APIResponse "Missing or invalid date"
// @Failure 503 {object} models.APIResponse "Storage unavailable"
// @Router /api/v1/access/day [get]
func (h *Handler) AccessDay(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := validation.DayRequest{Date: r.URL.Query().Get("date")}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}
	date, err := slots.ParseDate(req.Date)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "date must be a valid date (YYYY-MM-DD)", nil)
		return
	}

	data, cached, err := h.dashboard.Day(r.Context(), date)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, data, start, cached)
}

// AccessWeekdayAverage returns the per-slot average over Monday to Friday of
// the last N weeks.
//
// @Summary Weekday average
// @Description Averages each slot over the weekdays of the window that have data. Days without rows do not count as zero.
// @Tags Access
// @Produce json
// @Param weeks query int false "Window in weeks (1-52)" default(4)
// @Success 200 {object} models.APIResponse{data=[]models.DaySlot}
// @Failure 400 {object} models.APIResponse "Invalid weeks"
// @Failure 503 {object} models.APIResponse "Storage unavailable"
// @Router /api/v1/access/average/weekdays [get]
func (h *Handler) AccessWeekdayAverage(w http.ResponseWriter, r *http.Request) {
	h.serveAverage(w, r, h.dashboard.WeekdayAverage)
}

// AccessAllDaysAverage returns the per-slot average over every day of the
// last N weeks.
//
// @Summary All-days average
// @Tags Access
// @Produce json
// @Param weeks query int false "Window in weeks (1-52)" default(4)
// @Success 200 {object} models.APIResponse{data=[]models.DaySlot}
// @Failure 400 {object} models.APIResponse "Invalid weeks"
// @Failure 503 {object} models.APIResponse "Storage unavailable"
// @Router /api/v1/access/average/all [get]
func (h *Handler) AccessAllDaysAverage(w http.ResponseWriter, r *http.Request) {
	h.serveAverage(w, r, h.dashboard.AllDaysAverage)
}

type averageFunc func(ctx context.Context, weeks int) (models.DaySlots, bool, error)

func (h *Handler) serveAverage(w http.ResponseWriter, r *http.Request, query averageFunc) {
	start := time.Now()

	weeks, apiErr := parseIntQuery(r, "weeks", defaultAverageWeeks)
	if apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}
	req := validation.AverageRequest{Weeks: weeks}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}

	data, cached, err := query(r.Context(), req.Weeks)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, data, start, cached)
}
