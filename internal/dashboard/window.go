// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package dashboard

import (
	"fmt"

	"github.com/tomtom215/accessboard/internal/models"
	"github.com/tomtom215/accessboard/internal/slots"
)

// Average window bounds, in weeks.
const (
	DefaultWeeks = 4
	MinWeeks     = 1
	MaxWeeks     = 52
)

// AverageWindow returns the weeks*7 days ending today, as the inclusive
// range [today - weeks*7 + 1, today].
func AverageWindow(today slots.Date, weeks int) (from, to slots.Date, err error) {
	if weeks < MinWeeks || weeks > MaxWeeks {
		return slots.Date{}, slots.Date{}, fmt.Errorf("%w: weeks %d out of range [%d,%d]",
			models.ErrInvalidInput, weeks, MinWeeks, MaxWeeks)
	}
	return today.AddDays(-weeks*7 + 1), today, nil
}
