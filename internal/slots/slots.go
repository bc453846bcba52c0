// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package slots

import (
	"errors"
	"fmt"
	"time"
)

const (
	// PerHour is the number of half-hour slots in an hour.
	PerHour = 2

	// Count is the number of half-hour slots in a day.
	Count = 24 * PerHour

	// Width is the duration covered by one slot.
	Width = 30 * time.Minute
)

// ErrInvalidTimestamp is returned when an hour, minute or slot index falls
// outside its valid range. Values are never clamped.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// RoundMinute floors a raw minute (0-59) to its half-hour bucket: 0 or 30.
func RoundMinute(minute int) (int, error) {
	if minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: minute %d out of range [0,59]", ErrInvalidTimestamp, minute)
	}
	if minute < 30 {
		return 0, nil
	}
	return 30, nil
}

// Index returns the position of the (hour, bucket minute) pair within a day:
// hour*2 for minute 0 and hour*2+1 for minute 30.
func Index(hour, minute int) (int, error) {
	if hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%w: hour %d out of range [0,23]", ErrInvalidTimestamp, hour)
	}
	switch minute {
	case 0:
		return hour * PerHour, nil
	case 30:
		return hour*PerHour + 1, nil
	default:
		return 0, fmt.Errorf("%w: bucket minute %d is not 0 or 30", ErrInvalidTimestamp, minute)
	}
}

// FromIndex is the exact inverse of Index over [0, Count).
func FromIndex(index int) (hour, minute int, err error) {
	if index < 0 || index >= Count {
		return 0, 0, fmt.Errorf("%w: slot index %d out of range [0,%d]", ErrInvalidTimestamp, index, Count-1)
	}
	hour = index / PerHour
	if index%PerHour == 1 {
		minute = 30
	}
	return hour, minute, nil
}

// Elapsed returns how many slots of day have started at instant now, both
// interpreted in loc. Past days report Count, future days report 0.
func Elapsed(day Date, now time.Time, loc *time.Location) int {
	local := now.In(loc)
	today := DateOf(local)

	switch {
	case day.Before(today):
		return Count
	case today.Before(day):
		return 0
	}

	minute, _ := RoundMinute(local.Minute())
	index, _ := Index(local.Hour(), minute)
	return index + 1
}
