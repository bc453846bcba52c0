// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package slots

import (
	"fmt"
	"time"
)

// Key addresses one half-hour bucket on one calendar day. Minute is always
// 0 or 30 for a Key built through NewKey or KeyFor.
type Key struct {
	Date   Date
	Hour   int
	Minute int
}

// NewKey builds a Key from a date, an hour and a raw minute (0-59), flooring
// the minute to its half hour.
func NewKey(date Date, hour, rawMinute int) (Key, error) {
	minute, err := RoundMinute(rawMinute)
	if err != nil {
		return Key{}, err
	}
	if _, err := Index(hour, minute); err != nil {
		return Key{}, err
	}
	return Key{Date: date, Hour: hour, Minute: minute}, nil
}

// KeyFor converts an absolute instant to loc first and then buckets it.
// The conversion must happen before bucketing, otherwise events near
// midnight land on the wrong day.
func KeyFor(t time.Time, loc *time.Location) Key {
	local := t.In(loc)
	key, _ := NewKey(DateOf(local), local.Hour(), local.Minute())
	return key
}

// Index returns the slot index of the key within its day.
func (k Key) Index() int {
	index, _ := Index(k.Hour, k.Minute)
	return index
}

// Weekday returns the day of week of the key's date.
func (k Key) Weekday() time.Weekday {
	return k.Date.Weekday()
}

// Less orders keys chronologically.
func (k Key) Less(other Key) bool {
	if k.Date != other.Date {
		return k.Date.Before(other.Date)
	}
	return k.Index() < other.Index()
}

func (k Key) String() string {
	return fmt.Sprintf("%s %02d:%02d", k.Date, k.Hour, k.Minute)
}
