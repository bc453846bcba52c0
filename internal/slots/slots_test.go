// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package slots

import (
	"errors"
	"testing"
	"time"
)

func TestIndexIsBijection(t *testing.T) {
	t.Parallel()

	seen := make(map[int]bool, Count)
	for hour := 0; hour < 24; hour++ {
		for _, minute := range []int{0, 30} {
			index, err := Index(hour, minute)
			if err != nil {
				t.Fatalf("Index(%d, %d) returned error: %v", hour, minute, err)
			}
			if index < 0 || index >= Count {
				t.Fatalf("Index(%d, %d) = %d, out of range", hour, minute, index)
			}
			if seen[index] {
				t.Fatalf("Index(%d, %d) = %d already produced", hour, minute, index)
			}
			seen[index] = true

			h, m, err := FromIndex(index)
			if err != nil {
				t.Fatalf("FromIndex(%d) returned error: %v", index, err)
			}
			if h != hour || m != minute {
				t.Errorf("FromIndex(%d) = (%d, %d), want (%d, %d)", index, h, m, hour, minute)
			}
		}
	}
	if len(seen) != Count {
		t.Errorf("expected %d distinct indices, got %d", Count, len(seen))
	}
}

func TestRoundMinute(t *testing.T) {
	t.Parallel()

	for m := 0; m <= 59; m++ {
		got, err := RoundMinute(m)
		if err != nil {
			t.Fatalf("RoundMinute(%d) returned error: %v", m, err)
		}
		want := 0
		if m >= 30 {
			want = 30
		}
		if got != want {
			t.Errorf("RoundMinute(%d) = %d, want %d", m, got, want)
		}
	}
}

func TestInvalidInputsAreRejected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   func() error
	}{
		{"negative minute", func() error { _, err := RoundMinute(-1); return err }},
		{"minute 60", func() error { _, err := RoundMinute(60); return err }},
		{"hour 24", func() error { _, err := Index(24, 0); return err }},
		{"negative hour", func() error { _, err := Index(-1, 30); return err }},
		{"bucket minute 15", func() error { _, err := Index(10, 15); return err }},
		{"index 48", func() error { _, _, err := FromIndex(Count); return err }},
		{"negative index", func() error { _, _, err := FromIndex(-1); return err }},
		{"key hour 25", func() error { _, err := NewKey(Date{2024, 1, 10}, 25, 0); return err }},
		{"key minute 75", func() error { _, err := NewKey(Date{2024, 1, 10}, 8, 75); return err }},
		{"malformed date", func() error { _, err := ParseDate("2024-13-45"); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.fn()
			if !errors.Is(err, ErrInvalidTimestamp) {
				t.Errorf("expected ErrInvalidTimestamp, got %v", err)
			}
		})
	}
}

func TestKeyForConvertsBeforeBucketing(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC-3", -3*60*60)

	tests := []struct {
		name    string
		instant string
		want    Key
	}{
		{"morning", "2024-01-10T11:05:00Z", Key{Date{2024, 1, 10}, 8, 0}},
		{"second half hour", "2024-01-10T11:45:00Z", Key{Date{2024, 1, 10}, 8, 30}},
		{"crosses midnight backwards", "2024-01-10T02:40:00Z", Key{Date{2024, 1, 9}, 23, 30}},
		{"exactly on boundary", "2024-01-10T03:00:00Z", Key{Date{2024, 1, 10}, 0, 0}},
		{"milliseconds", "2024-01-10T14:29:59.999Z", Key{Date{2024, 1, 10}, 11, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			instant, err := time.Parse(time.RFC3339Nano, tt.instant)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got := KeyFor(instant, loc); got != tt.want {
				t.Errorf("KeyFor(%s) = %v, want %v", tt.instant, got, tt.want)
			}
		})
	}
}

func TestKeyOrdering(t *testing.T) {
	t.Parallel()

	a := Key{Date{2024, 1, 9}, 23, 30}
	b := Key{Date{2024, 1, 10}, 0, 0}
	c := Key{Date{2024, 1, 10}, 0, 30}

	if !a.Less(b) || !b.Less(c) || !a.Less(c) {
		t.Error("expected chronological ordering a < b < c")
	}
	if c.Less(a) || b.Less(b) {
		t.Error("unexpected ordering result")
	}
	if c.Index() != 1 {
		t.Errorf("expected index 1, got %d", c.Index())
	}
}

func TestDate(t *testing.T) {
	t.Parallel()

	d, err := ParseDate("2024-03-01")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if got := d.AddDays(-1).String(); got != "2024-02-29" {
		t.Errorf("expected leap day, got %s", got)
	}
	if d.Weekday() != time.Friday {
		t.Errorf("expected Friday, got %v", d.Weekday())
	}
	if !(Date{}).IsZero() || d.IsZero() {
		t.Error("IsZero mismatch")
	}
}

func TestElapsed(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC-3", -3*60*60)
	now := time.Date(2024, 1, 10, 8, 45, 0, 0, loc)
	today := DateOf(now)

	if got := Elapsed(today, now, loc); got != 18 {
		t.Errorf("expected 18 elapsed slots at 08:45, got %d", got)
	}
	if got := Elapsed(today.AddDays(-1), now, loc); got != Count {
		t.Errorf("expected all slots elapsed for yesterday, got %d", got)
	}
	if got := Elapsed(today.AddDays(1), now, loc); got != 0 {
		t.Errorf("expected no slots elapsed for tomorrow, got %d", got)
	}
}
