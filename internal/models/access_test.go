// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package models

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/accessboard/internal/slots"
)

func TestNewDaySlotsIsDenseAndOrdered(t *testing.T) {
	t.Parallel()

	view := NewDaySlots()
	if len(view) != slots.Count {
		t.Fatalf("expected %d slots, got %d", slots.Count, len(view))
	}
	for i, s := range view {
		if s.AccessCount != 0 {
			t.Errorf("slot %d: expected zero count, got %d", i, s.AccessCount)
		}
		index, err := slots.Index(s.Hour, s.Minute)
		if err != nil || index != i {
			t.Errorf("slot %d addressed as %02d:%02d (index %d, err %v)", i, s.Hour, s.Minute, index, err)
		}
	}
}

func TestDaySlotsSet(t *testing.T) {
	t.Parallel()

	view := NewDaySlots()
	if err := view.Set(8, 30, 7); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if view[17].AccessCount != 7 {
		t.Errorf("expected slot 17 to hold 7, got %d", view[17].AccessCount)
	}
	if err := view.Set(24, 0, 1); !errors.Is(err, slots.ErrInvalidTimestamp) {
		t.Errorf("expected ErrInvalidTimestamp, got %v", err)
	}
	if got := view.Counts()[17]; got != 7 {
		t.Errorf("Counts()[17] = %d, want 7", got)
	}
}

func TestNewAccessBucketDerivesWeekday(t *testing.T) {
	t.Parallel()

	// 2024-01-13 is a Saturday, 2024-01-14 a Sunday.
	sat := NewAccessBucket(slots.Key{Date: slots.Date{Year: 2024, Month: time.January, Day: 13}, Hour: 10}, 5)
	sun := NewAccessBucket(slots.Key{Date: slots.Date{Year: 2024, Month: time.January, Day: 14}, Hour: 10}, 5)

	if sat.DayOfWeek != 6 {
		t.Errorf("expected Saturday=6, got %d", sat.DayOfWeek)
	}
	if sun.DayOfWeek != 0 {
		t.Errorf("expected Sunday=0, got %d", sun.DayOfWeek)
	}
	if sat.Key() != (slots.Key{Date: sat.Date, Hour: 10, Minute: 0}) {
		t.Errorf("unexpected key %v", sat.Key())
	}
}

func TestImportStatsJSONShape(t *testing.T) {
	t.Parallel()

	empty, err := json.Marshal(ImportStats{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(empty) != `{"totalRecords":0,"dateRange":null,"lastImport":null}` {
		t.Errorf("unexpected empty stats JSON: %s", empty)
	}

	stats := ImportStats{
		TotalRecords: 96,
		DateRange: &DateRange{
			Start: slots.Date{Year: 2024, Month: time.January, Day: 9},
			End:   slots.Date{Year: 2024, Month: time.January, Day: 10},
		},
	}
	data, err := json.Marshal(stats)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"dateRange":{"start":"2024-01-09","end":"2024-01-10"}`) {
		t.Errorf("unexpected stats JSON: %s", data)
	}
}

func TestImportRunDuration(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	run := ImportRun{StartedAt: start}
	if run.Duration() != 0 {
		t.Error("expected zero duration for unfinished run")
	}
	run.FinishedAt = start.Add(1500 * time.Millisecond)
	if run.Duration() != 1500*time.Millisecond {
		t.Errorf("unexpected duration %v", run.Duration())
	}
}
