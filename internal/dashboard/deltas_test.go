// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package dashboard

import (
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/accessboard/internal/models"
	"github.com/tomtom215/accessboard/internal/slots"
)

func TestDelta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		today     int
		yesterday int
		wantPct   int
		wantGain  bool
	}{
		{"both zero", 0, 0, 0, false},
		{"new traffic", 7, 0, 100, true},
		{"unchanged", 10, 10, 0, true},
		{"doubled", 20, 10, 100, true},
		{"halved", 5, 10, -50, false},
		{"dropped to zero", 0, 4, -100, false},
		{"minus 62.5 rounds up", 3, 8, -62, false},
		{"plus 12.5 rounds up", 9, 8, 13, true},
		{"one third", 4, 3, 33, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := delta(models.DaySlot{Hour: 9, Minute: 30, AccessCount: tt.today}, tt.yesterday)
			if got.Percentage != tt.wantPct || got.IsGain != tt.wantGain {
				t.Errorf("delta(%d, %d) = %d%% gain=%v, want %d%% gain=%v",
					tt.today, tt.yesterday, got.Percentage, got.IsGain, tt.wantPct, tt.wantGain)
			}
			if got.Hour != 9 || got.Minute != 30 {
				t.Errorf("delta lost its slot address: %02d:%02d", got.Hour, got.Minute)
			}
		})
	}
}

func TestComputeDeltasCoversEverySlot(t *testing.T) {
	t.Parallel()

	today := models.NewDaySlots()
	yesterday := models.NewDaySlots()
	today[16].AccessCount = 30
	yesterday[16].AccessCount = 20

	deltas := ComputeDeltas(today, yesterday, 18)
	if len(deltas) != slots.Count {
		t.Fatalf("expected %d deltas, got %d", slots.Count, len(deltas))
	}
	if deltas[16].Percentage != 50 || !deltas[16].IsGain {
		t.Errorf("unexpected delta for 08:00: %+v", deltas[16])
	}
	for i, d := range deltas {
		if want := i < 18; d.Observed != want {
			t.Errorf("slot %d: Observed = %v, want %v", i, d.Observed, want)
		}
	}
}

func TestAverageWindow(t *testing.T) {
	t.Parallel()

	today := slots.Date{Year: 2024, Month: time.March, Day: 4}

	tests := []struct {
		weeks    int
		wantFrom slots.Date
	}{
		{1, slots.Date{Year: 2024, Month: time.February, Day: 27}},
		{DefaultWeeks, slots.Date{Year: 2024, Month: time.February, Day: 6}},
		{MaxWeeks, slots.Date{Year: 2023, Month: time.March, Day: 7}},
	}
	for _, tt := range tests {
		from, to, err := AverageWindow(today, tt.weeks)
		if err != nil {
			t.Fatalf("weeks=%d: AverageWindow() error = %v", tt.weeks, err)
		}
		if to != today || from != tt.wantFrom {
			t.Errorf("weeks=%d: window = [%s, %s], want [%s, %s]", tt.weeks, from, to, tt.wantFrom, today)
		}
		if days := int(to.Time().Sub(from.Time()).Hours()/24) + 1; days != tt.weeks*7 {
			t.Errorf("weeks=%d: window spans %d days, want %d", tt.weeks, days, tt.weeks*7)
		}
	}

	for _, weeks := range []int{0, -1, 53} {
		if _, _, err := AverageWindow(today, weeks); !errors.Is(err, models.ErrInvalidInput) {
			t.Errorf("weeks=%d: expected ErrInvalidInput, got %v", weeks, err)
		}
	}
}
