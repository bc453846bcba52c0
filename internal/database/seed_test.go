// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package database

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/tomtom215/accessboard/internal/slots"
)

func TestGenerateMockBuckets(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC-3", -3*60*60)
	now := time.Date(2024, 1, 10, 8, 45, 0, 0, loc)
	rng := rand.New(rand.NewPCG(1, 2))

	buckets := GenerateMockBuckets(now, loc, rng)

	today := slots.DateOf(now)
	perDay := make(map[slots.Date]int)
	hourly := make(map[slots.Key]int)
	for _, b := range buckets {
		perDay[b.Date]++
		hourly[b.Key()] = b.AccessCount

		if int(b.Date.Weekday()) != b.DayOfWeek {
			t.Fatalf("bucket %v has inconsistent weekday %d", b.Key(), b.DayOfWeek)
		}
		band := bandFor(b.Hour)
		if b.AccessCount < 0 || float64(b.AccessCount) >= band.low+band.spread {
			t.Fatalf("bucket %v count %d outside band %+v", b.Key(), b.AccessCount, band)
		}
	}

	if len(perDay) != seedDays {
		t.Fatalf("expected %d days, got %d", seedDays, len(perDay))
	}
	for offset := 1; offset < seedDays; offset++ {
		if got := perDay[today.AddDays(-offset)]; got != slots.Count {
			t.Errorf("day -%d has %d buckets, want %d", offset, got, slots.Count)
		}
	}
	// 08:45 means slots 00:00 through 08:30 have started.
	if got := perDay[today]; got != 18 {
		t.Errorf("today has %d buckets, want 18", got)
	}

	for key, count := range hourly {
		if key.Minute != 30 {
			continue
		}
		full := hourly[slots.Key{Date: key.Date, Hour: key.Hour, Minute: 0}]
		if count > full {
			t.Errorf("%v: half-hour count %d exceeds full-hour count %d", key, count, full)
		}
	}
}

func TestSeedMockData(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	loc := time.FixedZone("UTC-3", -3*60*60)
	now := time.Date(2024, 1, 10, 23, 59, 0, 0, loc)

	if err := db.SeedMockData(ctx, now, loc); err != nil {
		t.Fatalf("SeedMockData: %v", err)
	}

	stats := db.GetImportStats(ctx)
	if stats.TotalRecords != seedDays*slots.Count {
		t.Errorf("TotalRecords = %d, want %d", stats.TotalRecords, seedDays*slots.Count)
	}
	if stats.DateRange == nil || stats.DateRange.End != slots.DateOf(now) || stats.DateRange.Start != slots.DateOf(now).AddDays(-6) {
		t.Errorf("unexpected date range %+v", stats.DateRange)
	}
	if stats.LastImport == nil {
		t.Error("seeding should record an import run")
	}
}
