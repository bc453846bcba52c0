// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package database

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/accessboard/internal/logging"
	"github.com/tomtom215/accessboard/internal/models"
	"github.com/tomtom215/accessboard/internal/slots"
)

const (
	// SeedSource is the import_runs source recorded for generated data.
	SeedSource = "seed"

	seedDays = 7

	// halfHourShare is the fraction of the hour's base traffic assigned to
	// the :30 slot.
	halfHourShare = 0.85
)

// trafficBand is a [low, low+spread) range of accesses for hours in [from, to).
type trafficBand struct {
	from, to    int
	low, spread float64
}

// trafficProfile models a business day; hours outside every band get the
// overnight range.
var trafficProfile = []trafficBand{
	{from: 6, to: 9, low: 50, spread: 30},
	{from: 9, to: 12, low: 80, spread: 50},
	{from: 12, to: 14, low: 60, spread: 40},
	{from: 14, to: 18, low: 100, spread: 80},
	{from: 18, to: 22, low: 70, spread: 50},
}

var overnightBand = trafficBand{low: 5, spread: 15}

func bandFor(hour int) trafficBand {
	for _, band := range trafficProfile {
		if hour >= band.from && hour < band.to {
			return band
		}
	}
	return overnightBand
}

// GenerateMockBuckets builds seedDays days of synthetic traffic ending on the
// business-local date of now. Today's slots stop at the slot containing now.
func GenerateMockBuckets(now time.Time, loc *time.Location, rng *rand.Rand) []models.AccessBucket {
	today := slots.DateOf(now.In(loc))
	buckets := make([]models.AccessBucket, 0, seedDays*slots.Count)

	for offset := seedDays - 1; offset >= 0; offset-- {
		day := today.AddDays(-offset)
		elapsed := slots.Elapsed(day, now, loc)

		for hour := 0; hour < 24; hour++ {
			band := bandFor(hour)
			base := band.low + rng.Float64()*band.spread

			for _, minute := range []int{0, 30} {
				index, _ := slots.Index(hour, minute)
				if index >= elapsed {
					continue
				}
				count := int(base)
				if minute == 30 {
					count = int(base * halfHourShare)
				}
				buckets = append(buckets, models.NewAccessBucket(slots.Key{Date: day, Hour: hour, Minute: minute}, count))
			}
		}
	}

	return buckets
}

// SeedMockData replaces the bucket table with generated demo traffic.
// It goes through ReplaceBuckets so the table is never observed half-seeded.
func (db *DB) SeedMockData(ctx context.Context, now time.Time, loc *time.Location) error {
	logging.Info().Int("days", seedDays).Msg("Seeding database with mock access data")

	started := time.Now()
	rng := rand.New(rand.NewPCG(uint64(now.UnixNano()), uint64(now.Unix())))
	buckets := GenerateMockBuckets(now, loc, rng)

	run := models.ImportRun{
		ID:                 uuid.New().String(),
		Source:             SeedSource,
		StartedAt:          started,
		FinishedAt:         time.Now(),
		TotalRecords:       len(buckets),
		ProcessedIntervals: len(buckets),
		Success:            true,
	}

	if err := db.ReplaceBuckets(ctx, buckets, run); err != nil {
		return fmt.Errorf("failed to seed mock data: %w", err)
	}

	logging.Info().Int("buckets", len(buckets)).Msg("Mock data seeded")
	return nil
}
