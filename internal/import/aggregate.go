// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package accessimport

import (
	"sort"
	"time"

	"github.com/tomtom215/accessboard/internal/models"
	"github.com/tomtom215/accessboard/internal/slots"
)

// Aggregate counts records per half-hour bucket of the business zone and
// returns one row per bucket in chronological order.
func Aggregate(records []AccessRecord, loc *time.Location) []models.AccessBucket {
	counts := make(map[slots.Key]int, len(records))
	for i := range records {
		counts[slots.KeyFor(records[i].AccessDay.Time, loc)]++
	}

	buckets := make([]models.AccessBucket, 0, len(counts))
	for key, count := range counts {
		buckets = append(buckets, models.NewAccessBucket(key, count))
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Key().Less(buckets[j].Key())
	})
	return buckets
}

// dateRangeOf returns the first and last date of sorted buckets, or nil.
func dateRangeOf(buckets []models.AccessBucket) *models.DateRange {
	if len(buckets) == 0 {
		return nil
	}
	return &models.DateRange{
		Start: buckets[0].Date,
		End:   buckets[len(buckets)-1].Date,
	}
}
