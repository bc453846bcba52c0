// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/accessboard/internal/models"
)

func TestReplaceBucketsIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	buckets := []models.AccessBucket{
		bucket(t, "2024-01-10", 8, 0, 1),
		bucket(t, "2024-01-10", 8, 30, 2),
	}

	for i := 0; i < 2; i++ {
		if err := db.ReplaceBuckets(ctx, buckets, newRun(3, 2)); err != nil {
			t.Fatalf("ReplaceBuckets #%d: %v", i+1, err)
		}
	}

	stats := db.GetImportStats(ctx)
	if stats.TotalRecords != 2 {
		t.Errorf("TotalRecords = %d, want 2 after repeated replace", stats.TotalRecords)
	}

	view, err := db.GetDayView(ctx, mustDate(t, "2024-01-10"))
	if err != nil {
		t.Fatalf("GetDayView: %v", err)
	}
	if view[16].AccessCount != 1 || view[17].AccessCount != 2 {
		t.Errorf("unexpected counts at 08:00/08:30: %d/%d", view[16].AccessCount, view[17].AccessCount)
	}
}

func TestReplaceBucketsReplacesPreviousRows(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.ReplaceBuckets(ctx, []models.AccessBucket{bucket(t, "2024-01-09", 10, 0, 5)}, newRun(5, 1)); err != nil {
		t.Fatal(err)
	}
	if err := db.ReplaceBuckets(ctx, []models.AccessBucket{bucket(t, "2024-01-10", 11, 30, 7)}, newRun(7, 1)); err != nil {
		t.Fatal(err)
	}

	old, err := db.GetDayView(ctx, mustDate(t, "2024-01-09"))
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range old {
		if s.AccessCount != 0 {
			t.Fatalf("expected previous import to be gone, found %+v", s)
		}
	}

	stats := db.GetImportStats(ctx)
	if stats.DateRange == nil || stats.DateRange.Start != mustDate(t, "2024-01-10") || stats.DateRange.End != mustDate(t, "2024-01-10") {
		t.Errorf("unexpected date range %+v", stats.DateRange)
	}
}

func TestReplaceBucketsEmptyClearsTable(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.ReplaceBuckets(ctx, []models.AccessBucket{bucket(t, "2024-01-10", 0, 0, 1)}, newRun(1, 1)); err != nil {
		t.Fatal(err)
	}
	if err := db.ReplaceBuckets(ctx, nil, newRun(0, 0)); err != nil {
		t.Fatalf("ReplaceBuckets(empty): %v", err)
	}

	stats := db.GetImportStats(ctx)
	if stats.TotalRecords != 0 || stats.DateRange != nil {
		t.Errorf("expected empty stats, got %+v", stats)
	}
	if stats.LastImport == nil {
		t.Error("an empty import is still an import; LastImport should be set")
	}
}

func TestReplaceBucketsRejectsInvalidBuckets(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seeded := []models.AccessBucket{bucket(t, "2024-01-10", 9, 0, 4)}
	if err := db.ReplaceBuckets(ctx, seeded, newRun(4, 1)); err != nil {
		t.Fatal(err)
	}

	wrongWeekday := bucket(t, "2024-01-10", 9, 0, 1)
	wrongWeekday.DayOfWeek = 0

	tests := []struct {
		name    string
		buckets []models.AccessBucket
	}{
		{"duplicate key", []models.AccessBucket{bucket(t, "2024-01-10", 9, 0, 1), bucket(t, "2024-01-10", 9, 0, 2)}},
		{"bad minute", []models.AccessBucket{{Date: mustDate(t, "2024-01-10"), Hour: 9, Minute: 15, DayOfWeek: 3, AccessCount: 1}}},
		{"bad hour", []models.AccessBucket{{Date: mustDate(t, "2024-01-10"), Hour: 24, Minute: 0, DayOfWeek: 3, AccessCount: 1}}},
		{"negative count", []models.AccessBucket{bucket(t, "2024-01-10", 9, 0, -1)}},
		{"weekday mismatch", []models.AccessBucket{wrongWeekday}},
		{"missing date", []models.AccessBucket{{Hour: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := db.ReplaceBuckets(ctx, tt.buckets, newRun(1, 1))
			if !errors.Is(err, models.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	view, err := db.GetDayView(ctx, mustDate(t, "2024-01-10"))
	if err != nil {
		t.Fatal(err)
	}
	if view[18].AccessCount != 4 {
		t.Errorf("rejected imports must leave stored rows intact, got %d", view[18].AccessCount)
	}
}

func TestReplaceBucketsRollsBackOnFailure(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	run := newRun(4, 1)
	if err := db.ReplaceBuckets(ctx, []models.AccessBucket{bucket(t, "2024-01-10", 9, 0, 4)}, run); err != nil {
		t.Fatal(err)
	}

	// Reusing the run ID violates the import_runs primary key after the
	// delete and insert already ran inside the transaction.
	err := db.ReplaceBuckets(ctx, []models.AccessBucket{bucket(t, "2024-01-11", 9, 0, 9)}, run)
	if !errors.Is(err, models.ErrImportTransaction) {
		t.Fatalf("expected ErrImportTransaction, got %v", err)
	}

	view, err := db.GetDayView(ctx, mustDate(t, "2024-01-10"))
	if err != nil {
		t.Fatal(err)
	}
	if view[18].AccessCount != 4 {
		t.Errorf("previous rows should survive rollback, got %d", view[18].AccessCount)
	}
	if stats := db.GetImportStats(ctx); stats.TotalRecords != 1 {
		t.Errorf("TotalRecords = %d after rollback, want 1", stats.TotalRecords)
	}
}

func TestGetDayViewIsDenseAndZeroFilled(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	buckets := []models.AccessBucket{
		bucket(t, "2024-01-10", 0, 0, 3),
		bucket(t, "2024-01-10", 23, 30, 8),
		bucket(t, "2024-01-11", 12, 0, 100),
	}
	if err := db.ReplaceBuckets(ctx, buckets, newRun(111, 3)); err != nil {
		t.Fatal(err)
	}

	view, err := db.GetDayView(ctx, mustDate(t, "2024-01-10"))
	if err != nil {
		t.Fatalf("GetDayView: %v", err)
	}
	if len(view) != 48 {
		t.Fatalf("expected 48 slots, got %d", len(view))
	}
	for i, s := range view {
		want := 0
		switch i {
		case 0:
			want = 3
		case 47:
			want = 8
		}
		if s.AccessCount != want {
			t.Errorf("slot %d (%02d:%02d) = %d, want %d", i, s.Hour, s.Minute, s.AccessCount, want)
		}
	}

	empty, err := db.GetDayView(ctx, mustDate(t, "2023-06-01"))
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 48 {
		t.Errorf("empty date should still produce 48 slots, got %d", len(empty))
	}
}

func TestGetAverageViewWeekdaysExcludesWeekend(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// 2024-01-12 is a Friday, 2024-01-13 a Saturday.
	buckets := []models.AccessBucket{
		bucket(t, "2024-01-12", 10, 0, 10),
		bucket(t, "2024-01-13", 10, 0, 100),
	}
	if err := db.ReplaceBuckets(ctx, buckets, newRun(110, 2)); err != nil {
		t.Fatal(err)
	}

	from, to := mustDate(t, "2024-01-01"), mustDate(t, "2024-01-14")

	weekdays, err := db.GetAverageView(ctx, from, to, true)
	if err != nil {
		t.Fatalf("weekday average: %v", err)
	}
	if weekdays[20].AccessCount != 10 {
		t.Errorf("weekday average at 10:00 = %d, want 10", weekdays[20].AccessCount)
	}

	all, err := db.GetAverageView(ctx, from, to, false)
	if err != nil {
		t.Fatalf("all-days average: %v", err)
	}
	if all[20].AccessCount != 55 {
		t.Errorf("all-days average at 10:00 = %d, want 55", all[20].AccessCount)
	}
}

func TestGetAverageViewAveragesOnlyDaysWithRows(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// Three dates in the window, but only two have a row for 08:00.
	buckets := []models.AccessBucket{
		bucket(t, "2024-01-08", 8, 0, 4),
		bucket(t, "2024-01-09", 8, 0, 5),
		bucket(t, "2024-01-10", 9, 0, 1),
		bucket(t, "2023-12-01", 8, 0, 1000), // outside the window
	}
	if err := db.ReplaceBuckets(ctx, buckets, newRun(1010, 4)); err != nil {
		t.Fatal(err)
	}

	view, err := db.GetAverageView(ctx, mustDate(t, "2024-01-03"), mustDate(t, "2024-01-10"), false)
	if err != nil {
		t.Fatal(err)
	}
	// (4+5)/2 = 4.5 rounds half away from zero.
	if view[16].AccessCount != 5 {
		t.Errorf("08:00 average = %d, want 5", view[16].AccessCount)
	}
	if view[18].AccessCount != 1 {
		t.Errorf("09:00 average = %d, want 1", view[18].AccessCount)
	}
	if view[0].AccessCount != 0 {
		t.Errorf("slot without rows should be zero, got %d", view[0].AccessCount)
	}
}

func TestGetImportStatsEmpty(t *testing.T) {
	db := setupTestDB(t)

	stats := db.GetImportStats(context.Background())
	if stats.TotalRecords != 0 || stats.DateRange != nil || stats.LastImport != nil {
		t.Errorf("expected zeroed stats, got %+v", stats)
	}
}

func TestGetImportStatsReportsLastImport(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	run := newRun(1, 1)
	run.FinishedAt = time.Date(2024, 1, 10, 15, 4, 5, 0, time.UTC)
	if err := db.ReplaceBuckets(ctx, []models.AccessBucket{bucket(t, "2024-01-10", 1, 0, 1)}, run); err != nil {
		t.Fatal(err)
	}

	stats := db.GetImportStats(ctx)
	if stats.LastImport == nil || !stats.LastImport.Equal(run.FinishedAt) {
		t.Errorf("LastImport = %v, want %v", stats.LastImport, run.FinishedAt)
	}
}

func TestGetImportStatsDegradesWhenStorageIsGone(t *testing.T) {
	db := setupTestDB(t)

	if err := db.conn.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	stats := db.GetImportStats(context.Background())
	if stats.TotalRecords != 0 || stats.DateRange != nil || stats.LastImport != nil {
		t.Errorf("expected zeroed stats from closed storage, got %+v", stats)
	}

	_, err := db.GetDayView(context.Background(), mustDate(t, "2024-01-10"))
	if !errors.Is(err, models.ErrStorageUnavailable) {
		t.Errorf("expected ErrStorageUnavailable from closed storage, got %v", err)
	}
}
