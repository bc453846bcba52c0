// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/accessboard/internal/cache"
	"github.com/tomtom215/accessboard/internal/config"
	"github.com/tomtom215/accessboard/internal/database"
	"github.com/tomtom215/accessboard/internal/models"
	"github.com/tomtom215/accessboard/internal/slots"
)

// fakeStore serves fixed day views and records every call.
type fakeStore struct {
	mu       sync.Mutex
	days     map[slots.Date]models.DaySlots
	dayCalls []slots.Date
	avgCalls []string
	err      error
}

func (f *fakeStore) GetDayView(_ context.Context, date slots.Date) (models.DaySlots, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dayCalls = append(f.dayCalls, date)
	if f.err != nil {
		return nil, f.err
	}
	if view, ok := f.days[date]; ok {
		return view, nil
	}
	return models.NewDaySlots(), nil
}

func (f *fakeStore) GetAverageView(_ context.Context, from, to slots.Date, weekdaysOnly bool) (models.DaySlots, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.avgCalls = append(f.avgCalls, fmt.Sprintf("%s..%s weekdays=%v", from, to, weekdaysOnly))
	if f.err != nil {
		return nil, f.err
	}
	return models.NewDaySlots(), nil
}

func (f *fakeStore) GetImportStats(_ context.Context) models.ImportStats {
	return models.ImportStats{TotalRecords: 42}
}

var businessZone = config.BusinessConfig{UTCOffsetHours: -3}.Location()

// 2024-01-10 08:45 local (UTC-3).
var fixedNow = time.Date(2024, 1, 10, 11, 45, 0, 0, time.UTC)

func newTestService(t *testing.T, store Store, withCache bool) *Service {
	t.Helper()
	var c *cache.Cache
	if withCache {
		c = cache.New("dashboard_test", time.Minute)
		t.Cleanup(c.Close)
	}
	svc := NewService(store, businessZone, c)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func date(y int, m time.Month, d int) slots.Date {
	return slots.Date{Year: y, Month: m, Day: d}
}

func TestServiceTodayUsesBusinessZone(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &fakeStore{}, false)
	svc.now = func() time.Time { return time.Date(2024, 1, 11, 1, 30, 0, 0, time.UTC) }
	if got := svc.Today(); got != date(2024, time.January, 10) {
		t.Errorf("Today() = %s, want 2024-01-10", got)
	}
}

func TestComparativeDefaultsToToday(t *testing.T) {
	t.Parallel()

	today := models.NewDaySlots()
	today[16].AccessCount = 12
	yesterday := models.NewDaySlots()
	yesterday[16].AccessCount = 8

	store := &fakeStore{days: map[slots.Date]models.DaySlots{
		date(2024, time.January, 10): today,
		date(2024, time.January, 9):  yesterday,
	}}
	svc := newTestService(t, store, true)

	data, fromCache, err := svc.Comparative(context.Background(), nil)
	if err != nil {
		t.Fatalf("Comparative() error = %v", err)
	}
	if fromCache {
		t.Error("first call cannot be cached")
	}
	if data.ReferenceDate != date(2024, time.January, 10) {
		t.Errorf("ReferenceDate = %s", data.ReferenceDate)
	}
	want := []slots.Date{date(2024, time.January, 10), date(2024, time.January, 9), date(2024, time.January, 8)}
	for i, d := range want {
		if store.dayCalls[i] != d {
			t.Errorf("day call %d = %s, want %s", i, store.dayCalls[i], d)
		}
	}
	if data.ObservedSlots != 18 {
		t.Errorf("ObservedSlots = %d, want 18", data.ObservedSlots)
	}
	if len(data.Deltas) != slots.Count || data.Deltas[16].Percentage != 50 {
		t.Errorf("unexpected deltas: %+v", data.Deltas[16])
	}
	if !data.Deltas[17].Observed || data.Deltas[18].Observed {
		t.Error("observed flags do not follow the current slot")
	}
	if len(data.Today) != slots.Count || len(data.DayBeforeYesterday) != slots.Count {
		t.Error("views must be dense")
	}

	// The current day is never served from cache.
	if _, fromCache, _ := svc.Comparative(context.Background(), nil); fromCache {
		t.Error("today's comparative view must not be cached")
	}
}

func TestComparativePastReferenceIsCached(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	svc := newTestService(t, store, true)
	ref := date(2024, time.January, 2)

	data, _, err := svc.Comparative(context.Background(), &ref)
	if err != nil {
		t.Fatalf("Comparative() error = %v", err)
	}
	if data.ObservedSlots != slots.Count {
		t.Errorf("past day ObservedSlots = %d, want %d", data.ObservedSlots, slots.Count)
	}

	_, fromCache, err := svc.Comparative(context.Background(), &ref)
	if err != nil || !fromCache {
		t.Errorf("expected cached second call, got cached=%v err=%v", fromCache, err)
	}
	if len(store.dayCalls) != 3 {
		t.Errorf("expected 3 store calls, got %d", len(store.dayCalls))
	}

	svc.InvalidateCache()
	if _, fromCache, _ := svc.Comparative(context.Background(), &ref); fromCache {
		t.Error("expected miss after InvalidateCache")
	}
}

func TestComparativeFutureReference(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &fakeStore{}, false)
	ref := date(2024, time.January, 20)
	data, _, err := svc.Comparative(context.Background(), &ref)
	if err != nil {
		t.Fatalf("Comparative() error = %v", err)
	}
	if data.ObservedSlots != 0 {
		t.Errorf("future day ObservedSlots = %d, want 0", data.ObservedSlots)
	}
	for _, d := range data.Deltas {
		if d.Observed {
			t.Fatal("no slot of a future day can be observed")
		}
	}
}

func TestServicePropagatesStorageErrors(t *testing.T) {
	t.Parallel()

	store := &fakeStore{err: fmt.Errorf("%w: circuit open", models.ErrStorageUnavailable)}
	svc := newTestService(t, store, true)
	ctx := context.Background()

	if _, _, err := svc.Comparative(ctx, nil); !errors.Is(err, models.ErrStorageUnavailable) {
		t.Errorf("Comparative: expected ErrStorageUnavailable, got %v", err)
	}
	if _, _, err := svc.Day(ctx, date(2024, time.January, 9)); !errors.Is(err, models.ErrStorageUnavailable) {
		t.Errorf("Day: expected ErrStorageUnavailable, got %v", err)
	}
	if _, _, err := svc.WeekdayAverage(ctx, 4); !errors.Is(err, models.ErrStorageUnavailable) {
		t.Errorf("WeekdayAverage: expected ErrStorageUnavailable, got %v", err)
	}

	// Failures are not cached.
	store.mu.Lock()
	store.err = nil
	store.mu.Unlock()
	if _, fromCache, err := svc.Day(ctx, date(2024, time.January, 9)); err != nil || fromCache {
		t.Errorf("expected fresh successful load, got cached=%v err=%v", fromCache, err)
	}

	if stats := svc.ImportStats(ctx); stats.TotalRecords != 42 {
		t.Errorf("ImportStats() = %+v", stats)
	}
}

func TestAveragesUseWindowAndFilter(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	svc := newTestService(t, store, true)
	ctx := context.Background()

	if _, _, err := svc.WeekdayAverage(ctx, 4); err != nil {
		t.Fatalf("WeekdayAverage() error = %v", err)
	}
	if _, _, err := svc.AllDaysAverage(ctx, 1); err != nil {
		t.Fatalf("AllDaysAverage() error = %v", err)
	}
	if _, fromCache, _ := svc.WeekdayAverage(ctx, 4); !fromCache {
		t.Error("expected cached weekday average")
	}

	want := []string{
		"2023-12-14..2024-01-10 weekdays=true",
		"2024-01-04..2024-01-10 weekdays=false",
	}
	if len(store.avgCalls) != len(want) {
		t.Fatalf("avg calls = %v", store.avgCalls)
	}
	for i := range want {
		if store.avgCalls[i] != want[i] {
			t.Errorf("avg call %d = %q, want %q", i, store.avgCalls[i], want[i])
		}
	}

	if _, _, err := svc.AllDaysAverage(ctx, 0); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for weeks=0, got %v", err)
	}
}

func TestWeekdayAverageExcludesSaturdayInDuckDB(t *testing.T) {
	db, err := database.New(&config.DatabaseConfig{
		Path:               ":memory:",
		MaxMemory:          "512MB",
		Threads:            1,
		BreakerMaxFailures: 5,
		BreakerTimeout:     time.Minute,
	})
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	// Window for weeks=1 ending Wednesday 2024-01-10 contains
	// Saturday 2024-01-06 and Monday 2024-01-08.
	buckets := []models.AccessBucket{
		models.NewAccessBucket(slots.Key{Date: date(2024, time.January, 6), Hour: 10}, 90),
		models.NewAccessBucket(slots.Key{Date: date(2024, time.January, 8), Hour: 10}, 20),
	}
	now := time.Now().UTC()
	run := models.ImportRun{ID: uuid.New().String(), Source: "test", StartedAt: now, FinishedAt: now, Success: true}
	if err := db.ReplaceBuckets(context.Background(), buckets, run); err != nil {
		t.Fatalf("ReplaceBuckets() error = %v", err)
	}

	svc := newTestService(t, db, false)

	weekdays, _, err := svc.WeekdayAverage(context.Background(), 1)
	if err != nil {
		t.Fatalf("WeekdayAverage() error = %v", err)
	}
	if got := weekdays[20].AccessCount; got != 20 {
		t.Errorf("weekday average at 10:00 = %d, want 20", got)
	}

	all, _, err := svc.AllDaysAverage(context.Background(), 1)
	if err != nil {
		t.Fatalf("AllDaysAverage() error = %v", err)
	}
	if got := all[20].AccessCount; got != 55 {
		t.Errorf("all-days average at 10:00 = %d, want 55", got)
	}
	if len(weekdays) != slots.Count || len(all) != slots.Count {
		t.Error("averages must be dense")
	}
}

func TestAverageWindowExcludesDayFourWeeksBack(t *testing.T) {
	db, err := database.New(&config.DatabaseConfig{
		Path:               ":memory:",
		MaxMemory:          "512MB",
		Threads:            1,
		BreakerMaxFailures: 5,
		BreakerTimeout:     time.Minute,
	})
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	// Today is Wednesday 2024-01-10. Wednesday 2023-12-13 is 28 days back
	// and falls outside the 4-week window; Thursday 2023-12-14 is its
	// first day.
	buckets := []models.AccessBucket{
		models.NewAccessBucket(slots.Key{Date: date(2023, time.December, 13), Hour: 10}, 100),
		models.NewAccessBucket(slots.Key{Date: date(2023, time.December, 14), Hour: 10}, 10),
		models.NewAccessBucket(slots.Key{Date: date(2024, time.January, 10), Hour: 10}, 30),
	}
	now := time.Now().UTC()
	run := models.ImportRun{ID: uuid.New().String(), Source: "test", StartedAt: now, FinishedAt: now, Success: true}
	if err := db.ReplaceBuckets(context.Background(), buckets, run); err != nil {
		t.Fatalf("ReplaceBuckets() error = %v", err)
	}

	svc := newTestService(t, db, false)

	for name, average := range map[string]func(context.Context, int) (models.DaySlots, bool, error){
		"weekdays": svc.WeekdayAverage,
		"all days": svc.AllDaysAverage,
	} {
		view, _, err := average(context.Background(), DefaultWeeks)
		if err != nil {
			t.Fatalf("%s: average error = %v", name, err)
		}
		if got := view[20].AccessCount; got != 20 {
			t.Errorf("%s: average at 10:00 = %d, want 20", name, got)
		}
	}
}
