// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/accessboard/internal/cache"
	"github.com/tomtom215/accessboard/internal/logging"
	"github.com/tomtom215/accessboard/internal/models"
	"github.com/tomtom215/accessboard/internal/slots"
)

// Store is the read side of the bucket table.
type Store interface {
	GetDayView(ctx context.Context, date slots.Date) (models.DaySlots, error)
	GetAverageView(ctx context.Context, from, to slots.Date, weekdaysOnly bool) (models.DaySlots, error)
	GetImportStats(ctx context.Context) models.ImportStats
}

// Service answers the dashboard queries in the business zone.
type Service struct {
	store Store
	loc   *time.Location
	cache *cache.Cache
	now   func() time.Time
}

// NewService creates a dashboard service. c may be nil to disable caching.
func NewService(store Store, loc *time.Location, c *cache.Cache) *Service {
	return &Service{
		store: store,
		loc:   loc,
		cache: c,
		now:   time.Now,
	}
}

// Today returns the current calendar date in the business zone.
func (s *Service) Today() slots.Date {
	return slots.DateOf(s.now().In(s.loc))
}

// Location returns the business zone.
func (s *Service) Location() *time.Location {
	return s.loc
}

// InvalidateCache drops every cached view. Called after an import commits.
func (s *Service) InvalidateCache() {
	if s.cache != nil {
		s.cache.Clear()
	}
}

// cached returns the cached value for key or computes and stores it. The bool
// reports whether the value came from the cache.
func cached[T any](s *Service, key string, load func() (T, error)) (T, bool, error) {
	if s.cache != nil {
		if hit, ok := s.cache.Get(key); ok {
			if v, ok := hit.(T); ok {
				return v, true, nil
			}
		}
	}

	v, err := load()
	if err != nil {
		return v, false, err
	}
	if s.cache != nil {
		s.cache.Set(key, v)
	}
	return v, false, nil
}

// Day returns the dense view of one date.
func (s *Service) Day(ctx context.Context, date slots.Date) (models.DaySlots, bool, error) {
	key := cache.GenerateKey("Day", date)
	return cached(s, key, func() (models.DaySlots, error) {
		return s.store.GetDayView(ctx, date)
	})
}

// Comparative returns the reference day, the two days before it, the
// per-slot deltas against yesterday and how many reference slots have
// elapsed. A nil reference means today in the business zone.
//
// Results for the current day are not cached because observedSlots moves
// every half hour.
func (s *Service) Comparative(ctx context.Context, reference *slots.Date) (models.ComparativeData, bool, error) {
	now := s.now()
	today := slots.DateOf(now.In(s.loc))
	ref := today
	if reference != nil {
		ref = *reference
	}

	load := func() (models.ComparativeData, error) {
		return s.comparative(ctx, ref, now)
	}
	if ref.Before(today) {
		return cached(s, cache.GenerateKey("Comparative", ref), load)
	}
	data, err := load()
	return data, false, err
}

func (s *Service) comparative(ctx context.Context, ref slots.Date, now time.Time) (models.ComparativeData, error) {
	days := make([]models.DaySlots, 3)
	for n := range days {
		view, err := s.store.GetDayView(ctx, ref.AddDays(-n))
		if err != nil {
			return models.ComparativeData{}, fmt.Errorf("day view %s: %w", ref.AddDays(-n), err)
		}
		days[n] = view
	}

	observed := slots.Elapsed(ref, now, s.loc)
	logging.Ctx(ctx).Debug().
		Str("reference_date", ref.String()).
		Int("observed_slots", observed).
		Msg("Comparative view computed")

	return models.ComparativeData{
		ReferenceDate:      ref,
		Today:              days[0],
		Yesterday:          days[1],
		DayBeforeYesterday: days[2],
		ObservedSlots:      observed,
		Deltas:             ComputeDeltas(days[0], days[1], observed),
	}, nil
}

type averageKey struct {
	From         slots.Date
	To           slots.Date
	WeekdaysOnly bool
}

// WeekdayAverage averages Monday through Friday over the last weeks weeks.
func (s *Service) WeekdayAverage(ctx context.Context, weeks int) (models.DaySlots, bool, error) {
	return s.average(ctx, weeks, true)
}

// AllDaysAverage averages every day over the last weeks weeks.
func (s *Service) AllDaysAverage(ctx context.Context, weeks int) (models.DaySlots, bool, error) {
	return s.average(ctx, weeks, false)
}

func (s *Service) average(ctx context.Context, weeks int, weekdaysOnly bool) (models.DaySlots, bool, error) {
	from, to, err := AverageWindow(s.Today(), weeks)
	if err != nil {
		return nil, false, err
	}
	key := cache.GenerateKey("Average", averageKey{From: from, To: to, WeekdaysOnly: weekdaysOnly})
	return cached(s, key, func() (models.DaySlots, error) {
		return s.store.GetAverageView(ctx, from, to, weekdaysOnly)
	})
}

// ImportStats summarizes the stored table. It never fails; storage errors
// degrade to zeroed stats.
func (s *Service) ImportStats(ctx context.Context) models.ImportStats {
	return s.store.GetImportStats(ctx)
}
