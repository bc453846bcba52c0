// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package models

import (
	"time"

	"github.com/tomtom215/accessboard/internal/slots"
)

// AccessBucket is one persisted row of the access_buckets table: the number of
// access events that fell into a half-hour slot of a business-local day.
type AccessBucket struct {
	Date        slots.Date `json:"date"`
	Hour        int        `json:"hour"`
	Minute      int        `json:"minute"`
	DayOfWeek   int        `json:"dayOfWeek"` // 0=Sunday .. 6=Saturday
	AccessCount int        `json:"accessCount"`
}

// NewAccessBucket derives DayOfWeek from the key's date.
func NewAccessBucket(key slots.Key, count int) AccessBucket {
	return AccessBucket{
		Date:        key.Date,
		Hour:        key.Hour,
		Minute:      key.Minute,
		DayOfWeek:   int(key.Weekday()),
		AccessCount: count,
	}
}

// Key returns the bucket's slot key.
func (b AccessBucket) Key() slots.Key {
	return slots.Key{Date: b.Date, Hour: b.Hour, Minute: b.Minute}
}

// DaySlot is one entry of a DaySlots view.
type DaySlot struct {
	Hour        int `json:"hour"`
	Minute      int `json:"minute"`
	AccessCount int `json:"accessCount"`
}

// DaySlots is a dense, chronologically ordered view of one day: always
// slots.Count entries, zero where no rows exist.
type DaySlots []DaySlot

// NewDaySlots returns a zero-filled view with every slot addressed.
func NewDaySlots() DaySlots {
	out := make(DaySlots, slots.Count)
	for i := range out {
		hour, minute, _ := slots.FromIndex(i)
		out[i] = DaySlot{Hour: hour, Minute: minute}
	}
	return out
}

// Set stores count at (hour, minute). Invalid addresses are reported, not clamped.
func (d DaySlots) Set(hour, minute, count int) error {
	index, err := slots.Index(hour, minute)
	if err != nil {
		return err
	}
	d[index].AccessCount = count
	return nil
}

// Counts returns the access counts in slot order.
func (d DaySlots) Counts() []int {
	out := make([]int, len(d))
	for i, s := range d {
		out[i] = s.AccessCount
	}
	return out
}

// SlotDelta is the day-over-day change of one slot, today against yesterday.
type SlotDelta struct {
	Hour       int  `json:"hour"`
	Minute     int  `json:"minute"`
	Percentage int  `json:"percentage"`
	IsGain     bool `json:"isGain"`
	Observed   bool `json:"observed"`
}

// ComparativeData is the reference day and the two days before it.
//
// ObservedSlots counts the slots of the reference day that have started;
// slots at or beyond that index have not elapsed yet and their zero counts
// mean "not yet observed" rather than "no traffic".
type ComparativeData struct {
	ReferenceDate      slots.Date  `json:"referenceDate"`
	Today              DaySlots    `json:"today"`
	Yesterday          DaySlots    `json:"yesterday"`
	DayBeforeYesterday DaySlots    `json:"dayBeforeYesterday"`
	ObservedSlots      int         `json:"observedSlots"`
	Deltas             []SlotDelta `json:"deltas"`
}

// DateRange is an inclusive range of stored dates.
type DateRange struct {
	Start slots.Date `json:"start"`
	End   slots.Date `json:"end"`
}

// ImportStats summarizes the stored bucket table.
type ImportStats struct {
	TotalRecords int64      `json:"totalRecords"`
	DateRange    *DateRange `json:"dateRange"`
	LastImport   *time.Time `json:"lastImport"`
}

// ImportResult is returned to the caller of an import.
type ImportResult struct {
	Success            bool   `json:"success"`
	Message            string `json:"message"`
	TotalRecords       int    `json:"totalRecords"`
	ProcessedIntervals int    `json:"processedIntervals"`
}

// ImportRun records one import attempt, successful or not.
type ImportRun struct {
	ID                 string    `json:"id"`
	Source             string    `json:"source"`
	StartedAt          time.Time `json:"startedAt"`
	FinishedAt         time.Time `json:"finishedAt"`
	TotalRecords       int       `json:"totalRecords"`
	ProcessedIntervals int       `json:"processedIntervals"`
	Success            bool      `json:"success"`
	Error              string    `json:"error,omitempty"`
}

// Duration returns how long the run took.
func (r ImportRun) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// ImportCompletedEvent is published after an import commits.
type ImportCompletedEvent struct {
	RunID              string     `json:"runId"`
	Source             string     `json:"source"`
	TotalRecords       int        `json:"totalRecords"`
	ProcessedIntervals int        `json:"processedIntervals"`
	DateRange          *DateRange `json:"dateRange,omitempty"`
	CompletedAt        time.Time  `json:"completedAt"`
}

// HealthStatus is returned by the detailed health endpoint.
type HealthStatus struct {
	Status            string     `json:"status"`
	Version           string     `json:"version"`
	DatabaseConnected bool       `json:"database_connected"`
	LastImport        *time.Time `json:"last_import,omitempty"`
	Uptime            float64    `json:"uptime"`
}
