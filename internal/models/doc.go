// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

/*
Package models defines the data structures shared across Accessboard.

Storage model:
  - AccessBucket: one (date, hour, half-hour) row with its access count

Query views:
  - DaySlots: dense 48-entry view of one day, zero-filled
  - ComparativeData: reference day, yesterday and the day before, with
    day-over-day deltas
  - ImportStats: table size, stored date range and last import time

Import:
  - ImportResult, ImportRun, ImportCompletedEvent

HTTP:
  - APIResponse, Metadata, APIError: the JSON envelope

The error taxonomy (ErrStorageUnavailable, ErrInvalidInput,
ErrImportTransaction, ErrImportInProgress) also lives here so every layer can
classify failures without importing the others.
*/
package models
