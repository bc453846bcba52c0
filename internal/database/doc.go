// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

// Package database stores half-hour access buckets in DuckDB and serves the
// dashboard's read models.
//
// # Files
//
//   - database.go: connection lifecycle (open, initialize, ping, close)
//   - database_utils.go: pool limits, query timeouts, error classification
//   - database_schema.go: baseline tables (access_buckets, import_runs)
//   - migrations.go: versioned, append-only schema migrations
//   - buckets.go: ReplaceBuckets, GetDayView, GetAverageView, GetImportStats
//   - breaker.go: circuit breaker mapping outages to models.ErrStorageUnavailable
//   - seed.go: synthetic demo traffic
//
// # Consistency
//
// ReplaceBuckets runs DELETE, INSERT and the import_runs insert in one
// transaction. Any failure rolls back and the previous table stays visible.
//
// # Averages
//
// GetAverageView groups rows by (hour, minute) and averages only the dates
// that have a row for that slot. A date with no row for a slot does not pull
// that slot's average towards zero.
package database
