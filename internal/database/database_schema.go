// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// tableCreationQueries holds the baseline schema.
//
// access_buckets has no PRIMARY KEY: DuckDB checks unique constraints eagerly,
// and ReplaceBuckets deletes and re-inserts the same keys inside one
// transaction. Key uniqueness is enforced in ReplaceBuckets before insert.
//
// Timestamps are stored as UTC TIMESTAMP so the schema needs no ICU extension.
var tableCreationQueries = []string{
	`CREATE TABLE IF NOT EXISTS access_buckets (
		date DATE NOT NULL,
		hour INTEGER NOT NULL CHECK (hour BETWEEN 0 AND 23),
		minute INTEGER NOT NULL CHECK (minute IN (0, 30)),
		day_of_week INTEGER NOT NULL CHECK (day_of_week BETWEEN 0 AND 6),
		access_count INTEGER NOT NULL CHECK (access_count >= 0)
	)`,

	`CREATE TABLE IF NOT EXISTS import_runs (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		total_records BIGINT NOT NULL,
		processed_intervals BIGINT NOT NULL
	)`,
}
