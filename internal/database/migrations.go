// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/accessboard/internal/logging"
)

// Migration is one schema change applied on top of the baseline tables.
type Migration struct {
	Version     int
	Name        string
	Description string
	SQL         string
	AppliedAt   time.Time
}

// migrations is append-only. Versions start at 1 and increase by one.
var migrations = []Migration{
	{
		Version:     1,
		Name:        "access_buckets_date_index",
		Description: "Index bucket dates for day and window lookups",
		SQL:         `CREATE INDEX IF NOT EXISTS idx_access_buckets_date ON access_buckets(date)`,
	},
	{
		Version:     2,
		Name:        "import_runs_finished_index",
		Description: "Index import completion time for last-import lookups",
		SQL:         `CREATE INDEX IF NOT EXISTS idx_import_runs_finished ON import_runs(finished_at)`,
	},
}

const (
	createMigrationLog = `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		applied_at TIMESTAMP NOT NULL
	)`
	selectAppliedVersions = `SELECT version FROM schema_migrations`
	insertMigrationLog    = `INSERT INTO schema_migrations (version, name, description, applied_at) VALUES (?, ?, ?, ?)`
)

// runVersionedMigrations applies every migration missing from
// schema_migrations, each in its own transaction together with its log row.
func (db *DB) runVersionedMigrations() error {
	ctx, cancel := schemaContext()
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, createMigrationLog); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	done, err := db.appliedVersions(ctx)
	if err != nil {
		return err
	}

	applied := 0
	for _, m := range migrations {
		if done[m.Version] {
			continue
		}
		if err := db.applyMigration(ctx, m); err != nil {
			return err
		}
		applied++
		logging.Debug().Int("version", m.Version).Str("name", m.Name).Msg("Applied migration")
	}
	if applied > 0 {
		logging.Info().Int("count", applied).Msg("Applied database migrations")
	}
	return nil
}

func (db *DB) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := db.conn.QueryContext(ctx, selectAppliedVersions)
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer closeWithLog(rows, "migration rows")

	done := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan schema_migrations: %w", err)
		}
		done[v] = true
	}
	return done, rows.Err()
}

func (db *DB) applyMigration(ctx context.Context, m Migration) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migration v%d: begin: %w", m.Version, err)
	}
	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("migration v%d (%s): %w", m.Version, m.Name, err)
	}
	if _, err := tx.ExecContext(ctx, insertMigrationLog, m.Version, m.Name, m.Description, time.Now().UTC()); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("migration v%d: record: %w", m.Version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migration v%d: commit: %w", m.Version, err)
	}
	return nil
}

// GetCurrentSchemaVersion returns the highest applied migration, 0 when
// none has run.
func (db *DB) GetCurrentSchemaVersion(ctx context.Context) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var version int
	if err := db.conn.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}
