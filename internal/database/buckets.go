// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/accessboard/internal/database/query"
	"github.com/tomtom215/accessboard/internal/logging"
	"github.com/tomtom215/accessboard/internal/metrics"
	"github.com/tomtom215/accessboard/internal/models"
	"github.com/tomtom215/accessboard/internal/slots"
)

const bucketsTable = "access_buckets"

// ReplaceBuckets atomically replaces the whole bucket table with buckets and
// records run in import_runs. Readers see either the previous table or the
// new one, never an empty or mixed state. An empty slice clears the table.
//
// Errors wrap models.ErrInvalidInput (bad bucket, nothing written),
// models.ErrStorageUnavailable (store unreachable or breaker open) or
// models.ErrImportTransaction (rolled back, previous rows intact).
func (db *DB) ReplaceBuckets(ctx context.Context, buckets []models.AccessBucket, run models.ImportRun) error {
	if err := validateBuckets(buckets); err != nil {
		return err
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := guard(db.breaker, func() (struct{}, error) {
		return struct{}{}, db.replaceBuckets(ctx, buckets, run)
	})
	metrics.RecordDBQuery("replace", bucketsTable, time.Since(start), err)
	return err
}

// validateBuckets checks ranges, weekday consistency and key uniqueness.
func validateBuckets(buckets []models.AccessBucket) error {
	seen := make(map[slots.Key]int, len(buckets))
	for i, b := range buckets {
		if b.Date.IsZero() {
			return fmt.Errorf("%w: bucket %d: missing date", models.ErrInvalidInput, i)
		}
		if _, err := slots.Index(b.Hour, b.Minute); err != nil {
			return fmt.Errorf("%w: bucket %d: %w", models.ErrInvalidInput, i, err)
		}
		if b.AccessCount < 0 {
			return fmt.Errorf("%w: bucket %d: negative access count %d", models.ErrInvalidInput, i, b.AccessCount)
		}
		if want := int(b.Date.Weekday()); b.DayOfWeek != want {
			return fmt.Errorf("%w: bucket %d: day of week %d does not match %s (%d)",
				models.ErrInvalidInput, i, b.DayOfWeek, b.Date, want)
		}
		if prev, dup := seen[b.Key()]; dup {
			return fmt.Errorf("%w: bucket %d duplicates bucket %d (%s)", models.ErrInvalidInput, i, prev, b.Key())
		}
		seen[b.Key()] = i
	}
	return nil
}

func (db *DB) replaceBuckets(ctx context.Context, buckets []models.AccessBucket, run models.ImportRun) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", models.ErrStorageUnavailable, err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().
					Err(rbErr).
					AnErr("original_error", err).
					Msg("Transaction rollback failed")
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM access_buckets`); err != nil {
		return fmt.Errorf("%w: delete existing buckets: %w", models.ErrImportTransaction, err)
	}

	if len(buckets) > 0 {
		if err = insertBuckets(ctx, tx, buckets); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO import_runs (id, source, started_at, finished_at, total_records, processed_intervals)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.StartedAt.UTC(), run.FinishedAt.UTC(), run.TotalRecords, run.ProcessedIntervals)
	if err != nil {
		return fmt.Errorf("%w: record import run: %w", models.ErrImportTransaction, err)
	}

	if err = tx.Commit(); err != nil {
		if isTransactionConflict(err) {
			logging.Warn().Err(err).Msg("Bucket replace lost a transaction conflict")
		}
		return fmt.Errorf("%w: commit: %w", models.ErrImportTransaction, err)
	}

	logging.Debug().
		Int("buckets", len(buckets)).
		Str("run_id", run.ID).
		Msg("Replaced access buckets")
	return nil
}

func insertBuckets(ctx context.Context, tx *sql.Tx, buckets []models.AccessBucket) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO access_buckets (date, hour, minute, day_of_week, access_count)
		 VALUES (CAST(? AS DATE), ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: prepare insert: %w", models.ErrImportTransaction, err)
	}
	defer closeWithLog(stmt, "prepared statement")

	for i, b := range buckets {
		if _, err := stmt.ExecContext(ctx, b.Date.String(), b.Hour, b.Minute, b.DayOfWeek, b.AccessCount); err != nil {
			return fmt.Errorf("%w: insert bucket %d (%s): %w", models.ErrImportTransaction, i, b.Key(), err)
		}
	}
	return nil
}

// GetDayView returns the per-slot totals of one date: always slots.Count
// entries in slot order, zero where no row exists.
func (db *DB) GetDayView(ctx context.Context, date slots.Date) (models.DaySlots, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := query.NewFilter().OnDate(date).Where()
	sqlQuery := `SELECT hour, minute, CAST(SUM(access_count) AS BIGINT)
		FROM access_buckets ` + where + `
		GROUP BY hour, minute`

	start := time.Now()
	view, err := guard(db.breaker, func() (models.DaySlots, error) {
		return db.scanSlots(ctx, sqlQuery, args...)
	})
	metrics.RecordDBQuery("day_view", bucketsTable, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to get day view for %s: %w", date, err)
	}
	return view, nil
}

// GetAverageView returns, per slot, the rounded mean access count over the
// dates in [from, to] that have a row for that slot. Slots with no rows in
// the window are zero. weekdaysOnly restricts rows to Monday-Friday.
func (db *DB) GetAverageView(ctx context.Context, from, to slots.Date, weekdaysOnly bool) (models.DaySlots, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	filter := query.NewFilter().DateBetween(&from, &to)
	if weekdaysOnly {
		filter.WeekdaysBetween(time.Monday, time.Friday)
	}
	where, args := filter.Where()

	// DuckDB ROUND rounds half away from zero.
	sqlQuery := `SELECT hour, minute, CAST(ROUND(AVG(access_count)) AS BIGINT)
		FROM access_buckets ` + where + `
		GROUP BY hour, minute`

	operation := "average_view"
	if weekdaysOnly {
		operation = "weekday_average_view"
	}

	start := time.Now()
	view, err := guard(db.breaker, func() (models.DaySlots, error) {
		return db.scanSlots(ctx, sqlQuery, args...)
	})
	metrics.RecordDBQuery(operation, bucketsTable, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to get average view for %s..%s: %w", from, to, err)
	}
	return view, nil
}

// scanSlots runs a (hour, minute, value) query and zero-fills the result.
func (db *DB) scanSlots(ctx context.Context, sqlQuery string, args ...interface{}) (models.DaySlots, error) {
	rows, err := db.conn.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	view := models.NewDaySlots()
	for rows.Next() {
		var hour, minute int
		var value int64
		if err := rows.Scan(&hour, &minute, &value); err != nil {
			return nil, fmt.Errorf("failed to scan slot row: %w", err)
		}
		if err := view.Set(hour, minute, int(value)); err != nil {
			return nil, fmt.Errorf("stored bucket out of range: %w", err)
		}
	}
	return view, rows.Err()
}

// GetImportStats summarizes the stored buckets. It never fails: when storage
// cannot be read it logs the cause and returns zeroed stats.
func (db *DB) GetImportStats(ctx context.Context) models.ImportStats {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	stats, err := guard(db.breaker, func() (models.ImportStats, error) {
		return db.importStats(ctx)
	})
	metrics.RecordDBQuery("import_stats", bucketsTable, time.Since(start), err)
	if err != nil {
		logging.Warn().Err(err).Msg("Import stats unavailable, returning empty stats")
		return models.ImportStats{}
	}
	return stats
}

func (db *DB) importStats(ctx context.Context) (models.ImportStats, error) {
	var (
		stats        models.ImportStats
		minDate      sql.NullString
		maxDate      sql.NullString
		lastFinished sql.NullTime
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*), CAST(MIN(date) AS VARCHAR), CAST(MAX(date) AS VARCHAR) FROM access_buckets`,
	).Scan(&stats.TotalRecords, &minDate, &maxDate)
	if err != nil {
		return models.ImportStats{}, fmt.Errorf("failed to count buckets: %w", err)
	}

	if minDate.Valid && maxDate.Valid {
		startDate, err := slots.ParseDate(minDate.String)
		if err != nil {
			return models.ImportStats{}, err
		}
		endDate, err := slots.ParseDate(maxDate.String)
		if err != nil {
			return models.ImportStats{}, err
		}
		stats.DateRange = &models.DateRange{Start: startDate, End: endDate}
	}

	if err := db.conn.QueryRowContext(ctx, `SELECT MAX(finished_at) FROM import_runs`).Scan(&lastFinished); err != nil {
		return models.ImportStats{}, fmt.Errorf("failed to read last import: %w", err)
	}
	if lastFinished.Valid {
		last := lastFinished.Time.UTC()
		stats.LastImport = &last
	}

	return stats, nil
}
