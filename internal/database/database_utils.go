// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/tomtom215/accessboard/internal/logging"
)

// Pool and timeout settings.
const (
	defaultQueryTimeout = 30 * time.Second
	maxIdleConns        = 2
	connMaxLifetime     = time.Hour
	connMaxIdleTime     = 5 * time.Minute
)

// applyPoolLimits allows one open connection per CPU for parallel reads.
func applyPoolLimits(conn *sql.DB) {
	conn.SetMaxOpenConns(runtime.NumCPU())
	conn.SetMaxIdleConns(maxIdleConns)
	conn.SetConnMaxLifetime(connMaxLifetime)
	conn.SetConnMaxIdleTime(connMaxIdleTime)
}

// ensureContext adds defaultQueryTimeout to a context that has no deadline.
// A nil ctx is treated as context.Background().
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// Checkpoint flushes the WAL into the database file.
func (db *DB) Checkpoint(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	return nil
}

// Substrings of driver errors that mean the connection itself failed.
var connectionFailures = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"bad connection",
	"database is closed",
	"Could not set lock on file",
	"IO Error",
}

// Substrings of DuckDB optimistic-concurrency failures.
var transactionConflicts = []string{
	"Transaction conflict",
	"Conflict on update",
	"cannot update a table that has been altered",
}

func errorMentions(err error, markers []string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return slices.ContainsFunc(markers, func(m string) bool { return strings.Contains(msg, m) })
}

func isConnectionError(err error) bool { return errorMentions(err, connectionFailures) }

func isTransactionConflict(err error) bool { return errorMentions(err, transactionConflicts) }

// closeWithLog closes c, logging a failure under what.
func closeWithLog(c io.Closer, what string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.Warn().Err(err).Str("type", what).Msg("Close failed")
	}
}

// closeQuietly closes c on a path that is already returning an error.
func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
