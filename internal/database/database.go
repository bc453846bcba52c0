// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/accessboard/internal/config"
	"github.com/tomtom215/accessboard/internal/logging"
)

const memoryPath = ":memory:"

// DB is the DuckDB-backed bucket store. Reads and the import transaction go
// through a circuit breaker; Ping does not.
type DB struct {
	conn    *sql.DB
	cfg     *config.DatabaseConfig
	breaker *storageBreaker
}

// New opens the database at cfg.Path, creating its directory if needed,
// then applies the baseline schema and pending migrations.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	if cfg.Path != memoryPath {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create database directory %s: %w", dir, err)
			}
		}
	}

	conn, err := sql.Open("duckdb", dsn(cfg.Path, threads, cfg.MaxMemory))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Path, err)
	}
	applyPoolLimits(conn)

	db := &DB{
		conn:    conn,
		cfg:     cfg,
		breaker: newStorageBreaker("duckdb", cfg.BreakerMaxFailures, cfg.BreakerTimeout),
	}
	if err := db.initialize(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("initialize %s: %w", cfg.Path, err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Int("threads", threads).
		Str("max_memory", cfg.MaxMemory).
		Msg("Database ready")
	return db, nil
}

// dsn builds the DuckDB connection string. Extension autoloading is off
// because the schema only uses core types.
func dsn(path string, threads int, maxMemory string) string {
	opts := url.Values{}
	opts.Set("access_mode", "read_write")
	opts.Set("threads", strconv.Itoa(threads))
	if maxMemory != "" {
		opts.Set("max_memory", maxMemory)
	}
	opts.Set("autoinstall_known_extensions", "false")
	opts.Set("autoload_known_extensions", "false")
	return path + "?" + opts.Encode()
}

func (db *DB) initialize() error {
	if err := db.createTables(); err != nil {
		return err
	}
	if err := db.runVersionedMigrations(); err != nil {
		return err
	}

	ctx, cancel := schemaContext()
	defer cancel()
	if err := db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Checkpoint after schema setup failed")
	}
	return nil
}

// Conn exposes the pool for callers that need raw SQL.
func (db *DB) Conn() *sql.DB { return db.conn }

// Ping reports whether the connection answers. Readiness probes use it, so
// it bypasses the breaker.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return errors.New("database is not open")
	}
	return db.conn.PingContext(ctx)
}

// Close checkpoints the WAL, then closes the pool.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Checkpoint before close failed")
	}
	return db.conn.Close()
}
