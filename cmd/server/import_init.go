// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/tomtom215/accessboard/internal/config"
	"github.com/tomtom215/accessboard/internal/database"
	accessimport "github.com/tomtom215/accessboard/internal/import"
	"github.com/tomtom215/accessboard/internal/logging"
	"github.com/tomtom215/accessboard/internal/supervisor"
	"github.com/tomtom215/accessboard/internal/supervisor/services"
)

// ImportComponents holds the importer and its history store.
type ImportComponents struct {
	importer *accessimport.Importer
	history  accessimport.HistoryStore
	closer   io.Closer
}

// openHistory returns a BadgerDB-backed history when path is set and an
// in-memory one otherwise. closer is nil for the in-memory store.
func openHistory(path string, limit int) (accessimport.HistoryStore, io.Closer, error) {
	if path == "" {
		return accessimport.NewInMemoryHistory(limit), nil, nil
	}
	h, err := accessimport.OpenBadgerHistory(path, limit)
	if err != nil {
		return nil, nil, err
	}
	return h, h, nil
}

// InitImport creates the importer. Committed imports are announced through
// publisher.
func InitImport(cfg *config.ImportConfig, db *database.DB, loc *time.Location, publisher accessimport.EventPublisher) (*ImportComponents, error) {
	history, closer, err := openHistory(cfg.HistoryPath, cfg.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("open import history: %w", err)
	}
	if closer != nil {
		logging.Info().Str("path", cfg.HistoryPath).Int("limit", cfg.HistoryLimit).Msg("Import history persisted in BadgerDB")
	} else {
		logging.Info().Int("limit", cfg.HistoryLimit).Msg("Import history kept in memory (IMPORT_HISTORY_PATH not set)")
	}

	return &ImportComponents{
		importer: accessimport.NewImporter(db, cfg, loc, publisher, history),
		history:  history,
		closer:   closer,
	}, nil
}

// AddStartupImport schedules a one-shot import of the configured file in the
// data layer. It is a no-op unless IMPORT_FILE_PATH and IMPORT_AUTO_START
// are both set.
func (c *ImportComponents) AddStartupImport(cfg *config.ImportConfig, tree *supervisor.SupervisorTree) bool {
	if c == nil || cfg.FilePath == "" || !cfg.AutoStart {
		return false
	}
	tree.AddDataService(services.NewStartupImportService(c.importer, cfg.FilePath))
	logging.Info().Str("path", cfg.FilePath).Msg("Startup import added to supervisor tree")
	return true
}

// Close releases the history store.
func (c *ImportComponents) Close() {
	if c == nil || c.closer == nil {
		return
	}
	if err := c.closer.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing import history")
	}
}
