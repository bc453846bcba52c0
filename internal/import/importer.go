// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package accessimport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/accessboard/internal/config"
	"github.com/tomtom215/accessboard/internal/logging"
	"github.com/tomtom215/accessboard/internal/metrics"
	"github.com/tomtom215/accessboard/internal/models"
)

// BucketStore is the storage the importer replaces buckets in.
type BucketStore interface {
	ReplaceBuckets(ctx context.Context, buckets []models.AccessBucket, run models.ImportRun) error
}

// EventPublisher defines the interface for announcing committed imports.
type EventPublisher interface {
	PublishImportCompleted(ctx context.Context, event models.ImportCompletedEvent) error
}

// Importer turns export files into the bucket table.
type Importer struct {
	store     BucketStore
	cfg       *config.ImportConfig
	loc       *time.Location
	publisher EventPublisher
	history   HistoryStore
	now       func() time.Time

	// State
	mu      sync.RWMutex
	running bool
	lastRun *models.ImportRun
}

// NewImporter creates an importer bucketing in loc. publisher and history
// may be nil.
func NewImporter(store BucketStore, cfg *config.ImportConfig, loc *time.Location, publisher EventPublisher, history HistoryStore) *Importer {
	return &Importer{
		store:     store,
		cfg:       cfg,
		loc:       loc,
		publisher: publisher,
		history:   history,
		now:       time.Now,
	}
}

// Import reads an export from r and replaces the stored buckets with it.
// source labels the run in the history (for example "api" or a file name).
func (i *Importer) Import(ctx context.Context, source string, r io.Reader) (models.ImportResult, error) {
	return i.run(ctx, source, func() ([]AccessRecord, error) {
		return ReadExport(r, i.maxBodyBytes())
	})
}

// ImportRecords replaces the stored buckets with already parsed records.
func (i *Importer) ImportRecords(ctx context.Context, source string, records []AccessRecord) (models.ImportResult, error) {
	return i.run(ctx, source, func() ([]AccessRecord, error) {
		for idx := range records {
			if err := checkRecord(&records[idx]); err != nil {
				return nil, fmt.Errorf("%w: record %d: %v", models.ErrInvalidInput, idx, err)
			}
		}
		return records, nil
	})
}

// ImportFile imports the export stored at path.
func (i *Importer) ImportFile(ctx context.Context, path string) (models.ImportResult, error) {
	f, err := os.Open(path) //nolint:gosec // operator-configured path
	if err != nil {
		return models.ImportResult{}, fmt.Errorf("open export file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			logging.Warn().Err(closeErr).Str("path", path).Msg("Error closing export file")
		}
	}()

	return i.Import(ctx, "file:"+filepath.Base(path), f)
}

func (i *Importer) maxBodyBytes() int64 {
	if i.cfg == nil || i.cfg.MaxBodyBytes <= 0 {
		return config.DefaultMaxBodyBytes
	}
	return i.cfg.MaxBodyBytes
}

func (i *Importer) acquire() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.running {
		return models.ErrImportInProgress
	}
	i.running = true
	metrics.ImportInProgress.Set(1)
	return nil
}

func (i *Importer) release(run models.ImportRun) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.running = false
	i.lastRun = &run
	metrics.ImportInProgress.Set(0)
}

// run holds the importer for the whole parse, aggregate and replace sequence.
func (i *Importer) run(ctx context.Context, source string, load func() ([]AccessRecord, error)) (models.ImportResult, error) {
	if err := i.acquire(); err != nil {
		return models.ImportResult{}, err
	}

	run := models.ImportRun{
		ID:        uuid.New().String(),
		Source:    source,
		StartedAt: i.now().UTC(),
	}
	defer func() { i.release(run) }()

	logger := logging.Ctx(ctx).With().Str("run_id", run.ID).Str("source", source).Logger()
	logger.Info().Msg("Starting import")

	records, err := load()
	if err != nil {
		return i.fail(ctx, &run, err)
	}

	buckets := Aggregate(records, i.loc)
	run.TotalRecords = len(records)
	run.ProcessedIntervals = len(buckets)
	run.FinishedAt = i.now().UTC()
	run.Success = true

	if err := i.store.ReplaceBuckets(ctx, buckets, run); err != nil {
		run.Success = false
		return i.fail(ctx, &run, err)
	}

	run.FinishedAt = i.now().UTC()
	metrics.RecordImport(run.Duration(), run.TotalRecords, run.ProcessedIntervals, "", nil)
	i.recordHistory(ctx, run)

	logger.Info().
		Int("total_records", run.TotalRecords).
		Int("processed_intervals", run.ProcessedIntervals).
		Dur("duration", run.Duration()).
		Msg("Import completed")

	if i.publisher != nil {
		event := models.ImportCompletedEvent{
			RunID:              run.ID,
			Source:             run.Source,
			TotalRecords:       run.TotalRecords,
			ProcessedIntervals: run.ProcessedIntervals,
			DateRange:          dateRangeOf(buckets),
			CompletedAt:        run.FinishedAt,
		}
		if err := i.publisher.PublishImportCompleted(ctx, event); err != nil {
			logger.Warn().Err(err).Msg("Failed to publish import completion")
		}
	}

	return models.ImportResult{
		Success:            true,
		Message:            fmt.Sprintf("Imported %d records, processed %d unique intervals", run.TotalRecords, run.ProcessedIntervals),
		TotalRecords:       run.TotalRecords,
		ProcessedIntervals: run.ProcessedIntervals,
	}, nil
}

func (i *Importer) fail(ctx context.Context, run *models.ImportRun, err error) (models.ImportResult, error) {
	run.FinishedAt = i.now().UTC()
	run.Error = err.Error()

	metrics.RecordImport(run.Duration(), 0, 0, errorType(err), err)
	i.recordHistory(ctx, *run)

	logging.Ctx(ctx).Error().Err(err).
		Str("run_id", run.ID).
		Str("source", run.Source).
		Msg("Import failed")

	return models.ImportResult{
		Success: false,
		Message: fmt.Sprintf("Failed to import data: %v", err),
	}, err
}

func (i *Importer) recordHistory(ctx context.Context, run models.ImportRun) {
	if i.history == nil {
		return
	}
	if err := i.history.Record(ctx, run); err != nil {
		logging.Warn().Err(err).Str("run_id", run.ID).Msg("Failed to record import history")
	}
}

// errorType maps an import failure onto the accessboard_import_errors_total label.
func errorType(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, models.ErrStorageUnavailable):
		return "storage_unavailable"
	case errors.Is(err, models.ErrImportTransaction):
		return "transaction"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}

// History returns up to limit recent import attempts, newest first.
func (i *Importer) History(ctx context.Context, limit int) ([]models.ImportRun, error) {
	if i.history == nil {
		return []models.ImportRun{}, nil
	}
	return i.history.Recent(ctx, limit)
}

// LastRun returns the most recent attempt made by this process, or nil.
func (i *Importer) LastRun() *models.ImportRun {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.lastRun == nil {
		return nil
	}
	run := *i.lastRun
	return &run
}

// IsRunning returns whether an import is currently in progress.
func (i *Importer) IsRunning() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.running
}
