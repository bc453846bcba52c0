// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package services

import (
	"context"
	"errors"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/accessboard/internal/logging"
	"github.com/tomtom215/accessboard/internal/models"
)

// FileImporter is satisfied by *accessimport.Importer.
type FileImporter interface {
	ImportFile(ctx context.Context, path string) (models.ImportResult, error)
}

// StartupImportService imports one export file when the tree starts.
//
// The import runs once. Whether it succeeds or fails the service returns
// suture.ErrDoNotRestart, so a bad file is reported once instead of being
// re-imported in a loop. A failure leaves the previous data in place and is
// recorded in the import history.
type StartupImportService struct {
	importer FileImporter
	path     string
	done     chan struct{}
}

// NewStartupImportService imports path through importer.
func NewStartupImportService(importer FileImporter, path string) *StartupImportService {
	return &StartupImportService{
		importer: importer,
		path:     path,
		done:     make(chan struct{}),
	}
}

// Done is closed once the import attempt has finished.
func (s *StartupImportService) Done() <-chan struct{} {
	return s.done
}

// Serve implements suture.Service.
func (s *StartupImportService) Serve(ctx context.Context) error {
	defer close(s.done)

	importCtx := logging.ContextWithNewCorrelationID(ctx)
	logger := logging.Ctx(importCtx)
	logger.Info().Str("path", s.path).Msg("Starting startup import")

	result, err := s.importer.ImportFile(importCtx, s.path)
	switch {
	case err != nil && ctx.Err() != nil:
		logger.Info().Msg("Startup import canceled by shutdown")
		return ctx.Err()
	case errors.Is(err, models.ErrImportInProgress):
		logger.Warn().Msg("Startup import skipped: another import is running")
	case err != nil:
		logger.Error().Err(err).Str("path", s.path).Msg("Startup import failed")
	default:
		logger.Info().
			Int("total_records", result.TotalRecords).
			Int("processed_intervals", result.ProcessedIntervals).
			Msg("Startup import completed")
	}
	return suture.ErrDoNotRestart
}

// String implements fmt.Stringer for supervisor logs.
func (s *StartupImportService) String() string {
	return "startup-import"
}
