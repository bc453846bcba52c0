// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package models

import "errors"

// Failure categories shared by storage, import and HTTP layers. Callers wrap
// them with fmt.Errorf("...: %w", err) and test with errors.Is.
var (
	// ErrStorageUnavailable means the backing store cannot be reached.
	// It is surfaced to the caller without retry.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrInvalidInput means a malformed import payload or out-of-range
	// timestamp. The whole batch is rejected.
	ErrInvalidInput = errors.New("invalid input")

	// ErrImportTransaction means the delete/insert sequence failed and was
	// rolled back; previously stored buckets are untouched.
	ErrImportTransaction = errors.New("import transaction failed")

	// ErrImportInProgress means another import currently holds the importer.
	ErrImportInProgress = errors.New("import already in progress")
)
