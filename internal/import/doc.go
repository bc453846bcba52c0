// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

// Package accessimport ingests access-log exports into the bucket table.
//
// An export is a JSON array of access events (or an object carrying the
// array under "data"). Each event's accessDay is converted to the business
// zone, floored to its half hour and counted per (date, hour, minute). The
// resulting rows replace the stored table in one transaction.
//
// # Pipeline
//
//	export JSON
//	     ↓
//	ParseExport (whole batch rejected on the first bad record)
//	     ↓
//	Aggregate (business zone, 30-minute keys)
//	     ↓
//	BucketStore.ReplaceBuckets (DELETE + INSERT in one transaction)
//	     ↓
//	HistoryStore.Record + EventPublisher.PublishImportCompleted
//
// # Semantics
//
// Imports are not additive: importing the same file twice leaves the same
// rows as importing it once. An empty array clears the table. Only one
// import runs at a time; a second caller gets models.ErrImportInProgress.
//
// # History
//
// Every attempt, failed or not, is kept in a HistoryStore. BadgerHistory
// persists it across restarts, InMemoryHistory is used otherwise.
package accessimport
