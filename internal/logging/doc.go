// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

// Package logging provides the zerolog-based logger shared by every Accessboard
// component.
//
// The global logger is configured once from main via Init and read through the
// level helpers:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Int("buckets", n).Msg("Import committed")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Query failed")
//
// Adapters expose the same logger to libraries with their own logging
// interfaces: NewSlogLogger for sutureslog and NewWatermillLogger for the
// watermill event bus.
//
// Always terminate event chains with Msg or Send; an unterminated chain is
// never written.
package logging
