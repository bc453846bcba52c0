// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

// Package dashboard answers the dashboard queries: the comparative view of a
// day against the two days before it, the weekday and all-days averages over
// a window of weeks, and the import summary.
//
// Every view is a dense 48-slot sequence. "Today" is the current date in the
// fixed business zone; the comparative view reports how many of the
// reference day's slots have started so clients can tell a quiet slot from
// one that has not happened yet.
//
// Views are cached for the configured TTL. The stored table only changes on
// import, and the service cache is cleared when an import completes.
package dashboard
