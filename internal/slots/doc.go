// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

// Package slots defines the half-hour addressing scheme used by ingestion and
// queries.
//
// A day has 48 slots. Slot i covers hour i/2, minute 0 for even i and minute
// 30 for odd i. Raw minutes are always floored to the half hour (08:29 is slot
// 16, 08:30 is slot 17); there is no rounding to nearest.
//
// Out-of-range inputs fail with ErrInvalidTimestamp instead of being clamped.
package slots
