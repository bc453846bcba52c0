// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

// Package query builds parameterized filters over the access_buckets table.
// Values are always bound, never interpolated:
//
//	where, args := query.NewFilter().
//		DateBetween(&from, &to).
//		WeekdaysBetween(time.Monday, time.Friday).
//		Where()
//	rows, err := conn.QueryContext(ctx,
//		"SELECT hour, minute, AVG(access_count) FROM access_buckets "+where+
//			" GROUP BY hour, minute", args...)
package query
