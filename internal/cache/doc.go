// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

/*
Package cache provides a thread-safe in-memory response cache with TTL
expiration.

The dashboard service caches its day and average views for five minutes by
default. The stored bucket table only changes on import, so the whole cache
is cleared when an import commits rather than tracking per-key dependencies.

# Keys

GenerateKey hashes the method name and its parameters:

	key := cache.GenerateKey("WeekdayAverage", struct{ Weeks int }{4})
	// "WeekdayAverage:3f1c..."

# Expiration

Entries expire lazily on Get and are also swept every five minutes by a
background goroutine that stops on Close.

# Metrics

Hits, misses, evictions and the entry count are exported through
internal/metrics with the cache name as the cache_type label.
*/
package cache
