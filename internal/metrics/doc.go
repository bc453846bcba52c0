// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

/*
Package metrics holds the Prometheus collectors shared across the server.

Collectors register with the default registry through promauto and are
served at /metrics. Every name carries the accessboard_ prefix followed by a
subsystem:

	curl -s http://localhost:3857/metrics | grep ^accessboard_

# Collectors

Storage:
  - accessboard_db_query_duration_seconds{operation, table}
  - accessboard_db_query_errors_total{operation, table, error_type}

API:
  - accessboard_api_requests_total{method, endpoint, status_code}
  - accessboard_api_request_duration_seconds{method, endpoint}
  - accessboard_api_active_requests
  - accessboard_api_rate_limit_hits_total{endpoint}

Import:
  - accessboard_import_duration_seconds
  - accessboard_import_records_processed_total
  - accessboard_import_intervals_written_total
  - accessboard_import_errors_total{error_type}
  - accessboard_import_last_success_timestamp
  - accessboard_import_in_progress

The cache, websocket, circuit_breaker and events subsystems follow the same
pattern, for example accessboard_cache_hits_total{cache_type} and
accessboard_circuit_breaker_state{name}.

# Alerts

	groups:
	  - name: accessboard
	    rules:
	      - alert: StorageCircuitOpen
	        expr: accessboard_circuit_breaker_state{name="duckdb"} == 2
	        for: 1m
	      - alert: ImportStale
	        expr: time() - accessboard_import_last_success_timestamp > 86400
	        for: 1h

# Usage

	start := time.Now()
	err := db.ReplaceBuckets(ctx, buckets, run)
	metrics.RecordDBQuery("replace", "access_buckets", time.Since(start), err)
*/
package metrics
