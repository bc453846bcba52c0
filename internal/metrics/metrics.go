// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package metrics

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every collector registered by this package.
const Namespace = "accessboard"

func counter(subsystem, name, help string) prometheus.Counter {
	return promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace, Subsystem: subsystem, Name: name, Help: help,
	})
}

func counterVec(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace, Subsystem: subsystem, Name: name, Help: help,
	}, labels)
}

func gauge(subsystem, name, help string) prometheus.Gauge {
	return promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace, Subsystem: subsystem, Name: name, Help: help,
	})
}

func gaugeVec(subsystem, name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace, Subsystem: subsystem, Name: name, Help: help,
	}, labels)
}

func histogramVec(subsystem, name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace, Subsystem: subsystem, Name: name, Help: help, Buckets: buckets,
	}, labels)
}

var (
	requestBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	importBuckets  = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}
)

// Storage.
var (
	DBQueryDuration = histogramVec("db", "query_duration_seconds",
		"Duration of DuckDB queries in seconds", prometheus.DefBuckets,
		"operation", "table")
	// error_type: timeout, canceled, storage_unavailable, other
	DBQueryErrors = counterVec("db", "query_errors_total",
		"DuckDB queries that returned an error",
		"operation", "table", "error_type")
)

// HTTP API.
var (
	APIRequestsTotal = counterVec("api", "requests_total",
		"API requests served", "method", "endpoint", "status_code")
	APIRequestDuration = histogramVec("api", "request_duration_seconds",
		"API request latency in seconds", requestBuckets, "method", "endpoint")
	APIActiveRequests = gauge("api", "active_requests",
		"API requests currently in flight")
	APIRateLimitHits = counterVec("api", "rate_limit_hits_total",
		"Requests rejected by the rate limiter", "endpoint")
)

// Imports.
var (
	ImportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace, Subsystem: "import", Name: "duration_seconds",
		Help: "Wall time of export imports in seconds", Buckets: importBuckets,
	})
	ImportRecordsProcessed = counter("import", "records_processed_total",
		"Access records read from committed imports")
	ImportIntervalsWritten = counter("import", "intervals_written_total",
		"Half-hour buckets written by committed imports")
	// error_type: invalid_input, transaction, in_progress, storage_unavailable, other
	ImportErrors = counterVec("import", "errors_total",
		"Imports that failed", "error_type")
	ImportLastSuccess = gauge("import", "last_success_timestamp",
		"Unix time of the last committed import")
	ImportInProgress = gauge("import", "in_progress",
		"1 while an import is running")
)

// Query cache.
var (
	CacheHits = counterVec("cache", "hits_total",
		"Cache lookups that found a live entry", "cache_type")
	CacheMisses = counterVec("cache", "misses_total",
		"Cache lookups that found nothing", "cache_type")
	CacheSize = gaugeVec("cache", "entries",
		"Entries currently cached", "cache_type")
	CacheEvictions = counterVec("cache", "evictions_total",
		"Entries dropped after their TTL", "cache_type")
)

// WebSocket hub.
var (
	WSConnections = gauge("websocket", "connections",
		"Open WebSocket connections")
	WSMessagesSent = counter("websocket", "messages_sent_total",
		"Messages written to WebSocket clients")
	WSMessagesReceived = counter("websocket", "messages_received_total",
		"Messages read from WebSocket clients")
	WSErrors = counterVec("websocket", "errors_total",
		"WebSocket failures", "error_type")
)

// Circuit breakers.
var (
	// 0=closed, 1=half-open, 2=open
	CircuitBreakerState = gaugeVec("circuit_breaker", "state",
		"Circuit breaker state", "name")
	// result: success, failure, rejected
	CircuitBreakerRequests = counterVec("circuit_breaker", "requests_total",
		"Calls routed through a circuit breaker", "name", "result")
	CircuitBreakerConsecutiveFailures = gaugeVec("circuit_breaker", "consecutive_failures",
		"Failures since the last success", "name")
	CircuitBreakerTransitions = counterVec("circuit_breaker", "state_transitions_total",
		"Circuit breaker state changes", "name", "from_state", "to_state")
)

// Event bus.
var (
	// transport: local, nats
	EventsPublished = counterVec("events", "published_total",
		"Events published on the bus", "topic", "transport")
	EventsHandled = counterVec("events", "handled_total",
		"Router handler invocations", "handler", "result")
)

// Process.
var (
	AppInfo = gaugeVec("", "app_info",
		"Build information, always 1", "version", "go_version")
	AppUptime = gauge("", "app_uptime_seconds",
		"Seconds since the process started")
)

// RecordDBQuery observes one storage call.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table, classifyDBError(err)).Inc()
	}
}

// classifyDBError keeps the error_type label bounded.
func classifyDBError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case strings.Contains(err.Error(), "storage unavailable"):
		return "storage_unavailable"
	}
	return "other"
}

// RecordAPIRequest counts one served request and observes its latency.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest moves the in-flight gauge up on start and down on
// completion.
func TrackActiveRequest(started bool) {
	if started {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}

// RecordImport records the outcome of one import. errorType is ignored
// when err is nil.
func RecordImport(duration time.Duration, records, intervals int, errorType string, err error) {
	ImportDuration.Observe(duration.Seconds())
	if err != nil {
		if errorType == "" {
			errorType = "other"
		}
		ImportErrors.WithLabelValues(errorType).Inc()
		return
	}
	ImportRecordsProcessed.Add(float64(records))
	ImportIntervalsWritten.Add(float64(intervals))
	ImportLastSuccess.SetToCurrentTime()
}

// RecordCacheHit counts a hit for cacheType.
func RecordCacheHit(cacheType string) { CacheHits.WithLabelValues(cacheType).Inc() }

// RecordCacheMiss counts a miss for cacheType.
func RecordCacheMiss(cacheType string) { CacheMisses.WithLabelValues(cacheType).Inc() }

// RecordEventPublished counts one published event.
func RecordEventPublished(topic, transport string) {
	EventsPublished.WithLabelValues(topic, transport).Inc()
}

// RecordEventHandled counts one handler invocation.
func RecordEventHandled(handler string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	EventsHandled.WithLabelValues(handler, result).Inc()
}

// SetAppInfo publishes the running version.
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
}
