// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tomtom215/accessboard/internal/metrics"
)

// unmatchedEndpoint is the endpoint label for requests no route matched;
// raw paths would give scanners unbounded label cardinality.
const unmatchedEndpoint = "unmatched"

// PrometheusMetrics counts requests, observes their latency and tracks the
// in-flight gauge. The endpoint label is the chi route pattern, e.g.
// /api/v1/access/day.
func PrometheusMetrics(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		// The wrapper keeps Hijacker and Flusher, which the WebSocket route needs.
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next(ww, r)

		metrics.RecordAPIRequest(r.Method, endpointLabel(r), strconv.Itoa(statusOf(ww)), time.Since(start))
	}
}

// statusOf treats a handler that never wrote a header as 200.
func statusOf(ww chimiddleware.WrapResponseWriter) int {
	if code := ww.Status(); code != 0 {
		return code
	}
	return http.StatusOK
}

// endpointLabel reads the matched pattern, so it must run after routing.
func endpointLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return unmatchedEndpoint
}
