// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/accessboard/internal/logging"
	"github.com/tomtom215/accessboard/internal/metrics"
	"github.com/tomtom215/accessboard/internal/models"
)

// storageBreaker stops calling DuckDB after repeated failures so callers get
// models.ErrStorageUnavailable immediately instead of queuing on a broken
// connection.
type storageBreaker struct {
	cb   *gobreaker.CircuitBreaker[any]
	name string
}

func newStorageBreaker(name string, maxFailures uint32, timeout time.Duration) *storageBreaker {
	if maxFailures == 0 {
		maxFailures = 5
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			shouldTrip := counts.ConsecutiveFailures >= maxFailures
			if shouldTrip {
				logging.Warn().
					Uint32("consecutive_failures", counts.ConsecutiveFailures).
					Str("breaker", name).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		IsSuccessful: countsAsHealthy,

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &storageBreaker{cb: cb, name: name}
}

// countsAsHealthy reports whether err leaves the breaker's failure count
// alone. Rejected input, canceled requests and import transactions that
// failed on their data say nothing about storage health.
func countsAsHealthy(err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, context.Canceled):
		return true
	case errors.Is(err, models.ErrImportTransaction):
		return !isConnectionError(err)
	default:
		return false
	}
}

// State reports the current breaker state.
func (b *storageBreaker) State() gobreaker.State {
	return b.cb.State()
}

// guard runs fn through the breaker and maps breaker rejections and lost
// connections to models.ErrStorageUnavailable.
func guard[T any](b *storageBreaker, fn func() (T, error)) (T, error) {
	var zero T

	result, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			return zero, fmt.Errorf("%w: %s circuit breaker: %v", models.ErrStorageUnavailable, b.name, err)
		case isConnectionError(err) && !errors.Is(err, models.ErrStorageUnavailable):
			err = fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(b.cb.Counts().ConsecutiveFailures))
		return zero, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)

	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
