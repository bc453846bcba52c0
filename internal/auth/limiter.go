// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Failed-login throttling defaults: a burst of 5 attempts, then one more
// every 3 minutes per client IP.
const (
	DefaultFailureBurst    = 5
	DefaultFailureInterval = 3 * time.Minute
	failureEntryIdle       = time.Hour
)

type failureEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// FailureLimiter throttles authentication failures per client IP. Each
// failure consumes a token; a client with no tokens left is blocked until the
// bucket refills.
type FailureLimiter struct {
	mu      sync.Mutex
	entries map[string]*failureEntry
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

// NewFailureLimiter allows burst failures and refills one every interval.
func NewFailureLimiter(burst int, interval time.Duration) *FailureLimiter {
	if burst <= 0 {
		burst = DefaultFailureBurst
	}
	if interval <= 0 {
		interval = DefaultFailureInterval
	}
	return &FailureLimiter{
		entries: make(map[string]*failureEntry),
		limit:   rate.Every(interval),
		burst:   burst,
		now:     time.Now,
	}
}

func (l *FailureLimiter) entry(ip string) *failureEntry {
	e, ok := l.entries[ip]
	if !ok {
		e = &failureEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[ip] = e
	}
	e.lastSeen = l.now()
	return e
}

// Blocked reports whether ip has used up its failure budget.
func (l *FailureLimiter) Blocked(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[ip]
	if !ok {
		return false
	}
	return e.limiter.TokensAt(l.now()) < 1
}

// RecordFailure spends one token for ip.
func (l *FailureLimiter) RecordFailure(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entry(ip).limiter.AllowN(l.now(), 1)
}

// Reset forgets ip, typically after a successful login.
func (l *FailureLimiter) Reset(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, ip)
}

// Sweep drops entries idle for longer than the idle window.
func (l *FailureLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-failureEntryIdle)
	removed := 0
	for ip, e := range l.entries {
		if e.lastSeen.Before(cutoff) {
			delete(l.entries, ip)
			removed++
		}
	}
	return removed
}

// Serve sweeps idle entries every ten minutes until ctx is canceled. It
// implements suture.Service.
func (l *FailureLimiter) Serve(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (l *FailureLimiter) String() string {
	return "auth-failure-limiter"
}
