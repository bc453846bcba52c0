// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package authz

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DecisionsTotal counts authorization decisions by role, action and outcome.
	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accessboard_authz_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"role", "action", "decision"},
	)

	// DecisionDuration tracks enforcement latency.
	DecisionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "accessboard_authz_decision_duration_seconds",
			Help:    "Duration of authorization decisions in seconds",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		},
		[]string{"cache_hit"},
	)

	// PolicyRules reports the number of loaded rules by type (p or g).
	PolicyRules = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "accessboard_authz_policy_rules",
			Help: "Number of loaded authorization rules",
		},
		[]string{"type"},
	)

	// ErrorsTotal counts enforcement failures.
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accessboard_authz_errors_total",
			Help: "Total number of authorization errors",
		},
		[]string{"type"},
	)
)

func recordDecision(role, action string, allowed bool, d time.Duration, cacheHit bool) {
	outcome := "deny"
	if allowed {
		outcome = "allow"
	}
	DecisionsTotal.WithLabelValues(role, action, outcome).Inc()
	DecisionDuration.WithLabelValues(strconv.FormatBool(cacheHit)).Observe(d.Seconds())
}

func updatePolicyStats(policyRules, groupingRules int) {
	PolicyRules.WithLabelValues("p").Set(float64(policyRules))
	PolicyRules.WithLabelValues("g").Set(float64(groupingRules))
}

func recordError(kind string) {
	ErrorsTotal.WithLabelValues(kind).Inc()
}
