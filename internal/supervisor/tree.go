// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// TreeConfig tunes restarts and shutdown for every supervisor in the tree.
// Zero fields take the DefaultTreeConfig value.
type TreeConfig struct {
	FailureThreshold float64       // failures tolerated before backing off
	FailureDecay     float64       // seconds for the failure count to halve
	FailureBackoff   time.Duration // pause after the threshold is crossed
	ShutdownTimeout  time.Duration // per-service stop budget
}

// DefaultTreeConfig mirrors suture's own defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

func orDefault[T float64 | time.Duration](v, def T) T {
	if v <= 0 {
		return def
	}
	return v
}

func (c TreeConfig) resolved() TreeConfig {
	d := DefaultTreeConfig()
	return TreeConfig{
		FailureThreshold: orDefault(c.FailureThreshold, d.FailureThreshold),
		FailureDecay:     orDefault(c.FailureDecay, d.FailureDecay),
		FailureBackoff:   orDefault(c.FailureBackoff, d.FailureBackoff),
		ShutdownTimeout:  orDefault(c.ShutdownTimeout, d.ShutdownTimeout),
	}
}

func (c TreeConfig) spec() suture.Spec {
	return suture.Spec{
		FailureThreshold: c.FailureThreshold,
		FailureDecay:     c.FailureDecay,
		FailureBackoff:   c.FailureBackoff,
		Timeout:          c.ShutdownTimeout,
	}
}

// Layer groups services that restart independently of the other layers.
type Layer int

const (
	// DataLayer holds services that load stored data, such as the startup import.
	DataLayer Layer = iota
	// MessagingLayer holds NATS, the event bus and the WebSocket hub.
	MessagingLayer
	// APILayer holds the HTTP server and its helpers.
	APILayer
)

var layerNames = [...]string{
	DataLayer:      "data-layer",
	MessagingLayer: "messaging-layer",
	APILayer:       "api-layer",
}

func (l Layer) String() string { return layerNames[l] }

// SupervisorTree is a root supervisor with one child per Layer. A service
// that keeps crashing backs off within its layer without restarting the
// others.
type SupervisorTree struct {
	root   *suture.Supervisor
	layers [len(layerNames)]*suture.Supervisor
	config TreeConfig
}

// NewSupervisorTree builds the tree. Supervisor events are logged through
// logger, or slog.Default when nil.
func NewSupervisorTree(logger *slog.Logger, config TreeConfig) *SupervisorTree {
	if logger == nil {
		logger = slog.Default()
	}
	config = config.resolved()

	rootSpec := config.spec()
	rootSpec.EventHook = (&sutureslog.Handler{Logger: logger}).MustHook()

	t := &SupervisorTree{root: suture.New("accessboard", rootSpec), config: config}
	for l := range t.layers {
		t.layers[l] = suture.New(Layer(l).String(), config.spec())
		t.root.Add(t.layers[l])
	}
	return t
}

// Config returns the effective settings after defaults.
func (t *SupervisorTree) Config() TreeConfig { return t.config }

// Add supervises svc in layer.
func (t *SupervisorTree) Add(layer Layer, svc suture.Service) suture.ServiceToken {
	return t.layers[layer].Add(svc)
}

// AddDataService supervises svc in DataLayer.
func (t *SupervisorTree) AddDataService(svc suture.Service) suture.ServiceToken {
	return t.Add(DataLayer, svc)
}

// AddMessagingService supervises svc in MessagingLayer.
func (t *SupervisorTree) AddMessagingService(svc suture.Service) suture.ServiceToken {
	return t.Add(MessagingLayer, svc)
}

// AddAPIService supervises svc in APILayer.
func (t *SupervisorTree) AddAPIService(svc suture.Service) suture.ServiceToken {
	return t.Add(APILayer, svc)
}

// Serve blocks until ctx is canceled and every service has stopped.
func (t *SupervisorTree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// ServeBackground runs Serve on a goroutine; its result arrives on the
// returned channel.
func (t *SupervisorTree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport lists services that outlived ShutdownTimeout.
func (t *SupervisorTree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
