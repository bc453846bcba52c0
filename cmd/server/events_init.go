// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/accessboard/internal/config"
	"github.com/tomtom215/accessboard/internal/events"
	"github.com/tomtom215/accessboard/internal/logging"
	"github.com/tomtom215/accessboard/internal/models"
	"github.com/tomtom215/accessboard/internal/supervisor"
)

// EventComponents holds the event bus and its optional NATS pieces for
// lifecycle management.
type EventComponents struct {
	bus       *events.Bus
	server    *events.EmbeddedServer
	forwarder *events.Forwarder
}

// InitEvents creates the in-process bus. When forwarding is configured it
// also starts the embedded NATS server (if enabled) and attaches a
// forwarder, preferring an explicit NATS_URL over the embedded server.
func InitEvents(cfg *config.EventsConfig) (*EventComponents, error) {
	busCfg := events.DefaultConfig()
	if cfg.Topic != "" {
		busCfg.Topic = cfg.Topic
	}

	c := &EventComponents{
		bus: events.NewBus(busCfg, logging.NewWatermillLogger()),
	}
	if !cfg.ForwardingEnabled() {
		logging.Info().Str("topic", busCfg.Topic).Msg("Event bus initialized (forwarding disabled)")
		return c, nil
	}

	if cfg.EmbeddedServer {
		server, err := events.NewEmbeddedServer(events.EmbeddedServerConfig{Port: cfg.EmbeddedPort})
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS server: %w", err)
		}
		c.server = server
		logging.Info().Str("url", server.ClientURL()).Msg("Embedded NATS server started")
	}

	url := forwardURL(cfg.NATSURL, c.server)
	forwarder, err := events.NewForwarder(events.DefaultForwarderConfig(url), logging.NewWatermillLogger())
	if err != nil {
		c.shutdownServer()
		return nil, fmt.Errorf("create event forwarder: %w", err)
	}
	c.forwarder = forwarder
	c.bus.SetForwarder(forwarder)

	logging.Info().
		Str("topic", busCfg.Topic).
		Str("nats_url", url).
		Msg("Event bus initialized with NATS forwarding")
	return c, nil
}

// forwardURL picks the NATS server events are forwarded to.
func forwardURL(configured string, server *events.EmbeddedServer) string {
	if configured != "" || server == nil {
		return configured
	}
	return server.ClientURL()
}

// Bus returns the event bus.
func (c *EventComponents) Bus() *events.Bus {
	if c == nil {
		return nil
	}
	return c.bus
}

// AddToSupervisor registers the event services in the messaging layer. The
// embedded server goes first so it stops after the bus.
func (c *EventComponents) AddToSupervisor(tree *supervisor.SupervisorTree) {
	if c == nil {
		return
	}
	if c.server != nil {
		tree.AddMessagingService(c.server)
	}
	tree.AddMessagingService(c.bus)
	logging.Info().Bool("embedded_nats", c.server != nil).Msg("Event services added to supervisor tree")
}

// Close releases the bus, the forwarder and the embedded server.
func (c *EventComponents) Close() {
	if c == nil {
		return
	}
	if c.bus != nil {
		if err := c.bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}
	c.shutdownServer()
}

func (c *EventComponents) shutdownServer() {
	if c.server != nil {
		c.server.Shutdown()
	}
}

// importPublisher clears the dashboard cache before an import is announced,
// so a read issued right after a successful import never sees stale views.
// The bus handlers still run for live clients and forwarding.
type importPublisher struct {
	cache events.CacheInvalidator
	bus   *events.Bus
}

func (p importPublisher) PublishImportCompleted(ctx context.Context, event models.ImportCompletedEvent) error {
	if p.cache != nil {
		p.cache.InvalidateCache()
	}
	if p.bus == nil {
		return nil
	}
	return p.bus.PublishImportCompleted(ctx, event)
}
