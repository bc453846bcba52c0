// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

/*
Package events distributes import notifications.

When an import commits, the importer publishes a models.ImportCompletedEvent
on the Bus. The bus is a watermill gochannel with a router in front of the
subscribers; the router recovers handler panics and retries failed handlers
with exponential backoff. Two handlers are registered in production:

  - cache-invalidation clears the dashboard response cache
  - websocket-push notifies open dashboards

Optionally the same event is forwarded to a core NATS subject (the bus topic)
through a watermill-nats publisher guarded by a circuit breaker. The NATS
server may be external (events.nats_url) or embedded in the process
(events.embedded_server).

Typical wiring:

	bus := events.NewBus(events.Config{Topic: cfg.Events.Topic}, logging.NewWatermillLogger())
	events.Register(bus, dashboardService, hub)
	tree.AddMessagingService(bus)
	importer := accessimport.NewImporter(db, &cfg.Import, loc, bus, history)
*/
package events
