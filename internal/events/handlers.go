// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package events

import (
	"context"

	"github.com/tomtom215/accessboard/internal/logging"
	"github.com/tomtom215/accessboard/internal/models"
)

// Handler names, also used as metric labels.
const (
	HandlerCacheInvalidation = "cache-invalidation"
	HandlerWebSocketPush     = "websocket-push"
)

// CacheInvalidator drops cached dashboard views.
type CacheInvalidator interface {
	InvalidateCache()
}

// Broadcaster pushes an import notification to live clients.
type Broadcaster interface {
	BroadcastImportCompleted(event models.ImportCompletedEvent)
}

// CacheInvalidationHandler clears every cached view once an import commits,
// since any date may have changed.
func CacheInvalidationHandler(inv CacheInvalidator) Handler {
	return func(ctx context.Context, event models.ImportCompletedEvent) error {
		inv.InvalidateCache()
		logging.Ctx(ctx).Debug().
			Str("run_id", event.RunID).
			Msg("Dashboard cache invalidated after import")
		return nil
	}
}

// BroadcastHandler forwards the event to connected dashboards.
func BroadcastHandler(b Broadcaster) Handler {
	return func(_ context.Context, event models.ImportCompletedEvent) error {
		b.BroadcastImportCompleted(event)
		return nil
	}
}

// Register wires the standard handlers onto bus.
func Register(bus *Bus, inv CacheInvalidator, b Broadcaster) {
	if inv != nil {
		bus.Handle(HandlerCacheInvalidation, CacheInvalidationHandler(inv))
	}
	if b != nil {
		bus.Handle(HandlerWebSocketPush, BroadcastHandler(b))
	}
}
