// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package websocket

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/goccy/go-json"

	"github.com/tomtom215/accessboard/internal/logging"
	"github.com/tomtom215/accessboard/internal/metrics"
	"github.com/tomtom215/accessboard/internal/models"
)

// ShutdownReason is logged when the hub stops.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Frame types.
const (
	MessageTypeImportCompleted = "import_completed"
	MessageTypePing            = "ping"
	MessageTypePong            = "pong"
)

// broadcastBuffer is how many broadcasts may wait for the hub loop before
// BroadcastJSON starts dropping.
const broadcastBuffer = 64

// Message is the JSON envelope of every frame.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub owns the set of connected dashboards. Membership changes and fan-out
// all happen on the RunWithContext goroutine.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	broadcast chan Message

	mu      sync.RWMutex
	clients map[*Client]bool
}

// NewHub returns an idle hub; start it with RunWithContext.
func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		broadcast:  make(chan Message, broadcastBuffer),
		clients:    make(map[*Client]bool),
	}
}

// RunWithContext serves the hub until ctx ends, then closes every client and
// returns ctx.Err(). Pending registrations are handled before the next
// broadcast so a client that registered first always sees it.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return h.stop(ctx)
		}
		if h.handleLifecycle() {
			continue
		}

		select {
		case <-ctx.Done():
			return h.stop(ctx)
		case c := <-h.Register:
			h.attach(c)
		case c := <-h.Unregister:
			h.leave(c)
		case msg := <-h.broadcast:
			h.broadcastToClients(msg)
		}
	}
}

// handleLifecycle processes one waiting registration or unregistration
// without blocking and reports whether it did.
func (h *Hub) handleLifecycle() bool {
	select {
	case c := <-h.Register:
		h.attach(c)
	case c := <-h.Unregister:
		h.leave(c)
	default:
		return false
	}
	return true
}

func (h *Hub) attach(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(n))
	logging.Info().Uint64("client_id", c.id).Int("total_clients", n).Msg("Dashboard connected")
}

func (h *Hub) leave(c *Client) {
	h.mu.Lock()
	h.detachLocked(c)
	n := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(n))
	logging.Info().Uint64("client_id", c.id).Int("total_clients", n).Msg("Dashboard disconnected")
}

// detachLocked removes c and closes its queue once. Callers hold h.mu.
func (h *Hub) detachLocked(c *Client) bool {
	if !h.clients[c] {
		return false
	}
	delete(h.clients, c)
	close(c.send)
	return true
}

// ordered lists clients oldest first. Callers hold h.mu.
func (h *Hub) ordered() []*Client {
	out := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *Client) int { return cmp.Compare(a.id, b.id) })
	return out
}

// broadcastToClients queues msg on every client. A client with a full queue
// is dropped so one stalled browser cannot hold up the others.
func (h *Hub) broadcastToClients(msg Message) {
	h.mu.Lock()
	var dropped []uint64
	for _, c := range h.ordered() {
		select {
		case c.send <- msg:
		default:
			h.detachLocked(c)
			dropped = append(dropped, c.id)
		}
	}
	n := len(h.clients)
	h.mu.Unlock()

	for _, id := range dropped {
		metrics.WSErrors.WithLabelValues("slow_client").Inc()
		logging.Warn().Uint64("client_id", id).Msg("Dashboard too slow, disconnected")
	}
	if len(dropped) > 0 {
		metrics.WSConnections.Set(float64(n))
	}
}

func (h *Hub) stop(ctx context.Context) error {
	h.mu.Lock()
	closed := 0
	for _, c := range h.ordered() {
		if h.detachLocked(c) {
			closed++
		}
	}
	h.mu.Unlock()

	metrics.WSConnections.Set(0)
	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(shutdownReason(ctx))).
		Int("clients_closed", closed).
		Msg("WebSocket hub stopped")
	return ctx.Err()
}

func shutdownReason(ctx context.Context) ShutdownReason {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// BroadcastJSON queues a frame for every client without blocking. It
// returns false when the queue is full and the frame was dropped.
func (h *Hub) BroadcastJSON(messageType string, data interface{}) bool {
	select {
	case h.broadcast <- Message{Type: messageType, Data: data}:
		return true
	default:
		metrics.WSErrors.WithLabelValues("broadcast_dropped").Inc()
		logging.Warn().Str("message_type", messageType).Msg("Broadcast queue full, dropping message")
		return false
	}
}

// BroadcastImportCompleted tells dashboards to reload their views.
func (h *Hub) BroadcastImportCompleted(event models.ImportCompletedEvent) {
	if !h.BroadcastJSON(MessageTypeImportCompleted, event) {
		return
	}
	logging.Debug().Str("run_id", event.RunID).Int("clients", h.GetClientCount()).Msg("Queued import_completed")
}

// BroadcastRaw decodes an import_completed event payload from the bus and
// broadcasts it.
func (h *Hub) BroadcastRaw(payload []byte) error {
	var event models.ImportCompletedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return err
	}
	h.BroadcastImportCompleted(event)
	return nil
}

// GetClientCount returns the number of connected dashboards.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// MarshalMessage encodes msg the way it goes over the wire.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
