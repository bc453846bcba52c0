// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package websocket

import (
	"net/http"
	"slices"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/accessboard/internal/logging"
	"github.com/tomtom215/accessboard/internal/metrics"
)

// Connection timing. The server pings at 90% of the read window so a live
// browser always answers in time.
const (
	writeWait    = 10 * time.Second
	readWindow   = 60 * time.Second
	pingInterval = readWindow * 9 / 10

	// Dashboards only ever send small ping frames.
	maxFrameBytes = 4 << 10
	queueLength   = 32
)

var nextClientID atomic.Uint64

// Client is one dashboard connection. The hub writes to send; writePump is
// the only goroutine that writes to conn.
type Client struct {
	id   uint64
	hub  *Hub
	conn *websocket.Conn
	send chan Message
}

// NewClient wraps an upgraded connection. IDs increase with connection time.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   nextClientID.Add(1),
		hub:  hub,
		conn: conn,
		send: make(chan Message, queueLength),
	}
}

// ID returns the client's connection-order identifier.
func (c *Client) ID() uint64 { return c.id }

// Start runs the pumps on their own goroutines.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

func (c *Client) extendRead() error {
	return c.conn.SetReadDeadline(time.Now().Add(readWindow))
}

// readPump answers ping frames and notices when the browser goes away, at
// which point it unregisters the client.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameBytes)
	c.conn.SetPongHandler(func(string) error { return c.extendRead() })
	if err := c.extendRead(); err != nil {
		return
	}

	for {
		var in Message
		if err := c.conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				metrics.WSErrors.WithLabelValues("read").Inc()
				logging.Warn().Err(err).Uint64("client_id", c.id).Msg("Dashboard connection closed unexpectedly")
			}
			return
		}
		metrics.WSMessagesReceived.Inc()

		if in.Type != MessageTypePing {
			continue
		}
		select {
		case c.send <- Message{Type: MessageTypePong}:
		default:
		}
	}
}

func (c *Client) write(messageType int, payload []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, payload)
}

// writePump drains send onto the connection and keeps it alive with pings.
// A closed send means the hub dropped the client.
func (c *Client) writePump() {
	ping := time.NewTicker(pingInterval)
	defer func() {
		ping.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, open := <-c.send:
			if !open {
				_ = c.write(websocket.CloseMessage, []byte{})
				return
			}
			frame, err := MarshalMessage(msg)
			if err == nil {
				err = c.write(websocket.TextMessage, frame)
			}
			if err != nil {
				metrics.WSErrors.WithLabelValues("write").Inc()
				logging.Debug().Err(err).Uint64("client_id", c.id).Msg("WebSocket write failed")
				return
			}
			metrics.WSMessagesSent.Inc()

		case <-ping.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// NewUpgrader accepts browser handshakes whose Origin is in allowedOrigins,
// where "*" matches any origin. A missing Origin is refused.
func NewUpgrader(allowedOrigins []string) websocket.Upgrader {
	anyOrigin := slices.Contains(allowedOrigins, "*")
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			switch {
			case origin == "":
				logging.Warn().Msg("WebSocket handshake refused: no Origin header")
				return false
			case anyOrigin, slices.Contains(allowedOrigins, origin):
				return true
			}
			logging.Warn().Str("origin", origin).Msg("WebSocket handshake refused: origin not allowed")
			return false
		},
	}
}

// ServeWS upgrades r and hands the connection to hub.
func ServeWS(hub *Hub, upgrader *websocket.Upgrader, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already replied.
		metrics.WSErrors.WithLabelValues("upgrade").Inc()
		logging.Debug().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	c := NewClient(hub, conn)
	select {
	case hub.Register <- c:
		c.Start()
	case <-r.Context().Done():
		_ = conn.Close()
	}
}
