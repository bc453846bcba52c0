// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package websocket

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/accessboard/internal/models"
)

// fakeClient has no connection; tests read its send channel directly.
func fakeClient(hub *Hub, buffer int) *Client {
	return &Client{id: nextClientID.Add(1), hub: hub, send: make(chan Message, buffer)}
}

func runHub(t *testing.T) (*Hub, context.CancelFunc, <-chan error) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- hub.RunWithContext(ctx) }()
	t.Cleanup(cancel)
	return hub, cancel, errCh
}

func receive(t *testing.T, c *Client) (Message, bool) {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		return msg, ok
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}, false
	}
}

func TestNewHub(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	if hub.GetClientCount() != 0 {
		t.Errorf("new hub has %d clients", hub.GetClientCount())
	}
	if cap(hub.broadcast) != broadcastBuffer {
		t.Errorf("broadcast buffer = %d, want %d", cap(hub.broadcast), broadcastBuffer)
	}
}

func TestHubBroadcastReachesRegisteredClients(t *testing.T) {
	t.Parallel()

	hub, _, _ := runHub(t)
	a, b := fakeClient(hub, 4), fakeClient(hub, 4)
	hub.Register <- a
	hub.Register <- b

	event := models.ImportCompletedEvent{RunID: "r1", TotalRecords: 10, ProcessedIntervals: 4}
	hub.BroadcastImportCompleted(event)

	for _, c := range []*Client{a, b} {
		msg, ok := receive(t, c)
		if !ok || msg.Type != MessageTypeImportCompleted {
			t.Fatalf("client %d got %+v (open=%v)", c.id, msg, ok)
		}
		if got, _ := msg.Data.(models.ImportCompletedEvent); got.RunID != "r1" {
			t.Errorf("client %d got data %+v", c.id, msg.Data)
		}
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	t.Parallel()

	hub, _, _ := runHub(t)
	c := fakeClient(hub, 1)
	hub.Register <- c
	hub.Unregister <- c

	if _, ok := receive(t, c); ok {
		t.Error("send channel should be closed after unregister")
	}
	// A second unregister for the same client is a no-op.
	hub.Unregister <- c
}

func TestHubDropsSlowClient(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	slow := fakeClient(hub, 1)
	fast := fakeClient(hub, 4)
	hub.clients[slow] = true
	hub.clients[fast] = true

	hub.broadcastToClients(Message{Type: "a"})
	hub.broadcastToClients(Message{Type: "b"})

	if hub.GetClientCount() != 1 {
		t.Fatalf("expected slow client removed, have %d clients", hub.GetClientCount())
	}
	if _, ok := hub.clients[fast]; !ok {
		t.Error("fast client was removed")
	}
	if len(fast.send) != 2 {
		t.Errorf("fast client queued %d messages, want 2", len(fast.send))
	}
}

func TestHubShutdownClosesClients(t *testing.T) {
	t.Parallel()

	hub, cancel, errCh := runHub(t)
	c := fakeClient(hub, 1)
	hub.Register <- c

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("RunWithContext() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	if _, ok := <-c.send; ok {
		t.Error("client send channel should be closed on shutdown")
	}
	if hub.GetClientCount() != 0 {
		t.Errorf("clients left after shutdown: %d", hub.GetClientCount())
	}
}

func TestShutdownReason(t *testing.T) {
	t.Parallel()

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	if got := shutdownReason(canceled); got != ShutdownReasonContextCanceled {
		t.Errorf("canceled: got %q", got)
	}

	expired, cancel2 := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel2()
	if got := shutdownReason(expired); got != ShutdownReasonContextDeadline {
		t.Errorf("deadline: got %q", got)
	}
}

func TestBroadcastJSONDropsWhenFull(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	for i := 0; i < broadcastBuffer; i++ {
		if !hub.BroadcastJSON("fill", i) {
			t.Fatalf("message %d dropped before buffer filled", i)
		}
	}
	if hub.BroadcastJSON("overflow", nil) {
		t.Error("expected overflow message to be dropped")
	}
}

func TestBroadcastRaw(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	if err := hub.BroadcastRaw([]byte(`{"runId":"r9","totalRecords":5}`)); err != nil {
		t.Fatalf("BroadcastRaw() error = %v", err)
	}
	msg := <-hub.broadcast
	event, ok := msg.Data.(models.ImportCompletedEvent)
	if !ok || event.RunID != "r9" || event.TotalRecords != 5 {
		t.Errorf("unexpected message %+v", msg)
	}

	if err := hub.BroadcastRaw([]byte("not json")); err == nil {
		t.Error("expected decode error")
	}
}

func TestMarshalMessage(t *testing.T) {
	t.Parallel()

	data, err := MarshalMessage(Message{Type: MessageTypePong})
	if err != nil {
		t.Fatalf("MarshalMessage() error = %v", err)
	}
	if string(data) != `{"type":"pong","data":null}` {
		t.Errorf("MarshalMessage() = %s", data)
	}
}
