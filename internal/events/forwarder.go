// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package events

import (
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/accessboard/internal/metrics"
)

// ForwarderConfig holds NATS forwarding settings.
type ForwarderConfig struct {
	URL           string
	MaxReconnects int
	ReconnectWait time.Duration

	// BreakerMaxFailures consecutive publish failures open the breaker
	// for BreakerTimeout.
	BreakerMaxFailures uint32
	BreakerTimeout     time.Duration
}

// DefaultForwarderConfig returns defaults for url.
func DefaultForwarderConfig(url string) ForwarderConfig {
	return ForwarderConfig{
		URL:                url,
		MaxReconnects:      -1,
		ReconnectWait:      2 * time.Second,
		BreakerMaxFailures: 5,
		BreakerTimeout:     30 * time.Second,
	}
}

// Forwarder publishes import events to core NATS subjects so other services
// can react to new data. JetStream is not used; delivery is at-most-once.
type Forwarder struct {
	publisher message.Publisher
	breaker   *gobreaker.CircuitBreaker[struct{}]

	mu     sync.Mutex
	closed bool
}

// NewForwarder connects a watermill NATS publisher. The connection is
// retried in the background, so an unreachable server does not fail startup.
func NewForwarder(cfg ForwarderConfig, logger watermill.LoggerAdapter) (*Forwarder, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("nats url required")
	}
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	natsOpts := []natsgo.Option{
		natsgo.Name("accessboard"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create nats publisher: %w", err)
	}

	return newForwarder(pub, cfg), nil
}

func newForwarder(pub message.Publisher, cfg ForwarderConfig) *Forwarder {
	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    "nats-forwarder",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	})
	return &Forwarder{publisher: pub, breaker: breaker}
}

// Forward publishes msg on subject.
func (f *Forwarder) Forward(subject string, msg *message.Message) error {
	f.mu.Lock()
	closed := f.closed
	f.mu.Unlock()
	if closed {
		return ErrBusClosed
	}

	_, err := f.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, f.publisher.Publish(subject, msg)
	})
	if err != nil {
		return err
	}
	metrics.RecordEventPublished(subject, "nats")
	return nil
}

// State returns the breaker state for health reporting.
func (f *Forwarder) State() string {
	return f.breaker.State().String()
}

// Close closes the NATS publisher.
func (f *Forwarder) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	return f.publisher.Close()
}
