// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/accessboard/internal/logging"
	"github.com/tomtom215/accessboard/internal/metrics"
	"github.com/tomtom215/accessboard/internal/models"
)

// Metadata keys set on every import event.
const (
	MetadataRunID  = "run_id"
	MetadataSource = "source"
)

// ErrBusClosed is returned by PublishImportCompleted after Close.
var ErrBusClosed = errors.New("event bus closed")

// Config holds event bus settings.
type Config struct {
	// Topic is the local topic and the NATS subject for import events.
	Topic string

	// CloseTimeout bounds how long in-flight handlers may run at shutdown.
	CloseTimeout time.Duration

	// Retry policy for failing handlers.
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64

	// OutputBuffer is the per-subscriber channel size.
	OutputBuffer int64
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Topic:                "accessboard.imports",
		CloseTimeout:         10 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
		RetryMaxInterval:     2 * time.Second,
		RetryMultiplier:      2.0,
		OutputBuffer:         64,
	}
}

// Handler reacts to one committed import.
type Handler func(ctx context.Context, event models.ImportCompletedEvent) error

type registration struct {
	name    string
	handler Handler
}

// Bus fans import events out to in-process handlers over a watermill
// gochannel, and optionally forwards them to NATS.
//
// Handlers must be registered before Serve. Serve builds a fresh watermill
// router on every call so the bus can be restarted by a supervisor.
type Bus struct {
	config  Config
	logger  watermill.LoggerAdapter
	local   *gochannel.GoChannel
	forward *Forwarder

	mu       sync.Mutex
	handlers []registration
	closed   bool

	readyOnce sync.Once
	ready     chan struct{}
}

// NewBus creates a bus. logger may be nil.
func NewBus(cfg Config, logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = logging.NewWatermillLogger()
	}
	defaults := DefaultConfig()
	if cfg.Topic == "" {
		cfg.Topic = defaults.Topic
	}
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = defaults.CloseTimeout
	}
	if cfg.OutputBuffer <= 0 {
		cfg.OutputBuffer = defaults.OutputBuffer
	}
	if cfg.RetryMultiplier <= 0 {
		cfg.RetryMultiplier = defaults.RetryMultiplier
	}

	return &Bus{
		config: cfg,
		logger: logger,
		local: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: cfg.OutputBuffer,
		}, logger),
		ready: make(chan struct{}),
	}
}

// Topic returns the import event topic.
func (b *Bus) Topic() string {
	return b.config.Topic
}

// SetForwarder makes every published event also go to f. Call before the
// first publish.
func (b *Bus) SetForwarder(f *Forwarder) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.forward = f
}

// Handle registers a named handler.
func (b *Bus) Handle(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, registration{name: name, handler: h})
}

// Ready is closed once the first router is running and subscribed.
func (b *Bus) Ready() <-chan struct{} {
	return b.ready
}

// PublishImportCompleted publishes event locally and, when a forwarder is
// set, to NATS. A forwarding failure is returned after the local publish
// has succeeded.
func (b *Bus) PublishImportCompleted(ctx context.Context, event models.ImportCompletedEvent) error {
	b.mu.Lock()
	closed, forward := b.closed, b.forward
	b.mu.Unlock()
	if closed {
		return ErrBusClosed
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal import event: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	correlationID := logging.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = logging.GenerateCorrelationID()
	}
	middleware.SetCorrelationID(correlationID, msg)
	msg.Metadata.Set(MetadataRunID, event.RunID)
	msg.Metadata.Set(MetadataSource, event.Source)

	if err := b.local.Publish(b.config.Topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", b.config.Topic, err)
	}
	metrics.RecordEventPublished(b.config.Topic, "local")

	if forward != nil {
		if err := forward.Forward(b.config.Topic, msg.Copy()); err != nil {
			return fmt.Errorf("forward %s: %w", b.config.Topic, err)
		}
	}
	return nil
}

// Serve runs the handlers until ctx is canceled. It implements suture.Service.
func (b *Bus) Serve(ctx context.Context) error {
	b.mu.Lock()
	idle := len(b.handlers) == 0
	b.mu.Unlock()
	if idle {
		// A router without handlers stops immediately.
		b.readyOnce.Do(func() { close(b.ready) })
		<-ctx.Done()
		return ctx.Err()
	}

	router, err := b.newRouter()
	if err != nil {
		return err
	}

	go func() {
		select {
		case <-router.Running():
			b.readyOnce.Do(func() { close(b.ready) })
		case <-ctx.Done():
		}
	}()

	if err := router.Run(ctx); err != nil {
		return fmt.Errorf("event router: %w", err)
	}
	if ctx.Err() == nil {
		return errors.New("event router stopped unexpectedly")
	}
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logs.
func (b *Bus) String() string {
	return "event-bus"
}

func (b *Bus) newRouter() (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: b.config.CloseTimeout}, b.logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	// Outer to inner: panics become errors, then errors are retried.
	router.AddMiddleware(middleware.Recoverer)
	retry := middleware.Retry{
		MaxRetries:      b.config.RetryMaxRetries,
		InitialInterval: b.config.RetryInitialInterval,
		MaxInterval:     b.config.RetryMaxInterval,
		Multiplier:      b.config.RetryMultiplier,
		Logger:          b.logger,
	}
	router.AddMiddleware(retry.Middleware)

	b.mu.Lock()
	handlers := append([]registration(nil), b.handlers...)
	b.mu.Unlock()

	for _, reg := range handlers {
		router.AddConsumerHandler(reg.name, b.config.Topic, b.local, b.consume(reg))
	}
	return router, nil
}

// consume decodes the payload and invokes the handler. Undecodable messages
// are acked and dropped since retrying cannot fix them.
func (b *Bus) consume(reg registration) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		ctx := logging.ContextWithCorrelationID(msg.Context(), middleware.MessageCorrelationID(msg))

		var event models.ImportCompletedEvent
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			logging.Ctx(ctx).Error().Err(err).
				Str("handler", reg.name).
				Str("message_uuid", msg.UUID).
				Msg("Dropping undecodable import event")
			metrics.RecordEventHandled(reg.name, err)
			return nil
		}

		err := reg.handler(ctx, event)
		metrics.RecordEventHandled(reg.name, err)
		if err != nil {
			return fmt.Errorf("%s: %w", reg.name, err)
		}
		return nil
	}
}

// Close releases the local pub/sub and the forwarder. Running routers stop
// when their context is canceled.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	forward := b.forward
	b.mu.Unlock()

	var errs []error
	if err := b.local.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close local pubsub: %w", err))
	}
	if forward != nil {
		if err := forward.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close forwarder: %w", err))
		}
	}
	return errors.Join(errs...)
}
