// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

//go:build integration

package testinfra

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	natsImage      = "nats:2.12-alpine"
	natsClientPort = "4222/tcp"
)

type natsOptions struct {
	image   string
	timeout time.Duration
}

// NATSOption adjusts StartNATS.
type NATSOption func(*natsOptions)

// WithNATSImage runs image instead of the pinned NATS release.
func WithNATSImage(image string) NATSOption {
	return func(o *natsOptions) { o.image = image }
}

// WithNATSStartTimeout bounds the wait for the server to accept clients.
func WithNATSStartTimeout(d time.Duration) NATSOption {
	return func(o *natsOptions) { o.timeout = d }
}

// StartNATS runs a NATS server in Docker for the rest of the test and
// returns its nats:// URL. The test is skipped when Docker is unavailable;
// the container is removed during cleanup.
//
//	url := testinfra.StartNATS(t)
//	nc, err := nats.Connect(url)
func StartNATS(t *testing.T, opts ...NATSOption) string {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	o := natsOptions{image: natsImage, timeout: time.Minute}
	for _, opt := range opts {
		opt(&o)
	}

	ctx := context.Background()
	ctr, err := testcontainers.Run(ctx, o.image,
		testcontainers.WithExposedPorts(natsClientPort),
		testcontainers.WithWaitStrategy(wait.ForAll(
			wait.ForListeningPort(natsClientPort),
			wait.ForLog("Server is ready"),
		).WithStartupTimeout(o.timeout)),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start NATS container: %v", err)
	}

	url, err := ctr.PortEndpoint(ctx, natsClientPort, "nats")
	if err != nil {
		t.Fatalf("resolve NATS endpoint: %v", err)
	}
	return url
}
