// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

// Package testinfra runs Docker-backed dependencies for integration tests,
// which build only with the integration tag:
//
//	go test -tags integration ./internal/events/...
//
// StartNATS provides an external broker for the import event forwarder.
package testinfra
