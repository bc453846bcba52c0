// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

/*
Package services adapts Accessboard components to suture.Service.

  - HTTPServerService binds the listener inside Serve, so a port conflict
    surfaces as a service failure, and shuts down gracefully on cancel.
  - HubService runs the WebSocket hub loop.
  - StartupImportService imports the configured export file once at boot and
    then asks the supervisor not to restart it.

Components that already implement Serve(ctx) error, such as the event bus,
the embedded NATS server and the auth failure limiter, are added to the tree
directly.
*/
package services
