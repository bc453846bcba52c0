// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

/*
Package main is the entry point for the Accessboard server.

Accessboard ingests access-log exports, aggregates them into 30-minute
buckets in DuckDB and serves dashboard views over a JSON API: today against
the two previous days, any single day, and weekday or all-days averages.

# Application Architecture

Long-running components run under a Suture v4 supervisor tree:

	RootSupervisor ("accessboard")
	├── DataSupervisor ("data-layer")
	│   └── startup-import (optional, one shot)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── nats-embedded (optional)
	│   ├── event-bus
	│   └── websocket-hub
	└── APISupervisor ("api-layer")
	    ├── auth-failure-limiter
	    └── http-server

Initialization order:

 1. Configuration: Koanf v2 (defaults, optional YAML file, environment)
 2. Logging: zerolog, JSON or console
 3. Database: DuckDB with versioned migrations, optional mock seed
 4. Dashboard service with the query cache
 5. Event bus, optional embedded NATS server and forwarder
 6. Importer with persistent or in-memory history
 7. Authentication and Casbin authorization
 8. HTTP server with the chi router

# Configuration

Common environment variables:

	DUCKDB_PATH                 database file (default /data/accessboard.duckdb)
	BUSINESS_UTC_OFFSET_HOURS   business time zone offset (default -3)
	IMPORT_FILE_PATH            export imported once at startup with IMPORT_AUTO_START=true
	IMPORT_HISTORY_PATH         badger directory for import history (default in memory)
	AUTH_MODE                   none, basic or jwt
	NATS_URL                    forward import events to an external NATS server
	NATS_EMBEDDED_SERVER        run a NATS server inside the process
	SEED_MOCK_DATA              fill the last seven days with generated traffic

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests within SHUTDOWN_TIMEOUT, then the event bus, the
import history and the database are closed.

# Example Usage

Development with generated data:

	export AUTH_MODE=none
	export SEED_MOCK_DATA=true
	export DUCKDB_PATH=./accessboard.duckdb
	./accessboard

Production with token login:

	export AUTH_MODE=jwt
	export JWT_SECRET=$(openssl rand -base64 48)
	export ADMIN_USERNAME=admin
	export ADMIN_PASSWORD=a-long-admin-password
	./accessboard
*/
package main
