// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

/*
Package config provides centralized configuration management for Accessboard.

Configuration is assembled with Koanf v2 from three layers, each overriding the
previous one:

  - Struct defaults (defaultConfig)
  - An optional YAML file: CONFIG_PATH, ./config.yaml, or /etc/accessboard/config.yaml
  - Environment variables listed in envMappings

# Sections

  - server: listen address, timeouts, environment
  - database: DuckDB file, memory limit, mock data seeding, circuit breaker
  - business: UTC offset of the business calendar (default -3)
  - import: startup import file, history store, request body limit
  - security: auth mode (none, basic, jwt), rate limiting, CORS
  - logging: level, format, caller
  - events: NATS forwarding of import notifications
  - cache: query response cache TTL

# Usage

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatal(err)
	}
	loc := cfg.Business.Location()

Validate is called by LoadWithKoanf and reports the first invalid setting using
the environment variable name an operator would set to fix it.
*/
package config
