// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are tried in order when CONFIG_PATH is unset or
// missing.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/accessboard/config.yaml",
	"/etc/accessboard/config.yml",
}

// ConfigPathEnvVar names a config file to try before DefaultConfigPaths.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultMaxBodyBytes bounds the size of an import request body.
const DefaultMaxBodyBytes int64 = 64 << 20

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3857,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Path:               "/data/accessboard.duckdb",
			MaxMemory:          "1GB",
			Threads:            0,
			SeedMockData:       false,
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
		},
		Business: BusinessConfig{
			UTCOffsetHours: -3,
		},
		Import: ImportConfig{
			FilePath:     "",
			AutoStart:    false,
			HistoryPath:  "", // in-memory history
			HistoryLimit: 20,
			MaxBodyBytes: DefaultMaxBodyBytes,
		},
		Security: SecurityConfig{
			AuthMode:          "none",
			SessionTimeout:    24 * time.Hour,
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
			TrustedProxies:    []string{},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Events: EventsConfig{
			NATSURL:        "",
			EmbeddedServer: false,
			EmbeddedPort:   4222,
			Topic:          "accessboard.imports",
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     5 * time.Minute,
		},
	}
}

// layer is one configuration source. parser is nil for providers that
// yield a ready map.
type layer struct {
	name     string
	provider koanf.Provider
	parser   koanf.Parser
}

// LoadWithKoanf merges, from lowest to highest precedence, the built-in
// defaults, the first YAML file found (see findConfigFile) and the mapped
// environment variables, then validates the result.
func LoadWithKoanf() (*Config, error) {
	layers := []layer{{name: "defaults", provider: structs.Provider(defaultConfig(), "koanf")}}
	if path := findConfigFile(); path != "" {
		layers = append(layers, layer{name: path, provider: file.Provider(path), parser: yaml.Parser()})
	}
	layers = append(layers, layer{name: "environment", provider: env.Provider("", ".", envTransformFunc)})

	k := koanf.New(".")
	for _, l := range layers {
		if err := k.Load(l.provider, l.parser); err != nil {
			return nil, fmt.Errorf("load %s: %w", l.name, err)
		}
	}
	if err := splitListValues(k); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// findConfigFile returns $CONFIG_PATH when that file exists, else the first
// existing entry of DefaultConfigPaths, else "".
func findConfigFile() string {
	candidates := DefaultConfigPaths
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		candidates = append([]string{p}, candidates...)
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// listKeys hold string slices; from the environment they arrive as one
// comma-separated string.
var listKeys = []string{
	"security.cors_origins",
	"security.trusted_proxies",
}

func splitListValues(k *koanf.Koanf) error {
	for _, key := range listKeys {
		raw, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		var items []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		if len(items) == 0 {
			continue
		}
		if err := k.Set(key, items); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	// Server
	"http_port":        "server.port",
	"http_host":        "server.host",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	// Database
	"duckdb_path":                   "database.path",
	"duckdb_max_memory":             "database.max_memory",
	"duckdb_threads":                "database.threads",
	"seed_mock_data":                "database.seed_mock_data",
	"database_breaker_max_failures": "database.breaker_max_failures",
	"database_breaker_timeout":      "database.breaker_timeout",

	// Business calendar
	"business_utc_offset_hours": "business.utc_offset_hours",

	// Import
	"import_file_path":      "import.file_path",
	"import_auto_start":     "import.auto_start",
	"import_history_path":   "import.history_path",
	"import_history_limit":  "import.history_limit",
	"import_max_body_bytes": "import.max_body_bytes",

	// Security
	"auth_mode":           "security.auth_mode",
	"jwt_secret":          "security.jwt_secret",
	"session_timeout":     "security.session_timeout",
	"admin_username":      "security.admin_username",
	"admin_password":      "security.admin_password",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",
	"trusted_proxies":     "security.trusted_proxies",
	"authz_policy_path":   "security.authz_policy_path",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Events
	"nats_url":             "events.nats_url",
	"nats_embedded_server": "events.embedded_server",
	"nats_embedded_port":   "events.embedded_port",
	"events_topic":         "events.topic",

	// Cache
	"cache_enabled": "cache.enabled",
	"cache_ttl":     "cache.ttl",
}

// envTransformFunc maps an environment variable to its koanf path, e.g.
// DUCKDB_PATH to database.path. Unmapped variables map to "" and are
// dropped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
