// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values from defaultConfig()
//  2. Config File: optional YAML file (config.yaml or CONFIG_PATH)
//  3. Environment Variables: override any setting via the mapping in envTransformFunc
//
// Config is immutable after LoadWithKoanf() and safe for concurrent reads.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Business BusinessConfig `koanf:"business"`
	Import   ImportConfig   `koanf:"import"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
	Events   EventsConfig   `koanf:"events"`
	Cache    CacheConfig    `koanf:"cache"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path         string `koanf:"path"`
	MaxMemory    string `koanf:"max_memory"`
	Threads      int    `koanf:"threads"` // 0 = runtime.NumCPU()
	SeedMockData bool   `koanf:"seed_mock_data"`

	// Circuit breaker around storage calls.
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// BusinessConfig describes the operator's local calendar. All day and slot
// boundaries are computed in this zone.
type BusinessConfig struct {
	UTCOffsetHours int `koanf:"utc_offset_hours"`
}

// Location returns the fixed business zone, e.g. "UTC-3".
func (b BusinessConfig) Location() *time.Location {
	name := "UTC"
	if b.UTCOffsetHours != 0 {
		name = fmt.Sprintf("UTC%+d", b.UTCOffsetHours)
	}
	return time.FixedZone(name, b.UTCOffsetHours*60*60)
}

// ImportConfig controls export ingestion.
type ImportConfig struct {
	FilePath     string `koanf:"file_path"`  // export file imported at startup
	AutoStart    bool   `koanf:"auto_start"` // import FilePath once at boot
	HistoryPath  string `koanf:"history_path"`
	HistoryLimit int    `koanf:"history_limit"`
	MaxBodyBytes int64  `koanf:"max_body_bytes"`
}

// SecurityConfig holds authentication and request limiting settings.
type SecurityConfig struct {
	AuthMode          string        `koanf:"auth_mode"` // none, basic, jwt
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	AdminUsername     string        `koanf:"admin_username"`
	AdminPassword     string        `koanf:"admin_password"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	TrustedProxies    []string      `koanf:"trusted_proxies"`
	AuthzPolicyPath   string        `koanf:"authz_policy_path"` // empty uses the built-in policy
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // trace, debug, info, warn, error
	Format string `koanf:"format"` // json, console
	Caller bool   `koanf:"caller"`
}

// EventsConfig controls the in-process event bus and the optional NATS
// forwarder for import notifications.
type EventsConfig struct {
	NATSURL        string `koanf:"nats_url"` // empty disables forwarding
	EmbeddedServer bool   `koanf:"embedded_server"`
	EmbeddedPort   int    `koanf:"embedded_port"`
	Topic          string `koanf:"topic"`
}

// ForwardingEnabled reports whether import events leave the process.
func (e EventsConfig) ForwardingEnabled() bool {
	return e.NATSURL != "" || e.EmbeddedServer
}

// CacheConfig controls the query response cache.
type CacheConfig struct {
	Enabled bool          `koanf:"enabled"`
	TTL     time.Duration `koanf:"ttl"`
}
