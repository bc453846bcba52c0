// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
)

// Bounds enforced by Validate.
const (
	minUTCOffsetHours = -12
	maxUTCOffsetHours = 14

	minAdminPasswordLength = 12
	minJWTSecretLength     = 32

	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

var (
	authModes  = []string{"none", "jwt", "basic"}
	logLevels  = []string{"trace", "debug", "info", "warn", "error"}
	logFormats = []string{"json", "console"}
	natsScheme = []string{"nats", "tls", "ws", "wss"}

	// Substrings that mark a value copied unchanged from a sample config.
	placeholders = []string{"REPLACE", "CHANGEME", "CHANGE_ME", "YOUR_SECRET", "YOUR_PASSWORD", "PLACEHOLDER", "EXAMPLE"}
)

// Validate reports every section that is misconfigured. Messages name the
// environment variable to fix.
func (c *Config) Validate() error {
	checks := []func() error{
		c.checkServer,
		c.checkDatabase,
		c.checkBusiness,
		c.checkImport,
		c.checkSecurity,
		c.checkEvents,
		c.checkCache,
		c.checkLogging,
	}
	var errs []error
	for _, check := range checks {
		if err := check(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// IsProduction reports whether ENVIRONMENT is production or prod.
func (c *Config) IsProduction() bool {
	switch strings.ToLower(c.Server.Environment) {
	case "production", "prod":
		return true
	}
	return false
}

// IsDevelopment reports whether ENVIRONMENT is unset, development or dev.
func (c *Config) IsDevelopment() bool {
	switch strings.ToLower(c.Server.Environment) {
	case "", "development", "dev":
		return true
	}
	return false
}

// ShouldWarnAboutCORS reports a wildcard origin combined with authentication.
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.Security.AuthMode != "none" && slices.Contains(c.Security.CORSOrigins, "*")
}

func (c *Config) checkServer() error {
	switch {
	case !validPort(c.Server.Port):
		return errors.New("HTTP_PORT must be between 1 and 65535")
	case c.Server.Timeout <= 0:
		return errors.New("HTTP_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) checkDatabase() error {
	db := c.Database
	switch {
	case db.Path == "":
		return errors.New("DUCKDB_PATH is required")
	case db.Threads < 0:
		return errors.New("DUCKDB_THREADS must not be negative")
	case db.BreakerMaxFailures == 0:
		return errors.New("DATABASE_BREAKER_MAX_FAILURES must be at least 1")
	}
	return nil
}

func (c *Config) checkBusiness() error {
	if h := c.Business.UTCOffsetHours; h < minUTCOffsetHours || h > maxUTCOffsetHours {
		return fmt.Errorf("BUSINESS_UTC_OFFSET_HOURS must be between %d and %d, got %d",
			minUTCOffsetHours, maxUTCOffsetHours, h)
	}
	return nil
}

func (c *Config) checkImport() error {
	imp := c.Import
	switch {
	case imp.AutoStart && imp.FilePath == "":
		return errors.New("IMPORT_FILE_PATH is required when IMPORT_AUTO_START=true")
	case imp.HistoryLimit < 1:
		return errors.New("IMPORT_HISTORY_LIMIT must be at least 1")
	case imp.MaxBodyBytes < 1:
		return errors.New("IMPORT_MAX_BODY_BYTES must be positive")
	}
	return nil
}

func (c *Config) checkSecurity() error {
	sec := c.Security

	if !slices.Contains(authModes, sec.AuthMode) {
		return fmt.Errorf("AUTH_MODE must be one of %s, got %q", strings.Join(authModes, ", "), sec.AuthMode)
	}
	if sec.AuthMode == "none" && c.IsProduction() {
		return errors.New("AUTH_MODE=none is not allowed when ENVIRONMENT=production; use jwt or basic")
	}
	if c.ShouldWarnAboutCORS() && c.IsProduction() {
		return errors.New("CORS_ORIGINS=* is not allowed in production with authentication enabled; " +
			"list the dashboard origins explicitly")
	}

	if !sec.RateLimitDisabled {
		if sec.RateLimitReqs < 1 || sec.RateLimitReqs > maxRateLimitRequests {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be between 1 and %d", maxRateLimitRequests)
		}
		if sec.RateLimitWindow < minRateLimitWindow || sec.RateLimitWindow > maxRateLimitWindow {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
		}
	}

	if sec.AuthMode == "none" {
		return nil
	}
	if sec.AuthMode == "jwt" {
		switch {
		case sec.JWTSecret == "":
			return errors.New("JWT_SECRET is required when AUTH_MODE=jwt")
		case len(sec.JWTSecret) < minJWTSecretLength:
			return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
		case isPlaceholder(sec.JWTSecret):
			return errors.New("JWT_SECRET looks like a placeholder; generate one with openssl rand -base64 32")
		case sec.SessionTimeout <= 0:
			return errors.New("SESSION_TIMEOUT must be positive")
		}
	}
	switch {
	case sec.AdminUsername == "":
		return fmt.Errorf("ADMIN_USERNAME is required when AUTH_MODE=%s", sec.AuthMode)
	case sec.AdminPassword == "":
		return fmt.Errorf("ADMIN_PASSWORD is required when AUTH_MODE=%s", sec.AuthMode)
	case isPlaceholder(sec.AdminPassword):
		return errors.New("ADMIN_PASSWORD looks like a placeholder")
	case len(sec.AdminPassword) < minAdminPasswordLength:
		return fmt.Errorf("ADMIN_PASSWORD must be at least %d characters", minAdminPasswordLength)
	}
	return nil
}

func (c *Config) checkEvents() error {
	ev := c.Events
	if ev.NATSURL != "" {
		if err := checkNATSURL(ev.NATSURL); err != nil {
			return fmt.Errorf("NATS_URL: %w", err)
		}
	}
	switch {
	case ev.EmbeddedServer && !validPort(ev.EmbeddedPort):
		return errors.New("NATS_EMBEDDED_PORT must be between 1 and 65535")
	case ev.Topic == "":
		return errors.New("EVENTS_TOPIC is required")
	}
	return nil
}

func checkNATSURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if !slices.Contains(natsScheme, u.Scheme) {
		return fmt.Errorf("scheme must be one of %s, got %q", strings.Join(natsScheme, ", "), u.Scheme)
	}
	if u.Host == "" {
		return errors.New("host is required, e.g. nats://localhost:4222")
	}
	return nil
}

func (c *Config) checkCache() error {
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return errors.New("CACHE_TTL must be positive when CACHE_ENABLED=true")
	}
	return nil
}

func (c *Config) checkLogging() error {
	if !slices.Contains(logLevels, c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of %s", strings.Join(logLevels, ", "))
	}
	if c.Logging.Format != "" && !slices.Contains(logFormats, c.Logging.Format) {
		return fmt.Errorf("LOG_FORMAT must be one of %s", strings.Join(logFormats, ", "))
	}
	return nil
}

func validPort(p int) bool { return p >= 1 && p <= 65535 }

func isPlaceholder(value string) bool {
	upper := strings.ToUpper(value)
	return slices.ContainsFunc(placeholders, func(p string) bool {
		return strings.Contains(upper, p)
	})
}
