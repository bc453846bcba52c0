// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/tomtom215/accessboard/docs" // generated swagger docs
	"github.com/tomtom215/accessboard/internal/api"
	"github.com/tomtom215/accessboard/internal/auth"
	"github.com/tomtom215/accessboard/internal/authz"
	"github.com/tomtom215/accessboard/internal/cache"
	"github.com/tomtom215/accessboard/internal/config"
	"github.com/tomtom215/accessboard/internal/dashboard"
	"github.com/tomtom215/accessboard/internal/database"
	"github.com/tomtom215/accessboard/internal/events"
	"github.com/tomtom215/accessboard/internal/logging"
	"github.com/tomtom215/accessboard/internal/metrics"
	"github.com/tomtom215/accessboard/internal/supervisor"
	"github.com/tomtom215/accessboard/internal/supervisor/services"
	ws "github.com/tomtom215/accessboard/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Accessboard stopped with an error")
	}
	logging.Info().Msg("Accessboard stopped")
}

// run wires every component, serves until SIGINT or SIGTERM and returns once
// the supervisor tree has shut down. Deferred closes run in reverse order of
// construction.
//
//nolint:gocyclo // sequential wiring of every component
func run() error {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return err
	}
	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	metrics.SetAppInfo(version)

	loc := cfg.Business.Location()
	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Str("auth_mode", cfg.Security.AuthMode).
		Str("business_zone", loc.String()).
		Msg("Starting Accessboard")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage and read models.
	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer closeLogged("database", db.Close)

	if cfg.Database.SeedMockData {
		logging.Info().Msg("Seeding demo traffic (SEED_MOCK_DATA=true)")
		if err := db.SeedMockData(ctx, time.Now(), loc); err != nil {
			return fmt.Errorf("seed mock data: %w", err)
		}
	}

	var queryCache *cache.Cache
	if cfg.Cache.Enabled {
		queryCache = cache.New("dashboard", cfg.Cache.TTL)
		defer queryCache.Close()
		logging.Info().Dur("ttl", cfg.Cache.TTL).Msg("Dashboard query cache enabled")
	}
	dash := dashboard.NewService(db, loc, queryCache)

	// Messaging.
	wsHub := ws.NewHub()
	upgrader := ws.NewUpgrader(cfg.Security.CORSOrigins)

	eventComponents, err := InitEvents(&cfg.Events)
	if err != nil {
		return fmt.Errorf("event bus: %w", err)
	}
	defer eventComponents.Close()
	events.Register(eventComponents.Bus(), dash, wsHub)

	importComponents, err := InitImport(&cfg.Import, db, loc, importPublisher{cache: dash, bus: eventComponents.Bus()})
	if err != nil {
		return fmt.Errorf("importer: %w", err)
	}
	defer importComponents.Close()

	// HTTP surface.
	authMiddleware, err := auth.NewMiddleware(&cfg.Security)
	if err != nil {
		return fmt.Errorf("authentication: %w", err)
	}
	logSecurityWarnings(cfg)

	enforcerCfg := authz.DefaultEnforcerConfig()
	enforcerCfg.PolicyPath = cfg.Security.AuthzPolicyPath
	enforcer, err := authz.NewEnforcer(enforcerCfg)
	if err != nil {
		return fmt.Errorf("authorization: %w", err)
	}
	defer enforcer.Close()

	handler := api.NewHandler(dash, importComponents.importer, db, wsHub, &upgrader, api.HandlerConfig{
		Version:      version,
		MaxBodyBytes: cfg.Import.MaxBodyBytes,
		HistoryLimit: cfg.Import.HistoryLimit,
	})
	router := api.NewRouter(handler, authMiddleware, authz.NewMiddleware(enforcer),
		api.ChiMiddlewareConfigFromSecurity(&cfg.Security))
	server := &http.Server{
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	importComponents.AddStartupImport(&cfg.Import, tree)
	eventComponents.AddToSupervisor(tree)
	tree.AddMessagingService(services.NewHubService(wsHub))
	tree.AddAPIService(authMiddleware.FailureLimiter())
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Addr(), cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", cfg.Server.Addr()).Msg("Supervisor tree starting")
	treeErr := <-tree.ServeBackground(ctx)
	if ctx.Err() != nil {
		logging.Info().Msg("Shutdown signal received, services stopped")
	}
	reportUnstopped(tree)

	if treeErr != nil && !errors.Is(treeErr, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", treeErr)
	}
	return nil
}

func closeLogged(what string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logging.Error().Err(err).Str("resource", what).Msg("Close failed")
	}
}

func reportUnstopped(tree *supervisor.SupervisorTree) {
	unstopped, err := tree.UnstoppedServiceReport()
	if err != nil {
		logging.Warn().Err(err).Msg("Could not collect unstopped service report")
		return
	}
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service did not stop within SHUTDOWN_TIMEOUT")
	}
}

// logSecurityWarnings flags settings that are only safe in development.
func logSecurityWarnings(cfg *config.Config) {
	sec := cfg.Security
	switch sec.AuthMode {
	case auth.ModeNone, "":
		logging.Warn().
			Str("auth_mode", "none").
			Msg("SECURITY WARNING: authentication is disabled; every caller is admin and may replace the data. " +
				"Use AUTH_MODE=basic or AUTH_MODE=jwt outside development")
	case auth.ModeBasic:
		logging.Info().Msg("Basic authentication enabled; serve over HTTPS, credentials travel with every request")
	case auth.ModeJWT:
		logging.Info().Dur("session_timeout", sec.SessionTimeout).Msg("JWT authentication enabled")
	}

	if sec.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is disabled (DISABLE_RATE_LIMIT=true)")
	}
	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().
			Strs("cors_origins", sec.CORSOrigins).
			Msg("SECURITY WARNING: wildcard CORS origin with authentication enabled; " +
				"any site can call the API with an admin's credentials. List explicit origins in CORS_ORIGINS")
	}
}
