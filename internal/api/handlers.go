// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package api

import (
	"context"
	"io"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/tomtom215/accessboard/internal/models"
	"github.com/tomtom215/accessboard/internal/slots"
	"github.com/tomtom215/accessboard/internal/websocket"
)

// Defaults applied by NewHandler when HandlerConfig leaves a field zero.
const (
	defaultAverageWeeks = 4
	defaultHistoryLimit = 20
	defaultMaxBodyBytes = 64 << 20
)

// DashboardService answers the read-side queries.
type DashboardService interface {
	Day(ctx context.Context, date slots.Date) (models.DaySlots, bool, error)
	Comparative(ctx context.Context, reference *slots.Date) (models.ComparativeData, bool, error)
	WeekdayAverage(ctx context.Context, weeks int) (models.DaySlots, bool, error)
	AllDaysAverage(ctx context.Context, weeks int) (models.DaySlots, bool, error)
	ImportStats(ctx context.Context) models.ImportStats
}

// Importer replaces stored buckets from an export and reports past runs.
type Importer interface {
	Import(ctx context.Context, source string, r io.Reader) (models.ImportResult, error)
	History(ctx context.Context, limit int) ([]models.ImportRun, error)
	LastRun() *models.ImportRun
	IsRunning() bool
}

// Pinger checks storage connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HandlerConfig holds the settings the handlers read per request.
type HandlerConfig struct {
	Version      string
	MaxBodyBytes int64
	HistoryLimit int
}

// Handler serves the /api/v1 endpoints.
type Handler struct {
	dashboard DashboardService
	importer  Importer
	db        Pinger
	hub       *websocket.Hub
	upgrader  *gorillaws.Upgrader
	config    HandlerConfig
	startTime time.Time
}

// NewHandler wires the handler dependencies. hub and upgrader may be nil, in
// which case /api/v1/ws answers 503.
func NewHandler(dashboard DashboardService, importer Importer, db Pinger, hub *websocket.Hub, upgrader *gorillaws.Upgrader, cfg HandlerConfig) *Handler {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	return &Handler{
		dashboard: dashboard,
		importer:  importer,
		db:        db,
		hub:       hub,
		upgrader:  upgrader,
		config:    cfg,
		startTime: time.Now(),
	}
}
