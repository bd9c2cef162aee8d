package application

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/config"
	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/database"
	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/handler"
	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/model"
	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/router"
	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/service"
	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/threat"
)

// API is the HTTP + WebSocket monitor application.
type API struct {
	cfg      *config.Config
	srv      *http.Server
	db       *gorm.DB
	hub      *service.Hub
	refresh  *service.RefreshLoop
	analyzer threat.Analyzer
	logger   *zap.Logger
}

// NewAPI wires the application: validates config, runs migrations, opens the
// database, and builds the hub, services, analyzer, handlers and router.
func NewAPI(cfg *config.Config) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	logger, _ := zap.NewProduction()
	if cfg.AppEnv == "development" {
		logger, _ = zap.NewDevelopment()
	}

	hub := service.NewHub(cfg.WSReadBufferSize, cfg.WSWriteBufferSize, cfg.WSSendBuffer, logger)

	var analyzer threat.Analyzer = threat.Noop{}
	if cfg.ThreatAnalyzerEnabled {
		engine := threat.NewEngine(logger)
		engine.OnThreat(func(ev threat.Event) {
			if env, err := model.NewEnvelope(model.EventThreat, ev); err == nil {
				hub.Broadcast(env)
			}
		})
		engine.OnStats(func(stats threat.Stats) {
			if env, err := model.NewEnvelope(model.EventStatsUpdate, stats); err == nil {
				hub.Broadcast(env)
			}
		})
		analyzer = engine
	}

	satSvc := service.NewSatelliteService(db, hub)
	refresh := service.NewRefreshLoop(satSvc, hub, analyzer, cfg.RefreshInterval, logger)

	satHandler := handler.NewSatelliteHandler(satSvc, hub)
	threatHandler := handler.NewThreatHandler(analyzer)
	streamWS := handler.NewStreamWSHandler(hub, logger)
	health := handler.NewHealthHandler()

	r := router.New(satHandler, threatHandler, streamWS, health)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &API{
		cfg:      cfg,
		srv:      srv,
		db:       db,
		hub:      hub,
		refresh:  refresh,
		analyzer: analyzer,
		logger:   logger,
	}, nil
}

// Run starts the refresh loop and HTTP server and blocks until ctx is
// cancelled; then it shuts down gracefully.
func (a *API) Run(ctx context.Context) error {
	defer a.logger.Sync()

	addr := a.srv.Addr
	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	log.Printf("HTTP server listening on %s", addr)
	log.Printf("  Health:      %s/health", base)
	log.Printf("  Metrics:     %s/metrics", base)
	log.Printf("  Satellites:  %s/api/satellites", base)
	log.Printf("  Positions:   %s/api/positions", base)
	log.Printf("  WebSocket:   ws://%s:%s/ws", host, a.cfg.HTTPPort)

	go a.refresh.Run(ctx)
	a.analyzer.Start(ctx, a.cfg.StatsInterval)

	go func() {
		if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
