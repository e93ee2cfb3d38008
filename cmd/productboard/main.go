package main

import (
	"context"
	"fmt"
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"ProductBoard/internal/api"
	"ProductBoard/internal/catalog"
	"ProductBoard/internal/config"
	"ProductBoard/pkg/kit"
)

type closableStore interface {
	catalog.Store
	Close() error
}

func main() {
	service := "productboard"

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	store, err := openStore(cfg)
	if err != nil {
		logger.Fatal("open store failed", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("close store failed", zap.Error(err))
		}
	}()

	if err := store.Init(context.Background()); err != nil {
		logger.Fatal("init store failed", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &catalog.Server{
		Store:         store,
		Log:           logger,
		StrictNumbers: cfg.StrictNumbers,
	}

	h := api.NewHandler(s, api.HTTPDeps{
		Log:             logger,
		Service:         service,
		Registry:        reg,
		MetricsEnabled:  cfg.MetricsEnabled,
		MetricsToken:    cfg.MetricsToken,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})

	if err := kit.RunHTTPServer(cfg.Addr(), h, logger, cfg.ShutdownTimeout); err != nil {
		logger.Error("http server stopped", zap.Error(err))
	}
}

func openStore(cfg *config.Config) (closableStore, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		return catalog.OpenSQLite(cfg.DBPath)
	case config.DriverPostgres:
		return catalog.OpenPostgres(cfg.DatabaseURL)
	case config.DriverMemory:
		return nopCloser{catalog.NewMemStore()}, nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}
}

type nopCloser struct {
	*catalog.MemStore
}

func (nopCloser) Close() error { return nil }
