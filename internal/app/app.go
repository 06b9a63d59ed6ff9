package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mfairbank/restocalc/internal/catalog"
	"github.com/mfairbank/restocalc/internal/controllers/restserver"
	"github.com/mfairbank/restocalc/internal/engine"
	"github.com/mfairbank/restocalc/internal/log"
	"github.com/mfairbank/restocalc/internal/views"
	"github.com/mfairbank/restocalc/pkg/config"
	"go.uber.org/zap"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("could not load configuration: %w", err)
	}
	cfg.ApplyDefaults()

	repo, err := openCatalogRepository(cfg.Catalog)
	if err != nil {
		return err
	}
	defer repo.Close()

	store, err := catalog.NewStore(ctx, repo, time.Duration(cfg.Catalog.RefreshMinutes)*time.Minute)
	if err != nil {
		return fmt.Errorf("could not load equipment catalog: %w", err)
	}
	store.Run(ctx, &wg)

	eng := engine.New(cfg.Engine, store, a.logger)

	projector := views.NewProjector(views.ProjectorConfig{
		TargetMarginRatio: cfg.Engine.TargetMarginRatio,
		Contact: views.Contact{
			Phone: cfg.Engine.ContactPhone,
			Email: cfg.Engine.ContactEmail,
		},
	})

	if cfg.REST == nil {
		return fmt.Errorf("no REST server configured; nothing to serve")
	}
	rest, err := restserver.NewController(ctx, &wg, *cfg.REST, eng, store, projector, a.logger)
	if err != nil {
		return fmt.Errorf("could not create REST controller: %w", err)
	}
	if err := rest.StartController(); err != nil {
		return fmt.Errorf("could not start REST controller: %w", err)
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}

// openCatalogRepository picks the catalog backend from configuration:
// Postgres via GORM, a local SQLite file, or the built-in reference
// catalog.
func openCatalogRepository(cfg config.CatalogData) (catalog.Repository, error) {
	switch cfg.Backend {
	case "postgres":
		if cfg.ConnectionString == "" {
			return nil, fmt.Errorf("catalog backend is postgres but no connection string is configured")
		}
		return catalog.NewGormRepository(cfg.ConnectionString)
	case "sqlite":
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("catalog backend is sqlite but no database path is configured")
		}
		return catalog.NewSQLiteRepository(cfg.SQLitePath)
	case "static", "":
		return &catalog.Static{Entries: catalog.ReferenceEntries()}, nil
	default:
		return nil, fmt.Errorf("unknown catalog backend: %s", cfg.Backend)
	}
}
