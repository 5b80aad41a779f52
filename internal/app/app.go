package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/timeliness/internal/config"
	"github.com/specialistvlad/timeliness/internal/ctxlog"
	"github.com/specialistvlad/timeliness/internal/inmemoryrecords"
	"github.com/specialistvlad/timeliness/internal/recordstore"
	"github.com/specialistvlad/timeliness/internal/sqlrecords"
)

// App encapsulates the application's dependencies, configuration and
// lifecycle.
type App struct {
	logger *slog.Logger
	ctx    context.Context
	config *config.Model
	store  recordstore.Store

	httpServer *http.Server
}

// NewApp loads the engine configuration through loader and opens the
// configured record store.
func NewApp(ctx context.Context, outW io.Writer, appConfig *Config, loader config.Loader) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, appConfig.ConfigPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("Configuration loaded and translated into unified model.")

	store, err := openStore(model.Storage)
	if err != nil {
		return nil, err
	}
	logger.Debug("Record store opened.", "driver", model.Storage.Driver)

	return &App{
		logger: logger,
		ctx:    ctx,
		config: model,
		store:  store,
	}, nil
}

func openStore(cfg config.Storage) (recordstore.Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		s, err := sqlrecords.Open(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open record store: %w", err)
		}
		return s, nil
	case config.DriverMemory, "":
		return inmemoryrecords.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// Config returns the loaded engine configuration.
func (a *App) Config() *config.Model {
	return a.config
}

// Store returns the record store.
func (a *App) Store() recordstore.Store {
	return a.store
}

// Close releases the record store.
func (a *App) Close() error {
	if err := a.store.Close(); err != nil {
		return fmt.Errorf("failed to close record store: %w", err)
	}
	a.logger.Debug("Record store closed.")
	return nil
}
