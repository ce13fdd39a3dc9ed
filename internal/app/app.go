// Package app wires configuration, storage and the greeting service together
// for the server and the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zapponejosh/seasonal-greetings/internal/config"
	"github.com/zapponejosh/seasonal-greetings/internal/database"
	"github.com/zapponejosh/seasonal-greetings/internal/filestore"
	"github.com/zapponejosh/seasonal-greetings/internal/greeting"
)

// App owns the store and the service built on it.
type App struct {
	Config  *config.Config
	Service *greeting.Service

	closer func() error
}

// New opens the configured backend and builds the service.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	store, closer, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	svc := greeting.NewService(store, greeting.Options{
		ImageRoot:      cfg.ImageRoot,
		OutputPath:     cfg.OutputPath,
		ResetAfterDays: cfg.ResetAfterDays,
		MaxDimension:   cfg.OutputMaxDimension,
		Location:       cfg.Location(),
	}, logger)

	return &App{Config: cfg, Service: svc, closer: closer}, nil
}

// Close releases the store.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer()
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (greeting.Store, func() error, error) {
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		db, err := database.Open(database.DefaultConfig(cfg.DatabasePath), logger)
		if err != nil {
			return nil, nil, err
		}
		if _, err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("using sqlite backend", slog.String("path", cfg.DatabasePath))
		return db, db.Close, nil

	case config.BackendJSON:
		store := filestore.New(filestore.Config{
			TrackerPath:  cfg.TrackerPath,
			StatePath:    cfg.StatePath,
			MessagesPath: cfg.MessagesPath,
		})
		logger.Info("using json backend",
			slog.String("tracker", cfg.TrackerPath),
			slog.String("state", cfg.StatePath),
			slog.String("messages", cfg.MessagesPath),
		)
		return store, store.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
