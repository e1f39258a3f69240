// Package app opens the configured store, seeds the catalog and builds
// the training service. All commands start here.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claude/trainday/internal/catalog"
	"github.com/claude/trainday/internal/config"
	"github.com/claude/trainday/internal/storage"
	"github.com/claude/trainday/internal/storage/sqlitestore"
	"github.com/claude/trainday/internal/training"
)

// App is an opened store with the service built on top of it.
type App struct {
	Service *training.Service
	Store   training.Store

	closeFn func()
}

// Close releases the store.
func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// Migrate applies pending migrations for the configured driver.
func Migrate(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		// Open migrates.
		s, err := sqlitestore.Open(cfg.Database.Path)
		if err != nil {
			return err
		}
		log.Info("migrations applied", "driver", cfg.Database.Driver, "path", cfg.Database.Path)
		return s.Close()
	default:
		if err := storage.RunMigrations(cfg.Database.DSN()); err != nil {
			return err
		}
		log.Info("migrations applied", "driver", cfg.Database.Driver)
		return nil
	}
}

// Open connects the store, makes sure the catalog is present and returns
// the service. The caller must Close the App.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger, opts ...training.Option) (*App, error) {
	policy, err := cfg.Engine.Policy()
	if err != nil {
		return nil, err
	}

	a := &App{}
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		s, err := sqlitestore.Open(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		a.Store = s
		a.closeFn = func() {
			if err := s.Close(); err != nil {
				log.Error("closing database", "error", err)
			}
		}
		log.Info("database opened", "driver", cfg.Database.Driver, "path", cfg.Database.Path)
	default:
		dsn := cfg.Database.DSN()
		if err := storage.RunMigrations(dsn); err != nil {
			return nil, err
		}
		db, err := storage.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		a.Store = db
		a.closeFn = db.Close
		log.Info("database connected", "driver", cfg.Database.Driver)
	}

	if err := Seed(ctx, a.Store, cfg.Engine, cfg.Engine.SeedCatalog, log); err != nil {
		a.Close()
		return nil, err
	}

	a.Service = training.NewService(a.Store, policy, log, opts...)
	return a, nil
}

// Seed loads the configured catalog (or the embedded default) and writes
// it to store when force is set or the store is empty.
func Seed(ctx context.Context, store catalog.Store, eng config.EngineConfig, force bool, log *slog.Logger) error {
	c, err := loadCatalog(eng.CatalogPath)
	if err != nil {
		return err
	}
	if err := catalog.EnsureSeeded(ctx, store, c, force, log); err != nil {
		return fmt.Errorf("seeding catalog: %w", err)
	}
	return nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}
