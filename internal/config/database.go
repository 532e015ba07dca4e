package config

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jbweber/homelab/storefront/internal/datastore"
	"github.com/jbweber/homelab/storefront/internal/logger"
	"github.com/jbweber/homelab/storefront/internal/migrations"
)

// InitializeDatabase opens the configured store, tunes it and brings the
// schema up to date.
func (c *Config) InitializeDatabase(ctx context.Context) (*datastore.Datastore, error) {
	ds, err := c.OpenDatabase(ctx)
	if err != nil {
		return nil, err
	}

	if err := migrations.NewDefaultMigrator(ds.DB).RunMigrations(ctx); err != nil {
		_ = ds.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return ds, nil
}

// OpenDatabase opens and tunes the configured store without migrating it.
func (c *Config) OpenDatabase(ctx context.Context) (*datastore.Datastore, error) {
	if c.Storage.Driver == datastore.DriverSQLite {
		// Ensure database directory exists
		dbDir := filepath.Dir(c.expandPath(c.Storage.Path))
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	ds, err := datastore.Open(ctx, c.Storage.Driver, c.DSN())
	if err != nil {
		return nil, err
	}

	c.OptimizeDatabaseConnection(ds.DB.DB)

	if ds.IsSQLite() {
		if err := ApplyPragmaOptimizations(ctx, ds.DB.DB); err != nil {
			_ = ds.Close()
			return nil, fmt.Errorf("failed to apply performance optimizations: %w", err)
		}
	}

	logger.From(ctx).Info("database ready",
		logger.Component("config"),
		logger.String("driver", c.Storage.Driver),
		logger.Int("max_open_conns", c.Storage.MaxOpenConns))
	return ds, nil
}

// OptimizeDatabaseConnection applies the configured pool limits
func (c *Config) OptimizeDatabaseConnection(db *sql.DB) {
	db.SetMaxOpenConns(c.Storage.MaxOpenConns)
	db.SetMaxIdleConns(c.Storage.MaxIdleConns)
	db.SetConnMaxLifetime(c.Storage.ConnMaxLifetime)
}

// ApplyPragmaOptimizations applies SQLite-specific performance pragmas.
// Per-connection pragmas travel in the DSN; these persist in the file.
func ApplyPragmaOptimizations(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL", // Write-Ahead Logging for better concurrency
		"PRAGMA optimize",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return nil
}
