// Package datastore owns the relational database handle shared by the repositories.
package datastore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/jbweber/homelab/storefront/internal/logger"
)

// Supported storage drivers, as named in configuration.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know about.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Datastore wraps the database handle together with the SQL dialect in use.
type Datastore struct {
	DB      *sqlx.DB
	driver  string
	dialect goqu.DialectWrapper
}

// Open connects to the database for the given storage driver and verifies the connection.
func Open(ctx context.Context, driver, dsn string) (*Datastore, error) {
	sqlDriver, err := sqlDriverName(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return Wrap(db, driver)
}

// Wrap adopts an already opened *sql.DB.
func Wrap(db *sql.DB, driver string) (*Datastore, error) {
	sqlDriver, err := sqlDriverName(driver)
	if err != nil {
		return nil, err
	}

	dialect := "sqlite3"
	if driver == DriverPostgres {
		dialect = "postgres"
	}

	return &Datastore{
		DB:      sqlx.NewDb(db, sqlDriver),
		driver:  driver,
		dialect: goqu.Dialect(dialect),
	}, nil
}

func sqlDriverName(driver string) (string, error) {
	switch driver {
	case DriverSQLite:
		return "sqlite", nil
	case DriverPostgres:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported storage driver %q", driver)
	}
}

// Driver returns the configured storage driver name.
func (ds *Datastore) Driver() string {
	return ds.driver
}

// IsSQLite reports whether the store is backed by SQLite.
func (ds *Datastore) IsSQLite() bool {
	return ds.driver == DriverSQLite
}

// Builder returns a goqu query builder for the store's dialect.
// Statements built from it use prepared placeholders.
func (ds *Datastore) Builder() goqu.DialectWrapper {
	return ds.dialect
}

// Ping checks that the database is reachable.
func (ds *Datastore) Ping(ctx context.Context) error {
	return ds.DB.PingContext(ctx)
}

// Close closes the underlying database handle.
func (ds *Datastore) Close() error {
	return ds.DB.Close()
}

// WithTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise. fn must use the transaction for every statement.
func (ds *Datastore) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := ds.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && rollbackErr != sql.ErrTxDone {
			logger.From(ctx).Warn("transaction rollback failed", logger.Err(rollbackErr))
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Stats logs connection pool statistics at debug level.
func (ds *Datastore) Stats(ctx context.Context) {
	s := ds.DB.Stats()
	logger.From(ctx).Debug("database pool stats",
		zap.Int("open", s.OpenConnections),
		zap.Int("in_use", s.InUse),
		zap.Int("idle", s.Idle),
		zap.Int64("wait_count", s.WaitCount),
	)
}
