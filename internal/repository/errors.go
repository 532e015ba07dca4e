package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Common repository errors that can be checked with errors.Is()
var (
	// ErrNotFound is returned when an entity is not found
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when attempting to create an entity that already exists
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrBuildingQueryFailed is returned when a dynamic query cannot be rendered
	ErrBuildingQueryFailed = errors.New("building query failed")
)

// translateConstraint maps driver constraint violations onto repository errors.
// Other errors are returned unchanged.
func translateConstraint(err error, what string) error {
	if err == nil {
		return nil
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%s: %w", what, ErrDuplicate)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%s references a missing entity: %w", what, ErrInvalidEntity)
		case sqlite3.SQLITE_CONSTRAINT_CHECK, sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return fmt.Errorf("%s violates a constraint: %w", what, ErrInvalidEntity)
		}
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", what, ErrDuplicate)
		case "23503":
			return fmt.Errorf("%s references a missing entity: %w", what, ErrInvalidEntity)
		case "23514", "23502", "22001":
			return fmt.Errorf("%s violates a constraint: %w", what, ErrInvalidEntity)
		}
	}
	return err
}
