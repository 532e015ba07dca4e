package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/jbweber/homelab/storefront/internal/datastore"
	"github.com/jbweber/homelab/storefront/internal/migrations"
)

// CleanupTestDB removes the test database file. In-memory databases have
// nothing on disk and are ignored.
func CleanupTestDB(dsn string) error {
	if !strings.HasPrefix(dsn, "file:") {
		return fmt.Errorf("invalid DSN format")
	}

	path, query, _ := strings.Cut(dsn[len("file:"):], "?")
	if strings.Contains(query, "mode=memory") {
		return nil
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SetupTestDatastore creates an empty in-memory datastore.
// The pool is pinned to one connection so the shared-cache database lives
// as long as the datastore and statements never contend for table locks.
func SetupTestDatastore(t *testing.T, testName string) (*datastore.Datastore, func()) {
	t.Helper()
	dsn := NewTestDSN(testName)

	ds, err := datastore.Open(context.Background(), datastore.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	ds.DB.SetMaxOpenConns(1)

	cleanup := func() {
		if err := ds.Close(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
		if err := CleanupTestDB(dsn); err != nil {
			t.Logf("Warning: failed to remove test database: %v", err)
		}
	}

	return ds, cleanup
}

// SetupTestDatastoreWithMigrations creates an in-memory datastore with the full schema applied.
func SetupTestDatastoreWithMigrations(t *testing.T, testName string) (*datastore.Datastore, func()) {
	t.Helper()
	ds, cleanup := SetupTestDatastore(t, testName)

	if err := migrations.NewDefaultMigrator(ds.DB).RunMigrations(context.Background()); err != nil {
		cleanup()
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return ds, cleanup
}

// SetupTestDB returns the raw handle of an empty test datastore.
func SetupTestDB(t *testing.T, testName string) (*sqlx.DB, func()) {
	t.Helper()
	ds, cleanup := SetupTestDatastore(t, testName)
	return ds.DB, cleanup
}

// SetupTestDBWithMigrations returns the raw handle of a migrated test datastore.
func SetupTestDBWithMigrations(t *testing.T, testName string) (*sqlx.DB, func()) {
	t.Helper()
	ds, cleanup := SetupTestDatastoreWithMigrations(t, testName)
	return ds.DB, cleanup
}
