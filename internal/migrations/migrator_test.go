package migrations

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T, name string) *sqlx.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)
	db, err := sqlx.Open("sqlite", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Logf("Warning: failed to close test database: %v", closeErr)
		}
	})
	return db
}

func tableExists(t *testing.T, db *sqlx.DB, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&count)
	require.NoError(t, err)
	return count == 1
}

func TestMigrator_RunMigrations(t *testing.T) {
	db := openTestDB(t, "TestMigrator_RunMigrations")
	ctx := context.Background()

	migrator := NewDefaultMigrator(db)
	require.NoError(t, migrator.RunMigrations(ctx))

	version, err := migrator.GetCurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), version)

	for _, table := range []string{"shops", "opening_hours", "products", "categories", "product_categories", "shop_search", "schema_migrations"} {
		assert.True(t, tableExists(t, db, table), "table %s should exist", table)
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = 2 AND name = 'create_shop_search_index'").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// running again is a no-op
	require.NoError(t, migrator.RunMigrations(ctx))
	err = db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestMigrator_AddMigration(t *testing.T) {
	db := openTestDB(t, "TestMigrator_AddMigration")

	migrator := NewMigrator(db)

	// Add migrations out of order
	migrator.AddMigration(Migration{Version: 3, Name: "third"})
	migrator.AddMigration(Migration{Version: 1, Name: "first"})
	migrator.AddMigration(Migration{Version: 2, Name: "second"})

	migrations := migrator.GetMigrations()
	assert.Equal(t, int64(1), migrations[0].Version)
	assert.Equal(t, int64(2), migrations[1].Version)
	assert.Equal(t, int64(3), migrations[2].Version)
}

func TestMigrator_FailedMigrationIsNotRecorded(t *testing.T) {
	db := openTestDB(t, "TestMigrator_FailedMigrationIsNotRecorded")
	ctx := context.Background()

	migrator := NewMigrator(db)
	migrator.AddMigration(Migration{
		Version: 1,
		Name:    "half_done",
		Up: func(tx *sqlx.Tx) error {
			if _, err := tx.Exec(`CREATE TABLE partial (id INTEGER)`); err != nil {
				return err
			}
			return errors.New("boom")
		},
	})

	err := migrator.RunMigrations(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "half_done")

	version, err := migrator.GetCurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)
	assert.False(t, tableExists(t, db, "partial"), "schema changes must roll back with the version record")
}

func TestMigrator_RollbackAndStatus(t *testing.T) {
	db := openTestDB(t, "TestMigrator_RollbackAndStatus")
	ctx := context.Background()

	migrator := NewDefaultMigrator(db)
	require.NoError(t, migrator.RunMigrations(ctx))

	require.NoError(t, migrator.Rollback(ctx))
	version, err := migrator.GetCurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	statuses, err := migrator.Status(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 3)
	assert.True(t, statuses[0].Applied)
	assert.True(t, statuses[1].Applied)
	assert.False(t, statuses[2].Applied)
	assert.Equal(t, "add_performance_indices", statuses[2].Name)

	require.NoError(t, migrator.Rollback(ctx))
	require.NoError(t, migrator.Rollback(ctx))
	assert.False(t, tableExists(t, db, "shops"))

	// nothing left to revert
	require.NoError(t, migrator.Rollback(ctx))
}

func TestSearchMigration_BackfillsExistingShops(t *testing.T) {
	db := openTestDB(t, "TestSearchMigration_BackfillsExistingShops")
	ctx := context.Background()

	migrator := NewMigrator(db)
	for _, m := range GetInitialMigrations() {
		migrator.AddMigration(m)
	}
	require.NoError(t, migrator.RunMigrations(ctx))

	_, err := db.Exec(`INSERT INTO shops (name, in_vacations, created_at) VALUES ('Corner Bakery', 0, '2024-01-01')`)
	require.NoError(t, err)

	for _, m := range GetSearchMigrations() {
		migrator.AddMigration(m)
	}
	require.NoError(t, migrator.RunMigrations(ctx))

	var shopID int64
	err = db.QueryRow(`SELECT shop_id FROM shop_search WHERE shop_search MATCH '"bak"'`).Scan(&shopID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), shopID)
}
