package datastore

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDSN returns a unique in-memory SQLite DSN for each test.
func testDSN(testID string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", testID)
}

func openTest(t *testing.T, name string) *Datastore {
	t.Helper()
	ds, err := Open(context.Background(), DriverSQLite, testDSN(name))
	require.NoError(t, err)
	ds.DB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = ds.Close() })

	_, err = ds.DB.Exec(`CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`)
	require.NoError(t, err)
	return ds
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "whatever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported storage driver")
}

func TestOpen_SQLite(t *testing.T) {
	ds := openTest(t, "TestOpen_SQLite")

	assert.True(t, ds.IsSQLite())
	assert.Equal(t, DriverSQLite, ds.Driver())
	assert.NoError(t, ds.Ping(context.Background()))
	assert.Equal(t, "INSERT INTO items (id) VALUES (?)", ds.DB.Rebind("INSERT INTO items (id) VALUES (?)"))
}

func TestBuilder_UsesDialectPlaceholders(t *testing.T) {
	ds := openTest(t, "TestBuilder_UsesDialectPlaceholders")

	query, args, err := ds.Builder().From("items").Where(goqu.C("name").Eq("a")).Prepared(true).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM `+"`items`"+` WHERE (`+"`name`"+` = ?)`, query)
	assert.Equal(t, []interface{}{"a"}, args)

	pg, err := Wrap(ds.DB.DB, DriverPostgres)
	require.NoError(t, err)
	query, _, err = pg.Builder().From("items").Where(goqu.C("name").Eq("a")).Prepared(true).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "items" WHERE ("name" = $1)`, query)
}

func TestWithTx(t *testing.T) {
	ds := openTest(t, "TestWithTx")
	ctx := context.Background()

	err := ds.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.Exec(`INSERT INTO items (name) VALUES ('kept')`)
		return err
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = ds.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`INSERT INTO items (name) VALUES ('discarded')`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var names []string
	require.NoError(t, ds.DB.Select(&names, `SELECT name FROM items ORDER BY id`))
	assert.Equal(t, []string{"kept"}, names)
}
