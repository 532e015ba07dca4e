package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/homelab/storefront/internal/testutil"
)

func TestPreparedStatementCache(t *testing.T) {
	db, cleanup := testutil.SetupTestDBWithMigrations(t, "TestPreparedStatementCache")
	defer cleanup()

	cache := NewPreparedStatementCache(db)
	ctx := context.Background()

	stmt1, err := cache.Get(ctx, "SELECT COUNT(*) FROM shops WHERE id = ?")
	require.NoError(t, err)
	stmt2, err := cache.Get(ctx, "SELECT COUNT(*) FROM shops WHERE id = ?")
	require.NoError(t, err)
	assert.Same(t, stmt1, stmt2)
	assert.Equal(t, 1, cache.Size())

	var count int
	require.NoError(t, stmt1.GetContext(ctx, &count, 1))
	assert.Zero(t, count)

	// sqlite may defer compilation until the statement runs
	bad, err := cache.Get(ctx, "SELECT nope FROM nowhere")
	if err == nil {
		var n int
		assert.Error(t, bad.GetContext(ctx, &n))
		require.NoError(t, cache.Clear("SELECT nope FROM nowhere"))
	}
	assert.Equal(t, 1, cache.Size())

	require.NoError(t, cache.Clear("SELECT COUNT(*) FROM shops WHERE id = ?"))
	assert.Equal(t, 0, cache.Size())
	require.NoError(t, cache.Clear("not cached"))

	_, err = cache.Get(ctx, "SELECT 1")
	require.NoError(t, err)
	require.NoError(t, cache.Close())
	assert.Equal(t, 0, cache.Size())
}
