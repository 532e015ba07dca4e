package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute)

	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.Set(ctx, "short", []byte("v"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	_, err = m.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Flush(ctx))
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, m.Ping(ctx))
	assert.NoError(t, m.Close())
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	c, err := New(ctx, Config{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)

	c, err = New(ctx, Config{Kind: "none"})
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = New(ctx, Config{Kind: "memcached"})
	assert.Error(t, err)

	_, err = New(ctx, Config{Kind: "redis", RedisAddr: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestRedisKeyPrefix(t *testing.T) {
	r := &Redis{prefix: "storefront"}
	assert.Equal(t, "storefront:search:abc", r.key("search:abc"))
}
