package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"recipe-finder/internal/core/recipe"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cacheKey = "recipe-finder:dataset:test"

type countingSource struct {
	ds      recipe.Dataset
	calls   int
	pingErr error
}

func (c *countingSource) Load(context.Context) (recipe.Dataset, error) {
	c.calls++
	return c.ds, nil
}

func (c *countingSource) Ping(context.Context) error {
	return c.pingErr
}

func newCachedSource(t *testing.T) (*CachedSource, *countingSource, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	inner := &countingSource{ds: recipe.Dataset{
		Columns: []string{"_id", "name", "ingredients", "prep_time"},
		Rows: []recipe.Row{
			{"_id": int64(9007199254740993), "name": "Kheer", "ingredients": "milk", "prep_time": []byte("10")},
		},
	}}
	return NewCachedSource(inner, client, cacheKey, time.Minute), inner, mr
}

func TestCachedSource_MissThenHit(t *testing.T) {
	src, inner, mr := newCachedSource(t)
	ctx := context.Background()

	first, err := src.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
	assert.True(t, mr.Exists(cacheKey))
	assert.Equal(t, time.Minute, mr.TTL(cacheKey))

	second, err := src.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first.Columns, second.Columns)
	assert.Equal(t, "10", second.Rows[0]["prep_time"])
	assert.Equal(t, "Kheer", second.Rows[0]["name"])
}

func TestCachedSource_HitKeepsLargeIntegerIDs(t *testing.T) {
	src, _, _ := newCachedSource(t)
	ctx := context.Background()

	_, err := src.Load(ctx)
	require.NoError(t, err)
	cached, err := src.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, "9007199254740993", recipe.Text(cached.Rows[0]["_id"]))
	assert.Equal(t, 10.0, *recipe.Minutes(cached.Rows[0]["prep_time"]))
}

func TestCachedSource_RedisDownFallsBack(t *testing.T) {
	src, inner, mr := newCachedSource(t)
	ctx := context.Background()

	_, err := src.Load(ctx)
	require.NoError(t, err)

	mr.Close()

	ds, err := src.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, "Kheer", ds.Rows[0]["name"])
}

func TestCachedSource_CorruptEntryIsReplaced(t *testing.T) {
	src, inner, mr := newCachedSource(t)
	ctx := context.Background()
	require.NoError(t, mr.Set(cacheKey, "{not json"))

	ds, err := src.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, "Kheer", ds.Rows[0]["name"])

	raw, err := mr.Get(cacheKey)
	require.NoError(t, err)
	rewritten, err := decodeDataset([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, inner.ds.Columns, rewritten.Columns)

	_, err = src.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedSource_PingIgnoresRedis(t *testing.T) {
	src, inner, mr := newCachedSource(t)
	ctx := context.Background()

	assert.NoError(t, src.Ping(ctx))

	mr.Close()
	assert.NoError(t, src.Ping(ctx))

	inner.pingErr = errors.New("no such file")
	assert.ErrorIs(t, src.Ping(ctx), inner.pingErr)
}

func TestCachedSource_Invalidate(t *testing.T) {
	src, inner, mr := newCachedSource(t)
	ctx := context.Background()

	_, err := src.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, src.Invalidate(ctx))
	assert.False(t, mr.Exists(cacheKey))

	_, err = src.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}
