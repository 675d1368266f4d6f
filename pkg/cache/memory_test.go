package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", payload{Name: "cpi", Value: 1.5}, time.Minute))

	var got payload
	require.NoError(t, mc.Get(ctx, "k", &got))
	assert.Equal(t, payload{Name: "cpi", Value: 1.5}, got)

	var raw []byte
	require.NoError(t, mc.Get(ctx, "k", &raw))
	assert.JSONEq(t, `{"name":"cpi","value":1.5}`, string(raw))

	ok, err := mc.Exists(ctx, "missing", "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryCacheMissAndDelete(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	var got payload
	assert.ErrorIs(t, mc.Get(ctx, "nope", &got), ErrCacheMiss)

	require.NoError(t, mc.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, mc.Delete(ctx, "k"))
	var s string
	assert.ErrorIs(t, mc.Get(ctx, "k", &s), ErrCacheMiss)
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "short", "v", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	var s string
	assert.ErrorIs(t, mc.Get(ctx, "short", &s), ErrCacheMiss)
	ok, err := mc.Exists(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, mc.Set(ctx, "b", "2", time.Minute))

	var s string
	require.NoError(t, mc.Get(ctx, "a", &s))
	require.NoError(t, mc.Set(ctx, "c", "3", time.Minute))

	assert.Equal(t, 2, mc.Len())
	assert.NoError(t, mc.Get(ctx, "a", &s))
	assert.ErrorIs(t, mc.Get(ctx, "b", &s), ErrCacheMiss)
	assert.NoError(t, mc.Get(ctx, "c", &s))
}

func TestMemoryCacheCloseIsIdempotent(t *testing.T) {
	mc := NewMemoryCache()
	assert.NoError(t, mc.Close())
	assert.NoError(t, mc.Close())
}

func TestGenerateKey(t *testing.T) {
	assert.Equal(t, "report:abc", GenerateKey("report", "abc"))
	assert.Equal(t, "report", GenerateKey("report"))
}
