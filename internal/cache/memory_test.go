package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10, time.Minute)
	defer c.Close()

	require.NoError(t, c.Set(ctx, "brand_1", entry{ID: 1, Name: "Fender"}))

	var got entry
	require.NoError(t, c.Get(ctx, "brand_1", &got))
	assert.Equal(t, entry{ID: 1, Name: "Fender"}, got)
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache(10, time.Minute)

	var got entry
	assert.ErrorIs(t, c.Get(context.Background(), "nope", &got), ErrMiss)
}

func TestMemoryCacheDeleteMany(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10, time.Minute)
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, k, entry{Name: k}))
	}

	require.NoError(t, c.Delete(ctx, "a", "b", "missing"))

	var got entry
	assert.ErrorIs(t, c.Get(ctx, "a", &got), ErrMiss)
	assert.ErrorIs(t, c.Get(ctx, "b", &got), ErrMiss)
	assert.NoError(t, c.Get(ctx, "c", &got))
}

func TestMemoryCacheDeletePrefix(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10, time.Minute)
	for _, k := range []string{"brand_1", "brand_with_products_1", "brands_page_1_limit_10", "all_brands"} {
		require.NoError(t, c.Set(ctx, k, entry{Name: k}))
	}

	require.NoError(t, c.DeletePrefix(ctx, "brand"))

	var got entry
	assert.ErrorIs(t, c.Get(ctx, "brand_1", &got), ErrMiss)
	assert.ErrorIs(t, c.Get(ctx, "brand_with_products_1", &got), ErrMiss)
	assert.ErrorIs(t, c.Get(ctx, "brands_page_1_limit_10", &got), ErrMiss)
	assert.NoError(t, c.Get(ctx, "all_brands", &got))
}

func TestMemoryCacheExpires(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10, 20*time.Millisecond)
	require.NoError(t, c.Set(ctx, "k", entry{ID: 1}))

	assert.Eventually(t, func() bool {
		var got entry
		return c.Get(ctx, "k", &got) == ErrMiss
	}, time.Second, 5*time.Millisecond)
}

func TestMemoryCacheReturnsCopies(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10, time.Minute)
	src := []entry{{ID: 1, Name: "Gibson"}}
	require.NoError(t, c.Set(ctx, "all", src))
	src[0].Name = "changed"

	var got []entry
	require.NoError(t, c.Get(ctx, "all", &got))
	assert.Equal(t, "Gibson", got[0].Name)
}

func TestMemoryCacheSetUnmarshalable(t *testing.T) {
	c := NewMemoryCache(10, time.Minute)
	assert.Error(t, c.Set(context.Background(), "bad", make(chan int)))
}
