package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

type cachedItem struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func TestGetSetJSON(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	var out cachedItem
	found, err := GetJSON(ctx, ItemKey(1), &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, ItemKey(1), cachedItem{ID: 1, Name: "Visit Kyoto"}, ItemTTL))

	found, err = GetJSON(ctx, ItemKey(1), &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, cachedItem{ID: 1, Name: "Visit Kyoto"}, out)
}

func TestAside(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *cachedItem) func() error {
		return func() error {
			fetches++
			*dest = cachedItem{ID: 7, Name: "See the aurora"}
			return nil
		}
	}

	var first cachedItem
	require.NoError(t, Aside(ctx, ItemKey(7), &first, ItemTTL, fetch(&first)))
	assert.Equal(t, 1, fetches)

	// Second read is served from the cache.
	var second cachedItem
	require.NoError(t, Aside(ctx, ItemKey(7), &second, ItemTTL, fetch(&second)))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, first, second)
}

func TestAsideExpiry(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	fetches := 0
	var out cachedItem
	fetch := func() error {
		fetches++
		out = cachedItem{ID: 1}
		return nil
	}

	require.NoError(t, Aside(ctx, ItemsListKey, &out, ItemsListTTL, fetch))
	mr.FastForward(ItemsListTTL + time.Second)
	require.NoError(t, Aside(ctx, ItemsListKey, &out, ItemsListTTL, fetch))
	assert.Equal(t, 2, fetches)
}

func TestInvalidate(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, UserKey(3), cachedItem{ID: 3}, UserTTL))
	require.NoError(t, SetJSON(ctx, UserItemsKey(3), []cachedItem{{ID: 1}}, UserTTL))

	InvalidateUser(ctx, 3)

	var out cachedItem
	found, err := GetJSON(ctx, UserKey(3), &out)
	require.NoError(t, err)
	assert.False(t, found)

	var items []cachedItem
	found, err = GetJSON(ctx, UserItemsKey(3), &items)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNilClientDegradesToFetch(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	fetches := 0
	var out cachedItem
	fetch := func() error {
		fetches++
		return nil
	}

	require.NoError(t, Aside(ctx, ItemKey(1), &out, ItemTTL, fetch))
	require.NoError(t, Aside(ctx, ItemKey(1), &out, ItemTTL, fetch))
	assert.Equal(t, 2, fetches)
}
