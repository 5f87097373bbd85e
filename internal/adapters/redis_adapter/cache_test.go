package redis_a_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redis_a "github.com/ammerola/warehouse-be/internal/adapters/redis_adapter"
	"github.com/ammerola/warehouse-be/internal/core/domain"
	"github.com/ammerola/warehouse-be/internal/core/ports"
	"github.com/ammerola/warehouse-be/test/helpers"
)

func setupCache(t *testing.T) (*redis_a.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return redis_a.NewCache(client, 5*time.Minute, helpers.TestLogger()), mr
}

func TestCache_SetAndGet(t *testing.T) {
	ctx := context.Background()
	cache, mr := setupCache(t)

	t.Run("stores_and_retrieves_item", func(t *testing.T) {
		item := helpers.TestItem(7, helpers.InWarehouse(3))
		require.NoError(t, cache.Set(ctx, "item:7", item))

		var got domain.InventoryItem
		require.NoError(t, cache.Get(ctx, "item:7", &got))
		assert.Equal(t, *item, got)
		assert.Equal(t, 5*time.Minute, mr.TTL("item:7"))
	})

	t.Run("stores_and_retrieves_warehouse", func(t *testing.T) {
		w := domain.Warehouse{ID: 3, Items: []int32{7, 8}}
		require.NoError(t, cache.Set(ctx, "warehouse:3", w))

		var got domain.Warehouse
		require.NoError(t, cache.Get(ctx, "warehouse:3", &got))
		assert.Equal(t, w, got)
	})

	t.Run("missing_key_is_cache_miss", func(t *testing.T) {
		var got domain.Warehouse
		err := cache.Get(ctx, "warehouse:404", &got)
		assert.ErrorIs(t, err, ports.ErrCacheMiss)
	})

	t.Run("corrupt_value_is_not_a_miss", func(t *testing.T) {
		require.NoError(t, mr.Set("item:9", "{not json"))

		var got domain.InventoryItem
		err := cache.Get(ctx, "item:9", &got)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ports.ErrCacheMiss)
	})
}

func TestCache_SetWithTTL(t *testing.T) {
	ctx := context.Background()
	cache, mr := setupCache(t)

	require.NoError(t, cache.SetWithTTL(ctx, "audit:last", map[string]int{"violations": 0}, time.Second))
	assert.True(t, mr.Exists("audit:last"))

	mr.FastForward(2 * time.Second)

	var got map[string]int
	assert.ErrorIs(t, cache.Get(ctx, "audit:last", &got), ports.ErrCacheMiss)
}

func TestCache_Bytes(t *testing.T) {
	ctx := context.Background()
	cache, _ := setupCache(t)

	body := []byte("id,items\n1,\"2, 3\"\n")
	require.NoError(t, cache.SetBytes(ctx, "export:warehouses:csv:100", body, time.Minute))

	got, err := cache.GetBytes(ctx, "export:warehouses:csv:100")
	require.NoError(t, err)
	assert.Equal(t, body, got)

	_, err = cache.GetBytes(ctx, "export:inventory:csv:100")
	assert.ErrorIs(t, err, ports.ErrCacheMiss)
}

func TestCache_Delete(t *testing.T) {
	ctx := context.Background()
	cache, mr := setupCache(t)

	require.NoError(t, cache.Set(ctx, "item:1", 1))
	require.NoError(t, cache.Set(ctx, "item:2", 2))

	require.NoError(t, cache.Delete(ctx, "item:1", "item:2", "item:3"))
	assert.False(t, mr.Exists("item:1"))
	assert.False(t, mr.Exists("item:2"))

	require.NoError(t, cache.Delete(ctx))
}

func TestCache_DeletePattern(t *testing.T) {
	ctx := context.Background()
	cache, mr := setupCache(t)

	for _, key := range []string{
		"export:inventory:csv:100",
		"export:warehouses:csv:100",
		"export:warehouses:csv:5",
		"item:1",
		"warehouse:1",
	} {
		require.NoError(t, cache.SetBytes(ctx, key, []byte("x"), time.Minute))
	}

	require.NoError(t, cache.DeletePattern(ctx, "export:*"))

	assert.ElementsMatch(t, []string{"item:1", "warehouse:1"}, mr.Keys())

	require.NoError(t, cache.DeletePattern(ctx, "export:*"))
}

func TestCache_Unavailable(t *testing.T) {
	ctx := context.Background()
	cache, mr := setupCache(t)
	mr.Close()

	assert.Error(t, cache.Ping(ctx))
	assert.Error(t, cache.Set(ctx, "item:1", 1))

	_, err := cache.GetBytes(ctx, "item:1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrCacheMiss)
}
