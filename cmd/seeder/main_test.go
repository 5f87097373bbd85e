package main

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/warehouse-be/internal/core/domain"
	"github.com/ammerola/warehouse-be/internal/core/services"
	"github.com/ammerola/warehouse-be/test/helpers"
)

func TestGenerate(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	items, warehouses := generate(r, 100, 50, 5, 1)

	require.Len(t, items, 50)
	require.Len(t, warehouses, 5)
	assert.Equal(t, int32(100), items[0].ID)
	assert.Equal(t, int32(104), warehouses[4].ID)

	for _, item := range items {
		require.NotNil(t, item.Warehouse)
		assert.GreaterOrEqual(t, *item.Warehouse, int32(100))
		assert.LessOrEqual(t, *item.Warehouse, int32(104))
		assert.True(t, item.Transport.IsValid())
		assert.Positive(t, item.Weight)
	}

	t.Run("no_warehouses_means_no_claims", func(t *testing.T) {
		items, _ := generate(rand.New(rand.NewPCG(1, 2)), 1, 10, 0, 1)
		for _, item := range items {
			assert.Nil(t, item.Warehouse)
		}
	})
}

func TestSeed(t *testing.T) {
	store := helpers.NewMemoryStore()
	svc := services.NewInventoryService(store.Items(), store.Warehouses(), store, helpers.TestLogger())
	ctx := context.Background()

	items, warehouses := generate(rand.New(rand.NewPCG(7, 7)), 1, 40, 4, 0.5)
	stats, err := seed(ctx, svc, items, warehouses, helpers.TestLogger())
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Warehouses)
	assert.Equal(t, 40, stats.Items)
	assert.Zero(t, stats.Skipped)

	report, err := svc.Audit(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Violations)

	listed := 0
	_, stored := store.Snapshot()
	for _, w := range stored {
		listed += len(w.Items)
	}
	assert.Equal(t, stats.Assigned, listed)

	t.Run("rerun_skips_existing", func(t *testing.T) {
		stats, err := seed(ctx, svc, items, warehouses, helpers.TestLogger())
		require.NoError(t, err)
		assert.Zero(t, stats.Items)
		assert.Equal(t, 44, stats.Skipped)
	})

	t.Run("store_failure_stops", func(t *testing.T) {
		store := helpers.NewMemoryStore()
		store.FailOn("warehouses.Insert", errors.New("disk full"))
		svc := services.NewInventoryService(store.Items(), store.Warehouses(), store, helpers.TestLogger())

		_, err := seed(ctx, svc, nil, []domain.Warehouse{{ID: 1}}, helpers.TestLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create warehouse 1")
	})
}
