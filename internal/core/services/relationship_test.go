package services_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/warehouse-be/internal/core/domain"
	"github.com/ammerola/warehouse-be/internal/core/services"
	"github.com/ammerola/warehouse-be/test/helpers"
)

func newMemoryService(t *testing.T) (*services.InventoryService, *helpers.MemoryStore) {
	t.Helper()
	store := helpers.NewMemoryStore()
	svc := services.NewInventoryService(store.Items(), store.Warehouses(), store, helpers.TestLogger())
	return svc, store
}

func requireConsistent(t *testing.T, store *helpers.MemoryStore) {
	t.Helper()
	items, warehouses := store.Snapshot()
	require.Empty(t, domain.FindViolations(items, warehouses))
}

func requireKind(t *testing.T, err error, kind domain.Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, domain.KindOf(err), "unexpected kind for %q", err.Error())
	if msg != "" {
		assert.Equal(t, msg, err.Error())
	}
}

func TestInventoryService_Assign(t *testing.T) {
	tests := []struct {
		name      string
		seed      func(*helpers.MemoryStore)
		warehouse int32
		item      int32
		wantKind  domain.Kind
		wantMsg   string
		wantItems []int32
	}{
		{
			name: "assigns_free_item",
			seed: func(s *helpers.MemoryStore) {
				s.PutWarehouse(domain.Warehouse{ID: 1, Items: []int32{}})
				s.PutItem(*helpers.TestItem(10))
			},
			warehouse: 1,
			item:      10,
			wantItems: []int32{10},
		},
		{
			name: "appends_to_end_of_list",
			seed: func(s *helpers.MemoryStore) {
				s.PutWarehouse(domain.Warehouse{ID: 1, Items: []int32{3}})
				s.PutItem(*helpers.TestItem(3, helpers.InWarehouse(1)))
				s.PutItem(*helpers.TestItem(10))
			},
			warehouse: 1,
			item:      10,
			wantItems: []int32{3, 10},
		},
		{
			name:      "missing_item",
			seed:      func(s *helpers.MemoryStore) { s.PutWarehouse(domain.Warehouse{ID: 1}) },
			warehouse: 1,
			item:      99,
			wantKind:  domain.KindNotFound,
			wantMsg:   "Item id 99 does not exist",
		},
		{
			name: "already_in_same_warehouse",
			seed: func(s *helpers.MemoryStore) {
				s.PutWarehouse(domain.Warehouse{ID: 1, Items: []int32{10}})
				s.PutItem(*helpers.TestItem(10, helpers.InWarehouse(1)))
			},
			warehouse: 1,
			item:      10,
			wantKind:  domain.KindConflict,
			wantMsg:   "Item id 10 already belongs to warehouse id 1",
		},
		{
			name: "belongs_to_other_warehouse",
			seed: func(s *helpers.MemoryStore) {
				s.PutWarehouse(domain.Warehouse{ID: 1})
				s.PutWarehouse(domain.Warehouse{ID: 2, Items: []int32{10}})
				s.PutItem(*helpers.TestItem(10, helpers.InWarehouse(2)))
			},
			warehouse: 1,
			item:      10,
			wantKind:  domain.KindConflict,
			wantMsg:   "Cannot assign item id 10 to warehouse id 1 as it already belongs to warehouse id 2",
		},
		{
			name:      "missing_warehouse",
			seed:      func(s *helpers.MemoryStore) { s.PutItem(*helpers.TestItem(10)) },
			warehouse: 7,
			item:      10,
			wantKind:  domain.KindNotFound,
			wantMsg:   "Warehouse id 7 does not exist",
		},
		{
			name: "warehouse_already_lists_free_item",
			seed: func(s *helpers.MemoryStore) {
				s.PutWarehouse(domain.Warehouse{ID: 1, Items: []int32{10}})
				s.PutItem(*helpers.TestItem(10))
			},
			warehouse: 1,
			item:      10,
			wantKind:  domain.KindInconsistency,
			wantMsg:   "INCONSISTENCY IN DATABASE: Item id 10 claims it belongs to no warehouse, yet warehouse id 1 indicates ownership",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newMemoryService(t)
			tt.seed(store)
			itemsBefore, warehousesBefore := store.Snapshot()

			w, err := svc.Assign(context.Background(), tt.warehouse, tt.item)

			if tt.wantMsg != "" {
				requireKind(t, err, tt.wantKind, tt.wantMsg)
				itemsAfter, warehousesAfter := store.Snapshot()
				assert.Equal(t, itemsBefore, itemsAfter, "failed assign must not change items")
				assert.Equal(t, warehousesBefore, warehousesAfter, "failed assign must not change warehouses")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantItems, w.Items)

			item, err := svc.GetItem(context.Background(), tt.item)
			require.NoError(t, err)
			assert.True(t, item.BelongsTo(tt.warehouse))
			requireConsistent(t, store)
		})
	}
}

func TestInventoryService_Unassign(t *testing.T) {
	tests := []struct {
		name      string
		seed      func(*helpers.MemoryStore)
		warehouse int32
		item      int32
		wantMsg   string
		wantKind  domain.Kind
		wantItems []int32
	}{
		{
			name: "removes_item_preserving_order",
			seed: func(s *helpers.MemoryStore) {
				s.PutWarehouse(domain.Warehouse{ID: 1, Items: []int32{3, 10, 4}})
				s.PutItem(*helpers.TestItem(3, helpers.InWarehouse(1)))
				s.PutItem(*helpers.TestItem(10, helpers.InWarehouse(1)))
				s.PutItem(*helpers.TestItem(4, helpers.InWarehouse(1)))
			},
			warehouse: 1,
			item:      10,
			wantItems: []int32{3, 4},
		},
		{
			name:      "missing_item",
			seed:      func(s *helpers.MemoryStore) { s.PutWarehouse(domain.Warehouse{ID: 1}) },
			warehouse: 1,
			item:      10,
			wantKind:  domain.KindNotFound,
			wantMsg:   "Item id 10 does not exist",
		},
		{
			name: "item_in_no_warehouse",
			seed: func(s *helpers.MemoryStore) {
				s.PutWarehouse(domain.Warehouse{ID: 1})
				s.PutItem(*helpers.TestItem(10))
			},
			warehouse: 1,
			item:      10,
			wantKind:  domain.KindConflict,
			wantMsg:   "Item id 10 does not belong to any warehouse",
		},
		{
			name: "item_in_other_warehouse",
			seed: func(s *helpers.MemoryStore) {
				s.PutWarehouse(domain.Warehouse{ID: 1})
				s.PutWarehouse(domain.Warehouse{ID: 2, Items: []int32{10}})
				s.PutItem(*helpers.TestItem(10, helpers.InWarehouse(2)))
			},
			warehouse: 1,
			item:      10,
			wantKind:  domain.KindConflict,
			wantMsg:   "Item id 10 does not belong to warehouse id 1, belongs to warehouse id 2",
		},
		{
			name:      "claimed_warehouse_missing",
			seed:      func(s *helpers.MemoryStore) { s.PutItem(*helpers.TestItem(10, helpers.InWarehouse(5))) },
			warehouse: 5,
			item:      10,
			wantKind:  domain.KindNotFound,
			wantMsg:   "Warehouse id 5 does not exist",
		},
		{
			name: "warehouse_does_not_list_item",
			seed: func(s *helpers.MemoryStore) {
				s.PutWarehouse(domain.Warehouse{ID: 1})
				s.PutItem(*helpers.TestItem(10, helpers.InWarehouse(1)))
			},
			warehouse: 1,
			item:      10,
			wantKind:  domain.KindInconsistency,
			wantMsg:   "INCONSISTENCY IN DATABASE: Item id 10 claims it belongs to warehouse id 1, however warehouse id 1 does not indicate ownership",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newMemoryService(t)
			tt.seed(store)
			itemsBefore, warehousesBefore := store.Snapshot()

			w, err := svc.Unassign(context.Background(), tt.warehouse, tt.item)

			if tt.wantMsg != "" {
				requireKind(t, err, tt.wantKind, tt.wantMsg)
				itemsAfter, warehousesAfter := store.Snapshot()
				assert.Equal(t, itemsBefore, itemsAfter)
				assert.Equal(t, warehousesBefore, warehousesAfter)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantItems, w.Items)

			item, err := svc.GetItem(context.Background(), tt.item)
			require.NoError(t, err)
			assert.Nil(t, item.Warehouse)
			requireConsistent(t, store)
		})
	}
}

func TestInventoryService_AssignUnassignRoundTrip(t *testing.T) {
	svc, store := newMemoryService(t)
	ctx := context.Background()
	store.PutWarehouse(domain.Warehouse{ID: 1, Items: []int32{2, 3}})
	store.PutItem(*helpers.TestItem(2, helpers.InWarehouse(1)))
	store.PutItem(*helpers.TestItem(3, helpers.InWarehouse(1)))
	store.PutItem(*helpers.TestItem(10))
	itemsBefore, warehousesBefore := store.Snapshot()

	_, err := svc.Assign(ctx, 1, 10)
	require.NoError(t, err)
	_, err = svc.Unassign(ctx, 1, 10)
	require.NoError(t, err)

	itemsAfter, warehousesAfter := store.Snapshot()
	assert.Equal(t, itemsBefore, itemsAfter)
	assert.Equal(t, warehousesBefore, warehousesAfter)
}

func TestInventoryService_AssignRollsBackOnStoreFailure(t *testing.T) {
	svc, store := newMemoryService(t)
	store.PutWarehouse(domain.Warehouse{ID: 1})
	store.PutItem(*helpers.TestItem(10))
	store.FailOn("warehouses.Update", errors.New("connection reset"))

	_, err := svc.Assign(context.Background(), 1, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	item, err := svc.GetItem(context.Background(), 10)
	require.NoError(t, err)
	assert.Nil(t, item.Warehouse, "item side must be rolled back")
	requireConsistent(t, store)
}

func TestInventoryService_CreateWarehouse(t *testing.T) {
	t.Run("assigns_all_listed_items_in_order", func(t *testing.T) {
		svc, store := newMemoryService(t)
		store.PutItem(*helpers.TestItem(5))
		store.PutItem(*helpers.TestItem(2))

		w, err := svc.CreateWarehouse(context.Background(), &domain.Warehouse{ID: 1, Items: []int32{5, 2}})
		require.NoError(t, err)
		assert.Equal(t, []int32{5, 2}, w.Items)

		stored, err := svc.GetWarehouse(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, []int32{5, 2}, stored.Items)
		requireConsistent(t, store)
	})

	t.Run("empty_warehouse", func(t *testing.T) {
		svc, store := newMemoryService(t)

		w, err := svc.CreateWarehouse(context.Background(), &domain.Warehouse{ID: 3})
		require.NoError(t, err)
		assert.Empty(t, w.Items)
		requireConsistent(t, store)
	})

	tests := []struct {
		name     string
		seed     func(*helpers.MemoryStore)
		input    domain.Warehouse
		wantKind domain.Kind
		wantMsg  string
	}{
		{
			name:     "duplicate_warehouse_id",
			seed:     func(s *helpers.MemoryStore) { s.PutWarehouse(domain.Warehouse{ID: 1}) },
			input:    domain.Warehouse{ID: 1},
			wantKind: domain.KindConflict,
			wantMsg:  "Warehouse id 1 already exists",
		},
		{
			name:     "listed_item_missing",
			seed:     func(s *helpers.MemoryStore) {},
			input:    domain.Warehouse{ID: 1, Items: []int32{4}},
			wantKind: domain.KindNotFound,
			wantMsg:  "Cannot create warehouse, item id 4 does not exist",
		},
		{
			name: "first_item_assigned_elsewhere",
			seed: func(s *helpers.MemoryStore) {
				s.PutWarehouse(domain.Warehouse{ID: 9, Items: []int32{4}})
				s.PutItem(*helpers.TestItem(4, helpers.InWarehouse(9)))
				s.PutItem(*helpers.TestItem(5))
			},
			input:    domain.Warehouse{ID: 1, Items: []int32{4, 5}},
			wantKind: domain.KindConflict,
			wantMsg:  "Cannot create warehouse, item id 4 already belongs to warehouse id 9",
		},
		{
			name: "second_item_assigned_elsewhere",
			seed: func(s *helpers.MemoryStore) {
				s.PutWarehouse(domain.Warehouse{ID: 9, Items: []int32{5}})
				s.PutItem(*helpers.TestItem(4))
				s.PutItem(*helpers.TestItem(5, helpers.InWarehouse(9)))
			},
			input:    domain.Warehouse{ID: 1, Items: []int32{4, 5}},
			wantKind: domain.KindConflict,
			wantMsg:  "Cannot create warehouse, item id 5 already belongs to warehouse id 9",
		},
		{
			name:     "item_listed_twice",
			seed:     func(s *helpers.MemoryStore) { s.PutItem(*helpers.TestItem(4)) },
			input:    domain.Warehouse{ID: 1, Items: []int32{4, 4}},
			wantKind: domain.KindConflict,
			wantMsg:  "Cannot create warehouse, item id 4 is listed more than once",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newMemoryService(t)
			tt.seed(store)
			itemsBefore, warehousesBefore := store.Snapshot()

			_, err := svc.CreateWarehouse(context.Background(), &tt.input)
			requireKind(t, err, tt.wantKind, tt.wantMsg)

			itemsAfter, warehousesAfter := store.Snapshot()
			assert.Equal(t, itemsBefore, itemsAfter, "no item may be modified")
			assert.Equal(t, warehousesBefore, warehousesAfter, "no warehouse may be created")
		})
	}

	t.Run("failure_during_assignment_leaves_no_warehouse", func(t *testing.T) {
		svc, store := newMemoryService(t)
		store.PutItem(*helpers.TestItem(4))
		store.FailOn("items.Update", errors.New("disk full"))

		_, err := svc.CreateWarehouse(context.Background(), &domain.Warehouse{ID: 1, Items: []int32{4}})
		require.Error(t, err)

		_, err = svc.GetWarehouse(context.Background(), 1)
		requireKind(t, err, domain.KindNotFound, "Warehouse id 1 does not exist")
		requireConsistent(t, store)
	})
}

func TestInventoryService_DeleteWarehouse(t *testing.T) {
	t.Run("releases_items_and_returns_snapshot", func(t *testing.T) {
		svc, store := newMemoryService(t)
		store.PutWarehouse(domain.Warehouse{ID: 1, Items: []int32{2, 3}})
		store.PutItem(*helpers.TestItem(2, helpers.InWarehouse(1)))
		store.PutItem(*helpers.TestItem(3, helpers.InWarehouse(1)))

		w, err := svc.DeleteWarehouse(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, []int32{2, 3}, w.Items)

		for _, id := range []int32{2, 3} {
			item, err := svc.GetItem(context.Background(), id)
			require.NoError(t, err)
			assert.Nil(t, item.Warehouse)
		}
		_, err = svc.GetWarehouse(context.Background(), 1)
		requireKind(t, err, domain.KindNotFound, "")
		requireConsistent(t, store)
	})

	t.Run("missing_warehouse", func(t *testing.T) {
		svc, _ := newMemoryService(t)
		_, err := svc.DeleteWarehouse(context.Background(), 1)
		requireKind(t, err, domain.KindNotFound, "Warehouse id 1 does not exist")
	})

	t.Run("cascade_failure_aborts_delete", func(t *testing.T) {
		svc, store := newMemoryService(t)
		store.PutWarehouse(domain.Warehouse{ID: 1, Items: []int32{2, 3}})
		store.PutItem(*helpers.TestItem(2, helpers.InWarehouse(1)))
		store.PutItem(*helpers.TestItem(3, helpers.InWarehouse(8)))
		itemsBefore, warehousesBefore := store.Snapshot()

		_, err := svc.DeleteWarehouse(context.Background(), 1)
		requireKind(t, err, domain.KindConflict,
			"Item id 3 does not belong to warehouse id 1, belongs to warehouse id 8")

		itemsAfter, warehousesAfter := store.Snapshot()
		assert.Equal(t, itemsBefore, itemsAfter)
		assert.Equal(t, warehousesBefore, warehousesAfter)
	})
}

func TestInventoryService_DeleteItem(t *testing.T) {
	t.Run("unassigns_then_deletes", func(t *testing.T) {
		svc, store := newMemoryService(t)
		store.PutWarehouse(domain.Warehouse{ID: 1, Items: []int32{10, 11}})
		store.PutItem(*helpers.TestItem(10, helpers.InWarehouse(1)))
		store.PutItem(*helpers.TestItem(11, helpers.InWarehouse(1)))

		deleted, err := svc.DeleteItem(context.Background(), 10)
		require.NoError(t, err)
		assert.True(t, deleted.BelongsTo(1), "snapshot keeps the pre-delete warehouse")

		w, err := svc.GetWarehouse(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, []int32{11}, w.Items)

		_, err = svc.GetItem(context.Background(), 10)
		requireKind(t, err, domain.KindNotFound, "Item id 10 does not exist")
		requireConsistent(t, store)
	})

	t.Run("unassigned_item", func(t *testing.T) {
		svc, store := newMemoryService(t)
		store.PutItem(*helpers.TestItem(10))

		deleted, err := svc.DeleteItem(context.Background(), 10)
		require.NoError(t, err)
		assert.Nil(t, deleted.Warehouse)
	})

	t.Run("missing_item", func(t *testing.T) {
		svc, _ := newMemoryService(t)
		_, err := svc.DeleteItem(context.Background(), 10)
		requireKind(t, err, domain.KindNotFound, "Item id 10 does not exist")
	})

	t.Run("cascade_inconsistency_aborts_delete", func(t *testing.T) {
		svc, store := newMemoryService(t)
		store.PutWarehouse(domain.Warehouse{ID: 1})
		store.PutItem(*helpers.TestItem(10, helpers.InWarehouse(1)))

		_, err := svc.DeleteItem(context.Background(), 10)
		requireKind(t, err, domain.KindInconsistency, "")

		item, err := svc.GetItem(context.Background(), 10)
		require.NoError(t, err)
		assert.True(t, item.BelongsTo(1))
	})
}

func TestInventoryService_CreateItem(t *testing.T) {
	t.Run("unassigned", func(t *testing.T) {
		svc, store := newMemoryService(t)

		created, err := svc.CreateItem(context.Background(), helpers.TestItem(10))
		require.NoError(t, err)
		assert.Equal(t, int32(10), created.ID)
		requireConsistent(t, store)
	})

	t.Run("registers_item_in_named_warehouse", func(t *testing.T) {
		svc, store := newMemoryService(t)
		store.PutWarehouse(domain.Warehouse{ID: 1, Items: []int32{}})

		_, err := svc.CreateItem(context.Background(), helpers.TestItem(10, helpers.InWarehouse(1)))
		require.NoError(t, err)

		w, err := svc.GetWarehouse(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, []int32{10}, w.Items)
		requireConsistent(t, store)
	})

	t.Run("named_warehouse_missing", func(t *testing.T) {
		svc, store := newMemoryService(t)

		_, err := svc.CreateItem(context.Background(), helpers.TestItem(10, helpers.InWarehouse(4)))
		requireKind(t, err, domain.KindNotFound, "Cannot create item with warehouse id 4, because it does not exist")

		items, _ := store.Snapshot()
		assert.Empty(t, items)
	})

	t.Run("duplicate_id", func(t *testing.T) {
		svc, store := newMemoryService(t)
		store.PutItem(*helpers.TestItem(10))

		_, err := svc.CreateItem(context.Background(), helpers.TestItem(10))
		requireKind(t, err, domain.KindConflict, "Item id 10 already exists")
	})

	t.Run("duplicate_id_in_named_warehouse", func(t *testing.T) {
		svc, store := newMemoryService(t)
		store.PutWarehouse(domain.Warehouse{ID: 1, Items: []int32{}})

		_, err := svc.CreateItem(context.Background(), helpers.TestItem(10, helpers.InWarehouse(1)))
		require.NoError(t, err)

		_, err = svc.CreateItem(context.Background(), helpers.TestItem(10, helpers.InWarehouse(1)))
		requireKind(t, err, domain.KindConflict, "Item id 10 already exists")

		w, err := svc.GetWarehouse(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, []int32{10}, w.Items)
		requireConsistent(t, store)
	})

	t.Run("missing_transport", func(t *testing.T) {
		svc, _ := newMemoryService(t)
		item := helpers.TestItem(10)
		item.Transport = ""

		_, err := svc.CreateItem(context.Background(), item)
		requireKind(t, err, domain.KindConflict, "")
	})
}

func TestInventoryService_UpdateItem(t *testing.T) {
	t.Run("updates_plain_fields", func(t *testing.T) {
		svc, store := newMemoryService(t)
		store.PutWarehouse(domain.Warehouse{ID: 1, Items: []int32{10}})
		store.PutItem(*helpers.TestItem(10, helpers.InWarehouse(1)))

		changed := helpers.TestItem(10, helpers.InWarehouse(1), func(i *domain.InventoryItem) {
			i.Weight = 99
			i.Transport = domain.TransportLand
		})
		updated, err := svc.UpdateItem(context.Background(), changed)
		require.NoError(t, err)
		assert.Equal(t, int16(99), updated.Weight)

		stored, err := svc.GetItem(context.Background(), 10)
		require.NoError(t, err)
		assert.Equal(t, domain.TransportLand, stored.Transport)
		requireConsistent(t, store)
	})

	t.Run("missing_item", func(t *testing.T) {
		svc, _ := newMemoryService(t)
		_, err := svc.UpdateItem(context.Background(), helpers.TestItem(10))
		requireKind(t, err, domain.KindNotFound,
			"Cannot update item 10 as it doesn't exist. Try creating the item instead")
	})

	tests := []struct {
		name     string
		stored   *int32
		incoming *int32
	}{
		{name: "assign_through_update", stored: nil, incoming: domain.WarehouseRef(1)},
		{name: "unassign_through_update", stored: domain.WarehouseRef(1), incoming: nil},
		{name: "move_through_update", stored: domain.WarehouseRef(1), incoming: domain.WarehouseRef(2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newMemoryService(t)
			store.PutItem(domain.InventoryItem{ID: 10, Warehouse: tt.stored, Transport: domain.TransportAir})

			_, err := svc.UpdateItem(context.Background(),
				&domain.InventoryItem{ID: 10, Warehouse: tt.incoming, Transport: domain.TransportAir})
			requireKind(t, err, domain.KindConflict,
				"Updating an item's warehouse is not supported, use the warehouse item add/remove endpoint")
		})
	}
}

func TestInventoryService_UpdateWarehouse(t *testing.T) {
	svc, store := newMemoryService(t)
	store.PutWarehouse(domain.Warehouse{ID: 1})

	_, err := svc.UpdateWarehouse(context.Background(), &domain.Warehouse{ID: 1, Items: []int32{2}})
	requireKind(t, err, domain.KindNotImplemented,
		"Updating warehouses is not supported, to add and remove items use the respective endpoints")
}

func TestInventoryService_ListItemsForWarehouse(t *testing.T) {
	svc, store := newMemoryService(t)
	store.PutWarehouse(domain.Warehouse{ID: 1, Items: []int32{2, 3, 4}})
	for _, id := range []int32{2, 3, 4} {
		store.PutItem(*helpers.TestItem(id, helpers.InWarehouse(1)))
	}
	store.PutItem(*helpers.TestItem(5))

	items, err := svc.ListItemsForWarehouse(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = svc.ListItemsForWarehouse(context.Background(), 1, 100)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	_, err = svc.ListItemsForWarehouse(context.Background(), 9, 100)
	requireKind(t, err, domain.KindNotFound, "Cannot get items for warehouse id 9, as it does not exist")
}

func TestInventoryService_Scenario(t *testing.T) {
	svc, store := newMemoryService(t)
	ctx := context.Background()

	_, err := svc.CreateWarehouse(ctx, &domain.Warehouse{ID: 1, Items: []int32{}})
	require.NoError(t, err)
	_, err = svc.CreateItem(ctx, &domain.InventoryItem{
		ID: 10, Weight: 5, Value: 20, Transport: domain.TransportAir,
		Dimensions: domain.Dimensions{Width: 1, Height: 2, Depth: 3},
	})
	require.NoError(t, err)

	w, err := svc.Assign(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []int32{10}, w.Items)

	item, err := svc.GetItem(ctx, 10)
	require.NoError(t, err)
	assert.True(t, item.BelongsTo(1))

	w, err = svc.Unassign(ctx, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, w.Items)

	item, err = svc.GetItem(ctx, 10)
	require.NoError(t, err)
	assert.Nil(t, item.Warehouse)
	requireConsistent(t, store)
}

func TestInventoryService_Audit(t *testing.T) {
	svc, store := newMemoryService(t)
	store.PutWarehouse(domain.Warehouse{ID: 1, Items: []int32{10, 11}})
	store.PutItem(*helpers.TestItem(10, helpers.InWarehouse(1)))

	report, err := svc.Audit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.ItemsScanned)
	assert.Equal(t, 1, report.WarehousesSeen)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, domain.ViolationMissingItem, report.Violations[0].Type)
	assert.False(t, report.CompletedAt.Before(report.StartedAt))
}

// snapshotStore records whether the audit asked for a snapshot read
type snapshotStore struct {
	*helpers.MemoryStore
	snapshots int
}

func (s *snapshotStore) WithinSnapshot(ctx context.Context, fn func(ctx context.Context) error) error {
	s.snapshots++
	return s.WithinTransaction(ctx, fn)
}

func TestInventoryService_AuditUsesSnapshot(t *testing.T) {
	store := &snapshotStore{MemoryStore: helpers.NewMemoryStore()}
	store.PutWarehouse(domain.Warehouse{ID: 1, Items: []int32{10}})
	store.PutItem(*helpers.TestItem(10, helpers.InWarehouse(1)))
	svc := services.NewInventoryService(store.Items(), store.Warehouses(), store, helpers.TestLogger())

	report, err := svc.Audit(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Consistent())
	assert.Equal(t, 1, store.snapshots)

	_, err = svc.Assign(context.Background(), 1, 10)
	requireKind(t, err, domain.KindConflict, "")
	assert.Equal(t, 1, store.snapshots, "writes must not run in the read-only snapshot")
}

func TestInventoryService_CreateItemLogsWarehouseID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	store := helpers.NewMemoryStore()
	store.PutWarehouse(domain.Warehouse{ID: 1, Items: []int32{}})
	svc := services.NewInventoryService(store.Items(), store.Warehouses(), store, logger)

	_, err := svc.CreateItem(context.Background(), helpers.TestItem(10, helpers.InWarehouse(1)))
	require.NoError(t, err)
	_, err = svc.CreateItem(context.Background(), helpers.TestItem(11))
	require.NoError(t, err)

	var entries []map[string]interface{}
	dec := json.NewDecoder(&buf)
	for dec.More() {
		var e map[string]interface{}
		require.NoError(t, dec.Decode(&e))
		if e["msg"] == "item created" {
			entries = append(entries, e)
		}
	}
	require.Len(t, entries, 2)
	assert.Equal(t, float64(1), entries[0]["warehouse_id"])
	assert.NotContains(t, entries[1], "warehouse_id")
}

func TestInventoryService_WarehouseSummary(t *testing.T) {
	svc, store := newMemoryService(t)
	store.PutWarehouse(domain.Warehouse{ID: 1, Items: []int32{10}})
	store.PutItem(*helpers.TestItem(10, helpers.InWarehouse(1)))

	summary, err := svc.WarehouseSummary(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ItemCount)

	_, err = svc.WarehouseSummary(context.Background(), 2)
	requireKind(t, err, domain.KindNotFound, "Warehouse id 2 does not exist")
}
