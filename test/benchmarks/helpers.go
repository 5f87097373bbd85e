// test/benchmarks/helpers.go
package benchmarks

import (
	"context"
	"fmt"

	"github.com/ammerola/warehouse-be/internal/core/domain"
	"github.com/ammerola/warehouse-be/internal/core/services"
	"github.com/ammerola/warehouse-be/test/helpers"
)

// seededService returns a memory-backed service holding numWarehouses
// warehouses that share numItems assigned items round-robin.
func seededService(numItems, numWarehouses int) (*services.InventoryService, *helpers.MemoryStore) {
	store := helpers.NewMemoryStore()
	warehouses := make([]domain.Warehouse, numWarehouses)
	for i := range warehouses {
		warehouses[i].ID = int32(i + 1)
	}

	for _, item := range helpers.TestItems(1, numItems) {
		w := &warehouses[int(item.ID)%numWarehouses]
		item.Warehouse = domain.WarehouseRef(w.ID)
		w.Add(item.ID)
		store.PutItem(item)
	}
	for _, w := range warehouses {
		store.PutWarehouse(w)
	}

	svc := services.NewInventoryService(store.Items(), store.Warehouses(), store, helpers.TestLogger())
	return svc, store
}

// exportFixture loads the rows an export would render
func exportFixture(numItems, numWarehouses int) ([]domain.InventoryItem, []domain.Warehouse) {
	_, store := seededService(numItems, numWarehouses)
	return store.Snapshot()
}

func mustCreateWarehouse(svc *services.InventoryService, id int32) {
	if _, err := svc.CreateWarehouse(context.Background(), &domain.Warehouse{ID: id}); err != nil {
		panic(fmt.Sprintf("failed to create warehouse %d: %v", id, err))
	}
}
