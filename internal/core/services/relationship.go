// internal/core/services/relationship.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ammerola/warehouse-be/internal/core/domain"
)

// Assign moves an unassigned item into the warehouse
func (s *InventoryService) Assign(ctx context.Context, warehouseID, itemID int32) (*domain.Warehouse, error) {
	var warehouse *domain.Warehouse
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		warehouse, err = s.assign(ctx, warehouseID, itemID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, ItemCacheKey(itemID), WarehouseCacheKey(warehouseID))
	s.logger.InfoContext(ctx, "item assigned",
		slog.Int("warehouse_id", int(warehouseID)),
		slog.Int("item_id", int(itemID)))

	return warehouse, nil
}

// Unassign takes the item out of the warehouse that holds it
func (s *InventoryService) Unassign(ctx context.Context, warehouseID, itemID int32) (*domain.Warehouse, error) {
	var warehouse *domain.Warehouse
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		warehouse, err = s.unassign(ctx, warehouseID, itemID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, ItemCacheKey(itemID), WarehouseCacheKey(warehouseID))
	s.logger.InfoContext(ctx, "item unassigned",
		slog.Int("warehouse_id", int(warehouseID)),
		slog.Int("item_id", int(itemID)))

	return warehouse, nil
}

// assign must run inside a transaction: the item side is written before the
// warehouse is checked.
func (s *InventoryService) assign(ctx context.Context, warehouseID, itemID int32) (*domain.Warehouse, error) {
	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return nil, domain.WithNotFound(err, "Item id %d does not exist", itemID)
	}

	if item.Warehouse != nil {
		if *item.Warehouse == warehouseID {
			return nil, domain.Conflictf("Item id %d already belongs to warehouse id %d", itemID, warehouseID)
		}
		return nil, domain.Conflictf(
			"Cannot assign item id %d to warehouse id %d as it already belongs to warehouse id %d",
			itemID, warehouseID, *item.Warehouse)
	}

	item.Warehouse = domain.WarehouseRef(warehouseID)
	if _, err := s.items.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update item %d: %w", itemID, err)
	}

	warehouse, err := s.warehouses.Get(ctx, warehouseID)
	if err != nil {
		return nil, domain.WithNotFound(err, "Warehouse id %d does not exist", warehouseID)
	}

	if warehouse.Contains(itemID) {
		return nil, domain.Inconsistencyf(
			"INCONSISTENCY IN DATABASE: Item id %d claims it belongs to no warehouse, yet warehouse id %d indicates ownership",
			itemID, warehouseID)
	}

	warehouse.Add(itemID)
	updated, err := s.warehouses.Update(ctx, warehouse)
	if err != nil {
		return nil, fmt.Errorf("failed to update warehouse %d: %w", warehouseID, err)
	}
	return updated, nil
}

func (s *InventoryService) unassign(ctx context.Context, warehouseID, itemID int32) (*domain.Warehouse, error) {
	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return nil, domain.WithNotFound(err, "Item id %d does not exist", itemID)
	}

	if item.Warehouse == nil {
		return nil, domain.Conflictf("Item id %d does not belong to any warehouse", itemID)
	}
	if *item.Warehouse != warehouseID {
		return nil, domain.Conflictf(
			"Item id %d does not belong to warehouse id %d, belongs to warehouse id %d",
			itemID, warehouseID, *item.Warehouse)
	}

	item.Warehouse = nil
	if _, err := s.items.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update item %d: %w", itemID, err)
	}

	warehouse, err := s.warehouses.Get(ctx, warehouseID)
	if err != nil {
		return nil, domain.WithNotFound(err, "Warehouse id %d does not exist", warehouseID)
	}

	if !warehouse.Contains(itemID) {
		return nil, domain.Inconsistencyf(
			"INCONSISTENCY IN DATABASE: Item id %d claims it belongs to warehouse id %d, however warehouse id %d does not indicate ownership",
			itemID, warehouseID, warehouseID)
	}

	warehouse.Remove(itemID)
	updated, err := s.warehouses.Update(ctx, warehouse)
	if err != nil {
		return nil, fmt.Errorf("failed to update warehouse %d: %w", warehouseID, err)
	}
	return updated, nil
}
