// internal/core/services/warehouses.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ammerola/warehouse-be/internal/core/domain"
)

// CreateWarehouse inserts a warehouse and assigns every listed item to it.
// All items are checked before anything is written.
func (s *InventoryService) CreateWarehouse(ctx context.Context, warehouse *domain.Warehouse) (*domain.Warehouse, error) {
	requested := warehouse.Clone()

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.warehouses.Get(ctx, requested.ID); err == nil {
			return domain.Conflictf("Warehouse id %d already exists", requested.ID)
		} else if domain.KindOf(err) != domain.KindNotFound {
			return fmt.Errorf("failed to check warehouse %d: %w", requested.ID, err)
		}

		seen := make(map[int32]bool, len(requested.Items))
		for _, itemID := range requested.Items {
			if seen[itemID] {
				return domain.Conflictf("Cannot create warehouse, item id %d is listed more than once", itemID)
			}
			seen[itemID] = true

			item, err := s.items.Get(ctx, itemID)
			if err != nil {
				return domain.WithNotFound(err, "Cannot create warehouse, item id %d does not exist", itemID)
			}
			if item.Warehouse != nil {
				return domain.Conflictf(
					"Cannot create warehouse, item id %d already belongs to warehouse id %d",
					itemID, *item.Warehouse)
			}
		}

		if _, err := s.warehouses.Insert(ctx, &domain.Warehouse{ID: requested.ID, Items: []int32{}}); err != nil {
			return fmt.Errorf("failed to insert warehouse %d: %w", requested.ID, err)
		}

		for _, itemID := range requested.Items {
			if _, err := s.assign(ctx, requested.ID, itemID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	keys := []string{WarehouseCacheKey(requested.ID)}
	for _, itemID := range requested.Items {
		keys = append(keys, ItemCacheKey(itemID))
	}
	s.invalidate(ctx, keys...)

	s.logger.InfoContext(ctx, "warehouse created",
		slog.Int("warehouse_id", int(requested.ID)),
		slog.Int("item_count", len(requested.Items)))

	return requested, nil
}

// GetWarehouse retrieves a warehouse by id
func (s *InventoryService) GetWarehouse(ctx context.Context, id int32) (*domain.Warehouse, error) {
	var cached domain.Warehouse
	if s.cacheGet(ctx, WarehouseCacheKey(id), &cached) {
		return &cached, nil
	}

	warehouse, err := s.warehouses.Get(ctx, id)
	if err != nil {
		return nil, domain.WithNotFound(err, "Warehouse id %d does not exist", id)
	}

	s.cacheSet(ctx, WarehouseCacheKey(id), warehouse)
	return warehouse, nil
}

// ListWarehouses returns up to limit warehouses ordered by id
func (s *InventoryService) ListWarehouses(ctx context.Context, limit int64) ([]domain.Warehouse, error) {
	warehouses, err := s.warehouses.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list warehouses: %w", err)
	}
	return warehouses, nil
}

// UpdateWarehouse is not supported; membership changes go through Assign
// and Unassign.
func (s *InventoryService) UpdateWarehouse(_ context.Context, _ *domain.Warehouse) (*domain.Warehouse, error) {
	return nil, domain.NotImplementedf(
		"Updating warehouses is not supported, to add and remove items use the respective endpoints")
}

// DeleteWarehouse unassigns every item it holds and deletes it. The returned
// warehouse still lists the items it held.
func (s *InventoryService) DeleteWarehouse(ctx context.Context, id int32) (*domain.Warehouse, error) {
	var snapshot *domain.Warehouse
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		warehouse, err := s.warehouses.Get(ctx, id)
		if err != nil {
			return domain.WithNotFound(err, "Warehouse id %d does not exist", id)
		}
		snapshot = warehouse.Clone()

		for _, itemID := range snapshot.Items {
			if _, err := s.unassign(ctx, id, itemID); err != nil {
				return err
			}
		}

		if _, err := s.warehouses.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete warehouse %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	keys := []string{WarehouseCacheKey(id)}
	for _, itemID := range snapshot.Items {
		keys = append(keys, ItemCacheKey(itemID))
	}
	s.invalidate(ctx, keys...)

	s.logger.InfoContext(ctx, "warehouse deleted",
		slog.Int("warehouse_id", int(id)),
		slog.Int("released_items", len(snapshot.Items)))

	return snapshot, nil
}

// ListItemsForWarehouse returns up to limit of the items the warehouse lists
func (s *InventoryService) ListItemsForWarehouse(ctx context.Context, id int32, limit int64) ([]domain.InventoryItem, error) {
	warehouse, err := s.warehouses.Get(ctx, id)
	if err != nil {
		return nil, domain.WithNotFound(err, "Cannot get items for warehouse id %d, as it does not exist", id)
	}

	items, err := s.items.ListByIDs(ctx, limit, warehouse.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to list items for warehouse %d: %w", id, err)
	}
	return items, nil
}
