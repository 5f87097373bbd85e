// internal/core/services/inventory.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ammerola/warehouse-be/internal/core/domain"
	"github.com/ammerola/warehouse-be/internal/core/ports"
)

// DefaultCacheTTL bounds how long a record read can stay stale after a
// concurrent mutation.
const DefaultCacheTTL = 30 * time.Second

// InventoryService keeps items and warehouses consistent with each other.
// Every operation touching more than one record runs in a single store
// transaction.
type InventoryService struct {
	items      ports.ItemRepository
	warehouses ports.WarehouseRepository
	tx         ports.Transactor
	cache      ports.CacheRepository
	cacheTTL   time.Duration
	logger     *slog.Logger
}

// Statically assert that *InventoryService implements the InventoryService interface.
var _ ports.InventoryService = (*InventoryService)(nil)

// Option configures optional collaborators
type Option func(*InventoryService)

// WithCache enables read-through caching of single records
func WithCache(cache ports.CacheRepository, ttl time.Duration) Option {
	return func(s *InventoryService) {
		s.cache = cache
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// NewInventoryService creates a new inventory service
func NewInventoryService(
	items ports.ItemRepository,
	warehouses ports.WarehouseRepository,
	tx ports.Transactor,
	logger *slog.Logger,
	opts ...Option,
) *InventoryService {
	s := &InventoryService{
		items:      items,
		warehouses: warehouses,
		tx:         tx,
		cacheTTL:   DefaultCacheTTL,
		logger:     logger.With(slog.String("service", "inventory")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateItem inserts the item. When it names a warehouse, that warehouse
// must exist and the item is added to its list as well.
func (s *InventoryService) CreateItem(ctx context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error) {
	if err := item.Validate(); err != nil {
		return nil, domain.Conflictf("Invalid item id %d: %s", item.ID, err.Error())
	}

	var created *domain.InventoryItem
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.items.Get(ctx, item.ID); err == nil {
			return domain.Conflictf("Item id %d already exists", item.ID)
		} else if domain.KindOf(err) != domain.KindNotFound {
			return fmt.Errorf("failed to check item %d: %w", item.ID, err)
		}

		var warehouse *domain.Warehouse
		if item.Warehouse != nil {
			w, err := s.warehouses.Get(ctx, *item.Warehouse)
			if err != nil {
				return domain.WithNotFound(err,
					"Cannot create item with warehouse id %d, because it does not exist", *item.Warehouse)
			}
			if w.Contains(item.ID) {
				return domain.Inconsistencyf(
					"INCONSISTENCY IN DATABASE: Item id %d does not exist, yet warehouse id %d indicates ownership",
					item.ID, w.ID)
			}
			warehouse = w
		}

		var err error
		created, err = s.items.Insert(ctx, item)
		if err != nil {
			return fmt.Errorf("failed to insert item %d: %w", item.ID, err)
		}

		if warehouse != nil {
			warehouse.Add(created.ID)
			if _, err := s.warehouses.Update(ctx, warehouse); err != nil {
				return fmt.Errorf("failed to register item %d in warehouse %d: %w", created.ID, warehouse.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	keys := []string{ItemCacheKey(created.ID)}
	if created.Warehouse != nil {
		keys = append(keys, WarehouseCacheKey(*created.Warehouse))
	}
	s.invalidate(ctx, keys...)

	attrs := []any{slog.Int("item_id", int(created.ID))}
	if created.Warehouse != nil {
		attrs = append(attrs, slog.Int("warehouse_id", int(*created.Warehouse)))
	}
	s.logger.InfoContext(ctx, "item created", attrs...)

	return created, nil
}

// GetItem retrieves an item by id
func (s *InventoryService) GetItem(ctx context.Context, id int32) (*domain.InventoryItem, error) {
	var cached domain.InventoryItem
	if s.cacheGet(ctx, ItemCacheKey(id), &cached) {
		return &cached, nil
	}

	item, err := s.items.Get(ctx, id)
	if err != nil {
		return nil, domain.WithNotFound(err, "Item id %d does not exist", id)
	}

	s.cacheSet(ctx, ItemCacheKey(id), item)
	return item, nil
}

// ListItems returns up to limit items ordered by id
func (s *InventoryService) ListItems(ctx context.Context, limit int64) ([]domain.InventoryItem, error) {
	items, err := s.items.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// UpdateItem persists every field except the warehouse, which may only
// change through Assign and Unassign.
func (s *InventoryService) UpdateItem(ctx context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error) {
	if err := item.Validate(); err != nil {
		return nil, domain.Conflictf("Invalid item id %d: %s", item.ID, err.Error())
	}

	var updated *domain.InventoryItem
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.items.Get(ctx, item.ID)
		if err != nil {
			return domain.WithNotFound(err,
				"Cannot update item %d as it doesn't exist. Try creating the item instead", item.ID)
		}

		if !domain.SameWarehouse(existing.Warehouse, item.Warehouse) {
			return domain.Conflictf(
				"Updating an item's warehouse is not supported, use the warehouse item add/remove endpoint")
		}

		updated, err = s.items.Update(ctx, item)
		if err != nil {
			return fmt.Errorf("failed to update item %d: %w", item.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, ItemCacheKey(updated.ID))
	s.logger.InfoContext(ctx, "item updated", slog.Int("item_id", int(updated.ID)))

	return updated, nil
}

// DeleteItem removes the item from its warehouse, if any, then deletes it.
// The returned item is the state read before the removal.
func (s *InventoryService) DeleteItem(ctx context.Context, id int32) (*domain.InventoryItem, error) {
	var snapshot *domain.InventoryItem
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		item, err := s.items.Get(ctx, id)
		if err != nil {
			return domain.WithNotFound(err, "Item id %d does not exist", id)
		}

		if item.Warehouse != nil {
			if _, err := s.unassign(ctx, *item.Warehouse, id); err != nil {
				return err
			}
		}

		if _, err := s.items.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete item %d: %w", id, err)
		}
		snapshot = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	keys := []string{ItemCacheKey(id)}
	if snapshot.Warehouse != nil {
		keys = append(keys, WarehouseCacheKey(*snapshot.Warehouse))
	}
	s.invalidate(ctx, keys...)

	s.logger.InfoContext(ctx, "item deleted", slog.Int("item_id", int(id)))
	return snapshot, nil
}

func (s *InventoryService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	if err := s.cache.Get(ctx, key, dest); err != nil {
		if !errors.Is(err, ports.ErrCacheMiss) {
			s.logger.WarnContext(ctx, "cache read failed",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
		return false
	}
	return true
}

func (s *InventoryService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetWithTTL(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.WarnContext(ctx, "cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}

// invalidate drops the touched records and every cached export. Failures
// leave entries to expire on their own.
func (s *InventoryService) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.WarnContext(ctx, "cache invalidation failed",
			slog.Any("keys", keys),
			slog.String("error", err.Error()))
	}
	if err := s.cache.DeletePattern(ctx, ExportCachePattern); err != nil {
		s.logger.WarnContext(ctx, "export cache invalidation failed",
			slog.String("error", err.Error()))
	}
}
