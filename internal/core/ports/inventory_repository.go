// internal/core/ports/inventory_repository.go
package ports

import (
	"context"

	"github.com/ammerola/warehouse-be/internal/core/domain"
)

// ItemRepository is the record store for the inventory table.
// Get, Update and Delete return a domain.KindNotFound error for unknown ids;
// Insert returns a domain.KindConflict error for a duplicate id.
type ItemRepository interface {
	Get(ctx context.Context, id int32) (*domain.InventoryItem, error)
	List(ctx context.Context, limit int64) ([]domain.InventoryItem, error)
	ListByIDs(ctx context.Context, limit int64, ids []int32) ([]domain.InventoryItem, error)
	Insert(ctx context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error)
	Update(ctx context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error)
	Delete(ctx context.Context, id int32) (*domain.InventoryItem, error)
}

// WarehouseRepository is the record store for the warehouses table.
// Update rewrites the whole items list.
type WarehouseRepository interface {
	Get(ctx context.Context, id int32) (*domain.Warehouse, error)
	List(ctx context.Context, limit int64) ([]domain.Warehouse, error)
	ListByIDs(ctx context.Context, limit int64, ids []int32) ([]domain.Warehouse, error)
	Insert(ctx context.Context, warehouse *domain.Warehouse) (*domain.Warehouse, error)
	Update(ctx context.Context, warehouse *domain.Warehouse) (*domain.Warehouse, error)
	Delete(ctx context.Context, id int32) (*domain.Warehouse, error)
}

// Transactor runs fn inside a store transaction. Repository calls made with
// the context passed to fn join the transaction. A nested call reuses the
// outer transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// SnapshotReader is implemented by stores that can run fn against one
// consistent read-only snapshot of both tables.
type SnapshotReader interface {
	WithinSnapshot(ctx context.Context, fn func(ctx context.Context) error) error
}
