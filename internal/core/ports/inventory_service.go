// internal/core/ports/inventory_service.go
package ports

import (
	"context"

	"github.com/ammerola/warehouse-be/internal/core/domain"
)

// InventoryService is the application port used by the HTTP handlers and
// the background workers.
type InventoryService interface {
	CreateItem(ctx context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error)
	GetItem(ctx context.Context, id int32) (*domain.InventoryItem, error)
	ListItems(ctx context.Context, limit int64) ([]domain.InventoryItem, error)
	UpdateItem(ctx context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error)
	DeleteItem(ctx context.Context, id int32) (*domain.InventoryItem, error)

	CreateWarehouse(ctx context.Context, warehouse *domain.Warehouse) (*domain.Warehouse, error)
	GetWarehouse(ctx context.Context, id int32) (*domain.Warehouse, error)
	ListWarehouses(ctx context.Context, limit int64) ([]domain.Warehouse, error)
	UpdateWarehouse(ctx context.Context, warehouse *domain.Warehouse) (*domain.Warehouse, error)
	DeleteWarehouse(ctx context.Context, id int32) (*domain.Warehouse, error)
	ListItemsForWarehouse(ctx context.Context, id int32, limit int64) ([]domain.InventoryItem, error)

	// Assign and Unassign move an item in or out of a warehouse, keeping
	// both sides of the relationship in step.
	Assign(ctx context.Context, warehouseID, itemID int32) (*domain.Warehouse, error)
	Unassign(ctx context.Context, warehouseID, itemID int32) (*domain.Warehouse, error)

	WarehouseSummary(ctx context.Context, id int32) (*domain.WarehouseSummary, error)
	Audit(ctx context.Context) (*domain.AuditReport, error)
}
