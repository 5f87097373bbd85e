// internal/core/domain/audit.go
package domain

import (
	"fmt"
	"sort"
	"time"
)

// ViolationType names the way a relationship is broken
type ViolationType string

const (
	ViolationDanglingWarehouse ViolationType = "dangling_warehouse" // item claims a warehouse that does not exist
	ViolationUnlisted          ViolationType = "unlisted_item"      // item claims a warehouse that does not list it
	ViolationMissingItem       ViolationType = "missing_item"       // warehouse lists an item that does not exist
	ViolationForeignItem       ViolationType = "foreign_item"       // warehouse lists an item that claims another owner or none
	ViolationDuplicateEntry    ViolationType = "duplicate_entry"    // warehouse lists the same item twice
)

// Violation is one broken item/warehouse relationship
type Violation struct {
	Type        ViolationType `json:"type"`
	ItemID      int32         `json:"item_id"`
	WarehouseID int32         `json:"warehouse_id"`
	Detail      string        `json:"detail"`
}

// AuditReport is the result of scanning both tables for broken relationships
type AuditReport struct {
	StartedAt      time.Time   `json:"started_at"`
	CompletedAt    time.Time   `json:"completed_at"`
	ItemsScanned   int         `json:"items_scanned"`
	WarehousesSeen int         `json:"warehouses_scanned"`
	Violations     []Violation `json:"violations"`
}

// Consistent reports whether no violation was found
func (r *AuditReport) Consistent() bool {
	return len(r.Violations) == 0
}

// FindViolations checks every relationship between the given items and
// warehouses. Results are ordered by warehouse then item id.
func FindViolations(items []InventoryItem, warehouses []Warehouse) []Violation {
	byItem := make(map[int32]*InventoryItem, len(items))
	for i := range items {
		byItem[items[i].ID] = &items[i]
	}
	byWarehouse := make(map[int32]*Warehouse, len(warehouses))
	for i := range warehouses {
		byWarehouse[warehouses[i].ID] = &warehouses[i]
	}

	violations := []Violation{}
	for _, item := range items {
		if item.Warehouse == nil {
			continue
		}
		w, ok := byWarehouse[*item.Warehouse]
		switch {
		case !ok:
			violations = append(violations, Violation{
				Type: ViolationDanglingWarehouse, ItemID: item.ID, WarehouseID: *item.Warehouse,
				Detail: fmt.Sprintf("Item id %d claims warehouse id %d, which does not exist", item.ID, *item.Warehouse),
			})
		case !w.Contains(item.ID):
			violations = append(violations, Violation{
				Type: ViolationUnlisted, ItemID: item.ID, WarehouseID: w.ID,
				Detail: fmt.Sprintf("Item id %d claims warehouse id %d, which does not list it", item.ID, w.ID),
			})
		}
	}

	for _, w := range warehouses {
		seen := make(map[int32]bool, len(w.Items))
		for _, id := range w.Items {
			if seen[id] {
				violations = append(violations, Violation{
					Type: ViolationDuplicateEntry, ItemID: id, WarehouseID: w.ID,
					Detail: fmt.Sprintf("Warehouse id %d lists item id %d more than once", w.ID, id),
				})
				continue
			}
			seen[id] = true

			item, ok := byItem[id]
			switch {
			case !ok:
				violations = append(violations, Violation{
					Type: ViolationMissingItem, ItemID: id, WarehouseID: w.ID,
					Detail: fmt.Sprintf("Warehouse id %d lists item id %d, which does not exist", w.ID, id),
				})
			case item.Warehouse == nil:
				violations = append(violations, Violation{
					Type: ViolationForeignItem, ItemID: id, WarehouseID: w.ID,
					Detail: fmt.Sprintf("Warehouse id %d lists item id %d, which belongs to no warehouse", w.ID, id),
				})
			case *item.Warehouse != w.ID:
				violations = append(violations, Violation{
					Type: ViolationForeignItem, ItemID: id, WarehouseID: w.ID,
					Detail: fmt.Sprintf("Warehouse id %d lists item id %d, which belongs to warehouse id %d", w.ID, id, *item.Warehouse),
				})
			}
		}
	}

	sort.SliceStable(violations, func(a, b int) bool {
		if violations[a].WarehouseID != violations[b].WarehouseID {
			return violations[a].WarehouseID < violations[b].WarehouseID
		}
		return violations[a].ItemID < violations[b].ItemID
	})
	return violations
}
