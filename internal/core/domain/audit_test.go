package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ammerola/warehouse-be/internal/core/domain"
)

func TestFindViolations(t *testing.T) {
	tests := []struct {
		name       string
		items      []domain.InventoryItem
		warehouses []domain.Warehouse
		want       []domain.ViolationType
	}{
		{
			name: "consistent_state",
			items: []domain.InventoryItem{
				{ID: 10, Warehouse: domain.WarehouseRef(1)},
				{ID: 11},
			},
			warehouses: []domain.Warehouse{{ID: 1, Items: []int32{10}}},
			want:       nil,
		},
		{
			name:       "item_claims_missing_warehouse",
			items:      []domain.InventoryItem{{ID: 10, Warehouse: domain.WarehouseRef(9)}},
			warehouses: nil,
			want:       []domain.ViolationType{domain.ViolationDanglingWarehouse},
		},
		{
			name:       "item_not_listed_by_owner",
			items:      []domain.InventoryItem{{ID: 10, Warehouse: domain.WarehouseRef(1)}},
			warehouses: []domain.Warehouse{{ID: 1}},
			want:       []domain.ViolationType{domain.ViolationUnlisted},
		},
		{
			name:       "warehouse_lists_missing_item",
			warehouses: []domain.Warehouse{{ID: 1, Items: []int32{44}}},
			want:       []domain.ViolationType{domain.ViolationMissingItem},
		},
		{
			name:       "warehouse_lists_unassigned_item",
			items:      []domain.InventoryItem{{ID: 10}},
			warehouses: []domain.Warehouse{{ID: 1, Items: []int32{10}}},
			want:       []domain.ViolationType{domain.ViolationForeignItem},
		},
		{
			name:  "warehouse_lists_item_owned_elsewhere",
			items: []domain.InventoryItem{{ID: 10, Warehouse: domain.WarehouseRef(2)}},
			warehouses: []domain.Warehouse{
				{ID: 1, Items: []int32{10}},
				{ID: 2, Items: []int32{10}},
			},
			want: []domain.ViolationType{domain.ViolationForeignItem},
		},
		{
			name:       "duplicate_entry",
			items:      []domain.InventoryItem{{ID: 10, Warehouse: domain.WarehouseRef(1)}},
			warehouses: []domain.Warehouse{{ID: 1, Items: []int32{10, 10}}},
			want:       []domain.ViolationType{domain.ViolationDuplicateEntry},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := domain.FindViolations(tt.items, tt.warehouses)

			var got []domain.ViolationType
			for _, v := range violations {
				got = append(got, v.Type)
				assert.NotEmpty(t, v.Detail)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
