// internal/core/domain/warehouse.go
package domain

import (
	"encoding/json"
	"slices"
)

// Warehouse holds an ordered list of the ids of the items it stores
type Warehouse struct {
	ID    int32   `json:"id"`
	Items []int32 `json:"items"`
}

// Contains reports whether the item id is listed
func (w *Warehouse) Contains(itemID int32) bool {
	return slices.Contains(w.Items, itemID)
}

// Add appends the item id to the end of the list
func (w *Warehouse) Add(itemID int32) {
	w.Items = append(w.Items, itemID)
}

// Remove drops every occurrence of the item id, keeping the order of the rest
func (w *Warehouse) Remove(itemID int32) {
	out := make([]int32, 0, len(w.Items))
	for _, id := range w.Items {
		if id != itemID {
			out = append(out, id)
		}
	}
	w.Items = out
}

// Clone returns a copy that does not share the items slice
func (w *Warehouse) Clone() *Warehouse {
	items := make([]int32, len(w.Items))
	copy(items, w.Items)
	return &Warehouse{ID: w.ID, Items: items}
}

// MarshalJSON renders an empty item list as [] rather than null
func (w Warehouse) MarshalJSON() ([]byte, error) {
	type plain Warehouse
	if w.Items == nil {
		w.Items = []int32{}
	}
	return json.Marshal(plain(w))
}
