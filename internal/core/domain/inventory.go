// internal/core/domain/inventory.go
package domain

import (
	"encoding/json"
	"fmt"
)

// Transport is the way an item is shipped between warehouses
type Transport string

// Transport constants
const (
	TransportAir  Transport = "Air"
	TransportSea  Transport = "Sea"
	TransportLand Transport = "Land"
)

// Transports lists every supported transport in declaration order
var Transports = []Transport{TransportAir, TransportSea, TransportLand}

// IsValid reports whether t is a known transport
func (t Transport) IsValid() bool {
	switch t {
	case TransportAir, TransportSea, TransportLand:
		return true
	}
	return false
}

// ParseTransport converts the textual form back into a Transport
func ParseTransport(s string) (Transport, error) {
	t := Transport(s)
	if !t.IsValid() {
		return "", fmt.Errorf("unknown transport %q", s)
	}
	return t, nil
}

func (t *Transport) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("transport must be a string: %w", err)
	}
	parsed, err := ParseTransport(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Dimensions are the bounding box of an item, in meters
type Dimensions struct {
	Width  int16 `json:"width"`
	Height int16 `json:"height"`
	Depth  int16 `json:"depth"`
}

// Volume returns the bounding box volume in cubic meters
func (d Dimensions) Volume() int64 {
	return int64(d.Width) * int64(d.Height) * int64(d.Depth)
}

// InventoryItem represents a single stored item. Warehouse is nil while the
// item is not held by any warehouse.
type InventoryItem struct {
	ID         int32      `json:"id"`
	Warehouse  *int32     `json:"warehouse"`
	Weight     int16      `json:"weight"`
	Value      int16      `json:"value"`
	Transport  Transport  `json:"transport"`
	Dimensions Dimensions `json:"dimensions"`
}

// Validate checks the fields the store cannot enforce on its own
func (i *InventoryItem) Validate() error {
	if !i.Transport.IsValid() {
		return fmt.Errorf("transport must be one of Air, Sea, Land")
	}
	return nil
}

// BelongsTo reports whether the item claims warehouse id w
func (i *InventoryItem) BelongsTo(w int32) bool {
	return i.Warehouse != nil && *i.Warehouse == w
}

// SameWarehouse compares the warehouse claims of two item versions
func SameWarehouse(a, b *int32) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// WarehouseRef returns a pointer suitable for InventoryItem.Warehouse
func WarehouseRef(id int32) *int32 {
	return &id
}
