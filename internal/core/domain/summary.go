// internal/core/domain/summary.go
package domain

import "github.com/shopspring/decimal"

// WarehouseSummary aggregates the items currently stored in a warehouse
type WarehouseSummary struct {
	WarehouseID    int32             `json:"warehouse_id"`
	ItemCount      int               `json:"item_count"`
	TotalWeight    int64             `json:"total_weight"`
	TotalValue     int64             `json:"total_value"`
	TotalVolume    int64             `json:"total_volume"`
	ValuePerKg     decimal.Decimal   `json:"value_per_kg"`
	ValuePerCubicM decimal.Decimal   `json:"value_per_cubic_m"`
	ByTransport    map[Transport]int `json:"by_transport"`
	MissingItems   []int32           `json:"missing_items,omitempty"`
}

// Summarize builds a summary from the warehouse and the items it lists.
// Listed ids with no matching item are reported in MissingItems.
func Summarize(w *Warehouse, items []InventoryItem) *WarehouseSummary {
	s := &WarehouseSummary{
		WarehouseID: w.ID,
		ValuePerKg:  decimal.Zero,
		ByTransport: make(map[Transport]int, len(Transports)),
	}
	for _, t := range Transports {
		s.ByTransport[t] = 0
	}

	found := make(map[int32]bool, len(items))
	for _, item := range items {
		found[item.ID] = true
		s.ItemCount++
		s.TotalWeight += int64(item.Weight)
		s.TotalValue += int64(item.Value)
		s.TotalVolume += item.Dimensions.Volume()
		s.ByTransport[item.Transport]++
	}
	for _, id := range w.Items {
		if !found[id] {
			s.MissingItems = append(s.MissingItems, id)
		}
	}

	value := decimal.NewFromInt(s.TotalValue)
	s.ValuePerKg = ratio(value, s.TotalWeight)
	s.ValuePerCubicM = ratio(value, s.TotalVolume)
	return s
}

func ratio(num decimal.Decimal, den int64) decimal.Decimal {
	if den == 0 {
		return decimal.Zero
	}
	return num.DivRound(decimal.NewFromInt(den), 2)
}
