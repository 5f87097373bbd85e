// internal/pkg/export/xlsx_reader.go
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/warehouse-be/internal/core/domain"
)

// ReadWorkbook parses a workbook in the layout WriteWorkbook produces
func ReadWorkbook(r io.Reader) ([]domain.InventoryItem, []domain.Warehouse, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	wb, err := xlsx.OpenBinary(b)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	itemSheet, ok := wb.Sheet[ItemsSheet]
	if !ok {
		return nil, nil, fmt.Errorf("workbook has no %s sheet", ItemsSheet)
	}
	whSheet, ok := wb.Sheet[WarehousesSheet]
	if !ok {
		return nil, nil, fmt.Errorf("workbook has no %s sheet", WarehousesSheet)
	}

	var items []domain.InventoryItem
	err = forEachRecord(itemSheet, func(line int, get func(int) string) error {
		item, err := parseItemRow(get)
		if err != nil {
			return fmt.Errorf("%s row %d: %w", ItemsSheet, line, err)
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	var warehouses []domain.Warehouse
	err = forEachRecord(whSheet, func(line int, get func(int) string) error {
		id, err := parseInt32(get(0))
		if err != nil {
			return fmt.Errorf("%s row %d: id: %w", WarehousesSheet, line, err)
		}
		w := domain.Warehouse{ID: id, Items: []int32{}}
		if list := get(1); list != "" {
			for _, field := range strings.Split(list, ",") {
				itemID, err := parseInt32(strings.TrimSpace(field))
				if err != nil {
					return fmt.Errorf("%s row %d: items: %w", WarehousesSheet, line, err)
				}
				w.Add(itemID)
			}
		}
		warehouses = append(warehouses, w)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return items, warehouses, nil
}

// forEachRecord calls fn for every non-empty row after the header. line is
// 1-based like the spreadsheet row numbers.
func forEachRecord(sheet *xlsx.Sheet, fn func(line int, get func(int) string) error) error {
	line := 0
	return sheet.ForEachRow(func(r *xlsx.Row) error {
		line++
		if line == 1 {
			return nil
		}

		get := func(i int) string {
			c := r.GetCell(i)
			if c == nil {
				return ""
			}
			if s, err := c.FormattedValue(); err == nil {
				return strings.TrimSpace(s)
			}
			return strings.TrimSpace(c.String())
		}
		if get(0) == "" {
			return nil
		}
		return fn(line, get)
	})
}

func parseItemRow(get func(int) string) (domain.InventoryItem, error) {
	var item domain.InventoryItem
	var err error

	if item.ID, err = parseInt32(get(0)); err != nil {
		return item, fmt.Errorf("id: %w", err)
	}
	if s := get(1); s != "" {
		w, err := parseInt32(s)
		if err != nil {
			return item, fmt.Errorf("warehouse: %w", err)
		}
		item.Warehouse = domain.WarehouseRef(w)
	}
	if item.Transport, err = domain.ParseTransport(get(4)); err != nil {
		return item, err
	}

	fields := []struct {
		name string
		col  int
		dst  *int16
	}{
		{"weight", 2, &item.Weight},
		{"value", 3, &item.Value},
		{"width", 5, &item.Dimensions.Width},
		{"height", 6, &item.Dimensions.Height},
		{"depth", 7, &item.Dimensions.Depth},
	}
	for _, f := range fields {
		v, err := strconv.ParseInt(get(f.col), 10, 16)
		if err != nil {
			return item, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = int16(v)
	}
	return item, nil
}

func parseInt32(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}
