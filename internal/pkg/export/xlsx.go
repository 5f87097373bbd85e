// internal/pkg/export/xlsx.go
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/warehouse-be/internal/core/domain"
)

const (
	ItemsSheet      = "Items"
	WarehousesSheet = "Warehouses"
)

func headerStyle() *xlsx.Style {
	style := xlsx.NewStyle()
	style.Font.Bold = true
	style.ApplyFont = true
	return style
}

func addHeader(sheet *xlsx.Sheet, style *xlsx.Style, columns ...string) {
	row := sheet.AddRow()
	for _, col := range columns {
		cell := row.AddCell()
		cell.SetString(col)
		cell.SetStyle(style)
	}
}

// WriteWorkbook renders one sheet per table into a single workbook
func WriteWorkbook(w io.Writer, items []domain.InventoryItem, warehouses []domain.Warehouse) error {
	wb := xlsx.NewFile()
	style := headerStyle()

	itemSheet, err := wb.AddSheet(ItemsSheet)
	if err != nil {
		return fmt.Errorf("failed to add items sheet: %w", err)
	}
	addHeader(itemSheet, style, itemHeader...)
	for _, item := range items {
		row := itemSheet.AddRow()
		row.AddCell().SetInt(int(item.ID))
		if item.Warehouse != nil {
			row.AddCell().SetInt(int(*item.Warehouse))
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetInt(int(item.Weight))
		row.AddCell().SetInt(int(item.Value))
		row.AddCell().SetString(string(item.Transport))
		row.AddCell().SetInt(int(item.Dimensions.Width))
		row.AddCell().SetInt(int(item.Dimensions.Height))
		row.AddCell().SetInt(int(item.Dimensions.Depth))
	}

	whSheet, err := wb.AddSheet(WarehousesSheet)
	if err != nil {
		return fmt.Errorf("failed to add warehouses sheet: %w", err)
	}
	addHeader(whSheet, style, "id", "items")
	for _, wh := range warehouses {
		ids := make([]string, len(wh.Items))
		for i, id := range wh.Items {
			ids[i] = strconv.FormatInt(int64(id), 10)
		}
		row := whSheet.AddRow()
		row.AddCell().SetInt(int(wh.ID))
		row.AddCell().SetString(strings.Join(ids, ", "))
	}

	if err := wb.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
