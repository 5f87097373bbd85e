// internal/pkg/export/render.go
package export

import (
	"bytes"
	"fmt"

	"github.com/ammerola/warehouse-be/internal/core/domain"
)

// File is one rendered export artifact
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Render produces the files for a snapshot: two CSVs, or one workbook
func Render(format domain.ExportFormat, items []domain.InventoryItem, warehouses []domain.Warehouse) ([]File, error) {
	switch format {
	case domain.ExportFormatCSV:
		var itemBuf, whBuf bytes.Buffer
		if err := WriteItemsCSV(&itemBuf, items); err != nil {
			return nil, err
		}
		if err := WriteWarehousesCSV(&whBuf, warehouses); err != nil {
			return nil, err
		}
		return []File{
			{Name: "items.csv", ContentType: ContentTypeCSV, Data: itemBuf.Bytes()},
			{Name: "warehouses.csv", ContentType: ContentTypeCSV, Data: whBuf.Bytes()},
		}, nil
	case domain.ExportFormatXLSX:
		var buf bytes.Buffer
		if err := WriteWorkbook(&buf, items, warehouses); err != nil {
			return nil, err
		}
		return []File{{Name: "inventory.xlsx", ContentType: ContentTypeXLSX, Data: buf.Bytes()}}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}
