// internal/pkg/export/csv.go
package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ammerola/warehouse-be/internal/core/domain"
)

const (
	ContentTypeCSV  = "text/csv"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var itemHeader = []string{"id", "warehouse", "weight", "value", "transport", "width", "height", "depth"}

// WriteItemsCSV renders items with a header row. The warehouse field is
// empty for unassigned items.
func WriteItemsCSV(w io.Writer, items []domain.InventoryItem) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(itemHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	record := make([]string, len(itemHeader))
	for _, item := range items {
		record[0] = strconv.FormatInt(int64(item.ID), 10)
		record[1] = ""
		if item.Warehouse != nil {
			record[1] = strconv.FormatInt(int64(*item.Warehouse), 10)
		}
		record[2] = strconv.Itoa(int(item.Weight))
		record[3] = strconv.Itoa(int(item.Value))
		record[4] = string(item.Transport)
		record[5] = strconv.Itoa(int(item.Dimensions.Width))
		record[6] = strconv.Itoa(int(item.Dimensions.Height))
		record[7] = strconv.Itoa(int(item.Dimensions.Depth))
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write item %d: %w", item.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// WriteWarehousesCSV renders warehouses as id plus a quoted, comma separated
// item list: `1,"2, 3"`. encoding/csv only quotes when needed, so the rows
// are formatted directly. Ids are integers and never need escaping.
func WriteWarehousesCSV(w io.Writer, warehouses []domain.Warehouse) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("id,items\n"); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	var ids strings.Builder
	for _, wh := range warehouses {
		ids.Reset()
		for i, id := range wh.Items {
			if i > 0 {
				ids.WriteString(", ")
			}
			ids.WriteString(strconv.FormatInt(int64(id), 10))
		}
		if _, err := fmt.Fprintf(bw, "%d,\"%s\"\n", wh.ID, ids.String()); err != nil {
			return fmt.Errorf("failed to write warehouse %d: %w", wh.ID, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
