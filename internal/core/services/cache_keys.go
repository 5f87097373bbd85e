// internal/core/services/cache_keys.go
package services

import "fmt"

// Cache key layout shared by the service and the export handlers
const (
	itemKeyPrefix      = "item"
	warehouseKeyPrefix = "warehouse"
	exportKeyPrefix    = "export"

	ExportCachePattern = exportKeyPrefix + ":*"
	AuditReportKey     = "audit:last"
)

func ItemCacheKey(id int32) string {
	return fmt.Sprintf("%s:%d", itemKeyPrefix, id)
}

func WarehouseCacheKey(id int32) string {
	return fmt.Sprintf("%s:%d", warehouseKeyPrefix, id)
}

// ExportCacheKey identifies a rendered export of one table at a given limit
func ExportCacheKey(table, format string, limit int64) string {
	return fmt.Sprintf("%s:%s:%s:%d", exportKeyPrefix, table, format, limit)
}

// ExportJobKey holds the status of an export snapshot job. It lives outside
// the export: prefix so mutations do not wipe job records.
func ExportJobKey(jobID string) string {
	return "export_job:" + jobID
}
