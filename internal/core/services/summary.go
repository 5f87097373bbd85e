// internal/core/services/summary.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/ammerola/warehouse-be/internal/core/domain"
	"github.com/ammerola/warehouse-be/internal/core/ports"
)

// auditScanLimit is high enough to cover every row of either table
const auditScanLimit = math.MaxInt32

// WarehouseSummary aggregates weight, value and volume of a warehouse's items
func (s *InventoryService) WarehouseSummary(ctx context.Context, id int32) (*domain.WarehouseSummary, error) {
	warehouse, err := s.warehouses.Get(ctx, id)
	if err != nil {
		return nil, domain.WithNotFound(err, "Warehouse id %d does not exist", id)
	}

	items, err := s.items.ListByIDs(ctx, int64(len(warehouse.Items)), warehouse.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to list items for warehouse %d: %w", id, err)
	}

	return domain.Summarize(warehouse, items), nil
}

// Audit scans both tables inside one transaction and reports every broken
// item/warehouse relationship. Stores that offer a read-only snapshot are
// scanned through it.
func (s *InventoryService) Audit(ctx context.Context) (*domain.AuditReport, error) {
	report := &domain.AuditReport{StartedAt: time.Now().UTC()}

	within := s.tx.WithinTransaction
	if snap, ok := s.tx.(ports.SnapshotReader); ok {
		within = snap.WithinSnapshot
	}

	err := within(ctx, func(ctx context.Context) error {
		items, err := s.items.List(ctx, auditScanLimit)
		if err != nil {
			return fmt.Errorf("failed to scan items: %w", err)
		}
		warehouses, err := s.warehouses.List(ctx, auditScanLimit)
		if err != nil {
			return fmt.Errorf("failed to scan warehouses: %w", err)
		}

		report.ItemsScanned = len(items)
		report.WarehousesSeen = len(warehouses)
		report.Violations = domain.FindViolations(items, warehouses)
		return nil
	})
	if err != nil {
		return nil, err
	}
	report.CompletedAt = time.Now().UTC()

	level := slog.LevelInfo
	if !report.Consistent() {
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, "relationship audit completed",
		slog.Int("items_scanned", report.ItemsScanned),
		slog.Int("warehouses_scanned", report.WarehousesSeen),
		slog.Int("violations", len(report.Violations)))

	return report, nil
}
