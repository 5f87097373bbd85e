// internal/workers/audit_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/warehouse-be/internal/core/ports"
	"github.com/ammerola/warehouse-be/internal/core/services"
	"github.com/ammerola/warehouse-be/internal/pkg/metrics"
)

// AuditProcessor runs relationship audits and keeps the latest report
type AuditProcessor struct {
	service   ports.InventoryService
	cache     ports.CacheRepository
	metrics   *metrics.Metrics
	reportTTL time.Duration
	logger    *slog.Logger
}

func NewAuditProcessor(service ports.InventoryService, cache ports.CacheRepository, m *metrics.Metrics, reportTTL time.Duration, logger *slog.Logger) *AuditProcessor {
	if reportTTL <= 0 {
		reportTTL = 7 * 24 * time.Hour
	}
	return &AuditProcessor{
		service:   service,
		cache:     cache,
		metrics:   m,
		reportTTL: reportTTL,
		logger:    logger.With(slog.String("processor", "audit")),
	}
}

// RunAudit handles TypeAuditRelationships tasks
func (p *AuditProcessor) RunAudit(ctx context.Context, t *asynq.Task) error {
	report, err := p.service.Audit(ctx)
	if err != nil {
		return fmt.Errorf("failed to audit relationships: %w", err)
	}

	if p.metrics != nil {
		p.metrics.RecordAudit(report)
	}

	for _, v := range report.Violations {
		p.logger.WarnContext(ctx, "relationship violation",
			slog.String("type", string(v.Type)),
			slog.Int("item_id", int(v.ItemID)),
			slog.Int("warehouse_id", int(v.WarehouseID)),
			slog.String("detail", v.Detail))
	}

	if err := p.cache.SetWithTTL(ctx, services.AuditReportKey, report, p.reportTTL); err != nil {
		return fmt.Errorf("failed to store audit report: %w", err)
	}
	return nil
}
