// internal/workers/export_processor.go
package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/warehouse-be/internal/core/domain"
	"github.com/ammerola/warehouse-be/internal/core/ports"
	"github.com/ammerola/warehouse-be/internal/core/services"
	"github.com/ammerola/warehouse-be/internal/pkg/export"
	"github.com/ammerola/warehouse-be/internal/pkg/metrics"
)

// DefaultExportPrefix is the object key prefix of every snapshot
const DefaultExportPrefix = "exports"

// ExportOptions configures where snapshots go and how long links live
type ExportOptions struct {
	Prefix     string
	PresignTTL time.Duration
	JobTTL     time.Duration
}

// ExportProcessor renders inventory snapshots and uploads them to object
// storage, tracking progress in the cache.
type ExportProcessor struct {
	service ports.InventoryService
	storage ports.ObjectStorage
	cache   ports.CacheRepository
	metrics *metrics.Metrics
	opts    ExportOptions
	logger  *slog.Logger
	now     func() time.Time
}

func NewExportProcessor(
	service ports.InventoryService,
	storage ports.ObjectStorage,
	cache ports.CacheRepository,
	m *metrics.Metrics,
	opts ExportOptions,
	logger *slog.Logger,
) *ExportProcessor {
	if opts.Prefix == "" {
		opts.Prefix = DefaultExportPrefix
	}
	if opts.PresignTTL <= 0 {
		opts.PresignTTL = 15 * time.Minute
	}
	if opts.JobTTL <= 0 {
		opts.JobTTL = 24 * time.Hour
	}
	return &ExportProcessor{
		service: service,
		storage: storage,
		cache:   cache,
		metrics: m,
		opts:    opts,
		logger:  logger.With(slog.String("processor", "export")),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ProcessExport handles TypeExportSnapshot tasks
func (p *ExportProcessor) ProcessExport(ctx context.Context, t *asynq.Task) error {
	var req domain.ExportRequest
	if err := json.Unmarshal(t.Payload(), &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	if req.JobID == "" || !req.Format.IsValid() {
		return fmt.Errorf("invalid export request %+v: %w", req, asynq.SkipRetry)
	}

	start := time.Now()
	p.logger.InfoContext(ctx, "processing export",
		slog.String("job_id", req.JobID),
		slog.String("format", string(req.Format)),
		slog.Int64("limit", req.Limit))

	job := p.loadJob(ctx, req)
	job.Status = domain.ExportStatusRunning
	job.Error = ""
	p.saveJob(ctx, job)

	objects, err := p.export(ctx, req)
	if err != nil {
		job.Status = domain.ExportStatusFailed
		job.Error = err.Error()
		p.saveJob(ctx, job)
		p.record(domain.ExportStatusFailed)
		return fmt.Errorf("export %s failed: %w", req.JobID, err)
	}

	completed := p.now()
	job.Status = domain.ExportStatusCompleted
	job.CompletedAt = &completed
	job.Objects = objects
	p.saveJob(ctx, job)
	p.record(domain.ExportStatusCompleted)

	p.logger.InfoContext(ctx, "export completed",
		slog.String("job_id", req.JobID),
		slog.Int("objects", len(objects)),
		slog.String("duration", time.Since(start).String()))
	return nil
}

func (p *ExportProcessor) export(ctx context.Context, req domain.ExportRequest) ([]domain.ExportObject, error) {
	items, err := p.service.ListItems(ctx, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	warehouses, err := p.service.ListWarehouses(ctx, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list warehouses: %w", err)
	}

	files, err := export.Render(req.Format, items, warehouses)
	if err != nil {
		return nil, err
	}

	dir := p.ObjectDir(req.JobID)
	objects := make([]domain.ExportObject, 0, len(files))
	for _, f := range files {
		key := path.Join(dir, f.Name)
		if _, err := p.storage.Upload(ctx, key, bytes.NewReader(f.Data), f.ContentType); err != nil {
			return nil, fmt.Errorf("failed to upload %s: %w", f.Name, err)
		}

		url, err := p.storage.PresignGet(ctx, key, p.opts.PresignTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to presign %s: %w", f.Name, err)
		}

		objects = append(objects, domain.ExportObject{
			Name: f.Name,
			Key:  key,
			URL:  url,
			Size: int64(len(f.Data)),
		})
	}
	return objects, nil
}

// ObjectDir returns the key prefix used for the objects of a job, grouped
// by the day it ran.
func (p *ExportProcessor) ObjectDir(jobID string) string {
	return path.Join(p.opts.Prefix, p.now().Format("2006/01/02"), jobID)
}

func (p *ExportProcessor) loadJob(ctx context.Context, req domain.ExportRequest) *domain.ExportJob {
	var job domain.ExportJob
	err := p.cache.Get(ctx, services.ExportJobKey(req.JobID), &job)
	if err == nil {
		return &job
	}
	if !errors.Is(err, ports.ErrCacheMiss) {
		p.logger.WarnContext(ctx, "failed to load export job",
			slog.String("job_id", req.JobID),
			slog.String("error", err.Error()))
	}
	return &domain.ExportJob{
		ID:        req.JobID,
		Format:    req.Format,
		Limit:     req.Limit,
		CreatedAt: p.now(),
	}
}

// saveJob never fails the task; a stale status is better than a lost
// snapshot.
func (p *ExportProcessor) saveJob(ctx context.Context, job *domain.ExportJob) {
	if err := p.cache.SetWithTTL(ctx, services.ExportJobKey(job.ID), job, p.opts.JobTTL); err != nil {
		p.logger.WarnContext(ctx, "failed to save export job",
			slog.String("job_id", job.ID),
			slog.String("status", string(job.Status)),
			slog.String("error", err.Error()))
	}
}

func (p *ExportProcessor) record(status domain.ExportStatus) {
	if p.metrics != nil {
		p.metrics.RecordExport(status)
	}
}
