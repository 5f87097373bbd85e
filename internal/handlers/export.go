// internal/handlers/export.go
package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/warehouse-be/internal/core/domain"
	"github.com/ammerola/warehouse-be/internal/core/ports"
	"github.com/ammerola/warehouse-be/internal/core/services"
	"github.com/ammerola/warehouse-be/internal/pkg/export"
	"github.com/ammerola/warehouse-be/internal/pkg/metrics"
)

const (
	tableItems      = "items"
	tableWarehouses = "warehouses"
)

// ExportHandler serves the CSV and workbook exports and queues snapshot jobs
type ExportHandler struct {
	responder
	service  ports.InventoryService
	cache    ports.CacheRepository
	tasks    ports.TaskEnqueuer
	cacheTTL time.Duration
	jobTTL   time.Duration
}

// ExportOptions tunes cache lifetimes of the export handler
type ExportOptions struct {
	CacheTTL time.Duration
	JobTTL   time.Duration
}

func NewExportHandler(
	service ports.InventoryService,
	cache ports.CacheRepository,
	tasks ports.TaskEnqueuer,
	m *metrics.Metrics,
	logger *slog.Logger,
	opts ExportOptions,
) *ExportHandler {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = services.DefaultCacheTTL
	}
	if opts.JobTTL <= 0 {
		opts.JobTTL = 24 * time.Hour
	}
	return &ExportHandler{
		responder: responder{
			logger:  logger.With(slog.String("handler", "export")),
			metrics: m,
		},
		service:  service,
		cache:    cache,
		tasks:    tasks,
		cacheTTL: opts.CacheTTL,
		jobTTL:   opts.JobTTL,
	}
}

// ItemsCSV handles GET /api/item/csv?limit=N
func (h *ExportHandler) ItemsCSV(w http.ResponseWriter, r *http.Request) {
	h.serveCSV(w, r, tableItems, func(ctx context.Context, limit int64, out io.Writer) error {
		items, err := h.service.ListItems(ctx, limit)
		if err != nil {
			return err
		}
		return export.WriteItemsCSV(out, items)
	})
}

// WarehousesCSV handles GET /api/warehouse/csv?limit=N
func (h *ExportHandler) WarehousesCSV(w http.ResponseWriter, r *http.Request) {
	h.serveCSV(w, r, tableWarehouses, func(ctx context.Context, limit int64, out io.Writer) error {
		warehouses, err := h.service.ListWarehouses(ctx, limit)
		if err != nil {
			return err
		}
		return export.WriteWarehousesCSV(out, warehouses)
	})
}

type renderFunc func(ctx context.Context, limit int64, out io.Writer) error

func (h *ExportHandler) serveCSV(w http.ResponseWriter, r *http.Request, table string, render renderFunc) {
	ctx := r.Context()
	limit, err := parseLimit(r)
	if err != nil {
		h.respondBadRequest(w, err.Error())
		return
	}

	key := services.ExportCacheKey(table, string(domain.ExportFormatCSV), limit)
	if data, ok := h.cached(ctx, key); ok {
		h.writeFile(w, export.ContentTypeCSV, "", "HIT", data)
		return
	}

	var buf bytes.Buffer
	if err := render(ctx, limit, &buf); err != nil {
		h.respondError(w, r, err)
		return
	}

	if h.cache != nil {
		if err := h.cache.SetBytes(ctx, key, buf.Bytes(), h.cacheTTL); err != nil {
			h.logger.WarnContext(ctx, "failed to cache export",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
	}

	h.writeFile(w, export.ContentTypeCSV, "", "MISS", buf.Bytes())
}

func (h *ExportHandler) cached(ctx context.Context, key string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	data, err := h.cache.GetBytes(ctx, key)
	if err != nil {
		if !errors.Is(err, ports.ErrCacheMiss) {
			h.logger.WarnContext(ctx, "export cache lookup failed",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
		h.recordLookup(false)
		return nil, false
	}
	h.recordLookup(true)
	return data, true
}

func (h *ExportHandler) recordLookup(hit bool) {
	if h.metrics != nil {
		h.metrics.RecordCacheLookup(hit)
	}
}

func (h *ExportHandler) writeFile(w http.ResponseWriter, contentType, filename, cacheStatus string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	}
	if cacheStatus != "" {
		w.Header().Set("X-Cache", cacheStatus)
	}
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write export", slog.String("error", err.Error()))
	}
}

// Workbook handles GET /api/export/xlsx?limit=N
func (h *ExportHandler) Workbook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, err := parseLimit(r)
	if err != nil {
		h.respondBadRequest(w, err.Error())
		return
	}

	items, err := h.service.ListItems(ctx, limit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	warehouses, err := h.service.ListWarehouses(ctx, limit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, items, warehouses); err != nil {
		h.respondError(w, r, err)
		return
	}

	filename := fmt.Sprintf("inventory_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	h.writeFile(w, export.ContentTypeXLSX, filename, "", buf.Bytes())
}

var errSnapshotsDisabled = domain.NotImplementedf("Export snapshots need the redis cache and task queue")

func (h *ExportHandler) snapshotsEnabled() bool {
	return h.cache != nil && h.tasks != nil
}

// SnapshotResponse is returned when a snapshot job is queued
type SnapshotResponse struct {
	JobID  string              `json:"job_id"`
	Status domain.ExportStatus `json:"status"`
}

// CreateSnapshot handles POST /api/export/snapshot?format=csv|xlsx&limit=N
func (h *ExportHandler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.snapshotsEnabled() {
		h.respondError(w, r, errSnapshotsDisabled)
		return
	}

	format := domain.ExportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = domain.ExportFormatCSV
	}
	if !format.IsValid() {
		h.respondBadRequest(w, fmt.Sprintf("Invalid format %q: must be csv or xlsx", format))
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		h.respondBadRequest(w, err.Error())
		return
	}

	job := domain.ExportJob{
		ID:        uuid.NewString(),
		Status:    domain.ExportStatusQueued,
		Format:    format,
		Limit:     limit,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.cache.SetWithTTL(ctx, services.ExportJobKey(job.ID), job, h.jobTTL); err != nil {
		h.respondError(w, r, fmt.Errorf("failed to record export job: %w", err))
		return
	}

	taskID, err := h.tasks.EnqueueExport(ctx, domain.ExportRequest{
		JobID:  job.ID,
		Format: format,
		Limit:  limit,
	})
	if err != nil {
		job.Status = domain.ExportStatusFailed
		job.Error = err.Error()
		if cerr := h.cache.SetWithTTL(ctx, services.ExportJobKey(job.ID), job, h.jobTTL); cerr != nil {
			h.logger.WarnContext(ctx, "failed to mark export job failed",
				slog.String("job_id", job.ID),
				slog.String("error", cerr.Error()))
		}
		h.respondError(w, r, fmt.Errorf("failed to enqueue export: %w", err))
		return
	}

	h.logger.InfoContext(ctx, "export snapshot queued",
		slog.String("job_id", job.ID),
		slog.String("task_id", taskID),
		slog.String("format", string(format)),
		slog.Int64("limit", limit))

	h.respondJSON(w, http.StatusAccepted, SnapshotResponse{JobID: job.ID, Status: job.Status})
}

// SnapshotStatus handles GET /api/export/snapshot/{id}
func (h *ExportHandler) SnapshotStatus(w http.ResponseWriter, r *http.Request) {
	if !h.snapshotsEnabled() {
		h.respondError(w, r, errSnapshotsDisabled)
		return
	}
	jobID := r.PathValue("id")
	if _, err := uuid.Parse(jobID); err != nil {
		h.respondBadRequest(w, fmt.Sprintf("Invalid job id %q", jobID))
		return
	}

	var job domain.ExportJob
	if err := h.cache.Get(r.Context(), services.ExportJobKey(jobID), &job); err != nil {
		if errors.Is(err, ports.ErrCacheMiss) {
			h.respondError(w, r, domain.NotFoundf("Export job %s does not exist", jobID))
			return
		}
		h.respondError(w, r, fmt.Errorf("failed to load export job: %w", err))
		return
	}
	h.respondJSON(w, http.StatusOK, job)
}
