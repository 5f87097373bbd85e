// internal/handlers/audit.go
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ammerola/warehouse-be/internal/core/domain"
	"github.com/ammerola/warehouse-be/internal/core/ports"
	"github.com/ammerola/warehouse-be/internal/core/services"
	"github.com/ammerola/warehouse-be/internal/pkg/metrics"
)

// AuditHandler queues relationship audits and serves the last report
type AuditHandler struct {
	responder
	cache ports.CacheRepository
	tasks ports.TaskEnqueuer
}

func NewAuditHandler(cache ports.CacheRepository, tasks ports.TaskEnqueuer, m *metrics.Metrics, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{
		responder: responder{
			logger:  logger.With(slog.String("handler", "audit")),
			metrics: m,
		},
		cache: cache,
		tasks: tasks,
	}
}

// Enqueue handles POST /api/audit
func (h *AuditHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	taskID, err := h.tasks.EnqueueAudit(r.Context())
	if err != nil {
		h.respondError(w, r, fmt.Errorf("failed to enqueue audit: %w", err))
		return
	}

	h.logger.InfoContext(r.Context(), "audit queued", slog.String("task_id", taskID))
	h.respondJSON(w, http.StatusAccepted, map[string]string{
		"task_id": taskID,
		"status":  string(domain.ExportStatusQueued),
	})
}

// Last handles GET /api/audit
func (h *AuditHandler) Last(w http.ResponseWriter, r *http.Request) {
	var report domain.AuditReport
	if err := h.cache.Get(r.Context(), services.AuditReportKey, &report); err != nil {
		if errors.Is(err, ports.ErrCacheMiss) {
			h.respondError(w, r, domain.NotFoundf("No audit report is available yet"))
			return
		}
		h.respondError(w, r, fmt.Errorf("failed to load audit report: %w", err))
		return
	}
	h.respondJSON(w, http.StatusOK, report)
}
