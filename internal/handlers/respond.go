// internal/handlers/respond.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ammerola/warehouse-be/internal/core/domain"
	"github.com/ammerola/warehouse-be/internal/pkg/metrics"
)

// responder is shared by every API handler. Success bodies are JSON, error
// bodies are the plain text message of the failure.
type responder struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// statusFor maps a failure kind onto its HTTP status
func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusBadRequest
	case domain.KindNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage returns the message of the outermost classified error, or
// the plain error text.
func errorMessage(err error) string {
	var e *domain.Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return err.Error()
}

func (h *responder) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h *responder) respondText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}

// respondError classifies err and writes its message
func (h *responder) respondError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	status := statusFor(kind)

	attrs := []any{
		slog.String("kind", kind.String()),
		slog.Int("status", status),
		slog.String("error", err.Error()),
	}
	if status >= http.StatusInternalServerError && kind != domain.KindNotImplemented {
		h.logger.ErrorContext(r.Context(), "request failed", attrs...)
	} else {
		h.logger.DebugContext(r.Context(), "request rejected", attrs...)
	}

	if h.metrics != nil {
		h.metrics.RecordError(kind)
	}
	h.respondText(w, status, errorMessage(err))
}

func (h *responder) respondBadRequest(w http.ResponseWriter, message string) {
	h.respondText(w, http.StatusBadRequest, message)
}
