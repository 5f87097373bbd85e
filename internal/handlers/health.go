// internal/handlers/health.go
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/warehouse-be/internal/core/ports"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDegraded  = "degraded"
)

// QueueInspector is the part of *asynq.Inspector the health check reads
type QueueInspector interface {
	Queues() ([]string, error)
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
	Servers() ([]*asynq.ServerInfo, error)
}

// BuildInfo identifies the running binary in health responses
type BuildInfo struct {
	Version     string
	Environment string
}

// probe reports on one dependency. details is nil when ping fails.
type probe struct {
	name    string
	ping    func(ctx context.Context) error
	details func(ctx context.Context) map[string]interface{}
}

// HealthHandler reports on the record store and, when configured, the redis
// cache and the background queue.
type HealthHandler struct {
	probes    []probe
	build     BuildInfo
	logger    *slog.Logger
	startTime time.Time
}

// NewHealthHandler creates a new health handler. redisClient and inspector
// may be nil.
func NewHealthHandler(
	database ports.Database,
	redisClient *redis.Client,
	inspector QueueInspector,
	build BuildInfo,
	logger *slog.Logger,
) *HealthHandler {
	h := &HealthHandler{
		build:     build,
		logger:    logger.With(slog.String("handler", "health")),
		startTime: time.Now(),
	}

	h.probes = append(h.probes, probe{
		name: "database",
		ping: database.Ping,
		details: func(ctx context.Context) map[string]interface{} {
			d := database.Health(ctx)
			if d == nil {
				d = make(map[string]interface{})
			}
			d["driver"] = database.Driver()
			return d
		},
	})

	if redisClient != nil {
		h.probes = append(h.probes, probe{
			name: "redis",
			ping: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
			details: func(context.Context) map[string]interface{} {
				stats := redisClient.PoolStats()
				return map[string]interface{}{
					"total_conns": stats.TotalConns,
					"idle_conns":  stats.IdleConns,
				}
			},
		})
	}

	if inspector != nil {
		h.probes = append(h.probes, probe{
			name: "asynq",
			ping: func(context.Context) error {
				_, err := inspector.Queues()
				return err
			},
			details: func(context.Context) map[string]interface{} {
				return queueDetails(inspector)
			},
		})
	}

	return h
}

// HealthStatus represents the health status of the application
type HealthStatus struct {
	Status      string                 `json:"status"`
	Version     string                 `json:"version"`
	Environment string                 `json:"environment"`
	Uptime      string                 `json:"uptime"`
	Timestamp   time.Time              `json:"timestamp"`
	Services    map[string]ServiceInfo `json:"services"`
	Runtime     RuntimeInfo            `json:"runtime"`
}

// ServiceInfo represents the status of a service dependency
type ServiceInfo struct {
	Status       string                 `json:"status"`
	Message      string                 `json:"message,omitempty"`
	ResponseTime string                 `json:"response_time,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// RuntimeInfo is the process state worth watching under load
type RuntimeInfo struct {
	GoVersion     string `json:"go_version"`
	NumGoroutines int    `json:"num_goroutines"`
	HeapAllocMB   uint64 `json:"heap_alloc_mb"`
}

// Health handles the /health endpoint
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := HealthStatus{
		Status:      statusHealthy,
		Version:     h.build.Version,
		Environment: h.build.Environment,
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Timestamp:   time.Now().UTC(),
		Services:    make(map[string]ServiceInfo, len(h.probes)),
		Runtime:     runtimeInfo(),
	}

	for _, p := range h.probes {
		info := h.check(ctx, p)
		health.Services[p.name] = info
		if info.Status != statusHealthy {
			health.Status = statusDegraded
		}
	}

	statusCode := http.StatusOK
	if health.Status != statusHealthy {
		statusCode = http.StatusServiceUnavailable
	}
	h.writeJSON(ctx, w, statusCode, health)
}

// Readiness handles the /ready endpoint. Only reachability is checked.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ready := true
	details := make(map[string]string)
	for _, p := range h.probes {
		if p.name == "asynq" {
			continue
		}
		if err := p.ping(ctx); err != nil {
			ready = false
			details[p.name] = "not ready"
			continue
		}
		details[p.name] = "ready"
	}

	statusCode := http.StatusOK
	if !ready {
		statusCode = http.StatusServiceUnavailable
	}
	h.writeJSON(ctx, w, statusCode, map[string]interface{}{
		"ready":   ready,
		"details": details,
	})
}

func (h *HealthHandler) check(ctx context.Context, p probe) ServiceInfo {
	start := time.Now()
	if err := p.ping(ctx); err != nil {
		h.logger.ErrorContext(ctx, "health check failed",
			slog.String("dependency", p.name),
			slog.String("error", err.Error()))
		return ServiceInfo{Status: statusUnhealthy, Message: err.Error()}
	}

	return ServiceInfo{
		Status:       statusHealthy,
		ResponseTime: time.Since(start).String(),
		Details:      p.details(ctx),
	}
}

func (h *HealthHandler) writeJSON(ctx context.Context, w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.ErrorContext(ctx, "failed to encode health response",
			slog.String("error", err.Error()))
	}
}

// queueDetails summarizes the backlog of each queue. Snapshot and audit
// tasks piling up here show up long before the API slows down.
func queueDetails(inspector QueueInspector) map[string]interface{} {
	queues, _ := inspector.Queues()
	backlog := make(map[string]interface{}, len(queues))
	for _, queue := range queues {
		q, err := inspector.GetQueueInfo(queue)
		if err != nil {
			continue
		}
		backlog[queue] = map[string]int{
			"pending":  q.Pending,
			"active":   q.Active,
			"retry":    q.Retry,
			"archived": q.Archived,
		}
	}

	details := map[string]interface{}{"queues": backlog}
	if servers, err := inspector.Servers(); err == nil {
		details["servers"] = len(servers)
	}
	return details
}

func runtimeInfo() RuntimeInfo {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return RuntimeInfo{
		GoVersion:     runtime.Version(),
		NumGoroutines: runtime.NumGoroutine(),
		HeapAllocMB:   mem.HeapAlloc / 1024 / 1024,
	}
}
