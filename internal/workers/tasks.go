// internal/workers/tasks.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/warehouse-be/internal/core/domain"
)

const (
	TypeExportSnapshot     = "export:snapshot"
	TypeAuditRelationships = "audit:relationships"
	TypeCleanupExports     = "cleanup:exports"
)

// Queue names, highest priority first
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// AuditPayload is the body of an audit task
type AuditPayload struct {
	RequestedAt time.Time `json:"requested_at"`
}

// NewExportTask builds a snapshot task for req
func NewExportTask(req domain.ExportRequest) (*asynq.Task, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export payload: %w", err)
	}
	return asynq.NewTask(TypeExportSnapshot, b, asynq.MaxRetry(3), asynq.Timeout(10*time.Minute)), nil
}

func NewAuditTask(requestedAt time.Time) (*asynq.Task, error) {
	b, err := json.Marshal(AuditPayload{RequestedAt: requestedAt})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal audit payload: %w", err)
	}
	return asynq.NewTask(TypeAuditRelationships, b, asynq.MaxRetry(1)), nil
}

func NewCleanupTask() *asynq.Task {
	return asynq.NewTask(TypeCleanupExports, nil, asynq.MaxRetry(1))
}

// taskQueue is the part of *asynq.Client the enqueuer needs
type taskQueue interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TaskClient puts API requests for background work on the asynq queues
type TaskClient struct {
	client taskQueue
	logger *slog.Logger
}

func NewTaskClient(client taskQueue, logger *slog.Logger) *TaskClient {
	return &TaskClient{
		client: client,
		logger: logger.With(slog.String("component", "task_client")),
	}
}

// EnqueueExport queues a snapshot. The job id doubles as the task id so a
// job cannot be queued twice.
func (c *TaskClient) EnqueueExport(ctx context.Context, req domain.ExportRequest) (string, error) {
	task, err := NewExportTask(req)
	if err != nil {
		return "", err
	}

	info, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueDefault),
		asynq.TaskID(req.JobID),
		asynq.Retention(24*time.Hour))
	if err != nil {
		return "", fmt.Errorf("failed to enqueue export %s: %w", req.JobID, err)
	}

	c.logger.DebugContext(ctx, "export task enqueued",
		slog.String("task_id", info.ID),
		slog.String("queue", info.Queue))
	return info.ID, nil
}

// EnqueueAudit queues a relationship audit on the low priority queue
func (c *TaskClient) EnqueueAudit(ctx context.Context) (string, error) {
	task, err := NewAuditTask(time.Now().UTC())
	if err != nil {
		return "", err
	}

	info, err := c.client.EnqueueContext(ctx, task, asynq.Queue(QueueLow))
	if err != nil {
		return "", fmt.Errorf("failed to enqueue audit: %w", err)
	}

	c.logger.DebugContext(ctx, "audit task enqueued", slog.String("task_id", info.ID))
	return info.ID, nil
}
