// internal/core/ports/tasks.go
package ports

import (
	"context"

	"github.com/ammerola/warehouse-be/internal/core/domain"
)

// TaskEnqueuer schedules background work on the worker queues
type TaskEnqueuer interface {
	EnqueueExport(ctx context.Context, req domain.ExportRequest) (string, error)
	EnqueueAudit(ctx context.Context) (string, error)
}
