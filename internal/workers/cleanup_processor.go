// internal/workers/cleanup_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/warehouse-be/internal/core/ports"
)

// CleanupProcessor removes expired export snapshots from object storage
type CleanupProcessor struct {
	storage   ports.ObjectStorage
	prefix    string
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewCleanupProcessor creates a new cleanup processor
func NewCleanupProcessor(storage ports.ObjectStorage, prefix string, retention time.Duration, logger *slog.Logger) *CleanupProcessor {
	if prefix == "" {
		prefix = DefaultExportPrefix
	}
	return &CleanupProcessor{
		storage:   storage,
		prefix:    prefix,
		retention: retention,
		logger:    logger.With(slog.String("processor", "cleanup")),
		now:       time.Now,
	}
}

// CleanupExports handles TypeCleanupExports tasks
func (p *CleanupProcessor) CleanupExports(ctx context.Context, t *asynq.Task) error {
	if p.retention <= 0 {
		p.logger.DebugContext(ctx, "export retention disabled")
		return nil
	}

	objects, err := p.storage.List(ctx, p.prefix+"/")
	if err != nil {
		return fmt.Errorf("failed to list exports: %w", err)
	}

	cutoff := p.now().Add(-p.retention)
	var expired []string
	for _, obj := range objects {
		if obj.LastModified.Before(cutoff) {
			expired = append(expired, obj.Key)
		}
	}

	if len(expired) == 0 {
		p.logger.DebugContext(ctx, "no expired exports", slog.Int("objects", len(objects)))
		return nil
	}

	if err := p.storage.Delete(ctx, expired...); err != nil {
		return fmt.Errorf("failed to delete %d expired exports: %w", len(expired), err)
	}

	p.logger.InfoContext(ctx, "expired exports removed",
		slog.Int("deleted", len(expired)),
		slog.Int("kept", len(objects)-len(expired)),
		slog.Time("cutoff", cutoff))
	return nil
}
