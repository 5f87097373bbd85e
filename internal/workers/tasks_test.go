// internal/workers/tasks_test.go
package workers_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/warehouse-be/internal/core/domain"
	"github.com/ammerola/warehouse-be/internal/workers"
	"github.com/ammerola/warehouse-be/test/helpers"
)

type recordingQueue struct {
	tasks []*asynq.Task
	err   error
}

func (q *recordingQueue) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.tasks = append(q.tasks, task)

	info := &asynq.TaskInfo{ID: "generated", Queue: "default", Type: task.Type()}
	for _, opt := range opts {
		switch opt.Type() {
		case asynq.TaskIDOpt:
			info.ID = opt.Value().(string)
		case asynq.QueueOpt:
			info.Queue = opt.Value().(string)
		}
	}
	return info, nil
}

func TestTaskClient_EnqueueExport(t *testing.T) {
	queue := &recordingQueue{}
	client := workers.NewTaskClient(queue, helpers.TestLogger())

	req := domain.ExportRequest{JobID: "3f1c", Format: domain.ExportFormatXLSX, Limit: 25}
	id, err := client.EnqueueExport(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "3f1c", id)

	require.Len(t, queue.tasks, 1)
	assert.Equal(t, workers.TypeExportSnapshot, queue.tasks[0].Type())

	var got domain.ExportRequest
	require.NoError(t, json.Unmarshal(queue.tasks[0].Payload(), &got))
	assert.Equal(t, req, got)
}

func TestTaskClient_EnqueueAudit(t *testing.T) {
	t.Run("queued", func(t *testing.T) {
		queue := &recordingQueue{}
		client := workers.NewTaskClient(queue, helpers.TestLogger())

		id, err := client.EnqueueAudit(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "generated", id)
		require.Len(t, queue.tasks, 1)
		assert.Equal(t, workers.TypeAuditRelationships, queue.tasks[0].Type())
	})

	t.Run("queue_unavailable", func(t *testing.T) {
		client := workers.NewTaskClient(&recordingQueue{err: errors.New("dial tcp: connection refused")}, helpers.TestLogger())

		_, err := client.EnqueueAudit(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to enqueue audit")
	})
}
