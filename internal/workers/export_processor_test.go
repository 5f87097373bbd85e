// internal/workers/export_processor_test.go
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/warehouse-be/internal/core/domain"
	"github.com/ammerola/warehouse-be/internal/core/ports"
	"github.com/ammerola/warehouse-be/internal/core/services"
	"github.com/ammerola/warehouse-be/internal/pkg/export"
	"github.com/ammerola/warehouse-be/internal/pkg/metrics"
	"github.com/ammerola/warehouse-be/test/helpers"
	"github.com/ammerola/warehouse-be/test/mocks"
)

type exportMocks struct {
	service *mocks.MockInventoryService
	storage *mocks.MockObjectStorage
	cache   *mocks.MockCacheRepository
}

func newExportProcessor(t *testing.T) (*ExportProcessor, exportMocks) {
	ctrl := gomock.NewController(t)
	m := exportMocks{
		service: mocks.NewMockInventoryService(ctrl),
		storage: mocks.NewMockObjectStorage(ctrl),
		cache:   mocks.NewMockCacheRepository(ctrl),
	}
	p := NewExportProcessor(m.service, m.storage, m.cache, metrics.New(false), ExportOptions{}, helpers.TestLogger())
	p.now = func() time.Time { return time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC) }
	return p, m
}

func exportTask(t *testing.T, req domain.ExportRequest) *asynq.Task {
	b, err := json.Marshal(req)
	require.NoError(t, err)
	return asynq.NewTask(TypeExportSnapshot, b)
}

func TestExportProcessor_ProcessExport(t *testing.T) {
	const jobID = "0b7e8a52-0f65-4c39-9a40-5d1f7f1f4a10"
	created := time.Date(2024, 3, 9, 9, 59, 0, 0, time.UTC)

	t.Run("uploads_csv_files", func(t *testing.T) {
		p, m := newExportProcessor(t)
		ctx := context.Background()

		m.cache.EXPECT().Get(gomock.Any(), services.ExportJobKey(jobID), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, dest interface{}) error {
				*dest.(*domain.ExportJob) = domain.ExportJob{ID: jobID, Status: domain.ExportStatusQueued, Format: domain.ExportFormatCSV, Limit: 10, CreatedAt: created}
				return nil
			})

		var statuses []domain.ExportStatus
		var final *domain.ExportJob
		m.cache.EXPECT().SetWithTTL(gomock.Any(), services.ExportJobKey(jobID), gomock.Any(), 24*time.Hour).
			DoAndReturn(func(_ context.Context, _ string, value interface{}, _ time.Duration) error {
				job := value.(*domain.ExportJob)
				statuses = append(statuses, job.Status)
				copied := *job
				final = &copied
				return nil
			}).Times(2)

		m.service.EXPECT().ListItems(gomock.Any(), int64(10)).Return([]domain.InventoryItem{*helpers.TestItem(10, helpers.InWarehouse(1))}, nil)
		m.service.EXPECT().ListWarehouses(gomock.Any(), int64(10)).Return([]domain.Warehouse{{ID: 1, Items: []int32{10}}}, nil)

		uploaded := map[string]string{}
		m.storage.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), export.ContentTypeCSV).
			DoAndReturn(func(_ context.Context, key string, body io.Reader, _ string) (string, error) {
				b, err := io.ReadAll(body)
				require.NoError(t, err)
				uploaded[key] = string(b)
				return "https://bucket/" + key, nil
			}).Times(2)
		m.storage.EXPECT().PresignGet(gomock.Any(), gomock.Any(), 15*time.Minute).
			DoAndReturn(func(_ context.Context, key string, _ time.Duration) (string, error) {
				return "https://signed/" + key, nil
			}).Times(2)

		err := p.ProcessExport(ctx, exportTask(t, domain.ExportRequest{JobID: jobID, Format: domain.ExportFormatCSV, Limit: 10}))
		require.NoError(t, err)

		dir := "exports/2024/03/09/" + jobID
		assert.Equal(t, "id,items\n1,\"10\"\n", uploaded[dir+"/warehouses.csv"])
		assert.Contains(t, uploaded[dir+"/items.csv"], "10,1,")

		assert.Equal(t, []domain.ExportStatus{domain.ExportStatusRunning, domain.ExportStatusCompleted}, statuses)
		require.NotNil(t, final)
		assert.Equal(t, created, final.CreatedAt)
		require.NotNil(t, final.CompletedAt)
		require.Len(t, final.Objects, 2)
		assert.Equal(t, "https://signed/"+final.Objects[0].Key, final.Objects[0].URL)
	})

	t.Run("upload_failure_marks_job_failed", func(t *testing.T) {
		p, m := newExportProcessor(t)

		m.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(ports.ErrCacheMiss)
		var last domain.ExportJob
		m.cache.EXPECT().SetWithTTL(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, value interface{}, _ time.Duration) error {
				last = *value.(*domain.ExportJob)
				return nil
			}).Times(2)
		m.service.EXPECT().ListItems(gomock.Any(), gomock.Any()).Return(nil, nil)
		m.service.EXPECT().ListWarehouses(gomock.Any(), gomock.Any()).Return(nil, nil)
		m.storage.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), export.ContentTypeXLSX).
			Return("", errors.New("AccessDenied"))

		err := p.ProcessExport(context.Background(), exportTask(t, domain.ExportRequest{JobID: jobID, Format: domain.ExportFormatXLSX, Limit: 5}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "AccessDenied")

		assert.Equal(t, domain.ExportStatusFailed, last.Status)
		assert.Contains(t, last.Error, "failed to upload inventory.xlsx")
		assert.Equal(t, domain.ExportFormatXLSX, last.Format)
	})

	t.Run("invalid_payload_skips_retry", func(t *testing.T) {
		p, _ := newExportProcessor(t)

		err := p.ProcessExport(context.Background(), asynq.NewTask(TypeExportSnapshot, []byte(`{"job_id":"x","format":"pdf"}`)))
		require.Error(t, err)
		assert.ErrorIs(t, err, asynq.SkipRetry)

		err = p.ProcessExport(context.Background(), asynq.NewTask(TypeExportSnapshot, []byte(`not json`)))
		assert.ErrorIs(t, err, asynq.SkipRetry)
	})
}
