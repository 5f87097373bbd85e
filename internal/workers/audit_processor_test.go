// internal/workers/audit_processor_test.go
package workers_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/warehouse-be/internal/core/domain"
	"github.com/ammerola/warehouse-be/internal/core/services"
	"github.com/ammerola/warehouse-be/internal/pkg/metrics"
	"github.com/ammerola/warehouse-be/internal/workers"
	"github.com/ammerola/warehouse-be/test/helpers"
	"github.com/ammerola/warehouse-be/test/mocks"
)

func TestAuditProcessor_RunAudit(t *testing.T) {
	task := asynq.NewTask(workers.TypeAuditRelationships, nil)

	t.Run("stores_report", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockInventoryService(ctrl)
		cache := mocks.NewMockCacheRepository(ctrl)
		m := metrics.New(false)

		report := &domain.AuditReport{
			ItemsScanned:   2,
			WarehousesSeen: 1,
			Violations: []domain.Violation{
				{Type: domain.ViolationUnlisted, ItemID: 4, WarehouseID: 1, Detail: "item id 4 claims warehouse id 1 which does not list it"},
			},
		}
		svc.EXPECT().Audit(gomock.Any()).Return(report, nil)
		cache.EXPECT().SetWithTTL(gomock.Any(), services.AuditReportKey, report, time.Hour).Return(nil)

		p := workers.NewAuditProcessor(svc, cache, m, time.Hour, helpers.TestLogger())
		require.NoError(t, p.RunAudit(context.Background(), task))

		count, err := testutil.GatherAndCount(m.Registry(), "warehouse_audit_violations_total")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("audit_failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockInventoryService(ctrl)
		svc.EXPECT().Audit(gomock.Any()).Return(nil, errors.New("Couldn't get a db connection"))

		p := workers.NewAuditProcessor(svc, mocks.NewMockCacheRepository(ctrl), nil, 0, helpers.TestLogger())
		err := p.RunAudit(context.Background(), task)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to audit relationships")
	})
}
