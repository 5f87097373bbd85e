package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/warehouse-be/internal/core/domain"
	"github.com/ammerola/warehouse-be/internal/core/ports"
	"github.com/ammerola/warehouse-be/internal/core/services"
	"github.com/ammerola/warehouse-be/test/helpers"
	"github.com/ammerola/warehouse-be/test/mocks"
)

type serviceMocks struct {
	items      *mocks.MockItemRepository
	warehouses *mocks.MockWarehouseRepository
	tx         *mocks.MockTransactor
	cache      *mocks.MockCacheRepository
}

func newMockedService(t *testing.T) (*services.InventoryService, serviceMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := serviceMocks{
		items:      mocks.NewMockItemRepository(ctrl),
		warehouses: mocks.NewMockWarehouseRepository(ctrl),
		tx:         mocks.NewMockTransactor(ctrl),
		cache:      mocks.NewMockCacheRepository(ctrl),
	}
	m.tx.EXPECT().
		WithinTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).
		AnyTimes()

	svc := services.NewInventoryService(m.items, m.warehouses, m.tx, helpers.TestLogger(),
		services.WithCache(m.cache, 0))
	return svc, m
}

func TestInventoryService_GetItem(t *testing.T) {
	tests := []struct {
		name          string
		setupMocks    func(m serviceMocks)
		expectedError bool
		errorKind     domain.Kind
		errorContains string
	}{
		{
			name: "cache_hit_skips_store",
			setupMocks: func(m serviceMocks) {
				m.cache.EXPECT().
					Get(gomock.Any(), "item:10", gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, dest interface{}) error {
						*dest.(*domain.InventoryItem) = *helpers.TestItem(10)
						return nil
					})
			},
		},
		{
			name: "cache_miss_reads_store_and_fills_cache",
			setupMocks: func(m serviceMocks) {
				m.cache.EXPECT().Get(gomock.Any(), "item:10", gomock.Any()).Return(ports.ErrCacheMiss)
				m.items.EXPECT().Get(gomock.Any(), int32(10)).Return(helpers.TestItem(10), nil)
				m.cache.EXPECT().SetWithTTL(gomock.Any(), "item:10", gomock.Any(), services.DefaultCacheTTL).Return(nil)
			},
		},
		{
			name: "cache_failure_falls_back_to_store",
			setupMocks: func(m serviceMocks) {
				m.cache.EXPECT().Get(gomock.Any(), "item:10", gomock.Any()).Return(errors.New("redis down"))
				m.items.EXPECT().Get(gomock.Any(), int32(10)).Return(helpers.TestItem(10), nil)
				m.cache.EXPECT().SetWithTTL(gomock.Any(), "item:10", gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
			},
		},
		{
			name: "missing_item",
			setupMocks: func(m serviceMocks) {
				m.cache.EXPECT().Get(gomock.Any(), "item:10", gomock.Any()).Return(ports.ErrCacheMiss)
				m.items.EXPECT().Get(gomock.Any(), int32(10)).Return(nil, domain.NotFoundf("no rows"))
			},
			expectedError: true,
			errorKind:     domain.KindNotFound,
			errorContains: "Item id 10 does not exist",
		},
		{
			name: "store_unavailable",
			setupMocks: func(m serviceMocks) {
				m.cache.EXPECT().Get(gomock.Any(), "item:10", gomock.Any()).Return(ports.ErrCacheMiss)
				m.items.EXPECT().Get(gomock.Any(), int32(10)).
					Return(nil, domain.Wrap(domain.KindStoreUnavailable, errors.New("pool closed"), "Couldn't get a db connection"))
			},
			expectedError: true,
			errorKind:     domain.KindStoreUnavailable,
			errorContains: "Couldn't get a db connection",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newMockedService(t)
			tt.setupMocks(m)

			item, err := svc.GetItem(context.Background(), 10)

			if tt.expectedError {
				require.Error(t, err)
				assert.Equal(t, tt.errorKind, domain.KindOf(err))
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int32(10), item.ID)
		})
	}
}

func TestInventoryService_AssignInvalidatesCache(t *testing.T) {
	svc, m := newMockedService(t)

	gomock.InOrder(
		m.items.EXPECT().Get(gomock.Any(), int32(10)).Return(helpers.TestItem(10), nil),
		m.items.EXPECT().Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error) {
				assert.True(t, item.BelongsTo(1))
				return item, nil
			}),
		m.warehouses.EXPECT().Get(gomock.Any(), int32(1)).Return(&domain.Warehouse{ID: 1, Items: []int32{}}, nil),
		m.warehouses.EXPECT().Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, w *domain.Warehouse) (*domain.Warehouse, error) {
				assert.Equal(t, []int32{10}, w.Items)
				return w, nil
			}),
		m.cache.EXPECT().Delete(gomock.Any(), "item:10", "warehouse:1").Return(nil),
		m.cache.EXPECT().DeletePattern(gomock.Any(), services.ExportCachePattern).Return(nil),
	)

	w, err := svc.Assign(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []int32{10}, w.Items)
}

func TestInventoryService_FailedMutationKeepsCache(t *testing.T) {
	svc, m := newMockedService(t)

	m.items.EXPECT().Get(gomock.Any(), int32(10)).
		Return(helpers.TestItem(10, helpers.InWarehouse(2)), nil)
	// no cache expectations: a rejected assign must not touch the cache

	_, err := svc.Assign(context.Background(), 1, 10)
	require.Error(t, err)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestInventoryService_InvalidationFailureIsNotFatal(t *testing.T) {
	svc, m := newMockedService(t)

	m.items.EXPECT().Get(gomock.Any(), int32(10)).Return(helpers.TestItem(10), nil)
	m.items.EXPECT().Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error) {
			return item, nil
		})
	m.cache.EXPECT().Delete(gomock.Any(), "item:10").Return(errors.New("redis down"))
	m.cache.EXPECT().DeletePattern(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	_, err := svc.UpdateItem(context.Background(), helpers.TestItem(10, func(i *domain.InventoryItem) {
		i.Value = 500
	}))
	require.NoError(t, err)
}

func TestInventoryService_TransactionErrorPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	tx := mocks.NewMockTransactor(ctrl)
	tx.EXPECT().WithinTransaction(gomock.Any(), gomock.Any()).
		Return(domain.Wrap(domain.KindStoreUnavailable, errors.New("acquire"), "Couldn't get a db connection"))

	svc := services.NewInventoryService(
		mocks.NewMockItemRepository(ctrl), mocks.NewMockWarehouseRepository(ctrl), tx, helpers.TestLogger())

	_, err := svc.DeleteWarehouse(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, domain.KindStoreUnavailable, domain.KindOf(err))
}

func TestInventoryService_ListItems(t *testing.T) {
	svc, m := newMockedService(t)
	m.items.EXPECT().List(gomock.Any(), int64(2)).
		Return([]domain.InventoryItem{*helpers.TestItem(1), *helpers.TestItem(2)}, nil)

	items, err := svc.ListItems(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestInventoryService_ListWarehouses_StoreError(t *testing.T) {
	svc, m := newMockedService(t)
	m.warehouses.EXPECT().List(gomock.Any(), int64(100)).Return(nil, errors.New("relation \"warehouses\" does not exist"))

	_, err := svc.ListWarehouses(context.Background(), 100)
	require.Error(t, err)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	assert.Contains(t, err.Error(), "failed to list warehouses")
}
