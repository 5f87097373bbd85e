// internal/handlers/health_test.go
package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/warehouse-be/internal/handlers"
	"github.com/ammerola/warehouse-be/test/helpers"
	"github.com/ammerola/warehouse-be/test/mocks"
)

type stubInspector struct {
	queues []string
	err    error
}

func (s stubInspector) Queues() ([]string, error) { return s.queues, s.err }

func (s stubInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return &asynq.QueueInfo{Queue: queue, Size: 2, Pending: 2}, nil
}

func (s stubInspector) Servers() ([]*asynq.ServerInfo, error) {
	return []*asynq.ServerInfo{{}}, nil
}

func TestHealthHandler_Health(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tests := []struct {
		name       string
		pingErr    error
		inspector  handlers.QueueInspector
		wantStatus int
		wantState  string
	}{
		{
			name:       "healthy",
			inspector:  stubInspector{queues: []string{"default"}},
			wantStatus: http.StatusOK,
			wantState:  "healthy",
		},
		{
			name:       "database_down",
			pingErr:    errors.New("connection refused"),
			inspector:  stubInspector{queues: []string{"default"}},
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "degraded",
		},
		{
			name:       "queue_down",
			inspector:  stubInspector{err: errors.New("redis: nil")},
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			db := mocks.NewMockDatabase(ctrl)
			db.EXPECT().Ping(gomock.Any()).Return(tt.pingErr)
			if tt.pingErr == nil {
				db.EXPECT().Driver().Return("sqlite")
				db.EXPECT().Health(gomock.Any()).Return(map[string]interface{}{"open_connections": 1})
			}

			h := handlers.NewHealthHandler(db, client, tt.inspector,
				handlers.BuildInfo{Version: "1.2.3", Environment: "test"}, helpers.TestLogger())

			rec := httptest.NewRecorder()
			h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body handlers.HealthStatus
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantState, body.Status)
			assert.Equal(t, "1.2.3", body.Version)
			assert.Contains(t, body.Services, "redis")
			assert.Contains(t, body.Services, "asynq")
		})
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	ctrl := gomock.NewController(t)
	db := mocks.NewMockDatabase(ctrl)
	db.EXPECT().Ping(gomock.Any()).Return(nil)

	h := handlers.NewHealthHandler(db, nil, nil, handlers.BuildInfo{}, helpers.TestLogger())

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ready":true,"details":{"database":"ready"}}`, rec.Body.String())
}

func TestHealthHandler_ReadinessIgnoresQueue(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctrl := gomock.NewController(t)
	db := mocks.NewMockDatabase(ctrl)
	db.EXPECT().Ping(gomock.Any()).Return(nil)

	h := handlers.NewHealthHandler(db, client,
		stubInspector{err: errors.New("redis: nil")}, handlers.BuildInfo{}, helpers.TestLogger())

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ready":true,"details":{"database":"ready","redis":"ready"}}`, rec.Body.String())
}

func TestHealthHandler_HealthReportsStoreDetails(t *testing.T) {
	ctrl := gomock.NewController(t)
	db := mocks.NewMockDatabase(ctrl)
	db.EXPECT().Ping(gomock.Any()).Return(nil)
	db.EXPECT().Driver().Return("postgres")
	db.EXPECT().Health(gomock.Any()).Return(map[string]interface{}{"total_conns": 4})

	h := handlers.NewHealthHandler(db, nil, stubInspector{queues: []string{"exports"}},
		handlers.BuildInfo{}, helpers.TestLogger())

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body handlers.HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.NotContains(t, body.Services, "redis")
	assert.Equal(t, "postgres", body.Services["database"].Details["driver"])
	assert.Equal(t, float64(4), body.Services["database"].Details["total_conns"])

	queues := body.Services["asynq"].Details["queues"].(map[string]interface{})
	assert.Equal(t, float64(2), queues["exports"].(map[string]interface{})["pending"])
	assert.NotEmpty(t, body.Runtime.GoVersion)
}
