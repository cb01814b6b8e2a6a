package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/check-cx/monitor/dashboard"
	"github.com/check-cx/monitor/probe"
	"github.com/check-cx/monitor/snapshot"
	"github.com/check-cx/monitor/store"
)

func newTestHandler(t *testing.T) (*DashboardHandler, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	dialector := postgres.New(postgres.Config{Conn: mockDB})
	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	require.NoError(t, err)

	configRepo := store.NewConfigRepository(gormDB, zap.NewNop())
	historyStore := store.NewHistoryStore(gormDB, zap.NewNop())
	svc := snapshot.NewService(historyStore, probe.NewClientCache(), zap.NewNop())
	agg := dashboard.NewAggregator(configRepo, svc, nil, nil, time.Minute, zap.NewNop())

	return NewDashboardHandler(agg, zap.NewNop()), mock
}

var configCols = []string{
	"id", "name", "type", "endpoint", "model", "api_key",
	"enabled", "is_maintenance", "request_headers", "metadata", "group_name",
}

func TestHandleDashboard_ReturnsDashboardData(t *testing.T) {
	h, mock := newTestHandler(t)
	mock.ExpectQuery(`SELECT \* FROM "check_configs" WHERE enabled = \$1 ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(configCols))

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	rec := httptest.NewRecorder()

	h.HandleDashboard(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var data dashboard.DashboardData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	assert.Equal(t, 0, data.Total)
}

func TestHandleGroup_UnknownGroupReturns404(t *testing.T) {
	h, mock := newTestHandler(t)
	mock.ExpectQuery(`SELECT \* FROM "check_configs" WHERE enabled = \$1 ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(configCols))

	mux := http.NewServeMux()
	mux.HandleFunc("/api/group/{groupName}", h.HandleGroup)

	req := httptest.NewRequest(http.MethodGet, "/api/group/nonexistent", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body groupNotFoundBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "分组不存在或没有配置", body.Error)
}

func TestHandleGroup_UngroupedSentinelReturnsOK(t *testing.T) {
	h, mock := newTestHandler(t)
	mock.ExpectQuery(`SELECT \* FROM "check_configs" WHERE enabled = \$1 ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(configCols).
			AddRow("m1", "Maintained", "openai", "", "gpt-4o", "sk", true, true, `{}`, `{}`, ""))

	mux := http.NewServeMux()
	mux.HandleFunc("/api/group/{groupName}", h.HandleGroup)

	req := httptest.NewRequest(http.MethodGet, "/api/group/__ungrouped__", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var data dashboard.GroupDashboardData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	assert.Equal(t, "未分组", data.DisplayName)
}
