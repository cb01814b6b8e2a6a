package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/check-cx/monitor/probe"
	"github.com/check-cx/monitor/snapshot"
	"github.com/check-cx/monitor/store"
)

func newTestAggregator(t *testing.T) (*Aggregator, sqlmock.Sqlmock, func()) {
	mockDB, mock, gormDB := setupMockDB(t)
	configRepo := store.NewConfigRepository(gormDB, zap.NewNop())
	historyStore := store.NewHistoryStore(gormDB, zap.NewNop())
	svc := snapshot.NewService(historyStore, probe.NewClientCache(), zap.NewNop())
	agg := NewAggregator(configRepo, svc, nil, nil, time.Minute, zap.NewNop())
	return agg, mock, func() { mockDB.Close() }
}

func TestAggregator_LoadDashboardData_EmptyConfigsYieldsZeroTotal(t *testing.T) {
	agg, mock, cleanup := newTestAggregator(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM "check_configs" WHERE enabled = \$1 ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(configColumns))

	data := agg.LoadDashboardData(context.Background(), snapshot.RefreshAlways)

	assert.Equal(t, 0, data.Total)
	assert.Empty(t, data.ProviderTimelines)
	assert.Nil(t, data.LastUpdated)
}

func TestAggregator_LoadDashboardData_MaintenanceOnlyBuildsPlaceholder(t *testing.T) {
	agg, mock, cleanup := newTestAggregator(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM "check_configs" WHERE enabled = \$1 ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(configColumns).
			AddRow("m1", "Maintained", "openai", "", "gpt-4o", "sk", true, true, `{}`, `{}`, ""))

	data := agg.LoadDashboardData(context.Background(), snapshot.RefreshAlways)

	require.Equal(t, 1, data.Total)
	require.Len(t, data.ProviderTimelines, 1)
	assert.Equal(t, "maintenance", data.ProviderTimelines[0].Latest.Status)
	assert.Equal(t, "配置处于维护模式", data.ProviderTimelines[0].Latest.Message)
	assert.Nil(t, data.ProviderTimelines[0].Latest.LatencyMs)
}

func TestAggregator_LoadGroupDashboardData_UnknownGroupReturnsNil(t *testing.T) {
	agg, mock, cleanup := newTestAggregator(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM "check_configs" WHERE enabled = \$1 ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(configColumns).
			AddRow("m1", "Maintained", "openai", "", "gpt-4o", "sk", true, true, `{}`, `{}`, "primary"))

	data := agg.LoadGroupDashboardData(context.Background(), "nonexistent", snapshot.RefreshNever)
	assert.Nil(t, data)
}

func TestAggregator_LoadGroupDashboardData_UngroupedSentinelMatchesAbsentGroupName(t *testing.T) {
	agg, mock, cleanup := newTestAggregator(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM "check_configs" WHERE enabled = \$1 ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(configColumns).
			AddRow("m1", "Maintained", "anthropic", "", "claude-3-5-sonnet-latest", "sk", true, true, `{}`, `{}`, ""))

	data := agg.LoadGroupDashboardData(context.Background(), UngroupedSentinel, snapshot.RefreshNever)

	require.NotNil(t, data)
	assert.Equal(t, "未分组", data.DisplayName)
	assert.Equal(t, UngroupedSentinel, data.GroupName)
	assert.Equal(t, 1, data.Total)
}
