package runtimectx

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/check-cx/monitor/config"
	"github.com/check-cx/monitor/probe"
	"github.com/check-cx/monitor/store"
)

func newTestContext(t *testing.T) (*Context, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	dialector := postgres.New(postgres.Config{Conn: mockDB})
	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.Poll.IntervalSeconds = 15
	cfg.OfficialStatus.Endpoints = nil // keep the poller from hitting the network in tests
	configs := store.NewConfigRepository(gormDB, zap.NewNop())
	history := store.NewHistoryStore(gormDB, zap.NewNop())

	return New(cfg, configs, history, nil, zap.NewNop()), mock
}

func TestNew_WiresEveryComponent(t *testing.T) {
	rc, _ := newTestContext(t)

	assert.NotNil(t, rc.Clients)
	assert.NotNil(t, rc.OfficialStatus)
	assert.NotNil(t, rc.Snapshots)
	assert.NotNil(t, rc.Poller)
	assert.NotNil(t, rc.Aggregator)
}

func TestVendorEndpoints_DropsUnknownProviderTypes(t *testing.T) {
	endpoints := vendorEndpoints(map[string]string{
		"anthropic": "https://status.anthropic.com/api/v2/summary.json",
		"bogus":     "https://example.com/status.json",
	})

	require.Len(t, endpoints, 1)
	assert.Equal(t, "https://status.anthropic.com/api/v2/summary.json", endpoints[probe.ProviderAnthropic])
}

func TestEnsureRunning_IsIdempotentAndStoppable(t *testing.T) {
	rc, mock := newTestContext(t)
	mock.ExpectQuery(`SELECT \* FROM "check_configs" WHERE enabled = \$1 ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "type", "endpoint", "model", "api_key",
			"enabled", "is_maintenance", "request_headers", "metadata", "group_name",
		}))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	rc.EnsureRunning(ctx)
	rc.EnsureRunning(ctx)

	assert.NotPanics(t, rc.Stop)
}
