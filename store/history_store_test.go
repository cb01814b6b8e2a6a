package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/check-cx/monitor/probe"
)

func TestHistoryStore_Fetch_ViaProcedure(t *testing.T) {
	mockDB, mock, gormDB := setupMockDB(t)
	defer mockDB.Close()

	rows := sqlmock.NewRows([]string{"id", "config_id", "status", "latency_ms", "ping_latency_ms", "message", "checked_at"}).
		AddRow(2, "p1", "operational", 120, 45, "流式响应正常 (120 ms)", time.Now()).
		AddRow(1, "p1", "operational", 100, 40, "流式响应正常 (100 ms)", time.Now().Add(-time.Minute))

	mock.ExpectQuery(`SELECT \* FROM fetch_history\(\$1, \$2\)`).
		WillReturnRows(rows)

	store := NewHistoryStore(gormDB, zap.NewNop())
	result := store.Fetch(context.Background(), []string{"p1"})

	require.Contains(t, result, "p1")
	require.Len(t, result["p1"], 2)
	// newest-first, matching the DB's descending query order
	assert.Equal(t, 120, *result["p1"][0].LatencyMs)
	assert.Equal(t, 100, *result["p1"][1].LatencyMs)
}

func TestHistoryStore_Fetch_EmptyButNonNilAllowedIDsShortCircuits(t *testing.T) {
	mockDB, mock, gormDB := setupMockDB(t)
	defer mockDB.Close()

	store := NewHistoryStore(gormDB, zap.NewNop())
	result := store.Fetch(context.Background(), []string{})

	assert.Equal(t, map[string][]probe.CheckResult{}, result)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryStore_Fetch_FallsBackWhenProcedureMissing(t *testing.T) {
	mockDB, mock, gormDB := setupMockDB(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT \* FROM fetch_history\(\$1, \$2\)`).
		WillReturnError(errors.New(`ERROR: function fetch_history(text[], integer) does not exist`))

	mock.ExpectQuery(`SELECT "id" FROM "check_configs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	store := NewHistoryStore(gormDB, zap.NewNop())
	result := store.Fetch(context.Background(), nil)

	assert.NotNil(t, result)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryStore_Fetch_NonProcedureErrorReturnsEmpty(t *testing.T) {
	mockDB, mock, gormDB := setupMockDB(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT \* FROM fetch_history\(\$1, \$2\)`).
		WillReturnError(errors.New("connection reset by peer"))

	store := NewHistoryStore(gormDB, zap.NewNop())
	result := store.Fetch(context.Background(), []string{"p1"})

	assert.Empty(t, result)
}

func TestHistoryStore_Append_DropsMaintenanceResults(t *testing.T) {
	mockDB, mock, gormDB := setupMockDB(t)
	defer mockDB.Close()

	results := []probe.CheckResult{
		{ID: "p1", Status: probe.StatusOperational, CheckedAt: time.Now()},
		{ID: "p2", Status: probe.StatusMaintenance, CheckedAt: time.Now()},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "check_history"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	store := NewHistoryStore(gormDB, zap.NewNop())
	err := store.Append(context.Background(), results)
	require.NoError(t, err)
}

func TestHistoryStore_Append_AllMaintenanceIsNoOp(t *testing.T) {
	mockDB, _, gormDB := setupMockDB(t)
	defer mockDB.Close()

	results := []probe.CheckResult{
		{ID: "p1", Status: probe.StatusMaintenance, CheckedAt: time.Now()},
	}

	store := NewHistoryStore(gormDB, zap.NewNop())
	err := store.Append(context.Background(), results)
	require.NoError(t, err)
}

func TestIsMissingProcedure(t *testing.T) {
	assert.True(t, isMissingProcedure(errors.New("function fetch_history(text[], integer) does not exist"), "fetch_history"))
	assert.False(t, isMissingProcedure(errors.New("connection reset"), "fetch_history"))
}

func TestPqTextArray(t *testing.T) {
	assert.Equal(t, "{}", pqTextArray(nil))
	assert.Equal(t, `{"p1","p2"}`, pqTextArray([]string{"p1", "p2"}))
}
