package store

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/check-cx/monitor/probe"
)

// HistoryLimit bounds how many check results are retained per target.
const HistoryLimit = 60

// HistoryStore persists and retrieves bounded per-target probe history.
// The primary read/prune path calls Postgres stored procedures
// (fetch_history, prune_history); any database that lacks them (SQLite or
// MySQL, or a Postgres instance mid-migration) falls back to an equivalent
// raw gorm query, detected by the procedure name appearing in the error.
type HistoryStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewHistoryStore creates a store bound to db.
func NewHistoryStore(db *gorm.DB, logger *zap.Logger) *HistoryStore {
	return &HistoryStore{db: db, logger: logger}
}

// Fetch returns, for each id in allowedIDs, its most recent HistoryLimit
// results ordered newest-first. A nil allowedIDs loads every config with
// history; a non-nil but empty allowedIDs short-circuits to an empty map
// without touching the database.
func (s *HistoryStore) Fetch(ctx context.Context, allowedIDs []string) map[string][]probe.CheckResult {
	if allowedIDs != nil && len(allowedIDs) == 0 {
		return map[string][]probe.CheckResult{}
	}

	rows, err := s.fetchViaProcedure(ctx, allowedIDs)
	if err != nil {
		if !isMissingProcedure(err, "fetch_history") {
			s.logger.Warn("fetch_history failed", zap.Error(err))
			return map[string][]probe.CheckResult{}
		}
		rows, err = s.fetchViaRawQuery(ctx, allowedIDs)
		if err != nil {
			s.logger.Warn("history fallback query failed", zap.Error(err))
			return map[string][]probe.CheckResult{}
		}
	}

	byConfig := make(map[string][]probe.CheckResult)
	for _, row := range rows {
		byConfig[row.ConfigID] = append(byConfig[row.ConfigID], toCheckResult(row))
	}
	return byConfig
}

func (s *HistoryStore) fetchViaProcedure(ctx context.Context, allowedIDs []string) ([]CheckHistory, error) {
	var rows []CheckHistory
	err := s.db.WithContext(ctx).
		Raw("SELECT * FROM fetch_history(?, ?)", pqTextArray(allowedIDs), HistoryLimit).
		Scan(&rows).Error
	return rows, err
}

func (s *HistoryStore) fetchViaRawQuery(ctx context.Context, allowedIDs []string) ([]CheckHistory, error) {
	var configIDs []string
	if len(allowedIDs) == 0 {
		if err := s.db.WithContext(ctx).Model(&CheckConfig{}).Pluck("id", &configIDs).Error; err != nil {
			return nil, err
		}
	} else {
		configIDs = allowedIDs
	}

	all := make([]CheckHistory, 0, len(configIDs)*HistoryLimit)
	for _, id := range configIDs {
		var rows []CheckHistory
		err := s.db.WithContext(ctx).
			Where("config_id = ?", id).
			Order("checked_at DESC").
			Limit(HistoryLimit).
			Find(&rows).Error
		if err != nil {
			return nil, err
		}
		all = append(all, rows...)
	}
	return all, nil
}

// Append inserts the given results as new history rows and then prunes
// every target back to HistoryLimit rows; a prune failure is logged and not
// returned, and an insert failure returns before pruning. Results whose
// status is "maintenance" are dropped rather than recorded: a maintenance
// window is a configuration state, not a measurement worth keeping in the
// history ring.
func (s *HistoryStore) Append(ctx context.Context, results []probe.CheckResult) error {
	rows := make([]CheckHistory, 0, len(results))
	for _, r := range results {
		if r.Status == probe.StatusMaintenance {
			continue
		}
		rows = append(rows, CheckHistory{
			ConfigID:      r.ID,
			Status:        string(r.Status),
			LatencyMs:     r.LatencyMs,
			PingLatencyMs: r.PingLatencyMs,
			Message:       r.Message,
			CheckedAt:     r.CheckedAt,
		})
	}
	if len(rows) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return err
	}
	if err := s.Prune(ctx); err != nil {
		s.logger.Warn("history prune failed", zap.Error(err))
	}
	return nil
}

// Prune trims every target's history back down to HistoryLimit rows.
func (s *HistoryStore) Prune(ctx context.Context) error {
	err := s.db.WithContext(ctx).Exec("SELECT prune_history(?)", HistoryLimit).Error
	if err == nil {
		return nil
	}
	if !isMissingProcedure(err, "prune_history") {
		return err
	}
	return s.pruneViaRawQuery(ctx)
}

func (s *HistoryStore) pruneViaRawQuery(ctx context.Context) error {
	var configIDs []string
	if err := s.db.WithContext(ctx).Model(&CheckHistory{}).Distinct().Pluck("config_id", &configIDs).Error; err != nil {
		return err
	}

	for _, id := range configIDs {
		var keepIDs []uint
		err := s.db.WithContext(ctx).Model(&CheckHistory{}).
			Where("config_id = ?", id).
			Order("checked_at DESC").
			Limit(HistoryLimit).
			Pluck("id", &keepIDs).Error
		if err != nil {
			return err
		}
		if len(keepIDs) == 0 {
			continue
		}
		err = s.db.WithContext(ctx).
			Where("config_id = ? AND id NOT IN ?", id, keepIDs).
			Delete(&CheckHistory{}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func isMissingProcedure(err error, name string) bool {
	return strings.Contains(strings.ToLower(err.Error()), strings.ToLower(name))
}

// pqTextArray formats a Go string slice as a Postgres text[] literal.
func pqTextArray(values []string) string {
	if len(values) == 0 {
		return "{}"
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	}
	return "{" + strings.Join(quoted, ",") + "}"
}

func toCheckResult(row CheckHistory) probe.CheckResult {
	return probe.CheckResult{
		ID:            row.ConfigID,
		Status:        probe.HealthStatus(row.Status),
		LatencyMs:     row.LatencyMs,
		PingLatencyMs: row.PingLatencyMs,
		CheckedAt:     row.CheckedAt,
		Message:       row.Message,
	}
}

