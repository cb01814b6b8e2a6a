package store

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/check-cx/monitor/probe"
)

// ConfigRepository loads monitored-target configuration from the database.
type ConfigRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewConfigRepository creates a repository bound to db.
func NewConfigRepository(db *gorm.DB, logger *zap.Logger) *ConfigRepository {
	return &ConfigRepository{db: db, logger: logger}
}

// LoadEnabledConfigs returns every enabled target, ordered by id. On any
// database error it logs a warning and returns nil rather than propagating
// the error, since a transient read failure should degrade to "nothing to
// probe this cycle" rather than crash the poller.
func (r *ConfigRepository) LoadEnabledConfigs(ctx context.Context) []probe.ProviderConfig {
	var rows []CheckConfig
	err := r.db.WithContext(ctx).
		Where("enabled = ?", true).
		Order("id").
		Find(&rows).Error
	if err != nil {
		r.logger.Warn("failed to load check configs", zap.Error(err))
		return nil
	}

	configs := make([]probe.ProviderConfig, 0, len(rows))
	for _, row := range rows {
		configs = append(configs, toProviderConfig(row))
	}
	return configs
}

// LoadEnabledConfigsByGroup returns only the enabled targets in groupName.
func (r *ConfigRepository) LoadEnabledConfigsByGroup(ctx context.Context, groupName string) []probe.ProviderConfig {
	var rows []CheckConfig
	err := r.db.WithContext(ctx).
		Where("enabled = ? AND group_name = ?", true, groupName).
		Order("id").
		Find(&rows).Error
	if err != nil {
		r.logger.Warn("failed to load check configs for group", zap.String("group", groupName), zap.Error(err))
		return nil
	}

	configs := make([]probe.ProviderConfig, 0, len(rows))
	for _, row := range rows {
		configs = append(configs, toProviderConfig(row))
	}
	return configs
}

func toProviderConfig(row CheckConfig) probe.ProviderConfig {
	headers := make(map[string]string, len(row.RequestHeaders))
	for k, v := range row.RequestHeaders {
		headers[k] = v
	}
	metadata := make(map[string]any, len(row.Metadata))
	for k, v := range row.Metadata {
		metadata[k] = v
	}

	return probe.ProviderConfig{
		ID:             row.ID,
		Name:           row.Name,
		Type:           probe.ProviderType(row.Type),
		Endpoint:       row.Endpoint,
		Model:          row.Model,
		APIKey:         row.APIKey,
		IsMaintenance:  row.IsMaintenance,
		RequestHeaders: headers,
		Metadata:       metadata,
		GroupName:      row.GroupName,
	}
}
