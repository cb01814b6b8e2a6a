// Package store persists monitored-target configuration and bounded probe
// history, backed by gorm with a Postgres-primary / SQLite-fallback schema.
package store

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// JSONStringMap is a gorm-compatible column type for a flat string map,
// stored as a JSON text column (works identically on postgres/mysql/sqlite).
type JSONStringMap map[string]string

func (m JSONStringMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	return string(b), err
}

func (m *JSONStringMap) Scan(value any) error {
	if value == nil {
		*m = JSONStringMap{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("store: unsupported scan type for JSONStringMap")
	}
	if len(raw) == 0 {
		*m = JSONStringMap{}
		return nil
	}
	return json.Unmarshal(raw, m)
}

// JSONAnyMap is the same idea for arbitrary metadata values.
type JSONAnyMap map[string]any

func (m JSONAnyMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	return string(b), err
}

func (m *JSONAnyMap) Scan(value any) error {
	if value == nil {
		*m = JSONAnyMap{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("store: unsupported scan type for JSONAnyMap")
	}
	if len(raw) == 0 {
		*m = JSONAnyMap{}
		return nil
	}
	return json.Unmarshal(raw, m)
}

// CheckConfig is one monitored target as persisted in check_configs.
type CheckConfig struct {
	ID             string        `gorm:"column:id;primaryKey;size:64" json:"id"`
	Name           string        `gorm:"column:name;size:200;not null" json:"name"`
	Type           string        `gorm:"column:type;size:32;not null" json:"type"`
	Endpoint       string        `gorm:"column:endpoint;size:500" json:"endpoint"`
	Model          string        `gorm:"column:model;size:200" json:"model"`
	APIKey         string        `gorm:"column:api_key;size:500" json:"-"`
	Enabled        bool          `gorm:"column:enabled;default:true" json:"enabled"`
	IsMaintenance  bool          `gorm:"column:is_maintenance;default:false" json:"is_maintenance"`
	RequestHeaders JSONStringMap `gorm:"column:request_headers;type:text" json:"request_headers"`
	Metadata       JSONAnyMap    `gorm:"column:metadata;type:text" json:"metadata"`
	GroupName      string        `gorm:"column:group_name;size:200;index" json:"group_name"`
	CreatedAt      time.Time     `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"column:updated_at" json:"updated_at"`
}

func (CheckConfig) TableName() string { return "check_configs" }

// CheckHistory is one probe outcome as persisted in check_history.
type CheckHistory struct {
	ID            uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ConfigID      string    `gorm:"column:config_id;size:64;not null;index:idx_history_config" json:"config_id"`
	Status        string    `gorm:"column:status;size:32;not null" json:"status"`
	LatencyMs     *int      `gorm:"column:latency_ms" json:"latency_ms"`
	PingLatencyMs *int      `gorm:"column:ping_latency_ms" json:"ping_latency_ms"`
	Message       string    `gorm:"column:message;size:500" json:"message"`
	CheckedAt     time.Time `gorm:"column:checked_at;index:idx_history_config" json:"checked_at"`
}

func (CheckHistory) TableName() string { return "check_history" }
