// Package snapshot coalesces concurrent refresh requests per scope, drives
// the probe batch + history round-trip, and builds the per-target timelines
// the dashboard renders.
package snapshot

import (
	"time"

	"github.com/check-cx/monitor/probe"
)

// RefreshMode is the caller-supplied policy governing whether a read may
// trigger a probe batch.
type RefreshMode string

const (
	RefreshAlways  RefreshMode = "always"
	RefreshMissing RefreshMode = "missing"
	RefreshNever   RefreshMode = "never"
)

// Scope identifies one coalesced refresh lane: a cache key plus the active
// configs it should probe when it refreshes.
type Scope struct {
	CacheKey        string
	Configs         []probe.ProviderConfig
	PollInterval    time.Duration
	MaintenanceCfgs []probe.ProviderConfig
}

// HistorySnapshot maps config id to its ordered (newest-first) history.
type HistorySnapshot map[string][]probe.CheckResult

// ProviderTimeline is the aggregated per-target view the dashboard renders.
type ProviderTimeline struct {
	ID        string
	Name      string
	Items     []probe.CheckResult
	Latest    probe.CheckResult
	GroupName string
}
