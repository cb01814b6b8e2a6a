package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/check-cx/monitor/internal/cache"
	"github.com/check-cx/monitor/officialstatus"
	"github.com/check-cx/monitor/probe"
	"github.com/check-cx/monitor/snapshot"
	"github.com/check-cx/monitor/store"
)

// Aggregator composes the config repository, snapshot service, and
// official-status poller into the dashboard and group read paths, with an
// optional Redis-backed secondary cache in front of the in-process one.
type Aggregator struct {
	configs        *store.ConfigRepository
	snapshots      *snapshot.Service
	officialPoller *officialstatus.Poller
	responseCache  *cache.Manager // nil disables the secondary cache
	pollInterval   time.Duration
	logger         *zap.Logger
}

// NewAggregator creates an aggregator. responseCache may be nil, in which
// case the secondary Redis cache is skipped and every read goes straight to
// the snapshot service.
func NewAggregator(
	configs *store.ConfigRepository,
	snapshots *snapshot.Service,
	officialPoller *officialstatus.Poller,
	responseCache *cache.Manager,
	pollInterval time.Duration,
	logger *zap.Logger,
) *Aggregator {
	return &Aggregator{
		configs:        configs,
		snapshots:      snapshots,
		officialPoller: officialPoller,
		responseCache:  responseCache,
		pollInterval:   pollInterval,
		logger:         logger,
	}
}

// LoadDashboardData returns the full dashboard view across every enabled
// config. A config-load failure degrades to an empty dashboard with
// total=0, per the failure semantics in the design.
func (a *Aggregator) LoadDashboardData(ctx context.Context, refreshMode snapshot.RefreshMode) DashboardData {
	scope := a.ScopeForBackgroundPoll(ctx)
	active, maintenance := scope.Configs, scope.MaintenanceCfgs

	var cached DashboardData
	if a.responseCache != nil {
		if err := a.responseCache.GetJSON(ctx, scope.CacheKey, &cached); err == nil {
			return cached
		}
	}

	history := a.snapshots.LoadSnapshot(ctx, scope, refreshMode)
	timelines := snapshot.BuildProviderTimelines(history, active, maintenance, a.officialPoller, time.Now())

	data := DashboardData{
		ProviderTimelines: renderTimelines(timelines),
		GroupedTimelines:  groupTimelines(timelines),
		LastUpdated:       latestCheckedAt(timelines),
		Total:             len(timelines),
		PollIntervalLabel: pollIntervalLabel(a.pollInterval),
		PollIntervalMs:    a.pollInterval.Milliseconds(),
		GeneratedAt:       time.Now(),
	}

	if a.responseCache != nil {
		if err := a.responseCache.SetJSON(ctx, scope.CacheKey, data, a.pollInterval); err != nil {
			a.logger.Warn("dashboard response cache write failed", zap.Error(err))
		}
	}

	return data
}

// ScopeForBackgroundPoll returns the scope covering every enabled,
// non-maintenance config, using the same cache key LoadDashboardData
// computes — so a dashboard request arriving inside the freshness window
// reuses the background poller's own refresh instead of triggering another.
func (a *Aggregator) ScopeForBackgroundPoll(ctx context.Context) snapshot.Scope {
	configs := a.configs.LoadEnabledConfigs(ctx)
	active, maintenance := splitByMaintenance(configs)
	cacheKey := buildCacheKey("dashboard", a.pollInterval, idsOf(active))
	return snapshot.Scope{CacheKey: cacheKey, Configs: active, PollInterval: a.pollInterval, MaintenanceCfgs: maintenance}
}

// LoadGroupDashboardData returns the view scoped to groupName, or nil if no
// enabled config belongs to that group. UngroupedSentinel selects configs
// with an absent groupName.
func (a *Aggregator) LoadGroupDashboardData(ctx context.Context, groupName string, refreshMode snapshot.RefreshMode) *GroupDashboardData {
	configs := a.configs.LoadEnabledConfigs(ctx)
	matched := filterByGroup(configs, groupName)
	if len(matched) == 0 {
		return nil
	}
	active, maintenance := splitByMaintenance(matched)

	cacheKey := fmt.Sprintf("group:%s:%d:%s", groupName, a.pollInterval.Milliseconds(), strings.Join(idsOf(active), "|"))

	var cached GroupDashboardData
	if a.responseCache != nil {
		if err := a.responseCache.GetJSON(ctx, cacheKey, &cached); err == nil {
			return &cached
		}
	}

	scope := snapshot.Scope{CacheKey: cacheKey, Configs: active, PollInterval: a.pollInterval, MaintenanceCfgs: maintenance}
	history := a.snapshots.LoadSnapshot(ctx, scope, refreshMode)
	timelines := snapshot.BuildProviderTimelines(history, active, maintenance, a.officialPoller, time.Now())

	displayName := groupName
	if groupName == UngroupedSentinel {
		displayName = ungroupedDisplayName
	}

	data := GroupDashboardData{
		GroupName:         groupName,
		DisplayName:       displayName,
		ProviderTimelines: renderTimelines(timelines),
		LastUpdated:       latestCheckedAt(timelines),
		Total:             len(timelines),
		PollIntervalLabel: pollIntervalLabel(a.pollInterval),
		PollIntervalMs:    a.pollInterval.Milliseconds(),
		GeneratedAt:       time.Now(),
	}

	if a.responseCache != nil {
		if err := a.responseCache.SetJSON(ctx, cacheKey, data, a.pollInterval); err != nil {
			a.logger.Warn("group response cache write failed", zap.Error(err))
		}
	}

	return &data
}

func splitByMaintenance(configs []probe.ProviderConfig) (active, maintenance []probe.ProviderConfig) {
	for _, cfg := range configs {
		if cfg.IsMaintenance {
			maintenance = append(maintenance, cfg)
		} else {
			active = append(active, cfg)
		}
	}
	return active, maintenance
}

func filterByGroup(configs []probe.ProviderConfig, groupName string) []probe.ProviderConfig {
	matched := make([]probe.ProviderConfig, 0, len(configs))
	for _, cfg := range configs {
		if groupName == UngroupedSentinel {
			if cfg.GroupName == "" {
				matched = append(matched, cfg)
			}
			continue
		}
		if cfg.GroupName == groupName {
			matched = append(matched, cfg)
		}
	}
	return matched
}

func idsOf(configs []probe.ProviderConfig) []string {
	ids := make([]string, 0, len(configs))
	for _, cfg := range configs {
		ids = append(ids, cfg.ID)
	}
	sort.Strings(ids)
	return ids
}

func buildCacheKey(prefix string, interval time.Duration, ids []string) string {
	if len(ids) == 0 {
		return fmt.Sprintf("%s:%d:__empty__", prefix, interval.Milliseconds())
	}
	return fmt.Sprintf("%s:%d:%s", prefix, interval.Milliseconds(), strings.Join(ids, "|"))
}

func pollIntervalLabel(interval time.Duration) string {
	return fmt.Sprintf("%ds", int(interval.Seconds()))
}

// groupTimelines buckets timelines by groupName: named groups sorted
// lexicographically first, then a single ungrouped bucket last.
func groupTimelines(timelines []snapshot.ProviderTimeline) []GroupedProviderTimelines {
	named := make(map[string][]snapshot.ProviderTimeline)
	var ungrouped []snapshot.ProviderTimeline

	for _, tl := range timelines {
		if tl.GroupName == "" {
			ungrouped = append(ungrouped, tl)
			continue
		}
		named[tl.GroupName] = append(named[tl.GroupName], tl)
	}

	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	sort.Strings(names)

	groups := make([]GroupedProviderTimelines, 0, len(names)+1)
	for _, name := range names {
		groups = append(groups, GroupedProviderTimelines{
			GroupName:   name,
			DisplayName: name,
			Timelines:   renderTimelines(named[name]),
		})
	}
	if len(ungrouped) > 0 {
		groups = append(groups, GroupedProviderTimelines{
			GroupName:   UngroupedSentinel,
			DisplayName: ungroupedDisplayName,
			Timelines:   renderTimelines(ungrouped),
		})
	}
	return groups
}

func latestCheckedAt(timelines []snapshot.ProviderTimeline) *time.Time {
	var newest time.Time
	found := false
	for _, tl := range timelines {
		if !found || tl.Latest.CheckedAt.After(newest) {
			newest = tl.Latest.CheckedAt
			found = true
		}
	}
	if !found {
		return nil
	}
	return &newest
}

func renderTimelines(timelines []snapshot.ProviderTimeline) []ProviderTimelineView {
	views := make([]ProviderTimelineView, 0, len(timelines))
	for _, tl := range timelines {
		items := make([]ItemView, 0, len(tl.Items))
		for _, item := range tl.Items {
			items = append(items, renderItem(item))
		}
		views = append(views, ProviderTimelineView{
			ID:        tl.ID,
			Name:      tl.Name,
			Items:     items,
			Latest:    renderItem(tl.Latest),
			GroupName: tl.GroupName,
		})
	}
	return views
}

func renderItem(r probe.CheckResult) ItemView {
	view := ItemView{
		ID:            r.ID,
		Name:          r.Name,
		Type:          string(r.Type),
		Endpoint:      r.Endpoint,
		Model:         r.Model,
		Status:        string(r.Status),
		LatencyMs:     r.LatencyMs,
		PingLatencyMs: r.PingLatencyMs,
		CheckedAt:     r.CheckedAt,
		Message:       r.Message,
		GroupName:     r.GroupName,
	}
	if r.OfficialStatus != nil {
		view.OfficialStatus = &OfficialStatusView{
			Status:             r.OfficialStatus.Status,
			Message:            r.OfficialStatus.Message,
			CheckedAt:          r.OfficialStatus.CheckedAt,
			AffectedComponents: r.OfficialStatus.AffectedComponents,
		}
	}
	return view
}
