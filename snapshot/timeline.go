package snapshot

import (
	"sort"
	"strings"
	"time"

	"github.com/check-cx/monitor/officialstatus"
	"github.com/check-cx/monitor/probe"
	"github.com/check-cx/monitor/store"
)

const msgMaintenance = "配置处于维护模式"

// BuildProviderTimelines turns a HistorySnapshot into the sorted per-target
// view the dashboard renders: one timeline per probed target plus a
// synthesized placeholder for every maintenance target, joined against
// config metadata (name/type/model/endpoint/group) and the cached official
// status for the head item.
func BuildProviderTimelines(
	history HistorySnapshot,
	activeConfigs []probe.ProviderConfig,
	maintenanceConfigs []probe.ProviderConfig,
	officialPoller *officialstatus.Poller,
	now time.Time,
) []ProviderTimeline {
	configsByID := make(map[string]probe.ProviderConfig, len(activeConfigs)+len(maintenanceConfigs))
	for _, cfg := range activeConfigs {
		configsByID[cfg.ID] = cfg
	}
	for _, cfg := range maintenanceConfigs {
		configsByID[cfg.ID] = cfg
	}

	timelines := make([]ProviderTimeline, 0, len(activeConfigs)+len(maintenanceConfigs))

	for id, items := range history {
		if len(items) == 0 {
			continue
		}
		cfg := configsByID[id]
		enriched := enrichItems(items, cfg)
		sort.Slice(enriched, func(i, j int) bool { return enriched[i].CheckedAt.After(enriched[j].CheckedAt) })
		if len(enriched) > store.HistoryLimit {
			enriched = enriched[:store.HistoryLimit]
		}

		latest := enriched[0]
		if officialPoller != nil {
			if status, ok := officialPoller.GetOfficialStatus(cfg.Type); ok {
				latest.OfficialStatus = &status
			}
		}

		timelines = append(timelines, ProviderTimeline{
			ID:        id,
			Name:      cfg.Name,
			Items:     enriched,
			Latest:    latest,
			GroupName: cfg.GroupName,
		})
	}

	for _, cfg := range maintenanceConfigs {
		timelines = append(timelines, ProviderTimeline{
			ID:    cfg.ID,
			Name:  cfg.Name,
			Items: []probe.CheckResult{},
			Latest: probe.CheckResult{
				ID:        cfg.ID,
				Name:      cfg.Name,
				Type:      cfg.Type,
				Endpoint:  cfg.Endpoint,
				Model:     cfg.Model,
				Status:    probe.StatusMaintenance,
				CheckedAt: now,
				Message:   msgMaintenance,
				GroupName: cfg.GroupName,
			},
			GroupName: cfg.GroupName,
		})
	}

	sort.Slice(timelines, func(i, j int) bool {
		return strings.ToLower(timelines[i].Latest.Name) < strings.ToLower(timelines[j].Latest.Name)
	})

	return timelines
}

func enrichItems(items []probe.CheckResult, cfg probe.ProviderConfig) []probe.CheckResult {
	enriched := make([]probe.CheckResult, len(items))
	for i, item := range items {
		item.Name = cfg.Name
		item.Type = cfg.Type
		item.Endpoint = cfg.Endpoint
		item.Model = cfg.Model
		item.GroupName = cfg.GroupName
		enriched[i] = item
	}
	return enriched
}
