// Package runtimectx holds the process-wide singletons the monitor needs —
// the vendor HTTP client cache, the official-status poller, and the
// background history poller — as one explicit struct constructed by
// cmd/checkcx's main and threaded into every other constructor. Nothing in
// this package lives behind a package-level var; a second Context is just
// as valid as the first, which is what makes the type testable.
package runtimectx

import (
	"context"

	"go.uber.org/zap"

	"github.com/check-cx/monitor/config"
	"github.com/check-cx/monitor/dashboard"
	"github.com/check-cx/monitor/internal/cache"
	"github.com/check-cx/monitor/officialstatus"
	"github.com/check-cx/monitor/probe"
	"github.com/check-cx/monitor/snapshot"
	"github.com/check-cx/monitor/store"
)

// Context bundles every long-lived, process-wide component the monitor
// needs outside of one HTTP request's lifetime.
type Context struct {
	Clients        *probe.ClientCache
	OfficialStatus *officialstatus.Poller
	Snapshots      *snapshot.Service
	Poller         *snapshot.BackgroundPoller
	Aggregator     *dashboard.Aggregator
}

// New wires a Context from already-opened storage handles. responseCache may
// be nil, which disables the secondary Redis cache in front of the dashboard
// aggregator.
func New(
	cfg *config.Config,
	configs *store.ConfigRepository,
	history *store.HistoryStore,
	responseCache *cache.Manager,
	logger *zap.Logger,
) *Context {
	clients := probe.NewClientCache()
	officialPoller := officialstatus.NewPoller(vendorEndpoints(cfg.OfficialStatus.Endpoints), cfg.OfficialStatus.IntervalDuration(), logger)
	snapshots := snapshot.NewService(history, clients, logger)
	agg := dashboard.NewAggregator(configs, snapshots, officialPoller, responseCache, cfg.Poll.IntervalDuration(), logger)
	poller := snapshot.NewBackgroundPoller(snapshots, agg.ScopeForBackgroundPoll, cfg.Poll.IntervalDuration(), logger)

	return &Context{
		Clients:        clients,
		OfficialStatus: officialPoller,
		Snapshots:      snapshots,
		Poller:         poller,
		Aggregator:     agg,
	}
}

// EnsureRunning starts the background poller and the official-status poller
// if they haven't been started yet. Idempotent — safe to call on every
// request path that happens to race startup.
func (c *Context) EnsureRunning(ctx context.Context) {
	c.OfficialStatus.EnsureRunning(ctx)
	c.Poller.EnsureRunning(ctx)
}

// Stop halts both background tickers. Safe to call multiple times.
func (c *Context) Stop() {
	c.OfficialStatus.Stop()
	c.Poller.Stop()
}

// vendorEndpoints converts the configured string-keyed endpoint map into the
// probe.ProviderType-keyed map officialstatus.NewPoller expects, silently
// dropping any key that isn't one of the three known provider types.
func vendorEndpoints(configured map[string]string) map[probe.ProviderType]string {
	endpoints := make(map[probe.ProviderType]string, len(configured))
	for k, v := range configured {
		switch probe.ProviderType(k) {
		case probe.ProviderOpenAI, probe.ProviderGemini, probe.ProviderAnthropic:
			endpoints[probe.ProviderType(k)] = v
		}
	}
	return endpoints
}
