package snapshot

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultScopeKey is a reserved scope key. The background poller does not
// use it: each tick it refreshes the scope its ScopeProvider returns, so a
// reader sharing that scope's cache key sees the freshness the poller keeps.
const DefaultScopeKey = "__background__"

// ScopeProvider supplies the background poller with the scope to refresh on
// each tick. It is re-evaluated every tick so newly enabled/disabled configs
// are picked up without a process restart.
type ScopeProvider func(ctx context.Context) Scope

// BackgroundPoller drives loadSnapshot(defaultScope, always) on an interval,
// independent of any HTTP reads. Reentrancy is prevented entirely by the
// Service's own per-scope coalescing; this type only owns the timer.
type BackgroundPoller struct {
	service  *Service
	scopeFor ScopeProvider
	interval time.Duration
	logger   *zap.Logger

	once   sync.Once
	cancel context.CancelFunc
}

// NewBackgroundPoller creates a poller that refreshes scopeFor's scope every
// interval via service.
func NewBackgroundPoller(service *Service, scopeFor ScopeProvider, interval time.Duration, logger *zap.Logger) *BackgroundPoller {
	return &BackgroundPoller{service: service, scopeFor: scopeFor, interval: interval, logger: logger}
}

// EnsureRunning starts the ticker loop and fires an immediate first run.
// Idempotent: subsequent calls are no-ops, matching the official-status
// poller's start-up contract so a hot config reload never double-schedules.
func (p *BackgroundPoller) EnsureRunning(ctx context.Context) {
	p.once.Do(func() {
		loopCtx, cancel := context.WithCancel(ctx)
		p.cancel = cancel
		go p.runOnce(loopCtx)
		go p.loop(loopCtx)
	})
}

// Stop cancels the background loop, if running.
func (p *BackgroundPoller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
}

func (p *BackgroundPoller) loop(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runOnce(ctx)
		}
	}
}

func (p *BackgroundPoller) runOnce(ctx context.Context) {
	scope := p.scopeFor(ctx)
	p.service.LoadSnapshot(ctx, scope, RefreshAlways)
}
