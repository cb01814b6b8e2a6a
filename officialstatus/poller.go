package officialstatus

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/check-cx/monitor/internal/tlsutil"
	"github.com/check-cx/monitor/probe"
)

// Poller periodically fetches every configured vendor's status page and
// caches one OfficialStatusResult per provider type. Safe for concurrent use.
type Poller struct {
	endpoints map[probe.ProviderType]string
	interval  time.Duration
	logger    *zap.Logger
	client    *http.Client

	mu    sync.RWMutex
	cache map[probe.ProviderType]probe.OfficialStatusResult

	running atomic.Bool
	started atomic.Bool
	stop    chan struct{}
}

// NewPoller creates a poller for the given vendor status-page endpoints.
func NewPoller(endpoints map[probe.ProviderType]string, interval time.Duration, logger *zap.Logger) *Poller {
	return &Poller{
		endpoints: endpoints,
		interval:  interval,
		logger:    logger,
		client:    tlsutil.SecureHTTPClient(FetchTimeout),
		cache:     make(map[probe.ProviderType]probe.OfficialStatusResult),
		stop:      make(chan struct{}),
	}
}

// EnsureRunning starts the background ticker if it hasn't been started yet
// on this poller instance, and kicks off an immediate first run. Idempotent.
func (p *Poller) EnsureRunning(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	go p.runOnce(ctx)
	go p.loop(ctx)
}

func (p *Poller) loop(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case <-ticker.C:
			p.runOnce(ctx)
		}
	}
}

// Stop halts the background ticker. Safe to call multiple times.
func (p *Poller) Stop() {
	if p.started.Load() {
		select {
		case <-p.stop:
		default:
			close(p.stop)
		}
	}
}

// runOnce fetches every vendor's status page once. If a run is already in
// flight, this tick is skipped rather than queued.
func (p *Poller) runOnce(ctx context.Context) {
	if !p.running.CompareAndSwap(false, true) {
		return
	}
	defer p.running.Store(false)

	var wg sync.WaitGroup
	for providerType, endpoint := range p.endpoints {
		wg.Add(1)
		go func(pt probe.ProviderType, url string) {
			defer wg.Done()
			result := p.fetchOne(ctx, url)
			p.mu.Lock()
			p.cache[pt] = result
			p.mu.Unlock()
		}(providerType, endpoint)
	}
	wg.Wait()
}

func (p *Poller) fetchOne(ctx context.Context, endpoint string) probe.OfficialStatusResult {
	now := time.Now()
	fetchCtx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return probe.OfficialStatusResult{Status: string(StatusUnknown), Message: msgCheckFailed, CheckedAt: now}
	}
	req.Header.Set("User-Agent", "check-cx/0.1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(fetchCtx.Err(), context.DeadlineExceeded) {
			return probe.OfficialStatusResult{Status: string(StatusUnknown), Message: msgCheckTimeout, CheckedAt: now}
		}
		return probe.OfficialStatusResult{Status: string(StatusUnknown), Message: msgCheckFailed, CheckedAt: now}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return probe.OfficialStatusResult{Status: string(StatusUnknown), Message: msgHTTPStatus(resp.StatusCode), CheckedAt: now}
	}

	var payload statusPagePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return probe.OfficialStatusResult{Status: string(StatusUnknown), Message: msgCheckFailed, CheckedAt: now}
	}

	return parseStatusPage(payload, now)
}

// GetOfficialStatus returns the current cached result for providerType, if
// any has been fetched yet.
func (p *Poller) GetOfficialStatus(providerType probe.ProviderType) (probe.OfficialStatusResult, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	result, ok := p.cache[providerType]
	return result, ok
}
