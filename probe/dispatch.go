package probe

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/check-cx/monitor/internal/pool"
)

// DefaultBatchWorkers bounds how many probes run concurrently in one
// RunBatch call, independent of how many targets are configured.
const DefaultBatchWorkers = 32

// Probe runs the vendor-specific health check for cfg and, in parallel, a
// transport-level ping to the same endpoint. The ping always attaches to the
// result, regardless of the main probe's outcome.
func Probe(ctx context.Context, cfg ProviderConfig, clients *ClientCache) CheckResult {
	now := time.Now()

	if cfg.IsMaintenance {
		return CheckResult{
			ID:        cfg.ID,
			Name:      cfg.Name,
			Type:      cfg.Type,
			Endpoint:  cfg.Endpoint,
			Model:     cfg.Model,
			Status:    StatusMaintenance,
			CheckedAt: now,
			Message:   msgMaintenance,
			GroupName: cfg.GroupName,
		}
	}

	probeCtx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	var status HealthStatus
	var message string
	var latencyMs *int
	var pingMs *int

	g, gctx := errgroup.WithContext(probeCtx)
	g.Go(func() error {
		status, message, latencyMs = runVendorProbe(gctx, cfg, clients)
		return nil
	})
	g.Go(func() error {
		pingMs = MeasurePing(probeCtx, cfg.Endpoint)
		return nil
	})
	// Errors are never returned by either goroutine; both report their
	// outcome through the closed-over result variables instead.
	_ = g.Wait()

	return CheckResult{
		ID:            cfg.ID,
		Name:          cfg.Name,
		Type:          cfg.Type,
		Endpoint:      cfg.Endpoint,
		Model:         cfg.Model,
		Status:        status,
		LatencyMs:     latencyMs,
		PingLatencyMs: pingMs,
		CheckedAt:     now,
		Message:       message,
		GroupName:     cfg.GroupName,
	}
}

func runVendorProbe(ctx context.Context, cfg ProviderConfig, clients *ClientCache) (HealthStatus, string, *int) {
	switch cfg.Type {
	case ProviderOpenAI:
		return probeOpenAICompatible(ctx, cfg, clients)
	case ProviderGemini:
		return probeGemini(ctx, cfg, clients)
	case ProviderAnthropic:
		return probeAnthropic(ctx, cfg, clients)
	default:
		return StatusFailed, msgUnknownError, nil
	}
}

// RunBatch probes every config in configs, bounding concurrency to
// DefaultBatchWorkers via a shared goroutine pool, and returns results in
// the same order as configs.
func RunBatch(ctx context.Context, configs []ProviderConfig, clients *ClientCache) []CheckResult {
	results := make([]CheckResult, len(configs))

	workerPool := pool.NewGoroutinePool(pool.GoroutinePoolConfig{
		MaxWorkers:  DefaultBatchWorkers,
		QueueSize:   len(configs) + 1,
		IdleTimeout: pool.DefaultGoroutinePoolConfig().IdleTimeout,
	})
	defer workerPool.Close()

	var g errgroup.Group
	for i, cfg := range configs {
		i, cfg := i, cfg
		g.Go(func() error {
			return workerPool.SubmitWait(ctx, func(taskCtx context.Context) error {
				results[i] = Probe(taskCtx, cfg, clients)
				return nil
			})
		})
	}
	_ = g.Wait()

	return results
}
