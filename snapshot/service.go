package snapshot

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/check-cx/monitor/internal/ctxkeys"
	"github.com/check-cx/monitor/probe"
	"github.com/check-cx/monitor/store"
)

// scopeEntry is the per-scope cache cell: the last refresh's history, when it
// happened, and (while a refresh is running) the inflight future every
// concurrent caller coalesces onto.
type scopeEntry struct {
	mu         sync.Mutex
	history    HistorySnapshot
	lastPingAt time.Time
	inflight   chan struct{}
}

// Service orchestrates reads: per-scope request coalescing over the probe
// batch and history store, grounded on the teacher's mutex-guarded-map
// idiom in llm/health_monitor.go (HealthMonitor/QPSCounter).
type Service struct {
	history *store.HistoryStore
	clients *probe.ClientCache
	logger  *zap.Logger

	scopes sync.Map // string -> *scopeEntry
}

// NewService creates a snapshot service bound to the given history store and
// vendor client cache.
func NewService(history *store.HistoryStore, clients *probe.ClientCache, logger *zap.Logger) *Service {
	return &Service{history: history, clients: clients, logger: logger}
}

func (s *Service) entryFor(cacheKey string) *scopeEntry {
	v, _ := s.scopes.LoadOrStore(cacheKey, &scopeEntry{})
	return v.(*scopeEntry)
}

// LoadSnapshot returns the current history for scope, refreshing it first if
// refreshMode requires it. It never fails outward: a probe, store, or
// context failure simply yields whatever history is already cached (or
// empty, on a cold scope).
func (s *Service) LoadSnapshot(ctx context.Context, scope Scope, refreshMode RefreshMode) HistorySnapshot {
	if len(scope.Configs) == 0 {
		return HistorySnapshot{}
	}

	entry := s.entryFor(scope.CacheKey)

	switch refreshMode {
	case RefreshNever:
		return entry.snapshot()
	case RefreshMissing:
		if !entry.isEmpty() {
			return entry.snapshot()
		}
	case RefreshAlways:
		// unconditionally enters the refresh path below
	}

	return s.refresh(ctx, entry, scope)
}

// refresh implements the coalescing + freshness-window + refresh-procedure
// contract: at most one probe batch in flight per scope at any time.
func (s *Service) refresh(ctx context.Context, entry *scopeEntry, scope Scope) HistorySnapshot {
	entry.mu.Lock()
	if entry.inflight != nil {
		wait := entry.inflight
		entry.mu.Unlock()
		<-wait
		return entry.snapshot()
	}

	if len(entry.history) > 0 && time.Since(entry.lastPingAt) < scope.PollInterval {
		result := entry.history
		entry.mu.Unlock()
		return result
	}

	done := make(chan struct{})
	entry.inflight = done
	entry.mu.Unlock()

	defer func() {
		entry.mu.Lock()
		if entry.inflight == done {
			entry.inflight = nil
		}
		entry.mu.Unlock()
		close(done)
	}()

	ctx = ctxkeys.WithScope(ctx, scope.CacheKey)
	if _, ok := ctxkeys.TraceID(ctx); !ok {
		ctx = ctxkeys.WithTraceID(ctx, uuid.NewString())
	}

	results := probe.RunBatch(ctx, scope.Configs, s.clients)
	if err := s.history.Append(ctx, results); err != nil {
		fields := append([]zap.Field{zap.Error(err)}, correlationFields(ctx)...)
		s.logger.Warn("history append failed during refresh", fields...)
	}

	ids := make([]string, 0, len(scope.Configs))
	for _, cfg := range scope.Configs {
		ids = append(ids, cfg.ID)
	}
	fetched := s.history.Fetch(ctx, ids)

	history := make(HistorySnapshot, len(fetched))
	for id, items := range fetched {
		history[id] = items
	}

	entry.mu.Lock()
	entry.history = history
	entry.lastPingAt = time.Now()
	entry.mu.Unlock()

	return history
}

func (e *scopeEntry) snapshot() HistorySnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.history == nil {
		return HistorySnapshot{}
	}
	return e.history
}

func (e *scopeEntry) isEmpty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.history) == 0
}

// correlationFields pulls the scope key and trace id ctxkeys stashed on ctx
// back out as zap fields, so a refresh's log lines can be grep'd together.
func correlationFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if scope, ok := ctxkeys.Scope(ctx); ok {
		fields = append(fields, zap.String("scope", scope))
	}
	if traceID, ok := ctxkeys.TraceID(ctx); ok {
		fields = append(fields, zap.String("trace_id", traceID))
	}
	return fields
}
