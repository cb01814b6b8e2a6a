// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器
type Collector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRequestSize     *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	// 探测指标
	probeTotal          *prometheus.CounterVec
	probeDuration       *prometheus.HistogramVec
	pingDuration        *prometheus.HistogramVec
	officialStatusFetch *prometheus.CounterVec
	officialStatusDur   *prometheus.HistogramVec

	// 快照指标
	snapshotRefreshTotal    *prometheus.CounterVec
	snapshotRefreshDuration *prometheus.HistogramVec
	snapshotCoalescedTotal  *prometheus.CounterVec

	// 缓存指标
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	// 数据库指标
	dbConnectionsOpen *prometheus.GaugeVec
	dbConnectionsIdle *prometheus.GaugeVec
	dbQueryDuration   *prometheus.HistogramVec

	logger *zap.Logger
	mu     sync.RWMutex
}

// NewCollector 创建指标收集器
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	// HTTP 指标
	c.httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	c.httpRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_size_bytes",
			Help:      "HTTP request size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	c.httpResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_response_size_bytes",
			Help:      "HTTP response size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// 探测指标
	c.probeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probe_total",
			Help:      "Total number of provider probes run, by provider type and outcome status",
		},
		[]string{"provider_type", "status"},
	)

	c.probeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Provider probe end-to-end duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 6, 10, 20, 45},
		},
		[]string{"provider_type"},
	)

	c.pingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "endpoint_ping_duration_seconds",
			Help:      "Endpoint transport-level ping duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 8},
		},
		[]string{"provider_type"},
	)

	c.officialStatusFetch = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "official_status_fetch_total",
			Help:      "Total number of official vendor status-page fetches, by vendor and outcome",
		},
		[]string{"provider_type", "status"},
	)

	c.officialStatusDur = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "official_status_fetch_duration_seconds",
			Help:      "Official status-page fetch duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 15},
		},
		[]string{"provider_type"},
	)

	// 快照指标
	c.snapshotRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_refresh_total",
			Help:      "Total number of snapshot refresh batches executed, by scope kind and outcome",
		},
		[]string{"scope_kind", "status"},
	)

	c.snapshotRefreshDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_refresh_duration_seconds",
			Help:      "Snapshot refresh batch duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20, 45, 60},
		},
		[]string{"scope_kind"},
	)

	c.snapshotCoalescedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_coalesced_requests_total",
			Help:      "Total number of reads that joined an already-inflight refresh instead of starting a new one",
		},
		[]string{"scope_kind"},
	)

	// 缓存指标
	c.cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	c.cacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	// 数据库指标
	c.dbConnectionsOpen = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_open",
			Help:      "Number of open database connections",
		},
		[]string{"database"},
	)

	c.dbConnectionsIdle = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_idle",
			Help:      "Number of idle database connections",
		},
		[]string{"database"},
	)

	c.dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"database", "operation"},
	)

	logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// =============================================================================
// 🎯 HTTP 指标记录
// =============================================================================

// RecordHTTPRequest 记录 HTTP 请求
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration, requestSize, responseSize int64) {
	c.httpRequestsTotal.WithLabelValues(method, path, statusCode(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	c.httpRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	c.httpResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// =============================================================================
// 🔭 探测指标记录
// =============================================================================

// RecordProbe 记录一次 provider 探测结果
func (c *Collector) RecordProbe(providerType, status string, duration time.Duration) {
	c.probeTotal.WithLabelValues(providerType, status).Inc()
	c.probeDuration.WithLabelValues(providerType).Observe(duration.Seconds())
}

// RecordPing 记录一次端点 ping 延迟；latencyMs 为 nil 表示 ping 失败，不记录样本
func (c *Collector) RecordPing(providerType string, latencyMs *int) {
	if latencyMs == nil {
		return
	}
	c.pingDuration.WithLabelValues(providerType).Observe(float64(*latencyMs) / 1000.0)
}

// RecordOfficialStatusFetch 记录一次官方状态页抓取
func (c *Collector) RecordOfficialStatusFetch(providerType, status string, duration time.Duration) {
	c.officialStatusFetch.WithLabelValues(providerType, status).Inc()
	c.officialStatusDur.WithLabelValues(providerType).Observe(duration.Seconds())
}

// =============================================================================
// 📸 快照指标记录
// =============================================================================

// RecordSnapshotRefresh 记录一次快照刷新批次
func (c *Collector) RecordSnapshotRefresh(scopeKind, status string, duration time.Duration) {
	c.snapshotRefreshTotal.WithLabelValues(scopeKind, status).Inc()
	c.snapshotRefreshDuration.WithLabelValues(scopeKind).Observe(duration.Seconds())
}

// RecordSnapshotCoalesced 记录一次被合并到已在途刷新的读请求
func (c *Collector) RecordSnapshotCoalesced(scopeKind string) {
	c.snapshotCoalescedTotal.WithLabelValues(scopeKind).Inc()
}

// =============================================================================
// 💾 缓存指标记录
// =============================================================================

// RecordCacheHit 记录缓存命中
func (c *Collector) RecordCacheHit(cacheType string) {
	c.cacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss 记录缓存未命中
func (c *Collector) RecordCacheMiss(cacheType string) {
	c.cacheMisses.WithLabelValues(cacheType).Inc()
}

// =============================================================================
// 🗄️ 数据库指标记录
// =============================================================================

// RecordDBConnections 记录数据库连接数
func (c *Collector) RecordDBConnections(database string, open, idle int) {
	c.dbConnectionsOpen.WithLabelValues(database).Set(float64(open))
	c.dbConnectionsIdle.WithLabelValues(database).Set(float64(idle))
}

// RecordDBQuery 记录数据库查询
func (c *Collector) RecordDBQuery(database, operation string, duration time.Duration) {
	c.dbQueryDuration.WithLabelValues(database, operation).Observe(duration.Seconds())
}

// =============================================================================
// 🔧 辅助函数
// =============================================================================

// statusCode 将 HTTP 状态码转换为字符串
func statusCode(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
