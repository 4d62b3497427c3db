package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/kbm-attendance-api/internal/models"
)

const metricsNamespace = "kbm"

// MetricsService owns the Prometheus registry and keeps running totals for JSON snapshots.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	cacheLatency    prometheus.Histogram
	dbQueryDuration *prometheus.HistogramVec
	sessionsCreated prometheus.Counter
	attendanceRows  *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	dbQueryCount         uint64
	dbQueryDurationTotal uint64
}

// NewMetricsService registers the HTTP, cache, database and attendance collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "statistics_cache_lookups_total",
			Help:      "Statistics cache lookups by result",
		}, []string{"result"}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "statistics_cache_latency_seconds",
			Help:      "Latency of statistics cache reads and writes",
			Buckets:   prometheus.DefBuckets,
		}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "db_query_duration_seconds",
			Help:      "Duration of aggregation queries",
			Buckets:   prometheus.DefBuckets,
		}, []string{"query"}),
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sessions_created_total",
			Help:      "Class sessions recorded",
		}),
		attendanceRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "attendance_recorded_total",
			Help:      "Attendance rows recorded by status",
		}, []string{"status"}),
	}

	registry.MustRegister(
		m.requestDuration,
		m.requestTotal,
		m.cacheLookups,
		m.cacheLatency,
		m.dbQueryDuration,
		m.sessionsCreated,
		m.attendanceRows,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	return m
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheLookup records a statistics cache hit or miss.
func (m *MetricsService) RecordCacheLookup(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
	atomic.AddUint64(&m.cacheMissCount, 1)
}

// ObserveCacheWrite tracks the duration of cache writes.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
	atomic.AddUint64(&m.dbQueryCount, 1)
	atomic.AddUint64(&m.dbQueryDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordSession counts a created session and its attendance rows.
func (m *MetricsService) RecordSession(attendances []models.Attendance) {
	if m == nil {
		return
	}
	m.sessionsCreated.Inc()
	for _, attendance := range attendances {
		m.attendanceRows.WithLabelValues(string(attendance.Status)).Inc()
	}
}

// Snapshot returns aggregated metrics for the JSON metrics endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{GeneratedAt: time.Now().UTC()}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	dbCount := atomic.LoadUint64(&m.dbQueryCount)

	snapshot := models.SystemMetrics{
		CacheHits:     hits,
		CacheMisses:   misses,
		RequestsTotal: requests,
		DBQueryCount:  dbCount,
		Goroutines:    runtime.NumGoroutine(),
		GeneratedAt:   time.Now().UTC(),
	}
	if lookups := hits + misses; lookups > 0 {
		snapshot.CacheHitRatio = float64(hits) / float64(lookups)
	}
	if requests > 0 {
		snapshot.AverageRequestDurationMs = float64(atomic.LoadUint64(&m.requestDurationTotal)) / float64(requests) / float64(time.Millisecond)
	}
	if dbCount > 0 {
		snapshot.AverageDBQueryDurationMs = float64(atomic.LoadUint64(&m.dbQueryDurationTotal)) / float64(dbCount) / float64(time.Millisecond)
	}
	return snapshot
}
