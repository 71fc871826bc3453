package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/dept-calendar-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	mutations        *prometheus.CounterVec
	conflictsDenied  prometheus.Counter
	baseEvents       prometheus.Gauge
	expandedEvents   prometheus.Gauge
	persistDuration  *prometheus.HistogramVec
	persistFailures  *prometheus.CounterVec
	dbQueryDuration  *prometheus.HistogramVec
	backupsCompleted prometheus.Counter

	requestCount         uint64
	requestDurationTotal uint64
	mutationCount        uint64
	conflictCount        uint64
	persistCount         uint64
	persistFailureCount  uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "calendar_store_mutations_total",
		Help: "Event store operations by outcome",
	}, []string{"operation", "outcome"})

	conflictsDenied := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "calendar_conflicts_rejected_total",
		Help: "Add or update attempts rejected because of a time conflict",
	})

	baseEvents := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "calendar_base_events",
		Help: "Number of stored base events",
	})

	expandedEvents := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "calendar_expanded_events",
		Help: "Number of events after recurrence expansion",
	})

	persistDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "calendar_persist_duration_seconds",
		Help:    "Duration of snapshot writes",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend"})

	persistFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "calendar_persist_failures_total",
		Help: "Failed snapshot writes",
	}, []string{"backend"})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	backupsCompleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "calendar_backups_total",
		Help: "Completed backup runs",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, mutations, conflictsDenied, baseEvents, expandedEvents,
		persistDuration, persistFailures, dbQueryDuration, backupsCompleted, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:         registry,
		handler:          handler,
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		mutations:        mutations,
		conflictsDenied:  conflictsDenied,
		baseEvents:       baseEvents,
		expandedEvents:   expandedEvents,
		persistDuration:  persistDuration,
		persistFailures:  persistFailures,
		dbQueryDuration:  dbQueryDuration,
		backupsCompleted: backupsCompleted,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
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

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordMutation counts a store operation. A "conflict" outcome also bumps the
// rejected-conflict counter.
func (m *MetricsService) RecordMutation(operation, outcome string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(operation, outcome).Inc()
	atomic.AddUint64(&m.mutationCount, 1)
	if outcome == outcomeConflict {
		m.conflictsDenied.Inc()
		atomic.AddUint64(&m.conflictCount, 1)
	}
}

// SetEventCounts updates the collection size gauges.
func (m *MetricsService) SetEventCounts(base, expanded int) {
	if m == nil {
		return
	}
	m.baseEvents.Set(float64(base))
	m.expandedEvents.Set(float64(expanded))
}

// ObservePersist records a snapshot write.
func (m *MetricsService) ObservePersist(backend string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.persistDuration.WithLabelValues(backend).Observe(duration.Seconds())
	atomic.AddUint64(&m.persistCount, 1)
	if err != nil {
		m.persistFailures.WithLabelValues(backend).Inc()
		atomic.AddUint64(&m.persistFailureCount, 1)
	}
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// RecordBackup counts a completed backup.
func (m *MetricsService) RecordBackup() {
	if m == nil {
		return
	}
	m.backupsCompleted.Inc()
}

// Snapshot returns aggregated metrics suitable for the metrics summary endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		Mutations:                atomic.LoadUint64(&m.mutationCount),
		ConflictsRejected:        atomic.LoadUint64(&m.conflictCount),
		PersistWrites:            atomic.LoadUint64(&m.persistCount),
		PersistFailures:          atomic.LoadUint64(&m.persistFailureCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
