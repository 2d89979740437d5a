package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// MetricsService encapsulates Prometheus instrumentation and keeps a few
// counters readable by the readiness probe.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	persistenceWrite *prometheus.HistogramVec
	persistenceDrops *prometheus.CounterVec
	outboxRejected   prometheus.Counter
	cacheLatency     *prometheus.HistogramVec
	delinquentDebt   prometheus.Gauge
	activeStudents   prometheus.Gauge
	feesGenerated    prometheus.Counter

	persistedCount uint64
	failedCount    uint64
	droppedCount   uint64
	requestCount   uint64
}

// PersistenceStats summarises remote write outcomes since start.
type PersistenceStats struct {
	Persisted uint64 `json:"persisted"`
	Failed    uint64 `json:"failed"`
	Dropped   uint64 `json:"dropped"`
	Requests  uint64 `json:"requests"`
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

	persistenceWrite := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gym_persistence_write_seconds",
		Help:    "Duration of remote persistence writes",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "outcome"})

	persistenceDrops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gym_persistence_dropped_total",
		Help: "Write intents abandoned after their last attempt",
	}, []string{"operation"})

	outboxRejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gym_outbox_rejected_total",
		Help: "Write intents refused by a full or stopped outbox",
	})

	cacheLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gym_snapshot_cache_seconds",
		Help:    "Latency of local snapshot cache operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "outcome"})

	delinquentDebt := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gym_delinquent_debt",
		Help: "Outstanding balance owed by active delinquent students",
	})

	activeStudents := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gym_active_students",
		Help: "Number of active students",
	})

	feesGenerated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gym_fees_generated_total",
		Help: "Fees created by the fee generator",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, persistenceWrite, persistenceDrops, outboxRejected,
		cacheLatency, delinquentDebt, activeStudents, feesGenerated, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		persistenceWrite: persistenceWrite,
		persistenceDrops: persistenceDrops,
		outboxRejected:   outboxRejected,
		cacheLatency:     cacheLatency,
		delinquentDebt:   delinquentDebt,
		activeStudents:   activeStudents,
		feesGenerated:    feesGenerated,
	}
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

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
}

// ObservePersistence records the outcome of one remote write attempt.
func (m *MetricsService) ObservePersistence(operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		atomic.AddUint64(&m.failedCount, 1)
	} else {
		atomic.AddUint64(&m.persistedCount, 1)
	}
	m.persistenceWrite.WithLabelValues(operation, outcome).Observe(duration.Seconds())
}

// RecordPersistenceDrop counts a write intent that will not be retried.
func (m *MetricsService) RecordPersistenceDrop(operation string) {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.droppedCount, 1)
	m.persistenceDrops.WithLabelValues(operation).Inc()
}

// RecordOutboxRejected counts an intent the outbox refused.
func (m *MetricsService) RecordOutboxRejected() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.droppedCount, 1)
	m.outboxRejected.Inc()
}

// ObserveCache records a snapshot cache load or save.
func (m *MetricsService) ObserveCache(operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.cacheLatency.WithLabelValues(operation, outcome).Observe(duration.Seconds())
}

// SetBillingGauges publishes the current roster and debt figures.
func (m *MetricsService) SetBillingGauges(active int, delinquentDebt decimal.Decimal) {
	if m == nil {
		return
	}
	m.activeStudents.Set(float64(active))
	m.delinquentDebt.Set(delinquentDebt.InexactFloat64())
}

// AddFeesGenerated counts newly created fees.
func (m *MetricsService) AddFeesGenerated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.feesGenerated.Add(float64(n))
}

// Snapshot returns the persistence counters.
func (m *MetricsService) Snapshot() PersistenceStats {
	if m == nil {
		return PersistenceStats{}
	}
	return PersistenceStats{
		Persisted: atomic.LoadUint64(&m.persistedCount),
		Failed:    atomic.LoadUint64(&m.failedCount),
		Dropped:   atomic.LoadUint64(&m.droppedCount),
		Requests:  atomic.LoadUint64(&m.requestCount),
	}
}
