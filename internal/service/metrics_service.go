package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edupage/school-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides
// lightweight snapshots for the dashboard endpoint.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	lessonsPlaced   prometheus.Counter
	slotsRejected   *prometheus.CounterVec
	paymentAmount   *prometheus.CounterVec
	paymentsTotal   *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	lessonsPlacedCount   uint64
	slotsRejectedCount   uint64
	paymentsApproved     uint64
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

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	lessonsPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_lessons_placed_total",
		Help: "Lessons accepted onto the timetable by generation or manual creation",
	})

	slotsRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_slots_rejected_total",
		Help: "Candidate slots rejected during generation, by conflict dimension",
	}, []string{"dimension"})

	paymentAmount := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_amount_total",
		Help: "Total payment amount processed, by outcome",
	}, []string{"outcome"})

	paymentsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_processed_total",
		Help: "Payments processed, by outcome",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheHitRatio, cacheHits, cacheMisses, lessonsPlaced, slotsRejected, paymentAmount, paymentsTotal, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		lessonsPlaced:   lessonsPlaced,
		slotsRejected:   slotsRejected,
		paymentAmount:   paymentAmount,
		paymentsTotal:   paymentsTotal,
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

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	total := hits + misses
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// RecordLessonPlaced counts a lesson accepted onto the timetable.
func (m *MetricsService) RecordLessonPlaced() {
	if m == nil {
		return
	}
	m.lessonsPlaced.Inc()
	atomic.AddUint64(&m.lessonsPlacedCount, 1)
}

// RecordSlotRejected counts a candidate slot skipped for a conflict.
func (m *MetricsService) RecordSlotRejected(dimension string) {
	if m == nil {
		return
	}
	m.slotsRejected.WithLabelValues(dimension).Inc()
	atomic.AddUint64(&m.slotsRejectedCount, 1)
}

// RecordPayment counts a processed payment and its amount by outcome.
func (m *MetricsService) RecordPayment(outcome string, amount int64) {
	if m == nil {
		return
	}
	m.paymentsTotal.WithLabelValues(outcome).Inc()
	m.paymentAmount.WithLabelValues(outcome).Add(float64(amount))
	if outcome == "approved" {
		atomic.AddUint64(&m.paymentsApproved, 1)
	}
}

// Snapshot returns aggregated metrics suitable for the dashboard endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var cacheRatio float64
	totalLookups := hits + misses
	if totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		LessonsPlaced:            atomic.LoadUint64(&m.lessonsPlacedCount),
		SlotsRejected:            atomic.LoadUint64(&m.slotsRejectedCount),
		PaymentsApproved:         atomic.LoadUint64(&m.paymentsApproved),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
