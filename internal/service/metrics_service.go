package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the booking API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	conflictChecks  *prometheus.CounterVec
	conflictsFound  *prometheus.CounterVec
	bookingCommits  *prometheus.CounterVec
	occupancyBuild  prometheus.Observer
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
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

	conflictChecks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "conflict_checks_total",
		Help: "Total conflict checks run, per dimension",
	}, []string{"dimension"})

	conflictsFound := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "conflicts_found_total",
		Help: "Total conflicts detected, per dimension",
	}, []string{"dimension"})

	bookingCommits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_commits_total",
		Help: "Total booking commits, per outcome",
	}, []string{"outcome"})

	occupancyBuild := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "occupancy_build_seconds",
		Help:    "Time spent building one classroom occupancy grid",
		Buckets: prometheus.DefBuckets,
	})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, conflictChecks, conflictsFound,
		bookingCommits, occupancyBuild, cacheLatency, cacheWrite, cacheHits, cacheMisses, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		conflictChecks:  conflictChecks,
		conflictsFound:  conflictsFound,
		bookingCommits:  bookingCommits,
		occupancyBuild:  occupancyBuild,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordConflictCheck counts one conflict check and how many collisions it found.
func (m *MetricsService) RecordConflictCheck(dimension string, found int) {
	if m == nil {
		return
	}
	m.conflictChecks.WithLabelValues(dimension).Inc()
	if found > 0 {
		m.conflictsFound.WithLabelValues(dimension).Add(float64(found))
	}
}

// RecordBookingCommit counts one booking commit attempt by outcome.
func (m *MetricsService) RecordBookingCommit(outcome string) {
	if m == nil {
		return
	}
	m.bookingCommits.WithLabelValues(outcome).Inc()
}

// ObserveOccupancyBuild tracks how long one occupancy grid took to assemble.
func (m *MetricsService) ObserveOccupancyBuild(duration time.Duration) {
	if m == nil || m.occupancyBuild == nil {
		return
	}
	m.occupancyBuild.Observe(duration.Seconds())
}

// RecordCacheOperation records cache hit/miss metrics.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil || m.cacheWrite == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}
