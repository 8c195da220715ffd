package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the Prometheus registry for HTTP, cache, import and statistics instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheLookups    *prometheus.CounterVec
	importsTotal    *prometheus.CounterVec
	importedRows    prometheus.Counter
	diagnostics     *prometheus.CounterVec
	statsDuration   prometheus.Observer
	statsStudents   prometheus.Gauge
}

// NewMetricsService registers the collectors.
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

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache writes",
		Buckets: prometheus.DefBuckets,
	})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache lookups partitioned by result",
	}, []string{"result"})

	importsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "student_imports_total",
		Help: "Spreadsheet imports partitioned by outcome",
	}, []string{"outcome"})

	importedRows := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "student_import_rows_total",
		Help: "Spreadsheet rows parsed into student records",
	})

	diagnostics := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "student_import_diagnostics_total",
		Help: "Cells that could not be applied during import, by reason",
	}, []string{"reason"})

	statsDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "statistics_compute_seconds",
		Help:    "Time spent computing the statistics bundle",
		Buckets: prometheus.DefBuckets,
	})

	statsStudents := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "statistics_students",
		Help: "Students in the last computed statistics snapshot",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheLookups,
		importsTotal, importedRows, diagnostics, statsDuration, statsStudents, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheLookups:    cacheLookups,
		importsTotal:    importsTotal,
		importedRows:    importedRows,
		diagnostics:     diagnostics,
		statsDuration:   statsDuration,
		statsStudents:   statsStudents,
	}
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *MetricsService) Registry() *prometheus.Registry {
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
	}
}

// ObserveCacheWrite tracks the duration for cache writes.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordImport counts one import with its parsed rows and diagnostics per reason.
func (m *MetricsService) RecordImport(outcome string, rows int, diagnosticReasons map[string]int) {
	if m == nil {
		return
	}
	m.importsTotal.WithLabelValues(outcome).Inc()
	m.importedRows.Add(float64(rows))
	for reason, n := range diagnosticReasons {
		m.diagnostics.WithLabelValues(reason).Add(float64(n))
	}
}

// ObserveStatistics records one statistics computation.
func (m *MetricsService) ObserveStatistics(students int, duration time.Duration) {
	if m == nil {
		return
	}
	m.statsDuration.Observe(duration.Seconds())
	m.statsStudents.Set(float64(students))
}
