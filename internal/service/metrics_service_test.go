package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsServiceRecordsImports(t *testing.T) {
	metrics := NewMetricsService()

	metrics.RecordImport(ImportOutcomePersisted, 12, map[string]int{"unknown_enum": 2, "missing_ep_id": 1})
	metrics.RecordImport(ImportOutcomeDryRun, 3, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.importsTotal.WithLabelValues(ImportOutcomePersisted)))
	assert.Equal(t, 15.0, testutil.ToFloat64(metrics.importedRows))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.diagnostics.WithLabelValues("unknown_enum")))
}

func TestMetricsServiceCacheLookups(t *testing.T) {
	metrics := NewMetricsService()

	metrics.RecordCacheOperation(true, time.Millisecond)
	metrics.RecordCacheOperation(false, time.Millisecond)
	metrics.RecordCacheOperation(false, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("miss")))
}

func TestMetricsServiceHandlerExposesCollectors(t *testing.T) {
	metrics := NewMetricsService()
	metrics.ObserveHTTPRequest(http.MethodGet, "/students", http.StatusOK, 5*time.Millisecond)
	metrics.ObserveStatistics(42, time.Millisecond)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/students",status="200"} 1`)
	assert.Contains(t, rec.Body.String(), "statistics_students 42")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var metrics *MetricsService
	assert.NotPanics(t, func() {
		metrics.RecordImport(ImportOutcomeFailed, 0, nil)
		metrics.ObserveStatistics(1, time.Second)
		metrics.RecordCacheOperation(true, time.Second)
	})
	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
