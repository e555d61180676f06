// Package metrics provides Prometheus metrics for the LOC metrics service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Ingestion
	eventsIngested   *prometheus.CounterVec
	linesIngested    *prometheus.CounterVec
	malformedRecords *prometheus.CounterVec

	// Storage
	storageLatency *prometheus.HistogramVec
	storageErrors  *prometheus.CounterVec

	// Reports
	reportLatency *prometheus.HistogramVec
	reportErrors  *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // avoids default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "locmetrics",
		subsystem:        "service",
		histogramBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) initializeMetrics() {
	m.eventsIngested = m.counterVec("events_ingested_total",
		"Total number of events stored, by category and source", "category", "source")
	m.linesIngested = m.counterVec("lines_ingested_total",
		"Total number of lines carried by stored events, by category and source", "category", "source")
	m.malformedRecords = m.counterVec("malformed_records_total",
		"Stored records skipped on load because they could not be parsed", "category")

	m.storageLatency = m.histogramVec("storage_operation_duration_milliseconds",
		"Event store operation latency in milliseconds", "operation")
	m.storageErrors = m.counterVec("storage_errors_total",
		"Event store operations that failed", "operation")

	m.reportLatency = m.histogramVec("report_duration_milliseconds",
		"Time spent building a report in milliseconds", "report")
	m.reportErrors = m.counterVec("report_errors_total",
		"Reports that failed to build", "report")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", "endpoint", "method", "status_code")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total",
		"HTTP errors by endpoint, method and error type", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordEventIngested counts one stored event and its lines.
func (m *Manager) RecordEventIngested(category, source string, lines int) {
	m.eventsIngested.WithLabelValues(category, source).Inc()
	m.linesIngested.WithLabelValues(category, source).Add(float64(lines))
}

// RecordMalformedRecord counts a stored record skipped during load.
func (m *Manager) RecordMalformedRecord(category string) {
	m.malformedRecords.WithLabelValues(category).Inc()
}

// RecordStorageLatency observes the duration of a store operation.
func (m *Manager) RecordStorageLatency(operation string, latencyMs float64) {
	m.storageLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordStorageError counts a failed store operation.
func (m *Manager) RecordStorageError(operation string) {
	m.storageErrors.WithLabelValues(operation).Inc()
}

// RecordReportLatency observes the time spent building a report.
func (m *Manager) RecordReportLatency(report string, latencyMs float64) {
	m.reportLatency.WithLabelValues(report).Observe(latencyMs)
}

// RecordReportError counts a failed report.
func (m *Manager) RecordReportError(report string) {
	m.reportErrors.WithLabelValues(report).Inc()
}

// Package-level helpers delegate to the global manager.

// RecordEventIngested counts one stored event and its lines.
func RecordEventIngested(category, source string, lines int) {
	globalManager.RecordEventIngested(category, source, lines)
}

// RecordMalformedRecord counts a stored record skipped during load.
func RecordMalformedRecord(category string) {
	globalManager.RecordMalformedRecord(category)
}

// RecordStorageLatency observes the duration of a store operation.
func RecordStorageLatency(operation string, latencyMs float64) {
	globalManager.RecordStorageLatency(operation, latencyMs)
}

// RecordStorageError counts a failed store operation.
func RecordStorageError(operation string) {
	globalManager.RecordStorageError(operation)
}

// RecordReportLatency observes the time spent building a report.
func RecordReportLatency(report string, latencyMs float64) {
	globalManager.RecordReportLatency(report, latencyMs)
}

// RecordReportError counts a failed report.
func RecordReportError(report string) {
	globalManager.RecordReportError(report)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an HTTP error.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
