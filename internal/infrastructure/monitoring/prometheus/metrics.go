package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	batchtypes "github.com/retailcore/commerce-batch/pkg/types/batch"
)

// DefaultNamespace prefixes every metric exported by the service.
const DefaultNamespace = "commerce_batch"

var (
	batchSizeBuckets     = []float64{1, 10, 50, 100, 250, 500, 1000}
	batchDurationBuckets = []float64{.1, .5, 1, 5, 10, 30, 60, 120, 300}
	opDurationBuckets    = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5, 30}
	httpDurationBuckets  = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
)

// Metrics registers and exposes the service's Prometheus metrics. It
// satisfies the batch engine's Metrics interface.
type Metrics struct {
	registry *prometheus.Registry

	batchesTotal       *prometheus.CounterVec
	batchSize          prometheus.Histogram
	batchDuration      *prometheus.HistogramVec
	operationsTotal    *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec
	operationsInFlight prometheus.Gauge

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewMetrics builds a Metrics with its own registry. Pass an empty namespace
// to use DefaultNamespace.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		batchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Batches processed, by terminal status.",
		}, []string{"status"}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size_operations",
			Help:      "Number of operations per submitted batch.",
			Buckets:   batchSizeBuckets,
		}),
		batchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall clock duration of batch execution.",
			Buckets:   batchDurationBuckets,
		}, []string{"status"}),
		operationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Operations executed, by type and outcome.",
		}, []string{"operation_type", "outcome"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of individual operations.",
			Buckets:   opDurationBuckets,
		}, []string{"operation_type"}),
		operationsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "operations_in_flight",
			Help:      "Operations currently holding a concurrency permit.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method, route and status code.",
		}, []string{"method", "path", "status_code"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration.",
			Buckets:   httpDurationBuckets,
		}, []string{"method", "path"}),
	}

	registry.MustRegister(
		m.batchesTotal,
		m.batchSize,
		m.batchDuration,
		m.operationsTotal,
		m.operationDuration,
		m.operationsInFlight,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	)
	return m
}

// ObserveBatch records a finished batch.
func (m *Metrics) ObserveBatch(status batchtypes.BatchState, size int, duration time.Duration) {
	m.batchesTotal.WithLabelValues(string(status)).Inc()
	m.batchSize.Observe(float64(size))
	m.batchDuration.WithLabelValues(string(status)).Observe(duration.Seconds())
}

// ObserveOperation records a finished operation.
func (m *Metrics) ObserveOperation(operationType string, success bool, duration time.Duration) {
	outcome := "succeeded"
	if !success {
		outcome = "failed"
	}
	m.operationsTotal.WithLabelValues(operationType, outcome).Inc()
	m.operationDuration.WithLabelValues(operationType).Observe(duration.Seconds())
}

// SetOperationsInFlight records the number of permits currently held.
func (m *Metrics) SetOperationsInFlight(n int) {
	m.operationsInFlight.Set(float64(n))
}

// ObserveHTTPRequest records one served request. path should be the chi route
// pattern, not the raw URL, to keep cardinality bounded.
func (m *Metrics) ObserveHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// Registry exposes the underlying registry for additional collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
