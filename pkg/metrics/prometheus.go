// Package metrics provides Prometheus metrics for the auction valuation service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Valuation engine
	valuationRuns        prometheus.Counter
	valuationFailures    *prometheus.CounterVec
	valuationLatency     prometheus.Histogram
	valuationPlayers     prometheus.Gauge
	valuationUnassigned  prometheus.Gauge
	valuationBudgetDrift prometheus.Gauge
	categoryDenominator  *prometheus.GaugeVec

	// Draft state
	draftPicks           prometheus.Counter
	draftPickRejections  *prometheus.CounterVec
	draftBudgetRemaining prometheus.Gauge

	// Board read model
	boardSize         prometheus.Gauge
	boardPublishes    prometheus.Counter
	boardQueryLatency prometheus.Histogram

	// Pick queue
	queueCapacity      prometheus.Gauge
	queueSize          prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Revaluation worker
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Pick log
	pickStoreWrites prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "auctioneer",
		subsystem:        "valuation",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)

	m.valuationRuns = m.counter("runs_total", "Total number of completed valuation runs")
	m.valuationFailures = m.counterVec("run_failures_total", "Total number of failed valuation runs by stage", "stage")
	m.valuationLatency = m.histogram("run_latency_milliseconds", "Full pipeline latency in milliseconds", m.histogramBuckets)
	m.valuationPlayers = m.gauge("last_run_players", "Players priced by the last valuation run")
	m.valuationUnassigned = m.gauge("last_run_unassigned", "Players left without an eligible open slot in the last run")
	m.valuationBudgetDrift = m.gauge("last_run_budget_drift", "Sum of prices minus available budget in the last run")
	m.categoryDenominator = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "category_denominator",
		Help: "Smoothed SGP denominator per scoring category",
	}, []string{"category"})

	m.draftPicks = m.counter("draft_picks_total", "Total number of accepted draft picks")
	m.draftPickRejections = m.counterVec("draft_pick_rejections_total", "Rejected draft picks by reason", "reason")
	m.draftBudgetRemaining = m.gauge("draft_budget_remaining", "League-wide auction budget not yet spent")

	m.boardSize = m.gauge("board_size", "Number of entries on the published valuation board")
	m.boardPublishes = m.counter("board_publishes_total", "Total number of board snapshots published")
	m.boardQueryLatency = m.histogram("board_query_latency_milliseconds", "Board read latency in milliseconds", m.histogramBuckets)

	m.queueCapacity = m.gauge("queue_capacity", "Maximum pick queue capacity")
	m.queueSize = m.gauge("queue_size", "Current size of the pick queue")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Pick queue utilization ratio (current size / capacity)")
	m.queueEnqueued = m.counter("queue_enqueue_total", "Total number of picks enqueued")
	m.queueDequeued = m.counter("queue_dequeue_total", "Total number of picks dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of enqueue errors")

	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Pick processing latency in milliseconds", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Total number of pick processing errors")

	m.pickStoreWrites = m.counter("pick_store_writes_total", "Total number of picks persisted to the pick log")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Total number of errors by type", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Total number of errors by endpoint", "endpoint", "method", "error_type")
	m.errorLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "error_latency_milliseconds",
		Help:    "Latency of operations that resulted in errors",
		Buckets: m.histogramBuckets,
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Valuation engine.

// RecordValuationRun records a successful run and its latency in milliseconds.
func RecordValuationRun(latencyMs float64) {
	globalManager.valuationRuns.Inc()
	globalManager.valuationLatency.Observe(latencyMs)
}

// RecordValuationFailure increments the failure counter for a pipeline stage.
func RecordValuationFailure(stage string) {
	globalManager.valuationFailures.WithLabelValues(stage).Inc()
}

// UpdateLastRun sets the per-run gauges.
func UpdateLastRun(players, unassigned, budgetDrift int) {
	globalManager.valuationPlayers.Set(float64(players))
	globalManager.valuationUnassigned.Set(float64(unassigned))
	globalManager.valuationBudgetDrift.Set(float64(budgetDrift))
}

// UpdateCategoryDenominator sets the smoothed denominator for a category.
func UpdateCategoryDenominator(category string, value float64) {
	globalManager.categoryDenominator.WithLabelValues(category).Set(value)
}

// Draft state.

// RecordDraftPick increments the accepted picks counter.
func RecordDraftPick() {
	globalManager.draftPicks.Inc()
}

// RecordDraftPickRejected increments the rejection counter for reason.
func RecordDraftPickRejected(reason string) {
	globalManager.draftPickRejections.WithLabelValues(reason).Inc()
}

// UpdateDraftBudgetRemaining sets the unspent league budget.
func UpdateDraftBudgetRemaining(dollars int) {
	globalManager.draftBudgetRemaining.Set(float64(dollars))
}

// Board.

// UpdateBoardSize sets the number of entries on the board.
func UpdateBoardSize(n int) {
	globalManager.boardSize.Set(float64(n))
}

// RecordBoardPublish increments the snapshot publish counter.
func RecordBoardPublish() {
	globalManager.boardPublishes.Inc()
}

// RecordBoardQueryLatency records board read latency.
func RecordBoardQueryLatency(latencyMs float64) {
	globalManager.boardQueryLatency.Observe(latencyMs)
}

// Queue.

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueSize sets the current queue size and utilization.
func UpdateQueueSize(size, capacity int) {
	globalManager.queueSize.Set(float64(size))
	if capacity > 0 {
		globalManager.queueUtilization.Set(float64(size) / float64(capacity))
	}
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// Worker.

// RecordWorkerProcessingLatency records pick processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordPickStoreWrite increments the persisted picks counter.
func RecordPickStoreWrite() {
	globalManager.pickStoreWrites.Inc()
}

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Errors.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
