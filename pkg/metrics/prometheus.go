// Package metrics provides Prometheus metrics for the FitQuest service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Scoring
	workoutsRecorded *prometheus.CounterVec
	workoutsRejected *prometheus.CounterVec
	pointsAwarded    prometheus.Counter
	recordLatency    prometheus.Histogram
	duplicates       prometheus.Counter

	// Leaderboard
	leaderboardQueries *prometheus.CounterVec
	leaderboardCache   *prometheus.CounterVec

	// Coach
	coachRequests *prometheus.CounterVec
	coachLatency  prometheus.Histogram

	// Storage
	storeLatency *prometheus.HistogramVec

	// Event pipeline
	queueSize               prometheus.Gauge
	queueCapacity           prometheus.Gauge
	queueUtilization        prometheus.Gauge
	eventsEnqueued          prometheus.Counter
	eventsDropped           *prometheus.CounterVec
	eventsPublished         *prometheus.CounterVec
	eventPublishErrors      *prometheus.CounterVec
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram

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

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fitquest",
		subsystem:        "api",
		histogramBuckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	if buckets == nil {
		buckets = m.histogramBuckets
	}
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.workoutsRecorded = auto.NewCounterVec(
		m.counterOpts("workouts_recorded_total", "Workouts persisted, by intensity tier"),
		[]string{"intensity"},
	)
	m.workoutsRejected = auto.NewCounterVec(
		m.counterOpts("workouts_rejected_total", "Workouts rejected before persistence, by reason"),
		[]string{"reason"},
	)
	m.pointsAwarded = auto.NewCounter(
		m.counterOpts("points_awarded_total", "Sum of points credited to users"),
	)
	m.recordLatency = auto.NewHistogram(
		m.histogramOpts("workout_record_latency_milliseconds", "End-to-end latency of recording a workout", nil),
	)
	m.duplicates = auto.NewCounter(
		m.counterOpts("idempotency_duplicates_total", "Workout submissions rejected as idempotent replays"),
	)

	m.leaderboardQueries = auto.NewCounterVec(
		m.counterOpts("leaderboard_queries_total", "Leaderboard reads, by period"),
		[]string{"period"},
	)
	m.leaderboardCache = auto.NewCounterVec(
		m.counterOpts("leaderboard_cache_total", "Leaderboard cache lookups, by result"),
		[]string{"result"},
	)

	m.coachRequests = auto.NewCounterVec(
		m.counterOpts("coach_requests_total", "Calls to the AI coach, by kind and outcome"),
		[]string{"kind", "outcome"},
	)
	m.coachLatency = auto.NewHistogram(
		m.histogramOpts("coach_latency_milliseconds", "AI coach round-trip latency",
			[]float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}),
	)

	m.storeLatency = auto.NewHistogramVec(
		m.histogramOpts("store_operation_latency_milliseconds", "Storage operation latency, by operation", nil),
		[]string{"operation"},
	)

	m.queueSize = auto.NewGauge(m.gaugeOpts("event_queue_size", "Events waiting to be published"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("event_queue_capacity", "Maximum event queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("event_queue_utilization_ratio", "Queue size over capacity"))
	m.eventsEnqueued = auto.NewCounter(m.counterOpts("events_enqueued_total", "Domain events accepted by the queue"))
	m.eventsDropped = auto.NewCounterVec(
		m.counterOpts("events_dropped_total", "Domain events dropped before publishing, by reason"),
		[]string{"reason"},
	)
	m.eventsPublished = auto.NewCounterVec(
		m.counterOpts("events_published_total", "Domain events delivered, by sink"),
		[]string{"sink"},
	)
	m.eventPublishErrors = auto.NewCounterVec(
		m.counterOpts("event_publish_errors_total", "Failed event deliveries, by sink"),
		[]string{"sink"},
	)
	m.workerCount = auto.NewGauge(m.gaugeOpts("event_worker_count", "Running event publisher workers"))
	m.workerProcessingLatency = auto.NewHistogram(
		m.histogramOpts("event_worker_latency_milliseconds", "Time spent delivering one event", nil),
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", nil),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Errors by component and type"),
		[]string{"component", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Errors by type and severity"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Errors by endpoint, method and type"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorLatency = auto.NewHistogramVec(
		m.histogramOpts("error_latency_milliseconds", "Latency of requests that ended in an error", nil),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "Average GC pause in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// RecordWorkout counts a persisted workout and the points it awarded.
func RecordWorkout(intensity string, points int64) {
	if globalManager == nil {
		return
	}
	globalManager.workoutsRecorded.WithLabelValues(intensity).Inc()
	if points > 0 {
		globalManager.pointsAwarded.Add(float64(points))
	}
}

// RecordWorkoutRejected counts a workout refused before any write.
func RecordWorkoutRejected(reason string) {
	if globalManager != nil {
		globalManager.workoutsRejected.WithLabelValues(reason).Inc()
	}
}

// RecordWorkoutLatency observes the time spent recording one workout.
func RecordWorkoutLatency(latencyMs float64) {
	if globalManager != nil {
		globalManager.recordLatency.Observe(latencyMs)
	}
}

// RecordDuplicate counts an idempotent replay.
func RecordDuplicate() {
	if globalManager != nil {
		globalManager.duplicates.Inc()
	}
}

// RecordLeaderboardQuery counts a leaderboard read for period.
func RecordLeaderboardQuery(period string) {
	if globalManager != nil {
		globalManager.leaderboardQueries.WithLabelValues(period).Inc()
	}
}

// RecordLeaderboardCache counts a cache lookup: hit, miss or error.
func RecordLeaderboardCache(result string) {
	if globalManager != nil {
		globalManager.leaderboardCache.WithLabelValues(result).Inc()
	}
}

// RecordCoachRequest counts one coach call and its latency.
func RecordCoachRequest(kind, outcome string, latencyMs float64) {
	if globalManager == nil {
		return
	}
	globalManager.coachRequests.WithLabelValues(kind, outcome).Inc()
	globalManager.coachLatency.Observe(latencyMs)
}

// RecordStoreLatency observes a storage operation.
func RecordStoreLatency(operation string, latencyMs float64) {
	if globalManager != nil {
		globalManager.storeLatency.WithLabelValues(operation).Observe(latencyMs)
	}
}

// UpdateQueueSize sets the current queue depth.
func UpdateQueueSize(size int) {
	if globalManager != nil {
		globalManager.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	if globalManager != nil {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

// UpdateQueueUtilization sets size over capacity.
func UpdateQueueUtilization(utilization float64) {
	if globalManager != nil {
		globalManager.queueUtilization.Set(utilization)
	}
}

// RecordEventEnqueued counts an event accepted by the queue.
func RecordEventEnqueued() {
	if globalManager != nil {
		globalManager.eventsEnqueued.Inc()
	}
}

// RecordEventDropped counts an event that will never be delivered.
func RecordEventDropped(reason string) {
	if globalManager != nil {
		globalManager.eventsDropped.WithLabelValues(reason).Inc()
	}
}

// RecordEventPublished counts a delivered event.
func RecordEventPublished(sink string) {
	if globalManager != nil {
		globalManager.eventsPublished.WithLabelValues(sink).Inc()
	}
}

// RecordEventPublishError counts a failed delivery.
func RecordEventPublishError(sink string) {
	if globalManager != nil {
		globalManager.eventPublishErrors.WithLabelValues(sink).Inc()
	}
}

// UpdateWorkerCount sets the number of publisher workers.
func UpdateWorkerCount(count int) {
	if globalManager != nil {
		globalManager.workerCount.Set(float64(count))
	}
}

// RecordWorkerProcessingLatency observes one delivery.
func RecordWorkerProcessingLatency(latencyMs float64) {
	if globalManager != nil {
		globalManager.workerProcessingLatency.Observe(latencyMs)
	}
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager != nil {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration observes an HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if globalManager != nil {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// RecordErrorByComponent counts an error raised by a component.
func RecordErrorByComponent(component, errorType string) {
	if globalManager != nil {
		globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// RecordErrorByType counts an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	if globalManager != nil {
		globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
	}
}

// RecordErrorByEndpoint counts an HTTP error by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if globalManager != nil {
		globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// RecordErrorLatency observes the latency of a failed operation.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	if globalManager != nil {
		globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
	}
}

// UpdateSystemMemoryUsage sets heap bytes in use.
func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager != nil {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	if globalManager != nil {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// RecordSystemGCPauseTime observes the average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	if globalManager != nil {
		globalManager.systemGCPauseTime.Observe(pauseMs)
	}
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
