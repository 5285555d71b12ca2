// Package metrics provides Prometheus metrics for the rehabplan service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the rehabplan service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	planItemBuckets  []float64
	enabled          bool
	registry         prometheus.Registerer

	// Recommendation metrics
	scoringPasses       prometheus.Counter
	protocolsScored     prometheus.Counter
	protocolsExcluded   *prometheus.CounterVec
	scoringLatency      prometheus.Histogram
	plansBuilt          prometheus.Counter
	planItemsPlaced     prometheus.Histogram
	dataQualityFindings *prometheus.CounterVec

	// Aggregation metrics
	aggregationLatency prometheus.Histogram
	rollupLatency      prometheus.Histogram

	// Repository metrics
	repositoryLoadLatency *prometheus.HistogramVec
	repositoryRecords     *prometheus.GaugeVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorsByComponent *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
	serviceUptime        prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "rehabplan",
		subsystem:        "recommender",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		planItemBuckets:  []float64{0, 4, 8, 12, 16, 20, 24, 28},
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.scoringPasses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_passes_total",
		Help:      "Total number of recommendation scoring passes",
	})

	m.protocolsScored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "protocols_scored_total",
		Help:      "Total number of protocols scored across all passes",
	})

	m.protocolsExcluded = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "protocols_excluded_total",
			Help:      "Protocols removed by a contraindication, by blocking tag",
		},
		[]string{"tag"},
	)

	m.scoringLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_latency_milliseconds",
		Help:      "Histogram of scoring pass latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.plansBuilt = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "weekly_plans_built_total",
		Help:      "Total number of weekly plans built",
	})

	m.planItemsPlaced = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "weekly_plan_items",
		Help:      "Number of protocols placed per weekly plan",
		Buckets:   m.planItemBuckets,
	})

	m.dataQualityFindings = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "data_quality_conditions_total",
			Help:      "Data-quality conditions reported, by kind",
		},
		[]string{"kind"},
	)

	m.aggregationLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "aggregation_latency_milliseconds",
		Help:      "Histogram of per-patient aggregation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.rollupLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rollup_latency_milliseconds",
		Help:      "Histogram of population rollup latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.repositoryLoadLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "repository_load_latency_milliseconds",
			Help:      "Repository load latency in milliseconds by store and operation",
			Buckets:   m.histogramBuckets,
		},
		[]string{"store", "operation"},
	)

	m.repositoryRecords = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "repository_records",
			Help:      "Records returned by the last full load, by kind",
		},
		[]string{"kind"},
	)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total errors by component and error type",
		},
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "Current heap allocation in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_milliseconds",
		Help:      "Average GC pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.serviceUptime = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "service_uptime_seconds",
		Help:      "Seconds since the service started",
	})
}

// RecordScoringPass records one scoring pass over n protocols.
func RecordScoringPass(n int, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.scoringPasses.Inc()
	globalManager.protocolsScored.Add(float64(n))
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordProtocolExcluded counts a protocol dropped by a contraindication.
func RecordProtocolExcluded(tag string) {
	if !globalManager.enabled {
		return
	}
	globalManager.protocolsExcluded.WithLabelValues(tag).Inc()
}

// RecordPlanBuilt records a weekly plan and how many items it placed.
func RecordPlanBuilt(placed int) {
	if !globalManager.enabled {
		return
	}
	globalManager.plansBuilt.Inc()
	globalManager.planItemsPlaced.Observe(float64(placed))
}

// RecordDataQuality counts a reported data-quality condition.
func RecordDataQuality(kind string) {
	if !globalManager.enabled {
		return
	}
	globalManager.dataQualityFindings.WithLabelValues(kind).Inc()
}

// RecordAggregationLatency records per-patient aggregation latency in milliseconds.
func RecordAggregationLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.aggregationLatency.Observe(latencyMs)
}

// RecordRollupLatency records population rollup latency in milliseconds.
func RecordRollupLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.rollupLatency.Observe(latencyMs)
}

// RecordRepositoryLoad records a repository load in milliseconds.
func RecordRepositoryLoad(store, operation string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.repositoryLoadLatency.WithLabelValues(store, operation).Observe(latencyMs)
}

// UpdateRepositoryRecords sets the number of records of a kind.
func UpdateRepositoryRecords(kind string, count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.repositoryRecords.WithLabelValues(kind).Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent increments the error counter for a component.
func RecordErrorByComponent(component, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap allocation gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records an average GC pause in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// UpdateServiceUptime sets the uptime gauge.
func UpdateServiceUptime(seconds float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.serviceUptime.Set(seconds)
}

// SetEnabled toggles recording for the global manager.
func SetEnabled(enabled bool) {
	globalManager.enabled = enabled
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
