package providers

import (
	"storybank/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncStorageFull()
	IncActivity(activityType, status string)
	ObservePersistenceDuration(duration time.Duration)
	ObserveBackendDuration(operation string, duration time.Duration)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	storageFull         prometheus.Counter
	activities          *prometheus.CounterVec
	persistenceDuration prometheus.Histogram
	backendDuration     *prometheus.HistogramVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncStorageFull() {
	m.storageFull.Inc()
}

func (m *MetricsProvider) IncActivity(activityType, status string) {
	m.activities.WithLabelValues(activityType, status).Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) ObserveBackendDuration(operation string, duration time.Duration) {
	m.backendDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "composer_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "composer_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "composer_cache_hits_total",
			Help: "Total number of read cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "composer_cache_misses_total",
			Help: "Total number of read cache misses",
		}),

		storageFull: promauto.NewCounter(prometheus.CounterOpts{
			Name: "composer_storage_full_total",
			Help: "Total number of writes rejected because the store quota was reached",
		}),

		activities: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "composer_activities_total",
			Help: "Total number of recorded activities",
		}, []string{"type", "status"}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "composer_persistence_duration_seconds",
			Help:    "Duration of snapshot persistence in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		backendDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "composer_backend_duration_seconds",
			Help:    "Duration of collaborator backend calls in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncStorageFull()                                  {}
func (n *noopMetrics) IncActivity(_, _ string)                          {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) ObserveBackendDuration(_ string, _ time.Duration) {}
