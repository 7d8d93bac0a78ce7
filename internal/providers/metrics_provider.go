package providers

import (
	"net/http"
	"time"
	"tokend/internal/structures"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncDeliveries(source string)
	IncConsumptions(outcome string)
	IncNotifications(kind, outcome string)
	IncReconciliations(outcome string)
	IncRemoteFailures(op string)
	ObservePersistenceDuration(duration time.Duration)
	SetTrackedUsers(count int)
	Handler() http.Handler
}

type MetricsProvider struct {
	registry            *prometheus.Registry
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	deliveries          *prometheus.CounterVec
	consumptions        *prometheus.CounterVec
	notifications       *prometheus.CounterVec
	reconciliations     *prometheus.CounterVec
	remoteFailures      *prometheus.CounterVec
	persistenceDuration prometheus.Histogram
	trackedUsers        prometheus.Gauge
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

func (m *MetricsProvider) IncDeliveries(source string) {
	m.deliveries.WithLabelValues(source).Inc()
}

func (m *MetricsProvider) IncConsumptions(outcome string) {
	m.consumptions.WithLabelValues(outcome).Inc()
}

func (m *MetricsProvider) IncNotifications(kind, outcome string) {
	m.notifications.WithLabelValues(kind, outcome).Inc()
}

func (m *MetricsProvider) IncReconciliations(outcome string) {
	m.reconciliations.WithLabelValues(outcome).Inc()
}

func (m *MetricsProvider) IncRemoteFailures(op string) {
	m.remoteFailures.WithLabelValues(op).Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) SetTrackedUsers(count int) {
	m.trackedUsers.Set(float64(count))
}

func (m *MetricsProvider) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
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

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &MetricsProvider{
		registry: reg,

		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tokend_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tokend_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "tokend_cache_hits_total",
			Help: "Total number of preference cache hits",
		}),

		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "tokend_cache_misses_total",
			Help: "Total number of preference cache misses",
		}),

		deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tokend_token_deliveries_total",
			Help: "Tokens transitioned to available, by source (local, remote)",
		}, []string{"source"}),

		consumptions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tokend_token_consumptions_total",
			Help: "ConsumeToken calls by outcome",
		}, []string{"outcome"}),

		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tokend_notifications_total",
			Help: "Notification port calls by kind and outcome",
		}, []string{"kind", "outcome"}),

		reconciliations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tokend_reconciliations_total",
			Help: "Remote reconciliations by outcome",
		}, []string{"outcome"}),

		remoteFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tokend_remote_failures_total",
			Help: "Remote mirror failures by operation",
		}, []string{"op"}),

		persistenceDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tokend_persistence_duration_seconds",
			Help:    "Duration of registry persistence in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		trackedUsers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tokend_tracked_users",
			Help: "Users evaluated by the periodic sweep",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncDeliveries(_ string)                           {}
func (n *noopMetrics) IncConsumptions(_ string)                         {}
func (n *noopMetrics) IncNotifications(_, _ string)                     {}
func (n *noopMetrics) IncReconciliations(_ string)                      {}
func (n *noopMetrics) IncRemoteFailures(_ string)                       {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) SetTrackedUsers(_ int)                            {}
func (n *noopMetrics) Handler() http.Handler                            { return http.NotFoundHandler() }
