package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal     prometheus.CounterVec
	HTTPRequestDuration   prometheus.HistogramVec
	HTTPActiveConnections prometheus.GaugeVec

	// Social graph metrics
	FollowOpsTotal          prometheus.CounterVec
	FollowRequestsResolved  prometheus.CounterVec
	CounterRecountDrift     prometheus.GaugeVec

	// Notification metrics
	NotificationsFanoutTotal prometheus.CounterVec
	NotificationsCoalesced   prometheus.Counter

	// Presence metrics
	PresenceHeartbeatsTotal prometheus.Counter
	PresenceRadarSize       prometheus.Histogram

	// Cache metrics
	CacheHitsTotal   prometheus.CounterVec
	CacheMissesTotal prometheus.CounterVec

	// Error metrics
	ErrorsTotal prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the global metrics instance, initializing it on first use
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			HTTPActiveConnections: *promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "http_active_connections",
					Help: "Currently in-flight HTTP requests",
				},
				[]string{"method", "path"},
			),
			FollowOpsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "follow_ops_total",
					Help: "Follow graph operations by kind and outcome",
				},
				[]string{"op", "outcome"},
			),
			FollowRequestsResolved: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "follow_requests_resolved_total",
					Help: "Follow requests resolved by resolution",
				},
				[]string{"resolution"},
			),
			CounterRecountDrift: *promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "counter_recount_drift",
					Help: "Absolute drift found by the last counter recount",
				},
				[]string{"counter"},
			),
			NotificationsFanoutTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "notifications_fanout_total",
					Help: "Notification records written by type",
				},
				[]string{"type"},
			),
			NotificationsCoalesced: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "notifications_coalesced_total",
					Help: "Like notifications merged into an existing unread record",
				},
			),
			PresenceHeartbeatsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "presence_heartbeats_total",
					Help: "Presence heartbeats received",
				},
			),
			PresenceRadarSize: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "presence_radar_size",
					Help:    "Active followed users returned per radar snapshot",
					Buckets: prometheus.ExponentialBuckets(1, 2, 10),
				},
			),
			CacheHitsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_hits_total",
					Help: "Cache hits by cache name",
				},
				[]string{"cache"},
			),
			CacheMissesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_misses_total",
					Help: "Cache misses by cache name",
				},
				[]string{"cache"},
			),
			ErrorsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "errors_total",
					Help: "Errors by type and endpoint",
				},
				[]string{"type", "endpoint"},
			),
		}
	})
	return instance
}
