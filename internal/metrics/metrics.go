package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satmon_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "satmon_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	// RefreshTicks counts completed telemetry refresh ticks.
	RefreshTicks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "satmon_refresh_ticks_total",
		Help: "Total number of telemetry refresh ticks executed.",
	})

	// TelemetrySamples counts telemetry rows written by the refresh loop.
	TelemetrySamples = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "satmon_telemetry_samples_total",
		Help: "Total number of telemetry samples persisted.",
	})

	// RefreshFailures counts per-satellite estimate/persist failures.
	RefreshFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "satmon_refresh_failures_total",
		Help: "Total number of per-satellite refresh failures.",
	})

	// BroadcastMessages counts envelopes published to the hub, by type.
	BroadcastMessages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "satmon_broadcast_messages_total",
		Help: "Total number of messages broadcast to WebSocket subscribers.",
	}, []string{"type"})

	// ConnectedSubscribers tracks currently-open WebSocket subscribers.
	ConnectedSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "satmon_connected_subscribers",
		Help: "Number of currently connected WebSocket subscribers.",
	})

	// ThreatEvents counts threat events produced by the analyzer, by severity.
	ThreatEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "satmon_threat_events_total",
		Help: "Total number of threat events detected.",
	}, []string{"severity"})
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpDurationSeconds,
		RefreshTicks,
		TelemetrySamples,
		RefreshFailures,
		BroadcastMessages,
		ConnectedSubscribers,
		ThreatEvents,
	)
}

// Handler returns the Prometheus metrics handler wrapped for gin.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Middleware records request count and duration for each request. The route
// template (not the raw path) is used as the label to bound cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		code := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(path, c.Request.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
