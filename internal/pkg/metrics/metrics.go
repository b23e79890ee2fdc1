package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapbridge",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mapbridge",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mapbridge",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Dispatch metrics
	DispatchOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapbridge",
		Subsystem: "dispatch",
		Name:      "operations_total",
		Help:      "Operations routed to a provider, by execution mode",
	}, []string{"provider", "mode"})

	DispatchReplayErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapbridge",
		Subsystem: "dispatch",
		Name:      "replay_errors_total",
		Help:      "Deferred operations that failed when replayed",
	}, []string{"provider"})

	DispatchQueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "mapbridge",
		Subsystem: "dispatch",
		Name:      "queue_depth",
		Help:      "Operations waiting for a provider to become ready",
	}, []string{"provider"})

	DispatchReplayDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mapbridge",
		Subsystem: "dispatch",
		Name:      "replay_duration_seconds",
		Help:      "Time spent draining a provider's pending queue",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	}, []string{"provider"})

	ProviderInitFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapbridge",
		Subsystem: "provider",
		Name:      "init_failures_total",
		Help:      "Providers that failed to initialize",
	}, []string{"provider"})

	UnsupportedOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapbridge",
		Subsystem: "provider",
		Name:      "unsupported_operations_total",
		Help:      "Operations a provider could not serve",
	}, []string{"provider", "operation"})

	// Event bus metrics
	EventsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapbridge",
		Subsystem: "events",
		Name:      "delivered_total",
		Help:      "Map events delivered to listeners",
	}, []string{"kind"})

	ListenerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapbridge",
		Subsystem: "events",
		Name:      "listener_failures_total",
		Help:      "Listeners that panicked while handling an event",
	}, []string{"kind"})

	EventsThrottled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapbridge",
		Subsystem: "events",
		Name:      "throttled_total",
		Help:      "Map events dropped by the fan-out rate limiter",
	}, []string{"kind"})

	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mapbridge",
		Subsystem: "sessions",
		Name:      "active",
		Help:      "Map sessions currently held in memory",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mapbridge",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
