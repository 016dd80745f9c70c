// Package metrics exposes Prometheus instrumentation for the HTTP API
// and background workers.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "woodline",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "woodline",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "route"})

	outboxPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "woodline",
		Subsystem: "outbox",
		Name:      "published_total",
		Help:      "Total outbox events published to subscribers.",
	})

	outboxFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "woodline",
		Subsystem: "outbox",
		Name:      "publish_failures_total",
		Help:      "Total outbox publish attempts that failed.",
	})
)

// ObserveOutboxPublished records n successfully published events.
func ObserveOutboxPublished(n int) {
	outboxPublishedTotal.Add(float64(n))
}

// ObserveOutboxFailure records a failed publish attempt.
func ObserveOutboxFailure() {
	outboxFailedTotal.Inc()
}

// Middleware records request count and latency per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the Prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
