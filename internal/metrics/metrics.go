// Package metrics collects and exposes Prometheus metrics of the console.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the gateway and handlers report to.
type Recorder interface {
	RecordUpstream(operation string, status int, duration time.Duration)
	RecordUpstreamFailure(operation string)
	RecordRejection(reason string)
	RecordNotification(outcome string)
}

// Collector is the Prometheus implementation of Recorder.
type Collector struct {
	upstreamRequests *prometheus.CounterVec
	upstreamFailures *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	rejections       *prometheus.CounterVec
	notifications    *prometheus.CounterVec
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rmsconsole_upstream_requests_total",
			Help: "Booking backend responses by operation and HTTP status.",
		}, []string{"operation", "status_code"}),
		upstreamFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rmsconsole_upstream_failures_total",
			Help: "Booking backend calls that received no response.",
		}, []string{"operation"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rmsconsole_upstream_latency_seconds",
			Help:    "Latency of booking backend calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rmsconsole_local_rejections_total",
			Help: "Bookings rejected by client-side rules before reaching the backend.",
		}, []string{"reason"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rmsconsole_notifications_total",
			Help: "Booking decision push notifications by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		c.upstreamRequests,
		c.upstreamFailures,
		c.upstreamLatency,
		c.rejections,
		c.notifications,
	)
	return c
}

func (c *Collector) RecordUpstream(operation string, status int, duration time.Duration) {
	c.upstreamRequests.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	c.upstreamLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

func (c *Collector) RecordUpstreamFailure(operation string) {
	c.upstreamFailures.WithLabelValues(operation).Inc()
}

func (c *Collector) RecordRejection(reason string) {
	c.rejections.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordNotification(outcome string) {
	c.notifications.WithLabelValues(outcome).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordUpstream(string, int, time.Duration) {}
func (Nop) RecordUpstreamFailure(string)              {}
func (Nop) RecordRejection(string)                    {}
func (Nop) RecordNotification(string)                 {}
