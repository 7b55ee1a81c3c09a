package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Requests       *prometheus.CounterVec
	LatencyMS      *prometheus.HistogramVec
	OrdersCreated  prometheus.Counter
	OrdersRejected *prometheus.CounterVec
	OrdersCancel   prometheus.Counter
	StatusUpdates  *prometheus.CounterVec
	RestoreSkipped prometheus.Counter

	registry *prometheus.Registry
}

func New() *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "method", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"route"}),
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "orders",
			Name:      "created_total",
			Help:      "Orders successfully placed.",
		}),
		OrdersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "orders",
			Name:      "rejected_total",
			Help:      "Order placements rejected, by reason.",
		}, []string{"reason"}),
		OrdersCancel: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "orders",
			Name:      "cancelled_total",
			Help:      "Orders cancelled through the cancel endpoint.",
		}),
		StatusUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "orders",
			Name:      "status_updates_total",
			Help:      "Admin status updates, by target status.",
		}, []string{"status"}),
		RestoreSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "stock",
			Name:      "restore_skipped_total",
			Help:      "Line items whose product was gone when stock was restored.",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.Requests, m.LatencyMS,
		m.OrdersCreated, m.OrdersRejected, m.OrdersCancel, m.StatusUpdates, m.RestoreSkipped,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
	}
}
