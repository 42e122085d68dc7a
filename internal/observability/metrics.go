package observability

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes request rate, error and duration series on a private registry.
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics registers the HTTP collectors plus the Go runtime collectors.
func NewMetrics(serviceName string) *Metrics {
	labels := prometheus.Labels{"service": serviceName}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "http_requests_total",
				Help:        "Total number of HTTP requests",
				ConstLabels: labels,
			},
			[]string{"method", "path", "status"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "http_errors_total",
				Help:        "Total number of error responses by error code",
				ConstLabels: labels,
			},
			[]string{"method", "path", "code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "http_request_duration_seconds",
				Help:        "Histogram of HTTP request latency",
				ConstLabels: labels,
				Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.errorsTotal,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(method, path, code).Inc()
}

// PoolStats is a snapshot of a connection pool.
type PoolStats struct {
	Acquired int32
	Idle     int32
	Total    int32
	Max      int32
}

// ObservePool exposes gauges for a connection pool, read on every scrape.
func (m *Metrics) ObservePool(name string, stats func() PoolStats) {
	if m == nil || stats == nil {
		return
	}
	gauge := func(metric, help string, read func(PoolStats) int32) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        metric,
			Help:        help,
			ConstLabels: prometheus.Labels{"pool": name},
		}, func() float64 { return float64(read(stats())) })
	}
	m.registry.MustRegister(
		gauge("db_pool_acquired_connections", "Connections currently checked out of the pool", func(s PoolStats) int32 { return s.Acquired }),
		gauge("db_pool_idle_connections", "Idle connections held by the pool", func(s PoolStats) int32 { return s.Idle }),
		gauge("db_pool_total_connections", "Connections currently open", func(s PoolStats) int32 { return s.Total }),
		gauge("db_pool_max_connections", "Configured pool size", func(s PoolStats) int32 { return s.Max }),
	)
}

// Registry returns the registry backing the /metrics endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
