package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/agbru/magcalc/internal/metrics"
)

// Metrics tracks HTTP traffic on top of the operation metrics registry, so
// /metrics exposes both.
type Metrics struct {
	ops            *metrics.OperationMetrics
	activeRequests prometheus.Gauge
	requestsTotal  *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	handler        http.Handler
}

// NewMetrics registers the HTTP collectors on ops. A nil ops creates a
// private registry.
func NewMetrics(ops *metrics.OperationMetrics) *Metrics {
	if ops == nil {
		ops = metrics.NewOperationMetrics()
	}
	m := &Metrics{
		ops: ops,
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "magcalc",
			Name:      "active_requests",
			Help:      "Requests being served.",
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "magcalc",
			Name:      "requests_total",
			Help:      "HTTP requests by path and status code.",
		}, []string{"path", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "magcalc",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
	}
	ops.Registry().MustRegister(m.activeRequests, m.requestsTotal, m.duration)
	m.handler = ops.Handler()
	return m
}

// Operations returns the operation metrics the HTTP collectors share a
// registry with.
func (m *Metrics) Operations() *metrics.OperationMetrics { return m.ops }

func (m *Metrics) IncrementActiveRequests() { m.activeRequests.Inc() }

func (m *Metrics) DecrementActiveRequests() { m.activeRequests.Dec() }

// ObserveRequest records a finished request.
func (m *Metrics) ObserveRequest(path string, code int, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(path, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(path).Observe(elapsed.Seconds())
}

// WritePrometheus serves the registry in the Prometheus text format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware tracks in-flight requests, counts and latencies. The
// path label is the matched route pattern.
func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.metrics.IncrementActiveRequests()
		defer s.metrics.DecrementActiveRequests()

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next(rec, r)
		route := r.Pattern
		if route == "" {
			route = r.URL.Path
		}
		s.metrics.ObserveRequest(route, rec.code, time.Since(start))
	}
}
