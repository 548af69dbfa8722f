package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agbru/magcalc/internal/alloc"
	apperrors "github.com/agbru/magcalc/internal/errors"
)

const namespace = "magcalc"

// Outcome labels of magcalc_native_invocations_total.
const (
	OutcomeOK        = "ok"
	OutcomeException = "exception"
	OutcomeOOM       = "out_of_memory"
	OutcomeStack     = "stack"
	OutcomeCanceled  = "canceled"
	OutcomeError     = "error"
)

// OperationMetrics exports native invocation counters and latencies plus the
// allocator gauges. Each instance owns its registry, so several can coexist
// in one process.
type OperationMetrics struct {
	registry    *prometheus.Registry
	invocations *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// NewOperationMetrics creates the collectors, including the Go runtime and
// process collectors, on a fresh registry.
func NewOperationMetrics() *OperationMetrics {
	reg := prometheus.NewRegistry()
	m := &OperationMetrics{
		registry: reg,
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "native_invocations_total",
			Help:      "Native method invocations by method and outcome.",
		}, []string{"method", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "native_duration_seconds",
			Help:      "Duration of native method invocations.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"method"}),
	}
	reg.MustRegister(
		m.invocations,
		m.latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveInvocation records one native call.
func (m *OperationMetrics) ObserveInvocation(method string, elapsed time.Duration, err error) {
	m.invocations.WithLabelValues(method, Outcome(err)).Inc()
	m.latency.WithLabelValues(method).Observe(elapsed.Seconds())
}

// RegisterAllocator exports the bookkeeping of stats as gauges and
// counters read at scrape time.
func (m *OperationMetrics) RegisterAllocator(stats func() alloc.Stats) {
	gauge := func(name, help string, read func(alloc.Stats) uint64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "allocator", Name: name, Help: help,
		}, func() float64 { return float64(read(stats())) })
	}
	counter := func(name, help string, read func(alloc.Stats) uint64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "allocator", Name: name, Help: help,
		}, func() float64 { return float64(read(stats())) })
	}
	m.registry.MustRegister(
		gauge("live_words", "Words handed out and not yet freed.", func(s alloc.Stats) uint64 { return s.LiveWords }),
		gauge("cached_words", "Words held in free lists.", func(s alloc.Stats) uint64 { return s.CachedWords }),
		gauge("peak_words", "High-water mark of live and cached words.", func(s alloc.Stats) uint64 { return s.PeakWords }),
		gauge("limit_words", "Configured word limit (0 = unlimited).", func(s alloc.Stats) uint64 { return s.LimitWords }),
		counter("allocations_total", "Buffers allocated.", func(s alloc.Stats) uint64 { return s.Allocations }),
		counter("collections_total", "Collection passes run on exhaustion.", func(s alloc.Stats) uint64 { return s.Collections }),
		counter("failures_total", "Allocations that failed after a collection.", func(s alloc.Stats) uint64 { return s.Failures }),
	)
}

// Registry returns the registry holding every collector, for callers that
// add their own.
func (m *OperationMetrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *OperationMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Outcome classifies err for the outcome label.
func Outcome(err error) string {
	var (
		memErr   apperrors.MemoryError
		stackErr apperrors.StackError
		linkErr  apperrors.LinkError
	)
	switch {
	case err == nil:
		return OutcomeOK
	case apperrors.IsContextError(err):
		return OutcomeCanceled
	case errors.As(err, &memErr):
		return OutcomeOOM
	case errors.As(err, &stackErr), errors.As(err, &linkErr):
		return OutcomeStack
	case apperrors.IsRuntimeException(err):
		return OutcomeException
	default:
		return OutcomeError
	}
}
