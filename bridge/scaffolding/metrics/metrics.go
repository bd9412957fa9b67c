// Package metrics holds the request counters exported on /metrics.
package metrics

import (
	"context"
	"net/http"
	"runtime"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the set of collectors for one process.
type Metrics struct {
	registry   *prometheus.Registry
	requests   prometheus.Counter
	errors     prometheus.Counter
	panics     prometheus.Counter
	goroutines prometheus.Gauge
	populates  *prometheus.CounterVec

	count atomic.Int64
}

// New creates the collectors on a fresh registry, along with the Go runtime
// and process collectors.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Number of handled requests.",
		}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Number of requests that ended in an error.",
		}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "panics_total",
			Help:      "Number of recovered handler panics.",
		}),
		goroutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "goroutines",
			Help:      "Goroutines, sampled every 1000 requests.",
		}),
		populates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "populates_total",
			Help:      "Store population attempts by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.requests,
		m.errors,
		m.panics,
		m.goroutines,
		m.populates,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the registry, mostly for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Populated counts one store population attempt.
func (m *Metrics) Populated(result string) {
	m.populates.WithLabelValues(result).Inc()
}

type ctxKey int

const key ctxKey = 1

// Set puts m in the context for the middleware further down the chain.
func Set(ctx context.Context, m *Metrics) context.Context {
	return context.WithValue(ctx, key, m)
}

func get(ctx context.Context) *Metrics {
	m, _ := ctx.Value(key).(*Metrics)
	return m
}

// AddRequests increments the request count and returns the running total.
func AddRequests(ctx context.Context) int64 {
	m := get(ctx)
	if m == nil {
		return 0
	}
	m.requests.Inc()
	return m.count.Add(1)
}

// AddGoroutines samples the current number of goroutines.
func AddGoroutines(ctx context.Context) {
	if m := get(ctx); m != nil {
		m.goroutines.Set(float64(runtime.NumGoroutine()))
	}
}

// AddErrors increments the error count.
func AddErrors(ctx context.Context) {
	if m := get(ctx); m != nil {
		m.errors.Inc()
	}
}

// AddPanics increments the panic count.
func AddPanics(ctx context.Context) {
	if m := get(ctx); m != nil {
		m.panics.Inc()
	}
}
