// Package observability exports service metrics to Prometheus.
package observability

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Allocation outcomes.
const (
	OutcomeNext  = "next"
	OutcomeReset = "reset"
)

// Metrics holds the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	requestDuration *prometheus.HistogramVec
	allocations     *prometheus.CounterVec
	mutations       *prometheus.CounterVec
	seeded          *prometheus.CounterVec
}

// NewMetrics registers the service collectors on reg.
// Registering twice on one registry reuses the existing collectors.
func NewMetrics(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	if namespace == "" {
		namespace = "matcat"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "code_allocations_total",
			Help:      "Material codes allocated, by prefix and outcome (next or reset).",
		}, []string{"prefix", "outcome"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "material_mutations_total",
			Help:      "Committed material creates, updates and deletes.",
		}, []string{"operation"}),
		seeded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seed_imported_total",
			Help:      "Rows created by the CSV seeder, by kind.",
		}, []string{"kind"}),
	}

	var err error
	if m.requestDuration, err = register(reg, m.requestDuration); err != nil {
		return nil, fmt.Errorf("register request histogram: %w", err)
	}
	if m.allocations, err = register(reg, m.allocations); err != nil {
		return nil, fmt.Errorf("register allocation counter: %w", err)
	}
	if m.mutations, err = register(reg, m.mutations); err != nil {
		return nil, fmt.Errorf("register mutation counter: %w", err)
	}
	if m.seeded, err = register(reg, m.seeded); err != nil {
		return nil, fmt.Errorf("register seed counter: %w", err)
	}
	return m, nil
}

// register adds c to reg or returns the collector already registered under the same descriptor.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, err
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the metrics of g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requestDuration.WithLabelValues(method, route, fmt.Sprint(status)).Observe(duration.Seconds())
}

// RecordAllocation counts one allocated code.
func (m *Metrics) RecordAllocation(prefix string, reset bool) {
	if m == nil {
		return
	}
	outcome := OutcomeNext
	if reset {
		outcome = OutcomeReset
	}
	m.allocations.WithLabelValues(prefix, outcome).Inc()
}

// RecordMutation counts one committed material change.
func (m *Metrics) RecordMutation(operation string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(operation).Inc()
}

// RecordSeeded counts rows created by the seeder.
func (m *Metrics) RecordSeeded(categories, materials int) {
	if m == nil {
		return
	}
	m.seeded.WithLabelValues("category").Add(float64(categories))
	m.seeded.WithLabelValues("material").Add(float64(materials))
}
