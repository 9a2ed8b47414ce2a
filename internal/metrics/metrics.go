// Package metrics collects Prometheus metrics for critical-mass searches and
// exports them in the text exposition format, for consumption by a
// node_exporter textfile collector.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/agbru/critmass/internal/errors"
	"github.com/agbru/critmass/internal/solver"
)

// Metrics groups the collectors of one run. Collectors are registered on the
// registry passed to New, never on the global default registry.
type Metrics struct {
	registry *prometheus.Registry

	iterations *prometheus.CounterVec
	searches   *prometheus.CounterVec
	failures   *prometheus.CounterVec
	duration   prometheus.Histogram
	mass       *prometheus.GaugeVec
}

// New creates and registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		iterations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "critmass_solver_iterations_total",
			Help: "Total number of solver iterations, by stage",
		}, []string{"stage"}),
		searches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "critmass_searches_total",
			Help: "Total number of critical mass searches, by status",
		}, []string{"status"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "critmass_convergence_failures_total",
			Help: "Total number of solver convergence failures, by stage",
		}, []string{"stage"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "critmass_search_duration_seconds",
			Help:    "Duration of critical mass searches in seconds",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
		mass: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "critmass_critical_mass_kg",
			Help: "Critical mass found for a rate constant H",
		}, []string{"h"}),
	}
}

// Observer returns an iteration observer feeding the iteration counter.
func (m *Metrics) Observer() solver.IterationObserver {
	return solver.NewMetricsObserver(m.iterations)
}

// RecordSearch records the outcome of one search. mass is ignored when err
// is non-nil.
func (m *Metrics) RecordSearch(h, mass float64, elapsed time.Duration, err error) {
	m.duration.Observe(elapsed.Seconds())
	if err != nil {
		m.searches.WithLabelValues("error").Inc()
		var convErr *solver.ConvergenceError
		if errors.As(err, &convErr) {
			m.failures.WithLabelValues(convErr.Stage.Label()).Inc()
		}
		return
	}
	m.searches.WithLabelValues("success").Inc()
	m.mass.WithLabelValues(strconv.FormatFloat(h, 'g', -1, 64)).Set(mass)
}

// Gatherer exposes the registry, mainly for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile atomically writes all metrics to path.
func (m *Metrics) WriteTextfile(path string) error {
	return apperrors.WrapError(prometheus.WriteToTextfile(path, m.registry), "failed to write metrics to %s", path)
}
