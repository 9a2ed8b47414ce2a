package solver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// ─────────────────────────────────────────────────────────────────────────────
// Logging Observer
// ─────────────────────────────────────────────────────────────────────────────

// LoggingObserver logs iterates at debug level. Only every n-th iteration of
// a call is logged, plus the first one.
type LoggingObserver struct {
	logger zerolog.Logger
	every  int
}

// NewLoggingObserver creates an observer that logs one iteration out of
// every. Values below 1 log every iteration.
func NewLoggingObserver(logger zerolog.Logger, every int) *LoggingObserver {
	if every < 1 {
		every = 1
	}
	return &LoggingObserver{logger: logger, every: every}
}

// Observe implements IterationObserver.
func (o *LoggingObserver) Observe(stage Stage, iteration int, value float64) {
	if iteration != 1 && iteration%o.every != 0 {
		return
	}
	o.logger.Debug().
		Str("stage", stage.Label()).
		Int("iteration", iteration).
		Float64("value", value).
		Msg("solver iteration")
}

// ─────────────────────────────────────────────────────────────────────────────
// Metrics Observer (Prometheus)
// ─────────────────────────────────────────────────────────────────────────────

// MetricsObserver counts iterations per stage in a Prometheus counter vector
// labelled by "stage".
type MetricsObserver struct {
	iterations *prometheus.CounterVec
}

// NewMetricsObserver creates an observer incrementing iterations.
func NewMetricsObserver(iterations *prometheus.CounterVec) *MetricsObserver {
	return &MetricsObserver{iterations: iterations}
}

// Observe implements IterationObserver.
func (o *MetricsObserver) Observe(stage Stage, _ int, _ float64) {
	o.iterations.WithLabelValues(stage.Label()).Inc()
}

// ─────────────────────────────────────────────────────────────────────────────
// No-Op Observer
// ─────────────────────────────────────────────────────────────────────────────

// NoOpObserver discards all iterates.
type NoOpObserver struct{}

// Observe implements IterationObserver.
func (NoOpObserver) Observe(Stage, int, float64) {}
