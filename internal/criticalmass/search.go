// Package criticalmass locates the mass at which the model's rate parameter
// K(m) falls below the solution of t = K(m)·exp(3·H·t).
package criticalmass

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/agbru/critmass/internal/physics"
	"github.com/agbru/critmass/internal/solver"
)

const (
	// DefaultMassLow is the lower end of the default mass bracket, in kg.
	DefaultMassLow = 1_000.0
	// DefaultMassHigh is the upper end of the default mass bracket, in kg.
	DefaultMassHigh = 1_000_000.0
)

// Params configures a search.
type Params struct {
	// H is the rate constant passed to every Newton solve.
	H float64
	// Low and High bound the mass bracket, in kg.
	Low, High float64
	// Newton configures every inner solve. Its InitialGuess is reused
	// unchanged for each trial mass.
	Newton solver.Options
	// Bisection configures the outer search over mass.
	Bisection solver.Options
}

// DefaultParams returns the reference configuration: physics.H, the bracket
// [1000, 1e6] kg and solver.DefaultOptions for both solvers.
func DefaultParams() Params {
	return Params{
		H:         physics.H,
		Low:       DefaultMassLow,
		High:      DefaultMassHigh,
		Newton:    solver.DefaultOptions(),
		Bisection: solver.DefaultOptions(),
	}
}

// Outcome is the result of a successful search.
type Outcome struct {
	// H is the rate constant the search ran with.
	H float64
	// Mass is the critical mass, in kg.
	Mass float64
	// K is K(Mass).
	K float64
	// Radius is the Schwarzschild radius of Mass, in metres.
	Radius float64
	// BisectionIterations is the number of outer iterations.
	BisectionIterations int
	// NewtonCalls is the number of inner solves, bracket checks included.
	NewtonCalls int
	// NewtonIterations is the total number of Newton steps over all calls.
	NewtonIterations int
	// Duration is the wall-clock time of the search.
	Duration time.Duration
}

// Condition returns the predicate K(m) < t(m), where t(m) solves
// t = K(m)·exp(3·h·t) by Newton iteration from opts.InitialGuess.
// Newton failures are returned as the predicate's error.
func Condition(h float64, opts solver.Options) solver.Predicate {
	return newCondition(h, opts, nil)
}

type tally struct {
	calls      int
	iterations int
}

func newCondition(h float64, opts solver.Options, counts *tally) solver.Predicate {
	return func(m float64) (bool, error) {
		k := physics.K(m)
		t, err := solver.Newton(k, h, opts)
		if counts != nil {
			counts.calls++
			counts.iterations += t.Iterations
		}
		if err != nil {
			return false, err
		}
		return k < t.Value, nil
	}
}

// Search bisects [p.Low, p.High] for the mass at which Condition switches
// from false to true. Any convergence failure, inner or outer, aborts the
// search and is returned as is.
func Search(ctx context.Context, p Params) (out Outcome, err error) {
	tracer := otel.Tracer("critmass")
	ctx, span := tracer.Start(ctx, "Search")
	defer span.End()
	span.SetAttributes(
		attribute.Float64("h", p.H),
		attribute.Float64("m_low", p.Low),
		attribute.Float64("m_high", p.High),
	)

	start := time.Now()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	var counts tally
	res, err := solver.Bisect(ctx, newCondition(p.H, p.Newton, &counts), p.Low, p.High, p.Bisection)
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{
		H:                   p.H,
		Mass:                res.Value,
		K:                   physics.K(res.Value),
		Radius:              physics.Rs(res.Value),
		BisectionIterations: res.Iterations,
		NewtonCalls:         counts.calls,
		NewtonIterations:    counts.iterations,
		Duration:            time.Since(start),
	}, nil
}
