package solver

import (
	"context"
	"fmt"
	"math"
)

// Predicate is a boolean condition over a scalar. An error aborts the
// bisection and is returned unchanged.
type Predicate func(x float64) (bool, error)

// Bisect finds the point in [low, high] where pred switches from false to
// true, assuming pred is monotone on the interval.
//
// The bracket is checked first: pred(low) and pred(high) must differ,
// otherwise a *ConvergenceError with Reason ErrInvalidBracket is returned
// without iterating. Each iteration evaluates pred at the midpoint, moves
// high down to it when pred holds and low up to it otherwise, then stops once
// |high − low| < opts.Tolerance and returns the new midpoint.
//
// opts.InitialGuess is not used. The context is checked once per iteration.
func Bisect(ctx context.Context, pred Predicate, low, high float64, opts Options) (Result, error) {
	opts = normalizeOptions(opts)

	mid := (low + high) / 2
	if !(low < high) || math.IsNaN(mid) || math.IsInf(mid, 0) {
		return Result{}, &ConvergenceError{Stage: StageBisection, Last: mid, Reason: ErrInvalidBracket}
	}

	atLow, err := pred(low)
	if err != nil {
		return Result{}, err
	}
	atHigh, err := pred(high)
	if err != nil {
		return Result{}, err
	}
	if atLow == atHigh {
		return Result{}, &ConvergenceError{Stage: StageBisection, Last: mid, Reason: ErrInvalidBracket}
	}

	for i := 1; i <= opts.MaxIter; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("bisection interrupted after %d iterations: %w", i-1, err)
		}

		holds, err := pred(mid)
		if err != nil {
			return Result{}, err
		}
		if holds {
			high = mid
		} else {
			low = mid
		}
		mid = (low + high) / 2
		opts.Observer.Observe(StageBisection, i, mid)

		if math.Abs(high-low) < opts.Tolerance {
			return Result{Value: mid, Iterations: i}, nil
		}
	}

	return Result{}, &ConvergenceError{Stage: StageBisection, Iterations: opts.MaxIter, Last: mid, Reason: ErrMaxIterations}
}
