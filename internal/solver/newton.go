package solver

import "math"

// Newton solves t = k·exp(3·h·t) for t by Newton–Raphson iteration on
//
//	f(t)  = t − k·exp(3ht)
//	f'(t) = 1 − 3hk·exp(3ht)
//
// starting from opts.InitialGuess. It returns the first iterate t_next with
// |t_next − t| < opts.Tolerance.
//
// A *ConvergenceError with Stage StageNewton is returned when the iteration
// cap is reached, when |f'(t)| drops below DerivativeFloor, or when an
// iterate is NaN or infinite.
func Newton(k, h float64, opts Options) (Result, error) {
	opts = normalizeOptions(opts)

	t := opts.InitialGuess
	for i := 1; i <= opts.MaxIter; i++ {
		growth := math.Exp(3 * h * t)
		f := t - k*growth
		fPrime := 1 - 3*h*k*growth

		if math.Abs(fPrime) < DerivativeFloor || math.IsNaN(fPrime) {
			return Result{}, &ConvergenceError{Stage: StageNewton, Iterations: i, Last: t, Reason: ErrDegenerateDerivative}
		}

		next := t - f/fPrime
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return Result{}, &ConvergenceError{Stage: StageNewton, Iterations: i, Last: t, Reason: ErrNonFinite}
		}
		opts.Observer.Observe(StageNewton, i, next)

		if math.Abs(next-t) < opts.Tolerance {
			return Result{Value: next, Iterations: i}, nil
		}
		t = next
	}

	return Result{}, &ConvergenceError{Stage: StageNewton, Iterations: opts.MaxIter, Last: t, Reason: ErrMaxIterations}
}
