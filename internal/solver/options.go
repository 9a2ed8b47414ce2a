// Package solver implements the bounded iterative methods used by the
// critical-mass search: a Newton–Raphson fixed-point solver and a bisection
// over a boolean predicate. Both are pure over their local state and safe to
// call concurrently.
package solver

const (
	// DefaultInitialGuess is the starting iterate of the Newton solver.
	DefaultInitialGuess = 1.0

	// DefaultTolerance is the convergence tolerance shared by both solvers:
	// the Newton solver stops when two successive iterates differ by less
	// than this value, the bisection when the bracket is narrower.
	DefaultTolerance = 1e-8

	// DefaultMaxIter caps the number of iterations of either solver.
	DefaultMaxIter = 100_000

	// DerivativeFloor is the smallest |f'(t)| the Newton solver divides by.
	DerivativeFloor = 1e-12
)

// Options configures a single solver call. Options is a plain value: each
// caller owns its copy.
type Options struct {
	// InitialGuess is the first Newton iterate. Ignored by Bisect.
	InitialGuess float64
	// Tolerance is the convergence tolerance. Non-positive values are
	// replaced by DefaultTolerance.
	Tolerance float64
	// MaxIter is the iteration cap. Non-positive values are replaced by
	// DefaultMaxIter.
	MaxIter int
	// Observer, if non-nil, is notified of every iterate.
	Observer IterationObserver
}

// DefaultOptions returns the reference configuration:
// InitialGuess 1, Tolerance 1e-8, MaxIter 100000.
func DefaultOptions() Options {
	return Options{
		InitialGuess: DefaultInitialGuess,
		Tolerance:    DefaultTolerance,
		MaxIter:      DefaultMaxIter,
	}
}

// Result is the outcome of a converged solver call.
type Result struct {
	// Value is the converged iterate.
	Value float64
	// Iterations is the number of iterations performed.
	Iterations int
}

// normalizeOptions returns a copy of opts with defaults applied to zero values.
func normalizeOptions(opts Options) Options {
	normalized := opts
	if normalized.Tolerance <= 0 {
		normalized.Tolerance = DefaultTolerance
	}
	if normalized.MaxIter <= 0 {
		normalized.MaxIter = DefaultMaxIter
	}
	if normalized.Observer == nil {
		normalized.Observer = NoOpObserver{}
	}
	return normalized
}
