package solver

import (
	"errors"
	"fmt"
)

// Stage identifies which solver produced a result or an error.
type Stage int

const (
	// StageNewton is the inner Newton–Raphson solver.
	StageNewton Stage = iota
	// StageBisection is the outer bisection solver.
	StageBisection
)

// String returns the human-readable solver name.
func (s Stage) String() string {
	switch s {
	case StageNewton:
		return "Newton"
	case StageBisection:
		return "bisection"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Label returns the lower-case name used in metrics and log fields.
func (s Stage) Label() string {
	switch s {
	case StageNewton:
		return "newton"
	case StageBisection:
		return "bisection"
	default:
		return "unknown"
	}
}

// Stage sentinels. A *ConvergenceError matches the sentinel of its stage
// under errors.Is.
var (
	ErrNewtonConvergence    = errors.New("Newton solver did not converge")
	ErrBisectionConvergence = errors.New("bisection solver did not converge")
)

// Failure reasons carried by ConvergenceError.Reason.
var (
	ErrMaxIterations        = errors.New("iteration limit reached")
	ErrDegenerateDerivative = errors.New("derivative vanished")
	ErrNonFinite            = errors.New("iterate is not finite")
	ErrInvalidBracket       = errors.New("predicate has the same value at both ends of the bracket")
)

// ConvergenceError reports that a solver gave up.
type ConvergenceError struct {
	// Stage is the solver that failed.
	Stage Stage
	// Iterations is the number of iterations performed before giving up.
	Iterations int
	// Last is the last iterate (or bracket midpoint) reached.
	Last float64
	// Reason is one of ErrMaxIterations, ErrDegenerateDerivative,
	// ErrNonFinite or ErrInvalidBracket.
	Reason error
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%s solver did not converge after %d iterations (last iterate %g): %v",
		e.Stage, e.Iterations, e.Last, e.Reason)
}

// Unwrap returns the failure reason.
func (e *ConvergenceError) Unwrap() error { return e.Reason }

// Is reports whether target is the sentinel of e's stage.
func (e *ConvergenceError) Is(target error) bool {
	switch target {
	case ErrNewtonConvergence:
		return e.Stage == StageNewton
	case ErrBisectionConvergence:
		return e.Stage == StageBisection
	}
	return false
}

// FailedStage returns the name of the solver that failed.
func (e *ConvergenceError) FailedStage() string { return e.Stage.String() }
