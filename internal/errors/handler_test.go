package apperrors

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
)

type MockColorProvider struct{}

type stageError struct{ stage string }

func (e stageError) Error() string       { return e.stage + " solver did not converge" }
func (e stageError) FailedStage() string { return e.stage }

func (m MockColorProvider) Yellow() string { return "[YELLOW]" }
func (m MockColorProvider) Reset() string  { return "[RESET]" }

func TestHandleCalculationError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		err          error
		duration     time.Duration
		colors       ColorProvider
		expectedCode int
		expectedMsg  string
	}{
		{
			name:         "No Error",
			err:          nil,
			expectedCode: ExitSuccess,
			expectedMsg:  "",
		},
		{
			name:         "Timeout Error",
			err:          context.DeadlineExceeded,
			duration:     1 * time.Second,
			colors:       MockColorProvider{},
			expectedCode: ExitErrorTimeout,
			expectedMsg:  "Status: Failure (Timeout). The execution limit was reached after [YELLOW]1s[RESET].",
		},
		{
			name:         "Canceled Error",
			err:          context.Canceled,
			duration:     500 * time.Millisecond,
			colors:       MockColorProvider{},
			expectedCode: ExitErrorCanceled,
			expectedMsg:  "[YELLOW]Status: Canceled after [YELLOW]500ms[RESET].[RESET]",
		},
		{
			name:         "Generic Error",
			err:          fmt.Errorf("random error"),
			expectedCode: ExitErrorGeneric,
			expectedMsg:  "Status: Failure. An unexpected error occurred: random error",
		},
		{
			name:         "Newton Non-Convergence",
			err:          WrapError(stageError{stage: "Newton"}, "condition at m=1000"),
			expectedCode: ExitErrorConvergence,
			expectedMsg:  "Status: Failure. The Newton solver did not converge: condition at m=1000: Newton solver did not converge",
		},
		{
			name:         "Bisection Non-Convergence",
			err:          CalculationError{H: 1, Cause: stageError{stage: "bisection"}},
			duration:     2 * time.Second,
			expectedCode: ExitErrorConvergence,
			expectedMsg:  "Status: Failure. The bisection solver did not converge (elapsed 2s): critical mass search (H=1): bisection solver did not converge",
		},
		{
			name:         "Default Colors",
			err:          context.DeadlineExceeded,
			duration:     1 * time.Second,
			colors:       nil,
			expectedCode: ExitErrorTimeout,
			expectedMsg:  "Status: Failure (Timeout). The execution limit was reached after 1s.",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := new(bytes.Buffer)
			code := HandleCalculationError(tt.err, tt.duration, out, tt.colors)

			if code != tt.expectedCode {
				t.Errorf("HandleCalculationError() code = %v, want %v", code, tt.expectedCode)
			}

			if tt.expectedMsg != "" && !strings.Contains(out.String(), tt.expectedMsg) {
				t.Errorf("HandleCalculationError() output = %q, want %q", out.String(), tt.expectedMsg)
			}
		})
	}
}

// iterationError mimics a solver error whose message carries its own
// "after N iterations" clause.
type iterationError struct{}

func (iterationError) Error() string {
	return "bisection solver did not converge after 0 iterations: bracket has no sign change"
}
func (iterationError) FailedStage() string { return "bisection" }

func TestHandleCalculationErrorElapsedSuffix(t *testing.T) {
	t.Parallel()
	out := new(bytes.Buffer)
	code := HandleCalculationError(iterationError{}, 36*time.Microsecond, out, nil)
	if code != ExitErrorConvergence {
		t.Fatalf("code = %d, want %d", code, ExitErrorConvergence)
	}
	got := out.String()
	if !strings.Contains(got, "did not converge (elapsed 36µs): ") {
		t.Errorf("expected elapsed suffix, got %q", got)
	}
	if n := strings.Count(got, " after "); n != 1 {
		t.Errorf("expected a single \"after\" from the iteration count, got %d in %q", n, got)
	}
}

func TestDefaultColorProvider(t *testing.T) {
	t.Parallel()
	p := DefaultColorProvider{}
	if p.Yellow() != "" {
		t.Error("DefaultColorProvider.Yellow should return empty string")
	}
	if p.Reset() != "" {
		t.Error("DefaultColorProvider.Reset should return empty string")
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"deadline", WrapError(context.DeadlineExceeded, "search"), ExitErrorTimeout},
		{"canceled", context.Canceled, ExitErrorCanceled},
		{"convergence", stageError{stage: "Newton"}, ExitErrorConvergence},
		{"config", NewConfigError("bad"), ExitErrorConfig},
		{"generic", fmt.Errorf("boom"), ExitErrorGeneric},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
