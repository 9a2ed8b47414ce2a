package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/agbru/critmass/internal/criticalmass"
	"github.com/agbru/critmass/internal/physics"
	"github.com/agbru/critmass/internal/solver"
	"github.com/agbru/critmass/internal/testutil"
	"github.com/agbru/critmass/internal/ui"
)

// Golden strings for CLI output. The expected text is stored inline to
// verify exact formatting.

func TestDisplayReport_Golden(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		outcome  criticalmass.Outcome
		expected string
	}{
		{
			name:    "Reference magnitudes",
			outcome: criticalmass.Outcome{Mass: 586712.3, K: 16.97612, Radius: 8.7135e-22},
			expected: "The critical mass value where k < t_solution switches from False to True is approximately: 5.86712e+05 kg\n" +
				"Value of t for a = 1 given the obtained mass: 16.97612 s\n" +
				"Schwarzschild radius for this result: 8.71350e-22 m\n",
		},
		{
			name:    "Rounding",
			outcome: criticalmass.Outcome{Mass: 1000, K: 0.123456789, Radius: 1.4852e-24},
			expected: "The critical mass value where k < t_solution switches from False to True is approximately: 1.00000e+03 kg\n" +
				"Value of t for a = 1 given the obtained mass: 0.12346 s\n" +
				"Schwarzschild radius for this result: 1.48520e-24 m\n",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			DisplayReport(&buf, tt.outcome)
			if got := buf.String(); got != tt.expected {
				t.Errorf("Golden mismatch for %s.\nWant:\n%q\nGot:\n%q", tt.name, tt.expected, got)
			}
		})
	}
}

var reportPattern = regexp.MustCompile(
	`^The critical mass value where k < t_solution switches from False to True is approximately: (\S+) kg\n` +
		`Value of t for a = 1 given the obtained mass: (\d+\.\d{5}) s\n` +
		`Schwarzschild radius for this result: (\S+) m\n$`)

func TestDisplayReport_ReferenceRun(t *testing.T) {
	t.Parallel()
	o, err := criticalmass.Search(context.Background(), criticalmass.DefaultParams())
	if err != nil {
		t.Fatalf("reference search failed: %v", err)
	}

	var buf bytes.Buffer
	DisplayReport(&buf, o)
	m := reportPattern.FindStringSubmatch(buf.String())
	if m == nil {
		t.Fatalf("report does not match the three-line format:\n%s", buf.String())
	}

	values := make([]float64, 3)
	for i, s := range m[1:] {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			t.Fatalf("cannot parse %q: %v", s, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			t.Errorf("value %q is not finite and positive", s)
		}
		values[i] = v
	}
	if values[0] < criticalmass.DefaultMassLow || values[0] > criticalmass.DefaultMassHigh {
		t.Errorf("mass %g outside the default bracket", values[0])
	}
	if got := physics.Rs(values[0]); math.Abs(got-values[2]) > 1e-4*values[2] {
		t.Errorf("Rs(printed mass) = %g, printed radius %g", got, values[2])
	}
}

func TestDisplayDetails(t *testing.T) {
	ui.InitTheme(true, nil)
	o := criticalmass.Outcome{
		H:                   physics.H,
		Mass:                586712.3,
		Radius:              8.7135e-22,
		BisectionIterations: 47,
		NewtonCalls:         49,
		NewtonIterations:    12345,
		Duration:            3 * time.Millisecond,
	}

	var buf bytes.Buffer
	DisplayDetails(&buf, o)
	got := testutil.StripAnsiCodes(buf.String())

	for _, want := range []string{
		"--- Search details ---",
		"Bisection iterations   : 47",
		"Newton solves          : 49",
		"Newton iterations      : 12,345",
		"Search time            : 3ms",
		"Schwarzschild radius   : 8.71350e-22 m",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("details output missing %q:\n%s", want, got)
		}
	}
}

func TestDisplayDetails_ZeroDuration(t *testing.T) {
	ui.InitTheme(true, nil)
	var buf bytes.Buffer
	DisplayDetails(&buf, criticalmass.Outcome{})
	if !strings.Contains(buf.String(), "< 1µs") {
		t.Errorf("expected '< 1µs' for zero duration, got:\n%s", buf.String())
	}
}

func TestNewJSONResult(t *testing.T) {
	t.Parallel()

	t.Run("Success", func(t *testing.T) {
		t.Parallel()
		o := criticalmass.Outcome{Mass: 5e5, K: 10, Radius: 7e-22, BisectionIterations: 40, NewtonCalls: 42, NewtonIterations: 100}
		r := NewJSONResult(2e-18, o, 2*time.Second, nil)
		if r.H != 2e-18 || r.Mass != 5e5 || r.NewtonCalls != 42 || r.DurationSeconds != 2 {
			t.Errorf("unexpected result %+v", r)
		}
		if r.Error != "" || r.FailedStage != "" {
			t.Errorf("success must not carry an error: %+v", r)
		}
	})

	t.Run("ConvergenceFailure", func(t *testing.T) {
		t.Parallel()
		err := fmt.Errorf("search: %w", &solver.ConvergenceError{Stage: solver.StageNewton, Iterations: 3, Reason: solver.ErrMaxIterations})
		r := NewJSONResult(1, criticalmass.Outcome{Mass: 99}, time.Second, err)
		if r.FailedStage != "Newton" {
			t.Errorf("FailedStage = %q, want Newton", r.FailedStage)
		}
		if r.Mass != 0 {
			t.Errorf("failure must not carry a mass, got %g", r.Mass)
		}
		if !strings.Contains(r.Error, "Newton solver did not converge") {
			t.Errorf("Error = %q", r.Error)
		}
	})

	t.Run("OtherFailure", func(t *testing.T) {
		t.Parallel()
		r := NewJSONResult(1, criticalmass.Outcome{}, 0, errors.New("boom"))
		if r.Error != "boom" || r.FailedStage != "" {
			t.Errorf("unexpected result %+v", r)
		}
	})
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	in := []JSONResult{{H: 1e-18, Mass: 5e5, DurationSeconds: 0.5}, {H: 2e-18, Error: "x", FailedStage: "bisection"}}
	if err := WriteJSON(&buf, in); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var out []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(out))
	}
	if _, ok := out[0]["critical_mass_kg"]; !ok {
		t.Error("success document lacks critical_mass_kg")
	}
	if _, ok := out[1]["critical_mass_kg"]; ok {
		t.Error("failure document must omit critical_mass_kg")
	}
	if out[1]["failed_stage"] != "bisection" {
		t.Errorf("failed_stage = %v", out[1]["failed_stage"])
	}
}

func TestWriteJSON_Unsupported(t *testing.T) {
	t.Parallel()
	if err := WriteJSON(&bytes.Buffer{}, math.NaN()); err == nil {
		t.Error("expected an error encoding NaN")
	}
}
