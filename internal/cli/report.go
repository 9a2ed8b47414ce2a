package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/agbru/critmass/internal/criticalmass"
	apperrors "github.com/agbru/critmass/internal/errors"
	"github.com/agbru/critmass/internal/ui"
)

// Report line formats. The three lines are the program's stable output and
// must not change.
const (
	massLineFormat   = "The critical mass value where k < t_solution switches from False to True is approximately: %.5e kg\n"
	kLineFormat      = "Value of t for a = 1 given the obtained mass: %.5f s\n"
	radiusLineFormat = "Schwarzschild radius for this result: %.5e m\n"
)

// DisplayReport prints the three-line report of a successful search.
func DisplayReport(out io.Writer, o criticalmass.Outcome) {
	fmt.Fprintf(out, massLineFormat, o.Mass)
	fmt.Fprintf(out, kLineFormat, o.K)
	fmt.Fprintf(out, radiusLineFormat, o.Radius)
}

// DisplayDetails prints iteration counts and timings of a search after the
// report.
func DisplayDetails(out io.Writer, o criticalmass.Outcome) {
	fmt.Fprintf(out, "\n%s--- Search details ---%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(out, "Rate constant H        : %s%g s⁻¹%s\n", ui.ColorBlue(), o.H, ui.ColorReset())
	fmt.Fprintf(out, "Bisection iterations   : %s%s%s\n", ui.ColorBlue(), humanize.Comma(int64(o.BisectionIterations)), ui.ColorReset())
	fmt.Fprintf(out, "Newton solves          : %s%s%s\n", ui.ColorBlue(), humanize.Comma(int64(o.NewtonCalls)), ui.ColorReset())
	fmt.Fprintf(out, "Newton iterations      : %s%s%s\n", ui.ColorBlue(), humanize.Comma(int64(o.NewtonIterations)), ui.ColorReset())
	fmt.Fprintf(out, "Schwarzschild radius   : %s%.5e m%s\n", ui.ColorBlue(), o.Radius, ui.ColorReset())
	fmt.Fprintf(out, "Search time            : %s%s%s\n", ui.ColorGreen(), formatDuration(o.Duration), ui.ColorReset())
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "< 1µs"
	}
	return FormatExecutionDuration(d)
}

// JSONResult is the JSON document of one search. Failed searches carry
// Error, and FailedStage when a solver gave up.
type JSONResult struct {
	H                   float64 `json:"h"`
	Mass                float64 `json:"critical_mass_kg,omitempty"`
	K                   float64 `json:"k_s,omitempty"`
	Radius              float64 `json:"schwarzschild_radius_m,omitempty"`
	BisectionIterations int     `json:"bisection_iterations,omitempty"`
	NewtonCalls         int     `json:"newton_calls,omitempty"`
	NewtonIterations    int     `json:"newton_iterations,omitempty"`
	DurationSeconds     float64 `json:"duration_seconds"`
	Error               string  `json:"error,omitempty"`
	FailedStage         string  `json:"failed_stage,omitempty"`
}

// NewJSONResult builds the JSON document of a search with rate constant h.
// o is ignored when err is non-nil.
func NewJSONResult(h float64, o criticalmass.Outcome, elapsed time.Duration, err error) JSONResult {
	if err != nil {
		r := JSONResult{H: h, DurationSeconds: elapsed.Seconds(), Error: err.Error()}
		var convErr apperrors.ConvergenceFailure
		if errors.As(err, &convErr) {
			r.FailedStage = convErr.FailedStage()
		}
		return r
	}
	return JSONResult{
		H:                   h,
		Mass:                o.Mass,
		K:                   o.K,
		Radius:              o.Radius,
		BisectionIterations: o.BisectionIterations,
		NewtonCalls:         o.NewtonCalls,
		NewtonIterations:    o.NewtonIterations,
		DurationSeconds:     elapsed.Seconds(),
	}
}

// WriteJSON writes v as an indented JSON document.
func WriteJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}
