// Package orchestration runs several critical mass searches concurrently and
// summarizes their outcomes.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/critmass/internal/cli"
	"github.com/agbru/critmass/internal/config"
	"github.com/agbru/critmass/internal/criticalmass"
	apperrors "github.com/agbru/critmass/internal/errors"
	"github.com/agbru/critmass/internal/solver"
	"github.com/agbru/critmass/internal/ui"
)

// SearchFunc runs one search. criticalmass.Search is the production
// implementation; tests substitute their own.
type SearchFunc func(ctx context.Context, p criticalmass.Params) (criticalmass.Outcome, error)

// Recorder receives the outcome of every search, e.g. *metrics.Metrics.
type Recorder interface {
	RecordSearch(h, mass float64, elapsed time.Duration, err error)
}

// SweepResult encapsulates the outcome of the search for one rate constant.
type SweepResult struct {
	// H is the rate constant searched.
	H float64
	// Outcome is the search result. It is the zero value if Err is set.
	Outcome criticalmass.Outcome
	// Duration is the time taken by the search.
	Duration time.Duration
	// Err contains any error that occurred during the search.
	Err error
}

// Sweep configures ExecuteSweep.
type Sweep struct {
	// Search runs one search. Defaults to criticalmass.Search.
	Search SearchFunc
	// Observer receives the iterates of every solver. It is shared by all
	// searches and must be safe for concurrent use.
	Observer solver.IterationObserver
	// Recorder, if non-nil, is told about every finished search.
	Recorder Recorder
	// Progress, if non-nil, receives a spinner while the sweep runs.
	Progress io.Writer
}

// ExecuteSweep searches the critical mass for every rate constant of
// cfg.RateConstants(), running at most cfg.Workers searches at once.
//
// A failed search does not stop the others: each failure is kept in its own
// SweepResult. Results are returned in the order of the rate constants.
// Cancellation of ctx interrupts the searches still running.
func ExecuteSweep(ctx context.Context, cfg config.AppConfig, sw Sweep) []SweepResult {
	rates := cfg.RateConstants()
	results := make([]SweepResult, len(rates))

	search := sw.Search
	if search == nil {
		search = criticalmass.Search
	}

	var progress *cli.SweepProgress
	if sw.Progress != nil {
		progress = cli.StartSweepProgress(sw.Progress, len(rates))
		defer progress.Stop()
	}

	// Searches never return an error to the group, so the group context is
	// only cancelled by the parent.
	g, ctx := errgroup.WithContext(ctx)
	if cfg.Workers > 0 {
		g.SetLimit(cfg.Workers)
	}

	for i, h := range rates {
		idx, rate := i, h
		g.Go(func() error {
			p := cfg.ToSearchParams(rate)
			p.Newton.Observer = sw.Observer
			p.Bisection.Observer = sw.Observer

			start := time.Now()
			out, err := search(ctx, p)
			elapsed := time.Since(start)
			if err != nil {
				err = apperrors.CalculationError{H: rate, Cause: err}
				out = criticalmass.Outcome{}
			}
			results[idx] = SweepResult{H: rate, Outcome: out, Duration: elapsed, Err: err}

			if sw.Recorder != nil {
				sw.Recorder.RecordSearch(rate, out.Mass, elapsed, err)
			}
			if progress != nil {
				progress.Advance()
			}
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// AnalyzeSweepResults prints a summary table of the sweep, one row per rate
// constant in the order searched, followed by a global status line.
//
// Parameters:
//   - results: The sweep results, as returned by ExecuteSweep.
//   - out: The io.Writer for the summary report.
//
// Returns:
//   - int: ExitSuccess if every search succeeded, otherwise the exit code of
//     the first failed row.
func AnalyzeSweepResults(results []SweepResult, out io.Writer) int {
	fmt.Fprintf(out, "--- Sweep Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "%sH (s⁻¹)%s\t%sCritical mass (kg)%s\t%sK(m) (s)%s\t%sDuration%s\t%sStatus%s\n",
		ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset(),
		ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset(),
		ui.ColorUnderline(), ui.ColorReset())

	var firstError error
	failures := 0
	for _, res := range results {
		mass, k := "-", "-"
		var status string
		if res.Err != nil {
			failures++
			if firstError == nil {
				firstError = res.Err
			}
			status = fmt.Sprintf("%sFailure (%s)%s", ui.ColorRed(), failureLabel(res.Err), ui.ColorReset())
		} else {
			mass = fmt.Sprintf("%.5e", res.Outcome.Mass)
			k = fmt.Sprintf("%.5f", res.Outcome.K)
			status = fmt.Sprintf("%sSuccess%s", ui.ColorGreen(), ui.ColorReset())
		}
		duration := cli.FormatExecutionDuration(res.Duration)
		if res.Duration == 0 {
			duration = "< 1µs"
		}
		fmt.Fprintf(tw, "%s%g%s\t%s\t%s\t%s%s%s\t%s\n",
			ui.ColorBlue(), res.H, ui.ColorReset(),
			mass, k,
			ui.ColorYellow(), duration, ui.ColorReset(),
			status)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(out, "Warning: failed to flush tabwriter: %v\n", err)
	}

	if failures == 0 {
		fmt.Fprintf(out, "\nGlobal Status: Success. %d of %d searches converged.\n", len(results), len(results))
		return apperrors.ExitSuccess
	}
	fmt.Fprintf(out, "\nGlobal Status: Failure. %d of %d searches failed.\n", failures, len(results))
	return apperrors.HandleCalculationError(firstError, 0, out, ui.ColorProvider{})
}

func failureLabel(err error) string {
	var convErr apperrors.ConvergenceFailure
	if errors.As(err, &convErr) {
		return convErr.FailedStage() + " solver did not converge"
	}
	switch apperrors.ExitCode(err) {
	case apperrors.ExitErrorTimeout:
		return "timeout"
	case apperrors.ExitErrorCanceled:
		return "canceled"
	default:
		return "error"
	}
}

// JSONResults converts sweep results to their JSON documents.
func JSONResults(results []SweepResult) []cli.JSONResult {
	docs := make([]cli.JSONResult, len(results))
	for i, res := range results {
		docs[i] = cli.NewJSONResult(res.H, res.Outcome, res.Duration, res.Err)
	}
	return docs
}
