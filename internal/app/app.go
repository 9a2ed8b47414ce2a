package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/agbru/critmass/internal/cli"
	"github.com/agbru/critmass/internal/config"
	"github.com/agbru/critmass/internal/criticalmass"
	apperrors "github.com/agbru/critmass/internal/errors"
	"github.com/agbru/critmass/internal/logging"
	"github.com/agbru/critmass/internal/metrics"
	"github.com/agbru/critmass/internal/orchestration"
	"github.com/agbru/critmass/internal/solver"
	"github.com/agbru/critmass/internal/ui"
)

// iterationLogInterval is the sampling interval of debug iteration logs.
const iterationLogInterval = 100

// Application represents the critmass application instance.
// It encapsulates the configuration and runs either a single search or a
// sweep over several rate constants.
type Application struct {
	// Config holds the parsed application configuration.
	Config config.AppConfig
	// ErrWriter is the writer for error output (typically os.Stderr).
	ErrWriter io.Writer
	// Logger writes structured logs to ErrWriter at Config.LogLevel.
	Logger logging.Logger
	// Search runs one search. Defaults to criticalmass.Search.
	Search orchestration.SearchFunc
}

// New creates a new Application instance by parsing command-line arguments.
// It validates the configuration and returns an error if parsing or validation fails.
//
// Parameters:
//   - args: The command-line arguments (typically os.Args).
//   - errWriter: The writer for error output.
//
// Returns:
//   - *Application: A new application instance.
//   - error: An error if configuration parsing or validation fails.
func New(args []string, errWriter io.Writer) (*Application, error) {
	// args[0] is program name, args[1:] are the actual arguments
	programName := "critmass"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}

	// Validate has already accepted the level name.
	level, _ := logging.ParseLevel(cfg.LogLevel)

	return &Application{
		Config:    cfg,
		ErrWriter: errWriter,
		Logger:    logging.NewLogger(zerolog.SyncWriter(errWriter), "critmass", level),
		Search:    criticalmass.Search,
	}, nil
}

// Run executes the application: a sweep when rate constants were listed,
// a single search otherwise.
//
// Parameters:
//   - ctx: The context for managing cancellation and timeouts.
//   - out: The writer for standard output.
//
// Returns:
//   - int: An exit code (0 for success, non-zero for errors).
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	// Initialize CLI theme (respects --no-color flag and NO_COLOR env var)
	ui.InitTheme(a.Config.NoColor, out)

	ctx, lifecycle := SetupLifecycle(ctx, a.Config.Timeout)
	defer lifecycle.Cleanup()

	m := metrics.New()
	observer := a.newObserver(m)

	var code int
	if len(a.Config.Sweep) > 0 {
		code = a.runSweep(ctx, out, observer, m)
	} else {
		code = a.runSearch(ctx, out, observer, m)
	}

	if a.Config.MetricsFile != "" {
		if err := m.WriteTextfile(a.Config.MetricsFile); err != nil {
			a.Logger.Error("metrics export failed", err, logging.String("path", a.Config.MetricsFile))
			fmt.Fprintf(a.ErrWriter, "Error writing metrics: %v\n", err)
			if code == apperrors.ExitSuccess {
				code = apperrors.ExitErrorGeneric
			}
		}
	}
	return code
}

// newObserver fans solver iterates out to the metrics and, at debug level,
// to the logger.
func (a *Application) newObserver(m *metrics.Metrics) solver.IterationObserver {
	subject := solver.NewSubject()
	subject.Register(m.Observer())
	if zl, ok := a.Logger.(interface{ Zerolog() zerolog.Logger }); ok {
		if logger := zl.Zerolog(); logger.GetLevel() <= zerolog.DebugLevel {
			subject.Register(solver.NewLoggingObserver(logger, iterationLogInterval))
		}
	}
	return subject
}

// logFailure logs a failed search. Interruptions by timeout or signal are
// expected outcomes and are logged at info level.
func (a *Application) logFailure(h float64, err error) {
	if apperrors.IsContextError(err) {
		a.Logger.Info("search interrupted", logging.Float64("h", h), logging.Err(err))
		return
	}
	a.Logger.Error("search failed", err, logging.Float64("h", h))
}

func (a *Application) searchFunc() orchestration.SearchFunc {
	if a.Search != nil {
		return a.Search
	}
	return criticalmass.Search
}

// runSearch runs the search for Config.H and prints its report.
func (a *Application) runSearch(ctx context.Context, out io.Writer, observer solver.IterationObserver, m *metrics.Metrics) int {
	p := a.Config.ToSearchParams(a.Config.H)
	p.Newton.Observer = observer
	p.Bisection.Observer = observer

	a.Logger.Info("starting critical mass search",
		logging.Float64("h", p.H),
		logging.Float64("m_low", p.Low),
		logging.Float64("m_high", p.High),
		logging.Float64("tolerance", a.Config.Tolerance),
		logging.Int("max_iter", a.Config.MaxIter))

	start := time.Now()
	outcome, err := a.searchFunc()(ctx, p)
	elapsed := time.Since(start)
	m.RecordSearch(p.H, outcome.Mass, elapsed, err)

	if err != nil {
		a.logFailure(p.H, err)
		if a.Config.JSONOutput {
			_ = cli.WriteJSON(out, cli.NewJSONResult(p.H, outcome, elapsed, err))
		}
		return apperrors.HandleCalculationError(apperrors.CalculationError{H: p.H, Cause: err}, elapsed, a.ErrWriter, ui.ColorProvider{})
	}

	a.Logger.Info("critical mass found",
		logging.Float64("mass_kg", outcome.Mass),
		logging.Int("bisection_iterations", outcome.BisectionIterations),
		logging.Int("newton_iterations", outcome.NewtonIterations))

	if a.Config.JSONOutput {
		if err := cli.WriteJSON(out, cli.NewJSONResult(p.H, outcome, elapsed, nil)); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
		return apperrors.ExitSuccess
	}

	cli.DisplayReport(out, outcome)
	if a.Config.Details && !a.Config.Quiet {
		cli.DisplayDetails(out, outcome)
	}
	return apperrors.ExitSuccess
}

// runSweep runs one search per listed rate constant and prints a summary.
func (a *Application) runSweep(ctx context.Context, out io.Writer, observer solver.IterationObserver, m *metrics.Metrics) int {
	var progress io.Writer
	if !a.Config.Quiet && !a.Config.JSONOutput && ui.IsTerminal(a.ErrWriter) {
		progress = a.ErrWriter
	}

	a.Logger.Info("starting sweep",
		logging.Int("searches", len(a.Config.Sweep)),
		logging.Int("workers", a.Config.Workers))

	results := orchestration.ExecuteSweep(ctx, a.Config, orchestration.Sweep{
		Search:   a.searchFunc(),
		Observer: observer,
		Recorder: m,
		Progress: progress,
	})

	for _, res := range results {
		if res.Err != nil {
			a.logFailure(res.H, res.Err)
		}
	}

	if !a.Config.JSONOutput {
		return orchestration.AnalyzeSweepResults(results, out)
	}

	if err := cli.WriteJSON(out, orchestration.JSONResults(results)); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	for _, res := range results {
		if res.Err != nil {
			return apperrors.HandleCalculationError(res.Err, 0, a.ErrWriter, ui.ColorProvider{})
		}
	}
	return apperrors.ExitSuccess
}

// IsHelpError checks if the error is a help flag error (--help was used).
// This is useful for determining if the application should exit with success
// after displaying help text.
func IsHelpError(err error) bool {
	return errors.Is(err, pflag.ErrHelp)
}
