// Package config provides the configuration management for the critmass application.
// It defines the data structure for the configuration, handles the parsing of
// command-line arguments, and performs validation on the configuration values.
//
// Every setting defaults to the reference model, so running without flags or
// CRITMASS_* variables reproduces the reference computation.
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/agbru/critmass/internal/criticalmass"
	apperrors "github.com/agbru/critmass/internal/errors"
	"github.com/agbru/critmass/internal/logging"
	"github.com/agbru/critmass/internal/physics"
	"github.com/agbru/critmass/internal/solver"
)

const (
	// EnvPrefix is the prefix for all environment variables used by critmass.
	// Environment variables provide an alternative to CLI flags for configuration.
	EnvPrefix = "CRITMASS_"
)

// Default configuration values.
const (
	// DefaultTimeout bounds a whole run, sweep included.
	DefaultTimeout = time.Minute
)

// AppConfig aggregates the application's configuration parameters, parsed from
// command-line flags and environment variables.
type AppConfig struct {
	// H is the rate constant of the model.
	H float64
	// MassLow and MassHigh bound the bisection bracket, in kg.
	MassLow  float64
	MassHigh float64
	// Tolerance is the convergence tolerance of both solvers.
	Tolerance float64
	// MaxIter is the iteration cap of both solvers.
	MaxIter int
	// InitialGuess is the starting iterate of every Newton solve.
	InitialGuess float64
	// Timeout sets the maximum duration of the run.
	Timeout time.Duration
	// Sweep, if non-empty, lists rate constants to search concurrently
	// instead of the single H.
	Sweep []float64
	// Workers bounds the number of concurrent searches in a sweep.
	Workers int
	// Details appends iteration counts and timings to the report.
	Details bool
	// JSONOutput, if true, outputs the result in JSON format.
	JSONOutput bool
	// Quiet suppresses the sweep spinner and the details block.
	Quiet bool
	// NoColor, if true, disables all color output in the CLI.
	// Also respects the NO_COLOR environment variable.
	NoColor bool
	// LogLevel is the zerolog level name for stderr logging.
	LogLevel string
	// MetricsFile, if set, receives Prometheus metrics in text format.
	MetricsFile string
}

// ToSearchParams converts the configuration into the parameters of a single
// search for the rate constant h.
func (c AppConfig) ToSearchParams(h float64) criticalmass.Params {
	opts := solver.Options{
		InitialGuess: c.InitialGuess,
		Tolerance:    c.Tolerance,
		MaxIter:      c.MaxIter,
	}
	return criticalmass.Params{
		H:         h,
		Low:       c.MassLow,
		High:      c.MassHigh,
		Newton:    opts,
		Bisection: opts,
	}
}

// RateConstants returns the rate constants to search: the sweep list if one
// was given, H otherwise.
func (c AppConfig) RateConstants() []float64 {
	if len(c.Sweep) > 0 {
		return c.Sweep
	}
	return []float64{c.H}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate checks the semantic consistency of the configuration parameters.
//
// Returns:
//   - error: A ValidationError naming the offending flag, or nil.
func (c AppConfig) Validate() error {
	if !finite(c.H) || c.H < 0 {
		return apperrors.NewValidationError("hubble", "must be a finite non-negative number", c.H)
	}
	if !finite(c.MassLow) || c.MassLow <= 0 {
		return apperrors.NewValidationError("m-low", "must be a finite positive mass", c.MassLow)
	}
	if !finite(c.MassHigh) || c.MassHigh <= c.MassLow {
		return apperrors.NewValidationError("m-high", "must be greater than m-low", c.MassHigh)
	}
	if !finite(c.Tolerance) || c.Tolerance <= 0 {
		return apperrors.NewValidationError("tol", "must be strictly positive", c.Tolerance)
	}
	if c.MaxIter <= 0 {
		return apperrors.NewValidationError("max-iter", "must be strictly positive", c.MaxIter)
	}
	if !finite(c.InitialGuess) {
		return apperrors.NewValidationError("initial-guess", "must be finite", c.InitialGuess)
	}
	if c.Timeout <= 0 {
		return apperrors.NewValidationError("timeout", "must be strictly positive", c.Timeout)
	}
	if c.Workers <= 0 {
		return apperrors.NewValidationError("workers", "must be strictly positive", c.Workers)
	}
	for _, h := range c.Sweep {
		if !finite(h) || h < 0 {
			return apperrors.NewValidationError("sweep", "rate constants must be finite and non-negative", h)
		}
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return apperrors.NewValidationError("log-level", err.Error(), c.LogLevel)
	}
	return nil
}

// ParseRateList parses a comma-separated list of rate constants.
func ParseRateList(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	rates := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, apperrors.NewConfigError("invalid rate constant %q in sweep list", strings.TrimSpace(p))
		}
		rates = append(rates, v)
	}
	return rates, nil
}

// ParseConfig parses the command-line arguments and populates an AppConfig
// struct. It defines all the command-line flags, sets their default values,
// applies environment overrides and validates the result.
//
// Parameters:
//   - programName: The name of the program, used in the usage message.
//   - args: The command-line arguments (typically os.Args[1:]).
//   - errorWriter: Where parsing errors and usage information are printed.
//
// Returns:
//   - AppConfig: The populated configuration struct.
//   - error: pflag.ErrHelp when help was requested, or an error if parsing
//     or validation fails.
func ParseConfig(programName string, args []string, errorWriter io.Writer) (AppConfig, error) {
	fs := pflag.NewFlagSet(programName, pflag.ContinueOnError)
	fs.SetOutput(errorWriter)
	fs.SortFlags = false

	config := AppConfig{}
	var sweep string
	fs.Float64VarP(&config.H, "hubble", "H", physics.H, "Rate constant H of the model (s⁻¹).")
	fs.Float64Var(&config.MassLow, "m-low", criticalmass.DefaultMassLow, "Lower end of the mass bracket (kg).")
	fs.Float64Var(&config.MassHigh, "m-high", criticalmass.DefaultMassHigh, "Upper end of the mass bracket (kg).")
	fs.Float64Var(&config.Tolerance, "tol", solver.DefaultTolerance, "Convergence tolerance of both solvers.")
	fs.IntVar(&config.MaxIter, "max-iter", solver.DefaultMaxIter, "Iteration cap of both solvers.")
	fs.Float64Var(&config.InitialGuess, "initial-guess", solver.DefaultInitialGuess, "Starting value of every Newton solve.")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum execution time.")
	fs.StringVar(&sweep, "sweep", "", "Comma-separated rate constants to search concurrently.")
	fs.IntVar(&config.Workers, "workers", runtime.GOMAXPROCS(0), "Maximum number of concurrent searches in a sweep.")
	fs.BoolVarP(&config.Details, "details", "d", false, "Display iteration counts and timings.")
	fs.BoolVar(&config.JSONOutput, "json", false, "Output results in JSON format.")
	fs.BoolVarP(&config.Quiet, "quiet", "q", false, "Quiet mode - no spinner, no details.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output (also respects NO_COLOR env var).")
	fs.StringVar(&config.LogLevel, "log-level", logging.DefaultLevel, "Log level on stderr (debug, info, warn, error, disabled).")
	fs.StringVar(&config.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file.")
	// Handled before parsing by the app package; declared so usage lists it.
	fs.BoolP("version", "V", false, "Display version information and exit.")

	setCustomUsage(fs, programName, errorWriter)

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(errorWriter, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		fs.Usage()
		return AppConfig{}, apperrors.NewConfigError("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	// Apply environment variable overrides for flags not explicitly set
	if err := applyEnvOverrides(&config, &sweep, fs); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		return AppConfig{}, err
	}

	rates, err := ParseRateList(sweep)
	if err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		return AppConfig{}, err
	}
	config.Sweep = rates

	if err := config.Validate(); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		fs.Usage()
		return AppConfig{}, errors.Join(apperrors.NewConfigError("invalid configuration"), err)
	}
	return config, nil
}
