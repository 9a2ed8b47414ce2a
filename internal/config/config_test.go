package config

import (
	"bytes"
	"errors"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	apperrors "github.com/agbru/critmass/internal/errors"
	"github.com/agbru/critmass/internal/physics"
	"github.com/agbru/critmass/internal/solver"
)

func validConfig() AppConfig {
	return AppConfig{
		H:            physics.H,
		MassLow:      1_000,
		MassHigh:     1_000_000,
		Tolerance:    solver.DefaultTolerance,
		MaxIter:      solver.DefaultMaxIter,
		InitialGuess: solver.DefaultInitialGuess,
		Timeout:      time.Second,
		Workers:      2,
		LogLevel:     "warn",
	}
}

func TestParseConfig(t *testing.T) {
	t.Run("DefaultValues", func(t *testing.T) {
		t.Parallel()
		cfg, err := ParseConfig("critmass", []string{}, io.Discard)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if cfg.H != physics.H {
			t.Errorf("Expected default H %g, got %g", physics.H, cfg.H)
		}
		if cfg.MassLow != 1_000 || cfg.MassHigh != 1_000_000 {
			t.Errorf("Expected default bracket [1000, 1e6], got [%g, %g]", cfg.MassLow, cfg.MassHigh)
		}
		if cfg.Tolerance != 1e-8 {
			t.Errorf("Expected default tolerance 1e-8, got %g", cfg.Tolerance)
		}
		if cfg.MaxIter != 100_000 {
			t.Errorf("Expected default max-iter 100000, got %d", cfg.MaxIter)
		}
		if cfg.InitialGuess != 1.0 {
			t.Errorf("Expected default initial guess 1, got %g", cfg.InitialGuess)
		}
		if cfg.Timeout != DefaultTimeout {
			t.Errorf("Expected default Timeout %v, got %v", DefaultTimeout, cfg.Timeout)
		}
		if cfg.LogLevel != "warn" {
			t.Errorf("Expected default log level warn, got %q", cfg.LogLevel)
		}
		if len(cfg.Sweep) != 0 {
			t.Errorf("Expected no sweep, got %v", cfg.Sweep)
		}
	})

	t.Run("ValidFlags", func(t *testing.T) {
		t.Parallel()
		args := []string{
			"-H", "1e-17",
			"--m-low", "10",
			"--m-high", "1e7",
			"--tol", "1e-6",
			"--max-iter", "500",
			"--initial-guess", "2.5",
			"--timeout", "10s",
			"--workers", "3",
			"-d",
			"--json",
			"-q",
			"--no-color",
			"--log-level", "debug",
			"--metrics-file", "out.prom",
		}
		cfg, err := ParseConfig("critmass", args, io.Discard)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if cfg.H != 1e-17 {
			t.Errorf("Expected H 1e-17, got %g", cfg.H)
		}
		if cfg.MassLow != 10 || cfg.MassHigh != 1e7 {
			t.Errorf("Expected bracket [10, 1e7], got [%g, %g]", cfg.MassLow, cfg.MassHigh)
		}
		if cfg.Tolerance != 1e-6 || cfg.MaxIter != 500 || cfg.InitialGuess != 2.5 {
			t.Errorf("Unexpected solver settings: tol=%g max-iter=%d guess=%g", cfg.Tolerance, cfg.MaxIter, cfg.InitialGuess)
		}
		if cfg.Timeout != 10*time.Second {
			t.Errorf("Expected Timeout 10s, got %v", cfg.Timeout)
		}
		if cfg.Workers != 3 {
			t.Errorf("Expected 3 workers, got %d", cfg.Workers)
		}
		if !cfg.Details || !cfg.JSONOutput || !cfg.Quiet || !cfg.NoColor {
			t.Errorf("Expected all boolean flags set, got %+v", cfg)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("Expected log level debug, got %q", cfg.LogLevel)
		}
		if cfg.MetricsFile != "out.prom" {
			t.Errorf("Expected metrics file out.prom, got %q", cfg.MetricsFile)
		}
	})

	t.Run("Sweep", func(t *testing.T) {
		t.Parallel()
		cfg, err := ParseConfig("critmass", []string{"--sweep", "2.18e-18, 1e-17,0"}, io.Discard)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		want := []float64{2.18e-18, 1e-17, 0}
		if len(cfg.Sweep) != len(want) {
			t.Fatalf("Expected sweep %v, got %v", want, cfg.Sweep)
		}
		for i := range want {
			if cfg.Sweep[i] != want[i] {
				t.Errorf("sweep[%d] = %g, want %g", i, cfg.Sweep[i], want[i])
			}
		}
		if got := cfg.RateConstants(); len(got) != 3 {
			t.Errorf("RateConstants() = %v, want the sweep list", got)
		}
	})

	t.Run("InvalidFlags", func(t *testing.T) {
		t.Parallel()
		_, err := ParseConfig("critmass", []string{"--unknown"}, io.Discard)
		if err == nil {
			t.Error("Expected error for unknown flag")
		}
	})

	t.Run("UnexpectedArguments", func(t *testing.T) {
		t.Parallel()
		_, err := ParseConfig("critmass", []string{"extra"}, io.Discard)
		if !apperrors.IsConfigError(err) {
			t.Errorf("Expected ConfigError for positional argument, got %v", err)
		}
	})

	t.Run("HelpFlag", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		_, err := ParseConfig("critmass-test", []string{"--help"}, &buf)
		if !errors.Is(err, pflag.ErrHelp) {
			t.Fatalf("Expected pflag.ErrHelp, got %v", err)
		}
		for _, want := range []string{"Critical Mass Calculator", "critmass-test [flags]", "--m-low", "-H, --hubble", "CRITMASS_"} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("Usage output missing %q:\n%s", want, buf.String())
			}
		}
	})
}

func TestParseConfigValidationErrors(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name  string
		args  []string
		field string
	}{
		{"ReversedBracket", []string{"--m-low", "1e6", "--m-high", "1000"}, "m-high"},
		{"EqualBracket", []string{"--m-low", "5", "--m-high", "5"}, "m-high"},
		{"ZeroTolerance", []string{"--tol", "0"}, "tol"},
		{"NegativeMaxIter", []string{"--max-iter", "-1"}, "max-iter"},
		{"ZeroTimeout", []string{"--timeout", "0s"}, "timeout"},
		{"BadLogLevel", []string{"--log-level", "loud"}, "log-level"},
		{"NegativeSweepRate", []string{"--sweep", "1e-18,-1"}, "sweep"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			_, err := ParseConfig("critmass", tc.args, &buf)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !apperrors.IsConfigError(err) {
				t.Errorf("Expected a configuration error, got %T", err)
			}
			var valErr apperrors.ValidationError
			if !errors.As(err, &valErr) || valErr.Field != tc.field {
				t.Errorf("Expected validation error on %q, got %v", tc.field, err)
			}
			if !strings.Contains(buf.String(), "Configuration error:") {
				t.Errorf("Expected configuration error on the error writer, got %q", buf.String())
			}
		})
	}
}

func TestParseConfigMalformedSweep(t *testing.T) {
	t.Parallel()
	_, err := ParseConfig("critmass", []string{"--sweep", "1e-18,abc"}, io.Discard)
	if !apperrors.IsConfigError(err) {
		t.Errorf("Expected ConfigError, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"Valid", func(*AppConfig) {}, false},
		{"ZeroRateConstant", func(c *AppConfig) { c.H = 0 }, false},
		{"NaNRateConstant", func(c *AppConfig) { c.H = math.NaN() }, true},
		{"ZeroLowMass", func(c *AppConfig) { c.MassLow = 0 }, true},
		{"InfiniteHighMass", func(c *AppConfig) { c.MassHigh = math.Inf(1) }, true},
		{"NegativeTolerance", func(c *AppConfig) { c.Tolerance = -1e-8 }, true},
		{"ZeroMaxIter", func(c *AppConfig) { c.MaxIter = 0 }, true},
		{"NaNInitialGuess", func(c *AppConfig) { c.InitialGuess = math.NaN() }, true},
		{"ZeroWorkers", func(c *AppConfig) { c.Workers = 0 }, true},
		{"UpperCaseLogLevel", func(c *AppConfig) { c.LogLevel = "DEBUG" }, false},
		{"EmptyLogLevel", func(c *AppConfig) { c.LogLevel = "" }, true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := validConfig()
			tc.mutate(&c)
			err := c.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestToSearchParams(t *testing.T) {
	t.Parallel()
	c := validConfig()
	c.Tolerance = 1e-6
	c.MaxIter = 42
	c.InitialGuess = 3

	p := c.ToSearchParams(1e-17)
	if p.H != 1e-17 || p.Low != c.MassLow || p.High != c.MassHigh {
		t.Errorf("Unexpected params %+v", p)
	}
	for name, opts := range map[string]solver.Options{"newton": p.Newton, "bisection": p.Bisection} {
		if opts.Tolerance != 1e-6 || opts.MaxIter != 42 || opts.InitialGuess != 3 {
			t.Errorf("%s options = %+v", name, opts)
		}
	}
}

func TestParseRateList(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"", 0, false},
		{"   ", 0, false},
		{"1e-18", 1, false},
		{"1e-18,2e-18,3e-18", 3, false},
		{"1e-18,,2e-18", 0, true},
		{"fast", 0, true},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseRateList(tc.input)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseRateList(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
			}
			if len(got) != tc.want {
				t.Errorf("ParseRateList(%q) returned %d rates, want %d", tc.input, len(got), tc.want)
			}
		})
	}
}
