// This file contains environment variable utilities for configuration override.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	apperrors "github.com/agbru/critmass/internal/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Environment Variable Utilities
// ─────────────────────────────────────────────────────────────────────────────

// getEnvString returns the value of the environment variable with the given key
// (prefixed with EnvPrefix), or the default value if not set.
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

// envError reports a malformed environment value the same way a malformed
// flag value is reported.
func envError(key, val string) error {
	return apperrors.NewConfigError("invalid value %q for %s%s", val, EnvPrefix, key)
}

// getEnvFloat returns the value of the environment variable with the given key
// (prefixed with EnvPrefix) parsed as float64, or the default value if not set.
// A value that does not parse yields a ConfigError naming the variable.
func getEnvFloat(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(EnvPrefix + key)
	if val == "" {
		return defaultVal, nil
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return defaultVal, envError(key, val)
	}
	return parsed, nil
}

// getEnvInt returns the value of the environment variable with the given key
// (prefixed with EnvPrefix) parsed as int, or the default value if not set.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(EnvPrefix + key)
	if val == "" {
		return defaultVal, nil
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return defaultVal, envError(key, val)
	}
	return parsed, nil
}

// getEnvBool returns the value of the environment variable with the given key
// (prefixed with EnvPrefix) parsed as bool, or the default value if not set.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false (case-insensitive).
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(EnvPrefix + key)
	if val == "" {
		return defaultVal, nil
	}
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return defaultVal, envError(key, val)
}

// getEnvDuration returns the value of the environment variable with the given key
// (prefixed with EnvPrefix) parsed as time.Duration, or the default value if not
// set. Accepts formats like "5m", "30s", "1h30m".
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(EnvPrefix + key)
	if val == "" {
		return defaultVal, nil
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(val))
	if err != nil {
		return defaultVal, envError(key, val)
	}
	return parsed, nil
}

// applyEnvOverrides applies environment variable values to the configuration
// for any flags that were not explicitly set on the command line.
// This implements the priority: CLI flags > Environment variables > Defaults.
// Malformed values are collected and returned as ConfigErrors.
//
// Supported environment variables:
//   - CRITMASS_HUBBLE: Rate constant H (float)
//   - CRITMASS_M_LOW, CRITMASS_M_HIGH: Mass bracket in kg (float)
//   - CRITMASS_TOL: Solver tolerance (float)
//   - CRITMASS_MAX_ITER: Solver iteration cap (int)
//   - CRITMASS_INITIAL_GUESS: Newton starting value (float)
//   - CRITMASS_TIMEOUT: Run timeout (duration: "5m", "30s")
//   - CRITMASS_SWEEP: Comma-separated rate constants (string)
//   - CRITMASS_WORKERS: Sweep concurrency (int)
//   - CRITMASS_DETAILS, CRITMASS_JSON, CRITMASS_QUIET, CRITMASS_NO_COLOR (bool)
//   - CRITMASS_LOG_LEVEL: zerolog level name (string)
//   - CRITMASS_METRICS_FILE: Prometheus textfile path (string)
func applyEnvOverrides(config *AppConfig, sweep *string, fs *pflag.FlagSet) error {
	return errors.Join(
		applyNumericOverrides(config, fs),
		applyDurationOverrides(config, fs),
		applyStringOverrides(config, sweep, fs),
		applyBooleanOverrides(config, fs),
	)
}

func applyNumericOverrides(config *AppConfig, fs *pflag.FlagSet) error {
	var errs []error
	floats := []struct {
		flag, key string
		dst       *float64
	}{
		{"hubble", "HUBBLE", &config.H},
		{"m-low", "M_LOW", &config.MassLow},
		{"m-high", "M_HIGH", &config.MassHigh},
		{"tol", "TOL", &config.Tolerance},
		{"initial-guess", "INITIAL_GUESS", &config.InitialGuess},
	}
	for _, f := range floats {
		if fs.Changed(f.flag) {
			continue
		}
		v, err := getEnvFloat(f.key, *f.dst)
		*f.dst = v
		errs = append(errs, err)
	}

	ints := []struct {
		flag, key string
		dst       *int
	}{
		{"max-iter", "MAX_ITER", &config.MaxIter},
		{"workers", "WORKERS", &config.Workers},
	}
	for _, f := range ints {
		if fs.Changed(f.flag) {
			continue
		}
		v, err := getEnvInt(f.key, *f.dst)
		*f.dst = v
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func applyDurationOverrides(config *AppConfig, fs *pflag.FlagSet) error {
	if fs.Changed("timeout") {
		return nil
	}
	v, err := getEnvDuration("TIMEOUT", config.Timeout)
	config.Timeout = v
	return err
}

func applyStringOverrides(config *AppConfig, sweep *string, fs *pflag.FlagSet) error {
	if !fs.Changed("sweep") {
		*sweep = getEnvString("SWEEP", *sweep)
	}
	if !fs.Changed("log-level") {
		config.LogLevel = getEnvString("LOG_LEVEL", config.LogLevel)
	}
	if !fs.Changed("metrics-file") {
		config.MetricsFile = getEnvString("METRICS_FILE", config.MetricsFile)
	}
	return nil
}

func applyBooleanOverrides(config *AppConfig, fs *pflag.FlagSet) error {
	var errs []error
	bools := []struct {
		flag, key string
		dst       *bool
	}{
		{"details", "DETAILS", &config.Details},
		{"json", "JSON", &config.JSONOutput},
		{"quiet", "QUIET", &config.Quiet},
		{"no-color", "NO_COLOR", &config.NoColor},
	}
	for _, f := range bools {
		if fs.Changed(f.flag) {
			continue
		}
		v, err := getEnvBool(f.key, *f.dst)
		*f.dst = v
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
