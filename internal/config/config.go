// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/jonathan/fit-analysis/internal/llm"
	"github.com/jonathan/fit-analysis/internal/recovery"
)

// Environment variables that override config file values
const (
	EnvMaxInputBytes = "FIT_MAX_INPUT_BYTES"
	EnvMaxDepth      = "FIT_MAX_DEPTH"
	EnvConcurrency   = "FIT_CONCURRENCY"
	EnvLogLevel      = "FIT_LOG_LEVEL"
	EnvEnvelopePath  = "FIT_ENVELOPE_PATH"
	EnvStages        = "FIT_STAGES"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// MaxInputBytes is the largest accepted completion in bytes
	MaxInputBytes int `json:"max_input_bytes,omitempty" validate:"gte=0"`
	// MaxDepth is the maximum nesting depth of recovered values
	MaxDepth int `json:"max_depth,omitempty" validate:"gte=0,lte=10000"`
	// Concurrency is the number of items processed in parallel in batch mode
	Concurrency int `json:"concurrency,omitempty" validate:"gte=0,lte=256"`

	// Stages is a comma-separated list of repair stages, in order
	Stages string `json:"stages,omitempty"`
	// EnvelopePath is a gjson path or provider name locating the completion in a response body
	EnvelopePath string `json:"envelope_path,omitempty"`

	LogLevel string `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	LogJSON  bool   `json:"log_json,omitempty"`
	Verbose  bool   `json:"verbose,omitempty"` // Print detailed debug information
}

// Error represents an invalid or unreadable configuration
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Defaults returns the built-in configuration
func Defaults() Config {
	return Config{
		MaxInputBytes: recovery.DefaultMaxInputBytes,
		MaxDepth:      recovery.DefaultMaxDepth,
		Concurrency:   4,
		LogLevel:      "info",
	}
}

// LoadDotEnv loads a .env file into the process environment.
// A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &Error{Message: "failed to load .env", Cause: err}
	}
	return nil
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, &Error{Message: "config path is empty"}
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("failed to read config file %s", path), Cause: err}
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &Error{Message: "failed to parse config JSON", Cause: err}
	}

	return &cfg, nil
}

// ApplyEnv overrides fields from FIT_* variables found by lookup (os.LookupEnv in production)
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	ints := []struct {
		name string
		dst  *int
	}{
		{EnvMaxInputBytes, &c.MaxInputBytes},
		{EnvMaxDepth, &c.MaxDepth},
		{EnvConcurrency, &c.Concurrency},
	}
	for _, v := range ints {
		raw, ok := lookup(v.name)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return &Error{Message: fmt.Sprintf("%s must be an integer", v.name), Cause: err}
		}
		*v.dst = n
	}

	strs := []struct {
		name string
		dst  *string
	}{
		{EnvLogLevel, &c.LogLevel},
		{EnvEnvelopePath, &c.EnvelopePath},
		{EnvStages, &c.Stages},
	}
	for _, v := range strs {
		if raw, ok := lookup(v.name); ok && strings.TrimSpace(raw) != "" {
			*v.dst = strings.TrimSpace(raw)
		}
	}
	return nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &Error{Message: fmt.Sprintf("'%s' failed the '%s' check", jsonName(fe.Field()), fe.Tag()), Cause: err}
		}
		return &Error{Message: "invalid configuration", Cause: err}
	}

	if c.Stages != "" {
		if _, err := recovery.ParseStages(c.Stages); err != nil {
			return &Error{Message: "'stages' is invalid", Cause: err}
		}
	}
	return nil
}

// jsonName maps a struct field name to its JSON key
func jsonName(field string) string {
	switch field {
	case "MaxInputBytes":
		return "max_input_bytes"
	case "MaxDepth":
		return "max_depth"
	case "Concurrency":
		return "concurrency"
	case "LogLevel":
		return "log_level"
	default:
		return field
	}
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Stages == "" {
		result.Stages = defaults.Stages
	}
	if result.EnvelopePath == "" {
		result.EnvelopePath = defaults.EnvelopePath
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}

	// Int fields: use default if zero
	if result.MaxInputBytes == 0 {
		result.MaxInputBytes = defaults.MaxInputBytes
	}
	if result.MaxDepth == 0 {
		result.MaxDepth = defaults.MaxDepth
	}
	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// SlogLevel returns the configured level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ResolvedEnvelopePath expands a provider name to its envelope path
func (c *Config) ResolvedEnvelopePath() string {
	return llm.ResolveEnvelopePath(c.EnvelopePath)
}

// RecoveryOptions builds engine options from the configuration.
// Call Validate first; invalid stage lists are ignored here.
func (c *Config) RecoveryOptions(logger *slog.Logger) []recovery.Option {
	opts := []recovery.Option{recovery.WithLogger(logger)}
	if c.MaxDepth > 0 {
		opts = append(opts, recovery.WithMaxDepth(c.MaxDepth))
	}
	if c.MaxInputBytes > 0 {
		opts = append(opts, recovery.WithMaxInputBytes(c.MaxInputBytes))
	}
	if c.Stages != "" {
		if stages, err := recovery.ParseStages(c.Stages); err == nil {
			opts = append(opts, recovery.WithStages(stages...))
		}
	}
	return opts
}
