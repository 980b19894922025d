// Package main implements the analysis_agent CLI for recovering and normalizing model compatibility analyses.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/fit-analysis/internal/config"
)

var rootCmd = &cobra.Command{
	Use:               "analysis_agent",
	Short:             "Recover and normalize LLM compatibility analyses",
	Long:              "analysis_agent turns loosely formatted model output (fenced, commented, truncated or otherwise malformed JSON) into a canonical compatibility-analysis record.",
	PersistentPreRunE: loadSettings,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

var (
	configFile string
	logLevel   string
	logJSON    bool
	verbose    bool
)

// settings and logger are resolved once per invocation in loadSettings
var (
	settings = config.Defaults()
	logger   = slog.New(slog.DiscardHandler)
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to JSON config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides FIT_LOG_LEVEL)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed recovery and normalization information")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadSettings resolves configuration with precedence flags > environment > config file > defaults
func loadSettings(cmd *cobra.Command, _ []string) error {
	cfg := config.Config{}
	if configFile != "" {
		loaded, err := config.LoadConfig(configFile)
		if err != nil {
			return err
		}
		cfg = *loaded
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-json") {
		cfg.LogJSON = logJSON
	}
	if verbose {
		cfg.Verbose = true
	}

	merged := cfg.MergeWithDefaults(config.Defaults())
	if err := merged.Validate(); err != nil {
		return err
	}

	settings = merged
	logger = newLogger(cmd.ErrOrStderr(), settings)
	return nil
}

// newLogger builds a slog logger backed by charmbracelet/log
func newLogger(w io.Writer, cfg config.Config) *slog.Logger {
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Level:           charmlog.Level(cfg.SlogLevel()),
		Prefix:          "analysis_agent",
	})
	if cfg.LogJSON {
		handler.SetFormatter(charmlog.JSONFormatter)
	} else {
		handler.SetFormatter(charmlog.TextFormatter)
	}
	return slog.New(handler)
}
