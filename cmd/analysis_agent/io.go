package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/jonathan/fit-analysis/internal/normalize"
	"github.com/jonathan/fit-analysis/internal/recovery"
)

// readInput reads path, or stdin when path is "-" or empty
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return data, nil
}

// writeOutput writes data to path, or to the command's stdout when path is empty
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// marshalIndented renders v as indented JSON with a trailing newline
func marshalIndented(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return pretty.Pretty(raw), nil
}

// newEngine builds a recovery engine from the resolved settings
func newEngine() *recovery.Engine {
	return recovery.New(settings.RecoveryOptions(logger)...)
}

// newNormalizer builds a normalizer that logs through the CLI logger
func newNormalizer() *normalize.Normalizer {
	return normalize.New(normalize.WithLogger(logger))
}
