package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/fit-analysis/internal/llm"
	"github.com/jonathan/fit-analysis/internal/observability"
	"github.com/jonathan/fit-analysis/internal/schemas"
	"github.com/jonathan/fit-analysis/internal/types"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Produce a canonical compatibility-analysis record from model output",
	Long:  "Recovers the structured value in a completion and maps its fields onto the canonical analysis record. Unrecoverable input yields the default record rather than an error.",
	RunE:  runNormalize,
}

var (
	normalizeInput        string
	normalizeOutput       string
	normalizeEnvelopePath string
	normalizeValidate     bool
	normalizeStrict       bool
)

func init() {
	normalizeCmd.Flags().StringVarP(&normalizeInput, "in", "i", "-", "Path to completion text, or - for stdin")
	normalizeCmd.Flags().StringVarP(&normalizeOutput, "out", "o", "", "Output file path (default: stdout)")
	normalizeCmd.Flags().StringVar(&normalizeEnvelopePath, "envelope-path", "", "gjson path or provider name (gemini, openai, anthropic, ollama) locating the completion in a raw API response")
	normalizeCmd.Flags().BoolVar(&normalizeValidate, "validate", false, "Validate the record against the canonical schema")
	normalizeCmd.Flags().BoolVar(&normalizeStrict, "strict", false, "Fail when the completion cannot be recovered instead of emitting the default record")

	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, _ []string) error {
	data, err := readInput(cmd, normalizeInput)
	if err != nil {
		return err
	}

	envelopePath := settings.ResolvedEnvelopePath()
	if cmd.Flags().Changed("envelope-path") {
		envelopePath = llm.ResolveEnvelopePath(normalizeEnvelopePath)
	}
	text, err := llm.ExtractEnvelopeText(data, envelopePath)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(cmd.ErrOrStderr())

	var value *types.Value
	result, err := newEngine().Recover(text)
	if settings.Verbose {
		printer.PrintRecovery(result, err)
	}
	switch {
	case err == nil:
		value = &result.Value
		logger.Debug("recovered structured value", "stage", result.Stage)
	case normalizeStrict:
		return err
	default:
		logger.Warn("completion could not be recovered, emitting default record", "error", err)
	}

	record, report := newNormalizer().NormalizeWithReport(value)
	if settings.Verbose {
		printer.PrintReport(report)
		printer.PrintAnalysis(&record)
	}

	if normalizeValidate {
		if err := schemas.ValidateRecord(record); err != nil {
			printer.PrintValidation(err)
			return fmt.Errorf("normalized record failed validation: %w", err)
		}
	}

	out, err := marshalIndented(record)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd, normalizeOutput, out); err != nil {
		return err
	}
	if normalizeOutput != "" {
		logger.Info("wrote analysis record", "path", normalizeOutput, "score", record.CompatibilityScore)
	}
	return nil
}
