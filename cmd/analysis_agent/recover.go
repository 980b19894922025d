package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/fit-analysis/internal/observability"
	"github.com/jonathan/fit-analysis/internal/recovery"
)

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Recover a structured value from loosely formatted model output",
	Long:  "Runs the lenient recovery stages (fence extraction, comment stripping, bare-token quoting, truncation repair and so on) over a completion and prints the recovered value as JSON.",
	RunE:  runRecover,
}

var (
	recoverInput  string
	recoverOutput string
)

func init() {
	recoverCmd.Flags().StringVarP(&recoverInput, "in", "i", "-", "Path to completion text, or - for stdin")
	recoverCmd.Flags().StringVarP(&recoverOutput, "out", "o", "", "Output file path (default: stdout)")

	rootCmd.AddCommand(recoverCmd)
}

func runRecover(cmd *cobra.Command, _ []string) error {
	data, err := readInput(cmd, recoverInput)
	if err != nil {
		return err
	}

	result, err := newEngine().Recover(string(data))
	if settings.Verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintRecovery(result, err)
	}
	if err != nil {
		if failure, ok := recovery.IsFailure(err); ok {
			logger.Debug("last attempted text", "reason", failure.Reason, "text", failure.LastAttempted)
		}
		return err
	}

	logger.Info("recovered structured value", "stage", result.Stage, "kind", result.Value.Kind().String())

	out, err := marshalIndented(result.Value)
	if err != nil {
		return err
	}
	return writeOutput(cmd, recoverOutput, out)
}
