package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/fit-analysis/internal/llm"
	"github.com/jonathan/fit-analysis/internal/pipeline/steps"
	"github.com/jonathan/fit-analysis/internal/recovery"
)

var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "List recovery stages, pipeline steps and envelope providers",
	Long:  "Prints the recovery stages in evaluation order (marking those enabled by the current configuration), the batch pipeline steps with their readiness, and the built-in envelope path presets.",
	RunE:  runStages,
}

func init() {
	rootCmd.AddCommand(stagesCmd)
}

//nolint:errcheck // writing to stdout; errors are not recoverable
func runStages(cmd *cobra.Command, _ []string) error {
	enabled := make(map[recovery.Stage]bool)
	for _, s := range newEngine().Stages() {
		enabled[s] = true
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Recovery stages:")
	for _, s := range recovery.DefaultStages() {
		def, _ := recovery.LookupStage(s)
		mark := " "
		if enabled[s] {
			mark = "✓"
		}
		fmt.Fprintf(out, "  %s %-16s %s\n", mark, s, def.Category)
	}

	printPipelineSteps(out, settings.ResolvedEnvelopePath())

	fmt.Fprintln(out, "\nEnvelope providers:")
	for _, p := range llm.Providers() {
		path, _ := llm.EnvelopePath(p)
		fmt.Fprintf(out, "  %-10s %s\n", p, path)
	}
	if current := settings.ResolvedEnvelopePath(); current != "" {
		fmt.Fprintf(out, "\nConfigured envelope path: %s\n", current)
	}
	return nil
}

// printPipelineSteps shows which batch steps can start immediately and which
// wait on others. Envelope extraction is skipped when no path is configured.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func printPipelineSteps(out io.Writer, envelopePath string) {
	statuses := make(map[string]steps.StepStatus)
	if envelopePath == "" {
		statuses[steps.StepExtractEnvelope] = steps.StatusSkipped
	}
	ready := make(map[string]bool)
	for _, s := range steps.GetAvailableSteps(statuses) {
		ready[s] = true
	}
	blocked := make(map[string]bool)
	for _, s := range steps.GetBlockedSteps(statuses) {
		blocked[s] = true
	}

	fmt.Fprintln(out, "\nPipeline steps:")
	for _, step := range steps.Order {
		state := string(statuses[step])
		switch {
		case ready[step]:
			state = "ready"
		case blocked[step]:
			state = "after " + strings.Join(steps.StepRegistry[step].Dependencies, ", ")
		}
		fmt.Fprintf(out, "  %-18s %-14s %s\n", step, steps.Category(step), state)
	}
}
