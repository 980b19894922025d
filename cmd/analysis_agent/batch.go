package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/fit-analysis/internal/llm"
	"github.com/jonathan/fit-analysis/internal/observability"
	"github.com/jonathan/fit-analysis/internal/pipeline"
)

// summaryFile is written to the output directory after every batch run
const summaryFile = "batch_summary.json"

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Normalize every completion in a directory",
	Long:  "Recovers and normalizes each file in --in concurrently, writing one <name>.json record per input plus batch_summary.json to --out. Exits non-zero when any item fails.",
	RunE:  runBatch,
}

var (
	batchInputDir    string
	batchOutputDir   string
	batchConcurrency int
	batchEnvelope    string
	batchValidate    bool
)

func init() {
	batchCmd.Flags().StringVarP(&batchInputDir, "in", "i", "", "Directory of completion files (required)")
	batchCmd.Flags().StringVarP(&batchOutputDir, "out", "o", "", "Output directory (required)")
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "c", 0, "Items processed in parallel (default from config)")
	batchCmd.Flags().StringVar(&batchEnvelope, "envelope-path", "", "gjson path or provider name locating the completion in each file")
	batchCmd.Flags().BoolVar(&batchValidate, "validate", false, "Validate every record against the canonical schema")

	if err := batchCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}
	if err := batchCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	inputs, err := loadBatchInputs(batchInputDir)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no input files found in %s", batchInputDir)
	}

	concurrency := settings.Concurrency
	if batchConcurrency > 0 {
		concurrency = batchConcurrency
	}
	envelopePath := settings.ResolvedEnvelopePath()
	if cmd.Flags().Changed("envelope-path") {
		envelopePath = llm.ResolveEnvelopePath(batchEnvelope)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	outputs, runErr := pipeline.RunBatch(ctx, inputs, pipeline.RunOptions{
		Concurrency:  concurrency,
		EnvelopePath: envelopePath,
		Validate:     batchValidate,
		Recovery:     newEngine(),
		Normalizer:   newNormalizer(),
		Logger:       logger,
		OnProgress: func(e pipeline.ProgressEvent) {
			logger.Debug(e.Message, "run_id", e.RunID, "item", e.ItemID, "step", e.Step, "category", e.Category)
		},
	})

	if err := writeBatchOutputs(cmd, outputs); err != nil {
		return err
	}
	if settings.Verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintBatchSummary(outputs)
	}

	if pipeline.IsInterrupted(runErr) {
		incomplete := pipeline.FailureCount(outputs)
		logger.Warn("batch interrupted, summary holds partial results", "items", len(outputs), "incomplete", incomplete)
		return fmt.Errorf("interrupted with %d of %d items incomplete: %w", incomplete, len(outputs), runErr)
	}
	if runErr != nil {
		return runErr
	}
	if failed := pipeline.FailureCount(outputs); failed > 0 {
		return fmt.Errorf("%d of %d items failed", failed, len(outputs))
	}
	return nil
}

// loadBatchInputs reads every regular, non-hidden file in dir in name order.
// The item ID is the file name without its extension.
func loadBatchInputs(dir string) ([]pipeline.Input, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	seen := make(map[string]string)
	var inputs []pipeline.Input
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		id := strings.TrimSuffix(name, filepath.Ext(name))
		if id+".json" == summaryFile {
			return nil, fmt.Errorf("input file %s collides with %s", name, summaryFile)
		}
		if prev, ok := seen[id]; ok {
			return nil, fmt.Errorf("input files %s and %s map to the same id %q", prev, name, id)
		}
		seen[id] = name

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		inputs = append(inputs, pipeline.Input{ID: id, Text: string(data)})
	}
	return inputs, nil
}

// writeBatchOutputs writes one record per successful item and the summary of all items
func writeBatchOutputs(cmd *cobra.Command, outputs []pipeline.Output) error {
	if err := os.MkdirAll(batchOutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, out := range outputs {
		if out.Failed() {
			continue
		}
		data, err := marshalIndented(out.Record)
		if err != nil {
			return err
		}
		if err := writeOutput(cmd, filepath.Join(batchOutputDir, out.ID+".json"), data); err != nil {
			return err
		}
	}

	summary, err := marshalIndented(outputs)
	if err != nil {
		return err
	}
	path := filepath.Join(batchOutputDir, summaryFile)
	if err := writeOutput(cmd, path, summary); err != nil {
		return err
	}
	logger.Info("batch complete", "items", len(outputs), "failed", pipeline.FailureCount(outputs), "summary", path)
	return nil
}
