// Package pipeline runs recovery and normalization over batches of model completions.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/fit-analysis/internal/llm"
	"github.com/jonathan/fit-analysis/internal/normalize"
	"github.com/jonathan/fit-analysis/internal/pipeline/steps"
	"github.com/jonathan/fit-analysis/internal/recovery"
	"github.com/jonathan/fit-analysis/internal/schemas"
	"github.com/jonathan/fit-analysis/internal/types"
)

// DefaultConcurrency is used when RunOptions.Concurrency is not positive
const DefaultConcurrency = 4

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	ItemID   string `json:"item_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs.
// Calls are serialized even though items run concurrently.
type ProgressCallback func(event ProgressEvent)

// Input is one completion to process
type Input struct {
	ID   string
	Text string
}

// Output is the result for one input
type Output struct {
	ID            string                      `json:"id"`
	Record        types.AnalysisRecord        `json:"record"`
	Stage         recovery.Stage              `json:"stage,omitempty"`
	FailureReason recovery.Reason             `json:"failure_reason,omitempty"`
	Error         string                      `json:"error,omitempty"`
	Steps         map[string]steps.StepStatus `json:"steps"`
}

// Failed reports whether the input could not be turned into a record
func (o Output) Failed() bool {
	return o.Error != ""
}

// RunOptions holds configuration for a batch run
type RunOptions struct {
	Concurrency int
	// EnvelopePath is a gjson path to the completion inside each input; empty means the input is the completion
	EnvelopePath string
	// Validate checks every record against the canonical schema
	Validate   bool
	Recovery   *recovery.Engine
	Normalizer *normalize.Normalizer
	Logger     *slog.Logger
	OnProgress ProgressCallback
}

// runner carries the per-run state shared by item workers
type runner struct {
	opts       RunOptions
	runID      string
	engine     *recovery.Engine
	normalizer *normalize.Normalizer
	logger     *slog.Logger
	progressMu sync.Mutex
}

// emitProgress calls the progress callback if configured
func (r *runner) emitProgress(itemID, step, message string, content any) {
	if r.opts.OnProgress == nil {
		return
	}
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.opts.OnProgress(ProgressEvent{
		Step:     step,
		Category: steps.Category(step),
		Message:  message,
		RunID:    r.runID,
		ItemID:   itemID,
		Content:  content,
	})
}

// RunBatch processes inputs concurrently and returns one output per input, in input order.
// Per-item failures are reported in the outputs; the returned error is only
// set when ctx is canceled, in which case unscheduled items carry the cancellation.
func RunBatch(ctx context.Context, inputs []Input, opts RunOptions) ([]Output, error) {
	r := &runner{
		opts:       opts,
		runID:      uuid.New().String(),
		engine:     opts.Recovery,
		normalizer: opts.Normalizer,
		logger:     opts.Logger,
	}
	if r.engine == nil {
		r.engine = recovery.New()
	}
	if r.normalizer == nil {
		r.normalizer = normalize.New()
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	r.logger.Info("starting batch", "run_id", r.runID, "items", len(inputs), "concurrency", limit)

	outputs := make([]Output, len(inputs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	scheduled := 0
	for i, in := range inputs {
		if gCtx.Err() != nil {
			break
		}
		scheduled++
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				outputs[i] = canceledOutput(in.ID, err)
				return nil
			}
			outputs[i] = r.process(in)
			return nil
		})
	}
	_ = g.Wait()

	for i := scheduled; i < len(inputs); i++ {
		outputs[i] = canceledOutput(inputs[i].ID, ctx.Err())
	}

	r.logger.Info("batch finished", "run_id", r.runID, "items", len(inputs), "failed", FailureCount(outputs))

	if err := ctx.Err(); err != nil {
		return outputs, fmt.Errorf("batch %s interrupted: %w", r.runID, err)
	}
	return outputs, nil
}

func canceledOutput(id string, err error) Output {
	if err == nil {
		err = context.Canceled
	}
	return Output{
		ID:     id,
		Record: types.EmptyAnalysisRecord(),
		Error:  "not processed: " + err.Error(),
		Steps:  map[string]steps.StepStatus{},
	}
}

// process runs every step for one input. It never returns an error: failures
// are recorded in the output and later steps are skipped by dependency checks.
func (r *runner) process(in Input) Output {
	out := Output{
		ID:     in.ID,
		Record: types.EmptyAnalysisRecord(),
		Steps:  make(map[string]steps.StepStatus, len(steps.Order)),
	}
	text := in.Text
	var value *types.Value

	for _, step := range steps.Order {
		if err := steps.ValidateDependencies(out.Steps, step); err != nil {
			out.Steps[step] = steps.StatusSkipped
			continue
		}

		var err error
		switch step {
		case steps.StepExtractEnvelope:
			if r.opts.EnvelopePath == "" {
				out.Steps[step] = steps.StatusSkipped
				continue
			}
			text, err = llm.ExtractEnvelopeText([]byte(in.Text), r.opts.EnvelopePath)

		case steps.StepRecover:
			var result *recovery.Result
			result, err = r.engine.Recover(text)
			if err == nil {
				out.Stage = result.Stage
				value = &result.Value
			} else if failure, ok := recovery.IsFailure(err); ok {
				out.FailureReason = failure.Reason
			}

		case steps.StepNormalize:
			out.Record = r.normalizer.Normalize(value)

		case steps.StepValidateRecord:
			if !r.opts.Validate {
				out.Steps[step] = steps.StatusSkipped
				continue
			}
			err = schemas.ValidateRecord(out.Record)
		}

		if err != nil {
			out.Steps[step] = steps.StatusFailed
			if out.Error == "" {
				out.Error = err.Error()
			}
			r.logger.Warn("step failed", "run_id", r.runID, "item", in.ID, "step", step, "error", err)
			r.emitProgress(in.ID, step, "failed: "+err.Error(), nil)
			continue
		}

		out.Steps[step] = steps.StatusCompleted
		r.emitProgress(in.ID, step, completionMessage(step, out), contentFor(step, out))
	}

	r.logger.Debug("item processed", "run_id", r.runID, "item", in.ID, "stage", out.Stage, "failed", out.Failed())
	return out
}

func completionMessage(step string, out Output) string {
	switch step {
	case steps.StepRecover:
		return fmt.Sprintf("recovered at stage %s", out.Stage)
	case steps.StepNormalize:
		return fmt.Sprintf("normalized: score %.1f, %d matched, %d missing",
			out.Record.CompatibilityScore, len(out.Record.MatchedSkills), len(out.Record.MissingSkills))
	default:
		return step + " completed"
	}
}

func contentFor(step string, out Output) any {
	if step == steps.StepNormalize {
		return out.Record
	}
	return nil
}

// FailureCount returns how many outputs failed
func FailureCount(outputs []Output) int {
	n := 0
	for _, out := range outputs {
		if out.Failed() {
			n++
		}
	}
	return n
}

// IsInterrupted reports whether err came from a canceled batch
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
