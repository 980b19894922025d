package llm

import (
	"context"
	"log/slog"

	"github.com/jonathan/fit-analysis/internal/normalize"
	"github.com/jonathan/fit-analysis/internal/recovery"
	"github.com/jonathan/fit-analysis/internal/types"
)

// Generator is a text-generation provider
type Generator interface {
	// Generate returns the raw completion for prompt. systemPrompt may be empty.
	Generate(ctx context.Context, prompt, systemPrompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface
type GeneratorFunc func(ctx context.Context, prompt, systemPrompt string) (string, error)

// Generate calls f
func (f GeneratorFunc) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	return f(ctx, prompt, systemPrompt)
}

// StaticGenerator returns canned text, for tests and offline use
type StaticGenerator struct {
	Text string
	Err  error
}

// Generate returns the canned text or error
func (g StaticGenerator) Generate(ctx context.Context, _, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return g.Text, g.Err
}

// GenerateOptions selects the engine and normalizer used on the completion.
// Zero values fall back to the package defaults.
type GenerateOptions struct {
	Recovery   *recovery.Engine
	Normalizer *normalize.Normalizer
	Logger     *slog.Logger
}

// GenerateAnalysis asks gen for an analysis and returns it as a canonical record.
// On failure the record is the all-defaults record and the error is a
// *GenerateError wrapping the transport error or the *recovery.Failure.
func GenerateAnalysis(ctx context.Context, gen Generator, prompt, systemPrompt string, opts GenerateOptions) (types.AnalysisRecord, error) {
	engine := opts.Recovery
	if engine == nil {
		engine = recovery.New()
	}
	normalizer := opts.Normalizer
	if normalizer == nil {
		normalizer = normalize.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	text, err := gen.Generate(ctx, EnsureJSONInstruction(prompt), systemPrompt)
	if err != nil {
		return types.EmptyAnalysisRecord(), &GenerateError{Message: "failed to generate analysis", Cause: err}
	}

	result, err := engine.Recover(text)
	if err != nil {
		logger.Warn("completion could not be recovered", "error", err)
		return types.EmptyAnalysisRecord(), &GenerateError{Message: "failed to recover analysis", Cause: err}
	}
	logger.Debug("completion recovered", "stage", result.Stage, "attempts", len(result.Attempts))

	return normalizer.Normalize(&result.Value), nil
}
