package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/fit-analysis/internal/recovery"
	"github.com/jonathan/fit-analysis/internal/types"
)

func TestGenerateAnalysis(t *testing.T) {
	gen := StaticGenerator{Text: "Here you go:\n```json\n{\"score\": \"7/10\", \"matched_skills\": [Python, SQL]}\n```"}

	rec, err := GenerateAnalysis(context.Background(), gen, "Compare these.", "", GenerateOptions{})
	require.NoError(t, err)
	assert.InDelta(t, 70, rec.CompatibilityScore, 1e-9)
	assert.Equal(t, []string{"Python", "SQL"}, rec.MatchedSkills)
}

func TestGenerateAnalysis_PromptAndSystemPrompt(t *testing.T) {
	var gotPrompt, gotSystem string
	gen := GeneratorFunc(func(_ context.Context, prompt, systemPrompt string) (string, error) {
		gotPrompt, gotSystem = prompt, systemPrompt
		return `{"score": 50}`, nil
	})

	_, err := GenerateAnalysis(context.Background(), gen, "Compare these.", "You are a recruiter.", GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Compare these.\n\nRespond with valid JSON only.", gotPrompt)
	assert.Equal(t, "You are a recruiter.", gotSystem)
}

func TestGenerateAnalysis_GeneratorError(t *testing.T) {
	cause := errors.New("connection refused")
	rec, err := GenerateAnalysis(context.Background(), StaticGenerator{Err: cause}, "json please", "", GenerateOptions{})

	require.Error(t, err)
	var genErr *GenerateError
	require.True(t, errors.As(err, &genErr))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, types.EmptyAnalysisRecord(), rec)
}

func TestGenerateAnalysis_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := GenerateAnalysis(ctx, StaticGenerator{Text: `{}`}, "json", "", GenerateOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateAnalysis_RecoveryFailure(t *testing.T) {
	gen := StaticGenerator{Text: "Sorry, I cannot help with that."}

	rec, err := GenerateAnalysis(context.Background(), gen, "json", "", GenerateOptions{})
	require.Error(t, err)
	var genErr *GenerateError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, "failed to recover analysis", genErr.Message)
	failure, ok := recovery.IsFailure(err)
	require.True(t, ok, "failure is reachable through the wrapper")
	assert.Equal(t, recovery.ReasonExhausted, failure.Reason)
	assert.True(t, rec.IsEmpty())
}

func TestGenerateAnalysis_CustomEngine(t *testing.T) {
	engine := recovery.New(recovery.WithStages(recovery.StageDirect))
	gen := StaticGenerator{Text: "```json\n{\"score\": 90}\n```"}

	_, err := GenerateAnalysis(context.Background(), gen, "json", "", GenerateOptions{Recovery: engine})
	assert.Error(t, err, "fence stage is disabled")
}
