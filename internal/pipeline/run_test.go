package pipeline

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/fit-analysis/internal/pipeline/steps"
	"github.com/jonathan/fit-analysis/internal/recovery"
)

func TestRunBatch_PreservesInputOrder(t *testing.T) {
	inputs := []Input{
		{ID: "a", Text: `{"score": 10}`},
		{ID: "b", Text: "not structured at all"},
		{ID: "c", Text: "```json\n{\"score\": 30}\n```"},
		{ID: "d", Text: `{"score": 40, "matched_skills": [Go]}`},
		{ID: "e", Text: ""},
	}

	outputs, err := RunBatch(context.Background(), inputs, RunOptions{Concurrency: 3})
	require.NoError(t, err)
	require.Len(t, outputs, len(inputs))

	for i, in := range inputs {
		assert.Equal(t, in.ID, outputs[i].ID)
	}
	assert.InDelta(t, 10, outputs[0].Record.CompatibilityScore, 1e-9)
	assert.Equal(t, recovery.StageDirect, outputs[0].Stage)
	assert.Equal(t, recovery.StageFence, outputs[2].Stage)
	assert.Equal(t, recovery.StageBareTokens, outputs[3].Stage)
	assert.Equal(t, []string{"Go"}, outputs[3].Record.MatchedSkills)

	assert.True(t, outputs[1].Failed())
	assert.Equal(t, recovery.ReasonExhausted, outputs[1].FailureReason)
	assert.True(t, outputs[1].Record.IsEmpty())
	assert.Equal(t, steps.StatusFailed, outputs[1].Steps[steps.StepRecover])
	assert.Equal(t, steps.StatusSkipped, outputs[1].Steps[steps.StepNormalize])

	assert.Equal(t, recovery.ReasonEmptyInput, outputs[4].FailureReason)
	assert.Equal(t, 2, FailureCount(outputs))
}

func TestRunBatch_IdenticalInputsYieldIdenticalRecords(t *testing.T) {
	text := `{"compatibility_score": "0.83", "matched_skills": ["Python", "SQL", "Python"], "required_skills": ["Python", "SQL", "AWS"]}`
	inputs := make([]Input, 50)
	for i := range inputs {
		inputs[i] = Input{ID: fmt.Sprintf("item-%d", i), Text: text}
	}

	outputs, err := RunBatch(context.Background(), inputs, RunOptions{Concurrency: 8})
	require.NoError(t, err)

	first := outputs[0].Record
	assert.InDelta(t, 83, first.CompatibilityScore, 1e-9)
	assert.Equal(t, []string{"Python", "SQL"}, first.MatchedSkills)
	assert.Equal(t, []string{"AWS"}, first.MissingSkills)
	for _, out := range outputs[1:] {
		assert.Equal(t, first, out.Record)
	}
}

func TestRunBatch_EnvelopePath(t *testing.T) {
	inputs := []Input{
		{ID: "ok", Text: `{"choices": [{"message": {"content": "{\"score\": 75}"}}]}`},
		{ID: "missing", Text: `{"choices": []}`},
	}

	outputs, err := RunBatch(context.Background(), inputs, RunOptions{EnvelopePath: "choices.0.message.content"})
	require.NoError(t, err)

	assert.InDelta(t, 75, outputs[0].Record.CompatibilityScore, 1e-9)
	assert.Equal(t, steps.StatusCompleted, outputs[0].Steps[steps.StepExtractEnvelope])

	assert.True(t, outputs[1].Failed())
	assert.Contains(t, outputs[1].Error, "path not found")
	assert.Equal(t, steps.StatusFailed, outputs[1].Steps[steps.StepExtractEnvelope])
	assert.Equal(t, steps.StatusSkipped, outputs[1].Steps[steps.StepRecover])
	assert.Empty(t, outputs[1].FailureReason)
}

func TestRunBatch_Validate(t *testing.T) {
	outputs, err := RunBatch(context.Background(), []Input{{ID: "x", Text: `{"score": 150}`}}, RunOptions{Validate: true})
	require.NoError(t, err)
	assert.Equal(t, steps.StatusCompleted, outputs[0].Steps[steps.StepValidateRecord])
	assert.False(t, outputs[0].Failed())

	outputs, err = RunBatch(context.Background(), []Input{{ID: "x", Text: `{"score": 150}`}}, RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, steps.StatusSkipped, outputs[0].Steps[steps.StepValidateRecord])
}

func TestRunBatch_ProgressEvents(t *testing.T) {
	var mu sync.Mutex
	var events []ProgressEvent
	opts := RunOptions{
		Concurrency: 2,
		OnProgress: func(e ProgressEvent) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, e)
		},
	}

	inputs := []Input{{ID: "a", Text: `{"score": 1}`}, {ID: "b", Text: `{"score": 2}`}}
	_, err := RunBatch(context.Background(), inputs, opts)
	require.NoError(t, err)

	// recover and normalize for each item
	require.Len(t, events, 4)
	runID := events[0].RunID
	_, err = uuid.Parse(runID)
	require.NoError(t, err)
	for _, e := range events {
		assert.Equal(t, runID, e.RunID)
		assert.Equal(t, steps.Category(e.Step), e.Category)
		assert.Contains(t, []string{"a", "b"}, e.ItemID)
	}
}

func TestRunBatch_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inputs := []Input{{ID: "a", Text: `{"score": 1}`}, {ID: "b", Text: `{"score": 2}`}}
	outputs, err := RunBatch(ctx, inputs, RunOptions{})
	require.Error(t, err)
	assert.True(t, IsInterrupted(err))
	require.Len(t, outputs, 2)
	for i, out := range outputs {
		assert.Equal(t, inputs[i].ID, out.ID)
		assert.True(t, out.Failed())
		assert.Contains(t, out.Error, "not processed")
		assert.True(t, out.Record.IsEmpty())
	}
}

func TestRunBatch_Empty(t *testing.T) {
	outputs, err := RunBatch(context.Background(), nil, RunOptions{})
	require.NoError(t, err)
	assert.Empty(t, outputs)
}
