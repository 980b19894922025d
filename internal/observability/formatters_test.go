package observability

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/fit-analysis/internal/normalize"
	"github.com/jonathan/fit-analysis/internal/pipeline"
	"github.com/jonathan/fit-analysis/internal/recovery"
	"github.com/jonathan/fit-analysis/internal/schemas"
	"github.com/jonathan/fit-analysis/internal/types"
)

func TestPrintAnalysis(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	rec := &types.AnalysisRecord{
		CompatibilityScore:    72.5,
		MatchedSkills:         []string{"Go", "SQL", "Docker", "gRPC", "Kafka", "Redis"},
		MissingSkills:         []string{"AWS"},
		MissingQualifications: []string{},
		Strengths:             []types.Strength{{Area: "Backend", Description: "Payment APIs"}},
		Suggestions:           []string{"Mention cloud work"},
	}

	p.PrintAnalysis(rec)
	output := buf.String()

	assert.Contains(t, output, "COMPATIBILITY ANALYSIS")
	assert.Contains(t, output, "72.5 / 100")
	assert.Contains(t, output, "Kafka")
	assert.NotContains(t, output, "Redis")
	assert.Contains(t, output, "... and 1 more")
	assert.Contains(t, output, "Backend: Payment APIs")
	assert.Contains(t, output, "Mention cloud work")
	assert.NotContains(t, output, "Missing Qualifications")
}

func TestPrintAnalysis_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintAnalysis(nil)
	assert.Empty(t, buf.String())
}

func TestPrintRecovery(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	result, err := recovery.Recover("```json\n{\"a\": 1}\n```")
	require.NoError(t, err)
	p.PrintRecovery(result, nil)
	output := buf.String()

	assert.Contains(t, output, "STRUCTURED DATA RECOVERY")
	assert.Contains(t, output, "recovered")
	assert.Contains(t, output, "Stage:    fence")
	assert.Contains(t, output, "✗ direct")
}

func TestPrintRecovery_Failure(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	_, err := recovery.Recover("nothing to see here")
	require.Error(t, err)
	p.PrintRecovery(nil, err)
	output := buf.String()

	assert.Contains(t, output, "failed")
	assert.Contains(t, output, "Reason:   exhausted")
	assert.Contains(t, output, "Attempts:")

	buf.Reset()
	p.PrintRecovery(nil, errors.New("read failed"))
	assert.Contains(t, buf.String(), "read failed")
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	result, err := recovery.Recover(`{"score": "N/A", "matched_skills": ["Go"]}`)
	require.NoError(t, err)
	_, report := normalize.New().NormalizeWithReport(&result.Value)

	p.PrintReport(report)
	output := buf.String()

	assert.Contains(t, output, "NORMALIZATION SOURCES")
	assert.Contains(t, output, "matched_skills ← matched_skills")
	assert.Contains(t, output, "suggestions ← (defaults)")
	assert.Contains(t, output, "⚠ score")
}

func TestPrintValidation(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintValidation(nil)
	assert.Contains(t, buf.String(), "RECORD MATCHES CANONICAL SCHEMA")

	buf.Reset()
	p.PrintValidation(&schemas.ValidationError{Errors: []schemas.FieldError{
		{Field: "compatibility_score", Message: "Must be less than or equal to 100"},
	}})
	output := buf.String()
	assert.Contains(t, output, "SCHEMA VIOLATIONS")
	assert.Contains(t, output, "compatibility_score")
	assert.Contains(t, output, "Must be less than or equal to 100")
}

func TestPrintBatchSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	outputs := []pipeline.Output{
		{ID: "first", Record: types.AnalysisRecord{CompatibilityScore: 80}, Stage: recovery.StageDirect},
		{ID: "second", Error: "recovery failed (exhausted)", FailureReason: recovery.ReasonExhausted},
	}
	p.PrintBatchSummary(outputs)
	output := buf.String()

	assert.Contains(t, output, "Processed 2 items, 1 failed")
	assert.Contains(t, output, "✓ first  80.0 (direct)")
	assert.Contains(t, output, "✗ second  exhausted")
}

func TestPrintBox_LongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	rec := types.EmptyAnalysisRecord()
	rec.Suggestions = []string{strings.Repeat("é", 200)}
	p.PrintAnalysis(&rec)
	output := buf.String()

	assert.True(t, strings.Contains(output, "┌"))
	assert.True(t, strings.Contains(output, "└"))
	assert.Contains(t, output, "...")
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
	assert.Equal(t, "ééé...", truncate("éééééééé", 6))
}
