package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/fit-analysis/internal/recovery"
	"github.com/jonathan/fit-analysis/internal/schemas"
	"github.com/jonathan/fit-analysis/internal/types"
)

func decodeRecord(t *testing.T, data string) types.AnalysisRecord {
	t.Helper()
	var rec types.AnalysisRecord
	require.NoError(t, json.Unmarshal([]byte(data), &rec))
	require.NoError(t, schemas.ValidateRecordJSON([]byte(data)))
	return rec
}

func TestNormalizeCommand(t *testing.T) {
	input := "```json\n{\"compatibility_score\": \"0.85\", \"matched_skills\": [Go, SQL, Go], \"missing_skills\": [\"AWS\"]}\n```"

	stdout, _, err := executeCommand(t, input, "normalize")
	require.NoError(t, err)

	rec := decodeRecord(t, stdout)
	assert.InDelta(t, 85, rec.CompatibilityScore, 1e-9)
	assert.Equal(t, []string{"Go", "SQL"}, rec.MatchedSkills)
	assert.Equal(t, []string{"AWS"}, rec.MissingSkills)
	assert.NotNil(t, rec.MissingQualifications)
}

func TestNormalizeCommand_UnrecoverableYieldsDefaults(t *testing.T) {
	stdout, stderr, err := executeCommand(t, "the model refused to answer", "normalize")
	require.NoError(t, err)

	assert.Equal(t, types.EmptyAnalysisRecord(), decodeRecord(t, stdout))
	assert.Contains(t, stderr, "default record")
}

func TestNormalizeCommand_Strict(t *testing.T) {
	stdout, _, err := executeCommand(t, "the model refused to answer", "normalize", "--strict")
	require.Error(t, err)
	assert.Empty(t, stdout)

	failure, ok := recovery.IsFailure(err)
	require.True(t, ok)
	assert.Equal(t, recovery.ReasonExhausted, failure.Reason)
}

func TestNormalizeCommand_EnvelopePath(t *testing.T) {
	body := `{"choices": [{"message": {"content": "{\"score\": 64, \"matched_skills\": [\"Python\"]}"}}]}`

	tests := []struct {
		name string
		args []string
		env  string
	}{
		{name: "provider name flag", args: []string{"--envelope-path", "openai"}},
		{name: "literal path flag", args: []string{"--envelope-path", "choices.0.message.content"}},
		{name: "environment", env: "openai"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.env != "" {
				t.Setenv("FIT_ENVELOPE_PATH", tt.env)
			}
			stdout, _, err := executeCommand(t, body, append([]string{"normalize"}, tt.args...)...)
			require.NoError(t, err)

			rec := decodeRecord(t, stdout)
			assert.InDelta(t, 64, rec.CompatibilityScore, 1e-9)
			assert.Equal(t, []string{"Python"}, rec.MatchedSkills)
		})
	}
}

func TestNormalizeCommand_EnvelopeMissing(t *testing.T) {
	_, _, err := executeCommand(t, `{"choices": []}`, "normalize", "--envelope-path", "openai")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path not found")
}

func TestNormalizeCommand_OutputFileAndValidate(t *testing.T) {
	out := filepath.Join(t.TempDir(), "record.json")

	stdout, _, err := executeCommand(t, `{"score": 150}`, "normalize", "--out", out, "--validate")
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	rec := decodeRecord(t, string(data))
	assert.InDelta(t, 100, rec.CompatibilityScore, 1e-9)
}

func TestNormalizeCommand_Verbose(t *testing.T) {
	_, stderr, err := executeCommand(t, `{"score": "N/A", "matched_skills": ["Go"]}`, "normalize", "-v")
	require.NoError(t, err)

	assert.Contains(t, stderr, "STRUCTURED DATA RECOVERY")
	assert.Contains(t, stderr, "NORMALIZATION SOURCES")
	assert.Contains(t, stderr, "COMPATIBILITY ANALYSIS")
}
