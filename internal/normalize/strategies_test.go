package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/fit-analysis/internal/types"
)

func TestNormalize_Strengths(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []types.Strength
	}{
		{
			name: "direct list wins over other direct lists and experience",
			input: `{
				"strengths": [{"area": "Backend", "description": "Go services"}, "Mentoring", {"area": "x"}],
				"summary": {"strengths": ["ignored"]},
				"experience": {"acme": {"jobTitle": "Engineer"}}
			}`,
			expected: []types.Strength{
				{Area: "Backend", Description: "Go services"},
				{Area: "Strength", Description: "Mentoring"},
			},
		},
		{
			name:  "summary strengths when top level is absent",
			input: `{"summary": {"strengths": [{"description": "Clear writing"}]}}`,
			expected: []types.Strength{
				{Area: "Strength", Description: "Clear writing"},
			},
		},
		{
			name: "positive feedback statements",
			input: `{"feedback": {"experience_relevance": {
				"reasoning": "Strong backend experience that aligns with the role",
				"comments": ["Lacks cloud exposure", "Good API design"]
			}}}`,
			expected: []types.Strength{
				{Area: "Experience Relevance", Description: "Strong backend experience that aligns with the role"},
				{Area: "Experience Relevance", Description: "Good API design"},
			},
		},
		{
			name:     "deficit marker vetoes a positive one",
			input:    `{"feedback": {"overall_fit": {"reasoning": "Good skills but missing depth"}}}`,
			expected: []types.Strength{},
		},
		{
			name: "contrast words do not veto praise",
			input: `{"feedback": {"experience_relevance": {"comments": [
				"Strong Python skills, not just scripting",
				"Solid delivery record, however brief",
				"Relevant projects but weak on testing"
			]}}}`,
			expected: []types.Strength{
				{Area: "Experience Relevance", Description: "Strong Python skills, not just scripting"},
				{Area: "Experience Relevance", Description: "Solid delivery record, however brief"},
			},
		},
		{
			name:  "direct list unions with heuristics",
			input: `{"strengths": ["Go"], "feedback": {"overall_fit": {"description": "Excellent fit"}}}`,
			expected: []types.Strength{
				{Area: "Strength", Description: "Go"},
				{Area: "Overall Fit", Description: "Excellent fit"},
			},
		},
		{
			name:  "experience details",
			input: `{"experience_details": {"experience_points": ["Led migration", ""], "reasoning": "Consistent growth"}}`,
			expected: []types.Strength{
				{Area: "Experience", Description: "Led migration"},
				{Area: "Experience Analysis", Description: "Consistent growth"},
			},
		},
		{
			name: "experience list without direct strengths",
			input: `{"experience": [
				{"position": "Engineer", "company": "Initech", "start_date": "2019", "tasks": ["APIs", "Infra", "On-call", "Docs"]},
				"Freelance consulting"
			]}`,
			expected: []types.Strength{
				{Area: "Experience", Description: "Engineer at Initech (2019 - Present): APIs, Infra, On-call"},
				{Area: "Experience", Description: "Freelance consulting"},
			},
		},
		{
			name:  "duplicate pairs collapse",
			input: `{"strengths": ["Go", {"area": "Strength", "description": "Go"}]}`,
			expected: []types.Strength{
				{Area: "Strength", Description: "Go"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(parse(t, tt.input)).Strengths)
		})
	}
}

func TestNormalize_StrengthAnomalies(t *testing.T) {
	_, report := New().NormalizeWithReport(parse(t, `{"strengths": [{"area": "x"}, "Go"]}`))
	f, ok := report.Field(FieldStrengths)
	require.True(t, ok)
	assert.Equal(t, []string{"strengths"}, f.Sources)
	require.Len(t, f.Anomalies, 1)
	assert.Contains(t, f.Anomalies[0], "without description")
}

func TestFormatExperience(t *testing.T) {
	tests := []struct {
		name     string
		employer string
		details  string
		expected string
		ok       bool
	}{
		{
			name:     "keyed by employer",
			employer: "acme_corp",
			details:  `{"jobTitle": "Senior Engineer", "duration": "3 years", "summary": "Built payment APIs"}`,
			expected: "Senior Engineer at acme_corp (3 years): Built payment APIs",
			ok:       true,
		},
		{
			name:     "company field with open-ended dates",
			details:  `{"position": "Engineer", "company": "Initech", "start_date": "2019", "tasks": ["APIs", "Infra", "On-call", "Docs"]}`,
			expected: "Engineer at Initech (2019 - Present): APIs, Infra, On-call",
			ok:       true,
		},
		{
			name:     "key becomes the role when none is given",
			employer: "data_platform",
			details:  `{"duration": "2y"}`,
			expected: "Data Platform (2y)",
			ok:       true,
		},
		{
			name:     "dates only",
			details:  `{"start_date": "2020", "end_date": "2021", "responsibilities": ["Ops"]}`,
			expected: "Experience (2020 - 2021): Ops",
			ok:       true,
		},
		{
			name:     "company equal to role",
			details:  `{"title": "CTO", "company": "cto"}`,
			expected: "CTO",
			ok:       true,
		},
		{
			name:    "nothing meaningful",
			details: `{"duration": "1y"}`,
			ok:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := parse(t, tt.details).AsRecord()
			require.True(t, ok)
			got, ok := FormatExperience(tt.employer, rec)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalize_SuggestionsOrder(t *testing.T) {
	input := `{
		"suggestions": ["Add metrics", {"recommendation": "Quantify impact"}],
		"feedback": {
			"weaknesses": [{"recommendation": "Learn AWS"}, "Thin on testing"],
			"experience_relevance": {
				"reasoning": "Candidate should highlight Go work",
				"comments": ["Solid APIs", "Good, however only one project"],
				"percentage_match": 0.6
			},
			"overall_fit": {"description": "Some gaps remain", "actionable_recommendations": ["Show leadership"]}
		},
		"overall_fit": "6/10",
		"overallFit": {"reasonsForDisfit": ["No cloud"], "reasonsForFit": ["Go expertise"]},
		"alignment": {"requiresAlignment": true, "reasonsForAlignment": ["Kubernetes"], "discrepancies": ["Title mismatch"]},
		"experience_details": {"reasoning": "Details missing for 2020"},
		"actionable_feedback": [{"feedback": "Clarify role", "suggested_action": "Add dates"}],
		"actionable_recommendations": [{"description": "Add a summary"}]
	}`

	rec, report := New().NormalizeWithReport(parse(t, input))
	assert.Equal(t, []string{
		"Add metrics",
		"Quantify impact",
		"Learn AWS",
		"Thin on testing",
		"Overall fit is 6/10. Consider highlighting more relevant experience and skills.",
		"Address: No cloud",
		"Focus on: Kubernetes",
		"Address discrepancy: Title mismatch",
		"Candidate should highlight Go work",
		"Good, however only one project",
		"Improve Experience Relevance: Current match is 60.0%. Consider highlighting more relevant experience.",
		"Details missing for 2020",
		"Clarify role",
		"Add dates",
		"Add a summary",
		"Show leadership",
		"Some gaps remain",
	}, rec.Suggestions)
	assert.NotContains(t, report.Sources(FieldSuggestions), "overallFit.reasonsForFit")
	assert.InDelta(t, 60, rec.CompatibilityScore, 1e-9)
}

func TestNormalize_Suggestions(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "reasons for fit only when nothing else",
			input:    `{"overallFit": {"reasonsForFit": ["Go expertise", {"reason": "Team lead"}]}}`,
			expected: []string{"Continue emphasizing: Go expertise", "Continue emphasizing: Team lead"},
		},
		{
			name:     "alignment reasons need requiresAlignment",
			input:    `{"alignment": {"requiresAlignment": false, "reasonsForAlignment": ["X"], "discrepancies": [{"reason": "Title"}]}}`,
			expected: []string{"Address discrepancy: Title"},
		},
		{
			name:     "high overall fit adds nothing",
			input:    `{"overall_fit": "8/10"}`,
			expected: []string{},
		},
		{
			name:     "feedback sections list",
			input:    `{"feedback": [{"section": "x", "actionable_recommendations": ["A", {"description": "B"}]}]}`,
			expected: []string{"A", "B"},
		},
		{
			name:  "area scores on either scale",
			input: `{"feedback": {"alignment_with_job_requirements": {"alignment_score": 55}, "experience_relevance": {"fit_score": 0.85}}}`,
			expected: []string{
				"Improve Alignment With Job Requirements: Current match is 55.0%. Consider highlighting more relevant experience.",
			},
		},
		{
			name:     "neutral text is not advice",
			input:    `{"feedback": {"experience_relevance": {"reasoning": "The candidate worked on APIs"}}}`,
			expected: []string{},
		},
		{
			name:     "areas of improvement descriptions",
			input:    `{"areas_of_improvement": [{"area": "Kubernetes", "description": "Learn k8s"}]}`,
			expected: []string{"Learn k8s"},
		},
		{
			name:     "duplicates collapse",
			input:    `{"suggestions": ["Add metrics"], "recommendations": ["Add metrics", " "]}`,
			expected: []string{"Add metrics"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(parse(t, tt.input)).Suggestions)
		})
	}
}
