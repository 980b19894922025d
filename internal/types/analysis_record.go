// Package types provides type definitions for structured data used throughout the fit-analysis system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// AnalysisRecord is the canonical compatibility analysis every caller depends on.
// Lists are never nil so the JSON form always carries [] rather than null.
type AnalysisRecord struct {
	CompatibilityScore    float64    `json:"compatibility_score"` // 0-100
	MatchedSkills         []string   `json:"matched_skills"`
	MissingSkills         []string   `json:"missing_skills"`
	MissingQualifications []string   `json:"missing_qualifications"`
	Strengths             []Strength `json:"strengths"`
	Suggestions           []string   `json:"suggestions"`
}

// Strength is one strength entry; Description is never empty
type Strength struct {
	Area        string `json:"area"`
	Description string `json:"description"`
}

// EmptyAnalysisRecord returns the all-defaults record
func EmptyAnalysisRecord() AnalysisRecord {
	return AnalysisRecord{
		CompatibilityScore:    0.0,
		MatchedSkills:         []string{},
		MissingSkills:         []string{},
		MissingQualifications: []string{},
		Strengths:             []Strength{},
		Suggestions:           []string{},
	}
}

// IsEmpty reports whether the record carries nothing beyond the defaults
func (r AnalysisRecord) IsEmpty() bool {
	return r.CompatibilityScore == 0 &&
		len(r.MatchedSkills) == 0 &&
		len(r.MissingSkills) == 0 &&
		len(r.MissingQualifications) == 0 &&
		len(r.Strengths) == 0 &&
		len(r.Suggestions) == 0
}
