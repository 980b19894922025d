package normalize

import "fmt"

// Canonical field names
const (
	FieldScore                 = "compatibility_score"
	FieldMatchedSkills         = "matched_skills"
	FieldMissingSkills         = "missing_skills"
	FieldMissingQualifications = "missing_qualifications"
	FieldStrengths             = "strengths"
	FieldSuggestions           = "suggestions"
)

// FieldReport describes how one canonical field was populated
type FieldReport struct {
	Field     string   `json:"field"`
	Sources   []string `json:"sources,omitempty"`
	Anomalies []string `json:"anomalies,omitempty"`
}

func (f *FieldReport) addSource(name string) {
	if f == nil {
		return
	}
	f.Sources = append(f.Sources, name)
}

func (f *FieldReport) addAnomaly(format string, args ...any) {
	if f == nil {
		return
	}
	f.Anomalies = append(f.Anomalies, fmt.Sprintf(format, args...))
}

// Report is the diagnostic outcome of one normalization call
type Report struct {
	// RootAnomaly is set when the input was absent or not a record
	RootAnomaly string        `json:"root_anomaly,omitempty"`
	Fields      []FieldReport `json:"fields"`
}

// Field returns the report for a canonical field
func (r Report) Field(name string) (FieldReport, bool) {
	for _, f := range r.Fields {
		if f.Field == name {
			return f, true
		}
	}
	return FieldReport{}, false
}

// Sources returns the strategies that contributed to a field
func (r Report) Sources(field string) []string {
	f, _ := r.Field(field)
	return f.Sources
}

// Anomalies flattens every anomaly as "field: message"
func (r Report) Anomalies() []string {
	var out []string
	if r.RootAnomaly != "" {
		out = append(out, "root: "+r.RootAnomaly)
	}
	for _, f := range r.Fields {
		for _, a := range f.Anomalies {
			out = append(out, f.Field+": "+a)
		}
	}
	return out
}
