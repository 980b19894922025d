// Package schemas holds the JSON Schema documents shipped with the module.
package schemas

import _ "embed"

// CanonicalAnalysisFile is the file name of the canonical analysis schema
const CanonicalAnalysisFile = "canonical_analysis.schema.json"

// CanonicalAnalysis is the JSON Schema of the canonical analysis record
//
//go:embed canonical_analysis.schema.json
var CanonicalAnalysis string
