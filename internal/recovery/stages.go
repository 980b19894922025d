package recovery

import (
	"fmt"
	"strings"
)

// Stage names one repair technique in the ordered chain
type Stage string

const (
	StageDirect        Stage = "direct"
	StageFence         Stage = "fence"
	StageEmbedded      Stage = "embedded"
	StageComments      Stage = "comments"
	StageSanitize      Stage = "sanitize"
	StageBareTokens    Stage = "bare_tokens"
	StageTruncation    Stage = "truncation"
	StageLenientRepair Stage = "lenient_repair"
)

// Stage categories
const (
	CategoryExtraction = "extraction"
	CategoryRepair     = "repair"
)

// StageDefinition describes one stage of the chain.
// Transform receives the previous stage's text and returns the next candidate.
type StageDefinition struct {
	Name      Stage
	Category  string
	Transform func(text string) (string, error)
}

// stageRegistry holds every known stage
var stageRegistry = map[Stage]StageDefinition{
	StageDirect: {
		Name:      StageDirect,
		Category:  CategoryExtraction,
		Transform: infallible(strings.TrimSpace),
	},
	StageFence: {
		Name:      StageFence,
		Category:  CategoryExtraction,
		Transform: infallible(stripFence),
	},
	StageEmbedded: {
		Name:      StageEmbedded,
		Category:  CategoryExtraction,
		Transform: infallible(extractEmbedded),
	},
	StageComments: {
		Name:      StageComments,
		Category:  CategoryRepair,
		Transform: infallible(stripComments),
	},
	StageSanitize: {
		Name:      StageSanitize,
		Category:  CategoryRepair,
		Transform: infallible(sanitize),
	},
	StageBareTokens: {
		Name:      StageBareTokens,
		Category:  CategoryRepair,
		Transform: infallible(quoteBareTokens),
	},
	StageTruncation: {
		Name:      StageTruncation,
		Category:  CategoryRepair,
		Transform: infallible(closeTruncated),
	},
	StageLenientRepair: {
		Name:      StageLenientRepair,
		Category:  CategoryRepair,
		Transform: lenientRepair,
	},
}

// DefaultStages returns the full chain in evaluation order
func DefaultStages() []Stage {
	return []Stage{
		StageDirect,
		StageFence,
		StageEmbedded,
		StageComments,
		StageSanitize,
		StageBareTokens,
		StageTruncation,
		StageLenientRepair,
	}
}

// LookupStage returns the definition registered under name
func LookupStage(name Stage) (StageDefinition, bool) {
	def, ok := stageRegistry[name]
	return def, ok
}

// ParseStages converts a comma-separated list such as "direct,fence" into stages
func ParseStages(list string) ([]Stage, error) {
	var stages []Stage
	for _, part := range strings.Split(list, ",") {
		name := Stage(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		if _, ok := stageRegistry[name]; !ok {
			return nil, fmt.Errorf("unknown stage: %s", name)
		}
		stages = append(stages, name)
	}
	if len(stages) == 0 {
		return nil, fmt.Errorf("no stages in %q", list)
	}
	return stages, nil
}

func infallible(fn func(string) string) func(string) (string, error) {
	return func(text string) (string, error) {
		return fn(text), nil
	}
}
