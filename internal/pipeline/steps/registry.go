// Package steps provides step definitions and dependency validation for the
// per-item batch pipeline.
package steps

import (
	"fmt"
	"sort"
)

// Step names
const (
	StepExtractEnvelope = "extract_envelope"
	StepRecover         = "recover"
	StepNormalize       = "normalize"
	StepValidateRecord  = "validate_record"
)

// Step categories
const (
	CategoryIngestion     = "ingestion"
	CategoryRecovery      = "recovery"
	CategoryNormalization = "normalization"
	CategoryValidation    = "validation"
)

// StepStatus is the outcome of a step for one item
type StepStatus string

// Step statuses
const (
	StatusCompleted StepStatus = "completed"
	StatusFailed    StepStatus = "failed"
	StatusSkipped   StepStatus = "skipped"
)

// StepDefinition defines metadata for a pipeline step
type StepDefinition struct {
	Name         string
	Category     string
	Dependencies []string
	// Optional dependencies may be skipped without blocking the step
	Optional []string
}

// StepRegistry holds all step definitions
var StepRegistry = map[string]StepDefinition{
	StepExtractEnvelope: {
		Name:         StepExtractEnvelope,
		Category:     CategoryIngestion,
		Dependencies: []string{},
		Optional:     []string{},
	},
	StepRecover: {
		Name:         StepRecover,
		Category:     CategoryRecovery,
		Dependencies: []string{},
		Optional:     []string{StepExtractEnvelope},
	},
	StepNormalize: {
		Name:         StepNormalize,
		Category:     CategoryNormalization,
		Dependencies: []string{StepRecover},
		Optional:     []string{},
	},
	StepValidateRecord: {
		Name:         StepValidateRecord,
		Category:     CategoryValidation,
		Dependencies: []string{StepNormalize},
		Optional:     []string{},
	},
}

// Order lists the steps in execution order
var Order = []string{StepExtractEnvelope, StepRecover, StepNormalize, StepValidateRecord}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("missing dependencies: %v", e.MissingDependencies)
}

// Category returns the category of a step, or "" for unknown steps
func Category(stepName string) string {
	return StepRegistry[stepName].Category
}

// ValidateDependencies checks that every required dependency of a step completed
// and that no optional dependency failed.
func ValidateDependencies(statuses map[string]StepStatus, stepName string) error {
	def, ok := StepRegistry[stepName]
	if !ok {
		return fmt.Errorf("unknown step: %s", stepName)
	}

	var missing []string
	for _, dep := range def.Dependencies {
		if statuses[dep] != StatusCompleted {
			missing = append(missing, dep)
		}
	}
	for _, dep := range def.Optional {
		if statuses[dep] == StatusFailed {
			missing = append(missing, dep)
		}
	}

	if len(missing) > 0 {
		return &DependencyError{
			Step:                stepName,
			MissingDependencies: missing,
		}
	}
	return nil
}

// GetAvailableSteps returns steps that have not run yet and whose dependencies are met
func GetAvailableSteps(statuses map[string]StepStatus) []string {
	var available []string
	for stepName := range StepRegistry {
		if _, done := statuses[stepName]; done {
			continue
		}
		if err := ValidateDependencies(statuses, stepName); err != nil {
			continue
		}
		available = append(available, stepName)
	}
	sort.Strings(available)
	return available
}

// GetBlockedSteps returns steps that have not run yet and whose dependencies are not met
func GetBlockedSteps(statuses map[string]StepStatus) []string {
	var blocked []string
	for stepName := range StepRegistry {
		if _, done := statuses[stepName]; done {
			continue
		}
		if err := ValidateDependencies(statuses, stepName); err != nil {
			blocked = append(blocked, stepName)
		}
	}
	sort.Strings(blocked)
	return blocked
}
