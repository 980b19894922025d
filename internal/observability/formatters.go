// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/fit-analysis/internal/normalize"
	"github.com/jonathan/fit-analysis/internal/pipeline"
	"github.com/jonathan/fit-analysis/internal/recovery"
	"github.com/jonathan/fit-analysis/internal/schemas"
	"github.com/jonathan/fit-analysis/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// printSingle prints a one-line box
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printSingle(line string) {
	fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
}

// writeList writes up to limit items under a heading
func writeList(sb *strings.Builder, heading string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading + ":\n")
	count := min(len(items), limit)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > limit {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-limit))
	}
	sb.WriteString("\n")
}

// PrintAnalysis outputs a human-readable summary of a canonical analysis record.
func (p *Printer) PrintAnalysis(rec *types.AnalysisRecord) {
	if rec == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Compatibility: %.1f / 100\n\n", rec.CompatibilityScore))

	writeList(&sb, "Matched Skills", rec.MatchedSkills, maxItemsToShow)
	writeList(&sb, "Missing Skills", rec.MissingSkills, maxItemsToShow)
	writeList(&sb, "Missing Qualifications", rec.MissingQualifications, 3)

	if len(rec.Strengths) > 0 {
		strengths := make([]string, 0, len(rec.Strengths))
		for _, s := range rec.Strengths {
			strengths = append(strengths, s.Area+": "+s.Description)
		}
		writeList(&sb, "Strengths", strengths, 3)
	}
	writeList(&sb, "Suggestions", rec.Suggestions, 3)

	p.printBox("COMPATIBILITY ANALYSIS", strings.TrimSuffix(sb.String(), "\n\n"))
}

// PrintRecovery outputs which stage recovered the text, or why recovery failed.
func (p *Printer) PrintRecovery(result *recovery.Result, err error) {
	var sb strings.Builder
	var attempts []recovery.Attempt

	switch {
	case err != nil:
		sb.WriteString("Status:   failed\n")
		if failure, ok := recovery.IsFailure(err); ok {
			sb.WriteString(fmt.Sprintf("Reason:   %s\n", failure.Reason))
			attempts = failure.Attempts
		} else {
			sb.WriteString(fmt.Sprintf("Error:    %v\n", err))
		}
	case result != nil:
		sb.WriteString("Status:   recovered\n")
		sb.WriteString(fmt.Sprintf("Stage:    %s\n", result.Stage))
		sb.WriteString(fmt.Sprintf("Value:    %s\n", result.Value.Kind()))
		attempts = result.Attempts
	default:
		return
	}

	if len(attempts) > 0 {
		sb.WriteString("\nAttempts:\n")
		for _, a := range attempts {
			status := "✓"
			switch {
			case !a.Changed:
				status = "·"
			case a.Error != "":
				status = "✗"
			}
			sb.WriteString(fmt.Sprintf("  %s %s\n", status, a.Stage))
		}
	}

	p.printBox("STRUCTURED DATA RECOVERY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintReport outputs the normalizer's per-field sources and anomalies.
func (p *Printer) PrintReport(report normalize.Report) {
	var sb strings.Builder
	if report.RootAnomaly != "" {
		sb.WriteString(fmt.Sprintf("Root: %s\n\n", report.RootAnomaly))
	}
	for _, f := range report.Fields {
		sources := "(defaults)"
		if len(f.Sources) > 0 {
			sources = strings.Join(f.Sources, ", ")
		}
		sb.WriteString(fmt.Sprintf("%s ← %s\n", f.Field, sources))
		for _, a := range f.Anomalies {
			sb.WriteString(fmt.Sprintf("  ⚠ %s\n", a))
		}
	}

	p.printBox("NORMALIZATION SOURCES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintValidation outputs the result of validating a record against the canonical schema.
func (p *Printer) PrintValidation(err error) {
	if err == nil {
		p.printSingle("✅ RECORD MATCHES CANONICAL SCHEMA")
		return
	}

	var sb strings.Builder
	var validationErr *schemas.ValidationError
	if errors.As(err, &validationErr) {
		sb.WriteString(fmt.Sprintf("Found %d violations:\n\n", len(validationErr.Errors)))
		for i, fe := range validationErr.Errors {
			sb.WriteString(fmt.Sprintf("⚠ %s\n", fe.Field))
			sb.WriteString(fmt.Sprintf("  %s\n", fe.Message))
			if i < len(validationErr.Errors)-1 {
				sb.WriteString("\n")
			}
		}
	} else {
		sb.WriteString(err.Error())
	}

	p.printBox("SCHEMA VIOLATIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBatchSummary outputs per-item outcomes of a batch run.
func (p *Printer) PrintBatchSummary(outputs []pipeline.Output) {
	if len(outputs) == 0 {
		return
	}

	failed := pipeline.FailureCount(outputs)
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Processed %d items, %d failed\n\n", len(outputs), failed))

	count := min(len(outputs), maxItemsToShow*2)
	for i := 0; i < count; i++ {
		out := outputs[i]
		if out.Failed() {
			reason := string(out.FailureReason)
			if reason == "" {
				reason = out.Error
			}
			sb.WriteString(fmt.Sprintf("✗ %s  %s\n", out.ID, reason))
			continue
		}
		sb.WriteString(fmt.Sprintf("✓ %s  %.1f (%s)\n", out.ID, out.Record.CompatibilityScore, out.Stage))
	}
	if len(outputs) > count {
		sb.WriteString(fmt.Sprintf("... and %d more items\n", len(outputs)-count))
	}

	p.printBox("BATCH SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}
