// Package normalize maps an arbitrarily shaped structured value onto the
// canonical analysis record. Every field is filled from a prioritized list of
// extraction strategies and degrades to its default instead of failing.
package normalize

import (
	"log/slog"

	"github.com/jonathan/fit-analysis/internal/types"
)

// Normalizer holds only immutable options and is safe for concurrent use
type Normalizer struct {
	logger *slog.Logger
}

// Option configures a Normalizer
type Option func(*Normalizer)

// WithLogger sets the logger used for per-field debug diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(n *Normalizer) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// New creates a Normalizer
func New(opts ...Option) *Normalizer {
	n := &Normalizer{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

var defaultNormalizer = New()

// Normalize runs the default normalizer. A nil value yields the all-defaults record.
func Normalize(v *types.Value) types.AnalysisRecord {
	return defaultNormalizer.Normalize(v)
}

// Normalize maps v onto the canonical record
func (n *Normalizer) Normalize(v *types.Value) types.AnalysisRecord {
	rec, _ := n.NormalizeWithReport(v)
	return rec
}

// NormalizeWithReport maps v onto the canonical record and reports which
// strategies contributed to each field and any anomalies seen on the way.
func (n *Normalizer) NormalizeWithReport(v *types.Value) (types.AnalysisRecord, Report) {
	out := types.EmptyAnalysisRecord()
	var report Report

	if v == nil {
		report.RootAnomaly = "no value"
		return out, report
	}
	if v.Kind() != types.KindRecord {
		report.RootAnomaly = "expected a record, got " + v.Kind().String()
		n.logger.Debug("normalizing non-record value", "kind", v.Kind().String())
		return out, report
	}
	root := *v

	scoreReport := FieldReport{Field: FieldScore}
	out.CompatibilityScore = n.guardScore(&scoreReport, func() float64 {
		return extractScore(root, scoreStrategies, &scoreReport)
	})

	matchedReport := FieldReport{Field: FieldMatchedSkills}
	out.MatchedSkills = n.extractList(&Context{Root: root}, matchedSkillStrategies, &matchedReport)

	missingReport := FieldReport{Field: FieldMissingSkills}
	out.MissingSkills = n.extractList(&Context{Root: root, Matched: out.MatchedSkills}, missingSkillStrategies, &missingReport)

	qualReport := FieldReport{Field: FieldMissingQualifications}
	out.MissingQualifications = n.extractList(&Context{Root: root}, qualificationStrategies, &qualReport)

	strengthReport := FieldReport{Field: FieldStrengths}
	out.Strengths = n.extractStrengths(&Context{Root: root}, strengthStrategies, &strengthReport)

	suggestionReport := FieldReport{Field: FieldSuggestions}
	out.Suggestions = n.extractList(&Context{Root: root}, suggestionStrategies, &suggestionReport)

	report.Fields = []FieldReport{
		scoreReport, matchedReport, missingReport, qualReport, strengthReport, suggestionReport,
	}
	for _, f := range report.Fields {
		n.logger.Debug("normalized field",
			"field", f.Field,
			"sources", f.Sources,
			"anomalies", len(f.Anomalies),
		)
	}
	return out, report
}

func (n *Normalizer) guardScore(report *FieldReport, fn func() float64) (score float64) {
	defer func() {
		if r := recover(); r != nil {
			report.addAnomaly("extractor panicked: %v", r)
			n.logger.Warn("score extractor panicked", "panic", r)
			score = 0
		}
	}()
	return fn()
}

// extractList unions every strategy's entries, then applies the final list pass
func (n *Normalizer) extractList(ctx *Context, strategies []ListStrategy, report *FieldReport) []string {
	ctx.report = report
	var collected []types.Value
	for _, s := range strategies {
		if s.Fallback && len(finalizeList(collected)) > 0 {
			continue
		}
		entries := n.runListStrategy(ctx, s)
		if len(finalizeList(entries)) > 0 {
			report.addSource(s.Name)
			collected = append(collected, entries...)
		}
	}
	return finalizeList(collected)
}

func (n *Normalizer) runListStrategy(ctx *Context, s ListStrategy) (entries []types.Value) {
	defer func() {
		if r := recover(); r != nil {
			ctx.anomaly("%s: strategy panicked: %v", s.Name, r)
			n.logger.Warn("list strategy panicked", "field", ctx.report.Field, "strategy", s.Name, "panic", r)
			entries = nil
		}
	}()
	return s.Extract(ctx)
}

// extractStrengths applies the direct-list priority and unions the heuristic sources
func (n *Normalizer) extractStrengths(ctx *Context, strategies []StrengthStrategy, report *FieldReport) []types.Strength {
	ctx.report = report
	var collected []types.Strength
	direct := false
	for _, s := range strategies {
		if (s.Direct || s.UnlessDirect) && direct {
			continue
		}
		entries := finalizeStrengths(n.runStrengthStrategy(ctx, s))
		if len(entries) == 0 {
			continue
		}
		if s.Direct {
			direct = true
		}
		report.addSource(s.Name)
		collected = append(collected, entries...)
	}
	return finalizeStrengths(collected)
}

func (n *Normalizer) runStrengthStrategy(ctx *Context, s StrengthStrategy) (entries []types.Strength) {
	defer func() {
		if r := recover(); r != nil {
			ctx.anomaly("%s: strategy panicked: %v", s.Name, r)
			n.logger.Warn("strength strategy panicked", "strategy", s.Name, "panic", r)
			entries = nil
		}
	}()
	return s.Extract(ctx)
}
