package normalize

import (
	"fmt"
	"strings"

	"github.com/jonathan/fit-analysis/internal/skills"
	"github.com/jonathan/fit-analysis/internal/types"
)

// lowFitThreshold is the percentage below which a fit score produces a suggestion
const lowFitThreshold = 70.0

// Improvement keyword sets gate free text so neutral description is not read as advice
var (
	reasoningKeywords = []string{
		"missing", "lack", "lacks", "lacking", "improve", "consider", "should", "could", "need", "needs",
		"more specific", "details missing", "ambiguity", "could be",
	}
	commentKeywords = append(append([]string{}, reasoningKeywords...),
		"but", "however", "only mentions",
	)
	detailKeywords = []string{
		"missing", "lack", "lacks", "improve", "consider", "should", "could", "need", "needs", "details missing",
	}
	descriptionKeywords = []string{
		"unclear", "could be", "but", "however", "some", "could", "should", "need", "needs", "missing",
	}
)

// matchScoreKeys are the per-area score keys under feedback, in priority order
var matchScoreKeys = []string{"percentage_match", "relevance_score", "alignment_score", "fit_score"}

// nestedFeedbackKeys hold per-area feedback records that may carry recommendations
var nestedFeedbackKeys = []string{"experience_relevance", "alignment_with_job_requirements", "overall_fit"}

// directSuggestions reads a suggestions list whose records use one of the given text keys
func directSuggestions(key string) ListStrategy {
	return ListStrategy{
		Name: key,
		Extract: func(ctx *Context) []types.Value {
			var out []types.Value
			for _, item := range itemsAt(ctx.Root, key) {
				if rec, ok := item.AsRecord(); ok {
					if s, ok := firstText(rec, "suggestion", "recommendation", "text", "description"); ok {
						out = append(out, types.Text(s))
					} else {
						ctx.anomaly("%s: record without suggestion text dropped", key)
					}
					continue
				}
				out = append(out, item)
			}
			return out
		},
	}
}

// prefixed turns each text item at path into "<prefix><item>"
func prefixed(prefix string, path ...string) func(ctx *Context) []types.Value {
	return func(ctx *Context) []types.Value {
		var out []types.Value
		for _, item := range itemsAt(ctx.Root, path...) {
			if s, ok := stringText(item); ok {
				out = append(out, types.Text(prefix+s))
				continue
			}
			if rec, ok := item.AsRecord(); ok {
				if s, ok := firstText(rec, "reason", "description"); ok {
					out = append(out, types.Text(prefix+s))
				}
			}
		}
		return out
	}
}

// recommendations reads a list of recommendation texts or records with a description
func recommendations(v types.Value) []types.Value {
	var out []types.Value
	for _, item := range itemsOf(decodeEmbedded(v)) {
		if rec, ok := item.AsRecord(); ok {
			if s, ok := firstText(rec, "description"); ok {
				out = append(out, types.Text(s))
			}
			continue
		}
		if s, ok := stringText(item); ok {
			out = append(out, types.Text(s))
		}
	}
	return out
}

// gatedText keeps text only when it contains an improvement keyword
func gatedText(v types.Value, keywords []string) []types.Value {
	if s, ok := stringText(v); ok && skills.ContainsAnyPhrase(s, keywords) {
		return []types.Value{types.Text(s)}
	}
	return nil
}

var suggestionStrategies = []ListStrategy{
	directSuggestions("suggestions"),
	directSuggestions("improvement_suggestions"),
	directSuggestions("recommendations"),
	{
		Name: "feedback.weaknesses",
		Extract: func(ctx *Context) []types.Value {
			var out []types.Value
			for _, item := range itemsAt(ctx.Root, "feedback", "weaknesses") {
				if rec, ok := item.AsRecord(); ok {
					if s, ok := firstText(rec, "recommendation", "suggestion"); ok {
						out = append(out, types.Text(s))
					}
					continue
				}
				if s, ok := stringText(item); ok {
					out = append(out, types.Text(s))
				}
			}
			return out
		},
	},
	{
		Name: "areas_of_improvement.description",
		Extract: func(ctx *Context) []types.Value {
			var out []types.Value
			for _, item := range itemsAt(ctx.Root, "areas_of_improvement") {
				if rec, ok := item.AsRecord(); ok {
					if s, ok := firstText(rec, "description"); ok {
						out = append(out, types.Text(s))
					}
				}
			}
			return out
		},
	},
	{
		Name:    "overall_fit",
		Extract: lowOverallFit,
	},
	{
		Name:    "overallFit.reasonsForDisfit",
		Extract: prefixed("Address: ", "overallFit", "reasonsForDisfit"),
	},
	{
		Name:     "overallFit.reasonsForFit",
		Fallback: true,
		Extract:  prefixed("Continue emphasizing: ", "overallFit", "reasonsForFit"),
	},
	{
		Name: "alignment.reasonsForAlignment",
		Extract: func(ctx *Context) []types.Value {
			if v, ok := ctx.Root.Lookup("alignment", "requiresAlignment"); !ok || !v.Truthy() {
				return nil
			}
			return prefixed("Focus on: ", "alignment", "reasonsForAlignment")(ctx)
		},
	},
	{
		Name:    "alignment.discrepancies",
		Extract: prefixed("Address discrepancy: ", "alignment", "discrepancies"),
	},
	{
		Name:    "feedback.*",
		Extract: feedbackAreaSuggestions,
	},
	{
		Name: "experience_details.reasoning",
		Extract: func(ctx *Context) []types.Value {
			v, ok := ctx.Root.Lookup("experience_details", "reasoning")
			if !ok {
				return nil
			}
			return gatedText(v, detailKeywords)
		},
	},
	{
		Name: "actionable_feedback",
		Extract: func(ctx *Context) []types.Value {
			var out []types.Value
			for _, item := range itemsAt(ctx.Root, "actionable_feedback") {
				if rec, ok := item.AsRecord(); ok {
					for _, key := range []string{"feedback", "suggested_action"} {
						if v, ok := rec.Get(key); ok {
							if s, ok := stringText(v); ok {
								out = append(out, types.Text(s))
							}
						}
					}
					continue
				}
				if s, ok := stringText(item); ok {
					out = append(out, types.Text(s))
				}
			}
			return out
		},
	},
	{
		Name: "actionable_recommendations",
		Extract: func(ctx *Context) []types.Value {
			v, ok := ctx.Root.Lookup("actionable_recommendations")
			if !ok {
				return nil
			}
			return recommendations(v)
		},
	},
	{
		Name:    "feedback.actionable_recommendations",
		Extract: nestedRecommendations,
	},
}

// lowOverallFit turns a fraction such as "6/10" below the threshold into a generic suggestion
func lowOverallFit(ctx *Context) []types.Value {
	v, ok := ctx.Root.Lookup("overall_fit")
	if !ok {
		return nil
	}
	s, ok := stringText(v)
	if !ok || !strings.Contains(s, "/") {
		return nil
	}
	ratio, err := parseScoreText(s)
	if err != nil {
		ctx.anomaly("overall_fit: %v", err)
		return nil
	}
	if ratio >= lowFitThreshold {
		return nil
	}
	return texts(fmt.Sprintf("Overall fit is %s. Consider highlighting more relevant experience and skills.", s))
}

// feedbackAreaSuggestions walks each record under feedback for critical
// reasoning, critical comments and low per-area match scores.
func feedbackAreaSuggestions(ctx *Context) []types.Value {
	feedback, ok := recordAt(ctx.Root, "feedback")
	if !ok {
		return nil
	}

	var out []types.Value
	for _, key := range feedback.Keys() {
		v, _ := feedback.Get(key)
		area, ok := v.AsRecord()
		if !ok {
			continue
		}
		if reasoning, ok := area.Get("reasoning"); ok {
			out = append(out, gatedText(reasoning, reasoningKeywords)...)
		}
		if comments, ok := area.Get("comments"); ok {
			for _, c := range itemsOf(comments) {
				out = append(out, gatedText(c, commentKeywords)...)
			}
		}
		if pct, ok := areaMatchScore(area); ok && pct < lowFitThreshold {
			out = append(out, types.Text(fmt.Sprintf(
				"Improve %s: Current match is %.1f%%. Consider highlighting more relevant experience.",
				titleKey(key), pct)))
		}
	}
	return out
}

// areaMatchScore returns the first non-zero numeric match score, rescaled from 0-1 when needed
func areaMatchScore(area *types.Record) (float64, bool) {
	for _, key := range matchScoreKeys {
		v, ok := area.Get(key)
		if !ok {
			continue
		}
		n, ok := v.AsNumber()
		if !ok || n == 0 {
			continue
		}
		if n > 0 && n <= 1 {
			n *= 100
		}
		return n, true
	}
	return 0, false
}

// nestedRecommendations reads actionable_recommendations one level inside feedback,
// whether feedback is a list of sections or a record of areas.
func nestedRecommendations(ctx *Context) []types.Value {
	feedback, ok := at(ctx.Root, "feedback")
	if !ok {
		return nil
	}

	var out []types.Value
	if items, ok := feedback.AsSequence(); ok {
		for _, item := range items {
			if v, ok := item.Lookup("actionable_recommendations"); ok {
				out = append(out, recommendations(v)...)
			}
		}
		return out
	}

	rec, ok := feedback.AsRecord()
	if !ok {
		return nil
	}
	if v, ok := rec.Get("actionable_recommendations"); ok {
		out = append(out, recommendations(v)...)
	}
	for _, key := range nestedFeedbackKeys {
		nested, ok := rec.Get(key)
		if !ok {
			continue
		}
		if v, ok := nested.Lookup("actionable_recommendations"); ok {
			out = append(out, recommendations(v)...)
		}
		if v, ok := nested.Lookup("description"); ok {
			out = append(out, gatedText(v, descriptionKeywords)...)
		}
	}
	return out
}
