package normalize

import (
	"strings"

	"github.com/jonathan/fit-analysis/internal/skills"
	"github.com/jonathan/fit-analysis/internal/types"
)

// Context is what a strategy sees: the root record and, for missing skills,
// the matched skills already extracted.
type Context struct {
	Root    types.Value
	Matched []string
	report  *FieldReport
}

func (c *Context) anomaly(format string, args ...any) {
	c.report.addAnomaly(format, args...)
}

// ListStrategy is one candidate source for a list-valued field.
// Results of every strategy are unioned; a Fallback strategy only runs when
// nothing has been collected before it.
type ListStrategy struct {
	Name     string
	Fallback bool
	Extract  func(ctx *Context) []types.Value
}

// skillEntries expands a skill list into raw entries. Nested lists are
// flattened; scalars and records are kept for the final pass.
func skillEntries(v types.Value) []types.Value {
	v = decodeEmbedded(v)
	var out []types.Value
	for _, item := range itemsOf(v) {
		if nested, ok := item.AsSequence(); ok {
			for _, inner := range nested {
				out = append(out, skillEntries(inner)...)
			}
			continue
		}
		out = append(out, item)
	}
	return out
}

// skillsAt builds a strategy reading a skill list at path
func skillsAt(path ...string) ListStrategy {
	return ListStrategy{
		Name: joinPath(path),
		Extract: func(ctx *Context) []types.Value {
			v, ok := ctx.Root.Lookup(path...)
			if !ok {
				return nil
			}
			return skillEntries(v)
		},
	}
}

// matchedMapping reads a skill mapping at path. A plain list there is the
// full requirement set, not the matched subset, so it is ignored.
func matchedMapping(path ...string) ListStrategy {
	return ListStrategy{
		Name: joinPath(path),
		Extract: func(ctx *Context) []types.Value {
			v, ok := at(ctx.Root, path...)
			if !ok {
				return nil
			}
			rec, ok := v.AsRecord()
			if !ok {
				if v.Kind() == types.KindSequence {
					ctx.anomaly("%s: list ignored, only a mapping marks matched skills", joinPath(path))
				}
				return nil
			}
			return mappingSkills(rec)
		},
	}
}

// mappingSkills applies the mapping rule: a description wins, a lone area is
// used as is, otherwise keys whose values are truthy are the skills.
func mappingSkills(rec *types.Record) []types.Value {
	if desc, ok := rec.Get("description"); ok {
		return skillEntries(desc)
	}
	if area, ok := rec.Get("area"); ok && rec.Len() == 1 {
		return []types.Value{area}
	}
	var out []types.Value
	for _, key := range rec.Keys() {
		if v, _ := rec.Get(key); v.Truthy() {
			out = append(out, types.Text(key))
		}
	}
	return out
}

var matchedSkillStrategies = []ListStrategy{
	skillsAt("matched_skills"),
	skillsAt("feedback", "matching_skills"),
	skillsAt("feedback", "matched_skills"),
	skillsAt("feedback", "skills_match"),
	matchedMapping("required_skills"),
	matchedMapping("alignment", "required_skills"),
	matchedMapping("requiredSkills"),
	matchedMapping("alignment", "requiredSkills"),
	skillsAt("feedback", "job_requirements_alignment", "matching_skills"),
	{
		Name: "analysis.matched_skills",
		Extract: func(ctx *Context) []types.Value {
			var out []types.Value
			for _, item := range itemsAt(ctx.Root, "analysis", "matched_skills") {
				if rec, ok := item.AsRecord(); ok {
					if name, ok := firstText(rec, "name", "skill"); ok {
						out = append(out, types.Text(name))
					}
					continue
				}
				out = append(out, item)
			}
			return out
		},
	},
}

var missingSkillStrategies = []ListStrategy{
	skillsAt("missing_skills"),
	skillsAt("feedback", "missing_skills"),
	skillsAt("feedback", "missing_required_skills"),
	skillsAt("feedback", "missing_skills_list"),
	skillsAt("unmatched_skills"),
	{
		Name: "areas_of_improvement.area",
		Extract: func(ctx *Context) []types.Value {
			var out []types.Value
			for _, item := range itemsAt(ctx.Root, "areas_of_improvement") {
				if rec, ok := item.AsRecord(); ok {
					if area, ok := firstText(rec, "area"); ok {
						out = append(out, types.Text(area))
					}
				}
			}
			return out
		},
	},
	{
		Name:     "required_skills-minus-matched_skills",
		Fallback: true,
		Extract: func(ctx *Context) []types.Value {
			required := requiredSkills(ctx.Root)
			if len(required) == 0 || len(ctx.Matched) == 0 {
				return nil
			}
			return texts(skills.Difference(required, ctx.Matched)...)
		},
	},
}

// requiredSkills returns the first non-empty full requirement list.
// A mapping contributes all of its keys.
func requiredSkills(root types.Value) []string {
	candidates := []types.Value{}
	if v, ok := at(root, "feedback", "required_skills"); ok {
		candidates = append(candidates, v)
	}
	if feedback, ok := at(root, "feedback"); ok && feedback.Kind() == types.KindSequence {
		for _, item := range itemsOf(feedback) {
			if v, ok := at(item, "required_skills"); ok {
				candidates = append(candidates, v)
				break
			}
		}
	}
	for _, path := range [][]string{{"required_skills"}, {"requiredSkills"}, {"alignment", "required_skills"}} {
		if v, ok := at(root, path...); ok {
			candidates = append(candidates, v)
		}
	}

	for _, candidate := range candidates {
		var list []string
		if rec, ok := candidate.AsRecord(); ok {
			list = skills.Dedup(rec.Keys())
		} else {
			list = finalizeList(skillEntries(candidate))
		}
		if len(list) > 0 {
			return list
		}
	}
	return nil
}

// qualificationMarkers flag a job requirement as a qualification rather than a skill
var qualificationMarkers = []string{"years", "year", "required", "degree", "certification", "certified"}

var qualificationStrategies = []ListStrategy{
	skillsAt("missing_qualifications"),
	skillsAt("feedback", "missing_qualifications"),
	{
		Name: "job_description.job_requirements",
		Extract: func(ctx *Context) []types.Value {
			var out []types.Value
			for _, item := range itemsAt(ctx.Root, "job_description", "job_requirements") {
				if s, ok := stringText(item); ok && skills.ContainsAnyPhrase(s, qualificationMarkers) {
					out = append(out, types.Text(s))
				}
			}
			return out
		},
	},
}

// MatchedSkillStrategies returns the matched_skills sources in priority order
func MatchedSkillStrategies() []ListStrategy { return cloneList(matchedSkillStrategies) }

// MissingSkillStrategies returns the missing_skills sources in priority order
func MissingSkillStrategies() []ListStrategy { return cloneList(missingSkillStrategies) }

// QualificationStrategies returns the missing_qualifications sources in priority order
func QualificationStrategies() []ListStrategy { return cloneList(qualificationStrategies) }

// SuggestionStrategies returns the suggestions sources in priority order
func SuggestionStrategies() []ListStrategy { return cloneList(suggestionStrategies) }

func cloneList(in []ListStrategy) []ListStrategy {
	out := make([]ListStrategy, len(in))
	copy(out, in)
	return out
}

func joinPath(path []string) string {
	return strings.Join(path, ".")
}
