package normalize

import (
	"strings"

	"github.com/jonathan/fit-analysis/internal/skills"
	"github.com/jonathan/fit-analysis/internal/types"
)

const (
	defaultStrengthArea    = "Strength"
	experienceArea         = "Experience"
	experienceAnalysisArea = "Experience Analysis"
)

// StrengthStrategy is one candidate source for strengths.
// Direct strategies are alternatives: only the first that yields anything contributes.
// UnlessDirect strategies are skipped once a direct strategy contributed.
type StrengthStrategy struct {
	Name         string
	Direct       bool
	UnlessDirect bool
	Extract      func(ctx *Context) []types.Strength
}

// positiveMarkers must appear in free text for it to count as a strength
var positiveMarkers = []string{
	"good", "strong", "strongly", "aligns", "aligned", "relevant", "highlights", "excellent", "solid",
}

// deficitMarkers veto a free-text strength even when a positive marker is present.
// Only words that name a gap belong here; contrast words like "but" are common in praise.
var deficitMarkers = []string{
	"lack", "lacks", "lacking", "missing", "weak", "weakness", "insufficient",
}

func isPositive(text string) bool {
	return skills.ContainsAnyPhrase(text, positiveMarkers) && !skills.ContainsAnyPhrase(text, deficitMarkers)
}

// directStrengths reads an explicit strengths list at path
func directStrengths(path ...string) StrengthStrategy {
	return StrengthStrategy{
		Name:   joinPath(path),
		Direct: true,
		Extract: func(ctx *Context) []types.Strength {
			var out []types.Strength
			for _, item := range itemsAt(ctx.Root, path...) {
				if s, ok := strengthOf(item); ok {
					out = append(out, s)
				} else if item.Kind() == types.KindRecord {
					ctx.anomaly("%s: entry without description dropped", joinPath(path))
				}
			}
			return out
		},
	}
}

// strengthOf converts a raw entry: records give {area, description}, text gives a default area
func strengthOf(item types.Value) (types.Strength, bool) {
	if rec, ok := item.AsRecord(); ok {
		desc, ok := firstText(rec, "description")
		if !ok {
			return types.Strength{}, false
		}
		area, ok := firstText(rec, "area")
		if !ok {
			area = defaultStrengthArea
		}
		return types.Strength{Area: area, Description: desc}, true
	}
	if s, ok := nonEmptyText(item); ok {
		return types.Strength{Area: defaultStrengthArea, Description: s}, true
	}
	return types.Strength{}, false
}

// feedbackSentiment scans free text under feedback.<key> for positive statements
func feedbackSentiment(key, area string) StrengthStrategy {
	return StrengthStrategy{
		Name: "feedback." + key,
		Extract: func(ctx *Context) []types.Strength {
			rec, ok := recordAt(ctx.Root, "feedback", key)
			if !ok {
				return nil
			}
			var candidates []string
			if v, ok := rec.Get("reasoning"); ok {
				if s, ok := stringText(v); ok {
					candidates = append(candidates, s)
				}
			}
			if v, ok := rec.Get("comments"); ok {
				for _, item := range itemsOf(v) {
					if s, ok := stringText(item); ok {
						candidates = append(candidates, s)
					}
				}
			}
			if v, ok := rec.Get("description"); ok {
				if s, ok := stringText(v); ok {
					candidates = append(candidates, s)
				}
			}

			var out []types.Strength
			for _, c := range candidates {
				if isPositive(c) {
					out = append(out, types.Strength{Area: area, Description: c})
				}
			}
			return out
		},
	}
}

var strengthStrategies = []StrengthStrategy{
	directStrengths("strengths"),
	directStrengths("summary", "strengths"),
	directStrengths("feedback", "strengths"),
	feedbackSentiment("experience_relevance", "Experience Relevance"),
	feedbackSentiment("alignment_with_job_requirements", "Job Alignment"),
	feedbackSentiment("overall_fit", "Overall Fit"),
	{
		Name: "experience_details",
		Extract: func(ctx *Context) []types.Strength {
			rec, ok := recordAt(ctx.Root, "experience_details")
			if !ok {
				return nil
			}
			var out []types.Strength
			if v, ok := rec.Get("experience_points"); ok {
				for _, item := range itemsOf(v) {
					if s, ok := stringText(item); ok {
						out = append(out, types.Strength{Area: experienceArea, Description: s})
					}
				}
			}
			if v, ok := rec.Get("reasoning"); ok {
				if s, ok := stringText(v); ok {
					out = append(out, types.Strength{Area: experienceAnalysisArea, Description: s})
				}
			}
			return out
		},
	},
	{
		Name:         "experience",
		UnlessDirect: true,
		Extract:      experienceStrengths,
	},
}

// StrengthStrategies returns the strengths sources in priority order
func StrengthStrategies() []StrengthStrategy {
	out := make([]StrengthStrategy, len(strengthStrategies))
	copy(out, strengthStrategies)
	return out
}

// experienceStrengths reformats structured work history, given either as a
// mapping of employer to role details or as a list of role records.
func experienceStrengths(ctx *Context) []types.Strength {
	v, ok := at(ctx.Root, "experience")
	if !ok {
		return nil
	}

	var out []types.Strength
	if rec, ok := v.AsRecord(); ok {
		for _, employer := range rec.Keys() {
			details, _ := rec.Get(employer)
			if d, ok := details.AsRecord(); ok {
				if line, ok := FormatExperience(employer, d); ok {
					out = append(out, types.Strength{Area: experienceArea, Description: line})
				}
			}
		}
		return out
	}

	for _, item := range itemsOf(v) {
		if d, ok := item.AsRecord(); ok {
			if line, ok := FormatExperience("", d); ok {
				out = append(out, types.Strength{Area: experienceArea, Description: line})
			}
			continue
		}
		if s, ok := stringText(item); ok {
			out = append(out, types.Strength{Area: experienceArea, Description: s})
		}
	}
	return out
}

// FormatExperience renders one role as
// "<Role> at <Employer> (<duration or start - end>): <summary or up to three tasks>".
// employer is the mapping key the role was found under, if any; an explicit
// company field takes precedence. It reports false when nothing meaningful is present.
func FormatExperience(employer string, details *types.Record) (string, bool) {
	role, _ := firstText(details, "jobTitle", "job_title", "position", "title", "role")
	company, ok := firstText(details, "company", "employer")
	if !ok {
		company = strings.TrimSpace(employer)
	}
	if role == "" && company != "" {
		role, company = titleKey(company), ""
	}

	var b strings.Builder
	b.WriteString(role)
	if company != "" && !strings.EqualFold(company, role) {
		b.WriteString(" at " + company)
	}

	if duration, ok := firstText(details, "duration"); ok {
		b.WriteString(" (" + duration + ")")
	} else if start, ok := firstText(details, "start_date", "startDate"); ok {
		end, ok := firstText(details, "end_date", "endDate")
		if !ok {
			end = "Present"
		}
		b.WriteString(" (" + start + " - " + end + ")")
	}

	summary := experienceSummary(details)
	header := strings.TrimSpace(b.String())
	if role == "" && company == "" && summary == "" {
		return "", false
	}
	if header == "" || strings.HasPrefix(header, "(") {
		header = strings.TrimSpace(experienceArea + " " + header)
	}
	if summary == "" {
		return header, true
	}
	return header + ": " + summary, true
}

func experienceSummary(details *types.Record) string {
	if s, ok := firstText(details, "summary"); ok {
		return s
	}
	for _, key := range []string{"tasks", "responsibilities"} {
		v, ok := details.Get(key)
		if !ok {
			continue
		}
		var tasks []string
		for _, item := range itemsOf(v) {
			if s, ok := nonEmptyText(item); ok {
				tasks = append(tasks, s)
			}
			if len(tasks) == 3 {
				break
			}
		}
		if len(tasks) > 0 {
			return strings.Join(tasks, ", ")
		}
	}
	return ""
}

// finalizeStrengths drops blank descriptions and identical pairs, keeping first-seen order
func finalizeStrengths(in []types.Strength) []types.Strength {
	out := make([]types.Strength, 0, len(in))
	seen := make(map[types.Strength]bool, len(in))
	for _, s := range in {
		s.Area = strings.TrimSpace(s.Area)
		s.Description = strings.TrimSpace(s.Description)
		if s.Description == "" {
			continue
		}
		if s.Area == "" {
			s.Area = defaultStrengthArea
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
