package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jonathan/fit-analysis/internal/types"
)

// ScoreStrategy is one candidate location for the compatibility score
type ScoreStrategy struct {
	Name string
	Path []string
	// Alternative marks the second alias set, consulted after every primary location
	Alternative bool
}

var primaryScoreAliases = []string{
	"compatibility_score", "score", "compatibility", "match_score", "overall_score", "fit_score",
}

var alternativeScoreAliases = []string{
	"match_percentage", "relevance_score", "alignment_score", "overall_fit", "fit_score", "match_score",
}

var scoreStrategies = buildScoreStrategies()

func buildScoreStrategies() []ScoreStrategy {
	var out []ScoreStrategy
	add := func(alternative bool, path ...string) {
		out = append(out, ScoreStrategy{Name: strings.Join(path, "."), Path: path, Alternative: alternative})
	}
	for _, alias := range primaryScoreAliases {
		add(false, alias)
	}
	for _, alias := range primaryScoreAliases {
		add(false, "summary", alias)
	}
	add(false, "feedback", "score")
	add(false, "feedback", "compatibility_score")
	add(false, "overallFit", "score")
	add(false, "overallFit", "fitScore")
	for _, alias := range alternativeScoreAliases {
		add(true, alias)
	}
	return out
}

// ScoreStrategies returns the score locations in priority order
func ScoreStrategies() []ScoreStrategy {
	out := make([]ScoreStrategy, len(scoreStrategies))
	copy(out, scoreStrategies)
	return out
}

// extractScore returns the first strictly positive score found, or 0
func extractScore(root types.Value, strategies []ScoreStrategy, report *FieldReport) float64 {
	for _, s := range strategies {
		v, ok := root.Lookup(s.Path...)
		if !ok || v.IsNull() {
			continue
		}
		score, err := ParseScore(v)
		if err != nil {
			report.addAnomaly("%s: %v", s.Name, err)
			continue
		}
		if score > 0 {
			report.addSource(s.Name)
			return score
		}
	}
	return 0
}

// ParseScore converts a number or score text onto the 0-100 scale.
// Text may carry a trailing percent sign or be a fraction such as "7/10".
// Values in (0, 1] are treated as a 0-1 scale. The result is clamped to [0, 100].
func ParseScore(v types.Value) (float64, error) {
	var score float64
	switch v.Kind() {
	case types.KindNumber:
		score, _ = v.AsNumber()
	case types.KindText:
		s, _ := v.AsText()
		parsed, err := parseScoreText(s)
		if err != nil {
			return 0, err
		}
		score = parsed
	default:
		return 0, fmt.Errorf("cannot use %s as a score", v.Kind())
	}

	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, fmt.Errorf("score is not finite")
	}
	if score > 0 && score <= 1 {
		score *= 100
	}
	return math.Max(0, math.Min(100, score)), nil
}

func parseScoreText(s string) (float64, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(s, "%", ""))
	if strings.Contains(cleaned, "/") {
		parts := strings.Split(cleaned, "/")
		if len(parts) != 2 {
			return 0, fmt.Errorf("cannot parse score %q", s)
		}
		num, err := parseFinite(parts[0])
		if err != nil {
			return 0, fmt.Errorf("cannot parse score %q", s)
		}
		den, err := parseFinite(parts[1])
		if err != nil || den == 0 {
			return 0, fmt.Errorf("cannot parse score %q", s)
		}
		return num / den * 100, nil
	}
	f, err := parseFinite(cleaned)
	if err != nil {
		return 0, fmt.Errorf("cannot parse score %q", s)
	}
	return f, nil
}

func parseFinite(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not finite")
	}
	return f, nil
}
