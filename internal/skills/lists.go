// Package skills provides list helpers for skill names and free-text keyword matching.
package skills

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Dedup trims entries, drops empty ones and removes exact duplicates while
// preserving first-seen order. Comparison is case-sensitive.
func Dedup(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

// Difference returns the entries of required that are not in matched.
// Comparison is case-insensitive; order and casing follow required.
func Difference(required, matched []string) []string {
	have := make(map[string]bool, len(matched))
	for _, m := range matched {
		have[foldKey(m)] = true
	}

	out := make([]string, 0, len(required))
	emitted := make(map[string]bool, len(required))
	for _, r := range required {
		key := foldKey(r)
		if key == "" || have[key] || emitted[key] {
			continue
		}
		emitted[key] = true
		out = append(out, strings.TrimSpace(r))
	}
	return out
}

func foldKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ContainsAnyPhrase reports whether text contains any of phrases as a whole
// word or phrase, ignoring case. "aligns" matches "It aligns well" but not "realigns".
func ContainsAnyPhrase(text string, phrases []string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range phrases {
		if containsPhrase(lower, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}

func containsPhrase(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	offset := 0
	for offset <= len(text)-len(phrase) {
		idx := strings.Index(text[offset:], phrase)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(phrase)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		offset = start + 1
	}
	return false
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
