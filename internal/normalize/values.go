package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jonathan/fit-analysis/internal/recovery"
	"github.com/jonathan/fit-analysis/internal/skills"
	"github.com/jonathan/fit-analysis/internal/types"
)

// entryKeys are the keys that hold the text of a single-entry record, in priority order
var entryKeys = []string{"description", "area", "name", "skill"}

// decodeEmbedded parses text that itself holds JSON, e.g. "[\"Python\", \"SQL\"]".
// Anything else is returned unchanged.
func decodeEmbedded(v types.Value) types.Value {
	s, ok := v.AsText()
	if !ok {
		return v
	}
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return v
	}
	if (s[0] == '[' && s[len(s)-1] == ']') || (s[0] == '{' && s[len(s)-1] == '}') {
		if decoded, err := recovery.ParseStrict(s, recovery.DefaultMaxDepth); err == nil {
			return decoded
		}
	}
	return v
}

// at looks up a path and decodes embedded JSON text at the end of it
func at(root types.Value, path ...string) (types.Value, bool) {
	v, ok := root.Lookup(path...)
	if !ok {
		return types.Value{}, false
	}
	return decodeEmbedded(v), true
}

// recordAt returns the record stored at path
func recordAt(root types.Value, path ...string) (*types.Record, bool) {
	v, ok := at(root, path...)
	if !ok {
		return nil, false
	}
	return v.AsRecord()
}

// itemsOf treats a sequence as its items, null as nothing and any other value as a single item
func itemsOf(v types.Value) []types.Value {
	switch v.Kind() {
	case types.KindNull:
		return nil
	case types.KindSequence:
		items, _ := v.AsSequence()
		return items
	default:
		return []types.Value{v}
	}
}

// itemsAt returns the items stored at path
func itemsAt(root types.Value, path ...string) []types.Value {
	v, ok := at(root, path...)
	if !ok {
		return nil
	}
	return itemsOf(v)
}

// nonEmptyText returns the trimmed text of a scalar, reporting false for blanks and containers
func nonEmptyText(v types.Value) (string, bool) {
	s, ok := v.ScalarText()
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// stringText is nonEmptyText restricted to text values
func stringText(v types.Value) (string, bool) {
	s, ok := v.AsText()
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// firstText returns the first non-empty scalar stored under one of keys
func firstText(rec *types.Record, keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := rec.Get(key); ok {
			if s, ok := nonEmptyText(v); ok {
				return s, true
			}
		}
	}
	return "", false
}

// texts wraps plain strings as text values
func texts(items ...string) []types.Value {
	out := make([]types.Value, 0, len(items))
	for _, item := range items {
		out = append(out, types.Text(item))
	}
	return out
}

// finalizeList coerces collected entries to text, flattening one level of
// nested lists and unwrapping entry records, then trims, drops blanks and dedups.
func finalizeList(entries []types.Value) []string {
	var out []string
	for _, entry := range entries {
		if items, ok := entry.AsSequence(); ok {
			for _, item := range items {
				out = append(out, coerceEntry(item)...)
			}
			continue
		}
		out = append(out, coerceEntry(entry)...)
	}
	return skills.Dedup(out)
}

// coerceEntry renders a single entry as text. Records yield their entry key;
// records without one yield their text values. Nested containers are dropped.
func coerceEntry(v types.Value) []string {
	switch v.Kind() {
	case types.KindNull, types.KindSequence:
		return nil
	case types.KindRecord:
		rec, _ := v.AsRecord()
		return recordEntries(rec)
	default:
		if s, ok := nonEmptyText(v); ok {
			return []string{s}
		}
		return nil
	}
}

func recordEntries(rec *types.Record) []string {
	for _, key := range entryKeys {
		v, ok := rec.Get(key)
		if !ok {
			continue
		}
		var out []string
		for _, item := range itemsOf(v) {
			if s, ok := nonEmptyText(item); ok {
				out = append(out, s)
			}
		}
		return out
	}

	var out []string
	for _, key := range rec.Keys() {
		v, _ := rec.Get(key)
		for _, item := range itemsOf(v) {
			if s, ok := stringText(item); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// titleKey turns snake_case keys into Title Case words.
// A Caser is stateful, so each call builds its own.
func titleKey(key string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(strings.TrimSpace(key), "_", " "))
}
