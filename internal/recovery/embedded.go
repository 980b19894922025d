package recovery

import (
	"regexp"
	"strings"
)

// structureAfterBreak finds a structure that follows a colon or a line break,
// e.g. "Skills: [Python, SQL]"
var structureAfterBreak = regexp.MustCompile(`[:\n]\s*(\[[\s\S]*\]|\{[\s\S]*\})`)

// extractEmbedded slices the structure out of surrounding prose.
// Trailing text after the balanced end of the structure is cut.
func extractEmbedded(text string) string {
	text = strings.TrimSpace(text)
	if !startsStructure(text) {
		if start := confidentStart(text); start >= 0 {
			text = text[start:]
		} else if m := structureAfterBreak.FindStringSubmatch(text); m != nil {
			text = m[1]
		} else {
			return text
		}
	}
	if end := balancedEnd(text); end > 0 {
		text = text[:end]
	}
	return text
}

func startsStructure(text string) bool {
	return text != "" && (text[0] == '{' || text[0] == '[')
}

// confidentStart returns the index of the first '{' or '[' that is followed by
// another opener, either quote character or whitespace. A bracket followed by a letter is
// more likely prose ("[sic]") than data.
func confidentStart(text string) int {
	for i := 0; i < len(text)-1; i++ {
		if text[i] != '{' && text[i] != '[' {
			continue
		}
		switch text[i+1] {
		case '{', '[', '"', '\'', ' ', '\t', '\n', '\r':
			return i
		}
	}
	return -1
}

// balancedEnd returns the index just past the bracket that closes the structure
// opened at text[0], or -1 when the structure never closes. Quoting and
// comments follow the same rules as stripComments, so a closer inside a
// comment or a single-quoted string does not end the structure.
func balancedEnd(text string) int {
	depth := 0
	var quote byte
	escaped := false
	var lastSignificant byte

	for i := 0; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
				lastSignificant = c
			case c == '\n' && quote == '\'':
				quote = 0
			}
			continue
		}

		switch {
		case c == '"':
			quote = c
		case c == '\'' && opensValue(lastSignificant):
			quote = c
		case c == '/' && i+1 < len(text) && text[i+1] == '/':
			end := strings.IndexByte(text[i:], '\n')
			if end < 0 {
				return -1
			}
			i += end
			continue
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				return -1
			}
			i += end + 3
			continue
		case c == '{' || c == '[':
			depth++
		case c == '}' || c == ']':
			depth--
			if depth == 0 {
				return i + 1
			}
			if depth < 0 {
				return -1
			}
		}
		if !isSpace(c) {
			lastSignificant = c
		}
	}
	return -1
}
