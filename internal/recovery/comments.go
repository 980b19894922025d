package recovery

import "strings"

// stripComments removes // line comments and /* */ block comments outside
// quoted strings. Double-quoted strings may span lines; single-quoted strings
// end at a line break so an apostrophe in prose cannot swallow the rest of the input.
func stripComments(text string) string {
	if !strings.Contains(text, "//") && !strings.Contains(text, "/*") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	var quote byte
	escaped := false
	var lastSignificant byte

	for i := 0; i < len(text); i++ {
		c := text[i]

		if quote != 0 {
			b.WriteByte(c)
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
				i = len(text)
				continue
			}
			// Keep the newline itself
			i += end - 1
			continue
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				i = len(text)
				continue
			}
			i += end + 3
			b.WriteByte(' ')
			continue
		}

		b.WriteByte(c)
		if !isSpace(c) {
			lastSignificant = c
		}
	}
	return b.String()
}

// opensValue reports whether a token may start right after prev
func opensValue(prev byte) bool {
	switch prev {
	case 0, '[', '{', ',', ':':
		return true
	}
	return false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
