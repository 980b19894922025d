package recovery

import "strings"

// sanitize escapes raw control characters inside double-quoted strings and
// drops trailing commas before a closing bracket.
func sanitize(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 16)

	inString, escaped := false, false
	for i := 0; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
				b.WriteByte(c)
			case c == '\\':
				escaped = true
				b.WriteByte(c)
			case c == '"':
				inString = false
				b.WriteByte(c)
			case c == '\n':
				b.WriteString(`\n`)
			case c == '\r':
				b.WriteString(`\r`)
			case c == '\t':
				b.WriteString(`\t`)
			case c < 0x20:
				b.WriteByte(' ')
			default:
				b.WriteByte(c)
			}
			continue
		}

		if c == '"' {
			inString = true
		}
		if c == ',' && closesAfterSpace(text, i+1) {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// closesAfterSpace reports whether the first non-space byte at or after i closes a container
func closesAfterSpace(text string, i int) bool {
	for ; i < len(text); i++ {
		if isSpace(text[i]) {
			continue
		}
		return text[i] == ']' || text[i] == '}'
	}
	return false
}
