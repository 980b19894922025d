package recovery

import (
	"regexp"
	"strings"
)

var (
	// barePattern is deliberately narrow so operators and punctuation are never quoted
	barePattern    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_/() ]*$`)
	numericPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
)

// quoteBareTokens wraps unquoted word tokens inside arrays and objects in
// double quotes, turning [Python, SQL] into ["Python", "SQL"]. Object keys are
// handled the same way. A token missing only its opening quote (SQL") is completed.
// An explicit plus sign on a number is dropped since JSON has no such form.
func quoteBareTokens(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 32)

	var stack []byte
	var lastSignificant byte
	inString, escaped := false, false

	for i := 0; i < len(text); {
		c := text[i]

		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
				lastSignificant = c
			}
			i++
			continue
		}

		switch {
		case c == '"':
			inString = true
		case c == '{' || c == '[':
			stack = append(stack, c)
		case c == '}' || c == ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case c == ',' || c == ':' || isSpace(c):
		case len(stack) > 0 && opensValue(lastSignificant):
			keyPosition := stack[len(stack)-1] == '{' && (lastSignificant == '{' || lastSignificant == ',')
			end := tokenEnd(text, i, keyPosition)
			token := text[i:end]
			trimmed := strings.TrimRight(token, " \t\r")
			bare := barePattern.MatchString(trimmed) && !isLiteral(trimmed)

			switch {
			case bare && end < len(text) && text[end] == '"':
				b.WriteByte('"')
				b.WriteString(token)
				b.WriteByte('"')
				lastSignificant = '"'
				i = end + 1
				continue
			case bare:
				b.WriteByte('"')
				b.WriteString(trimmed)
				b.WriteByte('"')
				b.WriteString(token[len(trimmed):])
				lastSignificant = '"'
			case signedNumber(trimmed):
				b.WriteString(token[1:])
				lastSignificant = trimmed[len(trimmed)-1]
			default:
				b.WriteString(token)
				if trimmed != "" {
					lastSignificant = trimmed[len(trimmed)-1]
				}
			}
			i = end
			continue
		}

		b.WriteByte(c)
		if !isSpace(c) {
			lastSignificant = c
		}
		i++
	}
	return b.String()
}

// tokenEnd returns the index of the first delimiter at or after start.
// Keys additionally end at a colon.
func tokenEnd(text string, start int, key bool) int {
	for i := start; i < len(text); i++ {
		switch text[i] {
		case ',', ']', '}', '[', '{', '"', '\n':
			return i
		case ':':
			if key {
				return i
			}
		}
	}
	return len(text)
}

// isLiteral reports whether token is a JSON keyword or a number
func isLiteral(token string) bool {
	switch token {
	case "true", "false", "null":
		return true
	}
	return numericPattern.MatchString(token)
}

// signedNumber reports whether token is a number written with a leading '+'
func signedNumber(token string) bool {
	return strings.HasPrefix(token, "+") && numericPattern.MatchString(token)
}
