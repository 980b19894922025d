package recovery

import "strings"

// position is what the scanner expects next inside a container
type position int

const (
	expectKey position = iota
	expectColon
	expectValue
	afterValue
)

type frame struct {
	object bool
	next   position
	// afterComma is set when next was reached through a comma rather than the opener
	afterComma bool
}

// closeTruncated completes output that was cut off mid-stream: it closes an
// unterminated string, drops a dangling comma, completes a dangling key or
// colon with null and appends closers for every open container, innermost first.
func closeTruncated(text string) string {
	var stack []frame
	inString, escaped, stringIsKey := false, false, false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
				finishString(stack, stringIsKey)
			}
			continue
		}

		top := len(stack) - 1
		switch c {
		case '"':
			inString = true
			stringIsKey = top >= 0 && stack[top].object && stack[top].next == expectKey
		case '{':
			stack = append(stack, frame{object: true, next: expectKey})
		case '[':
			stack = append(stack, frame{next: expectValue})
		case '}', ']':
			if top >= 0 {
				stack = stack[:top]
				if top > 0 {
					stack[top-1].next = afterValue
				}
			}
		case ':':
			if top >= 0 && stack[top].object {
				stack[top].next = expectValue
				stack[top].afterComma = false
			}
		case ',':
			if top >= 0 {
				if stack[top].object {
					stack[top].next = expectKey
				} else {
					stack[top].next = expectValue
				}
				stack[top].afterComma = true
			}
		default:
			if top >= 0 && !isSpace(c) && stack[top].next == expectValue {
				stack[top].next = afterValue
			}
		}
	}

	if len(stack) == 0 && !inString {
		return text
	}

	var b strings.Builder
	b.WriteString(text)

	if inString {
		out := b.String()
		if escaped {
			out = out[:len(out)-1]
		}
		b.Reset()
		b.WriteString(out)
		b.WriteByte('"')
		finishString(stack, stringIsKey)
	}

	if top := len(stack) - 1; top >= 0 {
		f := stack[top]
		switch {
		case f.object && f.next == expectColon:
			b.WriteString(": null")
		case f.object && f.next == expectValue && !f.afterComma:
			b.WriteString(" null")
		case (f.next == expectKey || f.next == expectValue) && f.afterComma:
			out := strings.TrimRight(b.String(), " \t\r\n")
			out = strings.TrimSuffix(out, ",")
			b.Reset()
			b.WriteString(out)
		}
	}

	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].object {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}

func finishString(stack []frame, wasKey bool) {
	top := len(stack) - 1
	if top < 0 {
		return
	}
	if wasKey {
		stack[top].next = expectColon
	} else {
		stack[top].next = afterValue
	}
}
