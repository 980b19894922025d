package recovery

import "strings"

const fenceMarker = "```"

// stripFence removes a single markdown code fence around the text.
// Models often wrap JSON in ```json ... ``` blocks even when instructed not to.
func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, fenceMarker) {
		// A lone closing fence still counts as a wrapper
		if strings.HasSuffix(text, fenceMarker) {
			return strings.TrimSpace(strings.TrimSuffix(text, fenceMarker))
		}
		return text
	}

	body := text[len(fenceMarker):]
	if idx := strings.IndexByte(body, '\n'); idx >= 0 {
		if isLanguageTag(strings.TrimSpace(body[:idx])) {
			body = body[idx+1:]
		}
	} else {
		// Single-line block: ```json {"a": 1}```
		body = strings.TrimLeft(body, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-+")
	}
	if idx := strings.LastIndex(body, fenceMarker); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

// isLanguageTag reports whether the first fence line looks like a language identifier
func isLanguageTag(line string) bool {
	if line == "" {
		return true
	}
	return len(line) < 20 && !strings.ContainsAny(line, " {[\"")
}
