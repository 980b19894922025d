// Package llm - util.go provides shared utilities for provider response processing.
package llm

import (
	"strings"

	"github.com/tidwall/gjson"
)

// jsonInstruction is appended to prompts that never ask for JSON
const jsonInstruction = "\n\nRespond with valid JSON only."

// EnsureJSONInstruction appends an explicit JSON instruction unless the
// prompt already mentions JSON.
func EnsureJSONInstruction(prompt string) string {
	if strings.Contains(prompt, "JSON") || strings.Contains(prompt, "json") {
		return prompt
	}
	return prompt + jsonInstruction
}

// ExtractEnvelopeText pulls the completion text out of a provider response
// body using a gjson path such as "choices.0.message.content". An empty path
// returns the body unchanged.
func ExtractEnvelopeText(body []byte, path string) (string, error) {
	if path == "" {
		return string(body), nil
	}
	if !gjson.ValidBytes(body) {
		return "", &EnvelopeError{Message: "response body is not valid JSON", Path: path}
	}

	result := gjson.GetBytes(body, path)
	if !result.Exists() {
		return "", &EnvelopeError{Message: "path not found", Path: path}
	}
	switch result.Type {
	case gjson.String:
		return result.String(), nil
	case gjson.JSON:
		// Some providers return structured output as an object rather than text
		return result.Raw, nil
	default:
		return "", &EnvelopeError{Message: "completion is not text, got " + result.Type.String(), Path: path}
	}
}
