// Package llm is the boundary to text-generation providers. It defines the
// Generator interface and turns raw completions into canonical analysis records.
package llm

import "strings"

// Provider names a completion API whose response envelope layout is known
type Provider string

// Provider constants define the envelope layouts understood out of the box
const (
	// ProviderGemini is the Google Gemini generateContent API
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is the OpenAI chat completions API
	ProviderOpenAI Provider = "openai"
	// ProviderAnthropic is the Anthropic messages API
	ProviderAnthropic Provider = "anthropic"
	// ProviderOllama is the Ollama generate API
	ProviderOllama Provider = "ollama"
)

// envelopePaths maps each provider to the gjson path of its completion text
var envelopePaths = map[Provider]string{
	ProviderGemini:    "candidates.0.content.parts.0.text",
	ProviderOpenAI:    "choices.0.message.content",
	ProviderAnthropic: "content.0.text",
	ProviderOllama:    "response",
}

// EnvelopePath returns the completion text path for a provider
func EnvelopePath(p Provider) (string, bool) {
	path, ok := envelopePaths[p]
	return path, ok
}

// ResolveEnvelopePath accepts either a provider name or a literal gjson path.
// An empty value stays empty, meaning the body is the completion itself.
func ResolveEnvelopePath(value string) string {
	value = strings.TrimSpace(value)
	if path, ok := EnvelopePath(Provider(strings.ToLower(value))); ok {
		return path
	}
	return value
}

// Providers lists the providers with a known envelope layout
func Providers() []Provider {
	return []Provider{ProviderGemini, ProviderOpenAI, ProviderAnthropic, ProviderOllama}
}
