package llm

import "fmt"

// GenerateError represents a failure of the underlying generator
type GenerateError struct {
	Message string
	Cause   error
}

func (e *GenerateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generate error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("generate error: %s", e.Message)
}

func (e *GenerateError) Unwrap() error {
	return e.Cause
}

// EnvelopeError represents a provider response the completion text could not be read from
type EnvelopeError struct {
	Message string
	Path    string
}

func (e *EnvelopeError) Error() string {
	return fmt.Sprintf("envelope error at %q: %s", e.Path, e.Message)
}
