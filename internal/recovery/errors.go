package recovery

import (
	"errors"
	"fmt"
)

// Sentinel causes carried by ParseError
var (
	ErrInvalidSyntax  = errors.New("invalid JSON syntax")
	ErrDepthExceeded  = errors.New("maximum nesting depth exceeded")
	ErrNotStructured  = errors.New("top-level value is not an object or array")
	ErrStageUnchanged = errors.New("stage left the text unchanged")
)

// ParseError represents a failed strict parse of one candidate text
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Reason classifies why recovery gave up
type Reason string

const (
	// ReasonEmptyInput means the input was empty or whitespace only
	ReasonEmptyInput Reason = "empty_input"
	// ReasonInputTooLarge means the input exceeded the configured byte limit
	ReasonInputTooLarge Reason = "input_too_large"
	// ReasonDepthExceeded means the input nests deeper than the configured limit
	ReasonDepthExceeded Reason = "depth_exceeded"
	// ReasonExhausted means every repair stage was tried and none produced a structure
	ReasonExhausted Reason = "exhausted"
	// ReasonInternal means a repair stage panicked; the panic was contained
	ReasonInternal Reason = "internal"
)

// Failure is the only hard error returned by the engine.
// LastAttempted holds the text of the final stage for diagnostic logging by the caller.
type Failure struct {
	Reason        Reason
	LastAttempted string
	Attempts      []Attempt
	Cause         error
}

func (e *Failure) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("recovery failed (%s): %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("recovery failed (%s)", e.Reason)
}

func (e *Failure) Unwrap() error {
	return e.Cause
}

// IsFailure reports whether err is (or wraps) a recovery Failure and returns it
func IsFailure(err error) (*Failure, bool) {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure, true
	}
	return nil, false
}
