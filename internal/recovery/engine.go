// Package recovery turns the JSON-like text produced by language models into a
// structured value by running an ordered chain of repair stages, each re-attempted
// through a strict parser, until one yields an object or an array.
package recovery

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonathan/fit-analysis/internal/types"
)

const (
	// DefaultMaxDepth bounds container nesting
	DefaultMaxDepth = 64
	// DefaultMaxInputBytes bounds the raw input size
	DefaultMaxInputBytes = 4 << 20
)

// Attempt records what one stage did
type Attempt struct {
	Stage   Stage  `json:"stage"`
	Changed bool   `json:"changed"`
	Error   string `json:"error,omitempty"`
}

// Result is a successful recovery
type Result struct {
	Value    types.Value
	Stage    Stage
	Text     string
	Attempts []Attempt
}

// Engine runs the repair chain. It holds only immutable options and is safe
// for concurrent use.
type Engine struct {
	maxDepth      int
	maxInputBytes int
	stages        []Stage
	logger        *slog.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithMaxDepth sets the nesting limit. n <= 0 keeps the default.
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxDepth = n
		}
	}
}

// WithMaxInputBytes sets the input size limit; 0 disables it
func WithMaxInputBytes(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.maxInputBytes = n
		}
	}
}

// WithStages replaces the chain. Unknown stages are ignored.
func WithStages(stages ...Stage) Option {
	return func(e *Engine) {
		var known []Stage
		for _, s := range stages {
			if _, ok := stageRegistry[s]; ok {
				known = append(known, s)
			}
		}
		if len(known) > 0 {
			e.stages = known
		}
	}
}

// WithLogger sets the logger used for per-stage debug diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Engine
func New(opts ...Option) *Engine {
	e := &Engine{
		maxDepth:      DefaultMaxDepth,
		maxInputBytes: DefaultMaxInputBytes,
		stages:        DefaultStages(),
		logger:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = New()

// Recover runs the default engine over raw
func Recover(raw string) (*Result, error) {
	return defaultEngine.Recover(raw)
}

// MaxDepth returns the configured nesting limit
func (e *Engine) MaxDepth() int { return e.maxDepth }

// Stages returns a copy of the configured chain
func (e *Engine) Stages() []Stage {
	out := make([]Stage, len(e.stages))
	copy(out, e.stages)
	return out
}

// Recover runs each stage over the previous stage's output and returns the first
// text that parses to an object or array. Any other outcome is a *Failure.
// Recover never panics.
func (e *Engine) Recover(raw string) (result *Result, err error) {
	var attempts []Attempt
	text := raw

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("recovery stage panicked", "panic", r)
			result = nil
			err = &Failure{
				Reason:        ReasonInternal,
				LastAttempted: text,
				Attempts:      attempts,
				Cause:         fmt.Errorf("panic: %v", r),
			}
		}
	}()

	if strings.TrimSpace(raw) == "" {
		return nil, &Failure{Reason: ReasonEmptyInput}
	}
	if e.maxInputBytes > 0 && len(raw) > e.maxInputBytes {
		return nil, &Failure{
			Reason: ReasonInputTooLarge,
			Cause:  fmt.Errorf("input is %d bytes, limit is %d", len(raw), e.maxInputBytes),
		}
	}
	if depth := nestingDepth(raw); depth > e.maxDepth {
		return nil, &Failure{
			Reason: ReasonDepthExceeded,
			Cause:  fmt.Errorf("depth %d exceeds limit %d: %w", depth, e.maxDepth, ErrDepthExceeded),
		}
	}

	var lastErr error
	for i, name := range e.stages {
		def := stageRegistry[name]
		next, transformErr := def.Transform(text)
		attempt := Attempt{Stage: name, Changed: i == 0 || next != text}
		text = next

		switch {
		case transformErr != nil:
			attempt.Error = transformErr.Error()
			lastErr = transformErr
		case !attempt.Changed:
			attempt.Error = ErrStageUnchanged.Error()
		default:
			value, parseErr := parseStructured(text, e.maxDepth)
			if parseErr == nil {
				attempts = append(attempts, attempt)
				e.logger.Debug("recovered structured value", "stage", name, "attempts", len(attempts))
				return &Result{Value: value, Stage: name, Text: text, Attempts: attempts}, nil
			}
			attempt.Error = parseErr.Error()
			lastErr = parseErr
		}
		attempts = append(attempts, attempt)
		e.logger.Debug("recovery stage failed", "stage", name, "changed", attempt.Changed, "error", attempt.Error)
	}

	failure := &Failure{
		Reason:        ReasonExhausted,
		LastAttempted: text,
		Attempts:      attempts,
		Cause:         lastErr,
	}
	if errors.Is(lastErr, ErrDepthExceeded) {
		failure.Reason = ReasonDepthExceeded
	}
	return nil, failure
}
