package recovery

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/jonathan/fit-analysis/internal/types"
)

// ParseStrict parses text as RFC 8259 JSON into a types.Value.
// The nesting depth is measured before any recursive work so that adversarial
// bracket runs fail fast instead of exhausting the stack. maxDepth <= 0 disables the cap.
func ParseStrict(text string, maxDepth int) (types.Value, error) {
	if maxDepth > 0 {
		if depth := nestingDepth(text); depth > maxDepth {
			return types.Value{}, &ParseError{
				Message: fmt.Sprintf("depth %d exceeds limit %d", depth, maxDepth),
				Cause:   ErrDepthExceeded,
			}
		}
	}
	if strings.TrimSpace(text) == "" {
		return types.Value{}, &ParseError{Message: "empty document", Cause: ErrInvalidSyntax}
	}
	if !gjson.Valid(text) {
		return types.Value{}, &ParseError{Message: "document rejected by strict parser", Cause: ErrInvalidSyntax}
	}
	return fromResult(gjson.Parse(text)), nil
}

// parseStructured is ParseStrict restricted to objects and arrays
func parseStructured(text string, maxDepth int) (types.Value, error) {
	value, err := ParseStrict(text, maxDepth)
	if err != nil {
		return types.Value{}, err
	}
	if kind := value.Kind(); kind != types.KindRecord && kind != types.KindSequence {
		return types.Value{}, &ParseError{Message: "got " + kind.String(), Cause: ErrNotStructured}
	}
	return value, nil
}

func fromResult(r gjson.Result) types.Value {
	switch r.Type {
	case gjson.False:
		return types.Bool(false)
	case gjson.True:
		return types.Bool(true)
	case gjson.Number:
		return types.NumberLiteral(r.Num, r.Raw)
	case gjson.String:
		return types.Text(r.String())
	case gjson.JSON:
		if r.IsArray() {
			elements := r.Array()
			items := make([]types.Value, 0, len(elements))
			for _, element := range elements {
				items = append(items, fromResult(element))
			}
			return types.Sequence(items...)
		}
		record := types.NewRecord()
		r.ForEach(func(key, value gjson.Result) bool {
			record.Set(key.String(), fromResult(value))
			return true
		})
		return types.RecordOf(record)
	default:
		return types.Null()
	}
}

// nestingDepth returns the deepest bracket nesting outside double-quoted strings.
// Unbalanced closers are ignored.
func nestingDepth(text string) int {
	depth, deepest := 0, 0
	inString, escaped := false, false
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
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
			if depth > deepest {
				deepest = depth
			}
		case '}', ']':
			if depth > 0 {
				depth--
			}
		}
	}
	return deepest
}
