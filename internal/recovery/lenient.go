package recovery

import (
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// lenientRepair hands the text to a general-purpose JSON repairer as a last
// resort. Only text that already starts with a structure is offered so prose
// is never turned into a quoted string and reported as recovered.
func lenientRepair(text string) (repaired string, err error) {
	trimmed := strings.TrimSpace(text)
	if !startsStructure(trimmed) {
		return text, nil
	}
	defer func() {
		if r := recover(); r != nil {
			repaired, err = text, fmt.Errorf("jsonrepair panicked: %v", r)
		}
	}()
	out, err := jsonrepair.JSONRepair(trimmed)
	if err != nil {
		return text, fmt.Errorf("jsonrepair: %w", err)
	}
	return out, nil
}
