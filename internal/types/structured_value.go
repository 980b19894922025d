// Package types provides type definitions for structured data used throughout the fit-analysis system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds
type Kind int

const (
	// KindNull is the JSON null literal
	KindNull Kind = iota
	// KindBool is true or false
	KindBool
	// KindNumber is any JSON number
	KindNumber
	// KindText is a string
	KindText
	// KindSequence is an ordered list of values
	KindSequence
	// KindRecord is an ordered mapping of text keys to values
	KindRecord
)

// String returns the lower-case name of the kind
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindSequence:
		return "sequence"
	case KindRecord:
		return "record"
	default:
		return "unknown"
	}
}

// Value is the provider-agnostic result of recovering structured data from LLM output.
// The zero Value is Null. Values are immutable once built.
type Value struct {
	kind    Kind
	boolean bool
	number  float64
	literal string // source text of a number, or the text payload
	items   []Value
	record  *Record
}

// Null returns the null value
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean
func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// Number wraps a float. Non-finite inputs become null since they have no JSON form.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null()
	}
	return Value{kind: KindNumber, number: f, literal: strconv.FormatFloat(f, 'f', -1, 64)}
}

// NumberLiteral wraps a number together with the literal it was parsed from
func NumberLiteral(f float64, literal string) Value {
	v := Number(f)
	if v.kind == KindNumber && literal != "" {
		v.literal = literal
	}
	return v
}

// Text wraps a string
func Text(s string) Value { return Value{kind: KindText, literal: s} }

// Sequence wraps a list of values
func Sequence(items ...Value) Value {
	copied := make([]Value, len(items))
	copy(copied, items)
	return Value{kind: KindSequence, items: copied}
}

// RecordOf wraps a record. A nil record becomes an empty one.
// The Value takes ownership of r: it is sealed and any later Set panics.
func RecordOf(r *Record) Value {
	if r == nil {
		r = NewRecord()
	}
	r.sealed = true
	return Value{kind: KindRecord, record: r}
}

// Kind reports which variant v holds
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.boolean, true
}

// AsNumber returns the numeric payload
func (v Value) AsNumber() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.number, true
}

// AsText returns the string payload
func (v Value) AsText() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.literal, true
}

// AsSequence returns the list payload. The slice must not be modified.
func (v Value) AsSequence() ([]Value, bool) {
	if v.kind != KindSequence {
		return nil, false
	}
	return v.items, true
}

// AsRecord returns the record payload. The record is sealed and read-only.
func (v Value) AsRecord() (*Record, bool) {
	if v.kind != KindRecord {
		return nil, false
	}
	return v.record, true
}

// Lookup descends through nested records following path.
// It returns false as soon as a segment is missing or a non-record is reached.
func (v Value) Lookup(path ...string) (Value, bool) {
	current := v
	for _, key := range path {
		rec, ok := current.AsRecord()
		if !ok {
			return Value{}, false
		}
		current, ok = rec.Get(key)
		if !ok {
			return Value{}, false
		}
	}
	return current, true
}

// falsyWords are text values models use to mean "no"
var falsyWords = map[string]bool{
	"false": true,
	"no":    true,
	"none":  true,
	"n/a":   true,
	"0":     true,
}

// Truthy reports whether v should count as a positive marker (e.g. skill -> matched).
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.boolean
	case KindNumber:
		return v.number != 0
	case KindText:
		trimmed := strings.ToLower(strings.TrimSpace(v.literal))
		return trimmed != "" && !falsyWords[trimmed]
	case KindSequence:
		return len(v.items) > 0
	case KindRecord:
		return v.record.Len() > 0
	default:
		return false
	}
}

// ScalarText renders a scalar as text. Containers and null report false.
func (v Value) ScalarText() (string, bool) {
	switch v.kind {
	case KindText:
		return v.literal, true
	case KindNumber:
		return v.literal, true
	case KindBool:
		return strconv.FormatBool(v.boolean), true
	default:
		return "", false
	}
}

// MarshalJSON renders v as compact JSON with record keys in insertion order
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.boolean))
	case KindNumber:
		buf.WriteString(strconv.FormatFloat(v.number, 'g', -1, 64))
	case KindText:
		encoded, err := json.Marshal(v.literal)
		if err != nil {
			return err
		}
		buf.Write(encoded)
	case KindSequence:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindRecord:
		buf.WriteByte('{')
		for i, key := range v.record.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			encoded, err := json.Marshal(key)
			if err != nil {
				return err
			}
			buf.Write(encoded)
			buf.WriteByte(':')
			if err := v.record.values[key].writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// Equal reports deep structural equality. Record key order is ignored.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.boolean == b.boolean
	case KindNumber:
		return a.number == b.number
	case KindText:
		return a.literal == b.literal
	case KindSequence:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case KindRecord:
		if a.record.Len() != b.record.Len() {
			return false
		}
		for _, key := range a.record.keys {
			other, ok := b.record.Get(key)
			if !ok || !Equal(a.record.values[key], other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Record is an ordered mapping from unique text keys to values.
// A Record is built with Set by a single owner and becomes read-only once
// wrapped by RecordOf.
type Record struct {
	keys   []string
	values map[string]Value
	sealed bool
}

// NewRecord creates an empty record
func NewRecord() *Record {
	return &Record{values: make(map[string]Value)}
}

// Set stores value under key. An existing key keeps its position and takes the new value.
// Set panics on a record that already belongs to a Value.
func (r *Record) Set(key string, value Value) {
	if r.sealed {
		panic("types: Set on a record owned by a Value")
	}
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value stored under key
func (r *Record) Get(key string) (Value, bool) {
	if r == nil {
		return Value{}, false
	}
	v, ok := r.values[key]
	return v, ok
}

// Sealed reports whether r belongs to a Value and can no longer be modified
func (r *Record) Sealed() bool {
	return r != nil && r.sealed
}

// Has reports whether key is present
func (r *Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Keys returns the keys in insertion order
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of keys
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}
