package models

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// AnswerValue holds a quiz answer that may be a string, a number, a boolean,
// or a structured object/array, preserving the original JSON form. Primitive
// values compare strictly (type and value), composites structurally.
type AnswerValue struct {
	raw json.RawMessage
}

// NewAnswerValue builds an AnswerValue from any JSON-marshalable Go value.
func NewAnswerValue(value interface{}) AnswerValue {
	raw, err := json.Marshal(value)
	if err != nil {
		return AnswerValue{}
	}
	return AnswerValue{raw: raw}
}

// MarshalJSON implements json.Marshaler.
func (v AnswerValue) MarshalJSON() ([]byte, error) {
	if len(v.raw) == 0 {
		return []byte("null"), nil
	}
	return v.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	v.raw = append(v.raw[:0], data...)
	return nil
}

// IsNull reports whether the value is absent or JSON null.
func (v AnswerValue) IsNull() bool {
	return len(v.raw) == 0 || bytes.Equal(bytes.TrimSpace(v.raw), []byte("null"))
}

// Equal compares two answer values. Strings, numbers and booleans must match
// in both type and value; objects and arrays are compared structurally.
func (v AnswerValue) Equal(other AnswerValue) bool {
	if v.IsNull() || other.IsNull() {
		return false
	}

	left, ok := v.decode()
	if !ok {
		return false
	}
	right, ok := other.decode()
	if !ok {
		return false
	}

	switch l := left.(type) {
	case string:
		r, ok := right.(string)
		return ok && l == r
	case float64:
		r, ok := right.(float64)
		return ok && l == r
	case bool:
		r, ok := right.(bool)
		return ok && l == r
	default:
		return reflect.DeepEqual(left, right)
	}
}

func (v AnswerValue) decode() (interface{}, bool) {
	var value interface{}
	if err := json.Unmarshal(v.raw, &value); err != nil {
		return nil, false
	}
	return value, true
}

// String renders the value for logs and certificate metadata.
func (v AnswerValue) String() string {
	if v.IsNull() {
		return ""
	}
	return string(v.raw)
}
