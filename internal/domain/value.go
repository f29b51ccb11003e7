package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ValueKind discriminates the scalar kinds a customer attribute can hold.
type ValueKind int

const (
	KindString ValueKind = iota + 1
	KindNumber
	KindBool
)

// Value is a scalar attribute value. The zero Value has no kind and equals
// nothing, including another zero Value.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
}

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// NumberValue wraps a number. Integers are carried as float64.
func NumberValue(n float64) Value { return Value{kind: KindNumber, num: n} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind returns the value's kind, 0 for the zero Value.
func (v Value) Kind() ValueKind { return v.kind }

// Str returns the string payload.
func (v Value) Str() string { return v.str }

// Num returns the numeric payload.
func (v Value) Num() float64 { return v.num }

// Equal is strict: values of different kinds are never equal.
func (v Value) Equal(o Value) bool {
	if v.kind == 0 || v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	}
	return false
}

// Compare orders two values of the same kind. ok is false for mixed kinds
// and for booleans, which have no ordering.
func (v Value) Compare(o Value) (cmp int, ok bool) {
	if v.kind == 0 || v.kind != o.kind {
		return 0, false
	}
	switch v.kind {
	case KindNumber:
		switch {
		case v.num < o.num:
			return -1, true
		case v.num > o.num:
			return 1, true
		}
		return 0, true
	case KindString:
		return strings.Compare(v.str, o.str), true
	}
	return 0, false
}

// Interface returns the underlying Go value (string, float64, bool or nil).
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	}
	return nil
}

func (v Value) String() string {
	if v.kind == 0 {
		return "<none>"
	}
	return fmt.Sprintf("%v", v.Interface())
}

// MarshalJSON encodes the scalar, or null for the zero Value.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// ValueFromJSON converts a decoded JSON scalar. Objects, arrays and null are
// not scalars and report ok=false.
func ValueFromJSON(x interface{}) (Value, bool) {
	switch t := x.(type) {
	case string:
		return StringValue(t), true
	case float64:
		return NumberValue(t), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, false
		}
		return NumberValue(f), true
	case bool:
		return BoolValue(t), true
	case int:
		return NumberValue(float64(t)), true
	}
	return Value{}, false
}
