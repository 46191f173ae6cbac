package model

import (
	"cmp"
	"fmt"
	"strconv"
)

// ValueType is the declared value type of a feature.
type ValueType uint8

const (
	// ValueStr marks string-valued features.
	ValueStr ValueType = iota
	// ValueInt marks integer-valued features.
	ValueInt
)

// String returns the text-format spelling ("str" or "int").
func (t ValueType) String() string {
	switch t {
	case ValueInt:
		return "int"
	default:
		return "str"
	}
}

// ParseValueType parses "str" or "int".
func ParseValueType(s string) (ValueType, error) {
	switch s {
	case "str", "":
		return ValueStr, nil
	case "int":
		return ValueInt, nil
	default:
		return ValueStr, fmt.Errorf("unknown value type %q", s)
	}
}

// Value is a string or integer feature value.
//
// The zero Value is the empty string.
type Value struct {
	typ ValueType
	s   string
	i   int64
}

// StrValue returns a string Value.
func StrValue(s string) Value { return Value{typ: ValueStr, s: s} }

// IntValue returns an integer Value.
func IntValue(i int64) Value { return Value{typ: ValueInt, i: i} }

// Type returns the value's type.
func (v Value) Type() ValueType { return v.typ }

// IsInt reports whether v holds an integer.
func (v Value) IsInt() bool { return v.typ == ValueInt }

// Str returns the string content; integers are formatted in decimal.
func (v Value) Str() string {
	if v.typ == ValueInt {
		return strconv.FormatInt(v.i, 10)
	}
	return v.s
}

// Int returns the integer content. For string values it attempts a decimal
// parse and reports whether it succeeded.
func (v Value) Int() (int64, bool) {
	if v.typ == ValueInt {
		return v.i, true
	}
	i, err := strconv.ParseInt(v.s, 10, 64)
	if err != nil {
		return 0, false
	}
	return i, true
}

// String implements fmt.Stringer.
func (v Value) String() string { return v.Str() }

// Equal reports whether both values have the same type and content.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	if v.typ == ValueInt {
		return v.i == o.i
	}
	return v.s == o.s
}

// Compare orders integers before strings, integers numerically and strings
// lexicographically.
func (v Value) Compare(o Value) int {
	if v.typ != o.typ {
		if v.typ == ValueInt {
			return -1
		}
		return 1
	}
	if v.typ == ValueInt {
		return cmp.Compare(v.i, o.i)
	}
	return cmp.Compare(v.s, o.s)
}
