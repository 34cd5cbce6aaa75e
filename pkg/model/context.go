package model

import (
	"encoding/json"
	"fmt"
)

// Kind discriminates the value shapes a Context entry may carry.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindMap
)

// Value is one context entry: a string, a number, a bool, or a nested map.
// The closed set keeps serialization for transport total, instead of
// accepting arbitrary interface{} payloads.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	m    Context
}

// String wraps a string value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number wraps a numeric value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Int wraps an integer value.
func Int(i int) Value {
	return Value{kind: KindNumber, num: float64(i)}
}

// Bool wraps a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Map wraps a nested context.
func Map(c Context) Value {
	return Value{kind: KindMap, m: c}
}

// Kind returns which shape the value holds.
func (v Value) Kind() Kind {
	return v.kind
}

// Text returns the string form of the value regardless of kind.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return fmt.Sprintf("%g", v.num)
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindMap:
		data, _ := json.Marshal(v.m)
		return string(data)
	default:
		return ""
	}
}

// Num returns the numeric form, or 0 for non-numeric kinds.
func (v Value) Num() float64 {
	if v.kind == KindNumber {
		return v.num
	}
	return 0
}

// Nested returns the nested map, or nil for other kinds.
func (v Value) Nested() Context {
	if v.kind == KindMap {
		return v.m
	}
	return nil
}

// MarshalJSON serializes the underlying shape directly.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindMap:
		return json.Marshal(v.m)
	default:
		return json.Marshal(nil)
	}
}

// UnmarshalJSON decodes any JSON value into the closest permitted shape.
// Shapes outside the union (arrays, null) decode to their string form so
// decoding is total.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = coerce(raw)
	return nil
}

func coerce(raw any) Value {
	switch t := raw.(type) {
	case string:
		return String(t)
	case float64:
		return Number(t)
	case bool:
		return Bool(t)
	case map[string]any:
		nested := make(Context, len(t))
		for k, val := range t {
			nested[k] = coerce(val)
		}
		return Map(nested)
	default:
		return String(fmt.Sprintf("%v", t))
	}
}

// Context is a closed map of structured metadata attached to events and
// reports.
type Context map[string]Value

// Clone returns a shallow copy; nested maps are shared but values are
// immutable so sharing is safe.
func (c Context) Clone() Context {
	if c == nil {
		return nil
	}
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// With returns a copy of c with key set, allocating if c is nil.
func (c Context) With(key string, v Value) Context {
	out := c.Clone()
	if out == nil {
		out = make(Context, 1)
	}
	out[key] = v
	return out
}
