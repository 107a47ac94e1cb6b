// Package atpjson models the one dynamic-type situation in this module: the
// untyped JSON payload used to hold a repository record whose schema isn't
// known ahead of time. It is a plain closed variant, never a pointer
// graph.
package atpjson

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindDouble
	KindString
	KindArray
	KindObject
)

// Value is a recursive JSON value: Null | Bool | Int | Double | String |
// Array([]Value) | Object(map[string]Value).
type Value struct {
	kind Kind

	b   bool
	i   int64
	d   float64
	s   string
	arr []Value
	obj map[string]Value
}

func Null() Value               { return Value{kind: KindNull} }
func Bool(b bool) Value         { return Value{kind: KindBool, b: b} }
func Int(i int64) Value         { return Value{kind: KindInt, i: i} }
func Double(d float64) Value    { return Value{kind: KindDouble, d: d} }
func String(s string) Value     { return Value{kind: KindString, s: s} }
func Array(v []Value) Value     { return Value{kind: KindArray, arr: v} }
func Object(m map[string]Value) Value {
	return Value{kind: KindObject, obj: m}
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsBool() (bool, bool)       { return v.b, v.kind == KindBool }
func (v Value) AsInt() (int64, bool)       { return v.i, v.kind == KindInt }
func (v Value) AsDouble() (float64, bool)  { return v.d, v.kind == KindDouble }
func (v Value) AsString() (string, bool)   { return v.s, v.kind == KindString }
func (v Value) AsArray() ([]Value, bool)   { return v.arr, v.kind == KindArray }
func (v Value) AsObject() (map[string]Value, bool) {
	return v.obj, v.kind == KindObject
}

// Get returns the value at key when v is an Object, else Null.
func (v Value) Get(key string) Value {
	if v.kind != KindObject {
		return Null()
	}
	if val, ok := v.obj[key]; ok {
		return val
	}
	return Null()
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindInt:
		return json.Marshal(v.i)
	case KindDouble:
		return json.Marshal(v.d)
	case KindString:
		return json.Marshal(v.s)
	case KindArray:
		return json.Marshal(v.arr)
	case KindObject:
		// Stable key order for deterministic round-trips in tests.
		keys := make([]string, 0, len(v.obj))
		for k := range v.obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf := []byte("{")
		for idx, k := range keys {
			if idx > 0 {
				buf = append(buf, ',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			vb, err := v.obj[k].MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf = append(buf, kb...)
			buf = append(buf, ':')
			buf = append(buf, vb...)
		}
		buf = append(buf, '}')
		return buf, nil
	default:
		return nil, fmt.Errorf("atpjson: unknown kind %d", v.kind)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = fromInterface(raw)
	return nil
}

func fromInterface(raw interface{}) Value {
	switch x := raw.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(x)
	case float64:
		if x == float64(int64(x)) {
			return Int(int64(x))
		}
		return Double(x)
	case string:
		return String(x)
	case []interface{}:
		out := make([]Value, len(x))
		for i, item := range x {
			out[i] = fromInterface(item)
		}
		return Array(out)
	case map[string]interface{}:
		out := make(map[string]Value, len(x))
		for k, item := range x {
			out[k] = fromInterface(item)
		}
		return Object(out)
	default:
		return Null()
	}
}
