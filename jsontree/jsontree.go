// Package jsontree wraps a decoded JSON document in a navigable value so
// deeply nested marketplace payloads can be walked without type assertions
// at every step. Missing paths yield an absent Value instead of a panic;
// numeric precision is preserved via json.Number.
package jsontree

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

// Value is one node of a decoded JSON document. The zero Value is absent.
type Value struct {
	data    any
	present bool
}

// Parse decodes raw JSON into a tree rooted at the returned Value. The
// input must hold exactly one value; trailing content is an error.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Value{}, err
	}
	if dec.More() {
		return Value{}, errors.New("trailing data after top-level value")
	}
	return Value{data: v, present: true}, nil
}

// Exists reports whether this node is present in the document. A JSON null
// is present; a missing key or out-of-range index is not.
func (v Value) Exists() bool {
	return v.present
}

// Get walks nested objects by key. Any missing key, or a step through a
// non-object, yields an absent Value.
func (v Value) Get(keys ...string) Value {
	cur := v
	for _, key := range keys {
		if !cur.present {
			return Value{}
		}
		obj, ok := cur.data.(map[string]any)
		if !ok {
			return Value{}
		}
		inner, ok := obj[key]
		if !ok {
			return Value{}
		}
		cur = Value{data: inner, present: true}
	}
	return cur
}

// Index returns the i-th element of an array node, absent when the node is
// not an array or i is out of range.
func (v Value) Index(i int) Value {
	if !v.present {
		return Value{}
	}
	arr, ok := v.data.([]any)
	if !ok || i < 0 || i >= len(arr) {
		return Value{}
	}
	return Value{data: arr[i], present: true}
}

// Len returns the element count of an array node or the key count of an
// object node, zero for anything else.
func (v Value) Len() int {
	if !v.present {
		return 0
	}
	switch t := v.data.(type) {
	case []any:
		return len(t)
	case map[string]any:
		return len(t)
	}
	return 0
}

// Each calls fn for every element of an array node, in document order.
func (v Value) Each(fn func(Value)) {
	if !v.present {
		return
	}
	arr, ok := v.data.([]any)
	if !ok {
		return
	}
	for _, el := range arr {
		fn(Value{data: el, present: true})
	}
}

// Str returns the node's string value, empty when the node is absent or not
// a string.
func (v Value) Str() string {
	if !v.present {
		return ""
	}
	s, _ := v.data.(string)
	return s
}

// Float returns the node's numeric value as a float64, zero when the node
// is absent or not a number.
func (v Value) Float() float64 {
	if !v.present {
		return 0
	}
	switch t := v.data.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		return f
	case float64:
		return t
	}
	return 0
}

// Int returns the node's numeric value as an int64, truncating fractional
// parts, zero when the node is absent or not a number.
func (v Value) Int() int64 {
	if !v.present {
		return 0
	}
	switch t := v.data.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return int64(f)
		}
	case float64:
		return int64(t)
	}
	return 0
}

// Bool returns the node's boolean value, false when absent or not a bool.
func (v Value) Bool() bool {
	if !v.present {
		return false
	}
	b, _ := v.data.(bool)
	return b
}

// Keys returns the key set of an object node, nil for anything else. Order
// is unspecified.
func (v Value) Keys() []string {
	if !v.present {
		return nil
	}
	obj, ok := v.data.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	return keys
}

// MarshalJSON re-encodes the subtree rooted at this node. Absent nodes
// encode as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.present {
		return []byte("null"), nil
	}
	return json.Marshal(v.data)
}

// String implements fmt.Stringer for debug logging.
func (v Value) String() string {
	if !v.present {
		return "<absent>"
	}
	switch t := v.data.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return "null"
	}
	b, err := json.Marshal(v.data)
	if err != nil {
		return "<unencodable>"
	}
	return string(b)
}
