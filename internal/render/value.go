package render

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Kind is the variant of a Value.
type Kind int

const (
	KindText Kind = iota
	KindList
	KindMap
)

// Value is a template variable: a text scalar, an ordered list of values or
// an ordered string-keyed map of values.
type Value struct {
	kind   Kind
	text   string
	items  []Value
	keys   []string
	fields map[string]Value
}

// Field is one entry of a map value.
type Field struct {
	Key   string
	Value Value
}

// Text returns a scalar value.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Int returns a scalar holding n in decimal.
func Int(n int) Value {
	return Text(strconv.Itoa(n))
}

// List returns a list value.
func List(items ...Value) Value {
	return Value{kind: KindList, items: items}
}

// Strings returns a list of text values.
func Strings(ss []string) Value {
	items := make([]Value, len(ss))
	for i, s := range ss {
		items[i] = Text(s)
	}
	return List(items...)
}

// Map returns a map value. Later duplicate keys replace earlier ones but keep
// the first position.
func Map(fields ...Field) Value {
	v := Value{kind: KindMap, fields: make(map[string]Value, len(fields))}
	for _, f := range fields {
		if _, ok := v.fields[f.Key]; !ok {
			v.keys = append(v.keys, f.Key)
		}
		v.fields[f.Key] = f.Value
	}
	return v
}

// Kind reports the variant.
func (v Value) Kind() Kind { return v.kind }

// Items returns the elements of a list value.
func (v Value) Items() []Value { return v.items }

// Keys returns the keys of a map value in insertion order.
func (v Value) Keys() []string { return v.keys }

// Get returns a map field.
func (v Value) Get(key string) (Value, bool) {
	f, ok := v.fields[key]
	return f, ok
}

// Len is the rune count of text or the element count of a list or map.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.items)
	case KindMap:
		return len(v.keys)
	default:
		return len([]rune(v.text))
	}
}

// Truthy is false for empty text, "0", "false" and empty lists or maps.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindList, KindMap:
		return v.Len() > 0
	default:
		return v.text != "" && v.text != "0" && v.text != "false"
	}
}

// String returns text as is and lists or maps as JSON.
func (v Value) String() string {
	if v.kind == KindText {
		return v.text
	}
	data, err := v.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(data)
}

// MarshalJSON encodes the value, keeping map key order.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindList:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			data, err := item.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(data)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case KindMap:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range v.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := jsonString(k)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			data, err := v.fields[k].MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(data)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return jsonString(v.text)
	}
}

// jsonString encodes s without HTML escaping, so markup in page content
// stays readable when a list or map is interpolated.
func jsonString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Vars is the variable bag a template renders against.
type Vars map[string]Value

// Lookup returns the named value, or empty text when it is unknown.
func (vs Vars) Lookup(name string) Value {
	if v, ok := vs[name]; ok {
		return v
	}
	return Text("")
}
