package scouting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ValueKind tags the shape held by a Value.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueNumber
	ValueBool
	ValueText
	ValueList
)

// Value is one entry of a record's attribute map. Stored attributes are
// untyped, so a Value only says what shape was written, not what the field
// is supposed to be.
type Value struct {
	kind ValueKind
	num  float64
	b    bool
	text string
	list []string
}

func Number(f float64) Value { return Value{kind: ValueNumber, num: f} }

func Bool(b bool) Value { return Value{kind: ValueBool, b: b} }

func Text(s string) Value { return Value{kind: ValueText, text: s} }

func StringList(items ...string) Value {
	list := make([]string, len(items))
	copy(list, items)
	return Value{kind: ValueList, list: list}
}

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsNull() bool { return v.kind == ValueNull }

// Float coerces the value to a number. Bools count as 1/0, strings are parsed
// after trimming; empty strings, lists and nulls do not coerce.
func (v Value) Float() (float64, bool) {
	var f float64
	switch v.kind {
	case ValueNumber:
		f = v.num
	case ValueBool:
		if v.b {
			f = 1
		}
	case ValueText:
		s := strings.TrimSpace(v.text)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Options returns the categorical values carried by v: the items of a list,
// or a single non-empty string.
func (v Value) Options() []string {
	switch v.kind {
	case ValueList:
		out := make([]string, 0, len(v.list))
		for _, item := range v.list {
			if item != "" {
				out = append(out, item)
			}
		}
		return out
	case ValueText:
		if v.text != "" {
			return []string{v.text}
		}
	}
	return nil
}

// Str returns the text of a Text value and "" otherwise.
func (v Value) Str() string {
	if v.kind == ValueText {
		return v.text
	}
	return ""
}

func (v Value) Truthy() bool {
	switch v.kind {
	case ValueBool:
		return v.b
	case ValueNumber:
		return v.num != 0
	case ValueText:
		return v.text != ""
	case ValueList:
		return len(v.list) > 0
	}
	return false
}

// Interface converts v back to a plain Go value suitable for JSON or
// Firestore. Integral numbers come back as int64.
func (v Value) Interface() interface{} {
	switch v.kind {
	case ValueNumber:
		if v.num == math.Trunc(v.num) && math.Abs(v.num) < 1<<53 {
			return int64(v.num)
		}
		return v.num
	case ValueBool:
		return v.b
	case ValueText:
		return v.text
	case ValueList:
		out := make([]interface{}, len(v.list))
		for i, item := range v.list {
			out[i] = item
		}
		return out
	}
	return nil
}

func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case ValueNumber:
		return v.num == o.num
	case ValueBool:
		return v.b == o.b
	case ValueText:
		return v.text == o.text
	case ValueList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != o.list[i] {
				return false
			}
		}
	}
	return true
}

func (v Value) String() string {
	b, _ := json.Marshal(v.Interface())
	return string(b)
}

// ValueOf wraps a decoded JSON or Firestore value.
func ValueOf(x interface{}) Value {
	switch t := x.(type) {
	case nil:
		return Value{}
	case Value:
		return t
	case bool:
		return Bool(t)
	case string:
		return Text(t)
	case int:
		return Number(float64(t))
	case int32:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case float32:
		return Number(float64(t))
	case float64:
		return Number(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Text(t.String())
		}
		return Number(f)
	case []string:
		return StringList(t...)
	case []interface{}:
		items := make([]string, 0, len(t))
		for _, item := range t {
			switch it := item.(type) {
			case nil:
				continue
			case string:
				items = append(items, it)
			default:
				items = append(items, fmt.Sprint(it))
			}
		}
		return Value{kind: ValueList, list: items}
	}
	return Value{}
}

func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v.Interface()); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = ValueOf(raw)
	return nil
}

// Attributes maps a field label to the value submitted for it.
type Attributes map[string]Value

// AttributesOf converts a decoded map, as returned by the store.
func AttributesOf(raw map[string]interface{}) Attributes {
	attrs := make(Attributes, len(raw))
	for k, v := range raw {
		attrs[k] = ValueOf(v)
	}
	return attrs
}

func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		if v.kind == ValueList {
			v = StringList(v.list...)
		}
		out[k] = v
	}
	return out
}

// Keys returns the attribute labels in lexicographic order.
func (a Attributes) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Plain converts the attributes to a map of plain Go values.
func (a Attributes) Plain() map[string]interface{} {
	out := make(map[string]interface{}, len(a))
	for k, v := range a {
		out[k] = v.Interface()
	}
	return out
}
