package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind is the type tag of a Value.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is one setting value: a string, an integer, a boolean or a list of
// strings. The zero Value is the empty string.
type Value struct {
	kind Kind
	s    string
	n    int64
	b    bool
	list []string
}

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Int returns an integer value.
func Int(n int64) Value { return Value{kind: KindInt, n: n} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// List returns a list value. The items are copied.
func List(items ...string) Value {
	return Value{kind: KindList, list: append([]string{}, items...)}
}

// Kind returns the value's type tag.
func (v Value) Kind() Kind { return v.kind }

// String renders the value as text. Booleans render as "1" or "0" and
// lists are comma-joined.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.n, 10)
	case KindBool:
		if v.b {
			return "1"
		}
		return "0"
	case KindList:
		return strings.Join(v.list, ",")
	default:
		return v.s
	}
}

// Int returns the value as an integer. Strings that do not parse are 0.
func (v Value) Int() int64 {
	switch v.kind {
	case KindInt:
		return v.n
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	case KindString:
		n, _ := strconv.ParseInt(strings.TrimSpace(v.s), 10, 64)
		return n
	default:
		return int64(len(v.list))
	}
}

// Bool reports the value's truthiness: non-zero integers, true, non-empty
// lists, and strings other than "", "0" and "false".
func (v Value) Bool() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.n != 0
	case KindList:
		return len(v.list) > 0
	default:
		return v.s != "" && v.s != "0" && v.s != "false"
	}
}

// List returns the value as a list. A non-empty scalar becomes a single item.
func (v Value) List() []string {
	if v.kind == KindList {
		return append([]string{}, v.list...)
	}
	if s := v.String(); s != "" {
		return []string{s}
	}
	return nil
}

// IsZero reports whether v is empty for its kind.
func (v Value) IsZero() bool {
	switch v.kind {
	case KindInt:
		return v.n == 0
	case KindBool:
		return !v.b
	case KindList:
		return len(v.list) == 0
	default:
		return v.s == ""
	}
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != o.list[i] {
				return false
			}
		}
		return true
	default:
		return v.s == o.s && v.n == o.n && v.b == o.b
	}
}

// Any returns the value as a plain Go value: string, int64, bool or []string.
func (v Value) Any() any {
	switch v.kind {
	case KindInt:
		return v.n
	case KindBool:
		return v.b
	case KindList:
		return v.List()
	default:
		return v.s
	}
}

// FromAny converts a plain Go value into a Value. Unsupported types are
// rendered with fmt.
func FromAny(x any) Value {
	switch t := x.(type) {
	case Value:
		return t
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case int32:
		return Int(int64(t))
	case float64:
		if t == float64(int64(t)) {
			return Int(int64(t))
		}
		return String(strconv.FormatFloat(t, 'f', -1, 64))
	case []string:
		return List(t...)
	case []any:
		items := make([]string, 0, len(t))
		for _, it := range t {
			items = append(items, FromAny(it).String())
		}
		return List(items...)
	case nil:
		return Value{}
	default:
		return String(fmt.Sprint(t))
	}
}

// MarshalJSON stores strings as strings, integers as numbers, booleans as
// 0/1 and lists as arrays of strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInt:
		return json.Marshal(v.n)
	case KindBool:
		if v.b {
			return []byte("1"), nil
		}
		return []byte("0"), nil
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	default:
		return json.Marshal(v.s)
	}
}

// UnmarshalJSON decodes without a schema: numbers become KindInt, JSON
// booleans KindBool, arrays KindList, everything else KindString. Use
// Schema.Coerce to restore a declared kind.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}

	var x any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&x); err != nil {
		return err
	}

	switch t := x.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			*v = Int(n)
		} else {
			*v = String(t.String())
		}
	case bool:
		*v = Bool(t)
	case string:
		*v = String(t)
	case []any:
		items := make([]string, 0, len(t))
		for _, it := range t {
			if n, ok := it.(json.Number); ok {
				items = append(items, n.String())
				continue
			}
			items = append(items, FromAny(it).String())
		}
		*v = List(items...)
	default:
		*v = String(string(data))
	}
	return nil
}
