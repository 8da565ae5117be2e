package document

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Kind Definition
// --------------------------------------------------------------------------

// Kind identifies which JSON type a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// --------------------------------------------------------------------------
// Value Definition
// --------------------------------------------------------------------------

// Value is the canonical representation of a JSON document node. A Value is
// immutable after construction: the factory functions copy composite inputs
// so a Value never aliases caller-owned memory.
//
// The zero Value is the null value.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	a    []Value
	o    map[string]Value
}

// --------------------------------------------------------------------------
// Value Factory Functions
// --------------------------------------------------------------------------

// Null creates the null Value. Null is reserved for absence: a key or path
// that does not exist decodes to Null, nothing else does.
func Null() Value {
	return Value{kind: KindNull}
}

// Bool creates a boolean Value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Number creates a numeric Value. All numbers are float64, matching JSON
// number semantics.
func Number(n float64) Value {
	return Value{kind: KindNumber, n: n}
}

// String creates a string Value.
func String(s string) Value {
	return Value{kind: KindString, s: s}
}

// Array creates an array Value from the given elements. The elements are
// copied into a fresh slice.
func Array(elems ...Value) Value {
	a := make([]Value, len(elems))
	copy(a, elems)
	return Value{kind: KindArray, a: a}
}

// Object creates an object Value from the given fields. The map is copied.
func Object(fields map[string]Value) Value {
	o := make(map[string]Value, len(fields))
	for k, v := range fields {
		o[k] = v
	}
	return Value{kind: KindObject, o: o}
}

// --------------------------------------------------------------------------
// Accessors
// --------------------------------------------------------------------------

// Kind returns the kind of the Value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the Value is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// BoolVal returns the boolean content, or false for non-bool Values.
func (v Value) BoolVal() bool {
	return v.b
}

// NumberVal returns the numeric content, or 0 for non-number Values.
func (v Value) NumberVal() float64 {
	return v.n
}

// StringVal returns the string content, or "" for non-string Values.
func (v Value) StringVal() string {
	return v.s
}

// ArrayVal returns a copy of the array elements, or nil for non-array Values.
func (v Value) ArrayVal() []Value {
	if v.kind != KindArray {
		return nil
	}
	a := make([]Value, len(v.a))
	copy(a, v.a)
	return a
}

// ObjectVal returns a copy of the object fields, or nil for non-object Values.
func (v Value) ObjectVal() map[string]Value {
	if v.kind != KindObject {
		return nil
	}
	o := make(map[string]Value, len(v.o))
	for k, e := range v.o {
		o[k] = e
	}
	return o
}

// Len returns the element count for arrays, the field count for objects and
// the byte count for strings. It returns 0 for every other kind.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.a)
	case KindObject:
		return len(v.o)
	case KindString:
		return len(v.s)
	default:
		return 0
	}
}

// --------------------------------------------------------------------------
// Comparison and Conversion
// --------------------------------------------------------------------------

// Equal reports deep structural equality between two Values. Numbers compare
// as float64, arrays compare element-wise in order, objects compare by key set
// and per-key value.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindNumber:
		return v.n == other.n
	case KindString:
		return v.s == other.s
	case KindArray:
		if len(v.a) != len(other.a) {
			return false
		}
		for i := range v.a {
			if !v.a[i].Equal(other.a[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.o) != len(other.o) {
			return false
		}
		for k, e := range v.o {
			oe, ok := other.o[k]
			if !ok || !e.Equal(oe) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Native converts the Value into the plain Go shape used by encoding/json:
// nil, bool, float64, string, []any or map[string]any, recursing into
// composites.
func (v Value) Native() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindArray:
		a := make([]any, len(v.a))
		for i, e := range v.a {
			a[i] = e.Native()
		}
		return a
	case KindObject:
		o := make(map[string]any, len(v.o))
		for k, e := range v.o {
			o[k] = e.Native()
		}
		return o
	default:
		return nil
	}
}

// FromNative converts a plain Go value into a Value. It accepts the
// encoding/json shapes (nil, bool, float64, string, []any, map[string]any)
// plus all Go integer and float types.
// It returns the converted Value and an error if the input type is not
// representable as JSON.
func FromNative(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(x), nil
	case float64:
		return Number(x), nil
	case float32:
		return Number(float64(x)), nil
	case int:
		return Number(float64(x)), nil
	case int8:
		return Number(float64(x)), nil
	case int16:
		return Number(float64(x)), nil
	case int32:
		return Number(float64(x)), nil
	case int64:
		return Number(float64(x)), nil
	case uint:
		return Number(float64(x)), nil
	case uint8:
		return Number(float64(x)), nil
	case uint16:
		return Number(float64(x)), nil
	case uint32:
		return Number(float64(x)), nil
	case uint64:
		return Number(float64(x)), nil
	case string:
		return String(x), nil
	case []any:
		elems := make([]Value, len(x))
		for i, e := range x {
			v, err := FromNative(e)
			if err != nil {
				return Null(), err
			}
			elems[i] = v
		}
		return Value{kind: KindArray, a: elems}, nil
	case map[string]any:
		fields := make(map[string]Value, len(x))
		for k, e := range x {
			v, err := FromNative(e)
			if err != nil {
				return Null(), err
			}
			fields[k] = v
		}
		return Value{kind: KindObject, o: fields}, nil
	default:
		return Null(), fmt.Errorf("document: cannot represent %T as a JSON value", raw)
	}
}

// String returns a compact textual rendering of the Value, primarily for
// logging and test failure messages. It is valid JSON for every kind, with
// object keys emitted in sorted order.
func (v Value) String() string {
	var sb strings.Builder
	v.writeTo(&sb)
	return sb.String()
}

func (v Value) writeTo(sb *strings.Builder) {
	switch v.kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		sb.WriteString(strconv.FormatFloat(v.n, 'g', -1, 64))
	case KindString:
		sb.WriteString(strconv.Quote(v.s))
	case KindArray:
		sb.WriteByte('[')
		for i, e := range v.a {
			if i > 0 {
				sb.WriteByte(',')
			}
			e.writeTo(sb)
		}
		sb.WriteByte(']')
	case KindObject:
		keys := make([]string, 0, len(v.o))
		for k := range v.o {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Quote(k))
			sb.WriteByte(':')
			v.o[k].writeTo(sb)
		}
		sb.WriteByte('}')
	}
}
