// Package value provides the JSON-like tree value the mapping engine operates on.
package value

import (
	"math"
	"strconv"

	"gopkg.in/inf.v0"
)

// Kind identifies which variant a Value holds.
type Kind uint8

// Value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is an immutable JSON-like tree value.
// The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	num  Number
	s    string
	arr  []Value
	obj  *Object
}

// Null returns the Null value.
func Null() Value {
	return Value{}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// String returns a string value.
func String(s string) Value {
	return Value{kind: KindString, s: s}
}

// Int returns an integral number value.
func Int(i int64) Value {
	return Value{kind: KindNumber, num: IntNumber(i)}
}

// Float returns a number value for f. NaN and infinities have no JSON
// representation and produce Null.
func Float(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null()
	}
	return Value{kind: KindNumber, num: FloatNumber(f)}
}

// Decimal returns an exact decimal number value. A nil d produces Null.
func Decimal(d *inf.Dec) Value {
	if d == nil {
		return Null()
	}
	return Value{kind: KindNumber, num: DecNumber(d)}
}

// Num wraps an existing Number.
func Num(n Number) Value {
	if n.lit == "" {
		return Null()
	}
	return Value{kind: KindNumber, num: n}
}

// Array returns an array value holding a copy of items.
func Array(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindArray, arr: cp}
}

// FromObject wraps an Object. A nil object produces Null.
// The object must not be modified afterwards.
func FromObject(o *Object) Value {
	if o == nil {
		return Null()
	}
	return Value{kind: KindObject, obj: o}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is Null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// IsScalar reports whether v is a boolean, number or string.
func (v Value) IsScalar() bool {
	return v.kind == KindBool || v.kind == KindNumber || v.kind == KindString
}

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsNumber returns the number held by v.
func (v Value) AsNumber() (Number, bool) {
	return v.num, v.kind == KindNumber
}

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

// AsArray returns a copy of the elements held by v.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	cp := make([]Value, len(v.arr))
	copy(cp, v.arr)
	return cp, true
}

// AsObject returns the object held by v. Callers must treat it as read-only.
func (v Value) AsObject() (*Object, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.obj, true
}

// Len returns the number of elements of an array, entries of an object,
// bytes of a string, and zero for everything else.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return v.obj.Len()
	case KindString:
		return len(v.s)
	default:
		return 0
	}
}

// Index returns the i-th array element.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return Null(), false
	}
	return v.arr[i], true
}

// Field returns the member of an object value.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindObject {
		return Null(), false
	}
	return v.obj.Get(key)
}

// Equal reports whether v and other are structurally equal.
// Numbers compare by numeric value, objects compare ignoring key order.
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
		return v.num.Equal(other.num)
	case KindString:
		return v.s == other.s
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		return v.obj.Equal(other.obj)
	default:
		return false
	}
}
