package rules

import (
	"math"
	"strconv"
	"strings"

	"github.com/vyrodovalexey/avamap/internal/value"
)

// Param is the parameter value an operator reads from a rule.
//
// A parameter comes in one of two shapes. The shorthand form is any
// non-object value and carries the operator's primary setting. The full form
// is an object with named sub-fields, each with its own default. An absent or
// null parameter means the operator's defaults apply.
type Param struct {
	v       value.Value
	present bool
}

// NewParam wraps v as a parameter. Null is treated as absent.
func NewParam(v value.Value) Param {
	return Param{v: v, present: !v.IsNull()}
}

// IsPresent reports whether a parameter was configured.
func (p Param) IsPresent() bool {
	return p.present
}

// Value returns the raw parameter value.
func (p Param) Value() value.Value {
	return p.v
}

// IsFull reports whether the parameter uses the full (object) form.
func (p Param) IsFull() bool {
	return p.v.Kind() == value.KindObject
}

// Shorthand returns the parameter when it uses the shorthand form.
func (p Param) Shorthand() (value.Value, bool) {
	if !p.present || p.IsFull() {
		return value.Null(), false
	}
	return p.v, true
}

// Field returns the first non-null sub-field among names. It only looks at
// full-form parameters.
func (p Param) Field(names ...string) (value.Value, bool) {
	obj, ok := p.v.AsObject()
	if !ok {
		return value.Null(), false
	}
	for _, name := range names {
		if v, ok := obj.Get(name); ok && !v.IsNull() {
			return v, true
		}
	}
	return value.Null(), false
}

// Primary returns the shorthand value, or the first present sub-field among
// names for a full-form parameter.
func (p Param) Primary(names ...string) (value.Value, bool) {
	if v, ok := p.Shorthand(); ok {
		return v, true
	}
	return p.Field(names...)
}

// PrimaryString is Primary rendered as text, or def when absent.
func (p Param) PrimaryString(def string, names ...string) string {
	v, ok := p.Primary(names...)
	if !ok {
		return def
	}
	return value.Text(v)
}

// FieldString is Field rendered as text, or def when absent.
func (p Param) FieldString(def string, names ...string) string {
	v, ok := p.Field(names...)
	if !ok {
		return def
	}
	return value.Text(v)
}

// FieldInt returns the first present sub-field among names as an int.
// Numeric strings are accepted; fractional numbers are truncated.
func (p Param) FieldInt(names ...string) (int, bool) {
	v, ok := p.Field(names...)
	if !ok {
		return 0, false
	}
	return AsInt(v)
}

// FieldBool returns the first present sub-field among names as a bool, or def.
func (p Param) FieldBool(def bool, names ...string) bool {
	v, ok := p.Field(names...)
	if !ok {
		return def
	}
	b, ok := AsBool(v)
	if !ok {
		return def
	}
	return b
}

// FieldStrings returns a sub-field as a list. Strings are split on commas
// and trimmed; arrays contribute the text of each element.
func (p Param) FieldStrings(names ...string) ([]string, bool) {
	v, ok := p.Field(names...)
	if !ok {
		return nil, false
	}
	return AsStrings(v), true
}

// AsInt converts a parameter value to an int.
func AsInt(v value.Value) (int, bool) {
	switch v.Kind() {
	case value.KindNumber:
		n, _ := v.AsNumber()
		if i, ok := n.Int64(); ok {
			return clampInt(i), true
		}
		f := n.Float64()
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, false
		}
		return clampInt(int64(math.Trunc(f))), true
	case value.KindString:
		s, _ := v.AsString()
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return 0, false
		}
		return clampInt(i), true
	default:
		return 0, false
	}
}

// AsBool converts a parameter value to a bool.
func AsBool(v value.Value) (bool, bool) {
	switch v.Kind() {
	case value.KindBool:
		b, _ := v.AsBool()
		return b, true
	case value.KindNumber:
		n, _ := v.AsNumber()
		return n.Sign() != 0, true
	case value.KindString:
		s, _ := v.AsString()
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return false, false
		}
		return b, true
	default:
		return false, false
	}
}

// AsStrings converts a parameter value to a list of strings.
func AsStrings(v value.Value) []string {
	if items, ok := v.AsArray(); ok {
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, value.Text(item))
		}
		return out
	}
	if v.IsNull() {
		return nil
	}
	parts := strings.Split(value.Text(v), ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func clampInt(i int64) int {
	if i > math.MaxInt {
		return math.MaxInt
	}
	if i < math.MinInt {
		return math.MinInt
	}
	return int(i)
}
