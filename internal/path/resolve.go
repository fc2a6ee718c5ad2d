package path

import (
	"strconv"

	"github.com/vyrodovalexey/avamap/internal/value"
)

// Resolve walks root along p. The boolean result is false when any step
// fails: a missing key, an out-of-range or non-numeric array index, or a
// step into a scalar. A found Null is reported as (Null, true).
func (p Path) Resolve(root value.Value) (value.Value, bool) {
	current := root
	for _, segment := range p.segments {
		next, ok := step(current, segment)
		if !ok {
			return value.Null(), false
		}
		current = next
	}
	return current, true
}

// step moves one segment down from current.
func step(current value.Value, segment string) (value.Value, bool) {
	switch current.Kind() {
	case value.KindObject:
		return current.Field(segment)
	case value.KindArray:
		index, err := strconv.Atoi(segment)
		if err != nil {
			return value.Null(), false
		}
		return current.Index(index)
	default:
		return value.Null(), false
	}
}

// Resolve parses raw and resolves it against root. Unparsable paths are
// reported as not found. An empty path returns root.
func Resolve(root value.Value, raw string) (value.Value, bool) {
	p, err := Parse(raw)
	if err != nil {
		return value.Null(), false
	}
	return p.Resolve(root)
}

// ResolveDisplayString resolves raw and renders the result with
// value.Display. The boolean is false when the path does not resolve or
// resolves to Null.
func ResolveDisplayString(root value.Value, raw string) (string, bool) {
	v, ok := Resolve(root, raw)
	if !ok {
		return "", false
	}
	return value.Display(v)
}
