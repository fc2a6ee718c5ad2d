package converter

import (
	"context"
	"fmt"
	"strings"

	"github.com/vyrodovalexey/avamap/internal/path"
	"github.com/vyrodovalexey/avamap/internal/rules"
	"github.com/vyrodovalexey/avamap/internal/value"
)

const defaultSeparator = ","

// Join concatenates the text forms of array elements or object values.
// Param: ", " | {join: ", "} (separator also accepted). Scalars pass through
// as text.
func Join(_ context.Context, v value.Value, param rules.Param, _ Processor) (value.Value, error) {
	sep := param.PrimaryString(defaultSeparator, "join", "separator")
	return value.String(joinText(v, sep)), nil
}

func joinText(v value.Value, sep string) string {
	var parts []string
	switch v.Kind() {
	case value.KindArray:
		items, _ := v.AsArray()
		parts = make([]string, 0, len(items))
		for _, item := range items {
			parts = append(parts, value.Text(item))
		}
	case value.KindObject:
		obj, _ := v.AsObject()
		parts = make([]string, 0, obj.Len())
		obj.Range(func(_ string, item value.Value) bool {
			parts = append(parts, value.Text(item))
			return true
		})
	default:
		return value.Text(v)
	}
	return strings.Join(parts, sep)
}

// ToArray collects the display forms of several paths resolved against v.
// Param: ["a", "b"] | {to_array: ["a", "b"]}. Paths that do not resolve, or
// resolve to Null, produce Null entries.
func ToArray(_ context.Context, v value.Value, param rules.Param, _ Processor) (value.Value, error) {
	paths := pathList(param, OpToArray, "paths")
	return value.Array(collect(v, paths)...), nil
}

func pathList(param rules.Param, names ...string) []string {
	raw, ok := param.Primary(names...)
	if !ok {
		return nil
	}
	return rules.AsStrings(raw)
}

func collect(v value.Value, paths []string) []value.Value {
	items := make([]value.Value, 0, len(paths))
	for _, p := range paths {
		text, ok := path.ResolveDisplayString(v, p)
		if !ok {
			items = append(items, value.Null())
			continue
		}
		items = append(items, value.String(text))
	}
	return items
}

// JoinFields resolves several paths against v and joins their display forms
// in one step. Param: ["a", "b"] | {paths|fields: [...], separator: " "}.
// It is not part of the default operator set.
func JoinFields(_ context.Context, v value.Value, param rules.Param, _ Processor) (value.Value, error) {
	paths := pathList(param, OpJoinFields, "paths", "fields")
	sep := param.FieldString(defaultSeparator, "separator", "join")
	return value.String(joinText(value.Array(collect(v, paths)...), sep)), nil
}

// MapObject applies a nested rule list to an object value.
// Param: [rules] | {map_object: [rules]}. Non-object input yields Null.
func MapObject(ctx context.Context, v value.Value, param rules.Param, p Processor) (value.Value, error) {
	if v.Kind() != value.KindObject {
		return value.Null(), nil
	}
	nested, err := nestedRules(param, OpMapObject)
	if err != nil {
		return value.Null(), err
	}
	out, err := p.Process(ctx, v, nested)
	if err != nil {
		return value.Null(), err
	}
	return value.FromObject(out), nil
}

// MapArray applies a nested rule list to every element of an array value.
// Param: [rules] | {map_array: [rules]}. Non-array input yields Null.
func MapArray(ctx context.Context, v value.Value, param rules.Param, p Processor) (value.Value, error) {
	items, ok := v.AsArray()
	if !ok {
		return value.Null(), nil
	}
	nested, err := nestedRules(param, OpMapArray)
	if err != nil {
		return value.Null(), err
	}

	out := make([]value.Value, 0, len(items))
	for _, item := range items {
		obj, err := p.Process(ctx, item, nested)
		if err != nil {
			return value.Null(), err
		}
		out = append(out, value.FromObject(obj))
	}
	return value.Array(out...), nil
}

// nestedRules decodes the rule list of a container operator. An absent
// parameter is an empty rule list.
func nestedRules(param rules.Param, op string) ([]rules.Rule, error) {
	if !param.IsPresent() {
		return nil, nil
	}
	raw, ok := param.Primary(op)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, &rules.DecodeError{Message: fmt.Sprintf("missing %q rule list", op)})
	}
	nested, err := rules.FromValue(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return nested, nil
}
