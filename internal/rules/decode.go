package rules

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vyrodovalexey/avamap/internal/value"
)

// ErrInvalidRule indicates a malformed rule or rule list.
var ErrInvalidRule = errors.New("invalid rule")

// DecodeError describes where a rule list failed to decode.
type DecodeError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid rule: %s", e.Message)
	}
	return fmt.Sprintf("invalid rule at %s: %s", e.Path, e.Message)
}

// Is reports whether target is ErrInvalidRule.
func (e *DecodeError) Is(target error) bool {
	return target == ErrInvalidRule
}

// ParseJSON decodes a JSON rule list.
func ParseJSON(data []byte) ([]Rule, error) {
	v, err := value.ParseJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRule, err)
	}
	return FromValue(v)
}

// ParseYAML decodes a YAML rule list.
func ParseYAML(data []byte) ([]Rule, error) {
	v, err := value.ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRule, err)
	}
	return FromValue(v)
}

// FromValue decodes a rule list from an array of rule objects.
func FromValue(v value.Value) ([]Rule, error) {
	items, ok := v.AsArray()
	if !ok {
		return nil, &DecodeError{Message: fmt.Sprintf("expected an array of rules, got %s", v.Kind())}
	}

	out := make([]Rule, 0, len(items))
	for i, item := range items {
		rule, err := decodeRule(item, fmt.Sprintf("[%d]", i))
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, nil
}

func decodeRule(v value.Value, at string) (Rule, error) {
	obj, ok := v.AsObject()
	if !ok {
		return Rule{}, &DecodeError{Path: at, Message: fmt.Sprintf("expected an object, got %s", v.Kind())}
	}

	var rule Rule
	var err error

	if rule.Source, err = requiredString(obj, "source", at); err != nil {
		return Rule{}, err
	}
	if rule.Target, err = requiredString(obj, "target", at); err != nil {
		return Rule{}, err
	}
	if rule.Conversion, err = decodeConversion(obj, at); err != nil {
		return Rule{}, err
	}
	if rule.ConversionParams, err = decodeParams(obj, at); err != nil {
		return Rule{}, err
	}

	return rule, nil
}

func requiredString(obj *value.Object, key, at string) (string, error) {
	v, ok := obj.Get(key)
	if !ok || v.IsNull() {
		return "", &DecodeError{Path: joinPath(at, key), Message: "is required"}
	}
	s, ok := v.AsString()
	if !ok {
		return "", &DecodeError{Path: joinPath(at, key), Message: fmt.Sprintf("expected a string, got %s", v.Kind())}
	}
	return s, nil
}

func decodeConversion(obj *value.Object, at string) ([]string, error) {
	v, ok := obj.Get("conversion")
	if !ok || v.IsNull() {
		return nil, nil
	}

	items, ok := v.AsArray()
	if !ok {
		return nil, &DecodeError{
			Path:    joinPath(at, "conversion"),
			Message: fmt.Sprintf("expected an array of operator names, got %s", v.Kind()),
		}
	}

	ops := make([]string, 0, len(items))
	for i, item := range items {
		name, ok := item.AsString()
		if !ok {
			return nil, &DecodeError{
				Path:    fmt.Sprintf("%s[%d]", joinPath(at, "conversion"), i),
				Message: fmt.Sprintf("expected an operator name, got %s", item.Kind()),
			}
		}
		ops = append(ops, name)
	}
	return ops, nil
}

// decodeParams accepts both the conversion_params and conversionParams
// spellings; the snake-case key wins when both are present.
func decodeParams(obj *value.Object, at string) (map[string]value.Value, error) {
	key := "conversion_params"
	v, ok := obj.Get(key)
	if !ok {
		key = "conversionParams"
		v, ok = obj.Get(key)
	}
	if !ok || v.IsNull() {
		return nil, nil
	}

	params, ok := v.AsObject()
	if !ok {
		return nil, &DecodeError{
			Path:    joinPath(at, key),
			Message: fmt.Sprintf("expected an object keyed by operator, got %s", v.Kind()),
		}
	}

	out := make(map[string]value.Value, params.Len())
	params.Range(func(name string, p value.Value) bool {
		out[name] = p
		return true
	})
	return out, nil
}

func joinPath(at, key string) string {
	if at == "" {
		return key
	}
	return at + "." + key
}

func sortedKeys(m map[string]value.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
