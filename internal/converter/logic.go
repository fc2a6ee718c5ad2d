package converter

import (
	"context"
	"strings"

	"github.com/vyrodovalexey/avamap/internal/rules"
	"github.com/vyrodovalexey/avamap/internal/value"
)

var (
	defaultTrueValues  = []string{"true", "1", "yes", "on", "enabled"}
	defaultFalseValues = []string{"false", "0", "no", "off", "disabled"}
)

// Boolean interprets v as a boolean and renders it in the requested output.
// Param: "yesno" | {trueValues, falseValues, output}. JSON booleans and
// numbers (non-zero is true) are always recognized; strings are matched
// case-insensitively against the true and false lists. No match yields Null.
func Boolean(_ context.Context, v value.Value, param rules.Param, _ Processor) (value.Value, error) {
	trueValues, ok := param.FieldStrings("trueValues", "true_values")
	if !ok {
		trueValues = defaultTrueValues
	}
	falseValues, ok := param.FieldStrings("falseValues", "false_values")
	if !ok {
		falseValues = defaultFalseValues
	}

	b, ok := toBool(v, trueValues, falseValues)
	if !ok {
		return value.Null(), nil
	}

	output := strings.ToLower(param.PrimaryString("boolean", "output"))
	return renderBool(b, output), nil
}

func toBool(v value.Value, trueValues, falseValues []string) (bool, bool) {
	switch v.Kind() {
	case value.KindBool:
		return v.AsBool()
	case value.KindNumber:
		n, _ := v.AsNumber()
		return n.Sign() != 0, true
	case value.KindString:
		s, _ := v.AsString()
		s = strings.TrimSpace(s)
		if containsFold(trueValues, s) {
			return true, true
		}
		if containsFold(falseValues, s) {
			return false, true
		}
	}
	return false, false
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), s) {
			return true
		}
	}
	return false
}

func renderBool(b bool, output string) value.Value {
	pick := func(yes, no string) value.Value {
		if b {
			return value.String(yes)
		}
		return value.String(no)
	}

	switch output {
	case "string":
		return pick("true", "false")
	case "number", "int", "integer":
		if b {
			return value.Int(1)
		}
		return value.Int(0)
	case "yesno":
		return pick("yes", "no")
	case "onoff":
		return pick("on", "off")
	case "enableddisabled":
		return pick("enabled", "disabled")
	default:
		return value.Bool(b)
	}
}

// Default substitutes a fallback when v meets a condition.
// Param: fallback | {value, condition}. Conditions: null (default), empty,
// nullorempty, whitespace, nullorwhitespace. Otherwise v passes through in
// its native form.
func Default(_ context.Context, v value.Value, param rules.Param, _ Processor) (value.Value, error) {
	if !param.IsPresent() {
		return value.Native(v), nil
	}

	condition := strings.ToLower(param.FieldString("null", "condition"))
	if !matchesCondition(v, condition) {
		return value.Native(v), nil
	}

	fallback, _ := param.Primary("value")
	return fallback, nil
}

func matchesCondition(v value.Value, condition string) bool {
	switch condition {
	case "empty":
		return isEmpty(v)
	case "nullorempty":
		return v.IsNull() || isEmpty(v)
	case "whitespace":
		return isBlank(v)
	case "nullorwhitespace":
		return v.IsNull() || isBlank(v)
	default:
		return v.IsNull()
	}
}

func isEmpty(v value.Value) bool {
	switch v.Kind() {
	case value.KindString, value.KindArray, value.KindObject:
		return v.Len() == 0
	default:
		return false
	}
}

func isBlank(v value.Value) bool {
	s, ok := v.AsString()
	return ok && strings.TrimSpace(s) == ""
}
