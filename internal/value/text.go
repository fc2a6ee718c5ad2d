package value

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// Display returns the display form of v used by placeholder-style consumers:
// strings as-is, numbers in their most compact form, booleans as "True" or
// "False", arrays as their length and objects as compact JSON.
// The second result is false for Null, which has no display form.
func Display(v Value) (string, bool) {
	switch v.kind {
	case KindNull:
		return "", false
	case KindArray:
		return strconv.Itoa(len(v.arr)), true
	default:
		return Text(v), true
	}
}

// Text returns the raw textual form of v: strings unquoted, numbers compact,
// booleans "True"/"False", containers as compact JSON and Null as "".
func Text(v Value) string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		if v.b {
			return "True"
		}
		return "False"
	case KindNumber:
		return v.num.Compact()
	case KindString:
		return v.s
	default:
		return JSONText(v)
	}
}

// RawText returns v as written: strings unquoted, Null as "" and every
// other kind as its JSON text, so true stays "true" and 1.50 stays "1.50".
func RawText(v Value) string {
	switch v.kind {
	case KindNull:
		return ""
	case KindString:
		return v.s
	default:
		return JSONText(v)
	}
}

// JSONText returns the compact JSON serialization of v (strings quoted).
func JSONText(v Value) string {
	return string(appendJSON(nil, v))
}

// Native coerces v to its nearest native representation: numbers become
// integral when exact and floating otherwise. Other kinds pass through.
func Native(v Value) Value {
	if v.kind == KindNumber {
		return Num(v.num.Normalize())
	}
	return v
}

// ToInterface converts v into plain Go values (nil, bool, int64, float64,
// string, []interface{}, map[string]interface{}). Key order is lost.
func ToInterface(v Value) interface{} {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		if i, ok := v.num.Int64(); ok {
			return i
		}
		return v.num.Float64()
	case KindString:
		return v.s
	case KindArray:
		out := make([]interface{}, len(v.arr))
		for i, item := range v.arr {
			out[i] = ToInterface(item)
		}
		return out
	case KindObject:
		out := make(map[string]interface{}, v.obj.Len())
		v.obj.Range(func(k string, item Value) bool {
			out[k] = ToInterface(item)
			return true
		})
		return out
	default:
		return nil
	}
}

// FromInterface converts plain Go values into a Value. Map keys are sorted
// because Go maps carry no order.
func FromInterface(in interface{}) Value {
	switch x := in.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case *Object:
		return FromObject(x)
	case bool:
		return Bool(x)
	case string:
		return String(x)
	case json.Number:
		if n, err := ParseNumber(string(x)); err == nil {
			return Num(n)
		}
		return String(string(x))
	case Number:
		return Num(x)
	case float64:
		return Float(x)
	case float32:
		f, _ := strconv.ParseFloat(strconv.FormatFloat(float64(x), 'g', -1, 32), 64)
		return Float(f)
	case int:
		return Int(int64(x))
	case int64:
		return Int(x)
	case int32:
		return Int(int64(x))
	case uint64:
		return Num(Number{lit: strconv.FormatUint(x, 10)})
	case []Value:
		return Array(x...)
	case []interface{}:
		items := make([]Value, len(x))
		for i, item := range x {
			items[i] = FromInterface(item)
		}
		return Value{kind: KindArray, arr: items}
	case []string:
		items := make([]Value, len(x))
		for i, item := range x {
			items[i] = String(item)
		}
		return Value{kind: KindArray, arr: items}
	case map[string]interface{}:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, k := range keys {
			obj.Set(k, FromInterface(x[k]))
		}
		return FromObject(obj)
	default:
		return fromReflect(reflect.ValueOf(in))
	}
}

func fromReflect(rv reflect.Value) Value {
	switch rv.Kind() {
	case reflect.Int8, reflect.Int16:
		return Int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return Num(Number{lit: strconv.FormatUint(rv.Uint(), 10)})
	case reflect.Slice, reflect.Array:
		items := make([]Value, rv.Len())
		for i := range items {
			items[i] = FromInterface(rv.Index(i).Interface())
		}
		return Value{kind: KindArray, arr: items}
	default:
		return String(fmt.Sprint(rv.Interface()))
	}
}
