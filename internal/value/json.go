package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// ErrInvalidJSON indicates that input could not be parsed as a JSON document.
var ErrInvalidJSON = errors.New("invalid JSON")

// ParseJSON parses a single JSON document, keeping object key order and
// exact number literals.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeJSON(dec)
	if err != nil {
		return Null(), fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Null(), fmt.Errorf("%w: unexpected data after top-level value", ErrInvalidJSON)
	}

	return v, nil
}

// MustParseJSON is like ParseJSON but panics on error. Intended for literals
// in tests and static tables.
func MustParseJSON(s string) Value {
	v, err := ParseJSON([]byte(s))
	if err != nil {
		panic(err)
	}
	return v
}

func decodeJSON(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Null(), err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeJSONObject(dec)
		case '[':
			return decodeJSONArray(dec)
		default:
			return Null(), fmt.Errorf("unexpected delimiter %q", t)
		}
	case json.Number:
		n, err := ParseNumber(string(t))
		if err != nil {
			return Null(), err
		}
		return Num(n), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	default:
		return Null(), fmt.Errorf("unexpected token %v", tok)
	}
}

func decodeJSONObject(dec *json.Decoder) (Value, error) {
	obj := NewObject()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Null(), err
		}
		key, ok := tok.(string)
		if !ok {
			return Null(), fmt.Errorf("object key must be a string, got %v", tok)
		}
		item, err := decodeJSON(dec)
		if err != nil {
			return Null(), err
		}
		obj.Set(key, item)
	}
	// closing brace
	if _, err := dec.Token(); err != nil {
		return Null(), err
	}
	return FromObject(obj), nil
}

func decodeJSONArray(dec *json.Decoder) (Value, error) {
	items := make([]Value, 0)
	for dec.More() {
		item, err := decodeJSON(dec)
		if err != nil {
			return Null(), err
		}
		items = append(items, item)
	}
	if _, err := dec.Token(); err != nil {
		return Null(), err
	}
	return Value{kind: KindArray, arr: items}, nil
}

// MarshalJSON implements json.Marshaler. Object keys keep their order.
func (v Value) MarshalJSON() ([]byte, error) {
	return appendJSON(nil, v), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (o *Object) MarshalJSON() ([]byte, error) {
	return appendJSON(nil, FromObject(o)), nil
}

func appendJSON(buf []byte, v Value) []byte {
	switch v.kind {
	case KindNull:
		return append(buf, "null"...)
	case KindBool:
		if v.b {
			return append(buf, "true"...)
		}
		return append(buf, "false"...)
	case KindNumber:
		return append(buf, v.num.lit...)
	case KindString:
		return appendJSONString(buf, v.s)
	case KindArray:
		buf = append(buf, '[')
		for i, item := range v.arr {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendJSON(buf, item)
		}
		return append(buf, ']')
	case KindObject:
		buf = append(buf, '{')
		first := true
		v.obj.Range(func(k string, item Value) bool {
			if !first {
				buf = append(buf, ',')
			}
			first = false
			buf = appendJSONString(buf, k)
			buf = append(buf, ':')
			buf = appendJSON(buf, item)
			return true
		})
		return append(buf, '}')
	default:
		return append(buf, "null"...)
	}
}

const hexDigits = "0123456789abcdef"

// appendJSONString quotes s without the HTML escaping encoding/json applies.
func appendJSONString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			switch {
			case c == '"' || c == '\\':
				buf = append(buf, '\\', c)
			case c == '\n':
				buf = append(buf, '\\', 'n')
			case c == '\r':
				buf = append(buf, '\\', 'r')
			case c == '\t':
				buf = append(buf, '\\', 't')
			case c < 0x20:
				buf = append(buf, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xF])
			default:
				buf = append(buf, c)
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			buf = append(buf, "\ufffd"...)
		} else {
			buf = append(buf, s[i:i+size]...)
		}
		i += size
	}
	return append(buf, '"')
}
