package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// EncodeMsgpack implements msgpack.CustomEncoder. Integral literals are
// written as integers, every other number as float64.
func (v Value) EncodeMsgpack(enc *msgpack.Encoder) error {
	switch v.kind {
	case KindNull:
		return enc.EncodeNil()
	case KindBool:
		return enc.EncodeBool(v.b)
	case KindNumber:
		if !strings.ContainsAny(v.num.lit, ".eE") {
			if i, ok := v.num.Int64(); ok {
				return enc.EncodeInt(i)
			}
		}
		return enc.EncodeFloat64(v.num.Float64())
	case KindString:
		return enc.EncodeString(v.s)
	case KindArray:
		if err := enc.EncodeArrayLen(len(v.arr)); err != nil {
			return err
		}
		for _, item := range v.arr {
			if err := item.EncodeMsgpack(enc); err != nil {
				return err
			}
		}
		return nil
	case KindObject:
		if err := enc.EncodeMapLen(v.obj.Len()); err != nil {
			return err
		}
		var err error
		v.obj.Range(func(k string, item Value) bool {
			if err = enc.EncodeString(k); err != nil {
				return false
			}
			err = item.EncodeMsgpack(enc)
			return err == nil
		})
		return err
	default:
		return enc.EncodeNil()
	}
}

// DecodeMsgpack implements msgpack.CustomDecoder, keeping map order.
func (v *Value) DecodeMsgpack(dec *msgpack.Decoder) error {
	parsed, err := decodeMsgpack(dec)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

//nolint:gocyclo // one branch per msgpack family
func decodeMsgpack(dec *msgpack.Decoder) (Value, error) {
	c, err := dec.PeekCode()
	if err != nil {
		return Null(), err
	}

	switch {
	case c == msgpcode.Nil:
		return Null(), dec.DecodeNil()
	case c == msgpcode.False || c == msgpcode.True:
		b, err := dec.DecodeBool()
		return Bool(b), err
	case c == msgpcode.Float || c == msgpcode.Double:
		f, err := dec.DecodeFloat64()
		return Float(f), err
	case c == msgpcode.Uint64:
		u, err := dec.DecodeUint64()
		return Num(Number{lit: strconv.FormatUint(u, 10)}), err
	case msgpcode.IsFixedNum(c),
		c == msgpcode.Uint8, c == msgpcode.Uint16, c == msgpcode.Uint32,
		c == msgpcode.Int8, c == msgpcode.Int16, c == msgpcode.Int32, c == msgpcode.Int64:
		i, err := dec.DecodeInt64()
		return Int(i), err
	case msgpcode.IsFixedString(c) || msgpcode.IsString(c):
		s, err := dec.DecodeString()
		return String(s), err
	case msgpcode.IsBin(c):
		b, err := dec.DecodeBytes()
		return String(string(b)), err
	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		return decodeMsgpackArray(dec)
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		return decodeMsgpackMap(dec)
	default:
		iface, err := dec.DecodeInterface()
		if err != nil {
			return Null(), err
		}
		return FromInterface(iface), nil
	}
}

func decodeMsgpackArray(dec *msgpack.Decoder) (Value, error) {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return Null(), err
	}
	if n < 0 {
		return Null(), nil
	}
	items := make([]Value, 0, n)
	for i := 0; i < n; i++ {
		item, err := decodeMsgpack(dec)
		if err != nil {
			return Null(), err
		}
		items = append(items, item)
	}
	return Value{kind: KindArray, arr: items}, nil
}

func decodeMsgpackMap(dec *msgpack.Decoder) (Value, error) {
	n, err := dec.DecodeMapLen()
	if err != nil {
		return Null(), err
	}
	if n < 0 {
		return Null(), nil
	}
	obj := NewObject()
	for i := 0; i < n; i++ {
		key, err := decodeMsgpack(dec)
		if err != nil {
			return Null(), err
		}
		if !key.IsScalar() {
			return Null(), fmt.Errorf("msgpack map key must be a scalar, got %s", key.kind)
		}
		item, err := decodeMsgpack(dec)
		if err != nil {
			return Null(), err
		}
		obj.Set(Text(key), item)
	}
	return FromObject(obj), nil
}
