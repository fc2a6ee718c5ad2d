package value

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/inf.v0"
	"gopkg.in/yaml.v3"
)

func TestParseJSON_PreservesOrderAndLiterals(t *testing.T) {
	t.Parallel()

	v, err := ParseJSON([]byte(`{"z":1,"a":"x","m":[1.50,true,null],"n":{"b":2,"a":1}}`))
	require.NoError(t, err)

	obj, ok := v.AsObject()
	require.True(t, ok)
	assert.Equal(t, []string{"z", "a", "m", "n"}, obj.Keys())

	assert.Equal(t, `{"z":1,"a":"x","m":[1.50,true,null],"n":{"b":2,"a":1}}`, JSONText(v))
}

func TestParseJSON_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "empty input", input: ""},
		{name: "truncated object", input: `{"a":`},
		{name: "trailing data", input: `{"a":1} {"b":2}`},
		{name: "bare word", input: `hello`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseJSON([]byte(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidJSON)
		})
	}
}

func TestValue_ZeroIsNull(t *testing.T) {
	t.Parallel()

	var v Value
	assert.True(t, v.IsNull())
	assert.Equal(t, KindNull, v.Kind())
	assert.Equal(t, "null", JSONText(v))
}

func TestValue_AccessorsRejectOtherKinds(t *testing.T) {
	t.Parallel()

	s := String("x")
	_, ok := s.AsNumber()
	assert.False(t, ok)
	_, ok = s.AsObject()
	assert.False(t, ok)
	_, ok = s.Index(0)
	assert.False(t, ok)

	arr := Array(Int(1), Int(2))
	item, ok := arr.Index(1)
	require.True(t, ok)
	assert.True(t, item.Equal(Int(2)))
	_, ok = arr.Index(2)
	assert.False(t, ok)
}

func TestArray_CopiesInput(t *testing.T) {
	t.Parallel()

	items := []Value{String("a")}
	arr := Array(items...)
	items[0] = String("b")

	first, _ := arr.Index(0)
	assert.Equal(t, "a", Text(first))

	out, _ := arr.AsArray()
	out[0] = String("c")
	first, _ = arr.Index(0)
	assert.Equal(t, "a", Text(first))
}

func TestFloat_NonFiniteIsNull(t *testing.T) {
	t.Parallel()

	zero := 0.0
	assert.True(t, Float(1/zero).IsNull())
	assert.True(t, Float(zero/zero).IsNull())
}

func TestEqual(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		a, b  Value
		equal bool
	}{
		{name: "numbers by value", a: MustParseJSON("1.0"), b: Int(1), equal: true},
		{name: "objects ignore order", a: MustParseJSON(`{"a":1,"b":2}`), b: MustParseJSON(`{"b":2,"a":1}`), equal: true},
		{name: "arrays keep order", a: MustParseJSON(`[1,2]`), b: MustParseJSON(`[2,1]`), equal: false},
		{name: "different kinds", a: String("1"), b: Int(1), equal: false},
		{name: "nulls", a: Null(), b: Null(), equal: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.equal, tt.a.Equal(tt.b))
		})
	}
}

func TestNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		literal  string
		compact  string
		integral bool
	}{
		{name: "integer", literal: "42", compact: "42", integral: true},
		{name: "integral with fraction", literal: "5.0", compact: "5", integral: true},
		{name: "decimal", literal: "12.50", compact: "12.5", integral: false},
		{name: "exponent", literal: "1e3", compact: "1000", integral: true},
		{name: "negative exponent", literal: "25e-1", compact: "2.5", integral: false},
		{name: "beyond int64", literal: "123456789012345678901234", compact: "1.2345678901234568e+23", integral: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			n, err := ParseNumber(tt.literal)
			require.NoError(t, err)
			assert.Equal(t, tt.literal, n.String())
			assert.Equal(t, tt.compact, n.Compact())
			assert.Equal(t, tt.integral, n.IsIntegral())
		})
	}
}

func TestNumber_HugeExponents(t *testing.T) {
	t.Parallel()

	big, err := ParseNumber("1e50000000")
	require.NoError(t, err)
	tiny, err := ParseNumber("-1.5e-50000000")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)

		_, ok := big.Int64()
		assert.False(t, ok)
		assert.True(t, big.IsIntegral())
		assert.Equal(t, "1e50000000", big.Compact())
		assert.Equal(t, 1, big.Sign())

		_, ok = tiny.Int64()
		assert.False(t, ok)
		assert.False(t, tiny.IsIntegral())
		assert.Equal(t, -1, tiny.Sign())

		same, _ := ParseNumber("10e49999999")
		assert.True(t, big.Equal(same))
		assert.False(t, big.Equal(IntNumber(1)))
		assert.False(t, tiny.Equal(big))

		assert.Equal(t, "1e50000000", DecNumber(big.Dec()).String())
		assert.Equal(t, "1e50000000", Text(Num(big)))
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("huge exponents were expanded")
	}
}

func TestParseNumber_RejectsNonJSON(t *testing.T) {
	t.Parallel()

	for _, lit := range []string{"", "-", "01", "1.", ".5", "1e", "+1", "0x10", "NaN"} {
		_, err := ParseNumber(lit)
		assert.ErrorIs(t, err, ErrInvalidNumber, lit)
	}
}

func TestDecNumber_KeepsScale(t *testing.T) {
	t.Parallel()

	d := inf.NewDec(1250, 2)
	v := Decimal(d)
	assert.Equal(t, "12.50", JSONText(v))
	assert.Equal(t, "12.5", Text(v))
}

func TestDisplay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   Value
		want    string
		present bool
	}{
		{name: "string", input: String("abc"), want: "abc", present: true},
		{name: "integral number", input: MustParseJSON("3.0"), want: "3", present: true},
		{name: "float", input: MustParseJSON("3.25"), want: "3.25", present: true},
		{name: "true", input: Bool(true), want: "True", present: true},
		{name: "false", input: Bool(false), want: "False", present: true},
		{name: "null", input: Null(), present: false},
		{name: "array length", input: MustParseJSON(`[1,2,3]`), want: "3", present: true},
		{name: "object text", input: MustParseJSON(`{"a": 1}`), want: `{"a":1}`, present: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Display(tt.input)
			assert.Equal(t, tt.present, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", Text(Null()))
	assert.Equal(t, `[1,"a"]`, Text(MustParseJSON(`[1,"a"]`)))
	assert.Equal(t, "a\"b", Text(String("a\"b")))
	assert.Equal(t, `"a\"b"`, JSONText(String("a\"b")))
	assert.Equal(t, `"<tag> & \u0001"`, JSONText(String("<tag> & \x01")))
}

func TestNative(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "5", JSONText(Native(MustParseJSON("5.0"))))
	assert.Equal(t, "1.5", JSONText(Native(MustParseJSON("1.50"))))
	assert.Equal(t, `"x"`, JSONText(Native(String("x"))))
	assert.True(t, Native(Null()).IsNull())
}

func TestFromInterface_RoundTrip(t *testing.T) {
	t.Parallel()

	in := map[string]interface{}{
		"b":    []interface{}{int64(1), "two", true, nil},
		"a":    2.5,
		"list": []string{"x"},
	}
	v := FromInterface(in)
	assert.Equal(t, `{"a":2.5,"b":[1,"two",true,null],"list":["x"]}`, JSONText(v))

	back, ok := ToInterface(v).(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 2.5, back["a"])
	assert.Equal(t, []interface{}{int64(1), "two", true, nil}, back["b"])
}

func TestObject_SetKeepsPosition(t *testing.T) {
	t.Parallel()

	obj := NewObject()
	obj.Set("a", Int(1))
	obj.Set("b", Int(2))
	obj.Set("a", Int(3))

	assert.Equal(t, []string{"a", "b"}, obj.Keys())
	got, ok := obj.Get("a")
	require.True(t, ok)
	assert.Equal(t, "3", Text(got))

	other := NewObject()
	other.Set("c", Int(4))
	other.Set("b", Int(5))
	obj.Merge(other)
	assert.Equal(t, `{"a":3,"b":5,"c":4}`, JSONText(FromObject(obj)))
}

func TestYAML(t *testing.T) {
	t.Parallel()

	doc := `
name: test
count: 3
ratio: 1.50
hex: 0x1F
enabled: yes
flag: true
nothing: ~
items:
  - b
  - a
nested:
  z: 1
  y: 2
`
	v, err := ParseYAML([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t,
		`{"name":"test","count":3,"ratio":1.50,"hex":31,"enabled":"yes","flag":true,"nothing":null,`+
			`"items":["b","a"],"nested":{"z":1,"y":2}}`,
		JSONText(v))

	out, err := yaml.Marshal(v)
	require.NoError(t, err)

	var back Value
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.True(t, v.Equal(back))
}

func TestMsgpack(t *testing.T) {
	t.Parallel()

	v := MustParseJSON(`{"z":1,"a":[true,null,"s",-7,2.5],"big":18446744073709551615}`)

	data, err := msgpack.Marshal(v)
	require.NoError(t, err)

	var back Value
	require.NoError(t, msgpack.Unmarshal(data, &back))

	obj, ok := back.AsObject()
	require.True(t, ok)
	assert.Equal(t, []string{"z", "a", "big"}, obj.Keys())
	assert.True(t, MustParseJSON(`{"z":1,"a":[true,null,"s",-7,2.5]}`).Equal(withoutKey(back, "big")))
}

func withoutKey(v Value, key string) Value {
	obj, _ := v.AsObject()
	out := NewObject()
	obj.Range(func(k string, item Value) bool {
		if k != key {
			out.Set(k, item)
		}
		return true
	})
	return FromObject(out)
}
