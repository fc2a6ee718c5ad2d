package mapping

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avamap/internal/config"
	"github.com/vyrodovalexey/avamap/internal/converter"
	"github.com/vyrodovalexey/avamap/internal/encoding"
	"github.com/vyrodovalexey/avamap/internal/observability"
	"github.com/vyrodovalexey/avamap/internal/rules"
	"github.com/vyrodovalexey/avamap/internal/value"
)

func mustRules(t *testing.T, s string) []rules.Rule {
	t.Helper()
	rs, err := rules.ParseJSON([]byte(s))
	require.NoError(t, err)
	return rs
}

func transformJSON(t *testing.T, e *Engine, input string) string {
	t.Helper()
	out, err := e.Transform(context.Background(), value.MustParseJSON(input))
	require.NoError(t, err)
	return value.JSONText(value.FromObject(out))
}

func TestTransform(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		rules    string
		input    string
		expected string
	}{
		{
			name:     "unresolved source contributes no key",
			rules:    `[{"source":"missing","target":"a"},{"source":"missing","target":"b","conversion":["default"],"conversion_params":{"default":{"value":"x"}}}]`,
			input:    `{"present":1}`,
			expected: `{}`,
		},
		{
			name:     "type mismatch is unresolved",
			rules:    `[{"source":"name.first","target":"a"},{"source":"items.x","target":"b"},{"source":"items[5]","target":"c"}]`,
			input:    `{"name":"John","items":[1,2]}`,
			expected: `{}`,
		},
		{
			name:     "explicit null fills the key",
			rules:    `[{"source":"a","target":"plain"},{"source":"a","target":"converted","conversion":["number"]}]`,
			input:    `{"a":null}`,
			expected: `{"plain":null,"converted":null}`,
		},
		{
			name:     "primitives round trip without conversion",
			rules:    `[{"source":"s","target":"s"},{"source":"n","target":"n"},{"source":"f","target":"f"},{"source":"b","target":"b"},{"source":"z","target":"z"}]`,
			input:    `{"s":"text","n":42,"f":2.5,"b":false,"z":null}`,
			expected: `{"s":"text","n":42,"f":2.5,"b":false,"z":null}`,
		},
		{
			name:     "no conversion coerces to native",
			rules:    `[{"source":"n","target":"n"},{"source":"f","target":"f"}]`,
			input:    `{"n":5.0,"f":2.50}`,
			expected: `{"n":5,"f":2.5}`,
		},
		{
			name:     "containers pass through",
			rules:    `[{"source":"obj","target":"o"},{"source":"arr","target":"a"}]`,
			input:    `{"obj":{"y":1,"x":2},"arr":[3,"4"]}`,
			expected: `{"o":{"y":1,"x":2},"a":[3,"4"]}`,
		},
		{
			name:     "rule order is result order",
			rules:    `[{"source":"b","target":"second"},{"source":"a","target":"first"},{"source":"b","target":"second"}]`,
			input:    `{"a":1,"b":2}`,
			expected: `{"second":2,"first":1}`,
		},
		{
			name: "case operators",
			rules: `[
				{"source":"t","target":"camel","conversion":["case"],"conversion_params":{"case":"camel"}},
				{"source":"t","target":"pascal","conversion":["case"],"conversion_params":{"case":{"case":"pascal"}}},
				{"source":"h","target":"upper","conversion":["case"],"conversion_params":{"case":"upper"}}
			]`,
			input:    `{"t":"hello world test","h":"hello world"}`,
			expected: `{"camel":"helloWorldTest","pascal":"HelloWorldTest","upper":"HELLO WORLD"}`,
		},
		{
			name: "substring and trim",
			rules: `[
				{"source":"s","target":"sub","conversion":["substring"],"conversion_params":{"substring":{"start":0,"length":5}}},
				{"source":"p","target":"trim","conversion":["trim"],"conversion_params":{"trim":{"type":"both"}}}
			]`,
			input:    `{"s":"hello world","p":"  hello world  "}`,
			expected: `{"sub":"hello","trim":"hello world"}`,
		},
		{
			name: "boolean outputs",
			rules: `[
				{"source":"active","target":"yn","conversion":["boolean"],"conversion_params":{"boolean":{"output":"yesno"}}},
				{"source":"flag","target":"b","conversion":["boolean"],"conversion_params":{"boolean":{"output":"boolean"}}}
			]`,
			input:    `{"active":true,"flag":"yes"}`,
			expected: `{"yn":"yes","b":true}`,
		},
		{
			name: "to_array then join",
			rules: `[
				{"source":"address","target":"full","conversion":["to_array","join"],
				 "conversion_params":{"to_array":["street","city","state","zip"],"join":", "}},
				{"source":"person","target":"name","conversion":["to_array","join"],
				 "conversion_params":{"to_array":["first","middle","last"],"join":" "}}
			]`,
			input: `{"address":{"street":"123 Main St","city":"Boston","state":"MA","zip":"02108"},
			         "person":{"first":"John","last":"Smith"}}`,
			expected: `{"full":"123 Main St, Boston, MA, 02108","name":"John  Smith"}`,
		},
		{
			name: "map_array",
			rules: `[{"source":"people","target":"contacts","conversion":["map_array"],
			          "conversion_params":{"map_array":[{"source":"name","target":"fullName"},{"source":"email","target":"contact"}]}}]`,
			input:    `{"people":[{"name":"John","email":"j@t.com"},{"name":"Jane","email":"ja@t.com"}]}`,
			expected: `{"contacts":[{"fullName":"John","contact":"j@t.com"},{"fullName":"Jane","contact":"ja@t.com"}]}`,
		},
		{
			name: "nested conversions inside map_object",
			rules: `[{"source":"customer","target":"customer","conversion":["map_object"],
			          "conversion_params":{"map_object":[
			            {"source":"name","target":"name","conversion":["case"],"conversion_params":{"case":"upper"}},
			            {"source":"id","target":"id","conversion":["prepend"],"conversion_params":{"prepend":"C-"}}]}}]`,
			input:    `{"customer":{"name":"ada","id":7}}`,
			expected: `{"customer":{"name":"ADA","id":"C-7"}}`,
		},
		{
			name: "root merge",
			rules: `[
				{"source":"","target":"$root","conversion":["map_object"],"conversion_params":{"map_object":[{"source":"a","target":"x"}]}},
				{"source":"b","target":"$root"},
				{"source":"a","target":"$root"}
			]`,
			input:    `{"a":1,"b":{"x":2,"y":3}}`,
			expected: `{"x":2,"y":3}`,
		},
		{
			name:     "root merge keeps earlier keys",
			rules:    `[{"source":"a","target":"a"},{"source":"b","target":"$root"}]`,
			input:    `{"a":1,"b":{"c":2}}`,
			expected: `{"a":1,"c":2}`,
		},
		{
			name:     "empty source addresses the input",
			rules:    `[{"source":"","target":"all"}]`,
			input:    `{"a":1}`,
			expected: `{"all":{"a":1}}`,
		},
		{
			name:     "null stops the chain",
			rules:    `[{"source":"v","target":"v","conversion":["number","default"],"conversion_params":{"default":{"value":0}}}]`,
			input:    `{"v":"abc"}`,
			expected: `{"v":null}`,
		},
		{
			name:     "unknown operator passes the value through unconverted",
			rules:    `[{"source":"n","target":"n","conversion":["nope"]},{"source":"n","target":"native"}]`,
			input:    `{"n":5.0}`,
			expected: `{"n":5.0,"native":5}`,
		},
		{
			name:     "unknown operator does not break the chain",
			rules:    `[{"source":"s","target":"s","conversion":["nope","case"],"conversion_params":{"case":"upper"}}]`,
			input:    `{"s":"abc"}`,
			expected: `{"s":"ABC"}`,
		},
		{
			name:     "empty chain keeps the value as is",
			rules:    `[{"source":"n","target":"n","conversion":[]}]`,
			input:    `{"n":1.50}`,
			expected: `{"n":1.50}`,
		},
		{
			name:     "scalar input",
			rules:    `[{"source":"","target":"v","conversion":["prepend"],"conversion_params":{"prepend":"#"}},{"source":"x","target":"x"}]`,
			input:    `12`,
			expected: `{"v":"#12"}`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := New(mustRules(t, tt.rules))
			assert.Equal(t, tt.expected, transformJSON(t, e, tt.input))
		})
	}
}

func TestTransform_MalformedNestedRules(t *testing.T) {
	t.Parallel()

	e := New(mustRules(t, `[
		{"source":"a","target":"a"},
		{"source":"items","target":"items","conversion":["map_array"],"conversion_params":{"map_array":[{"source":"x"}]}}
	]`))

	out, err := e.Transform(context.Background(), value.MustParseJSON(`{"a":1,"items":[{"x":1}]}`))
	require.Error(t, err)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, rules.ErrInvalidRule)
	assert.Contains(t, err.Error(), `rule "items" -> "items"`)
	assert.Contains(t, err.Error(), "map_array")

	var decodeErr *rules.DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, "[0].target", decodeErr.Path)
}

func TestTransform_ConverterErrorPropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	e := New(mustRules(t, `[{"source":"a","target":"a","conversion":["fail"]}]`))
	require.NoError(t, e.RegisterConverter("fail", func(context.Context, value.Value, rules.Param, converter.Processor) (value.Value, error) {
		return value.Null(), boom
	}))

	_, err := e.Transform(context.Background(), value.MustParseJSON(`{"a":1}`))
	assert.ErrorIs(t, err, boom)
}

func TestTransform_NullShortCircuits(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	e := New(mustRules(t, `[{"source":"v","target":"v","conversion":["number","spy"]}]`))
	require.NoError(t, e.RegisterConverter("spy", func(_ context.Context, v value.Value, _ rules.Param, _ converter.Processor) (value.Value, error) {
		calls.Add(1)
		return v, nil
	}))

	assert.Equal(t, `{"v":null}`, transformJSON(t, e, `{"v":"abc"}`))
	assert.Equal(t, int32(0), calls.Load())

	assert.Equal(t, `{"v":12}`, transformJSON(t, e, `{"v":"12"}`))
	assert.Equal(t, int32(1), calls.Load())
}

func TestTransform_HugeExponents(t *testing.T) {
	t.Parallel()

	e := New(mustRules(t, `[
		{"source":"a","target":"a"},
		{"source":"a","target":"i","conversion":["number"],"conversion_params":{"number":"int"}},
		{"source":"a","target":"p","conversion":["prepend"],"conversion_params":{"prepend":"x"}},
		{"source":"a","target":"d","conversion":["default"],"conversion_params":{"default":0}}
	]`))
	input := value.MustParseJSON(`{"a":1e50000000}`)

	type result struct {
		out *value.Object
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := e.Transform(context.Background(), input)
		done <- result{out: out, err: err}
	}()

	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.Equal(t, `{"a":1e50000000,"i":null,"p":"x1e50000000","d":1e50000000}`, value.JSONText(value.FromObject(r.out)))
	case <-time.After(5 * time.Second):
		t.Fatal("transform expanded the exponent")
	}
}

func TestTransform_ParamsReachConverter(t *testing.T) {
	t.Parallel()

	var seen []string
	e := New(mustRules(t, `[
		{"source":"a","target":"full","conversion":["probe"],"conversion_params":{"probe":{"k":"v"}}},
		{"source":"a","target":"short","conversion":["probe"],"conversion_params":{"probe":"s"}},
		{"source":"a","target":"absent","conversion":["probe"],"conversion_params":{"other":1}}
	]`))
	require.NoError(t, e.RegisterConverter("probe", func(_ context.Context, v value.Value, p rules.Param, _ converter.Processor) (value.Value, error) {
		_, short := p.Shorthand()
		seen = append(seen, fmt.Sprintf("%t/%t/%t", p.IsPresent(), p.IsFull(), short))
		return v, nil
	}))

	transformJSON(t, e, `{"a":1}`)
	assert.Equal(t, []string{"true/true/false", "true/false/true", "false/false/false"}, seen)
}

func TestRegisterConverter(t *testing.T) {
	t.Parallel()

	e := New(nil, WithLogger(observability.NopLogger()))
	noop := func(_ context.Context, v value.Value, _ rules.Param, _ converter.Processor) (value.Value, error) {
		return v, nil
	}

	tests := []struct {
		name    string
		op      string
		fn      converter.Func
		wantErr error
	}{
		{name: "empty name", op: "", fn: noop, wantErr: ErrEmptyConverterName},
		{name: "blank name", op: "  \t", fn: noop, wantErr: ErrEmptyConverterName},
		{name: "nil converter", op: "x", fn: nil, wantErr: ErrNilConverter},
		{name: "new operator", op: "x", fn: noop},
		{name: "override built-in", op: converter.OpCase, fn: noop},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := e.RegisterConverter(tt.op, tt.fn)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, e.Registry().Has(tt.op))
		})
	}
}

func TestRegisterConverter_OverrideAffectsLaterCallsOnly(t *testing.T) {
	t.Parallel()

	e := New(mustRules(t, `[
		{"source":"s","target":"top","conversion":["case"],"conversion_params":{"case":"upper"}},
		{"source":"","target":"nested","conversion":["map_object"],"conversion_params":{"map_object":[
			{"source":"s","target":"s","conversion":["case"],"conversion_params":{"case":"upper"}}]}}
	]`))
	input := value.MustParseJSON(`{"s":"abc"}`)

	before, err := e.Transform(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, `{"top":"ABC","nested":{"s":"ABC"}}`, value.JSONText(value.FromObject(before)))

	require.NoError(t, e.RegisterConverter(converter.OpCase, func(context.Context, value.Value, rules.Param, converter.Processor) (value.Value, error) {
		return value.String("overridden"), nil
	}))

	after, err := e.Transform(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, `{"top":"overridden","nested":{"s":"overridden"}}`, value.JSONText(value.FromObject(after)))
	assert.Equal(t, `{"top":"ABC","nested":{"s":"ABC"}}`, value.JSONText(value.FromObject(before)))
}

func TestNew_CopiesRules(t *testing.T) {
	t.Parallel()

	rs := mustRules(t, `[{"source":"a","target":"a"}]`)
	e := New(rs)
	rs[0].Target = "changed"

	assert.Equal(t, "a", e.Rules()[0].Target)
	got := e.Rules()
	got[0].Target = "again"
	assert.Equal(t, `{"a":1}`, transformJSON(t, e, `{"a":1}`))
}

func TestNew_Options(t *testing.T) {
	t.Parallel()

	shared := converter.NewBuiltinRegistry()
	a := New(nil, WithRegistry(shared))
	b := New(nil, WithRegistry(shared))
	require.NoError(t, a.RegisterConverter("shared", converter.Prepend))
	assert.True(t, b.Registry().Has("shared"))

	c := New(mustRules(t, `[{"source":"s","target":"s","conversion":["replace"],"conversion_params":{"replace":{"from":"a+","to":"b","regex":true}}}]`),
		WithConverterOptions(converter.WithRegexCacheSize(0)))
	assert.Equal(t, `{"s":"cbt"}`, transformJSON(t, c, `{"s":"caat"}`))
}

func TestTransform_Concurrent(t *testing.T) {
	t.Parallel()

	e := New(mustRules(t, `[
		{"source":"name","target":"name","conversion":["case","prepend"],"conversion_params":{"case":"upper","prepend":"Mr "}},
		{"source":"items","target":"items","conversion":["map_array"],"conversion_params":{"map_array":[{"source":"id","target":"ref"}]}}
	]`))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			input := value.MustParseJSON(fmt.Sprintf(`{"name":"n%d","items":[{"id":%d}]}`, i, i))
			out, err := e.Transform(context.Background(), input)
			assert.NoError(t, err)
			assert.Equal(t,
				fmt.Sprintf(`{"name":"Mr N%d","items":[{"ref":%d}]}`, i, i),
				value.JSONText(value.FromObject(out)))
		}(i)
	}
	wg.Wait()
}

func TestTransformPayload(t *testing.T) {
	t.Parallel()

	e := New(mustRules(t, `[{"source":"name","target":"name","conversion":["case"],"conversion_params":{"case":"upper"}},{"source":"n","target":"n"}]`))
	ctx := context.Background()

	out, ct, err := e.TransformPayload(ctx, "application/json; charset=utf-8", "", []byte(`{"name":"ada","n":1.0}`))
	require.NoError(t, err)
	assert.Equal(t, encoding.ContentTypeJSON, ct)
	assert.Equal(t, `{"name":"ADA","n":1}`, string(out))

	out, ct, err = e.TransformPayload(ctx, "application/json", "application/yaml", []byte(`{"name":"ada","n":2}`))
	require.NoError(t, err)
	assert.Equal(t, encoding.ContentTypeYAML, ct)
	assert.Equal(t, "name: ADA\nn: 2\n", string(out))

	yamlIn := []byte("name: bob\nn: 3\n")
	out, ct, err = e.TransformPayload(ctx, "application/x-yaml", "application/msgpack", yamlIn)
	require.NoError(t, err)
	assert.Equal(t, encoding.ContentTypeMsgpack, ct)
	decoded, err := encoding.NewMsgpackCodec().Decode(out)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"BOB","n":3}`, value.JSONText(decoded))

	_, _, err = e.TransformPayload(ctx, "text/plain", "", []byte("x"))
	assert.ErrorIs(t, err, encoding.ErrUnsupportedContentType)

	_, _, err = e.TransformPayload(ctx, "application/json", "", []byte(`{"name":`))
	assert.ErrorIs(t, err, encoding.ErrDecodingFailed)
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Metadata.Name = "orders"
	cfg.Spec.Engine.Culture = "de-DE"
	cfg.Spec.Engine.EnableJoinFields = true
	cfg.Spec.Rules = mustRules(t, `[
		{"source":"total","target":"total","conversion":["format"],"conversion_params":{"format":"N2"}},
		{"source":"","target":"name","conversion":["join_fields"],"conversion_params":{"join_fields":{"paths":["first","last"],"separator":" "}}}
	]`)

	e, err := NewFromConfig(cfg, nil)
	require.NoError(t, err)
	assert.True(t, e.Registry().Has(converter.OpJoinFields))
	assert.Equal(t, `{"total":"1.234,50","name":"Ada Lovelace"}`,
		transformJSON(t, e, `{"total":1234.5,"first":"Ada","last":"Lovelace"}`))

	plain := config.DefaultConfig()
	plain.Metadata.Name = "plain"
	e, err = NewFromConfig(plain, observability.NopLogger())
	require.NoError(t, err)
	assert.False(t, e.Registry().Has(converter.OpJoinFields))
	assert.Empty(t, e.Rules())
}

func TestNewFromConfig_Invalid(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Spec.Engine.RegexCacheSize = -1
	cfg.Spec.Rules = []rules.Rule{{Source: "a"}}

	_, err := NewFromConfig(cfg, nil)
	require.Error(t, err)

	var verrs config.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	paths := make([]string, 0, len(verrs))
	for _, ve := range verrs {
		paths = append(paths, ve.Path)
	}
	assert.ElementsMatch(t, []string{"metadata.name", "spec.engine.regexCacheSize", "spec.rules[0].target"}, paths)
}
