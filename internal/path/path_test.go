package path

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avamap/internal/value"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		expected []string
	}{
		{name: "empty path", path: "", expected: []string{}},
		{name: "single name", path: "name", expected: []string{"name"}},
		{name: "dotted", path: "user.address.city", expected: []string{"user", "address", "city"}},
		{name: "array index", path: "items[0].id", expected: []string{"items", "0", "id"}},
		{name: "chained brackets", path: "matrix[1][2]", expected: []string{"matrix", "1", "2"}},
		{name: "single quoted key", path: "headers['content-type']", expected: []string{"headers", "content-type"}},
		{name: "double quoted key with dot", path: `data["a.b"].value`, expected: []string{"data", "a.b", "value"}},
		{name: "quoted key with bracket", path: `m["x]y"]`, expected: []string{"m", "x]y"}},
		{name: "escaped quote", path: `m['it\'s']`, expected: []string{"m", "it's"}},
		{name: "unquoted key", path: "m[key]", expected: []string{"m", "key"}},
		{name: "leading bracket", path: "[0].name", expected: []string{"0", "name"}},
		{name: "numeric dotted index", path: "items.1", expected: []string{"items", "1"}},
		{name: "empty segments dropped", path: "a..b.", expected: []string{"a", "b"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := Parse(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p.Segments())
			assert.Equal(t, tt.path, p.String())
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"a[0", "a[]", "a]", `a['x`, `a['x'y]`} {
		_, err := Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidPath, raw)
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	root := value.MustParseJSON(`{
		"user": {"name": "John", "tags": ["a", "b"], "nothing": null},
		"items": [{"id": 1}, {"id": 2}],
		"matrix": [[1, 2], [3, 4, 5]],
		"headers": {"content-type": "json", "0": "zero"},
		"a.b": "dotted"
	}`)

	tests := []struct {
		name     string
		path     string
		expected string
		found    bool
	}{
		{name: "nested object", path: "user.name", expected: `"John"`, found: true},
		{name: "array element", path: "items[1].id", expected: "2", found: true},
		{name: "dotted index", path: "user.tags.0", expected: `"a"`, found: true},
		{name: "nested arrays", path: "matrix[1][2]", expected: "5", found: true},
		{name: "quoted key", path: "headers['content-type']", expected: `"json"`, found: true},
		{name: "numeric key on object", path: "headers[0]", expected: `"zero"`, found: true},
		{name: "key containing dot", path: `["a.b"]`, expected: `"dotted"`, found: true},
		{name: "explicit null is found", path: "user.nothing", expected: "null", found: true},
		{name: "empty path is root", path: "", expected: value.JSONText(root), found: true},
		{name: "missing key", path: "user.email", found: false},
		{name: "index out of range", path: "items[2]", found: false},
		{name: "negative index", path: "items[-1]", found: false},
		{name: "non-numeric index on array", path: "items.first", found: false},
		{name: "step into scalar", path: "user.name.first", found: false},
		{name: "step into null", path: "user.nothing.x", found: false},
		{name: "invalid syntax", path: "items[0", found: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Resolve(root, tt.path)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.expected, value.JSONText(got))
			} else {
				assert.True(t, got.IsNull())
			}
		})
	}
}

func TestResolve_ScalarRoot(t *testing.T) {
	t.Parallel()

	got, ok := Resolve(value.String("x"), "")
	require.True(t, ok)
	assert.Equal(t, "x", value.Text(got))

	_, ok = Resolve(value.String("x"), "length")
	assert.False(t, ok)
}

func TestResolveDisplayString(t *testing.T) {
	t.Parallel()

	root := value.MustParseJSON(`{"s":"text","n":4.0,"b":false,"z":null,"arr":[1,2],"o":{"k":"v"}}`)

	tests := []struct {
		path     string
		expected string
		ok       bool
	}{
		{path: "s", expected: "text", ok: true},
		{path: "n", expected: "4", ok: true},
		{path: "b", expected: "False", ok: true},
		{path: "z", ok: false},
		{path: "arr", expected: "2", ok: true},
		{path: "o", expected: `{"k":"v"}`, ok: true},
		{path: "missing", ok: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			got, ok := ResolveDisplayString(root, tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}
