package datefmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input     string
		ok        bool
		hasOffset bool
	}{
		{input: "2024-03-15T14:30:45Z", ok: true, hasOffset: true},
		{input: "2024-03-15T14:30:45.123+02:00", ok: true, hasOffset: true},
		{input: "2024-03-15T14:30:45", ok: true},
		{input: "2024-03-15 14:30:45", ok: true},
		{input: "2024-03-15", ok: true},
		{input: "03/15/2024", ok: true},
		{input: "Fri, 15 Mar 2024 14:30:45 GMT", ok: true, hasOffset: true},
		{input: "March 15, 2024", ok: true},
		{input: "hello world", ok: false},
		{input: "12", ok: false},
		{input: "2024-13-45", ok: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			p, ok := Parse(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.hasOffset, p.HasOffset)
		})
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	utc, ok := Parse("2024-03-15T14:30:45Z")
	require.True(t, ok)
	withOffset, ok := Parse("2024-03-15T14:30:45.123+02:00")
	require.True(t, ok)
	local, ok := Parse("2024-03-15 09:05:00")
	require.True(t, ok)

	tests := []struct {
		name     string
		input    Parsed
		spec     string
		expected string
	}{
		{name: "iso date", input: utc, spec: "yyyy-MM-dd", expected: "2024-03-15"},
		{name: "european", input: utc, spec: "dd/MM/yyyy HH:mm", expected: "15/03/2024 14:30"},
		{name: "long date", input: utc, spec: "D", expected: "Friday, 15 March 2024"},
		{name: "twelve hour", input: utc, spec: "hh:mm tt", expected: "02:30 PM"},
		{name: "short month", input: utc, spec: "MMM d, yyyy", expected: "Mar 15, 2024"},
		{name: "two digit year", input: utc, spec: "yy", expected: "24"},
		{name: "quoted literal", input: utc, spec: "'Year' yyyy", expected: "Year 2024"},
		{name: "round trip", input: utc, spec: "o", expected: "2024-03-15T14:30:45.0000000Z"},
		{name: "sortable", input: utc, spec: "s", expected: "2024-03-15T14:30:45"},
		{name: "universal sortable", input: withOffset, spec: "u", expected: "2024-03-15 12:30:45Z"},
		{name: "rfc1123", input: utc, spec: "R", expected: "Fri, 15 Mar 2024 14:30:45 GMT"},
		{name: "milliseconds", input: withOffset, spec: "HH:mm:ss.fff", expected: "14:30:45.123"},
		{name: "trimmed fraction", input: utc, spec: "ss.FFF", expected: "45"},
		{name: "offset", input: withOffset, spec: "zzz", expected: "+02:00"},
		{name: "kind with offset", input: withOffset, spec: "HH:mmK", expected: "14:30+02:00"},
		{name: "kind utc", input: utc, spec: "HH:mmK", expected: "14:30Z"},
		{name: "kind unspecified", input: local, spec: "HH:mmK", expected: "09:05"},
		{name: "general default", input: local, spec: "", expected: "03/15/2024 09:05:00"},
		{name: "short time", input: local, spec: "t", expected: "09:05"},
		{name: "single digit fields", input: local, spec: "H:m d/M", expected: "9:5 15/3"},
		{name: "month day", input: local, spec: "M", expected: "March 15"},
		{name: "year month", input: local, spec: "Y", expected: "2024 March"},
		{name: "escape", input: local, spec: `\h\h HH`, expected: "hh 09"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, Format(tt.input, tt.spec))
		})
	}
}
