package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"negative int64", int64(-100), "-100"},
		{"bool", true, "true"},
		{"empty strings", []string{}, "[]"},
		{"strings", []string{"b", "a"}, `["b","a"]`},
		{"mixed array", []any{1, "two", false}, `[1,"two",false]`},
		{"empty object", map[string]any{}, "{}"},
		{"string map", map[string]string{"b": "1", "a": "2"}, `{"a":"2","b":"1"}`},
		{"nested", map[string]any{"z": map[string]any{"b": 1, "a": 2}, "a": 3}, `{"a":3,"z":{"a":2,"b":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Marshal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(out))
		})
	}
}

func TestMarshalUTF16Ordering(t *testing.T) {
	// U+10000 encodes as a surrogate pair (0xD800...), which sorts before
	// U+E000 in UTF-16 but after it in UTF-8.
	out, err := Marshal(map[string]any{"\uE000": 1, "\U00010000": 2})
	require.NoError(t, err)
	assert.Equal(t, "{\"\U00010000\":2,\"\uE000\":1}", string(out))
}

func TestMarshalNoHTMLEscape(t *testing.T) {
	out, err := Marshal("<b> & </b>")
	require.NoError(t, err)
	assert.Equal(t, `"<b> & </b>"`, string(out))
}

func TestMarshalNFC(t *testing.T) {
	composed, err := Marshal(map[string]string{"caf\u00e9": "caf\u00e9"})
	require.NoError(t, err)
	decomposed, err := Marshal(map[string]string{"cafe\u0301": "cafe\u0301"})
	require.NoError(t, err)
	assert.Equal(t, composed, decomposed)
}

func TestMarshalRejects(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"null", nil, "null"},
		{"nested null", map[string]any{"a": nil}, "null"},
		{"float", 3.14, "float"},
		{"float in array", []any{1, float32(2)}, "float"},
		{"unsupported", struct{}{}, "unsupported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Marshal(tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMarshalStringEscaping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a\nb", `"a\nb"`},
		{`a"b`, `"a\"b"`},
		{`a\b`, `"a\\b"`},
		{"a\u2028b\u2029c", "\"a\u2028b\u2029c\""},
		{`literal \u2028`, `"literal \\u2028"`},
		{`both \u2028 and` + " \u2028", `"both \\u2028 and` + " \u2028\""},
	}
	for _, tt := range tests {
		out, err := Marshal(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, string(out), "input %q", tt.input)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	m := map[string]any{}
	for _, k := range []string{"q", "w", "e", "r", "t", "y", "u", "i", "o", "p"} {
		m[k] = k
	}
	first, err := Marshal(m)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Marshal(m)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCompareUTF16(t *testing.T) {
	assert.Equal(t, 0, CompareUTF16("abc", "abc"))
	assert.Negative(t, CompareUTF16("ab", "abc"))
	assert.Positive(t, CompareUTF16("\uE000", "\U00010000"))
}
