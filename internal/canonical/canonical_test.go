package canonical

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
		{"null", nil, "null"},
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"int64", int64(-100), "-100"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"empty array", []any{}, "[]"},
		{"empty object", map[string]any{}, "{}"},
		{"array", []any{1, "a", nil}, `[1,"a",null]`},
		{"simple object", map[string]any{"a": 1}, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Marshal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalSortedKeys(t *testing.T) {
	obj := map[string]any{
		"zebra": 1,
		"alpha": map[string]any{"b": 1, "a": 2},
		"beta":  3,
	}

	result, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":{"a":2,"b":1},"beta":3,"zebra":1}`, string(result))
}

func TestSortedKeysUTF16Order(t *testing.T) {
	// U+1F600 is a surrogate pair in UTF-16 (0xD83D...) and sorts before U+FF21,
	// while UTF-8 byte order puts it after.
	keys := SortedKeys(map[string]any{"\uFF21": 1, "\U0001F600": 2})
	assert.Equal(t, []string{"\U0001F600", "\uFF21"}, keys)
}

func TestMarshalNoHTMLEscape(t *testing.T) {
	result, err := Marshal("<a>&</a>")
	require.NoError(t, err)
	assert.Equal(t, `"<a>&</a>"`, string(result))
}

func TestMarshalNFC(t *testing.T) {
	// "e" + combining acute accent normalizes to U+00E9.
	result, err := Marshal("e\u0301")
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(result))
}

func TestMarshalLineSeparators(t *testing.T) {
	result, err := Marshal("a\u2028b\u2029c")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(result))

	// A literal backslash followed by "u2028" must stay escaped.
	result, err = Marshal(`x\u2028`)
	require.NoError(t, err)
	assert.Equal(t, `"x\\u2028"`, string(result))
}

func TestMarshalControlCharacters(t *testing.T) {
	result, err := Marshal("tab\there\n\"q\"")
	require.NoError(t, err)
	assert.Equal(t, `"tab\there\n\"q\""`, string(result))
}

func TestMarshalRejectsFloats(t *testing.T) {
	_, err := Marshal(map[string]any{"x": []any{1.5}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats are forbidden")
	assert.Contains(t, err.Error(), `value for key "x"`)
}

func TestMarshalRejectsUnsupported(t *testing.T) {
	_, err := Marshal(struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")
}

func TestDigest(t *testing.T) {
	d1, data, err := Digest(DomainValue, map[string]any{"b": 1, "a": "x"})
	require.NoError(t, err)
	assert.Equal(t, `{"a":"x","b":1}`, string(data))
	assert.Len(t, d1, 64)

	d2, _, err := Digest(DomainValue, map[string]any{"a": "x", "b": 1})
	require.NoError(t, err)
	assert.Equal(t, d1, d2, "key order must not change the digest")

	d3, _, err := Digest("other/domain", map[string]any{"a": "x", "b": 1})
	require.NoError(t, err)
	assert.NotEqual(t, d1, d3, "domain separation")
}
