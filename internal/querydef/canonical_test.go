package querydef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical(t *testing.T) {
	testCases := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"no html escaping", "<a & b>", `"<a & b>"`},
		{"int64", int64(-42), `-42`},
		{"int", 7, `7`},
		{"bool", true, `true`},
		{"sorted keys", map[string]any{"b": int64(1), "a": int64(2)}, `{"a":2,"b":1}`},
		{"nested", map[string]any{"z": []any{"x", false}, "a": map[string]any{}}, `{"a":{},"z":["x",false]}`},
		{"control chars escaped", "a\nb", `"a\nb"`},
		{"line separator literal", "a\u2028b", "\"a\u2028b\""},
		{"escaped backslash kept", `\u2028`, `"\\u2028"`},
		{"empty array", []any{}, `[]`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := MarshalCanonical(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(out))
		})
	}
}

func TestMarshalCanonical_UTF16KeyOrder(t *testing.T) {
	// U+FF61 sorts before U+1F600 in UTF-8 bytes but after it in UTF-16,
	// where the emoji becomes a surrogate pair starting 0xD83D.
	obj := map[string]any{"\uff61": int64(1), "\U0001F600": int64(2)}
	out, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":2,\"\uff61\":1}", string(out))
}

func TestMarshalCanonical_NFC(t *testing.T) {
	decomposed := "e\u0301"
	composed := "\u00e9"

	a, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	b, err := MarshalCanonical(composed)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestMarshalCanonical_Rejects(t *testing.T) {
	for name, input := range map[string]any{
		"nil":          nil,
		"float":        1.5,
		"nested float": map[string]any{"a": []any{float32(1)}},
		"struct":       struct{}{},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := MarshalCanonical(input)
			assert.Error(t, err)
		})
	}
}

func TestCanonical_RoundTrip(t *testing.T) {
	defs, err := LoadYAML("testdata/defs/orders.yaml")
	require.NoError(t, err)

	for _, def := range defs {
		t.Run(def.Name, func(t *testing.T) {
			again, err := Decode(def.Canonical())
			require.NoError(t, err)
			again.Source = def.Source
			assert.Equal(t, def, again)
		})
	}
}
