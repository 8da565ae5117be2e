package document

import (
	"errors"
	"math"
	"strings"
	"testing"
)

// TestDecodeAbsence tests that the absence reply (and only the absence
// reply) decodes to the null Value
func TestDecodeAbsence(t *testing.T) {
	codec := NewCodec()

	v, err := codec.Decode(nil)
	if err != nil {
		t.Fatalf("Failed to decode nil: %v", err)
	}
	if !v.IsNull() {
		t.Errorf("Expected null for absence, got %s", v)
	}

	// No textual input may produce null, not even the JSON text "null"
	for _, raw := range []any{[]byte("null"), "null", []byte(`""`), []byte("0"), []byte("false")} {
		v, err := codec.Decode(raw)
		if err != nil {
			t.Errorf("Failed to decode %v: %v", raw, err)
			continue
		}
		if v.IsNull() {
			t.Errorf("Expected non-null for input %v, got null", raw)
		}
	}
}

// TestDecodeTextual tests JSON text decoding for scalars and composites,
// for both []byte and string input
func TestDecodeTextual(t *testing.T) {
	codec := NewCodec()

	testCases := []struct {
		name     string
		text     string
		expected Value
	}{
		{"string", `"a"`, String("a")},
		{"integer", "3", Number(3)},
		{"float", "3.5", Number(3.5)},
		{"negative", "-17", Number(-17)},
		{"true", "true", Bool(true)},
		{"false", "false", Bool(false)},
		{"empty string", `""`, String("")},
		{"array", `[1,"two",true,null]`, Array(Number(1), String("two"), Bool(true), Null())},
		{"object", `{"a":1,"b":[false]}`, Object(map[string]Value{"a": Number(1), "b": Array(Bool(false))})},
		{"nested", `{"o":{"k":"v"}}`, Object(map[string]Value{"o": Object(map[string]Value{"k": String("v")})})},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for _, raw := range []any{[]byte(tc.text), tc.text} {
				v, err := codec.Decode(raw)
				if err != nil {
					t.Fatalf("Failed to decode %T %q: %v", raw, tc.text, err)
				}
				if !v.Equal(tc.expected) {
					t.Errorf("Expected %s for %T input, got %s", tc.expected, raw, v)
				}
			}
		})
	}
}

// TestDecodeTextFallback tests that text that fails to parse, or parses to
// null, is returned verbatim as a string Value
func TestDecodeTextFallback(t *testing.T) {
	codec := NewCodec()

	testCases := []struct {
		name string
		text string
	}{
		{"textual null", "null"},
		{"malformed object", "{not json"},
		{"trailing garbage", "1 2 3"},
		{"empty text", ""},
		{"bare word", "OK"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := codec.Decode([]byte(tc.text))
			if err != nil {
				t.Fatalf("Failed to decode %q: %v", tc.text, err)
			}
			if v.Kind() != KindString || v.StringVal() != tc.text {
				t.Errorf("Expected verbatim string %q, got %s", tc.text, v)
			}
		})
	}
}

// TestDecodePreParsed tests scalars a transport surfaces already parsed
func TestDecodePreParsed(t *testing.T) {
	codec := NewCodec()

	testCases := []struct {
		name     string
		raw      any
		expected Value
	}{
		{"int64", int64(7), Number(7)},
		{"int", int(-2), Number(-2)},
		{"float64", 1.25, Number(1.25)},
		{"bool true", true, Bool(true)},
		{"bool false", false, Bool(false)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := codec.Decode(tc.raw)
			if err != nil {
				t.Fatalf("Failed to decode %v: %v", tc.raw, err)
			}
			if !v.Equal(tc.expected) {
				t.Errorf("Expected %s, got %s", tc.expected, v)
			}
		})
	}
}

// TestDecodeStructural tests the recursive re-interpretation of pre-parsed
// composites with heterogeneous leaves
func TestDecodeStructural(t *testing.T) {
	codec := NewCodec()

	testCases := []struct {
		name     string
		raw      any
		expected Value
	}{
		{
			name:     "mixed leaves",
			raw:      []any{[]byte(`"a"`), int64(1), []byte("true")},
			expected: Array(String("a"), Number(1), Bool(true)),
		},
		{
			name:     "nil element stays null",
			raw:      []any{[]byte(`"x"`), nil, []byte(`"y"`)},
			expected: Array(String("x"), Null(), String("y")),
		},
		{
			name:     "nested sequences",
			raw:      []any{[]any{int64(1), []byte("2")}, []byte(`[3]`)},
			expected: Array(Array(Number(1), Number(2)), Array(Number(3))),
		},
		{
			name:     "empty sequence",
			raw:      []any{},
			expected: Array(),
		},
		{
			name:     "map reply",
			raw:      map[string]any{"a": int64(1), "b": []byte(`"x"`)},
			expected: Object(map[string]Value{"a": Number(1), "b": String("x")}),
		},
		{
			name:     "serialized text inside sequence keeps fallback rule",
			raw:      []any{[]byte("null"), nil},
			expected: Array(String("null"), Null()),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := codec.Decode(tc.raw)
			if err != nil {
				t.Fatalf("Failed to decode: %v", err)
			}
			if !v.Equal(tc.expected) {
				t.Errorf("Expected %s, got %s", tc.expected, v)
			}
		})
	}
}

// TestDecodeUnsupported tests that an unsupported reply shape yields a
// DecodeError naming the raw value
func TestDecodeUnsupported(t *testing.T) {
	codec := NewCodec()

	inputs := []any{
		struct{}{},
		complex(1, 2),
		[]int{1, 2},
		map[int]any{1: "x"},
	}

	for _, input := range inputs {
		_, err := codec.Decode(input)
		if err == nil {
			t.Errorf("Expected error for input of type %T but got none", input)
			continue
		}
		var decodeErr *DecodeError
		if !errors.As(err, &decodeErr) {
			t.Errorf("Expected *DecodeError for %T, got %T: %v", input, err, err)
		}
	}

	// A bad leaf inside a composite fails the whole decode
	_, err := codec.Decode([]any{int64(1), struct{}{}})
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Errorf("Expected *DecodeError for a bad leaf, got %v", err)
	}
	if !strings.Contains(err.Error(), "struct") {
		t.Errorf("Expected the error to name the offending type, got %q", err.Error())
	}
}

// TestEncodeDecodeRoundTrip tests that every non-null canonical Value
// survives an encode/decode cycle unchanged
func TestEncodeDecodeRoundTrip(t *testing.T) {
	codec := NewCodec()

	values := []Value{
		Bool(true),
		Bool(false),
		Number(0),
		Number(1234.5),
		Number(-0.001),
		String(""),
		String("with \"quotes\" and \\ slashes"),
		String("unicode: äöü 世界"),
		Array(),
		Array(Number(1), String("two"), Bool(true), Null()),
		Object(map[string]Value{}),
		Object(map[string]Value{
			"nested": Object(map[string]Value{"list": Array(Null(), Number(7))}),
			"flag":   Bool(false),
		}),
	}

	for i, v := range values {
		data, err := codec.Encode(v)
		if err != nil {
			t.Errorf("Failed to encode value %d: %v", i, err)
			continue
		}
		back, err := codec.Decode(data)
		if err != nil {
			t.Errorf("Failed to decode value %d: %v", i, err)
			continue
		}
		if !v.Equal(back) {
			t.Errorf("Value %d doesn't match after round trip:\nOriginal: %s\nResult: %s", i, v, back)
		}
	}
}

// TestEncodeNull tests the one asymmetry of the round trip: null encodes to
// the JSON text "null", which decodes back as the verbatim string because
// null is reserved for absence
func TestEncodeNull(t *testing.T) {
	codec := NewCodec()

	data, err := codec.Encode(Null())
	if err != nil {
		t.Fatalf("Failed to encode null: %v", err)
	}
	if string(data) != "null" {
		t.Fatalf("Expected text 'null', got %q", data)
	}

	back, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if !back.Equal(String("null")) {
		t.Errorf("Expected the verbatim string \"null\", got %s", back)
	}
}

// TestEncodeNonFinite tests that NaN and infinities are rejected
func TestEncodeNonFinite(t *testing.T) {
	codec := NewCodec()

	for _, n := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := codec.Encode(Number(n)); err == nil {
			t.Errorf("Expected error encoding %v but got none", n)
		}
	}
}
