package document

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Codec Interface
// --------------------------------------------------------------------------

// ICodec is the interface for converting between canonical Values and the
// raw wire shapes a transport surfaces.
type ICodec interface {
	// Encode serializes a Value into JSON text
	// It returns the serialized byte array and an error if any
	Encode(v Value) ([]byte, error)
	// Decode interprets a raw wire reply as a canonical Value
	// The raw reply may be nil, textual JSON ([]byte or string), a
	// pre-parsed scalar (int64, int, float64, bool) or a pre-parsed
	// composite ([]any, map[string]any) with any mix of the above nested
	// inside. It returns the decoded Value and an error if the reply
	// matches none of those shapes.
	Decode(raw any) (Value, error)
}

// NewCodec creates a new codec using json encoding
func NewCodec() ICodec {
	return &jsonCodecImpl{}
}

// --------------------------------------------------------------------------
// Decode Error
// --------------------------------------------------------------------------

// DecodeError is returned when a raw wire reply matches no decode rule.
type DecodeError struct {
	Raw    any
	Reason string
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("document: cannot decode reply of type %T: %s", e.Raw, e.Reason)
}

// --------------------------------------------------------------------------
// JSON Implementation
// --------------------------------------------------------------------------

// jsonCodecImpl implements the ICodec interface using encoding/json.
type jsonCodecImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see document.ICodec)
// --------------------------------------------------------------------------

func (c jsonCodecImpl) Encode(v Value) ([]byte, error) {
	return json.Marshal(v.Native())
}

// Decode applies an ordered fallback chain, first match wins:
//
//  1. nil is the absence reply and decodes to Null. No other input ever
//     produces Null.
//  2. Textual input ([]byte or string) is parsed as JSON. A successful
//     parse with a non-null result is the answer. A parse that fails, or
//     one that yields null, falls back to the raw text verbatim so no
//     payload is ever lost and Null stays reserved for absence.
//  3. Pre-parsed scalars map directly to their Value kind.
//  4. Pre-parsed composites are re-interpreted element by element with
//     this same chain, so serialized text and parsed scalars can sit side
//     by side in one reply.
func (c jsonCodecImpl) Decode(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case []byte:
		return decodeText(string(x)), nil
	case string:
		return decodeText(x), nil
	case bool:
		return Bool(x), nil
	case int64:
		return Number(float64(x)), nil
	case int:
		return Number(float64(x)), nil
	case float64:
		return Number(x), nil
	case []any:
		elems := make([]Value, len(x))
		for i, e := range x {
			v, err := c.Decode(e)
			if err != nil {
				return Null(), err
			}
			elems[i] = v
		}
		return Value{kind: KindArray, a: elems}, nil
	case map[string]any:
		fields := make(map[string]Value, len(x))
		for k, e := range x {
			v, err := c.Decode(e)
			if err != nil {
				return Null(), err
			}
			fields[k] = v
		}
		return Value{kind: KindObject, o: fields}, nil
	default:
		return Null(), &DecodeError{Raw: raw, Reason: "no decode rule matches"}
	}
}

// decodeText parses textual JSON, falling back to the verbatim text when the
// parse fails or yields null.
func decodeText(text string) Value {
	var native any
	if err := json.Unmarshal([]byte(text), &native); err != nil || native == nil {
		return String(text)
	}
	v, err := FromNative(native)
	if err != nil {
		return String(text)
	}
	return v
}
