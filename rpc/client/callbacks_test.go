package client

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ValentinKolb/dJSON/lib/document"
	"github.com/ValentinKolb/dJSON/rpc/common"
)

// allCommands lists every module command the client speaks
var allCommands = []common.CommandName{
	common.CmdSet,
	common.CmdGet,
	common.CmdMGet,
	common.CmdDel,
	common.CmdForget,
	common.CmdClear,
	common.CmdNumIncrBy,
	common.CmdNumMultBy,
	common.CmdToggle,
	common.CmdStrAppend,
	common.CmdStrLen,
	common.CmdArrAppend,
	common.CmdArrIndex,
	common.CmdArrInsert,
	common.CmdArrLen,
	common.CmdArrPop,
	common.CmdArrTrim,
	common.CmdObjKeys,
	common.CmdObjLen,
	common.CmdResp,
	common.CmdDebug,
}

// TestCallbackTableCoverage tests that every module command has exactly one
// response transform
func TestCallbackTableCoverage(t *testing.T) {
	table := moduleCallbacks(document.NewCodec())

	for _, name := range allCommands {
		if _, ok := table[name]; !ok {
			t.Errorf("Expected a response transform for %s", name)
		}
	}

	if len(table) != len(allCommands) {
		t.Errorf("Expected %d transforms, got %d", len(allCommands), len(table))
	}
}

// TestCountTransform tests the integer conversion used by the deletion
// style commands
func TestCountTransform(t *testing.T) {
	testCases := []struct {
		name     string
		raw      any
		expected int64
	}{
		{"Int64", int64(3), 3},
		{"Int", 2, 2},
		{"Zero", int64(0), 0},
		{"Absence", nil, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := asInt(tc.raw)
			if err != nil {
				t.Fatalf("Failed to convert %v: %v", tc.raw, err)
			}
			if resp != tc.expected {
				t.Errorf("Expected %d, got %v", tc.expected, resp)
			}
		})
	}

	// Anything non-numeric refuses to decode
	if _, err := asInt("three"); err == nil {
		t.Errorf("Expected error for a textual reply")
	} else {
		var decodeErr *document.DecodeError
		if !errors.As(err, &decodeErr) {
			t.Errorf("Expected a DecodeError, got %T", err)
		}
	}
}

// TestAckTransform tests the conditional write acknowledgement conversion
func TestAckTransform(t *testing.T) {
	testCases := []struct {
		name     string
		raw      any
		expected bool
	}{
		{"Token", "OK", true},
		{"TokenBytes", []byte("OK"), true},
		{"TokenLowercase", "ok", true},
		{"TokenMixedCase", "Ok", true},
		{"Absence", nil, false},
		{"OtherText", "QUEUED", false},
		{"OtherType", int64(1), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := asAckFlag(tc.raw)
			if err != nil {
				t.Fatalf("Failed to convert %v: %v", tc.raw, err)
			}
			if resp != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, resp)
			}
		})
	}
}

// TestDocumentTransform tests that document replies run through the codec's
// fallback chain
func TestDocumentTransform(t *testing.T) {
	decode := decodeDocument(document.NewCodec())

	// Serialized text becomes a structured value
	resp, err := decode([]byte(`{"a":1}`))
	if err != nil {
		t.Fatalf("Failed to decode object text: %v", err)
	}
	expected := document.Object(map[string]document.Value{"a": document.Number(1)})
	if v, ok := resp.(document.Value); !ok || !v.Equal(expected) {
		t.Errorf("Expected %v, got %v", expected, resp)
	}

	// Absence becomes the null value
	resp, err = decode(nil)
	if err != nil {
		t.Fatalf("Failed to decode absence: %v", err)
	}
	if v, ok := resp.(document.Value); !ok || !v.IsNull() {
		t.Errorf("Expected the null value, got %v", resp)
	}

	// Unsupported raw types refuse to decode
	if _, err := decode(struct{}{}); err == nil {
		t.Errorf("Expected error for an unsupported reply type")
	}
}

// TestBulkTransform tests the element-wise conversion of sequence replies
func TestBulkTransform(t *testing.T) {
	bulk := bulkOfDocuments(document.NewCodec())

	// Absent elements stay null, the order is preserved
	resp, err := bulk([]any{[]byte(`"x"`), nil, []byte(`"y"`)})
	if err != nil {
		t.Fatalf("Failed to convert sequence reply: %v", err)
	}
	expected := []document.Value{document.String("x"), document.Null(), document.String("y")}
	if !reflect.DeepEqual(resp, expected) {
		t.Errorf("Expected %v, got %v", expected, resp)
	}

	// An empty sequence stays empty
	resp, err = bulk([]any{})
	if err != nil {
		t.Fatalf("Failed to convert empty sequence: %v", err)
	}
	if values, ok := resp.([]document.Value); !ok || len(values) != 0 {
		t.Errorf("Expected an empty value slice, got %v", resp)
	}

	// Anything but a sequence refuses to decode
	if _, err := bulk("not a sequence"); err == nil {
		t.Errorf("Expected error for a non-sequence reply")
	} else {
		var decodeErr *document.DecodeError
		if !errors.As(err, &decodeErr) {
			t.Errorf("Expected a DecodeError, got %T", err)
		}
	}

	// One undecodable element fails the whole conversion
	if _, err := bulk([]any{[]byte(`"x"`), struct{}{}}); err == nil {
		t.Errorf("Expected error for an undecodable element")
	}
}
