package client

import (
	"strings"

	"github.com/ValentinKolb/dJSON/lib/document"
	"github.com/ValentinKolb/dJSON/rpc/common"
	"github.com/ValentinKolb/dJSON/rpc/transport"
)

// --------------------------------------------------------------------------
// Response Transform Table
// --------------------------------------------------------------------------

// moduleCallbacks builds the response transform table mapping every module
// command to the conversion of its raw wire reply. The table is built once
// per client and never mutated afterwards.
func moduleCallbacks(codec document.ICodec) map[common.CommandName]transport.ResponseTransform {
	decode := decodeDocument(codec)

	table := map[common.CommandName]transport.ResponseTransform{
		// Deletion style commands acknowledge with a count
		common.CmdClear:  asInt,
		common.CmdDel:    asInt,
		common.CmdForget: asInt,

		// A conditional write acknowledges with a token or absence
		common.CmdSet: asAckFlag,

		// One reply per requested key, absence stays null per element
		common.CmdMGet: bulkOfDocuments(codec),
	}

	// Everything else carries a document payload
	for _, name := range []common.CommandName{
		common.CmdGet,
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
	} {
		table[name] = decode
	}

	return table
}

// --------------------------------------------------------------------------
// Transforms
// --------------------------------------------------------------------------

// decodeDocument converts a raw reply into a canonical Value through the
// codec's fallback chain.
func decodeDocument(codec document.ICodec) transport.ResponseTransform {
	return func(raw any) (any, error) {
		v, err := codec.Decode(raw)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

// bulkOfDocuments converts a sequence reply element-wise, one Value per
// requested key. Absent elements stay null, the order is preserved.
func bulkOfDocuments(codec document.ICodec) transport.ResponseTransform {
	return func(raw any) (any, error) {
		elems, ok := raw.([]any)
		if !ok {
			return nil, &document.DecodeError{Raw: raw, Reason: "expected a sequence reply"}
		}
		values := make([]document.Value, len(elems))
		for i, elem := range elems {
			v, err := codec.Decode(elem)
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		return values, nil
	}
}

// asInt converts an integer reply. Absence counts as zero.
func asInt(raw any) (any, error) {
	switch x := raw.(type) {
	case nil:
		return int64(0), nil
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	default:
		return nil, &document.DecodeError{Raw: raw, Reason: "expected an integer reply"}
	}
}

// asAckFlag converts the conditional write acknowledgement into a bool:
// true for the acknowledgement token compared case-insensitively, false for
// absence (the condition was not met) and for anything else.
func asAckFlag(raw any) (any, error) {
	var text string
	switch x := raw.(type) {
	case nil:
		return false, nil
	case string:
		text = x
	case []byte:
		text = string(x)
	default:
		return false, nil
	}
	return strings.EqualFold(text, common.AckToken), nil
}
