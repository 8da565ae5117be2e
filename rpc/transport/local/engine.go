package local

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/ValentinKolb/dJSON/lib/document"
	"github.com/ValentinKolb/dJSON/rpc/common"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Core Engine Structure
// --------------------------------------------------------------------------

// Engine is an in-process document keyspace that answers module commands
// with the same raw reply shapes a real server produces. It backs the local
// transport for tests and offline use.
type Engine struct {
	docs    *xsync.MapOf[string, document.Value] // parsed documents
	raw     *xsync.MapOf[string, []byte]         // plain values of core store commands
	codec   document.ICodec
	opCount atomic.Uint64 // total executed commands
}

// NewEngine creates a new empty engine.
//
// Thread-safety: the returned engine is safe for concurrent use.
func NewEngine() *Engine {
	return &Engine{
		docs:  xsync.NewMapOf[string, document.Value](),
		raw:   xsync.NewMapOf[string, []byte](),
		codec: document.NewCodec(),
	}
}

// OpCount returns the total number of commands this engine has executed.
// Tests use it to observe that discarded batches cause no traffic.
func (e *Engine) OpCount() uint64 {
	return e.opCount.Load()
}

// --------------------------------------------------------------------------
// Command Dispatch
// --------------------------------------------------------------------------

// Execute runs a single command against the keyspace and returns its raw
// wire reply. Unknown commands yield an error like a real server would.
//
// Thread-safety: this method is thread-safe, mutations are atomic per key.
func (e *Engine) Execute(name common.CommandName, args []any) (any, error) {
	e.opCount.Add(1)

	switch name {
	case common.CmdSet:
		return e.executeSet(args)
	case common.CmdGet:
		return e.executeGet(args)
	case common.CmdMGet:
		return e.executeMGet(args)
	case common.CmdDel, common.CmdForget:
		return e.executeDel(args)
	case common.CmdClear:
		return e.executeClear(args)
	case common.CmdNumIncrBy:
		return e.executeNumOp(args, func(old, operand float64) float64 { return old + operand })
	case common.CmdNumMultBy:
		return e.executeNumOp(args, func(old, operand float64) float64 { return old * operand })
	case common.CmdToggle:
		return e.executeToggle(args)
	case common.CmdStrAppend:
		return e.executeStrAppend(args)
	case common.CmdStrLen:
		return e.executeStrLen(args)
	case common.CmdArrAppend:
		return e.executeArrAppend(args)
	case common.CmdArrIndex:
		return e.executeArrIndex(args)
	case common.CmdArrInsert:
		return e.executeArrInsert(args)
	case common.CmdArrLen:
		return e.executeArrLen(args)
	case common.CmdArrPop:
		return e.executeArrPop(args)
	case common.CmdArrTrim:
		return e.executeArrTrim(args)
	case common.CmdObjKeys:
		return e.executeObjKeys(args)
	case common.CmdObjLen:
		return e.executeObjLen(args)
	case common.CmdResp:
		return e.executeResp(args)
	case common.CmdDebug:
		return e.executeDebug(args)
	case "SET":
		return e.executeRawSet(args)
	case "GET":
		return e.executeRawGet(args)
	case "DEL":
		return e.executeRawDel(args)
	case "EXISTS":
		return e.executeRawExists(args)
	case "PING":
		return "PONG", nil
	case "ECHO":
		if len(args) != 1 {
			return nil, fmt.Errorf("ERR wrong number of arguments for 'echo' command")
		}
		msg, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		return []byte(msg), nil
	default:
		return nil, fmt.Errorf("ERR unknown command '%s'", name)
	}
}

// --------------------------------------------------------------------------
// Document Write Commands
// --------------------------------------------------------------------------

func (e *Engine) executeSet(args []any) (any, error) {
	if len(args) < 3 || len(args) > 4 {
		return nil, fmt.Errorf("ERR wrong number of arguments for 'json.set' command")
	}
	key, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	path, err := argString(args, 1)
	if err != nil {
		return nil, err
	}
	text, err := argString(args, 2)
	if err != nil {
		return nil, err
	}

	// Optional NX/XX condition token
	var nx, xx bool
	if len(args) == 4 {
		cond, err := argString(args, 3)
		if err != nil {
			return nil, err
		}
		switch strings.ToUpper(cond) {
		case "NX":
			nx = true
		case "XX":
			xx = true
		default:
			return nil, fmt.Errorf("ERR syntax error")
		}
	}

	newVal, err := parseJSON(text)
	if err != nil {
		return nil, err
	}

	steps, err := parsePath(path)
	if err != nil {
		return nil, err
	}

	// Reply and error are captured from inside the atomic update
	var (
		reply any
		opErr error
	)

	e.docs.Compute(key, func(doc document.Value, loaded bool) (document.Value, bool) {
		if len(steps) == 0 {
			// Whole document write
			if (nx && loaded) || (xx && !loaded) {
				reply = nil
				return doc, !loaded // don't create an entry for the failed condition
			}
			reply = common.AckToken
			return newVal, false
		}

		// Sub-path write requires an existing document
		if !loaded {
			opErr = fmt.Errorf("ERR new objects must be created at the root")
			return doc, true
		}

		_, leafExists := getAtPath(doc, steps)
		if (nx && leafExists) || (xx && !leafExists) {
			reply = nil
			return doc, false
		}

		updated, ok := setAtPath(doc, steps, newVal)
		if !ok {
			opErr = fmt.Errorf("ERR path '%s' does not exist", path)
			return doc, false
		}
		reply = common.AckToken
		return updated, false
	})

	if opErr != nil {
		return nil, opErr
	}
	return reply, nil
}

func (e *Engine) executeDel(args []any) (any, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, fmt.Errorf("ERR wrong number of arguments for 'json.del' command")
	}
	key, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	path := common.RootPath
	if len(args) == 2 {
		if path, err = argString(args, 1); err != nil {
			return nil, err
		}
	}
	steps, err := parsePath(path)
	if err != nil {
		return nil, err
	}

	var removed int64
	e.docs.Compute(key, func(doc document.Value, loaded bool) (document.Value, bool) {
		if !loaded {
			return doc, true
		}
		if len(steps) == 0 {
			removed = 1
			return doc, true // delete the whole key
		}
		updated, ok := deleteAtPath(doc, steps)
		if !ok {
			return doc, false
		}
		removed = 1
		return updated, false
	})
	return removed, nil
}

func (e *Engine) executeClear(args []any) (any, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, fmt.Errorf("ERR wrong number of arguments for 'json.clear' command")
	}
	key, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	path := common.RootPath
	if len(args) == 2 {
		if path, err = argString(args, 1); err != nil {
			return nil, err
		}
	}
	steps, err := parsePath(path)
	if err != nil {
		return nil, err
	}

	// Containers are emptied, numbers are zeroed, every other kind is
	// left alone and not counted
	clearValue := func(v document.Value) (document.Value, int64) {
		switch v.Kind() {
		case document.KindArray:
			return document.Array(), 1
		case document.KindObject:
			return document.Object(nil), 1
		case document.KindNumber:
			if v.NumberVal() == 0 {
				return v, 0
			}
			return document.Number(0), 1
		default:
			return v, 0
		}
	}

	var cleared int64
	e.docs.Compute(key, func(doc document.Value, loaded bool) (document.Value, bool) {
		if !loaded {
			return doc, true
		}
		target, ok := getAtPath(doc, steps)
		if !ok {
			return doc, false
		}
		newVal, n := clearValue(target)
		if n == 0 {
			return doc, false
		}
		updated, ok := setAtPath(doc, steps, newVal)
		if !ok {
			return doc, false
		}
		cleared = n
		return updated, false
	})
	return cleared, nil
}

// --------------------------------------------------------------------------
// Document Read Commands
// --------------------------------------------------------------------------

func (e *Engine) executeGet(args []any) (any, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("ERR wrong number of arguments for 'json.get' command")
	}
	key, err := argString(args, 0)
	if err != nil {
		return nil, err
	}

	doc, ok := e.docs.Load(key)
	if !ok {
		return nil, nil
	}

	// No path means the whole document
	if len(args) == 1 {
		return e.encodeReply(doc)
	}

	// Single path returns the value at that path
	if len(args) == 2 {
		path, err := argString(args, 1)
		if err != nil {
			return nil, err
		}
		target, err := e.resolvePath(doc, path)
		if err != nil {
			return nil, err
		}
		return e.encodeReply(target)
	}

	// Multiple paths return one object keyed by path
	fields := make(map[string]document.Value, len(args)-1)
	for _, arg := range args[1:] {
		path, err := asText(arg)
		if err != nil {
			return nil, err
		}
		target, err := e.resolvePath(doc, path)
		if err != nil {
			return nil, err
		}
		fields[path] = target
	}
	return e.encodeReply(document.Object(fields))
}

func (e *Engine) executeMGet(args []any) (any, error) {
	// The path travels last on the wire: JSON.MGET key [key ...] path
	if len(args) < 2 {
		return nil, fmt.Errorf("ERR wrong number of arguments for 'json.mget' command")
	}
	path, err := argString(args, len(args)-1)
	if err != nil {
		return nil, err
	}
	steps, err := parsePath(path)
	if err != nil {
		return nil, err
	}

	replies := make([]any, 0, len(args)-1)
	for _, arg := range args[:len(args)-1] {
		key, err := asText(arg)
		if err != nil {
			return nil, err
		}
		doc, ok := e.docs.Load(key)
		if !ok {
			replies = append(replies, nil)
			continue
		}
		target, ok := getAtPath(doc, steps)
		if !ok {
			// A missing path counts as absence for this key only
			replies = append(replies, nil)
			continue
		}
		data, err := e.encodeReply(target)
		if err != nil {
			return nil, err
		}
		replies = append(replies, data)
	}
	return replies, nil
}

func (e *Engine) executeResp(args []any) (any, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, fmt.Errorf("ERR wrong number of arguments for 'json.resp' command")
	}
	key, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	doc, ok := e.docs.Load(key)
	if !ok {
		return nil, nil
	}
	target := doc
	if len(args) == 2 {
		path, err := argString(args, 1)
		if err != nil {
			return nil, err
		}
		if target, err = e.resolvePath(doc, path); err != nil {
			return nil, err
		}
	}
	return respForm(target), nil
}

func (e *Engine) executeDebug(args []any) (any, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("ERR wrong number of arguments for 'json.debug' command")
	}
	sub, err := argString(args, 0)
	if err != nil {
		return nil, err
	}

	switch strings.ToUpper(sub) {
	case "MEMORY":
		if len(args) < 2 || len(args) > 3 {
			return nil, fmt.Errorf("ERR wrong number of arguments for 'json.debug memory' command")
		}
		key, err := argString(args, 1)
		if err != nil {
			return nil, err
		}
		doc, ok := e.docs.Load(key)
		if !ok {
			return int64(0), nil
		}
		target := doc
		if len(args) == 3 {
			path, err := argString(args, 2)
			if err != nil {
				return nil, err
			}
			if target, err = e.resolvePath(doc, path); err != nil {
				return nil, err
			}
		}
		data, err := e.codec.Encode(target)
		if err != nil {
			return nil, err
		}
		return int64(len(data)), nil
	case "HELP":
		return []any{
			[]byte("MEMORY <key> [path] - reports memory usage"),
			[]byte("HELP                - this message"),
		}, nil
	default:
		return nil, fmt.Errorf("ERR unknown subcommand '%s'", sub)
	}
}

// --------------------------------------------------------------------------
// Number and Boolean Commands
// --------------------------------------------------------------------------

func (e *Engine) executeNumOp(args []any, apply func(old, operand float64) float64) (any, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("ERR wrong number of arguments")
	}
	key, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	path, err := argString(args, 1)
	if err != nil {
		return nil, err
	}
	operand, err := argFloat(args, 2)
	if err != nil {
		return nil, err
	}

	var reply any
	opErr := e.updateLeaf(key, path, func(leaf document.Value) (document.Value, error) {
		if leaf.Kind() != document.KindNumber {
			return leaf, fmt.Errorf("ERR path '%s' does not hold a number", path)
		}
		newVal := apply(leaf.NumberVal(), operand)
		reply = []byte(strconv.FormatFloat(newVal, 'g', -1, 64))
		return document.Number(newVal), nil
	})
	if opErr != nil {
		return nil, opErr
	}
	return reply, nil
}

func (e *Engine) executeToggle(args []any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("ERR wrong number of arguments for 'json.toggle' command")
	}
	key, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	path, err := argString(args, 1)
	if err != nil {
		return nil, err
	}

	var reply any
	opErr := e.updateLeaf(key, path, func(leaf document.Value) (document.Value, error) {
		if leaf.Kind() != document.KindBool {
			return leaf, fmt.Errorf("ERR path '%s' does not hold a boolean", path)
		}
		toggled := !leaf.BoolVal()
		reply = strconv.FormatBool(toggled)
		return document.Bool(toggled), nil
	})
	if opErr != nil {
		return nil, opErr
	}
	return reply, nil
}

// --------------------------------------------------------------------------
// String Commands
// --------------------------------------------------------------------------

func (e *Engine) executeStrAppend(args []any) (any, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("ERR wrong number of arguments for 'json.strappend' command")
	}
	key, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	path, err := argString(args, 1)
	if err != nil {
		return nil, err
	}
	text, err := argString(args, 2)
	if err != nil {
		return nil, err
	}

	// The appended value travels JSON-encoded
	suffix, err := parseJSON(text)
	if err != nil {
		return nil, err
	}
	if suffix.Kind() != document.KindString {
		return nil, fmt.Errorf("ERR value is not a string")
	}

	var reply any
	opErr := e.updateLeaf(key, path, func(leaf document.Value) (document.Value, error) {
		if leaf.Kind() != document.KindString {
			return leaf, fmt.Errorf("ERR path '%s' does not hold a string", path)
		}
		combined := leaf.StringVal() + suffix.StringVal()
		reply = int64(len(combined))
		return document.String(combined), nil
	})
	if opErr != nil {
		return nil, opErr
	}
	return reply, nil
}

func (e *Engine) executeStrLen(args []any) (any, error) {
	return e.lengthOf(args, document.KindString, "string")
}

// --------------------------------------------------------------------------
// Array Commands
// --------------------------------------------------------------------------

func (e *Engine) executeArrAppend(args []any) (any, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("ERR wrong number of arguments for 'json.arrappend' command")
	}
	key, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	path, err := argString(args, 1)
	if err != nil {
		return nil, err
	}
	elems, err := parseJSONArgs(args[2:])
	if err != nil {
		return nil, err
	}

	var reply any
	opErr := e.updateLeaf(key, path, func(leaf document.Value) (document.Value, error) {
		if leaf.Kind() != document.KindArray {
			return leaf, fmt.Errorf("ERR path '%s' does not hold an array", path)
		}
		combined := append(leaf.ArrayVal(), elems...)
		reply = int64(len(combined))
		return document.Array(combined...), nil
	})
	if opErr != nil {
		return nil, opErr
	}
	return reply, nil
}

func (e *Engine) executeArrIndex(args []any) (any, error) {
	if len(args) < 3 || len(args) > 5 {
		return nil, fmt.Errorf("ERR wrong number of arguments for 'json.arrindex' command")
	}
	key, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	path, err := argString(args, 1)
	if err != nil {
		return nil, err
	}
	text, err := argString(args, 2)
	if err != nil {
		return nil, err
	}
	needle, err := parseJSON(text)
	if err != nil {
		return nil, err
	}

	start := int64(0)
	stop := int64(0)
	if len(args) >= 4 {
		if start, err = argInt(args, 3); err != nil {
			return nil, err
		}
	}
	if len(args) == 5 {
		if stop, err = argInt(args, 4); err != nil {
			return nil, err
		}
	}

	doc, ok := e.docs.Load(key)
	if !ok {
		return nil, fmt.Errorf("ERR key does not exist")
	}
	target, err := e.resolvePath(doc, path)
	if err != nil {
		return nil, err
	}
	if target.Kind() != document.KindArray {
		return nil, fmt.Errorf("ERR path '%s' does not hold an array", path)
	}

	elems := target.ArrayVal()
	length := int64(len(elems))
	from := normIndex(start, length)
	if from < 0 {
		from = 0
	}
	// A stop of zero means the end of the array, the range is inclusive
	to := length - 1
	if stop != 0 {
		to = normIndex(stop, length)
	}
	if to >= length {
		to = length - 1
	}
	for i := from; i <= to && i >= 0 && i < length; i++ {
		if elems[i].Equal(needle) {
			return i, nil
		}
	}
	return int64(-1), nil
}

func (e *Engine) executeArrInsert(args []any) (any, error) {
	if len(args) < 4 {
		return nil, fmt.Errorf("ERR wrong number of arguments for 'json.arrinsert' command")
	}
	key, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	path, err := argString(args, 1)
	if err != nil {
		return nil, err
	}
	index, err := argInt(args, 2)
	if err != nil {
		return nil, err
	}
	elems, err := parseJSONArgs(args[3:])
	if err != nil {
		return nil, err
	}

	var reply any
	opErr := e.updateLeaf(key, path, func(leaf document.Value) (document.Value, error) {
		if leaf.Kind() != document.KindArray {
			return leaf, fmt.Errorf("ERR path '%s' does not hold an array", path)
		}
		existing := leaf.ArrayVal()
		length := int64(len(existing))
		at := normIndex(index, length)
		if at < 0 || at > length {
			return leaf, fmt.Errorf("ERR index out of range")
		}
		combined := make([]document.Value, 0, len(existing)+len(elems))
		combined = append(combined, existing[:at]...)
		combined = append(combined, elems...)
		combined = append(combined, existing[at:]...)
		reply = int64(len(combined))
		return document.Array(combined...), nil
	})
	if opErr != nil {
		return nil, opErr
	}
	return reply, nil
}

func (e *Engine) executeArrLen(args []any) (any, error) {
	return e.lengthOf(args, document.KindArray, "array")
}

func (e *Engine) executeArrPop(args []any) (any, error) {
	if len(args) < 1 || len(args) > 3 {
		return nil, fmt.Errorf("ERR wrong number of arguments for 'json.arrpop' command")
	}
	key, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	path := common.RootPath
	if len(args) >= 2 {
		if path, err = argString(args, 1); err != nil {
			return nil, err
		}
	}
	index := int64(-1)
	if len(args) == 3 {
		if index, err = argInt(args, 2); err != nil {
			return nil, err
		}
	}
	steps, err := parsePath(path)
	if err != nil {
		return nil, err
	}

	var (
		reply any
		opErr error
	)
	e.docs.Compute(key, func(doc document.Value, loaded bool) (document.Value, bool) {
		if !loaded {
			reply = nil
			return doc, true
		}
		target, ok := getAtPath(doc, steps)
		if !ok {
			opErr = fmt.Errorf("ERR path '%s' does not exist", path)
			return doc, false
		}
		if target.Kind() != document.KindArray {
			opErr = fmt.Errorf("ERR path '%s' does not hold an array", path)
			return doc, false
		}
		elems := target.ArrayVal()
		if len(elems) == 0 {
			reply = nil
			return doc, false
		}
		// Out of range indices are rounded to the nearest end
		at := normIndex(index, int64(len(elems)))
		if at < 0 {
			at = 0
		}
		if at >= int64(len(elems)) {
			at = int64(len(elems)) - 1
		}
		popped := elems[at]
		remaining := append(elems[:at], elems[at+1:]...)
		updated, ok := setAtPath(doc, steps, document.Array(remaining...))
		if !ok {
			opErr = fmt.Errorf("ERR path '%s' does not exist", path)
			return doc, false
		}
		data, err := e.codec.Encode(popped)
		if err != nil {
			opErr = err
			return doc, false
		}
		reply = data
		return updated, false
	})
	if opErr != nil {
		return nil, opErr
	}
	return reply, nil
}

func (e *Engine) executeArrTrim(args []any) (any, error) {
	if len(args) != 4 {
		return nil, fmt.Errorf("ERR wrong number of arguments for 'json.arrtrim' command")
	}
	key, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	path, err := argString(args, 1)
	if err != nil {
		return nil, err
	}
	start, err := argInt(args, 2)
	if err != nil {
		return nil, err
	}
	stop, err := argInt(args, 3)
	if err != nil {
		return nil, err
	}

	var reply any
	opErr := e.updateLeaf(key, path, func(leaf document.Value) (document.Value, error) {
		if leaf.Kind() != document.KindArray {
			return leaf, fmt.Errorf("ERR path '%s' does not hold an array", path)
		}
		elems := leaf.ArrayVal()
		length := int64(len(elems))
		from := normIndex(start, length)
		to := normIndex(stop, length)
		if from < 0 {
			from = 0
		}
		if to >= length {
			to = length - 1
		}
		if from > to || from >= length {
			reply = int64(0)
			return document.Array(), nil
		}
		kept := elems[from : to+1]
		reply = int64(len(kept))
		return document.Array(kept...), nil
	})
	if opErr != nil {
		return nil, opErr
	}
	return reply, nil
}

// --------------------------------------------------------------------------
// Object Commands
// --------------------------------------------------------------------------

func (e *Engine) executeObjKeys(args []any) (any, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, fmt.Errorf("ERR wrong number of arguments for 'json.objkeys' command")
	}
	key, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	doc, ok := e.docs.Load(key)
	if !ok {
		return nil, nil
	}
	target := doc
	if len(args) == 2 {
		path, err := argString(args, 1)
		if err != nil {
			return nil, err
		}
		if target, err = e.resolvePath(doc, path); err != nil {
			return nil, err
		}
	}
	if target.Kind() != document.KindObject {
		return nil, fmt.Errorf("ERR path does not hold an object")
	}

	// Key names travel as plain bulk strings, sorted for determinism
	fields := target.ObjectVal()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	reply := make([]any, len(names))
	for i, name := range names {
		reply[i] = []byte(name)
	}
	return reply, nil
}

func (e *Engine) executeObjLen(args []any) (any, error) {
	return e.lengthOf(args, document.KindObject, "object")
}

// --------------------------------------------------------------------------
// Core Store Commands
// --------------------------------------------------------------------------

func (e *Engine) executeRawSet(args []any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("ERR wrong number of arguments for 'set' command")
	}
	key, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	value, err := argString(args, 1)
	if err != nil {
		return nil, err
	}
	e.raw.Store(key, []byte(value))
	return common.AckToken, nil
}

func (e *Engine) executeRawGet(args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("ERR wrong number of arguments for 'get' command")
	}
	key, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	value, ok := e.raw.Load(key)
	if !ok {
		return nil, nil
	}
	return value, nil
}

func (e *Engine) executeRawDel(args []any) (any, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("ERR wrong number of arguments for 'del' command")
	}
	var count int64
	for i := range args {
		key, err := argString(args, i)
		if err != nil {
			return nil, err
		}
		if _, ok := e.raw.LoadAndDelete(key); ok {
			count++
		}
	}
	return count, nil
}

func (e *Engine) executeRawExists(args []any) (any, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("ERR wrong number of arguments for 'exists' command")
	}
	var count int64
	for i := range args {
		key, err := argString(args, i)
		if err != nil {
			return nil, err
		}
		if _, ok := e.raw.Load(key); ok {
			count++
		}
	}
	return count, nil
}

// --------------------------------------------------------------------------
// Shared Helpers
// --------------------------------------------------------------------------

// updateLeaf atomically replaces the value at a path inside the document
// stored under key. The update function receives the current leaf and
// returns its replacement.
func (e *Engine) updateLeaf(key, path string, update func(leaf document.Value) (document.Value, error)) error {
	steps, err := parsePath(path)
	if err != nil {
		return err
	}

	var opErr error
	e.docs.Compute(key, func(doc document.Value, loaded bool) (document.Value, bool) {
		if !loaded {
			opErr = fmt.Errorf("ERR key does not exist")
			return doc, true
		}
		leaf, ok := getAtPath(doc, steps)
		if !ok {
			opErr = fmt.Errorf("ERR path '%s' does not exist", path)
			return doc, false
		}
		newLeaf, err := update(leaf)
		if err != nil {
			opErr = err
			return doc, false
		}
		updated, ok := setAtPath(doc, steps, newLeaf)
		if !ok {
			opErr = fmt.Errorf("ERR path '%s' does not exist", path)
			return doc, false
		}
		return updated, false
	})
	return opErr
}

// lengthOf implements the shared shape of STRLEN, ARRLEN and OBJLEN:
// a missing key is absence, a wrong kind is an error, otherwise the length.
func (e *Engine) lengthOf(args []any, kind document.Kind, kindName string) (any, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, fmt.Errorf("ERR wrong number of arguments")
	}
	key, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	doc, ok := e.docs.Load(key)
	if !ok {
		return nil, nil
	}
	target := doc
	if len(args) == 2 {
		path, err := argString(args, 1)
		if err != nil {
			return nil, err
		}
		if target, err = e.resolvePath(doc, path); err != nil {
			return nil, err
		}
	}
	if target.Kind() != kind {
		return nil, fmt.Errorf("ERR path does not hold a %s", kindName)
	}
	return int64(target.Len()), nil
}

// resolvePath parses a path and resolves it inside a document, failing with
// a server style error when the path does not exist.
func (e *Engine) resolvePath(doc document.Value, path string) (document.Value, error) {
	steps, err := parsePath(path)
	if err != nil {
		return document.Null(), err
	}
	target, ok := getAtPath(doc, steps)
	if !ok {
		return document.Null(), fmt.Errorf("ERR path '%s' does not exist", path)
	}
	return target, nil
}

// encodeReply serializes a Value for a textual reply.
func (e *Engine) encodeReply(v document.Value) (any, error) {
	data, err := e.codec.Encode(v)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// respForm converts a Value into the nested protocol form JSON.RESP
// returns: containers become sequences lead by their opening bracket,
// numbers stay numeric when integral, everything else travels as text.
func respForm(v document.Value) any {
	switch v.Kind() {
	case document.KindNull:
		return nil
	case document.KindBool:
		return []byte(strconv.FormatBool(v.BoolVal()))
	case document.KindNumber:
		n := v.NumberVal()
		if n == float64(int64(n)) {
			return int64(n)
		}
		return []byte(strconv.FormatFloat(n, 'g', -1, 64))
	case document.KindString:
		return []byte(v.StringVal())
	case document.KindArray:
		elems := v.ArrayVal()
		form := make([]any, 0, len(elems)+1)
		form = append(form, []byte("["))
		for _, elem := range elems {
			form = append(form, respForm(elem))
		}
		return form
	case document.KindObject:
		fields := v.ObjectVal()
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		form := make([]any, 0, 2*len(names)+1)
		form = append(form, []byte("{"))
		for _, name := range names {
			form = append(form, []byte(name), respForm(fields[name]))
		}
		return form
	default:
		return nil
	}
}

// --------------------------------------------------------------------------
// Argument Coercion
// --------------------------------------------------------------------------

// asText coerces a single argument to text
func asText(arg any) (string, error) {
	switch x := arg.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	default:
		return "", fmt.Errorf("ERR expected text argument, got %T", arg)
	}
}

// argString reads a positional argument as text
func argString(args []any, i int) (string, error) {
	s, err := asText(args[i])
	if err != nil {
		return "", fmt.Errorf("ERR argument %d: expected text, got %T", i, args[i])
	}
	return s, nil
}

// argInt reads a positional argument as an integer
func argInt(args []any, i int) (int64, error) {
	switch x := args[i].(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("ERR argument %d is not an integer", i)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("ERR argument %d: expected integer, got %T", i, args[i])
	}
}

// argFloat reads a positional argument as a number
func argFloat(args []any, i int) (float64, error) {
	switch x := args[i].(type) {
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	case int:
		return float64(x), nil
	case string:
		n, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, fmt.Errorf("ERR argument %d is not a number", i)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("ERR argument %d: expected number, got %T", i, args[i])
	}
}

// parseJSON strictly parses serialized JSON text into a Value. Unlike the
// codec's lossless decode chain this rejects malformed input, a real server
// does the same for document arguments.
func parseJSON(text string) (document.Value, error) {
	var native any
	if err := json.Unmarshal([]byte(text), &native); err != nil {
		return document.Null(), fmt.Errorf("ERR invalid JSON: %v", err)
	}
	return document.FromNative(native)
}

// parseJSONArgs parses a run of serialized JSON arguments.
func parseJSONArgs(args []any) ([]document.Value, error) {
	elems := make([]document.Value, len(args))
	for i := range args {
		text, err := argString(args, i)
		if err != nil {
			return nil, err
		}
		v, err := parseJSON(text)
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}
	return elems, nil
}

// --------------------------------------------------------------------------
// Path Addressing
// --------------------------------------------------------------------------

// pathStep is one step of a parsed path, either an object field or an
// array index.
type pathStep struct {
	field   string
	index   int64
	isIndex bool
}

// parsePath parses the supported path forms: "$", "." and "" address the
// root, "$.a.b", ".a", "a" address object fields and "[n]" array elements,
// in any combination ("$.a[2].b"). Negative indices count from the end.
func parsePath(path string) ([]pathStep, error) {
	s := strings.TrimPrefix(path, "$")
	if s == "" || s == "." {
		return nil, nil
	}

	var steps []pathStep
	i := 0
	// A bare leading field name (legacy form without a dot) is allowed
	if s[0] != '.' && s[0] != '[' {
		s = "." + s
	}
	for i < len(s) {
		switch s[i] {
		case '.':
			i++
			start := i
			for i < len(s) && s[i] != '.' && s[i] != '[' {
				i++
			}
			if start == i {
				return nil, fmt.Errorf("ERR invalid path '%s'", path)
			}
			steps = append(steps, pathStep{field: s[start:i]})
		case '[':
			i++
			start := i
			for i < len(s) && s[i] != ']' {
				i++
			}
			if i >= len(s) {
				return nil, fmt.Errorf("ERR invalid path '%s'", path)
			}
			idx, err := strconv.ParseInt(s[start:i], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("ERR invalid path '%s'", path)
			}
			i++ // skip the closing bracket
			steps = append(steps, pathStep{index: idx, isIndex: true})
		default:
			return nil, fmt.Errorf("ERR invalid path '%s'", path)
		}
	}
	return steps, nil
}

// getAtPath resolves a parsed path inside a document.
func getAtPath(doc document.Value, steps []pathStep) (document.Value, bool) {
	current := doc
	for _, step := range steps {
		if step.isIndex {
			if current.Kind() != document.KindArray {
				return document.Null(), false
			}
			elems := current.ArrayVal()
			at := normIndex(step.index, int64(len(elems)))
			if at < 0 || at >= int64(len(elems)) {
				return document.Null(), false
			}
			current = elems[at]
			continue
		}
		if current.Kind() != document.KindObject {
			return document.Null(), false
		}
		child, ok := current.ObjectVal()[step.field]
		if !ok {
			return document.Null(), false
		}
		current = child
	}
	return current, true
}

// setAtPath replaces the value at a parsed path and returns the updated
// document. The final step may create a new object field, every other step
// must already exist.
func setAtPath(doc document.Value, steps []pathStep, newVal document.Value) (document.Value, bool) {
	if len(steps) == 0 {
		return newVal, true
	}
	step := steps[0]
	if step.isIndex {
		if doc.Kind() != document.KindArray {
			return doc, false
		}
		elems := doc.ArrayVal()
		at := normIndex(step.index, int64(len(elems)))
		if at < 0 || at >= int64(len(elems)) {
			return doc, false
		}
		updated, ok := setAtPath(elems[at], steps[1:], newVal)
		if !ok {
			return doc, false
		}
		elems[at] = updated
		return document.Array(elems...), true
	}
	if doc.Kind() != document.KindObject {
		return doc, false
	}
	fields := doc.ObjectVal()
	child, exists := fields[step.field]
	if !exists {
		// Only a leaf field may be created
		if len(steps) > 1 {
			return doc, false
		}
		child = document.Null()
	}
	updated, ok := setAtPath(child, steps[1:], newVal)
	if !ok {
		return doc, false
	}
	fields[step.field] = updated
	return document.Object(fields), true
}

// deleteAtPath removes the value at a parsed path and returns the updated
// document. It reports whether something was removed.
func deleteAtPath(doc document.Value, steps []pathStep) (document.Value, bool) {
	if len(steps) == 0 {
		return doc, false
	}
	step := steps[0]
	if len(steps) == 1 {
		if step.isIndex {
			if doc.Kind() != document.KindArray {
				return doc, false
			}
			elems := doc.ArrayVal()
			at := normIndex(step.index, int64(len(elems)))
			if at < 0 || at >= int64(len(elems)) {
				return doc, false
			}
			remaining := append(elems[:at], elems[at+1:]...)
			return document.Array(remaining...), true
		}
		if doc.Kind() != document.KindObject {
			return doc, false
		}
		fields := doc.ObjectVal()
		if _, ok := fields[step.field]; !ok {
			return doc, false
		}
		delete(fields, step.field)
		return document.Object(fields), true
	}

	// Walk down one level and rebuild
	if step.isIndex {
		if doc.Kind() != document.KindArray {
			return doc, false
		}
		elems := doc.ArrayVal()
		at := normIndex(step.index, int64(len(elems)))
		if at < 0 || at >= int64(len(elems)) {
			return doc, false
		}
		updated, ok := deleteAtPath(elems[at], steps[1:])
		if !ok {
			return doc, false
		}
		elems[at] = updated
		return document.Array(elems...), true
	}
	if doc.Kind() != document.KindObject {
		return doc, false
	}
	fields := doc.ObjectVal()
	child, ok := fields[step.field]
	if !ok {
		return doc, false
	}
	updated, ok := deleteAtPath(child, steps[1:])
	if !ok {
		return doc, false
	}
	fields[step.field] = updated
	return document.Object(fields), true
}

// normIndex converts a possibly negative index into an absolute one.
func normIndex(i, length int64) int64 {
	if i < 0 {
		return length + i
	}
	return i
}
