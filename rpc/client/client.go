package client

import (
	"context"
	"fmt"
	"time"

	"github.com/ValentinKolb/dJSON/lib/document"
	"github.com/ValentinKolb/dJSON/rpc/common"
	"github.com/ValentinKolb/dJSON/rpc/transport"
)

// --------------------------------------------------------------------------
// Construction
// --------------------------------------------------------------------------

// ConstructionError reports that registering a response transform failed
// while building a client. A client is never handed out half-wired.
type ConstructionError struct {
	Command common.CommandName
	Err     error
}

// Error implements the error interface.
func (e *ConstructionError) Error() string {
	return fmt.Sprintf("client construction failed: registering response transform for %s: %v", e.Command, e.Err)
}

// Unwrap returns the underlying registration error.
func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// NewDocumentClient creates a new document client.
// The function takes a config, a transport and a codec as parameters.
// It builds the response transform table once, registers it with the
// transport when the transport holds transforms itself, and connects.
// It returns a *DocumentClient and an error.
func NewDocumentClient(
	config common.ClientConfig,
	t transport.IModuleTransport,
	codec document.ICodec,
) (*DocumentClient, error) {

	// Build the immutable transform table
	callbacks := moduleCallbacks(codec)

	// Register the table with the transport if it holds transforms itself.
	// Any registration failure is fatal for the construction.
	if registry, ok := t.(transport.IResponseHookRegistry); ok {
		for name, fn := range callbacks {
			if err := registry.RegisterResponseHook(name, fn); err != nil {
				return nil, &ConstructionError{Command: name, Err: err}
			}
		}
		Logger.Debugf("registered %d response transforms with the transport", len(callbacks))
	}

	// Connect the transport
	if err := t.Connect(config); err != nil {
		return nil, err
	}

	return &DocumentClient{
		config:    config,
		transport: t,
		codec:     codec,
		callbacks: callbacks,
	}, nil
}

// DocumentClient issues JSON document module commands through a transport
// and returns canonical values. All methods are safe for concurrent use.
type DocumentClient struct {
	config    common.ClientConfig
	transport transport.IModuleTransport
	codec     document.ICodec
	callbacks map[common.CommandName]transport.ResponseTransform
}

// invoke is the helper used for all immediate commands. It sends the
// command, applies the response transform from the table and records
// metrics. Commands without a table entry return their raw reply
// unchanged. Transport errors pass through unmodified.
func (c *DocumentClient) invoke(ctx context.Context, name common.CommandName, args ...any) (any, error) {
	start := time.Now()
	observeRequest(name)

	raw, err := c.transport.Send(ctx, name, args...)
	if err != nil {
		observeError(name)
		return nil, err
	}

	resp := raw
	if fn, ok := c.callbacks[name]; ok {
		if resp, err = fn(raw); err != nil {
			observeError(name)
			return nil, err
		}
	}

	observeDuration(name, start)
	return resp, nil
}

// Close closes the underlying transport.
func (c *DocumentClient) Close() error {
	return c.transport.Close()
}

// --------------------------------------------------------------------------
// Document Writes
// --------------------------------------------------------------------------

// Set stores a value at a path inside the document under key. The write can
// be restricted with SetNX or SetXX, a write whose condition is not met
// returns false with no error.
func (c *DocumentClient) Set(ctx context.Context, key, path string, v document.Value, opts ...SetOption) (bool, error) {
	args, err := buildSetArgs(c.codec, key, path, v, opts)
	if err != nil {
		return false, err
	}
	resp, err := c.invoke(ctx, common.CmdSet, args...)
	if err != nil {
		return false, err
	}
	ok, _ := resp.(bool)
	return ok, nil
}

// Del removes the value at a path. It returns how many values were removed.
func (c *DocumentClient) Del(ctx context.Context, key, path string) (int64, error) {
	resp, err := c.invoke(ctx, common.CmdDel, key, path)
	if err != nil {
		return 0, err
	}
	return asCount(resp), nil
}

// Forget is the alias verb for Del.
func (c *DocumentClient) Forget(ctx context.Context, key, path string) (int64, error) {
	resp, err := c.invoke(ctx, common.CmdForget, key, path)
	if err != nil {
		return 0, err
	}
	return asCount(resp), nil
}

// Clear empties containers and zeroes numbers at a path. It returns how
// many values were cleared.
func (c *DocumentClient) Clear(ctx context.Context, key, path string) (int64, error) {
	resp, err := c.invoke(ctx, common.CmdClear, key, path)
	if err != nil {
		return 0, err
	}
	return asCount(resp), nil
}

// --------------------------------------------------------------------------
// Document Reads
// --------------------------------------------------------------------------

// Get fetches the document under key, or the values at the given paths.
// A missing key decodes to the null value with no error.
func (c *DocumentClient) Get(ctx context.Context, key string, paths ...string) (document.Value, error) {
	resp, err := c.invoke(ctx, common.CmdGet, keyWithPaths(key, paths)...)
	if err != nil {
		return document.Null(), err
	}
	return asValue(resp), nil
}

// MGet fetches the value at one path from many keys. The result holds one
// Value per key in request order, missing keys and paths stay null.
func (c *DocumentClient) MGet(ctx context.Context, path string, keys ...string) ([]document.Value, error) {
	// The path travels last on the wire
	args := make([]any, 0, len(keys)+1)
	for _, k := range keys {
		args = append(args, k)
	}
	args = append(args, path)

	resp, err := c.invoke(ctx, common.CmdMGet, args...)
	if err != nil {
		return nil, err
	}
	return asValues(resp), nil
}

// Resp fetches the raw protocol form of the value at a path.
func (c *DocumentClient) Resp(ctx context.Context, key string, paths ...string) (document.Value, error) {
	resp, err := c.invoke(ctx, common.CmdResp, keyWithPaths(key, paths)...)
	if err != nil {
		return document.Null(), err
	}
	return asValue(resp), nil
}

// DebugMemory reports the memory footprint of the value at a path.
func (c *DocumentClient) DebugMemory(ctx context.Context, key string, paths ...string) (document.Value, error) {
	args := make([]any, 0, len(paths)+2)
	args = append(args, "MEMORY", key)
	for _, p := range paths {
		args = append(args, p)
	}
	resp, err := c.invoke(ctx, common.CmdDebug, args...)
	if err != nil {
		return document.Null(), err
	}
	return asValue(resp), nil
}

// --------------------------------------------------------------------------
// Numbers and Booleans
// --------------------------------------------------------------------------

// NumIncrBy increments the number at a path and returns the new value.
func (c *DocumentClient) NumIncrBy(ctx context.Context, key, path string, delta float64) (document.Value, error) {
	resp, err := c.invoke(ctx, common.CmdNumIncrBy, key, path, delta)
	if err != nil {
		return document.Null(), err
	}
	return asValue(resp), nil
}

// NumMultBy multiplies the number at a path and returns the new value.
func (c *DocumentClient) NumMultBy(ctx context.Context, key, path string, factor float64) (document.Value, error) {
	resp, err := c.invoke(ctx, common.CmdNumMultBy, key, path, factor)
	if err != nil {
		return document.Null(), err
	}
	return asValue(resp), nil
}

// Toggle flips the boolean at a path and returns the new value.
func (c *DocumentClient) Toggle(ctx context.Context, key, path string) (document.Value, error) {
	resp, err := c.invoke(ctx, common.CmdToggle, key, path)
	if err != nil {
		return document.Null(), err
	}
	return asValue(resp), nil
}

// --------------------------------------------------------------------------
// Strings
// --------------------------------------------------------------------------

// StrAppend appends to the string at a path and returns the new length.
func (c *DocumentClient) StrAppend(ctx context.Context, key, path, s string) (document.Value, error) {
	data, err := c.codec.Encode(document.String(s))
	if err != nil {
		return document.Null(), err
	}
	resp, err := c.invoke(ctx, common.CmdStrAppend, key, path, string(data))
	if err != nil {
		return document.Null(), err
	}
	return asValue(resp), nil
}

// StrLen returns the length of the string at a path.
func (c *DocumentClient) StrLen(ctx context.Context, key, path string) (document.Value, error) {
	resp, err := c.invoke(ctx, common.CmdStrLen, key, path)
	if err != nil {
		return document.Null(), err
	}
	return asValue(resp), nil
}

// --------------------------------------------------------------------------
// Arrays
// --------------------------------------------------------------------------

// ArrAppend appends values to the array at a path and returns the new
// length.
func (c *DocumentClient) ArrAppend(ctx context.Context, key, path string, vs ...document.Value) (document.Value, error) {
	elems, err := encodeValues(c.codec, vs)
	if err != nil {
		return document.Null(), err
	}
	args := append([]any{key, path}, elems...)
	resp, err := c.invoke(ctx, common.CmdArrAppend, args...)
	if err != nil {
		return document.Null(), err
	}
	return asValue(resp), nil
}

// ArrIndex searches the array at a path for a value and returns its index,
// or -1 when absent. Up to two extra arguments narrow the search to the
// inclusive range [start, stop], a stop of zero means the end of the array.
func (c *DocumentClient) ArrIndex(ctx context.Context, key, path string, v document.Value, startstop ...int64) (document.Value, error) {
	if len(startstop) > 2 {
		return document.Null(), fmt.Errorf("arrindex accepts at most a start and a stop argument")
	}
	data, err := c.codec.Encode(v)
	if err != nil {
		return document.Null(), err
	}
	args := []any{key, path, string(data)}
	for _, n := range startstop {
		args = append(args, n)
	}
	resp, err := c.invoke(ctx, common.CmdArrIndex, args...)
	if err != nil {
		return document.Null(), err
	}
	return asValue(resp), nil
}

// ArrInsert inserts values into the array at a path before the given index
// and returns the new length.
func (c *DocumentClient) ArrInsert(ctx context.Context, key, path string, index int64, vs ...document.Value) (document.Value, error) {
	elems, err := encodeValues(c.codec, vs)
	if err != nil {
		return document.Null(), err
	}
	args := append([]any{key, path, index}, elems...)
	resp, err := c.invoke(ctx, common.CmdArrInsert, args...)
	if err != nil {
		return document.Null(), err
	}
	return asValue(resp), nil
}

// ArrLen returns the length of the array at a path.
func (c *DocumentClient) ArrLen(ctx context.Context, key, path string) (document.Value, error) {
	resp, err := c.invoke(ctx, common.CmdArrLen, key, path)
	if err != nil {
		return document.Null(), err
	}
	return asValue(resp), nil
}

// ArrPop removes and returns the element at index from the array at a
// path. An index of -1 pops the last element. Popping an empty array
// returns the null value.
func (c *DocumentClient) ArrPop(ctx context.Context, key, path string, index int64) (document.Value, error) {
	resp, err := c.invoke(ctx, common.CmdArrPop, key, path, index)
	if err != nil {
		return document.Null(), err
	}
	return asValue(resp), nil
}

// ArrTrim trims the array at a path to the inclusive range [start, stop]
// and returns the new length.
func (c *DocumentClient) ArrTrim(ctx context.Context, key, path string, start, stop int64) (document.Value, error) {
	resp, err := c.invoke(ctx, common.CmdArrTrim, key, path, start, stop)
	if err != nil {
		return document.Null(), err
	}
	return asValue(resp), nil
}

// --------------------------------------------------------------------------
// Objects
// --------------------------------------------------------------------------

// ObjKeys returns the field names of the object at a path.
func (c *DocumentClient) ObjKeys(ctx context.Context, key, path string) (document.Value, error) {
	resp, err := c.invoke(ctx, common.CmdObjKeys, key, path)
	if err != nil {
		return document.Null(), err
	}
	return asValue(resp), nil
}

// ObjLen returns the field count of the object at a path.
func (c *DocumentClient) ObjLen(ctx context.Context, key, path string) (document.Value, error) {
	resp, err := c.invoke(ctx, common.CmdObjLen, key, path)
	if err != nil {
		return document.Null(), err
	}
	return asValue(resp), nil
}

// --------------------------------------------------------------------------
// Generic Escape Hatch
// --------------------------------------------------------------------------

// Execute issues any command by name. Commands with a response transform
// return their canonical result, everything else (core store commands
// included) returns the raw reply unchanged.
func (c *DocumentClient) Execute(ctx context.Context, name common.CommandName, args ...any) (any, error) {
	return c.invoke(ctx, name, args...)
}
