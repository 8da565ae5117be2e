package client

import (
	"github.com/ValentinKolb/dJSON/lib/document"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("client")
)

// --------------------------------------------------------------------------
// Write Options
// --------------------------------------------------------------------------

// SetOption configures a conditional document write.
type SetOption func(*setOptions)

type setOptions struct {
	condition string
}

// SetNX restricts the write to paths that do not exist yet.
func SetNX() SetOption {
	return func(o *setOptions) { o.condition = "NX" }
}

// SetXX restricts the write to paths that already exist.
func SetXX() SetOption {
	return func(o *setOptions) { o.condition = "XX" }
}

// --------------------------------------------------------------------------
// Argument Builders (shared by immediate calls and batches)
// --------------------------------------------------------------------------

// buildSetArgs serializes a document write into its wire arguments.
// A value the codec cannot encode fails here, before anything is sent.
func buildSetArgs(codec document.ICodec, key, path string, v document.Value, opts []SetOption) ([]any, error) {
	data, err := codec.Encode(v)
	if err != nil {
		return nil, err
	}

	var o setOptions
	for _, opt := range opts {
		opt(&o)
	}

	args := []any{key, path, string(data)}
	if o.condition != "" {
		args = append(args, o.condition)
	}
	return args, nil
}

// encodeValues serializes a run of document values into wire arguments.
func encodeValues(codec document.ICodec, vs []document.Value) ([]any, error) {
	args := make([]any, len(vs))
	for i, v := range vs {
		data, err := codec.Encode(v)
		if err != nil {
			return nil, err
		}
		args[i] = string(data)
	}
	return args, nil
}

// keyWithPaths builds the argument list of read commands taking an optional
// run of paths after the key.
func keyWithPaths(key string, paths []string) []any {
	args := make([]any, 0, len(paths)+1)
	args = append(args, key)
	for _, p := range paths {
		args = append(args, p)
	}
	return args
}

// asValue extracts the canonical Value from a transformed reply.
func asValue(resp any) document.Value {
	if v, ok := resp.(document.Value); ok {
		return v
	}
	return document.Null()
}

// asValues extracts the per-key Values from a transformed bulk reply.
func asValues(resp any) []document.Value {
	if vs, ok := resp.([]document.Value); ok {
		return vs
	}
	return nil
}

// asCount extracts the integer from a transformed count reply.
func asCount(resp any) int64 {
	if n, ok := resp.(int64); ok {
		return n
	}
	return 0
}
