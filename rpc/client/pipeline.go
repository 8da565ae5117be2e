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
// Batched Commands
// --------------------------------------------------------------------------

// Pipeline collects commands locally and sends them as one batch. Replies
// come back in enqueue order, each decoded with the same transform its
// immediate counterpart uses. A Pipeline is not safe for concurrent use,
// every goroutine should build its own.
type Pipeline struct {
	client *DocumentClient
	tp     transport.IPipeline
	names  []common.CommandName
	err    error
}

// Pipeline creates a new batch. Nothing is sent until Execute is called.
func (c *DocumentClient) Pipeline() *Pipeline {
	return &Pipeline{client: c, tp: c.transport.Pipeline()}
}

// TxPipeline creates a new batch whose commands are applied atomically by
// the remote store.
func (c *DocumentClient) TxPipeline() *Pipeline {
	return &Pipeline{client: c, tp: c.transport.TxPipeline()}
}

// enqueue buffers one command. A builder error (e.g. a value that cannot
// be encoded) sticks to the batch and surfaces on Execute, so call chains
// stay fluent.
func (p *Pipeline) enqueue(name common.CommandName, args []any, err error) *Pipeline {
	if p.err != nil {
		return p
	}
	if err != nil {
		p.err = fmt.Errorf("queueing %s: %w", name, err)
		return p
	}
	p.tp.Enqueue(name, args...)
	p.names = append(p.names, name)
	return p
}

// Execute sends all buffered commands as one batch and decodes every reply.
// The result holds one entry per command in enqueue order. Decoding is all
// or nothing, a single undecodable reply fails the whole batch. After
// Execute the pipeline is empty and can be reused.
func (p *Pipeline) Execute(ctx context.Context) ([]any, error) {
	start := time.Now()

	if err := p.err; err != nil {
		p.Discard()
		return nil, err
	}

	names := p.names
	p.names = nil

	raws, err := p.tp.SendAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(raws) != len(names) {
		return nil, fmt.Errorf("batch reply count mismatch: sent %d commands, received %d replies", len(names), len(raws))
	}

	results := make([]any, len(raws))
	for i, raw := range raws {
		resp := raw
		if fn, ok := p.client.callbacks[names[i]]; ok {
			if resp, err = fn(raw); err != nil {
				return nil, fmt.Errorf("batch position %d (%s): %w", i, names[i], err)
			}
		}
		results[i] = resp
	}

	observeBatch(len(results), start)
	return results, nil
}

// Discard drops all buffered commands without sending anything.
func (p *Pipeline) Discard() {
	p.tp.Discard()
	p.names = nil
	p.err = nil
}

// Len returns the number of buffered commands.
func (p *Pipeline) Len() int {
	return p.tp.Len()
}

// Enqueue buffers any command by name. Replies of commands without a
// response transform come back raw.
func (p *Pipeline) Enqueue(name common.CommandName, args ...any) *Pipeline {
	return p.enqueue(name, args, nil)
}

// --------------------------------------------------------------------------
// Fluent Command Builders (semantics see the DocumentClient methods)
// --------------------------------------------------------------------------

// Set buffers a JSON.SET command.
func (p *Pipeline) Set(key, path string, v document.Value, opts ...SetOption) *Pipeline {
	args, err := buildSetArgs(p.client.codec, key, path, v, opts)
	return p.enqueue(common.CmdSet, args, err)
}

// Get buffers a JSON.GET command.
func (p *Pipeline) Get(key string, paths ...string) *Pipeline {
	return p.enqueue(common.CmdGet, keyWithPaths(key, paths), nil)
}

// MGet buffers a JSON.MGET command.
func (p *Pipeline) MGet(path string, keys ...string) *Pipeline {
	args := make([]any, 0, len(keys)+1)
	for _, k := range keys {
		args = append(args, k)
	}
	args = append(args, path)
	return p.enqueue(common.CmdMGet, args, nil)
}

// Del buffers a JSON.DEL command.
func (p *Pipeline) Del(key, path string) *Pipeline {
	return p.enqueue(common.CmdDel, []any{key, path}, nil)
}

// Forget buffers a JSON.FORGET command.
func (p *Pipeline) Forget(key, path string) *Pipeline {
	return p.enqueue(common.CmdForget, []any{key, path}, nil)
}

// Clear buffers a JSON.CLEAR command.
func (p *Pipeline) Clear(key, path string) *Pipeline {
	return p.enqueue(common.CmdClear, []any{key, path}, nil)
}

// NumIncrBy buffers a JSON.NUMINCRBY command.
func (p *Pipeline) NumIncrBy(key, path string, delta float64) *Pipeline {
	return p.enqueue(common.CmdNumIncrBy, []any{key, path, delta}, nil)
}

// NumMultBy buffers a JSON.NUMMULTBY command.
func (p *Pipeline) NumMultBy(key, path string, factor float64) *Pipeline {
	return p.enqueue(common.CmdNumMultBy, []any{key, path, factor}, nil)
}

// Toggle buffers a JSON.TOGGLE command.
func (p *Pipeline) Toggle(key, path string) *Pipeline {
	return p.enqueue(common.CmdToggle, []any{key, path}, nil)
}

// StrAppend buffers a JSON.STRAPPEND command.
func (p *Pipeline) StrAppend(key, path, s string) *Pipeline {
	data, err := p.client.codec.Encode(document.String(s))
	if err != nil {
		return p.enqueue(common.CmdStrAppend, nil, err)
	}
	return p.enqueue(common.CmdStrAppend, []any{key, path, string(data)}, nil)
}

// StrLen buffers a JSON.STRLEN command.
func (p *Pipeline) StrLen(key, path string) *Pipeline {
	return p.enqueue(common.CmdStrLen, []any{key, path}, nil)
}

// ArrAppend buffers a JSON.ARRAPPEND command.
func (p *Pipeline) ArrAppend(key, path string, vs ...document.Value) *Pipeline {
	elems, err := encodeValues(p.client.codec, vs)
	if err != nil {
		return p.enqueue(common.CmdArrAppend, nil, err)
	}
	return p.enqueue(common.CmdArrAppend, append([]any{key, path}, elems...), nil)
}

// ArrIndex buffers a JSON.ARRINDEX command.
func (p *Pipeline) ArrIndex(key, path string, v document.Value, startstop ...int64) *Pipeline {
	if len(startstop) > 2 {
		return p.enqueue(common.CmdArrIndex, nil, fmt.Errorf("arrindex accepts at most a start and a stop argument"))
	}
	data, err := p.client.codec.Encode(v)
	if err != nil {
		return p.enqueue(common.CmdArrIndex, nil, err)
	}
	args := []any{key, path, string(data)}
	for _, n := range startstop {
		args = append(args, n)
	}
	return p.enqueue(common.CmdArrIndex, args, nil)
}

// ArrInsert buffers a JSON.ARRINSERT command.
func (p *Pipeline) ArrInsert(key, path string, index int64, vs ...document.Value) *Pipeline {
	elems, err := encodeValues(p.client.codec, vs)
	if err != nil {
		return p.enqueue(common.CmdArrInsert, nil, err)
	}
	return p.enqueue(common.CmdArrInsert, append([]any{key, path, index}, elems...), nil)
}

// ArrLen buffers a JSON.ARRLEN command.
func (p *Pipeline) ArrLen(key, path string) *Pipeline {
	return p.enqueue(common.CmdArrLen, []any{key, path}, nil)
}

// ArrPop buffers a JSON.ARRPOP command.
func (p *Pipeline) ArrPop(key, path string, index int64) *Pipeline {
	return p.enqueue(common.CmdArrPop, []any{key, path, index}, nil)
}

// ArrTrim buffers a JSON.ARRTRIM command.
func (p *Pipeline) ArrTrim(key, path string, start, stop int64) *Pipeline {
	return p.enqueue(common.CmdArrTrim, []any{key, path, start, stop}, nil)
}

// ObjKeys buffers a JSON.OBJKEYS command.
func (p *Pipeline) ObjKeys(key, path string) *Pipeline {
	return p.enqueue(common.CmdObjKeys, []any{key, path}, nil)
}

// ObjLen buffers a JSON.OBJLEN command.
func (p *Pipeline) ObjLen(key, path string) *Pipeline {
	return p.enqueue(common.CmdObjLen, []any{key, path}, nil)
}

// Resp buffers a JSON.RESP command.
func (p *Pipeline) Resp(key string, paths ...string) *Pipeline {
	return p.enqueue(common.CmdResp, keyWithPaths(key, paths), nil)
}

// DebugMemory buffers a JSON.DEBUG MEMORY command.
func (p *Pipeline) DebugMemory(key string, paths ...string) *Pipeline {
	args := make([]any, 0, len(paths)+2)
	args = append(args, "MEMORY", key)
	for _, path := range paths {
		args = append(args, path)
	}
	return p.enqueue(common.CmdDebug, args, nil)
}
