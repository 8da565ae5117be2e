package local

import (
	"context"
	"fmt"

	"github.com/ValentinKolb/dJSON/rpc/common"
	"github.com/ValentinKolb/dJSON/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("transport")

// NewLocalTransport creates a transport that executes every command against
// an in-process engine instead of a network connection. The engine is
// injected so callers (and tests) can observe the keyspace directly.
func NewLocalTransport(engine *Engine) transport.IModuleTransport {
	return &localTransport{
		engine: engine,
		hooks:  xsync.NewMapOf[common.CommandName, transport.ResponseTransform](),
	}
}

type localTransport struct {
	engine *Engine
	hooks  *xsync.MapOf[common.CommandName, transport.ResponseTransform]
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IModuleTransport)
// --------------------------------------------------------------------------

func (t *localTransport) Connect(config common.ClientConfig) error {
	if t.engine == nil {
		return fmt.Errorf("local transport has no engine")
	}
	Logger.Debugf("local transport ready (endpoint %q ignored)", config.Endpoint)
	return nil
}

func (t *localTransport) Send(ctx context.Context, name common.CommandName, args ...any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return t.engine.Execute(name, args)
}

func (t *localTransport) Do(ctx context.Context, name common.CommandName, args ...any) (any, error) {
	resp, err := t.Send(ctx, name, args...)
	if err != nil {
		return nil, err
	}
	if fn, ok := t.hooks.Load(name); ok {
		return fn(resp)
	}
	return resp, nil
}

func (t *localTransport) Pipeline() transport.IPipeline {
	return &localPipeline{engine: t.engine}
}

func (t *localTransport) TxPipeline() transport.IPipeline {
	// In-process execution is already sequential, the transactional flavor
	// behaves identically here
	return &localPipeline{engine: t.engine}
}

func (t *localTransport) Close() error {
	return nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IResponseHookRegistry)
// --------------------------------------------------------------------------

func (t *localTransport) RegisterResponseHook(name common.CommandName, fn transport.ResponseTransform) error {
	if fn == nil {
		return fmt.Errorf("nil response transform for %s", name)
	}
	t.hooks.Store(name, fn)
	return nil
}

// --------------------------------------------------------------------------
// Pipeline
// --------------------------------------------------------------------------

// localPipeline buffers commands and executes them back to back on the
// engine during SendAll.
type localPipeline struct {
	engine *Engine
	queue  []queuedLocalCommand
}

type queuedLocalCommand struct {
	name common.CommandName
	args []any
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IPipeline)
// --------------------------------------------------------------------------

func (p *localPipeline) Enqueue(name common.CommandName, args ...any) {
	p.queue = append(p.queue, queuedLocalCommand{name: name, args: args})
}

func (p *localPipeline) SendAll(ctx context.Context) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The batch is consumed by the flush, successful or not
	queue := p.queue
	p.queue = nil

	if len(queue) == 0 {
		return []any{}, nil
	}

	replies := make([]any, len(queue))
	for i, qc := range queue {
		resp, err := p.engine.Execute(qc.name, qc.args)
		if err != nil {
			return nil, err
		}
		replies[i] = resp
	}
	return replies, nil
}

func (p *localPipeline) Discard() {
	p.queue = nil
}

func (p *localPipeline) Len() int {
	return len(p.queue)
}
