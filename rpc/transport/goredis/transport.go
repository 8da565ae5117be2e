package goredis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ValentinKolb/dJSON/rpc/common"
	"github.com/ValentinKolb/dJSON/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/redis/go-redis/v9"
)

var Logger = logger.GetLogger("transport")

// NewRedisClientTransport creates a new transport backed by go-redis. The
// transport holds response transforms itself (see
// transport.IResponseHookRegistry), connection pooling and retries are
// delegated to the underlying library.
func NewRedisClientTransport() transport.IModuleTransport {
	return &redisClientTransport{
		hooks: xsync.NewMapOf[common.CommandName, transport.ResponseTransform](),
	}
}

type redisClientTransport struct {
	client *redis.Client
	hooks  *xsync.MapOf[common.CommandName, transport.ResponseTransform]
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IModuleTransport)
// --------------------------------------------------------------------------

func (t *redisClientTransport) Connect(config common.ClientConfig) error {
	// Map the client configuration onto the library options
	opts := &redis.Options{
		Addr:       config.Endpoint,
		Username:   config.Username,
		Password:   config.Password,
		DB:         config.DB,
		MaxRetries: config.RetryCount,
		PoolSize:   config.PoolSize,
	}
	if config.TimeoutSecond > 0 {
		timeout := time.Duration(config.TimeoutSecond) * time.Second
		opts.DialTimeout = timeout
		opts.ReadTimeout = timeout
		opts.WriteTimeout = timeout
	}

	client := redis.NewClient(opts)

	// Verify the connection before handing the transport out
	ctx := context.Background()
	if config.TimeoutSecond > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(config.TimeoutSecond)*time.Second)
		defer cancel()
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to %s: %w", config.Endpoint, err)
	}

	t.client = client
	Logger.Infof("connected to %s (db %d)", config.Endpoint, config.DB)

	// No error
	return nil
}

func (t *redisClientTransport) Send(ctx context.Context, name common.CommandName, args ...any) (any, error) {
	// Check if the transport is initialized
	if t.client == nil {
		return nil, fmt.Errorf("redis transport not initialized")
	}

	// Build the full command line: name first, then the arguments
	cmdArgs := make([]any, 0, len(args)+1)
	cmdArgs = append(cmdArgs, name.String())
	cmdArgs = append(cmdArgs, args...)

	resp, err := t.client.Do(ctx, cmdArgs...).Result()
	if err != nil {
		// A missing key or path is absence, not an error
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return resp, nil
}

func (t *redisClientTransport) Do(ctx context.Context, name common.CommandName, args ...any) (any, error) {
	resp, err := t.Send(ctx, name, args...)
	if err != nil {
		return nil, err
	}
	if fn, ok := t.hooks.Load(name); ok {
		return fn(resp)
	}
	return resp, nil
}

func (t *redisClientTransport) Pipeline() transport.IPipeline {
	return &redisPipeline{client: t.client}
}

func (t *redisClientTransport) TxPipeline() transport.IPipeline {
	return &redisPipeline{client: t.client, tx: true}
}

func (t *redisClientTransport) Close() error {
	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	return err
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IResponseHookRegistry)
// --------------------------------------------------------------------------

func (t *redisClientTransport) RegisterResponseHook(name common.CommandName, fn transport.ResponseTransform) error {
	if fn == nil {
		return fmt.Errorf("nil response transform for %s", name)
	}
	t.hooks.Store(name, fn)
	return nil
}

// --------------------------------------------------------------------------
// Pipeline
// --------------------------------------------------------------------------

// queuedCommand is one not yet sent command of a batch
type queuedCommand struct {
	name common.CommandName
	args []any
}

// redisPipeline buffers commands locally and flushes them through a library
// pipeline in one round trip. The transactional flavor wraps the flush in
// MULTI/EXEC.
type redisPipeline struct {
	client *redis.Client
	tx     bool
	queue  []queuedCommand
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IPipeline)
// --------------------------------------------------------------------------

func (p *redisPipeline) Enqueue(name common.CommandName, args ...any) {
	p.queue = append(p.queue, queuedCommand{name: name, args: args})
}

func (p *redisPipeline) SendAll(ctx context.Context) ([]any, error) {
	// Check if the transport is initialized
	if p.client == nil {
		return nil, fmt.Errorf("redis transport not initialized")
	}

	// The batch is consumed by the flush, successful or not
	queue := p.queue
	p.queue = nil

	if len(queue) == 0 {
		return []any{}, nil
	}

	var pipe redis.Pipeliner
	if p.tx {
		pipe = p.client.TxPipeline()
	} else {
		pipe = p.client.Pipeline()
	}

	cmds := make([]*redis.Cmd, len(queue))
	for i, qc := range queue {
		cmdArgs := make([]any, 0, len(qc.args)+1)
		cmdArgs = append(cmdArgs, qc.name.String())
		cmdArgs = append(cmdArgs, qc.args...)
		cmds[i] = pipe.Do(ctx, cmdArgs...)
	}

	// Exec reports the first command error as well, a nil reply among the
	// commands is expected and not a failure of the flush
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	// Collect the raw replies positionally
	replies := make([]any, len(cmds))
	for i, cmd := range cmds {
		resp, err := cmd.Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				replies[i] = nil
				continue
			}
			return nil, err
		}
		replies[i] = resp
	}
	return replies, nil
}

func (p *redisPipeline) Discard() {
	p.queue = nil
}

func (p *redisPipeline) Len() int {
	return len(p.queue)
}
