package transport

import (
	"context"

	"github.com/ValentinKolb/dJSON/rpc/common"
)

// --------------------------------------------------------------------------
// Response Transforms
// --------------------------------------------------------------------------

// ResponseTransform converts the raw wire reply of one command into its
// canonical result. Transforms are registered per command name and must be
// pure: same reply in, same result out, no side effects.
type ResponseTransform func(raw any) (any, error)

// IResponseHookRegistry is the optional capability of a transport to hold
// response transforms itself. A client checks for this interface once at
// construction and registers its full transform table when present. The
// Do method of such a transport applies the registered transform.
type IResponseHookRegistry interface {
	// RegisterResponseHook registers a transform for a command name
	// Registering the same name twice replaces the previous transform
	RegisterResponseHook(name common.CommandName, fn ResponseTransform) error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IModuleTransport is the interface for the transport a document client
// speaks through. Raw replies use a fixed set of shapes: nil for absence,
// []byte or string for textual payloads, int64/float64/bool for pre-parsed
// scalars and []any for sequences (nested combinations included).
type IModuleTransport interface {
	// Connect initializes the transport with the given configuration
	Connect(config common.ClientConfig) error
	// Send sends a single command and returns the raw reply
	// The absence reply is surfaced as (nil, nil), never as an error
	Send(ctx context.Context, name common.CommandName, args ...any) (resp any, err error)
	// Do sends a single command and returns the reply with the registered
	// response transform applied. For a command without a registered
	// transform Do behaves exactly like Send
	Do(ctx context.Context, name common.CommandName, args ...any) (resp any, err error)
	// Pipeline creates a new command batch
	Pipeline() IPipeline
	// TxPipeline creates a new transactional command batch
	TxPipeline() IPipeline
	// Close closes the transport connection
	Close() error
}

// --------------------------------------------------------------------------
// Batches
// --------------------------------------------------------------------------

// IPipeline is a batch of commands that travels to the server in one flush.
// A pipeline is not safe for concurrent use, it belongs to one goroutine.
type IPipeline interface {
	// Enqueue appends a command to the batch without any network traffic
	Enqueue(name common.CommandName, args ...any)
	// SendAll flushes the batch in one round trip and returns the raw
	// replies positionally aligned with the enqueue order. After SendAll
	// the batch is empty
	SendAll(ctx context.Context) ([]any, error)
	// Discard empties the batch without sending anything
	Discard()
	// Len returns the number of queued commands
	Len() int
}
