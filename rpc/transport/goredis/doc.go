// Package goredis implements the production transport for the document
// client on top of the go-redis library. It provides concrete
// implementations of the transport interfaces defined in the parent
// package, speaking the real wire protocol to a key-value store server.
//
// The package focuses on:
//   - Sending single commands through the library's generic Do pathway
//   - Flushing batches through library pipelines, transactional or not
//   - Normalizing the library's nil reply sentinel into the absence reply
//   - Holding registered response transforms as a transport capability
//
// Key Components:
//
//   - redisClientTransport: Implements IModuleTransport and
//     IResponseHookRegistry. Connection pooling, reconnects and retries are
//     delegated to the library, configured from the ClientConfig. The
//     transform table lives in a concurrent map keyed by command name.
//
//   - redisPipeline: Implements IPipeline by buffering commands locally and
//     flushing them in one round trip. The transactional flavor executes
//     the flush inside MULTI/EXEC.
//
// Thread Safety:
//
//	The transport is safe for concurrent use. Pipelines are not, each
//	batch belongs to the goroutine that created it.
package goredis
