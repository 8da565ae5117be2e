// Package local implements an in-process transport for the document client.
// It answers every command from a keyspace engine living in the same
// process, producing the exact raw reply shapes a real server would put on
// the wire. Tests and the offline CLI mode run against it without any
// server.
//
// The package focuses on:
//   - Emulating the module command vocabulary with realistic reply shapes
//     (serialized text, integers, nil for absence, nested sequences)
//   - Atomic per-key document updates through a concurrent map
//   - Supporting a useful subset of paths: the root, object fields and
//     array indices in dot/bracket notation ("$.user.tags[0]")
//   - Counting executed commands so batch isolation is observable
//
// Key Components:
//
//   - Engine: The keyspace. Stores parsed documents in a concurrent map
//     keyed by document key, plus a second map for plain values of core
//     store commands (SET, GET, DEL, EXISTS, PING, ECHO) so batches can
//     interleave both families.
//
//   - localTransport: Implements IModuleTransport and IResponseHookRegistry
//     by dispatching into the engine. The transactional batch flavor
//     behaves like the plain one, in-process execution is already
//     sequential.
//
//   - localPipeline: Implements IPipeline by buffering commands and
//     executing them back to back during SendAll.
//
// Thread Safety:
//
//	The engine and transport are safe for concurrent use. Pipelines are
//	not, each batch belongs to the goroutine that created it.
package local
