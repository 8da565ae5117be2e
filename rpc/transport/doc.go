// Package transport defines the interfaces and abstractions for the wire
// communication of the document client. It provides a common contract that
// all transport implementations must fulfill, so the client stays agnostic
// of the concrete connection library.
//
// The package focuses on:
//   - Defining a clear interface for sending commands and batches
//   - Normalizing raw reply shapes across transports (nil for absence,
//     text, pre-parsed scalars, sequences)
//   - Declaring response transform registration as an explicit capability
//
// Key Components:
//
//   - IModuleTransport: Interface for client-side transport implementations
//     that handles connection management, single commands and batches.
//
//   - IPipeline: Interface for command batches that travel to the server in
//     one flush and return positionally aligned raw replies.
//
//   - IResponseHookRegistry: Optional transport capability of holding
//     per-command response transforms.
//
//   - ResponseTransform: Function type converting one raw reply into its
//     canonical result.
package transport
