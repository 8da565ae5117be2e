// Package rpc provides the communication layer for the JSON document
// module. It turns typed document operations into module commands on the
// wire and decodes the heterogeneous replies coming back.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the layer,
//     including the command vocabulary, configuration structures, and logging.
//
//   - transport: Wire communication abstractions with pluggable implementations
//     (go-redis backed, in-process).
//
//   - client: The typed document client with its immediate and batched
//     command surfaces and the response transform table.
package rpc
