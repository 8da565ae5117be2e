// Package cmd implements the command-line interface for the dJSON document
// module client. It provides a hierarchical command structure for issuing
// document commands against a store and for benchmarking it.
//
// The package is organized into several subpackages:
//
//   - doc: Commands for document operations (get, set, del, arrappend, etc.),
//     batched stdin input and performance testing
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See djson -help for a list of all commands.
package cmd
