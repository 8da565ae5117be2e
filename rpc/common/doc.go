// Package common provides core data structures and utilities shared across
// the document client adapter. It defines the command vocabulary,
// configuration structures and the logging setup used by other packages.
//
// The package focuses on:
//   - Naming every command of the JSON document module exactly as it
//     appears on the wire
//   - Configuration structures for the client and its transport
//   - Custom logging with consistent formatting across the application
//
// Key Components:
//
//   - CommandName: String type identifying a module command (JSON.GET,
//     JSON.SET, ...). Core store commands share the type so module and
//     store commands can travel through the same transport and batches.
//
//   - ClientConfig: Configuration for the client and transport, controlling
//     connection parameters, timeouts, retry behavior and logging.
//
//   - Logger: Custom logging implementation providing named package loggers
//     with consistent formatting, initialized once from the configured level.
package common
