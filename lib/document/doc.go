// Package document provides the canonical JSON value model and the wire
// codec for the dJSON client adapter. It defines a single immutable Value
// type covering the six JSON kinds and a codec that converts between Values
// and the heterogeneous raw shapes a key-value store transport surfaces.
//
// The package focuses on:
//   - Representing every JSON document node with one self-describing type
//   - Decoding wire replies that mix serialized text, pre-parsed scalars
//     and nested sequences in a single response
//   - Reserving the null Value exclusively for absent keys and paths
//   - Keeping Values immutable so they can be shared across goroutines
//
// Key Components:
//
//   - Value: Immutable JSON node with a Kind discriminator (null, bool,
//     number, string, array, object). Constructed through factory functions
//     that copy composite inputs.
//
//   - ICodec: Interface for encoding Values to JSON text and decoding raw
//     wire replies through an ordered fallback chain (absence, textual
//     parse, pre-parsed scalar, structural re-interpretation).
//
//   - DecodeError: Typed error identifying a reply that matches no decode
//     rule, carrying the offending raw value.
//
// Decode Semantics:
//
//	The decoder never loses a payload: textual input that fails to parse
//	(or parses to null) is returned verbatim as a string Value. Only the
//	absence reply (a nil interface) maps to the null Value.
//
// Thread Safety:
//
//	Values are immutable and the codec is stateless; both are safe for
//	concurrent use across multiple goroutines without synchronization.
//
// Usage:
//
//	codec := document.NewCodec()
//	data, err := codec.Encode(document.Object(map[string]document.Value{
//	    "name": document.String("test"),
//	}))
//	// ... send data ...
//	value, err := codec.Decode(rawReply)
package document
