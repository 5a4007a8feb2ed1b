// Package protocol encodes change reports for transport.
//
// A Report is a self-contained snapshot of one check: the current items,
// the per-kind change lists and the ordered operations that turn the
// previous collection into the current one. Reports travel as JSON or
// msgpack. Operations alone can also travel in a compact binary frame:
//
//	┌──────┬──────┬─────────┬──────────────┬─────┐
//	│ 'I'  │ 'D'  │ version │ count uvarint│ ops │
//	└──────┴──────┴─────────┴──────────────┴─────┘
//
// where each op is
//
//	[kind byte][id uvarint][from svarint][to svarint][item: uvarint len + msgpack]
//
// Absent indexes are encoded as -1. Varints use the protobuf layout
// (7 bits per byte, MSB continuation); signed values are ZigZag encoded.
package protocol
