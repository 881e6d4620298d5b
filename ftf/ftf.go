// Package ftf encodes and decodes Fuchsia Trace Format (FTF) records.
//
// The format is a sequence of little-endian 64-bit words. Every record
// starts with a header word carrying the record type and the total record
// size in words; variable-length payloads (strings) are zero-padded to a
// word boundary.
//
// The package exposes typed constructors for the record kinds a trace
// producer needs (magic number, provider info, string and thread interning,
// duration begin/end and instant events), each with a Write method, and a
// Reader that decodes a stream back into the same record values.
//
// Strings and thread identities are referenced either by a small interned
// index or inline. Index 0 is reserved in both reference spaces: a zero
// string field means "empty" and a zero thread field means the identity is
// carried inline by the record itself.
package ftf

import (
	"encoding/binary"
	"io"
)

// WordSize is the size in bytes of one FTF word.
const WordSize = 8

// MagicWord is the value of the trace-file magic number record. It is a
// self-describing one-word metadata record and must be the first word of
// every trace.
const MagicWord = 0x0016547846040010

// Record type values (header bits 0-3).
const (
	typeMetadata = 0
	typeString   = 2
	typeThread   = 3
	typeEvent    = 4
)

// Metadata record subtypes (header bits 16-19).
const (
	metadataProviderInfo = 1
	metadataMagicNumber  = 4
)

// Argument wire types (argument header bits 0-3).
const (
	wireArgInt64   = 3
	wireArgUint64  = 4
	wireArgFloat64 = 5
	wireArgString  = 6
	wireArgBool    = 9
)

// Reference space and payload limits imposed by the header field widths.
const (
	// MaxArguments is the largest argument count an event header can carry.
	MaxArguments = 15

	// MaxStringIndex is the largest interned string index (15-bit field).
	MaxStringIndex = 0x7FFF

	// MaxThreadIndex is the largest interned thread index (8-bit field).
	MaxThreadIndex = 0xFF

	// MaxStringLength is the longest string payload a string record can
	// carry. Longer values are truncated on encode.
	MaxStringLength = 32000

	// MaxInlineStringLength is the longest inline string reference. Kept
	// small enough that an event with a full argument set of inline
	// strings still fits the 12-bit record size field.
	MaxInlineStringLength = 1000

	// MaxProviderNameLength is the longest provider name (8-bit length field).
	MaxProviderNameLength = 0xFF
)

// paddedWords returns the number of words needed to hold n bytes.
func paddedWords(n int) int {
	return (n + WordSize - 1) / WordSize
}

// truncate clamps s to at most limit bytes.
func truncate(s string, limit int) string {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}

// encoder accumulates record words before a single Write call.
type encoder struct {
	buf []byte
}

// word appends one little-endian word.
func (e *encoder) word(w uint64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, w)
}

// stringPadded appends s zero-padded to a word boundary.
func (e *encoder) stringPadded(s string) {
	e.buf = append(e.buf, s...)
	if rem := len(s) % WordSize; rem != 0 {
		e.buf = append(e.buf, make([]byte, WordSize-rem)...)
	}
}

// flush writes the accumulated bytes in one call so a record is never
// partially interleaved with records from other writers of the same sink.
func (e *encoder) flush(w io.Writer) error {
	_, err := w.Write(e.buf)
	return err
}
