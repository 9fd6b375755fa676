// Package bjson provides a compact binary serialization format for
// JSON-shaped data: every value is one of null, boolean, integer, float,
// UTF-8 string, opaque binary, array or map, each carried on the wire as
// a single tag byte optionally followed by a length-or-immediate field
// and a body.
//
// # Core features
//
//   - Streaming push decoder: feed bytes in any chunking (one byte at a
//     time, or the whole document at once) and get one callback per
//     decoded token, via the decoder package's TokenSink interface.
//   - Narrowest-width encoder: integers, strings and container headers
//     are always written using the smallest tag that can represent them,
//     via the encoder package. Doubles are always written as 8-byte
//     float64.
//   - No compression, no checksums, no schema negotiation: BJSON is a
//     wire format, not a container format.
//
// # Basic usage
//
// Encoding:
//
//	e := encoder.New()
//	e.OpenMap()
//	e.EmitString([]byte("name"))
//	e.EmitString([]byte("trace"))
//	e.CloseMap()
//	if err := e.Finish(); err != nil {
//	    // handle err
//	}
//	wire := e.GetOutput()
//
// Decoding, with a TokenSink implementation of the caller's choosing:
//
//	d := decoder.New(sink)
//	if err := d.Feed(wire); err != nil {
//	    // handle err
//	}
//	if err := d.Finish(); err != nil {
//	    // handle err
//	}
//
// # Package structure
//
// This package only re-exports the library version. Build documents with
// the encoder package and consume them with the decoder package
// directly; there is no in-memory document tree in this library, by
// design (see DESIGN.md).
package bjson

import "github.com/kemu-studio/bjson/format"

// Version returns the library's major, minor and micro version numbers.
func Version() (major, minor, micro int) {
	return format.VersionMajor, format.VersionMinor, format.VersionMicro
}

// VersionText renders the library version as "major.minor.micro".
func VersionText() string {
	return format.VersionText()
}
