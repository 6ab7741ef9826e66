// Package xdr provides XDR (External Data Representation) encoding and
// decoding primitives per RFC 4506.
//
// XDR is the canonical wire form for ONC RPC and every NFSv4 structure this
// server exchanges. The rules applied throughout the package:
//   - Big-endian byte order for all multi-byte integers
//   - 4-byte alignment for all data types
//   - Variable-length data is preceded by a 4-byte length
//   - Strings and opaque data are zero-padded to 4-byte boundaries
//   - Arrays of fixed-width elements carry a 4-byte count and no padding
//
// The package is protocol-agnostic: it imports nothing from the rest of the
// module so the RPC and NFSv4 layers can share it.
//
// Reference: RFC 4506 - XDR: External Data Representation Standard
// https://tools.ietf.org/html/rfc4506
package xdr

import (
	"bytes"
	"errors"
	"io"
)

// MaxOpaqueLength bounds a single variable-length opaque or string field.
// A declared length above this is rejected before any allocation.
const MaxOpaqueLength = 1024 * 1024 // 1 MB

// MaxArrayLength bounds the element count of a fixed-width array.
const MaxArrayLength = 1024

var (
	// ErrOpaqueTooLarge is returned when a declared opaque length exceeds MaxOpaqueLength.
	ErrOpaqueTooLarge = errors.New("xdr: opaque length exceeds maximum")

	// ErrArrayTooLarge is returned when a declared array count exceeds MaxArrayLength.
	ErrArrayTooLarge = errors.New("xdr: array count exceeds maximum")
)

// Padding returns the number of zero bytes needed after n bytes of
// variable-length data to reach the next 4-byte boundary.
//
// Example: n=5 → 3, n=8 → 0
func Padding(n uint32) uint32 {
	return (4 - (n % 4)) % 4
}

// ============================================================================
// XDR Codec Interfaces
// ============================================================================

// Encoder is implemented by types that can encode themselves to XDR format.
type Encoder interface {
	Encode(buf *bytes.Buffer) error
}

// Decoder is implemented by types that can decode themselves from XDR format.
type Decoder interface {
	Decode(r io.Reader) error
}

// Marshal encodes v into a freshly allocated byte slice.
func Marshal(v Encoder) ([]byte, error) {
	var buf bytes.Buffer
	if err := v.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes v from data. Trailing bytes are not an error; callers
// that need to know how much was consumed should decode from their own reader.
func Unmarshal(data []byte, v Decoder) error {
	return v.Decode(bytes.NewReader(data))
}
