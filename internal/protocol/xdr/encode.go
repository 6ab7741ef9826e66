package xdr

import (
	"bytes"
	"encoding/binary"
)

// ============================================================================
// XDR Encoding Helpers - Go Types → Wire Format
// ============================================================================
//
// Writes go to a *bytes.Buffer, whose Write never fails, so the error
// returns exist only to keep encoder call sites uniform with decoders.

// WriteXDROpaque encodes opaque data (byte array) in XDR format: length + data + padding.
//
// Per RFC 4506 Section 4.10 (Variable-Length Opaque Data):
// Format: [length:uint32][data:bytes][padding:bytes]
//
// Example:
//
//	[]byte{0x01, 0x02, 0x03} → [00 00 00 03][01 02 03][00] (8 bytes total)
func WriteXDROpaque(buf *bytes.Buffer, data []byte) error {
	length := uint32(len(data))
	if err := WriteUint32(buf, length); err != nil {
		return err
	}
	buf.Write(data)
	return WriteXDRPadding(buf, length)
}

// WriteXDRString encodes a string in XDR format: length + data + padding.
//
// Example:
//
//	"abc" (3 bytes) → [00 00 00 03][61 62 63][00] (8 bytes total)
//	"test" (4 bytes) → [00 00 00 04][74 65 73 74] (8 bytes total)
func WriteXDRString(buf *bytes.Buffer, s string) error {
	length := uint32(len(s))
	if err := WriteUint32(buf, length); err != nil {
		return err
	}
	buf.WriteString(s)
	return WriteXDRPadding(buf, length)
}

// WriteXDRPadding writes the zero bytes that follow dataLen bytes of
// variable-length data.
//
// Example:
//
//	dataLen=3 → writes 1 padding byte
//	dataLen=4 → writes 0 padding bytes
//	dataLen=5 → writes 3 padding bytes
func WriteXDRPadding(buf *bytes.Buffer, dataLen uint32) error {
	var zero [3]byte
	buf.Write(zero[:Padding(dataLen)])
	return nil
}

// WriteUint32 encodes a big-endian 32-bit unsigned integer.
func WriteUint32(buf *bytes.Buffer, v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
	return nil
}

// WriteUint64 encodes a big-endian 64-bit unsigned integer (XDR hyper).
func WriteUint64(buf *bytes.Buffer, v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
	return nil
}

// WriteInt32 encodes a big-endian two's complement 32-bit integer.
func WriteInt32(buf *bytes.Buffer, v int32) error {
	return WriteUint32(buf, uint32(v))
}

// WriteInt64 encodes a big-endian two's complement 64-bit integer.
func WriteInt64(buf *bytes.Buffer, v int64) error {
	return WriteUint64(buf, uint64(v))
}

// WriteBool encodes a boolean value as 0 or 1.
func WriteBool(buf *bytes.Buffer, v bool) error {
	var val uint32
	if v {
		val = 1
	}
	return WriteUint32(buf, val)
}

// WriteUint32Array encodes a counted array of uint32 words.
//
// Per RFC 4506 Section 4.13 (Variable-Length Array):
// Format: [count:uint32][element:uint32]*count
//
// Elements are already 4-byte aligned so no padding follows.
func WriteUint32Array(buf *bytes.Buffer, values []uint32) error {
	if err := WriteUint32(buf, uint32(len(values))); err != nil {
		return err
	}
	for _, v := range values {
		if err := WriteUint32(buf, v); err != nil {
			return err
		}
	}
	return nil
}

// WriteUint64Array encodes a counted array of uint64 words.
func WriteUint64Array(buf *bytes.Buffer, values []uint64) error {
	if err := WriteUint32(buf, uint32(len(values))); err != nil {
		return err
	}
	for _, v := range values {
		if err := WriteUint64(buf, v); err != nil {
			return err
		}
	}
	return nil
}
