package xdr

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ============================================================================
// XDR Decoding Helpers - Wire Format → Go Types
// ============================================================================

// DecodeOpaque decodes XDR variable-length opaque data.
//
// Per RFC 4506 Section 4.10 (Variable-Length Opaque Data):
// Format: [length:uint32][data:length bytes][padding:0-3 bytes]
//
// The declared length must be fully satisfied by the reader; a short read
// is an error and no partial value is returned. Padding bytes are consumed
// and discarded without checking that they are zero.
func DecodeOpaque(reader io.Reader) ([]byte, error) {
	length, err := DecodeUint32(reader)
	if err != nil {
		return nil, fmt.Errorf("read opaque length: %w", err)
	}

	if length > MaxOpaqueLength {
		return nil, fmt.Errorf("%w: %d > %d", ErrOpaqueTooLarge, length, MaxOpaqueLength)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(reader, data); err != nil {
		return nil, fmt.Errorf("read opaque data (%d bytes): %w", length, err)
	}

	// XDR padding is at most 3 bytes, a stack buffer is enough
	if padding := Padding(length); padding > 0 {
		var padBuf [3]byte
		if _, err := io.ReadFull(reader, padBuf[:padding]); err != nil {
			return nil, fmt.Errorf("skip opaque padding: %w", err)
		}
	}

	return data, nil
}

// DecodeString decodes an XDR string.
//
// Strings share the opaque wire form; the bytes are returned as-is with no
// UTF-8 validation.
func DecodeString(reader io.Reader) (string, error) {
	data, err := DecodeOpaque(reader)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeUint32 decodes a big-endian 32-bit unsigned integer.
func DecodeUint32(reader io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(reader, buf[:]); err != nil {
		return 0, fmt.Errorf("read uint32: %w", err)
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// DecodeUint64 decodes a big-endian 64-bit unsigned integer (XDR hyper).
func DecodeUint64(reader io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(reader, buf[:]); err != nil {
		return 0, fmt.Errorf("read uint64: %w", err)
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// DecodeInt32 decodes a big-endian two's complement 32-bit integer.
func DecodeInt32(reader io.Reader) (int32, error) {
	v, err := DecodeUint32(reader)
	if err != nil {
		return 0, fmt.Errorf("read int32: %w", err)
	}
	return int32(v), nil
}

// DecodeInt64 decodes a big-endian two's complement 64-bit integer.
func DecodeInt64(reader io.Reader) (int64, error) {
	v, err := DecodeUint64(reader)
	if err != nil {
		return 0, fmt.Errorf("read int64: %w", err)
	}
	return int64(v), nil
}

// DecodeBool decodes an XDR boolean value.
//
// Per RFC 4506 Section 4.4 (Boolean):
// 0 decodes to false and any non-zero word decodes to true.
func DecodeBool(reader io.Reader) (bool, error) {
	v, err := DecodeUint32(reader)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// DecodeUint32Array decodes a counted array of uint32 words.
//
// Per RFC 4506 Section 4.13 (Variable-Length Array):
// Format: [count:uint32][element:uint32]*count
//
// This is the wire form of NFSv4 bitmap4. Counts above MaxArrayLength are
// rejected before allocation.
func DecodeUint32Array(reader io.Reader) ([]uint32, error) {
	count, err := DecodeUint32(reader)
	if err != nil {
		return nil, fmt.Errorf("read array count: %w", err)
	}

	if count > MaxArrayLength {
		return nil, fmt.Errorf("%w: %d > %d", ErrArrayTooLarge, count, MaxArrayLength)
	}

	out := make([]uint32, count)
	for i := range out {
		v, err := DecodeUint32(reader)
		if err != nil {
			return nil, fmt.Errorf("read array element %d/%d: %w", i, count, err)
		}
		out[i] = v
	}
	return out, nil
}

// DecodeUint64Array decodes a counted array of uint64 words.
func DecodeUint64Array(reader io.Reader) ([]uint64, error) {
	count, err := DecodeUint32(reader)
	if err != nil {
		return nil, fmt.Errorf("read array count: %w", err)
	}

	if count > MaxArrayLength {
		return nil, fmt.Errorf("%w: %d > %d", ErrArrayTooLarge, count, MaxArrayLength)
	}

	out := make([]uint64, count)
	for i := range out {
		v, err := DecodeUint64(reader)
		if err != nil {
			return nil, fmt.Errorf("read array element %d/%d: %w", i, count, err)
		}
		out[i] = v
	}
	return out, nil
}
