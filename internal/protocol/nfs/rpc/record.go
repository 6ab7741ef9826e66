package rpc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/marmos91/nfs4d/pkg/bufpool"
)

// ============================================================================
// Record Marking (RFC 5531 Section 11)
// ============================================================================
//
// Each record on a stream transport is prefixed by a 4-byte header:
//   - Bit 31: last fragment flag (1 = last)
//   - Bits 0-30: fragment length in bytes
//
// Only single-fragment records are handled. A fragment with the last bit clear
// is recognised and rejected with ErrMultiFragment.

// MaxFragmentSize is the largest fragment accepted from a client.
// Leaves headroom above 1MB for RPC and COMPOUND headers.
const MaxFragmentSize = (1 << 20) + (1 << 18) // 1MB + 256KB headroom

const (
	lastFragmentBit = 0x80000000
	lengthMask      = 0x7FFFFFFF
)

var (
	// ErrMultiFragment is returned for a fragment header without the last bit.
	ErrMultiFragment = errors.New("rpc: multi-fragment records are not supported")

	// ErrFragmentTooLarge is returned when a fragment exceeds MaxFragmentSize.
	ErrFragmentTooLarge = errors.New("rpc: fragment too large")

	// ErrRecordTooLarge is returned by Frame for payloads that can't fit in 31 bits.
	ErrRecordTooLarge = errors.New("rpc: record exceeds 31-bit length")
)

// FragmentHeader represents a parsed RPC record-marking fragment header.
type FragmentHeader struct {
	IsLast bool
	Length uint32
}

// Encode returns the 4-byte wire form of the header.
func (h FragmentHeader) Encode() [4]byte {
	v := h.Length & lengthMask
	if h.IsLast {
		v |= lastFragmentBit
	}
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return b
}

// ReadFragmentHeader reads and parses the 4-byte fragment header.
//
// io.EOF is returned unwrapped when the stream ends before any header byte,
// so callers can tell a clean disconnect from a truncated header.
func ReadFragmentHeader(r io.Reader) (*FragmentHeader, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}

	header := binary.BigEndian.Uint32(buf[:])
	return &FragmentHeader{
		IsLast: (header & lastFragmentBit) != 0,
		Length: header & lengthMask,
	}, nil
}

// ReadRecord reads exactly one single-fragment record and returns its payload.
// The payload comes from bufpool; callers may hand it back with bufpool.Put
// once nothing references it.
func ReadRecord(r io.Reader) ([]byte, error) {
	header, err := ReadFragmentHeader(r)
	if err != nil {
		return nil, err
	}

	if !header.IsLast {
		return nil, fmt.Errorf("%w: fragment length %d", ErrMultiFragment, header.Length)
	}

	if header.Length > MaxFragmentSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrFragmentTooLarge, header.Length, MaxFragmentSize)
	}

	payload := bufpool.Get(int(header.Length))
	if _, err := io.ReadFull(r, payload); err != nil {
		bufpool.Put(payload)
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("read record (%d bytes): %w", header.Length, err)
	}

	return payload, nil
}

// Frame prefixes payload with a last-fragment record header.
func Frame(payload []byte) ([]byte, error) {
	if uint64(len(payload)) > lengthMask {
		return nil, fmt.Errorf("%w: %d bytes", ErrRecordTooLarge, len(payload))
	}

	header := FragmentHeader{IsLast: true, Length: uint32(len(payload))}.Encode()
	out := make([]byte, 0, 4+len(payload))
	out = append(out, header[:]...)
	out = append(out, payload...)
	return out, nil
}

// WriteRecord frames payload and writes it to w in a single Write call.
func WriteRecord(w io.Writer, payload []byte) error {
	framed, err := Frame(payload)
	if err != nil {
		return err
	}
	if _, err := w.Write(framed); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}
