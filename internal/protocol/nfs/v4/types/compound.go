package types

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/marmos91/nfs4d/internal/protocol/xdr"
)

var (
	// ErrTooManyOps is returned when a COMPOUND declares more than
	// MaxCompoundOps operations.
	ErrTooManyOps = errors.New("too many operations in compound")

	// ErrBitmapTooLarge is returned for a bitmap4 longer than MaxBitmapWords.
	ErrBitmapTooLarge = errors.New("bitmap too large")
)

// ============================================================================
// COMPOUND RPC Structures
// ============================================================================

// RawOp represents a single operation within a COMPOUND request.
type RawOp struct {
	// OpCode identifies the operation (e.g., OP_LOOKUP, OP_GETATTR).
	OpCode uint32

	// Data is the operand re-encoded from Args. Empty for operations
	// without an operand.
	Data []byte

	// Args is the eagerly decoded operand.
	Args Operation
}

// Compound4Args represents the decoded COMPOUND4args XDR structure.
//
// Per RFC 7530 Section 16.2 / RFC 7531:
//
//	struct COMPOUND4args {
//	    utf8str_cs  tag;
//	    uint32_t    minorversion;
//	    nfs_argop4  argarray<>;
//	};
type Compound4Args struct {
	// Tag is an opaque value for client-side correlation.
	// Must be echoed back byte-for-byte in the response.
	Tag []byte

	// MinorVersion is the NFSv4 minor version requested by the client.
	MinorVersion uint32

	// Ops contains the sequence of operations to execute, in order.
	Ops []RawOp
}

// CompoundResult holds the result of a single operation within COMPOUND.
type CompoundResult struct {
	// OpCode identifies which operation this result corresponds to.
	OpCode uint32

	// Status is the NFS4 status code for this operation.
	Status uint32

	// Data contains the XDR-encoded operation-specific result. It is
	// appended verbatim and must already be 4-byte aligned.
	Data []byte
}

// Compound4Response represents the COMPOUND4res XDR structure.
//
//	struct COMPOUND4res {
//	    nfsstat4    status;
//	    utf8str_cs  tag;
//	    nfs_resop4  resarray<>;
//	};
type Compound4Response struct {
	// Status is the status of the last failed operation, or NFS4_OK.
	Status uint32

	// Tag is echoed from the request (byte-for-byte).
	Tag []byte

	// Results holds one entry per submitted operation.
	Results []CompoundResult
}

// CompoundContext is the per-COMPOUND evaluation state. It is created
// fresh for each request and never shared across requests.
type CompoundContext struct {
	// Context carries cancellation, deadlines and the trace span.
	Context context.Context

	// CurrentFH is the current filehandle. Nil means no filehandle is set.
	CurrentFH []byte

	// ClientAddr is the remote address of the client connection.
	ClientAddr string
}

// RequireCurrentFH checks that the CompoundContext has a current filehandle.
// Returns NFS4_OK if CurrentFH is set, NFS4ERR_NOFILEHANDLE otherwise.
func RequireCurrentFH(ctx *CompoundContext) uint32 {
	if ctx.CurrentFH == nil {
		return NFS4ERR_NOFILEHANDLE
	}
	return NFS4_OK
}

// ============================================================================
// Codec
// ============================================================================

// DecodeCompoundArgs decodes COMPOUND4args from the bytes that follow the
// RPC call header.
//
// Operands of PUTFH, GETATTR, LOOKUP and SETATTR are decoded eagerly, so a
// truncated or oversized operand fails here rather than during evaluation.
// Trailing bytes after the last operation are ignored.
func DecodeCompoundArgs(data []byte) (*Compound4Args, error) {
	r := bytes.NewReader(data)

	tag, err := xdr.DecodeOpaque(r)
	if err != nil {
		return nil, fmt.Errorf("decode tag: %w", err)
	}

	minor, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("decode minorversion: %w", err)
	}

	numOps, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("decode op count: %w", err)
	}
	if numOps > MaxCompoundOps {
		return nil, fmt.Errorf("%d ops (max %d): %w", numOps, MaxCompoundOps, ErrTooManyOps)
	}

	args := &Compound4Args{
		Tag:          tag,
		MinorVersion: minor,
		Ops:          make([]RawOp, 0, numOps),
	}

	for i := uint32(0); i < numOps; i++ {
		opcode, err := xdr.DecodeUint32(r)
		if err != nil {
			return nil, fmt.Errorf("decode opcode %d: %w", i, err)
		}

		op, err := DecodeOperation(opcode, r)
		if err != nil {
			return nil, fmt.Errorf("op %d (%s): %w", i, OpName(opcode), err)
		}

		var operand bytes.Buffer
		if err := op.Encode(&operand); err != nil {
			return nil, fmt.Errorf("re-encode op %d (%s): %w", i, OpName(opcode), err)
		}

		args.Ops = append(args.Ops, RawOp{
			OpCode: opcode,
			Data:   operand.Bytes(),
			Args:   op,
		})
	}

	return args, nil
}

// Encode writes COMPOUND4args. Each op is written as its opcode followed by
// its Data verbatim.
func (a *Compound4Args) Encode(buf *bytes.Buffer) error {
	if err := xdr.WriteXDROpaque(buf, a.Tag); err != nil {
		return fmt.Errorf("write tag: %w", err)
	}
	if err := xdr.WriteUint32(buf, a.MinorVersion); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, uint32(len(a.Ops))); err != nil {
		return err
	}
	for _, op := range a.Ops {
		if err := xdr.WriteUint32(buf, op.OpCode); err != nil {
			return err
		}
		buf.Write(op.Data)
	}
	return nil
}

// Encode writes COMPOUND4res.
func (r *Compound4Response) Encode(buf *bytes.Buffer) error {
	if err := xdr.WriteUint32(buf, r.Status); err != nil {
		return err
	}
	if err := xdr.WriteXDROpaque(buf, r.Tag); err != nil {
		return fmt.Errorf("write tag: %w", err)
	}
	if err := xdr.WriteUint32(buf, uint32(len(r.Results))); err != nil {
		return err
	}
	for _, res := range r.Results {
		if err := xdr.WriteUint32(buf, res.OpCode); err != nil {
			return err
		}
		if err := xdr.WriteUint32(buf, res.Status); err != nil {
			return err
		}
		buf.Write(res.Data)
	}
	return nil
}
