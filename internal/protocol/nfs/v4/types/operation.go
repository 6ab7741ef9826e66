package types

import (
	"bytes"
	"fmt"
	"io"

	"github.com/marmos91/nfs4d/internal/protocol/xdr"
)

// ============================================================================
// Operation Variants
// ============================================================================

// Operation is the closed set of decoded COMPOUND operations. Each variant
// knows its opcode and how to re-encode its operand.
//
// The evaluator dispatches with a type switch over the concrete variants;
// Unrecognized covers opcodes outside the NFSv4.2 table.
type Operation interface {
	OpCode() uint32
	Encode(buf *bytes.Buffer) error
}

// PutRootFH sets the current filehandle to the root of the export.
type PutRootFH struct{}

// PutFH sets the current filehandle to Handle.
//
//	struct PUTFH4args { nfs_fh4 object; };
type PutFH struct {
	Handle []byte
}

// GetFH returns the current filehandle.
type GetFH struct{}

// GetAttr requests the attributes selected by AttrRequest (a bitmap4).
//
//	struct GETATTR4args { bitmap4 attr_request; };
type GetAttr struct {
	AttrRequest []uint32
}

// Lookup resolves Name in the current directory.
//
//	struct LOOKUP4args { component4 objname; };
type Lookup struct {
	Name string
}

// SetAttr carries a new attribute set for the current filehandle.
type SetAttr struct {
	Attrs Fattr4
}

// Unsupported is a known NFSv4.2 opcode without its own variant.
// It carries no operand.
type Unsupported struct {
	Op uint32
}

// Unrecognized is an opcode outside the NFSv4.2 table.
type Unrecognized struct {
	Op uint32
}

// Fattr4 is the attribute mask plus the packed attribute values.
//
//	struct fattr4 {
//	    bitmap4   attrmask;
//	    attrlist4 attr_vals;
//	};
type Fattr4 struct {
	Mask   []uint32
	Values []byte
}

func (PutRootFH) OpCode() uint32      { return OP_PUTROOTFH }
func (PutFH) OpCode() uint32          { return OP_PUTFH }
func (GetFH) OpCode() uint32          { return OP_GETFH }
func (GetAttr) OpCode() uint32        { return OP_GETATTR }
func (Lookup) OpCode() uint32         { return OP_LOOKUP }
func (SetAttr) OpCode() uint32        { return OP_SETATTR }
func (o Unsupported) OpCode() uint32  { return o.Op }
func (o Unrecognized) OpCode() uint32 { return o.Op }

func (PutRootFH) Encode(*bytes.Buffer) error { return nil }

func (o PutFH) Encode(buf *bytes.Buffer) error {
	return xdr.WriteXDROpaque(buf, o.Handle)
}

func (GetFH) Encode(*bytes.Buffer) error { return nil }

func (o GetAttr) Encode(buf *bytes.Buffer) error {
	return xdr.WriteUint32Array(buf, o.AttrRequest)
}

func (o Lookup) Encode(buf *bytes.Buffer) error {
	return xdr.WriteXDRString(buf, o.Name)
}

func (o SetAttr) Encode(buf *bytes.Buffer) error {
	return o.Attrs.Encode(buf)
}

func (Unsupported) Encode(*bytes.Buffer) error  { return nil }
func (Unrecognized) Encode(*bytes.Buffer) error { return nil }

// Encode writes the fattr4 wire form.
func (f Fattr4) Encode(buf *bytes.Buffer) error {
	if err := xdr.WriteUint32Array(buf, f.Mask); err != nil {
		return fmt.Errorf("write attrmask: %w", err)
	}
	if err := xdr.WriteXDROpaque(buf, f.Values); err != nil {
		return fmt.Errorf("write attr_vals: %w", err)
	}
	return nil
}

// DecodeFattr4 reads a fattr4 from r.
func DecodeFattr4(r io.Reader) (Fattr4, error) {
	mask, err := DecodeBitmap(r)
	if err != nil {
		return Fattr4{}, fmt.Errorf("decode attrmask: %w", err)
	}
	vals, err := xdr.DecodeOpaque(r)
	if err != nil {
		return Fattr4{}, fmt.Errorf("decode attr_vals: %w", err)
	}
	return Fattr4{Mask: mask, Values: vals}, nil
}

// DecodeBitmap reads a bitmap4, rejecting more than MaxBitmapWords words.
func DecodeBitmap(r io.Reader) ([]uint32, error) {
	count, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("decode bitmap length: %w", err)
	}
	if count > MaxBitmapWords {
		return nil, fmt.Errorf("bitmap has %d words (max %d): %w", count, MaxBitmapWords, ErrBitmapTooLarge)
	}

	words := make([]uint32, count)
	for i := range words {
		if words[i], err = xdr.DecodeUint32(r); err != nil {
			return nil, fmt.Errorf("decode bitmap word %d: %w", i, err)
		}
	}
	return words, nil
}

// DecodeOperation reads the operand for opcode from r and returns its variant.
//
// Only PUTFH, GETATTR, LOOKUP and SETATTR carry an operand. Every other
// opcode, known or not, is assumed to have none.
func DecodeOperation(opcode uint32, r io.Reader) (Operation, error) {
	switch opcode {
	case OP_PUTROOTFH:
		return PutRootFH{}, nil
	case OP_GETFH:
		return GetFH{}, nil
	case OP_PUTFH:
		handle, err := xdr.DecodeOpaque(r)
		if err != nil {
			return nil, fmt.Errorf("decode PUTFH object: %w", err)
		}
		return PutFH{Handle: handle}, nil
	case OP_GETATTR:
		req, err := DecodeBitmap(r)
		if err != nil {
			return nil, fmt.Errorf("decode GETATTR attr_request: %w", err)
		}
		return GetAttr{AttrRequest: req}, nil
	case OP_LOOKUP:
		name, err := xdr.DecodeString(r)
		if err != nil {
			return nil, fmt.Errorf("decode LOOKUP objname: %w", err)
		}
		return Lookup{Name: name}, nil
	case OP_SETATTR:
		attrs, err := DecodeFattr4(r)
		if err != nil {
			return nil, fmt.Errorf("decode SETATTR obj_attributes: %w", err)
		}
		return SetAttr{Attrs: attrs}, nil
	}

	if IsKnownOp(opcode) {
		return Unsupported{Op: opcode}, nil
	}
	return Unrecognized{Op: opcode}, nil
}
