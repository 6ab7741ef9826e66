package types

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/nfs4d/internal/protocol/xdr"
	storeerrors "github.com/marmos91/nfs4d/pkg/metadata/errors"
)

// ============================================================================
// Test Helper Functions
// ============================================================================

// compoundBuilder assembles COMPOUND4args bytes by hand.
type compoundBuilder struct {
	ops bytes.Buffer
	n   uint32
}

func (b *compoundBuilder) op(opcode uint32, operand func(*bytes.Buffer)) *compoundBuilder {
	_ = xdr.WriteUint32(&b.ops, opcode)
	if operand != nil {
		operand(&b.ops)
	}
	b.n++
	return b
}

func (b *compoundBuilder) build(tag string, minor uint32) []byte {
	var buf bytes.Buffer
	_ = xdr.WriteXDRString(&buf, tag)
	_ = xdr.WriteUint32(&buf, minor)
	_ = xdr.WriteUint32(&buf, b.n)
	buf.Write(b.ops.Bytes())
	return buf.Bytes()
}

func opaqueOperand(data []byte) func(*bytes.Buffer) {
	return func(buf *bytes.Buffer) { _ = xdr.WriteXDROpaque(buf, data) }
}

func bitmapOperand(words ...uint32) func(*bytes.Buffer) {
	return func(buf *bytes.Buffer) { _ = xdr.WriteUint32Array(buf, words) }
}

// ============================================================================
// DecodeCompoundArgs Tests
// ============================================================================

func TestDecodeCompoundArgs(t *testing.T) {
	t.Run("DecodesHeaderAndVariants", func(t *testing.T) {
		var b compoundBuilder
		data := b.
			op(OP_PUTROOTFH, nil).
			op(OP_PUTFH, opaqueOperand([]byte("fh-1"))).
			op(OP_GETFH, nil).
			op(OP_GETATTR, bitmapOperand(0x12)).
			op(OP_LOOKUP, func(buf *bytes.Buffer) { _ = xdr.WriteXDRString(buf, "foo") }).
			op(OP_SETATTR, func(buf *bytes.Buffer) {
				_ = xdr.WriteUint32Array(buf, []uint32{1 << 4})
				_ = xdr.WriteXDROpaque(buf, []byte{0, 0, 0, 0, 0, 0, 0, 9})
			}).
			op(OP_READ, nil).
			op(9999, nil).
			build("my-tag", NFS4_MINOR_VERSION_2)

		args, err := DecodeCompoundArgs(data)
		require.NoError(t, err)

		assert.Equal(t, []byte("my-tag"), args.Tag)
		assert.Equal(t, uint32(NFS4_MINOR_VERSION_2), args.MinorVersion)
		require.Len(t, args.Ops, 8)

		assert.Equal(t, PutRootFH{}, args.Ops[0].Args)
		assert.Equal(t, PutFH{Handle: []byte("fh-1")}, args.Ops[1].Args)
		assert.Equal(t, GetFH{}, args.Ops[2].Args)
		assert.Equal(t, GetAttr{AttrRequest: []uint32{0x12}}, args.Ops[3].Args)
		assert.Equal(t, Lookup{Name: "foo"}, args.Ops[4].Args)
		assert.Equal(t, SetAttr{Attrs: Fattr4{Mask: []uint32{1 << 4}, Values: []byte{0, 0, 0, 0, 0, 0, 0, 9}}}, args.Ops[5].Args)
		assert.Equal(t, Unsupported{Op: OP_READ}, args.Ops[6].Args)
		assert.Equal(t, Unrecognized{Op: 9999}, args.Ops[7].Args)

		for i, op := range args.Ops {
			assert.Equal(t, op.OpCode, op.Args.OpCode(), "op %d", i)
		}
	})

	t.Run("OperandlessOpsHaveEmptyData", func(t *testing.T) {
		var b compoundBuilder
		args, err := DecodeCompoundArgs(b.op(OP_PUTROOTFH, nil).op(OP_GETFH, nil).op(OP_COMMIT, nil).build("", 0))
		require.NoError(t, err)
		for _, op := range args.Ops {
			assert.Empty(t, op.Data)
		}
	})

	t.Run("EmptyCompound", func(t *testing.T) {
		var b compoundBuilder
		args, err := DecodeCompoundArgs(b.build("", 0))
		require.NoError(t, err)
		assert.Empty(t, args.Ops)
	})

	t.Run("EmptyPutFH", func(t *testing.T) {
		var b compoundBuilder
		args, err := DecodeCompoundArgs(b.op(OP_PUTFH, opaqueOperand(nil)).build("", 0))
		require.NoError(t, err)
		require.Len(t, args.Ops, 1)
		assert.Empty(t, args.Ops[0].Args.(PutFH).Handle)
	})
}

func TestDecodeCompoundArgsErrors(t *testing.T) {
	t.Run("TruncatedHeader", func(t *testing.T) {
		var b compoundBuilder
		data := b.build("tag", 0)
		for _, cut := range []int{0, 3, 8, 10, len(data) - 1} {
			_, err := DecodeCompoundArgs(data[:cut])
			assert.Error(t, err, "cut at %d", cut)
		}
	})

	t.Run("MissingOps", func(t *testing.T) {
		var buf bytes.Buffer
		_ = xdr.WriteXDRString(&buf, "")
		_ = xdr.WriteUint32(&buf, 0)
		_ = xdr.WriteUint32(&buf, 2)
		_ = xdr.WriteUint32(&buf, OP_GETFH)

		_, err := DecodeCompoundArgs(buf.Bytes())
		assert.Error(t, err)
	})

	t.Run("TooManyOps", func(t *testing.T) {
		var buf bytes.Buffer
		_ = xdr.WriteXDRString(&buf, "")
		_ = xdr.WriteUint32(&buf, 0)
		_ = xdr.WriteUint32(&buf, MaxCompoundOps+1)

		_, err := DecodeCompoundArgs(buf.Bytes())
		require.ErrorIs(t, err, ErrTooManyOps)
	})

	t.Run("TruncatedKnownOperand", func(t *testing.T) {
		tests := []struct {
			name    string
			opcode  uint32
			operand []byte
		}{
			{"PUTFH length only", OP_PUTFH, []byte{0, 0, 0, 8, 1, 2}},
			{"GETATTR missing word", OP_GETATTR, []byte{0, 0, 0, 2, 0, 0, 0, 1}},
			{"LOOKUP missing name", OP_LOOKUP, nil},
			{"SETATTR missing vals", OP_SETATTR, []byte{0, 0, 0, 0}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				var b compoundBuilder
				data := b.op(tt.opcode, func(buf *bytes.Buffer) { buf.Write(tt.operand) }).build("", 0)
				_, err := DecodeCompoundArgs(data)
				assert.Error(t, err)
			})
		}
	})

	t.Run("OversizedBitmap", func(t *testing.T) {
		words := make([]uint32, MaxBitmapWords+1)
		var b compoundBuilder
		_, err := DecodeCompoundArgs(b.op(OP_GETATTR, bitmapOperand(words...)).build("", 0))
		require.ErrorIs(t, err, ErrBitmapTooLarge)
	})

	t.Run("OversizedHandle", func(t *testing.T) {
		var b compoundBuilder
		data := b.op(OP_PUTFH, func(buf *bytes.Buffer) { _ = xdr.WriteUint32(buf, xdr.MaxOpaqueLength+1) }).build("", 0)
		_, err := DecodeCompoundArgs(data)
		require.ErrorIs(t, err, xdr.ErrOpaqueTooLarge)
	})
}

// ============================================================================
// Re-encoding Tests
// ============================================================================

func TestDecodeEncodeIdempotent(t *testing.T) {
	var b compoundBuilder
	data := b.
		op(OP_PUTROOTFH, nil).
		op(OP_PUTFH, opaqueOperand([]byte{1, 2, 3})).
		op(OP_GETATTR, bitmapOperand(0x0000001E, 0x00080000)).
		op(OP_LOOKUP, func(buf *bytes.Buffer) { _ = xdr.WriteXDRString(buf, "a-name") }).
		op(OP_SETATTR, func(buf *bytes.Buffer) {
			_ = xdr.WriteUint32Array(buf, nil)
			_ = xdr.WriteXDROpaque(buf, nil)
		}).
		op(OP_GETFH, nil).
		build("idem", 1)

	args, err := DecodeCompoundArgs(data)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, args.Encode(&out))
	assert.Equal(t, data, out.Bytes())
}

func TestOperandDataMatchesWire(t *testing.T) {
	var b compoundBuilder
	var operand bytes.Buffer
	_ = xdr.WriteUint32Array(&operand, []uint32{2, 0x100000})

	args, err := DecodeCompoundArgs(b.op(OP_GETATTR, func(buf *bytes.Buffer) { buf.Write(operand.Bytes()) }).build("", 0))
	require.NoError(t, err)
	assert.Equal(t, operand.Bytes(), args.Ops[0].Data)
}

func TestCompound4ResponseEncode(t *testing.T) {
	resp := &Compound4Response{
		Status: NFS4ERR_NOTSUPP,
		Tag:    []byte("abc"),
		Results: []CompoundResult{
			{OpCode: OP_PUTROOTFH, Status: NFS4_OK},
			{OpCode: OP_GETFH, Status: NFS4_OK, Data: []byte{0, 0, 0, 1, 0xAA, 0, 0, 0}},
			{OpCode: OP_LOOKUP, Status: NFS4ERR_NOTSUPP},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, resp.Encode(&buf))

	want := []byte{
		0, 0, 0x27, 0x14, // NFS4ERR_NOTSUPP
		0, 0, 0, 3, 'a', 'b', 'c', 0, // tag
		0, 0, 0, 3, // numres
		0, 0, 0, OP_PUTROOTFH, 0, 0, 0, 0,
		0, 0, 0, OP_GETFH, 0, 0, 0, 0, 0, 0, 0, 1, 0xAA, 0, 0, 0,
		0, 0, 0, OP_LOOKUP, 0, 0, 0x27, 0x14,
	}
	assert.Equal(t, want, buf.Bytes())
}

func TestRequireCurrentFH(t *testing.T) {
	assert.Equal(t, uint32(NFS4ERR_NOFILEHANDLE), RequireCurrentFH(&CompoundContext{}))
	assert.Equal(t, uint32(NFS4_OK), RequireCurrentFH(&CompoundContext{CurrentFH: []byte{}}))
}

// ============================================================================
// Catalog and Error Mapping Tests
// ============================================================================

func TestOpCatalog(t *testing.T) {
	for op := uint32(OP_ACCESS); op <= OP_CLONE; op++ {
		assert.True(t, IsKnownOp(op), "opcode %d", op)
		assert.NotEqual(t, "UNKNOWN", OpName(op), "opcode %d", op)
	}
	assert.False(t, IsKnownOp(0))
	assert.False(t, IsKnownOp(2))
	assert.False(t, IsKnownOp(OP_CLONE+1))
	assert.Equal(t, "ILLEGAL", OpName(OP_ILLEGAL))
	assert.Equal(t, "GETATTR", OpName(OP_GETATTR))
}

func TestStatusName(t *testing.T) {
	assert.Equal(t, "NFS4ERR_NOFILEHANDLE", StatusName(NFS4ERR_NOFILEHANDLE))
	assert.Equal(t, "NFS4_OK", StatusName(NFS4_OK))
	assert.Equal(t, "12345", StatusName(12345))
}

func TestMapStoreErrorToNFS4(t *testing.T) {
	tests := []struct {
		code storeerrors.ErrorCode
		want uint32
	}{
		{storeerrors.ErrNotFound, NFS4ERR_NOENT},
		{storeerrors.ErrAccessDenied, NFS4ERR_ACCESS},
		{storeerrors.ErrAlreadyExists, NFS4ERR_EXIST},
		{storeerrors.ErrNotEmpty, NFS4ERR_NOTEMPTY},
		{storeerrors.ErrIsDirectory, NFS4ERR_ISDIR},
		{storeerrors.ErrNotDirectory, NFS4ERR_NOTDIR},
		{storeerrors.ErrInvalidArgument, NFS4ERR_INVAL},
		{storeerrors.ErrIOError, NFS4ERR_IO},
		{storeerrors.ErrNoSpace, NFS4ERR_NOSPC},
		{storeerrors.ErrReadOnly, NFS4ERR_ROFS},
		{storeerrors.ErrNotSupported, NFS4ERR_NOTSUPP},
		{storeerrors.ErrInvalidHandle, NFS4ERR_BADHANDLE},
		{storeerrors.ErrStaleHandle, NFS4ERR_STALE},
		{storeerrors.ErrNameTooLong, NFS4ERR_NAMETOOLONG},
		{storeerrors.ErrLocked, NFS4ERR_LOCKED},
	}
	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", &storeerrors.StoreError{Code: tt.code, Message: "x"})
			assert.Equal(t, tt.want, MapStoreErrorToNFS4(err))
		})
	}

	t.Run("Nil", func(t *testing.T) {
		assert.Equal(t, uint32(NFS4_OK), MapStoreErrorToNFS4(nil))
	})

	t.Run("UnmappedDefaultsToServerFault", func(t *testing.T) {
		assert.Equal(t, uint32(NFS4ERR_SERVERFAULT), MapStoreErrorToNFS4(errors.New("boom")))
		assert.Equal(t, uint32(NFS4ERR_SERVERFAULT), MapStoreErrorToNFS4(&storeerrors.StoreError{Code: 999}))
	})
}
