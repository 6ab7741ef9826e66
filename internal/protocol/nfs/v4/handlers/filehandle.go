package handlers

import (
	"bytes"
	"fmt"

	"github.com/marmos91/nfs4d/internal/protocol/nfs/v4/types"
	"github.com/marmos91/nfs4d/internal/protocol/xdr"
)

// handlePutRootFH implements the PUTROOTFH operation (RFC 7530 Section 16.24).
//
// Wire format args: none
// Wire format res:  nfsstat4 only
func (h *Handler) handlePutRootFH(ctx *types.CompoundContext) (*types.CompoundResult, error) {
	rootHandle, err := h.Store.RootHandle(ctx.Context)
	if err != nil {
		return nil, fmt.Errorf("%w: root handle: %w", ErrBackend, err)
	}

	ctx.CurrentFH = make([]byte, len(rootHandle))
	copy(ctx.CurrentFH, rootHandle)

	return &types.CompoundResult{
		OpCode: types.OP_PUTROOTFH,
		Status: types.NFS4_OK,
	}, nil
}

// handlePutFH implements the PUTFH operation (RFC 7530 Section 16.22).
//
// The handle is taken as-is. A zero-length handle still sets the register.
func (h *Handler) handlePutFH(ctx *types.CompoundContext, op types.PutFH) *types.CompoundResult {
	ctx.CurrentFH = make([]byte, len(op.Handle))
	copy(ctx.CurrentFH, op.Handle)

	return &types.CompoundResult{
		OpCode: types.OP_PUTFH,
		Status: types.NFS4_OK,
	}
}

// handleGetFH implements the GETFH operation (RFC 7530 Section 16.8).
//
// Wire format res: nfs_fh4 (opaque) on success.
func (h *Handler) handleGetFH(ctx *types.CompoundContext) *types.CompoundResult {
	if status := types.RequireCurrentFH(ctx); status != types.NFS4_OK {
		return &types.CompoundResult{OpCode: types.OP_GETFH, Status: status}
	}

	var buf bytes.Buffer
	_ = xdr.WriteXDROpaque(&buf, ctx.CurrentFH)

	return &types.CompoundResult{
		OpCode: types.OP_GETFH,
		Status: types.NFS4_OK,
		Data:   buf.Bytes(),
	}
}
