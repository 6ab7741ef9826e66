package handlers

import (
	"bytes"
	"fmt"

	"github.com/marmos91/nfs4d/internal/protocol/nfs/v4/attrs"
	"github.com/marmos91/nfs4d/internal/protocol/nfs/v4/types"
	"github.com/marmos91/nfs4d/pkg/metadata"
)

// handleGetAttr implements the GETATTR operation (RFC 7530 Section 16.7).
//
// The namespace has a single object, so attributes are always those of
// the root record, encoded with the root handle.
//
// Wire format res: fattr4 on success.
func (h *Handler) handleGetAttr(ctx *types.CompoundContext, op types.GetAttr) (*types.CompoundResult, error) {
	if status := types.RequireCurrentFH(ctx); status != types.NFS4_OK {
		return &types.CompoundResult{OpCode: types.OP_GETATTR, Status: status}, nil
	}

	attr, err := h.Store.GetAttr(ctx.Context, metadata.RootPath)
	if err != nil {
		return nil, fmt.Errorf("%w: getattr %s: %w", ErrBackend, metadata.RootPath, err)
	}
	rootHandle, err := h.Store.RootHandle(ctx.Context)
	if err != nil {
		return nil, fmt.Errorf("%w: root handle: %w", ErrBackend, err)
	}

	var buf bytes.Buffer
	if err := attrs.EncodeFileAttrs(&buf, op.AttrRequest, attr, rootHandle); err != nil {
		return nil, fmt.Errorf("encode GETATTR result: %w", err)
	}

	return &types.CompoundResult{
		OpCode: types.OP_GETATTR,
		Status: types.NFS4_OK,
		Data:   buf.Bytes(),
	}, nil
}
