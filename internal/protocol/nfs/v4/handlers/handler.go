// Package handlers implements the NFSv4 COMPOUND evaluator and the RPC
// procedure dispatch in front of it.
//
// Operations arrive already decoded as types.Operation variants. The
// evaluator walks them in order against a per-request CompoundContext and an
// injected metadata.MetadataStore.
package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/marmos91/nfs4d/internal/logger"
	"github.com/marmos91/nfs4d/internal/protocol/nfs/rpc"
	"github.com/marmos91/nfs4d/internal/protocol/nfs/v4/types"
	"github.com/marmos91/nfs4d/internal/protocol/xdr"
	"github.com/marmos91/nfs4d/pkg/metadata"
	"github.com/marmos91/nfs4d/pkg/metrics"
)

// ErrBackend wraps failures of the metadata store during evaluation.
// They abort the connection without a reply.
var ErrBackend = errors.New("nfs4: backend failure")

// ErrUnhandledOperation is returned for an operation the evaluator has no
// case for, including a missing (nil) operation. It aborts the connection.
var ErrUnhandledOperation = errors.New("nfs4: unhandled operation")

// Handler evaluates NFSv4 calls against a metadata store.
type Handler struct {
	// Store is shared by every connection; it does its own locking.
	Store metadata.MetadataStore

	// Metrics records per-operation counters. Nil disables collection.
	Metrics metrics.NFSMetrics
}

// NewHandler creates a Handler over store. m may be nil.
func NewHandler(store metadata.MetadataStore, m metrics.NFSMetrics) *Handler {
	return &Handler{Store: store, Metrics: m}
}

// HandleCall evaluates one RPC call and returns the record-framed reply.
//
// A returned error means the connection must be closed without a reply:
// the COMPOUND arguments failed to decode or the backend failed.
//
// Program and version are checked here, before any operation is looked at.
// A mismatch and an unknown procedure both get an accepted reply whose
// body is a single status word.
func (h *Handler) HandleCall(ctx context.Context, call *rpc.RPCCallMessage, data []byte, clientAddr string) ([]byte, error) {
	if call.Program != types.NFS4_PROGRAM || call.Version != types.NFS4_VERSION {
		logger.DebugCtx(ctx, "NFSv4 program/version mismatch",
			"xid", fmt.Sprintf("0x%x", call.XID),
			"program", call.Program,
			"version", call.Version,
			"client", clientAddr)
		return rpc.MakeSuccessReply(call.XID, encodeStatusOnly(types.NFS4ERR_BADTYPE))
	}

	switch call.Procedure {
	case types.NFSPROC4_NULL:
		return rpc.MakeSuccessReply(call.XID, h.HandleNull())

	case types.NFSPROC4_COMPOUND:
		args, err := types.DecodeCompoundArgs(data)
		if err != nil {
			return nil, fmt.Errorf("decode COMPOUND xid=0x%x: %w", call.XID, err)
		}

		compCtx := &types.CompoundContext{
			Context:    ctx,
			ClientAddr: clientAddr,
		}
		resp, err := h.ProcessCompound(compCtx, call.XID, args)
		if err != nil {
			return nil, err
		}

		var body bytes.Buffer
		if err := resp.Encode(&body); err != nil {
			return nil, fmt.Errorf("encode COMPOUND4res: %w", err)
		}
		return rpc.MakeSuccessReply(call.XID, body.Bytes())

	default:
		logger.DebugCtx(ctx, "Unknown NFSv4 procedure",
			"procedure", call.Procedure,
			"client", clientAddr)
		return rpc.MakeSuccessReply(call.XID, encodeStatusOnly(types.NFS4ERR_NOTSUPP))
	}
}

// HandleNull implements NFSPROC4_NULL. The reply has no body.
func (h *Handler) HandleNull() []byte {
	return []byte{}
}

// encodeStatusOnly encodes a lone nfsstat4.
func encodeStatusOnly(status uint32) []byte {
	var buf bytes.Buffer
	_ = xdr.WriteUint32(&buf, status)
	return buf.Bytes()
}
