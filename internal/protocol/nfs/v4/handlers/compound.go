package handlers

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/marmos91/nfs4d/internal/logger"
	"github.com/marmos91/nfs4d/internal/protocol/nfs/v4/types"
	"github.com/marmos91/nfs4d/internal/telemetry"
)

// ProcessCompound evaluates every operation of args, in order.
//
// Evaluation continues past failing operations. This differs from RFC 7530,
// which stops at the first failure, and is kept for wire compatibility with
// existing clients of this server. Consequences:
//   - the response holds exactly one result per submitted operation
//   - the overall status is that of the last failed operation
//
// The current filehandle lives in compCtx and is never shared between
// requests. A backend failure aborts evaluation with an error wrapping
// ErrBackend; no partial response is produced.
func (h *Handler) ProcessCompound(compCtx *types.CompoundContext, xid uint32, args *types.Compound4Args) (*types.Compound4Response, error) {
	if compCtx.Context == nil {
		compCtx.Context = context.Background()
	}

	ctx, span := telemetry.StartSpan(compCtx.Context, "nfs4.compound",
		trace.WithAttributes(
			telemetry.RPCXID(xid),
			telemetry.ClientAddr(compCtx.ClientAddr),
			telemetry.NFSTag(args.Tag),
			telemetry.NFSMinorVersion(args.MinorVersion),
			telemetry.NFSOpCount(len(args.Ops)),
		))
	defer span.End()
	compCtx.Context = ctx

	results := make([]types.CompoundResult, 0, len(args.Ops))
	var lastStatus uint32 = types.NFS4_OK

	for i, op := range args.Ops {
		result, err := h.dispatch(compCtx, op.Args)
		if err != nil {
			opName := types.OpName(op.OpCode)
			statusName := types.StatusName(types.MapStoreErrorToNFS4(err))

			telemetry.RecordError(ctx, err)
			logger.ErrorCtx(ctx, "NFSv4 COMPOUND aborted",
				"op_index", i,
				"opcode", op.OpCode,
				"op_name", opName,
				"status", statusName,
				"client", compCtx.ClientAddr,
				"error", err)
			if h.Metrics != nil {
				h.Metrics.RecordOperation(opName, statusName)
			}
			return nil, err
		}

		results = append(results, *result)
		if result.Status != types.NFS4_OK {
			lastStatus = result.Status
		}

		opName := types.OpName(op.OpCode)
		statusName := types.StatusName(result.Status)

		logger.DebugCtx(ctx, "NFSv4 COMPOUND op dispatched",
			"op_index", i,
			"opcode", op.OpCode,
			"op_name", opName,
			"status", result.Status,
			"client", compCtx.ClientAddr)

		telemetry.AddEvent(ctx, "nfs4.op",
			telemetry.NFSOpIndex(i),
			telemetry.NFSOpName(opName),
			telemetry.NFSStatus(statusName))

		if h.Metrics != nil {
			h.Metrics.RecordOperation(opName, statusName)
		}
	}

	return &types.Compound4Response{
		Status:  lastStatus,
		Tag:     args.Tag,
		Results: results,
	}, nil
}

// dispatch runs one operation. Every variant of types.Operation has a case.
func (h *Handler) dispatch(compCtx *types.CompoundContext, op types.Operation) (*types.CompoundResult, error) {
	switch op := op.(type) {
	case types.PutRootFH:
		return h.handlePutRootFH(compCtx)
	case types.PutFH:
		return h.handlePutFH(compCtx, op), nil
	case types.GetFH:
		return h.handleGetFH(compCtx), nil
	case types.GetAttr:
		return h.handleGetAttr(compCtx, op)
	case types.Lookup, types.SetAttr, types.Unsupported, types.Unrecognized:
		return notSuppResult(op.OpCode()), nil
	case nil:
		return nil, fmt.Errorf("%w: no decoded arguments", ErrUnhandledOperation)
	}
	return nil, fmt.Errorf("%w: %T", ErrUnhandledOperation, op)
}

func notSuppResult(opcode uint32) *types.CompoundResult {
	return &types.CompoundResult{
		OpCode: opcode,
		Status: types.NFS4ERR_NOTSUPP,
	}
}
