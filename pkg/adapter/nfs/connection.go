package nfs

import (
	"context"
	"errors"
	"io"
	"net"
	"runtime/debug"
	"time"

	"github.com/marmos91/nfs4d/internal/logger"
	"github.com/marmos91/nfs4d/internal/protocol/nfs/rpc"
	"github.com/marmos91/nfs4d/internal/protocol/nfs/v4/handlers"
	"github.com/marmos91/nfs4d/internal/protocol/nfs/v4/types"
	"github.com/marmos91/nfs4d/internal/telemetry"
	"github.com/marmos91/nfs4d/pkg/bufpool"
)

// Request outcomes reported to metrics.
const (
	outcomeOK       = "ok"
	outcomeCodec    = "codec"
	outcomeBackend  = "backend"
	outcomeInternal = "internal"
	outcomeWrite    = "write"
)

// NFSConnection serves the calls of one client, strictly in arrival order.
type NFSConnection struct {
	server     *NFSAdapter
	conn       net.Conn
	clientAddr string
}

// NewNFSConnection wraps an accepted connection.
func NewNFSConnection(server *NFSAdapter, conn net.Conn) *NFSConnection {
	return &NFSConnection{
		server:     server,
		conn:       conn,
		clientAddr: conn.RemoteAddr().String(),
	}
}

// Serve reads and answers calls until the client disconnects, a call cannot
// be answered, or ctx is cancelled. The connection is closed on return.
//
// A call that fails to decode, or whose evaluation hits a backend failure,
// closes the connection without a reply. Panics are recovered and close
// only this connection.
func (c *NFSConnection) Serve(ctx context.Context) {
	defer c.handleConnectionClose()

	logger.Debug("New connection", logger.Client(c.clientAddr))

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Connection closed due to shutdown", logger.Client(c.clientAddr))
			return
		default:
		}

		record, err := c.readRecord(ctx)
		if err != nil {
			c.logReadError(ctx, err)
			return
		}

		// The reply is written before handleRecord returns, so nothing
		// references the record after this point.
		err = c.handleRecord(ctx, record)
		bufpool.Put(record)
		if err != nil {
			return
		}
	}
}

// readRecord waits for the next call record.
func (c *NFSConnection) readRecord(ctx context.Context) ([]byte, error) {
	if timeout := c.server.config.Timeouts.Read; timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, err
		}
	}

	// Shutdown may have shortened the deadline just before it was reset.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	record, err := rpc.ReadRecord(c.conn)
	if err != nil {
		return nil, err
	}

	c.server.metrics.RecordBytes("in", uint64(len(record))+4)
	return record, nil
}

func (c *NFSConnection) logReadError(ctx context.Context, err error) {
	var netErr net.Error
	switch {
	case errors.Is(err, io.EOF):
		logger.Debug("Connection closed by client", logger.Client(c.clientAddr))
	case ctx.Err() != nil:
		logger.Debug("Connection closed due to shutdown", logger.Client(c.clientAddr))
	case errors.As(err, &netErr) && netErr.Timeout():
		logger.Debug("Connection timed out", logger.Client(c.clientAddr), logger.Err(err))
	case errors.Is(err, rpc.ErrMultiFragment), errors.Is(err, rpc.ErrFragmentTooLarge):
		logger.Warn("Unsupported record framing, closing connection",
			logger.Client(c.clientAddr), logger.Err(err))
		c.server.metrics.RecordRequest("UNKNOWN", 0, outcomeCodec)
	default:
		logger.Debug("Error reading record", logger.Client(c.clientAddr), logger.Err(err))
	}
}

// handleRecord evaluates one call record and writes its reply. A non-nil
// error means the connection must be closed.
func (c *NFSConnection) handleRecord(ctx context.Context, record []byte) error {
	start := time.Now()

	call, err := rpc.ReadCall(record)
	if err != nil {
		logger.Warn("Malformed RPC call, closing connection",
			logger.Client(c.clientAddr), logger.Err(err))
		c.server.metrics.RecordRequest("UNKNOWN", time.Since(start), outcomeCodec)
		return err
	}

	data, err := rpc.ReadData(record)
	if err != nil {
		c.server.metrics.RecordRequest("UNKNOWN", time.Since(start), outcomeCodec)
		return err
	}

	procedure := procedureName(call)
	lc := logger.NewLogContext(c.clientAddr).WithCall(call.XID, procedure)
	reqCtx := logger.WithContext(ctx, lc)

	reqCtx, span := telemetry.StartSpan(reqCtx, telemetry.SpanRPCCall)
	defer span.End()
	telemetry.SetAttributes(reqCtx,
		telemetry.RPCXID(call.XID),
		telemetry.RPCProgram(call.Program),
		telemetry.RPCVersion(call.Version),
		telemetry.RPCProcedure(procedure),
		telemetry.ClientAddr(c.clientAddr),
	)
	reqCtx = telemetry.WithLogContext(reqCtx)

	logger.DebugCtx(reqCtx, "RPC call",
		"program", call.Program,
		"version", call.Version,
		"bytes", len(record))

	c.server.metrics.RecordRequestStart(procedure)
	defer c.server.metrics.RecordRequestEnd(procedure)

	reply, err := c.server.handler.HandleCall(reqCtx, call, data, c.clientAddr)
	if err != nil {
		telemetry.RecordError(reqCtx, err)
		outcome := outcomeCodec
		switch {
		case errors.Is(err, handlers.ErrBackend):
			outcome = outcomeBackend
		case errors.Is(err, handlers.ErrUnhandledOperation):
			outcome = outcomeInternal
		}
		logger.DebugCtx(reqCtx, "Call not answered, closing connection",
			"outcome", outcome, logger.Err(err))
		c.server.metrics.RecordRequest(procedure, time.Since(start), outcome)
		return err
	}

	if err := c.writeReply(reply); err != nil {
		telemetry.RecordError(reqCtx, err)
		logger.DebugCtx(reqCtx, "Error writing reply", logger.Err(err))
		c.server.metrics.RecordRequest(procedure, time.Since(start), outcomeWrite)
		return err
	}

	c.server.metrics.RecordRequest(procedure, time.Since(start), outcomeOK)
	logger.DebugCtx(reqCtx, "RPC reply sent",
		"bytes", len(reply),
		logger.DurationMs(float64(time.Since(start).Microseconds())/1000.0))
	return nil
}

// writeReply writes an already framed reply.
func (c *NFSConnection) writeReply(reply []byte) error {
	if timeout := c.server.config.Timeouts.Write; timeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			return err
		}
	}

	if _, err := c.conn.Write(reply); err != nil {
		return err
	}

	c.server.metrics.RecordBytes("out", uint64(len(reply)))
	return nil
}

// handleConnectionClose recovers a panic in the connection goroutine and
// closes the socket.
func (c *NFSConnection) handleConnectionClose() {
	if r := recover(); r != nil {
		logger.Error("Panic in connection handler",
			logger.Client(c.clientAddr),
			"error", r,
			"stack", string(debug.Stack()))
	}
	_ = c.conn.Close()
}

func procedureName(call *rpc.RPCCallMessage) string {
	if call.Program != types.NFS4_PROGRAM || call.Version != types.NFS4_VERSION {
		return "UNKNOWN"
	}
	switch call.Procedure {
	case types.NFSPROC4_NULL:
		return "NULL"
	case types.NFSPROC4_COMPOUND:
		return "COMPOUND"
	default:
		return "UNKNOWN"
	}
}
