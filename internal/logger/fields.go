package logger

import (
	"encoding/hex"
	"log/slog"
)

// Standard field keys. Use these rather than ad-hoc strings so log queries
// work across the adapter, the evaluator and the stores.
const (
	// Tracing
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	// RPC envelope
	KeyXID       = "xid"
	KeyProcedure = "procedure"
	KeyProgram   = "program"
	KeyVersion   = "version"
	KeyClient    = "client"

	// COMPOUND evaluation
	KeyTag      = "tag"
	KeyMinorVer = "minor_version"
	KeyOpIndex  = "op_index"
	KeyOpCode   = "opcode"
	KeyOpName   = "op_name"
	KeyStatus   = "status"
	KeyHandle   = "handle"

	// Metadata store
	KeyBackend = "backend"
	KeyPath    = "path"
	KeySize    = "size"

	// Connection
	KeyConnectionID = "connection_id"
	KeyBytes        = "bytes"

	// General
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
)

// XID formats an RPC transaction id as hex, matching how packet captures show it.
func XID(xid uint32) slog.Attr {
	return slog.String(KeyXID, "0x"+hex.EncodeToString([]byte{
		byte(xid >> 24), byte(xid >> 16), byte(xid >> 8), byte(xid),
	}))
}

// Client returns a slog.Attr for the remote address.
func Client(addr string) slog.Attr {
	return slog.String(KeyClient, addr)
}

// OpName returns a slog.Attr for an NFSv4 operation name.
func OpName(name string) slog.Attr {
	return slog.String(KeyOpName, name)
}

// Status returns a slog.Attr for an nfsstat4 value.
func Status(code uint32) slog.Attr {
	return slog.Uint64(KeyStatus, uint64(code))
}

// Handle returns a slog.Attr for a file handle, hex encoded.
func Handle(h []byte) slog.Attr {
	return slog.String(KeyHandle, hex.EncodeToString(h))
}

// Path returns a slog.Attr for a store path.
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Backend returns a slog.Attr for the metadata store backend name.
func Backend(name string) slog.Attr {
	return slog.String(KeyBackend, name)
}

// DurationMs returns a slog.Attr for a duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error. A nil error yields an empty Attr,
// which handlers drop.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
