package telemetry

import (
	"encoding/hex"

	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys. RPC keys follow the OpenTelemetry rpc.* convention;
// NFSv4 specific ones live under nfs4.*.
const (
	AttrClientAddr = "client.address"

	AttrRPCXID       = "rpc.xid"
	AttrRPCProgram   = "rpc.program"
	AttrRPCVersion   = "rpc.version"
	AttrRPCProcedure = "rpc.procedure"

	AttrNFSTag          = "nfs4.tag"
	AttrNFSMinorVersion = "nfs4.minor_version"
	AttrNFSOpCount      = "nfs4.op_count"
	AttrNFSOpIndex      = "nfs4.op_index"
	AttrNFSOpName       = "nfs4.op"
	AttrNFSStatus       = "nfs4.status"
	AttrNFSHandle       = "nfs4.handle"

	AttrStoreBackend = "store.backend"
	AttrStorePath    = "store.path"
)

// Span names.
const (
	SpanRPCCall      = "rpc.call"
	SpanNFSCompound  = "nfs4.compound"
	SpanNFSOperation = "nfs4.op"
)

func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

func RPCXID(xid uint32) attribute.KeyValue {
	return attribute.Int64(AttrRPCXID, int64(xid))
}

func RPCProgram(prog uint32) attribute.KeyValue {
	return attribute.Int64(AttrRPCProgram, int64(prog))
}

func RPCVersion(vers uint32) attribute.KeyValue {
	return attribute.Int64(AttrRPCVersion, int64(vers))
}

func RPCProcedure(name string) attribute.KeyValue {
	return attribute.String(AttrRPCProcedure, name)
}

// NFSTag records the COMPOUND tag. Tags are opaque, so it is recorded as
// a string only when printable and as hex otherwise.
func NFSTag(tag []byte) attribute.KeyValue {
	for _, b := range tag {
		if b < 0x20 || b > 0x7e {
			return attribute.String(AttrNFSTag, hex.EncodeToString(tag))
		}
	}
	return attribute.String(AttrNFSTag, string(tag))
}

func NFSMinorVersion(minor uint32) attribute.KeyValue {
	return attribute.Int64(AttrNFSMinorVersion, int64(minor))
}

func NFSOpCount(n int) attribute.KeyValue {
	return attribute.Int(AttrNFSOpCount, n)
}

func NFSOpIndex(i int) attribute.KeyValue {
	return attribute.Int(AttrNFSOpIndex, i)
}

func NFSOpName(name string) attribute.KeyValue {
	return attribute.String(AttrNFSOpName, name)
}

// NFSStatus records the symbolic nfsstat4 name (e.g. "NFS4ERR_NOTSUPP").
func NFSStatus(name string) attribute.KeyValue {
	return attribute.String(AttrNFSStatus, name)
}

func NFSHandle(handle []byte) attribute.KeyValue {
	return attribute.String(AttrNFSHandle, hex.EncodeToString(handle))
}

func StoreBackend(name string) attribute.KeyValue {
	return attribute.String(AttrStoreBackend, name)
}

func StorePath(path string) attribute.KeyValue {
	return attribute.String(AttrStorePath, path)
}
