package rpc

// RPC Program Numbers
//
// Reference: RFC 5531 (RPC Protocol Specification Version 2)
const (
	// ProgramNFS is the NFS program number, shared by every protocol version.
	ProgramNFS = 100003
)

// RPCVersion2 is the only ONC RPC protocol version in use (RFC 5531).
const RPCVersion2 = 2

// RPC Message Types
//
// Reference: RFC 5531 Section 9 (RPC Message Protocol)
const (
	// RPCCall indicates an RPC call message (client → server).
	RPCCall = 0

	// RPCReply indicates an RPC reply message (server → client).
	RPCReply = 1
)

// RPC Reply States
//
// Reference: RFC 5531 Section 9 (RPC Message Protocol)
const (
	// RPCMsgAccepted means the server recognised the call and attempted it.
	// The accept_stat that follows says how that went.
	RPCMsgAccepted = 0

	// RPCMsgDenied means the server rejected the call (RPC version or auth).
	RPCMsgDenied = 1
)

// RPC Accept Status
//
// Reference: RFC 5531 Section 9 (RPC Message Protocol)
const (
	RPCSuccess      = 0
	RPCProgUnavail  = 1
	RPCProgMismatch = 2
	RPCProcUnavail  = 3
	RPCGarbageArgs  = 4
	RPCSystemErr    = 5
)

// Authentication flavors
//
// Credentials are parsed for shape only. No flavor is enforced.
//
// Reference: RFC 5531 Section 8.2
const (
	AuthNull  = 0
	AuthUnix  = 1
	AuthShort = 2
	AuthDES   = 3
)

// MaxAuthBytes is the maximum length of a credential or verifier body
// (RFC 5531 Section 8.2: "opaque body<400>").
const MaxAuthBytes = 400

// callHeaderFixedSize covers XID, MsgType, RPCVersion, Program, Version and Procedure.
const callHeaderFixedSize = 6 * 4
