package rpc

// RPCCallMessage represents an RPC call (request) message header.
//
// Wire Format (XDR encoding):
//   - XID:        4 bytes (transaction identifier)
//   - MsgType:    4 bytes (must be 0 for CALL)
//   - RPCVersion: 4 bytes (2 for RPC version 2)
//   - Program:    4 bytes (program number)
//   - Version:    4 bytes (program version)
//   - Procedure:  4 bytes (procedure number within program)
//   - Cred:       variable (flavor + opaque body)
//   - Verf:       variable (flavor + opaque body)
//   - [procedure-specific parameters follow]
//
// Reference: RFC 5531 Section 9
type RPCCallMessage struct {
	// XID is echoed unchanged in the reply so the client can match it.
	XID uint32

	MsgType    uint32
	RPCVersion uint32

	// Program and Version are checked against the NFSv4 program by the
	// procedure layer, not here.
	Program uint32
	Version uint32

	Procedure uint32

	// Cred and Verf are consumed and carried for logging; no authentication
	// decision is made on them.
	Cred OpaqueAuth
	Verf OpaqueAuth
}

// RPCReplyMessage is the accepted-reply header this server sends.
//
// Wire Format (XDR encoding):
//   - XID:        4 bytes (echoed from call)
//   - MsgType:    4 bytes (1 = REPLY)
//   - ReplyState: 4 bytes (0 = MSG_ACCEPTED)
//   - Verf:       8 bytes for AUTH_NULL (flavor 0, length 0)
//   - AcceptStat: 4 bytes (0 = SUCCESS)
//   - [procedure results follow]
type RPCReplyMessage struct {
	XID        uint32
	MsgType    uint32
	ReplyState uint32
	Verf       OpaqueAuth
	AcceptStat uint32
}

// OpaqueAuth represents authentication credentials or verifiers.
//
// The xdr:"opaque" tag makes go-xdr encode Body as variable-length opaque
// (length prefix, data, padding).
type OpaqueAuth struct {
	Flavor uint32
	Body   []byte `xdr:"opaque"`
}

// GetAuthFlavor returns the credential flavor of the call.
func (c *RPCCallMessage) GetAuthFlavor() uint32 {
	return c.Cred.Flavor
}
