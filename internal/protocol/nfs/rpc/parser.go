package rpc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/marmos91/nfs4d/internal/protocol/xdr"
	xdr2 "github.com/rasky/go-xdr/xdr2"
)

var (
	// ErrNotCall is returned when a message's type word is not CALL.
	ErrNotCall = errors.New("rpc: message is not a CALL")

	// ErrTruncatedHeader is returned when the call header runs past the message.
	ErrTruncatedHeader = errors.New("rpc: truncated call header")

	// ErrAuthTooLarge is returned when a credential or verifier body exceeds MaxAuthBytes.
	ErrAuthTooLarge = errors.New("rpc: auth body exceeds 400 bytes")
)

// ReadCall parses an RPC call header from an unframed message.
//
// The credential and verifier lengths are bounds-checked before go-xdr sees
// the bytes, so a hostile length can't force a large allocation. After
// ReadCall succeeds, use ReadData to get the procedure arguments.
func ReadCall(data []byte) (*RPCCallMessage, error) {
	headerLen, err := callHeaderLength(data)
	if err != nil {
		return nil, err
	}

	call := &RPCCallMessage{}
	n, err := xdr2.Unmarshal(bytes.NewReader(data[:headerLen]), call)
	if err != nil {
		return nil, fmt.Errorf("unmarshal RPC call: %w", err)
	}
	if n != headerLen {
		return nil, fmt.Errorf("unmarshal RPC call: consumed %d of %d header bytes", n, headerLen)
	}

	if call.MsgType != RPCCall {
		return nil, fmt.Errorf("%w: msg_type=%d", ErrNotCall, call.MsgType)
	}

	return call, nil
}

// ReadData returns the procedure-specific bytes that follow the call header.
//
// The returned slice aliases message. It is empty (not nil) for procedures
// that carry no arguments, such as NULL.
func ReadData(message []byte) ([]byte, error) {
	headerLen, err := callHeaderLength(message)
	if err != nil {
		return nil, err
	}
	return message[headerLen:], nil
}

// callHeaderLength walks the fixed fields plus cred and verf and returns the
// byte offset at which procedure arguments start.
func callHeaderLength(message []byte) (int, error) {
	offset := callHeaderFixedSize
	if len(message) < offset {
		return 0, fmt.Errorf("%w: %d bytes", ErrTruncatedHeader, len(message))
	}

	for _, field := range []string{"cred", "verf"} {
		// flavor + length
		if len(message) < offset+8 {
			return 0, fmt.Errorf("%w: missing %s", ErrTruncatedHeader, field)
		}
		bodyLen := binary.BigEndian.Uint32(message[offset+4 : offset+8])
		if bodyLen > MaxAuthBytes {
			return 0, fmt.Errorf("%w: %s length %d", ErrAuthTooLarge, field, bodyLen)
		}
		offset += 8 + int(bodyLen) + int(xdr.Padding(bodyLen))
		if len(message) < offset {
			return 0, fmt.Errorf("%w: %s body", ErrTruncatedHeader, field)
		}
	}

	return offset, nil
}

// MakeReplyHeader returns the XDR encoding of an accepted reply header with
// an AUTH_NULL verifier.
func MakeReplyHeader(xid uint32, acceptStat uint32) ([]byte, error) {
	reply := RPCReplyMessage{
		XID:        xid,
		MsgType:    RPCReply,
		ReplyState: RPCMsgAccepted,
		Verf: OpaqueAuth{
			Flavor: AuthNull,
			Body:   []byte{},
		},
		AcceptStat: acceptStat,
	}

	// xid + msg_type + reply_state + verf(8) + accept_stat
	buf := bytes.NewBuffer(make([]byte, 0, 24))
	if _, err := xdr2.Marshal(buf, &reply); err != nil {
		return nil, fmt.Errorf("marshal reply: %w", err)
	}
	return buf.Bytes(), nil
}

// MakeSuccessReply builds a complete, record-marked SUCCESS reply:
// fragment header, accepted reply header, then data verbatim.
func MakeSuccessReply(xid uint32, data []byte) ([]byte, error) {
	header, err := MakeReplyHeader(xid, RPCSuccess)
	if err != nil {
		return nil, err
	}

	payload := make([]byte, 0, len(header)+len(data))
	payload = append(payload, header...)
	payload = append(payload, data...)
	return Frame(payload)
}

// MakeErrorReply builds a record-marked accepted reply carrying a non-SUCCESS
// accept_stat and no body.
func MakeErrorReply(xid uint32, acceptStat uint32) ([]byte, error) {
	header, err := MakeReplyHeader(xid, acceptStat)
	if err != nil {
		return nil, fmt.Errorf("marshal error reply: %w", err)
	}
	return Frame(header)
}
