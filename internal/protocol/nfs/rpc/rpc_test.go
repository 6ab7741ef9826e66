package rpc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/nfs4d/pkg/bufpool"
)

// ============================================================================
// Test Helper Functions
// ============================================================================

func putU32(buf *bytes.Buffer, v uint32) {
	_ = binary.Write(buf, binary.BigEndian, v)
}

func putOpaque(buf *bytes.Buffer, data []byte) {
	putU32(buf, uint32(len(data)))
	buf.Write(data)
	for i := 0; i < int((4-(len(data)%4))%4); i++ {
		buf.WriteByte(0)
	}
}

// buildCall encodes a call header followed by args.
func buildCall(xid, prog, vers, proc uint32, cred, verf []byte, args []byte) []byte {
	var buf bytes.Buffer
	putU32(&buf, xid)
	putU32(&buf, RPCCall)
	putU32(&buf, RPCVersion2)
	putU32(&buf, prog)
	putU32(&buf, vers)
	putU32(&buf, proc)
	putU32(&buf, AuthUnix)
	putOpaque(&buf, cred)
	putU32(&buf, AuthNull)
	putOpaque(&buf, verf)
	buf.Write(args)
	return buf.Bytes()
}

// ============================================================================
// ReadCall / ReadData Tests
// ============================================================================

func TestReadCall(t *testing.T) {
	t.Run("ParsesHeaderAndBody", func(t *testing.T) {
		args := []byte{0xDE, 0xAD, 0xBE, 0xEF}
		msg := buildCall(0x1234, ProgramNFS, 4, 1, []byte("cred!"), nil, args)

		call, err := ReadCall(msg)
		require.NoError(t, err)
		assert.Equal(t, uint32(0x1234), call.XID)
		assert.Equal(t, uint32(RPCCall), call.MsgType)
		assert.Equal(t, uint32(RPCVersion2), call.RPCVersion)
		assert.Equal(t, uint32(ProgramNFS), call.Program)
		assert.Equal(t, uint32(4), call.Version)
		assert.Equal(t, uint32(1), call.Procedure)
		assert.Equal(t, uint32(AuthUnix), call.GetAuthFlavor())
		assert.Equal(t, []byte("cred!"), call.Cred.Body)

		body, err := ReadData(msg)
		require.NoError(t, err)
		assert.Equal(t, args, body)
	})

	t.Run("EmptyBodyForNull", func(t *testing.T) {
		msg := buildCall(7, ProgramNFS, 4, 0, nil, nil, nil)

		_, err := ReadCall(msg)
		require.NoError(t, err)

		body, err := ReadData(msg)
		require.NoError(t, err)
		assert.NotNil(t, body)
		assert.Empty(t, body)
	})

	t.Run("PaddedCredentialsAreSkipped", func(t *testing.T) {
		for credLen := 0; credLen <= 8; credLen++ {
			cred := bytes.Repeat([]byte{0xAB}, credLen)
			msg := buildCall(1, ProgramNFS, 4, 1, cred, []byte{1}, []byte{0, 0, 0, 9})

			body, err := ReadData(msg)
			require.NoError(t, err, "cred length %d", credLen)
			assert.Equal(t, []byte{0, 0, 0, 9}, body)
		}
	})

	t.Run("RejectsReply", func(t *testing.T) {
		msg := buildCall(1, ProgramNFS, 4, 1, nil, nil, nil)
		binary.BigEndian.PutUint32(msg[4:8], RPCReply)

		_, err := ReadCall(msg)
		require.ErrorIs(t, err, ErrNotCall)
	})

	t.Run("RejectsTruncatedHeader", func(t *testing.T) {
		msg := buildCall(1, ProgramNFS, 4, 1, []byte("abcdefgh"), nil, nil)

		for _, cut := range []int{0, 10, 24, 30, 34, 40} {
			_, err := ReadCall(msg[:cut])
			require.ErrorIs(t, err, ErrTruncatedHeader, "cut at %d", cut)
		}
	})

	t.Run("RejectsOversizedAuth", func(t *testing.T) {
		msg := buildCall(1, ProgramNFS, 4, 1, nil, nil, nil)
		// cred length field sits after the 24-byte fixed header and flavor
		binary.BigEndian.PutUint32(msg[28:32], MaxAuthBytes+1)

		_, err := ReadCall(msg)
		require.ErrorIs(t, err, ErrAuthTooLarge)
	})
}

// ============================================================================
// Reply Tests
// ============================================================================

func TestMakeReplyHeader(t *testing.T) {
	header, err := MakeReplyHeader(0xCAFEBABE, RPCSuccess)
	require.NoError(t, err)

	want := []byte{
		0xCA, 0xFE, 0xBA, 0xBE, // xid
		0, 0, 0, 1, // REPLY
		0, 0, 0, 0, // MSG_ACCEPTED
		0, 0, 0, 0, // verf flavor AUTH_NULL
		0, 0, 0, 0, // verf length
		0, 0, 0, 0, // SUCCESS
	}
	assert.Equal(t, want, header)
}

func TestMakeSuccessReply(t *testing.T) {
	data := []byte{0, 0, 0, 0x2A}
	reply, err := MakeSuccessReply(9, data)
	require.NoError(t, err)

	require.Len(t, reply, 4+24+4)
	assert.Equal(t, uint32(0x80000000|28), binary.BigEndian.Uint32(reply[:4]))
	assert.Equal(t, uint32(9), binary.BigEndian.Uint32(reply[4:8]))
	assert.Equal(t, data, reply[28:])
}

func TestMakeErrorReply(t *testing.T) {
	reply, err := MakeErrorReply(3, RPCGarbageArgs)
	require.NoError(t, err)

	payload, err := ReadRecord(bytes.NewReader(reply))
	require.NoError(t, err)
	require.Len(t, payload, 24)
	assert.Equal(t, uint32(RPCGarbageArgs), binary.BigEndian.Uint32(payload[20:24]))
}

// ============================================================================
// Record Marking Tests
// ============================================================================

func TestRecordRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		{0x01},
		[]byte("hello, record"),
		bytes.Repeat([]byte{0x5A}, 65536),
	}

	for _, p := range payloads {
		var buf bytes.Buffer
		require.NoError(t, WriteRecord(&buf, p))
		assert.Equal(t, 4+len(p), buf.Len())

		got, err := ReadRecord(&buf)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
}

func TestReadRecordUsesPool(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecord(&buf, []byte("pooled")))

	got, err := ReadRecord(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("pooled"), got)
	assert.Equal(t, bufpool.DefaultSmallSize, cap(got))

	bufpool.Put(got)
}

func TestFragmentHeader(t *testing.T) {
	t.Run("HighBitMarksLast", func(t *testing.T) {
		framed, err := Frame([]byte{1, 2, 3})
		require.NoError(t, err)
		assert.Equal(t, []byte{0x80, 0, 0, 3}, framed[:4])
	})

	t.Run("ParsesBothForms", func(t *testing.T) {
		h, err := ReadFragmentHeader(bytes.NewReader([]byte{0x80, 0, 0x01, 0x00}))
		require.NoError(t, err)
		assert.True(t, h.IsLast)
		assert.Equal(t, uint32(256), h.Length)

		h, err = ReadFragmentHeader(bytes.NewReader([]byte{0x00, 0, 0, 0x10}))
		require.NoError(t, err)
		assert.False(t, h.IsLast)
		assert.Equal(t, uint32(16), h.Length)
	})

	t.Run("EncodeMatchesParse", func(t *testing.T) {
		h := FragmentHeader{IsLast: true, Length: 12345}
		b := h.Encode()
		parsed, err := ReadFragmentHeader(bytes.NewReader(b[:]))
		require.NoError(t, err)
		assert.Equal(t, h, *parsed)
	})
}

func TestReadRecordErrors(t *testing.T) {
	t.Run("CleanEOF", func(t *testing.T) {
		_, err := ReadRecord(bytes.NewReader(nil))
		assert.Equal(t, io.EOF, err)
	})

	t.Run("TruncatedHeader", func(t *testing.T) {
		_, err := ReadRecord(bytes.NewReader([]byte{0x80, 0}))
		assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	})

	t.Run("TruncatedPayload", func(t *testing.T) {
		_, err := ReadRecord(bytes.NewReader([]byte{0x80, 0, 0, 8, 1, 2, 3}))
		require.Error(t, err)
		assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	})

	t.Run("HeaderOnlyPayloadMissing", func(t *testing.T) {
		_, err := ReadRecord(bytes.NewReader([]byte{0x80, 0, 0, 4}))
		assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	})

	t.Run("MultiFragment", func(t *testing.T) {
		_, err := ReadRecord(bytes.NewReader([]byte{0x00, 0, 0, 4, 1, 2, 3, 4}))
		require.ErrorIs(t, err, ErrMultiFragment)
	})

	t.Run("TooLarge", func(t *testing.T) {
		h := FragmentHeader{IsLast: true, Length: MaxFragmentSize + 1}.Encode()
		_, err := ReadRecord(bytes.NewReader(h[:]))
		require.ErrorIs(t, err, ErrFragmentTooLarge)
	})
}
