package nfs

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/nfs4d/internal/protocol/nfs/rpc"
	"github.com/marmos91/nfs4d/internal/protocol/nfs/v4/types"
	"github.com/marmos91/nfs4d/internal/protocol/xdr"
	"github.com/marmos91/nfs4d/pkg/adapter"
	"github.com/marmos91/nfs4d/pkg/metadata"
	"github.com/marmos91/nfs4d/pkg/metadata/store/memory"
)

// ============================================================================
// Test Helper Functions
// ============================================================================

var testRootHandle = metadata.FileHandle("test-root-fh")

func newTestAdapter(t *testing.T, store metadata.MetadataStore, base adapter.BaseConfig) *NFSAdapter {
	t.Helper()
	if store == nil {
		store = memory.NewMemoryMetadataStore(memory.MemoryMetadataStoreConfig{RootHandle: testRootHandle})
	}
	if base.BindAddress == "" {
		base.BindAddress = "127.0.0.1"
	}
	if base.ShutdownTimeout == 0 {
		base.ShutdownTimeout = 2 * time.Second
	}
	return New(NFSConfig{
		BaseConfig: base,
		Timeouts:   NFSTimeoutsConfig{Read: 5 * time.Second, Write: 5 * time.Second},
	}, store, nil)
}

// servePipe runs one connection over net.Pipe and returns the client end.
func servePipe(t *testing.T, s *NFSAdapter) (net.Conn, <-chan struct{}) {
	t.Helper()
	client, server := net.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.NewConnection(server).Serve(context.Background())
	}()
	t.Cleanup(func() { _ = client.Close() })
	return client, done
}

// callRecord builds an AUTH_NONE call for program/version/procedure.
func callRecord(xid, program, version, procedure uint32, args []byte) []byte {
	var buf bytes.Buffer
	for _, v := range []uint32{xid, rpc.RPCCall, rpc.RPCVersion2, program, version, procedure, 0, 0, 0, 0} {
		_ = xdr.WriteUint32(&buf, v)
	}
	buf.Write(args)
	return buf.Bytes()
}

func compoundArgs(ops ...types.Operation) []byte {
	args := &types.Compound4Args{Tag: []byte("test")}
	for _, op := range ops {
		var data bytes.Buffer
		_ = op.Encode(&data)
		args.Ops = append(args.Ops, types.RawOp{OpCode: op.OpCode(), Data: data.Bytes(), Args: op})
	}
	var buf bytes.Buffer
	_ = args.Encode(&buf)
	return buf.Bytes()
}

func send(t *testing.T, conn net.Conn, record []byte) {
	t.Helper()
	require.NoError(t, conn.SetWriteDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, rpc.WriteRecord(conn, record))
}

// readReply reads one reply and returns its xid and the body after the
// accepted reply header.
func readReply(t *testing.T, conn net.Conn) (uint32, []byte) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	payload, err := rpc.ReadRecord(conn)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(payload), 24)

	r := bytes.NewReader(payload)
	xid, _ := xdr.DecodeUint32(r)
	msgType, _ := xdr.DecodeUint32(r)
	replyStat, _ := xdr.DecodeUint32(r)
	_, _ = xdr.DecodeUint32(r) // verifier flavor
	_, _ = xdr.DecodeOpaque(r) // verifier body
	acceptStat, _ := xdr.DecodeUint32(r)

	assert.Equal(t, uint32(rpc.RPCReply), msgType)
	assert.Equal(t, uint32(rpc.RPCMsgAccepted), replyStat)
	assert.Equal(t, uint32(rpc.RPCSuccess), acceptStat)

	body, _ := io.ReadAll(r)
	return xid, body
}

// expectClosed asserts the server closed the connection without replying.
func expectClosed(t *testing.T, conn net.Conn, done <-chan struct{}) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err := conn.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("connection goroutine did not exit")
	}
}

type failingStore struct {
	metadata.MetadataStore
}

func (failingStore) RootHandle(context.Context) (metadata.FileHandle, error) {
	return nil, errors.New("disk on fire")
}

// ============================================================================
// Connection Tests
// ============================================================================

func TestConnectionNull(t *testing.T) {
	client, _ := servePipe(t, newTestAdapter(t, nil, adapter.BaseConfig{}))

	send(t, client, callRecord(0x1234, types.NFS4_PROGRAM, types.NFS4_VERSION, types.NFSPROC4_NULL, nil))
	xid, body := readReply(t, client)

	assert.Equal(t, uint32(0x1234), xid)
	assert.Empty(t, body)
}

func TestConnectionCompound(t *testing.T) {
	client, _ := servePipe(t, newTestAdapter(t, nil, adapter.BaseConfig{}))

	args := compoundArgs(types.PutRootFH{}, types.GetFH{})
	send(t, client, callRecord(7, types.NFS4_PROGRAM, types.NFS4_VERSION, types.NFSPROC4_COMPOUND, args))
	xid, body := readReply(t, client)
	require.Equal(t, uint32(7), xid)

	r := bytes.NewReader(body)
	status, _ := xdr.DecodeUint32(r)
	tag, _ := xdr.DecodeOpaque(r)
	count, _ := xdr.DecodeUint32(r)
	assert.Equal(t, uint32(types.NFS4_OK), status)
	assert.Equal(t, []byte("test"), tag)
	require.Equal(t, uint32(2), count)

	op, _ := xdr.DecodeUint32(r)
	st, _ := xdr.DecodeUint32(r)
	assert.Equal(t, uint32(types.OP_PUTROOTFH), op)
	assert.Equal(t, uint32(types.NFS4_OK), st)

	op, _ = xdr.DecodeUint32(r)
	st, _ = xdr.DecodeUint32(r)
	handle, err := xdr.DecodeOpaque(r)
	require.NoError(t, err)
	assert.Equal(t, uint32(types.OP_GETFH), op)
	assert.Equal(t, uint32(types.NFS4_OK), st)
	assert.Equal(t, []byte(testRootHandle), handle)
}

func TestConnectionServesCallsInOrder(t *testing.T) {
	client, _ := servePipe(t, newTestAdapter(t, nil, adapter.BaseConfig{}))

	for xid := uint32(1); xid <= 5; xid++ {
		send(t, client, callRecord(xid, types.NFS4_PROGRAM, types.NFS4_VERSION, types.NFSPROC4_NULL, nil))
		got, _ := readReply(t, client)
		assert.Equal(t, xid, got)
	}
}

func TestConnectionMismatchReplies(t *testing.T) {
	tests := []struct {
		name      string
		program   uint32
		version   uint32
		procedure uint32
		want      uint32
	}{
		{"WrongProgram", 100005, 4, types.NFSPROC4_NULL, types.NFS4ERR_BADTYPE},
		{"WrongVersion", types.NFS4_PROGRAM, 3, types.NFSPROC4_NULL, types.NFS4ERR_BADTYPE},
		{"UnknownProcedure", types.NFS4_PROGRAM, types.NFS4_VERSION, 9, types.NFS4ERR_NOTSUPP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := servePipe(t, newTestAdapter(t, nil, adapter.BaseConfig{}))

			send(t, client, callRecord(42, tt.program, tt.version, tt.procedure, nil))
			_, body := readReply(t, client)
			require.Len(t, body, 4)
			assert.Equal(t, tt.want, binary.BigEndian.Uint32(body))
		})
	}
}

func TestConnectionClosesWithoutReply(t *testing.T) {
	t.Run("ClientHangup", func(t *testing.T) {
		client, done := servePipe(t, newTestAdapter(t, nil, adapter.BaseConfig{}))
		require.NoError(t, client.Close())
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("connection goroutine did not exit")
		}
	})

	t.Run("MultiFragment", func(t *testing.T) {
		client, done := servePipe(t, newTestAdapter(t, nil, adapter.BaseConfig{}))
		header := rpc.FragmentHeader{IsLast: false, Length: 8}.Encode()
		_, err := client.Write(header[:])
		require.NoError(t, err)
		expectClosed(t, client, done)
	})

	t.Run("NotACall", func(t *testing.T) {
		client, done := servePipe(t, newTestAdapter(t, nil, adapter.BaseConfig{}))
		record := callRecord(1, types.NFS4_PROGRAM, types.NFS4_VERSION, types.NFSPROC4_NULL, nil)
		binary.BigEndian.PutUint32(record[4:], rpc.RPCReply)
		send(t, client, record)
		expectClosed(t, client, done)
	})

	t.Run("TruncatedCompound", func(t *testing.T) {
		client, done := servePipe(t, newTestAdapter(t, nil, adapter.BaseConfig{}))
		args := compoundArgs(types.PutRootFH{}, types.GetFH{})
		send(t, client, callRecord(1, types.NFS4_PROGRAM, types.NFS4_VERSION, types.NFSPROC4_COMPOUND, args[:len(args)-6]))
		expectClosed(t, client, done)
	})

	t.Run("BackendFailure", func(t *testing.T) {
		client, done := servePipe(t, newTestAdapter(t, failingStore{}, adapter.BaseConfig{}))
		args := compoundArgs(types.PutRootFH{})
		send(t, client, callRecord(1, types.NFS4_PROGRAM, types.NFS4_VERSION, types.NFSPROC4_COMPOUND, args))
		expectClosed(t, client, done)
	})
}

func TestConnectionReadTimeout(t *testing.T) {
	s := New(NFSConfig{Timeouts: NFSTimeoutsConfig{Read: 50 * time.Millisecond}}, memory.NewMemoryMetadataStoreWithDefaults(), nil)
	_, done := servePipe(t, s)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("idle connection was not closed")
	}
}

// ============================================================================
// Adapter Tests
// ============================================================================

func startAdapter(t *testing.T, s *NFSAdapter) (string, <-chan error) {
	t.Helper()
	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(context.Background()) }()
	addr := s.GetListenerAddr()
	require.NotEmpty(t, addr)
	return addr, errCh
}

func dial(t *testing.T, addr string) net.Conn {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestAdapterServeAndStop(t *testing.T) {
	s := newTestAdapter(t, nil, adapter.BaseConfig{})
	addr, errCh := startAdapter(t, s)

	conn := dial(t, addr)
	send(t, conn, callRecord(99, types.NFS4_PROGRAM, types.NFS4_VERSION, types.NFSPROC4_NULL, nil))
	xid, _ := readReply(t, conn)
	assert.Equal(t, uint32(99), xid)
	assert.Equal(t, int32(1), s.GetActiveConnections())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return after Stop")
	}

	// The idle connection was interrupted and closed by the server.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, err := conn.Read(make([]byte, 1))
	assert.Error(t, err)
	assert.Equal(t, int32(0), s.GetActiveConnections())
}

func TestAdapterContextCancel(t *testing.T) {
	s := newTestAdapter(t, nil, adapter.BaseConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(ctx) }()
	require.NotEmpty(t, s.GetListenerAddr())

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestAdapterMaxConnections(t *testing.T) {
	s := newTestAdapter(t, nil, adapter.BaseConfig{MaxConnections: 1})
	addr, _ := startAdapter(t, s)
	t.Cleanup(func() { _ = s.Stop(context.Background()) })

	first := dial(t, addr)
	send(t, first, callRecord(1, types.NFS4_PROGRAM, types.NFS4_VERSION, types.NFSPROC4_NULL, nil))
	readReply(t, first)

	// The second connection sits in the backlog until the first one closes.
	second := dial(t, addr)
	send(t, second, callRecord(2, types.NFS4_PROGRAM, types.NFS4_VERSION, types.NFSPROC4_NULL, nil))
	require.NoError(t, second.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, err := second.Read(make([]byte, 1))
	var netErr net.Error
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Timeout())

	require.NoError(t, first.Close())
	xid, _ := readReply(t, second)
	assert.Equal(t, uint32(2), xid)
}

func TestAdapterListenFailure(t *testing.T) {
	s := New(NFSConfig{BaseConfig: adapter.BaseConfig{BindAddress: "127.0.0.1", Port: -1}}, memory.NewMemoryMetadataStoreWithDefaults(), nil)
	err := s.Serve(context.Background())
	assert.Error(t, err)
	assert.Empty(t, s.GetListenerAddr())
	assert.Equal(t, "NFS", s.Protocol())
}
