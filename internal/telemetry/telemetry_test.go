package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/marmos91/nfs4d/internal/logger"
)

// recordSpans installs an in-memory exporter for the duration of the test.
func recordSpans(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	provider := NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
		_, _ = Init(context.Background(), Config{})
	})
	return exporter
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "nfs4d", cfg.ServiceName)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.SampleRate)

	prof := DefaultProfilingConfig()
	assert.False(t, prof.Enabled)
	assert.Equal(t, []string{"cpu", "alloc_space", "inuse_space"}, prof.ProfileTypes)
}

func TestInitDisabled(t *testing.T) {
	shutdown, err := Init(context.Background(), DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
	assert.False(t, IsEnabled())
}

func TestNoopHelpers(t *testing.T) {
	_, _ = Init(context.Background(), Config{})
	ctx, span := StartSpan(context.Background(), "noop")
	defer span.End()

	require.NotPanics(t, func() {
		AddEvent(ctx, "evt", NFSOpIndex(0))
		RecordError(ctx, nil)
		RecordError(ctx, errors.New("boom"))
		SetAttributes(ctx, ClientAddr("127.0.0.1:1"))
	})
	assert.Empty(t, TraceID(ctx))
	assert.Empty(t, SpanID(ctx))
}

func TestRecordedSpan(t *testing.T) {
	exporter := recordSpans(t)
	require.True(t, IsEnabled())

	ctx, span := StartSpan(context.Background(), SpanNFSCompound)
	assert.NotEmpty(t, TraceID(ctx))
	assert.NotEmpty(t, SpanID(ctx))

	AddEvent(ctx, SpanNFSOperation, NFSOpName("GETFH"))
	RecordError(ctx, errors.New("backend down"))
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	got := spans[0]
	assert.Equal(t, SpanNFSCompound, got.Name)
	assert.Equal(t, codes.Error, got.Status.Code)
	assert.Equal(t, "backend down", got.Status.Description)

	var names []string
	for _, e := range got.Events {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, SpanNFSOperation)
	assert.Contains(t, names, "exception")
}

func TestWithLogContext(t *testing.T) {
	t.Run("NoSpanLeavesContext", func(t *testing.T) {
		ctx := logger.WithContext(context.Background(), logger.NewLogContext("c"))
		assert.Equal(t, ctx, WithLogContext(ctx))
	})

	t.Run("CopiesIDs", func(t *testing.T) {
		recordSpans(t)
		ctx := logger.WithContext(context.Background(), logger.NewLogContext("c"))
		ctx, span := StartSpan(ctx, "x")
		defer span.End()

		lc := logger.FromContext(WithLogContext(ctx))
		require.NotNil(t, lc)
		assert.Equal(t, TraceID(ctx), lc.TraceID)
		assert.Equal(t, SpanID(ctx), lc.SpanID)
	})
}

func TestAttributeHelpers(t *testing.T) {
	tests := []struct {
		name string
		kv   attribute.KeyValue
		key  string
		want any
	}{
		{"ClientAddr", ClientAddr("10.0.0.1:700"), AttrClientAddr, "10.0.0.1:700"},
		{"RPCXID", RPCXID(0xffffffff), AttrRPCXID, int64(0xffffffff)},
		{"RPCProgram", RPCProgram(100003), AttrRPCProgram, int64(100003)},
		{"RPCVersion", RPCVersion(4), AttrRPCVersion, int64(4)},
		{"RPCProcedure", RPCProcedure("COMPOUND"), AttrRPCProcedure, "COMPOUND"},
		{"PrintableTag", NFSTag([]byte("mount")), AttrNFSTag, "mount"},
		{"BinaryTag", NFSTag([]byte{0x00, 0xff}), AttrNFSTag, "00ff"},
		{"MinorVersion", NFSMinorVersion(2), AttrNFSMinorVersion, int64(2)},
		{"OpCount", NFSOpCount(5), AttrNFSOpCount, int64(5)},
		{"OpIndex", NFSOpIndex(3), AttrNFSOpIndex, int64(3)},
		{"OpName", NFSOpName("GETATTR"), AttrNFSOpName, "GETATTR"},
		{"Status", NFSStatus("NFS4_OK"), AttrNFSStatus, "NFS4_OK"},
		{"Handle", NFSHandle([]byte{0xab, 0xcd}), AttrNFSHandle, "abcd"},
		{"StoreBackend", StoreBackend("badger"), AttrStoreBackend, "badger"},
		{"StorePath", StorePath("/a"), AttrStorePath, "/a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.key, string(tt.kv.Key))
			assert.Equal(t, tt.want, tt.kv.Value.AsInterface())
		})
	}
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), samplerFor(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), samplerFor(0).Description())
	assert.Contains(t, samplerFor(0.5).Description(), "TraceIDRatioBased")
}

func TestProfiling(t *testing.T) {
	stop, err := InitProfiling(ProfilingConfig{})
	require.NoError(t, err)
	assert.NoError(t, stop())

	_, err = parseProfileTypes([]string{"cpu", "bogus"})
	assert.ErrorContains(t, err, "bogus")

	types, err := parseProfileTypes([]string{"cpu", "goroutines"})
	require.NoError(t, err)
	assert.Len(t, types, 2)
}
