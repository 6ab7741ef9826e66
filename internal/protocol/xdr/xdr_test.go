package xdr

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Opaque / String
// ============================================================================

func TestOpaqueRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wireLen int
	}{
		{"empty", []byte{}, 4},
		{"one byte pads three", []byte{0xAA}, 8},
		{"two bytes pad two", []byte{0x01, 0x02}, 8},
		{"three bytes pad one", []byte{0x01, 0x02, 0x03}, 8},
		{"aligned", []byte{0x01, 0x02, 0x03, 0x04}, 8},
		{"five bytes pad three", []byte("hello"), 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteXDROpaque(&buf, tt.data))
			assert.Equal(t, tt.wireLen, buf.Len())

			r := bytes.NewReader(buf.Bytes())
			got, err := DecodeOpaque(r)
			require.NoError(t, err)
			assert.Equal(t, tt.data, got)
			assert.Zero(t, r.Len(), "padding must be consumed")
		})
	}
}

func TestOpaqueWireLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXDROpaque(&buf, []byte{0x01, 0x02, 0x03}))
	assert.Equal(t, []byte{0, 0, 0, 3, 1, 2, 3, 0}, buf.Bytes())
}

func TestDecodeOpaqueShortRead(t *testing.T) {
	t.Run("missing length", func(t *testing.T) {
		_, err := DecodeOpaque(bytes.NewReader([]byte{0, 0}))
		require.Error(t, err)
	})

	t.Run("declared length not satisfied", func(t *testing.T) {
		_, err := DecodeOpaque(bytes.NewReader([]byte{0, 0, 0, 8, 1, 2, 3}))
		require.Error(t, err)
		assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	})

	t.Run("missing padding", func(t *testing.T) {
		_, err := DecodeOpaque(bytes.NewReader([]byte{0, 0, 0, 1, 0xAA}))
		require.Error(t, err)
	})
}

func TestDecodeOpaqueTooLarge(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteUint32(&buf, MaxOpaqueLength+1))

	_, err := DecodeOpaque(&buf)
	require.ErrorIs(t, err, ErrOpaqueTooLarge)
}

func TestStringRoundTrip(t *testing.T) {
	for _, s := range []string{"", "a", "abc", "test", "nfs4-component"} {
		t.Run(s, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteXDRString(&buf, s))
			assert.Zero(t, buf.Len()%4)

			got, err := DecodeString(&buf)
			require.NoError(t, err)
			assert.Equal(t, s, got)
		})
	}
}

// ============================================================================
// Fixed-width integers
// ============================================================================

func TestIntegerRoundTrip(t *testing.T) {
	t.Run("uint32", func(t *testing.T) {
		for _, v := range []uint32{0, 1, 0x80000000, math.MaxUint32} {
			var buf bytes.Buffer
			require.NoError(t, WriteUint32(&buf, v))
			require.Equal(t, 4, buf.Len())
			got, err := DecodeUint32(&buf)
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
	})

	t.Run("uint64", func(t *testing.T) {
		for _, v := range []uint64{0, 1, 1 << 40, math.MaxUint64} {
			var buf bytes.Buffer
			require.NoError(t, WriteUint64(&buf, v))
			require.Equal(t, 8, buf.Len())
			got, err := DecodeUint64(&buf)
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
	})

	t.Run("int32", func(t *testing.T) {
		for _, v := range []int32{0, -1, math.MinInt32, math.MaxInt32} {
			var buf bytes.Buffer
			require.NoError(t, WriteInt32(&buf, v))
			got, err := DecodeInt32(&buf)
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
	})

	t.Run("int64", func(t *testing.T) {
		for _, v := range []int64{0, -1, math.MinInt64, math.MaxInt64} {
			var buf bytes.Buffer
			require.NoError(t, WriteInt64(&buf, v))
			got, err := DecodeInt64(&buf)
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
	})
}

func TestUint32BigEndian(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteUint32(&buf, 0x01020304))
	assert.Equal(t, []byte{1, 2, 3, 4}, buf.Bytes())
}

func TestDecodeUint64ShortRead(t *testing.T) {
	_, err := DecodeUint64(bytes.NewReader([]byte{0, 0, 0, 0, 0}))
	require.Error(t, err)
}

func TestBool(t *testing.T) {
	t.Run("canonical encode", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteBool(&buf, true))
		require.NoError(t, WriteBool(&buf, false))
		assert.Equal(t, []byte{0, 0, 0, 1, 0, 0, 0, 0}, buf.Bytes())
	})

	t.Run("any non-zero decodes true", func(t *testing.T) {
		got, err := DecodeBool(bytes.NewReader([]byte{0, 0, 0, 7}))
		require.NoError(t, err)
		assert.True(t, got)
	})
}

// ============================================================================
// Arrays
// ============================================================================

func TestUint32ArrayRoundTrip(t *testing.T) {
	for _, values := range [][]uint32{{}, {0x12}, {1 << 1, 1 << 19, 0xFFFFFFFF}} {
		var buf bytes.Buffer
		require.NoError(t, WriteUint32Array(&buf, values))
		assert.Equal(t, 4+4*len(values), buf.Len())

		got, err := DecodeUint32Array(&buf)
		require.NoError(t, err)
		assert.Equal(t, values, got)
	}
}

func TestUint64ArrayRoundTrip(t *testing.T) {
	values := []uint64{1, 1 << 63}
	var buf bytes.Buffer
	require.NoError(t, WriteUint64Array(&buf, values))
	assert.Equal(t, 4+16, buf.Len())

	got, err := DecodeUint64Array(&buf)
	require.NoError(t, err)
	assert.Equal(t, values, got)
}

func TestDecodeUint32ArrayErrors(t *testing.T) {
	t.Run("count exceeds maximum", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteUint32(&buf, MaxArrayLength+1))
		_, err := DecodeUint32Array(&buf)
		require.ErrorIs(t, err, ErrArrayTooLarge)
	})

	t.Run("truncated elements", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteUint32(&buf, 2))
		require.NoError(t, WriteUint32(&buf, 1))
		_, err := DecodeUint32Array(&buf)
		require.Error(t, err)
	})
}

func TestPadding(t *testing.T) {
	assert.Equal(t, []uint32{0, 3, 2, 1, 0}, []uint32{Padding(0), Padding(1), Padding(2), Padding(3), Padding(4)})
}
