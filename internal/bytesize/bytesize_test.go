package bytesize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseByteSize(t *testing.T) {
	tests := []struct {
		in   string
		want ByteSize
	}{
		{"0", 0},
		{"4096", 4096},
		{"1B", 1},
		{"1k", KB},
		{"1KB", KB},
		{"64Mi", 64 * MiB},
		{"64MiB", 64 * MiB},
		{"2gi", 2 * GiB},
		{"1 TiB", TiB},
		{"1.5G", 1500 * MB},
		{"0.5Ki", 512},
		{"  256MB  ", 256 * MB},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseByteSize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseByteSizeErrors(t *testing.T) {
	for _, in := range []string{"", "   ", "MiB", "12XB", "-1", "1.2.3M", "99999999999999999999", "20000000Ti"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseByteSize(in)
			assert.Error(t, err)
		})
	}
}

func TestStringRoundTrips(t *testing.T) {
	for _, size := range []ByteSize{0, 1, 1000, KiB, 3 * MiB, 64 * MiB, GiB + KiB, 2 * TiB} {
		parsed, err := ParseByteSize(size.String())
		require.NoError(t, err, size.String())
		assert.Equal(t, size, parsed)
	}

	assert.Equal(t, "64MiB", (64 * MiB).String())
	assert.Equal(t, "1000", KB.String())
	assert.Equal(t, "1025KiB", (MiB + KiB).String())
}

func TestTextMarshaling(t *testing.T) {
	var b ByteSize
	require.NoError(t, b.UnmarshalText([]byte("16MiB")))
	assert.Equal(t, 16*MiB, b)

	text, err := b.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "16MiB", string(text))

	assert.Error(t, b.UnmarshalText([]byte("lots")))
}

func TestJSONSchema(t *testing.T) {
	schema := ByteSize(0).JSONSchema()
	require.Len(t, schema.OneOf, 2)
	assert.Equal(t, "integer", schema.OneOf[0].Type)
	assert.Equal(t, "string", schema.OneOf[1].Type)
}
