// Package attrs provides NFSv4 attribute bitmap helpers and FATTR4 encoding.
//
// NFSv4 uses variable-length bitmaps (bitmap4) to represent sets of file
// attributes. Bit N lives in word N/32 at position N%32.
//
// Per RFC 7530/7531: typedef uint32_t bitmap4<>;
package attrs

import (
	"bytes"
	"fmt"
	"io"

	"github.com/marmos91/nfs4d/internal/protocol/nfs/v4/types"
	"github.com/marmos91/nfs4d/internal/protocol/xdr"
)

// ============================================================================
// Bitmap4 Encode/Decode
// ============================================================================

// EncodeBitmap4 encodes a variable-length bitmap in XDR format.
//
// Format: [numWords:uint32][word0:uint32][word1:uint32]...
func EncodeBitmap4(buf *bytes.Buffer, bitmap []uint32) error {
	if err := xdr.WriteUint32Array(buf, bitmap); err != nil {
		return fmt.Errorf("encode bitmap4: %w", err)
	}
	return nil
}

// DecodeBitmap4 decodes a variable-length bitmap from XDR format.
// Bitmaps over types.MaxBitmapWords words are rejected.
func DecodeBitmap4(reader io.Reader) ([]uint32, error) {
	return types.DecodeBitmap(reader)
}

// ============================================================================
// Bitmap4 Bit Manipulation
// ============================================================================

// IsBitSet checks if a specific bit is set in the bitmap.
// Returns false if the word index exceeds the bitmap length.
func IsBitSet(bitmap []uint32, bit uint32) bool {
	word := bit / 32
	if word >= uint32(len(bitmap)) {
		return false
	}
	return bitmap[word]&(1<<(bit%32)) != 0
}

// SetBit sets a specific bit in the bitmap, extending the slice if needed.
func SetBit(bitmap *[]uint32, bit uint32) {
	word := bit / 32
	for uint32(len(*bitmap)) <= word {
		*bitmap = append(*bitmap, 0)
	}
	(*bitmap)[word] |= 1 << (bit % 32)
}

// ClearBit clears a specific bit in the bitmap.
//
// No-op if the word index exceeds the bitmap length.
func ClearBit(bitmap []uint32, bit uint32) {
	word := bit / 32
	if word >= uint32(len(bitmap)) {
		return
	}
	bitmap[word] &^= 1 << (bit % 32)
}

// FromBits builds a minimal bitmap with the given bits set.
func FromBits(bits ...uint32) []uint32 {
	bitmap := []uint32{}
	for _, b := range bits {
		SetBit(&bitmap, b)
	}
	return bitmap
}

// Intersect returns the bitwise AND of two bitmaps, trimmed to the
// fewest words that hold its highest set bit.
func Intersect(request, supported []uint32) []uint32 {
	n := min(len(request), len(supported))

	result := make([]uint32, n)
	for i := 0; i < n; i++ {
		result[i] = request[i] & supported[i]
	}
	return trim(result)
}

// trim drops trailing zero words.
func trim(bitmap []uint32) []uint32 {
	n := len(bitmap)
	for n > 0 && bitmap[n-1] == 0 {
		n--
	}
	return bitmap[:n]
}

// Bits lists the set bits of bitmap in ascending order.
func Bits(bitmap []uint32) []uint32 {
	var bits []uint32
	for w, word := range bitmap {
		for i := uint32(0); i < 32; i++ {
			if word&(1<<i) != 0 {
				bits = append(bits, uint32(w)*32+i)
			}
		}
	}
	return bits
}
