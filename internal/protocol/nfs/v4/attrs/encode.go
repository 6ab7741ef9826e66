package attrs

import (
	"bytes"
	"fmt"

	"github.com/marmos91/nfs4d/internal/protocol/nfs/v4/types"
	"github.com/marmos91/nfs4d/internal/protocol/xdr"
	"github.com/marmos91/nfs4d/pkg/metadata"
)

// ============================================================================
// FATTR4 Attribute Numbers (RFC 7530 Section 5)
// ============================================================================

// Mandatory attributes served by this server.
const (
	FATTR4_TYPE           = 1  // nfs_ftype4: file type (REG, DIR, etc.)
	FATTR4_FH_EXPIRE_TYPE = 2  // uint32: file handle volatility
	FATTR4_CHANGE         = 3  // changeid4 (uint64): change attribute
	FATTR4_SIZE           = 4  // uint64: file size in bytes
	FATTR4_FILEHANDLE     = 19 // nfs_fh4: the file handle itself
)

// supportedBits is encoding order as well as the supported set.
var supportedBits = []uint32{
	FATTR4_TYPE,
	FATTR4_FH_EXPIRE_TYPE,
	FATTR4_CHANGE,
	FATTR4_SIZE,
	FATTR4_FILEHANDLE,
}

// SupportedAttrs returns the bitmap of attributes this server can encode.
func SupportedAttrs() []uint32 {
	return FromBits(supportedBits...)
}

// MapFileTypeToNFS4 converts a metadata file type to nfs_ftype4.
func MapFileTypeToNFS4(t metadata.FileType) uint32 {
	switch t {
	case metadata.FileTypeDirectory:
		return types.NF4DIR
	default:
		return types.NF4REG
	}
}

// ============================================================================
// Attribute Encoding
// ============================================================================

// EncodeFileAttrs writes a fattr4 for attr.
//
// The response bitmap is the intersection of requested and SupportedAttrs.
// Values are packed into the attrlist4 opaque in ascending bit order,
// whatever order the client set the bits in. The response bitmap always has
// at least one word, even when no requested bit is supported.
func EncodeFileAttrs(buf *bytes.Buffer, requested []uint32, attr *metadata.FileAttr, handle []byte) error {
	responseBitmap := Intersect(requested, SupportedAttrs())
	if len(responseBitmap) == 0 {
		responseBitmap = []uint32{0}
	}

	var attrData bytes.Buffer
	for _, bit := range supportedBits {
		if !IsBitSet(responseBitmap, bit) {
			continue
		}
		if err := encodeSingleAttr(&attrData, bit, attr, handle); err != nil {
			return fmt.Errorf("encode attr bit %d: %w", bit, err)
		}
	}

	fattr := types.Fattr4{Mask: responseBitmap, Values: attrData.Bytes()}
	if err := fattr.Encode(buf); err != nil {
		return fmt.Errorf("encode fattr4: %w", err)
	}
	return nil
}

func encodeSingleAttr(buf *bytes.Buffer, bit uint32, attr *metadata.FileAttr, handle []byte) error {
	switch bit {
	case FATTR4_TYPE:
		return xdr.WriteUint32(buf, MapFileTypeToNFS4(attr.Type))
	case FATTR4_FH_EXPIRE_TYPE:
		return xdr.WriteUint32(buf, types.FH4_PERSISTENT)
	case FATTR4_CHANGE:
		return xdr.WriteUint64(buf, attr.ChangeID)
	case FATTR4_SIZE:
		return xdr.WriteUint64(buf, attr.Size)
	case FATTR4_FILEHANDLE:
		return xdr.WriteXDROpaque(buf, handle)
	default:
		return fmt.Errorf("unsupported attribute bit %d", bit)
	}
}
