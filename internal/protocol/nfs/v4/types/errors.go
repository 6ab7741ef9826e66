package types

import (
	goerrors "errors"

	"github.com/marmos91/nfs4d/pkg/metadata/errors"
)

// MapStoreErrorToNFS4 maps metadata store errors to NFSv4 status codes.
//
// The mapping uses errors.As to match *errors.StoreError and switches on
// the error code. Returns NFS4ERR_SERVERFAULT for unrecognized errors.
func MapStoreErrorToNFS4(err error) uint32 {
	if err == nil {
		return NFS4_OK
	}

	var storeErr *errors.StoreError
	if !goerrors.As(err, &storeErr) {
		return NFS4ERR_SERVERFAULT
	}

	switch storeErr.Code {
	case errors.ErrNotFound:
		return NFS4ERR_NOENT
	case errors.ErrAccessDenied:
		return NFS4ERR_ACCESS
	case errors.ErrAlreadyExists:
		return NFS4ERR_EXIST
	case errors.ErrNotEmpty:
		return NFS4ERR_NOTEMPTY
	case errors.ErrIsDirectory:
		return NFS4ERR_ISDIR
	case errors.ErrNotDirectory:
		return NFS4ERR_NOTDIR
	case errors.ErrInvalidArgument:
		return NFS4ERR_INVAL
	case errors.ErrNoSpace:
		return NFS4ERR_NOSPC
	case errors.ErrReadOnly:
		return NFS4ERR_ROFS
	case errors.ErrNotSupported:
		return NFS4ERR_NOTSUPP
	case errors.ErrStaleHandle:
		return NFS4ERR_STALE
	case errors.ErrInvalidHandle:
		return NFS4ERR_BADHANDLE
	case errors.ErrNameTooLong:
		return NFS4ERR_NAMETOOLONG
	case errors.ErrLocked:
		return NFS4ERR_LOCKED
	case errors.ErrIOError:
		return NFS4ERR_IO
	default:
		return NFS4ERR_SERVERFAULT
	}
}
