package metadata

import "github.com/marmos91/nfs4d/pkg/metadata/errors"

// ============================================================================
// Re-exported types from errors package
// ============================================================================

// StoreError is re-exported from the errors package.
type StoreError = errors.StoreError

// ErrorCode is re-exported from the errors package.
type ErrorCode = errors.ErrorCode

const (
	ErrNotFound        = errors.ErrNotFound
	ErrAlreadyExists   = errors.ErrAlreadyExists
	ErrInvalidArgument = errors.ErrInvalidArgument
	ErrIOError         = errors.ErrIOError
	ErrNameTooLong     = errors.ErrNameTooLong
	ErrReadOnly        = errors.ErrReadOnly
)

// CodeOf returns the ErrorCode carried by err, or 0 when err is not a StoreError.
func CodeOf(err error) ErrorCode {
	return errors.CodeOf(err)
}
