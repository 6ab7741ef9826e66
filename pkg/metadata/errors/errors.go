// Package errors provides error types and error codes for the metadata package.
// This is a leaf package with no internal dependencies so protocol code can
// map store failures to wire status codes without importing a store.
package errors

import (
	goerrors "errors"
	"fmt"
)

// ErrorCode represents the type of error that occurred.
type ErrorCode int

const (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound ErrorCode = iota + 1

	// ErrAccessDenied indicates permission bit violations (POSIX EACCES).
	ErrAccessDenied

	// ErrAlreadyExists indicates the resource already exists.
	ErrAlreadyExists

	// ErrNotEmpty indicates directory is not empty.
	ErrNotEmpty

	// ErrIsDirectory indicates operation not valid on directory.
	ErrIsDirectory

	// ErrNotDirectory indicates operation requires a directory.
	ErrNotDirectory

	// ErrInvalidArgument indicates an invalid argument was provided.
	ErrInvalidArgument

	// ErrIOError indicates an I/O error occurred in the underlying storage.
	ErrIOError

	// ErrNoSpace indicates no space is available.
	ErrNoSpace

	// ErrReadOnly indicates operation failed because the store is read-only.
	ErrReadOnly

	// ErrNotSupported indicates operation is not supported by implementation.
	ErrNotSupported

	// ErrInvalidHandle indicates the file handle is invalid.
	ErrInvalidHandle

	// ErrStaleHandle indicates the file handle is valid but stale.
	ErrStaleHandle

	// ErrNameTooLong indicates the name exceeds maximum length.
	ErrNameTooLong

	// ErrLocked indicates the resource is locked.
	ErrLocked
)

// String returns a human-readable name for the error code.
func (e ErrorCode) String() string {
	switch e {
	case ErrNotFound:
		return "NotFound"
	case ErrAccessDenied:
		return "AccessDenied"
	case ErrAlreadyExists:
		return "AlreadyExists"
	case ErrNotEmpty:
		return "NotEmpty"
	case ErrIsDirectory:
		return "IsDirectory"
	case ErrNotDirectory:
		return "NotDirectory"
	case ErrInvalidArgument:
		return "InvalidArgument"
	case ErrIOError:
		return "IOError"
	case ErrNoSpace:
		return "NoSpace"
	case ErrReadOnly:
		return "ReadOnly"
	case ErrNotSupported:
		return "NotSupported"
	case ErrInvalidHandle:
		return "InvalidHandle"
	case ErrStaleHandle:
		return "StaleHandle"
	case ErrNameTooLong:
		return "NameTooLong"
	case ErrLocked:
		return "Locked"
	default:
		return fmt.Sprintf("Unknown(%d)", e)
	}
}

// StoreError represents a metadata store error with an error code.
type StoreError struct {
	Code    ErrorCode
	Message string
	Path    string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (path: %s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ============================================================================
// Factory Functions
// ============================================================================

// NewNotFoundError creates a NotFound error.
func NewNotFoundError(path, resourceType string) *StoreError {
	return &StoreError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resourceType),
		Path:    path,
	}
}

// NewAlreadyExistsError creates an AlreadyExists error.
func NewAlreadyExistsError(path string) *StoreError {
	return &StoreError{
		Code:    ErrAlreadyExists,
		Message: "already exists",
		Path:    path,
	}
}

// NewInvalidArgumentError creates an InvalidArgument error.
func NewInvalidArgumentError(message string) *StoreError {
	return &StoreError{
		Code:    ErrInvalidArgument,
		Message: message,
	}
}

// NewInvalidPathError creates an InvalidArgument error bound to a path.
func NewInvalidPathError(path, reason string) *StoreError {
	return &StoreError{
		Code:    ErrInvalidArgument,
		Message: reason,
		Path:    path,
	}
}

// NewNameTooLongError creates a NameTooLong error.
func NewNameTooLongError(path string, max int) *StoreError {
	return &StoreError{
		Code:    ErrNameTooLong,
		Message: fmt.Sprintf("path exceeds %d bytes", max),
		Path:    path,
	}
}

// NewIOError wraps a storage engine failure.
func NewIOError(op string, err error) *StoreError {
	return &StoreError{
		Code:    ErrIOError,
		Message: fmt.Sprintf("%s: %v", op, err),
	}
}

// NewReadOnlyError creates a ReadOnly error.
func NewReadOnlyError(path string) *StoreError {
	return &StoreError{
		Code:    ErrReadOnly,
		Message: "store is read-only",
		Path:    path,
	}
}

// ============================================================================
// Predicates
// ============================================================================

// CodeOf returns the ErrorCode carried by err, or 0 when err is not a StoreError.
func CodeOf(err error) ErrorCode {
	var storeErr *StoreError
	if goerrors.As(err, &storeErr) {
		return storeErr.Code
	}
	return 0
}

// IsNotFoundError reports whether err is a NotFound store error.
func IsNotFoundError(err error) bool {
	return CodeOf(err) == ErrNotFound
}

// IsInvalidArgumentError reports whether err is an InvalidArgument store error.
func IsInvalidArgumentError(err error) bool {
	return CodeOf(err) == ErrInvalidArgument
}
