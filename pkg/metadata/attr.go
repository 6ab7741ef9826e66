package metadata

import (
	"path"
	"strings"
	"time"

	"github.com/marmos91/nfs4d/pkg/metadata/errors"
)

// RootPath is the key of the root directory record.
const RootPath = "/"

// MaxPathLength bounds the byte length of a stored path.
const MaxPathLength = 4096

// DefaultRootHandle is the root handle used when a store is not given one.
var DefaultRootHandle = FileHandle("nfs4d-root-fh")

// NormalizePath validates p and returns its cleaned absolute form.
func NormalizePath(p string) (string, error) {
	if p == "" {
		return "", errors.NewInvalidPathError(p, "path is empty")
	}
	if !strings.HasPrefix(p, "/") {
		return "", errors.NewInvalidPathError(p, "path must be absolute")
	}
	if strings.IndexByte(p, 0) >= 0 {
		return "", errors.NewInvalidPathError(p, "path contains NUL byte")
	}
	if len(p) > MaxPathLength {
		return "", errors.NewNameTooLongError(p, MaxPathLength)
	}
	return path.Clean(p), nil
}

// CheckUpdate rejects an update of key to fileType that the namespace cannot
// hold. The root must stay a directory.
func CheckUpdate(key string, fileType FileType) error {
	if key == RootPath && fileType != FileTypeDirectory {
		return errors.NewInvalidPathError(key, "root is a directory")
	}
	return nil
}

// Now returns the current time truncated to the store's second granularity.
func Now() time.Time {
	return time.Now().Truncate(time.Second)
}

// NewFileAttr builds a fresh record stamped at now.
func NewFileAttr(fileType FileType, size uint64, now time.Time) *FileAttr {
	return &FileAttr{
		Type:     fileType,
		Size:     size,
		ChangeID: uint64(now.Unix()),
		Mtime:    now,
		Ctime:    now,
	}
}

// NewRootAttr builds the record every store is seeded with under RootPath.
func NewRootAttr(now time.Time) *FileAttr {
	return NewFileAttr(FileTypeDirectory, 0, now)
}

// ApplyUpdate folds a size update stamped at now into attr and reports
// whether anything changed.
//
// The update is coalesced: if the size is unchanged and mtime is already now,
// attr is left untouched. Otherwise size and mtime are set and ChangeID
// advances to max(now, ChangeID+1) so it is strictly increasing even for
// several updates within one second.
func ApplyUpdate(attr *FileAttr, fileType FileType, size uint64, now time.Time) bool {
	changed := false
	if attr.Size != size {
		attr.Size = size
		changed = true
	}
	if !attr.Mtime.Equal(now) {
		attr.Mtime = now
		changed = true
	}
	if attr.Type != fileType {
		attr.Type = fileType
		changed = true
	}
	if !changed {
		return false
	}

	next := uint64(now.Unix())
	if next <= attr.ChangeID {
		next = attr.ChangeID + 1
	}
	attr.ChangeID = next
	return true
}

// Upsert returns the record to store for an update of path, given the
// current record (nil when missing).
func Upsert(current *FileAttr, fileType FileType, size uint64, now time.Time) (*FileAttr, bool) {
	if current == nil {
		return NewFileAttr(fileType, size, now), true
	}
	next := *current
	changed := ApplyUpdate(&next, fileType, size, now)
	return &next, changed
}
