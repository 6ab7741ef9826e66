package metadata

import "time"

// FileType identifies what kind of entry an attribute record describes.
type FileType uint32

const (
	FileTypeRegular FileType = iota + 1
	FileTypeDirectory
)

// String returns the lower-case name used in logs and CLI output.
func (t FileType) String() string {
	switch t {
	case FileTypeRegular:
		return "file"
	case FileTypeDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// FileHandle is the opaque server-issued reference a client holds for an object.
type FileHandle []byte

// FileAttr is the attribute record a store keeps per path.
//
// Times are kept at second granularity. Two updates landing in the same
// second with the same size are coalesced and leave ChangeID untouched.
type FileAttr struct {
	// Type is the file type (regular or directory).
	Type FileType `json:"type"`

	// Size is the file size in bytes (0 for directories).
	Size uint64 `json:"size"`

	// ChangeID is the NFSv4 change attribute. It strictly increases on
	// every effective update.
	ChangeID uint64 `json:"change_id"`

	// Mtime is the last modification time.
	Mtime time.Time `json:"mtime"`

	// Ctime is the creation time of the record.
	Ctime time.Time `json:"ctime"`
}

// File pairs an attribute record with the path it is stored under.
type File struct {
	Path string `json:"path"`
	FileAttr
}
