// Package metadata defines the attribute backend consumed by the NFSv4
// protocol layer, along with the helpers shared by every store
// implementation.
//
// A store is a flat path → FileAttr map seeded with the root directory.
// It must be safe for concurrent use: reads may run in parallel, and each
// mutation is an atomic read-modify-write of a single path.
//
// Implementations live under pkg/metadata/store and are verified with the
// shared conformance suite in pkg/metadata/storetest.
package metadata

import "context"

// MetadataStore is the backend capability set injected into the NFS adapter.
//
// The COMPOUND evaluator only calls RootHandle and GetAttr(RootPath). The
// mutation methods serve the CLI and any out-of-band writer.
type MetadataStore interface {
	// RootHandle returns the handle PUTROOTFH installs as current filehandle.
	RootHandle(ctx context.Context) (FileHandle, error)

	// GetAttr returns a copy of the attribute record stored for path.
	GetAttr(ctx context.Context, path string) (*FileAttr, error)

	// CreateFile records a regular file of the given size, or updates the
	// existing record's size.
	CreateFile(ctx context.Context, path string, size uint64) error

	// ModifyFile updates the size of path, inserting the record if missing.
	ModifyFile(ctx context.Context, path string, size uint64) error

	// CreateDir records a directory at path.
	CreateDir(ctx context.Context, path string) error

	// Remove deletes the record for path. Removing a missing path is not an error.
	Remove(ctx context.Context, path string) error

	// List returns every record ordered by path.
	List(ctx context.Context) ([]File, error)

	// Stats returns summary counters for health and CLI output.
	Stats(ctx context.Context) (*StoreStats, error)

	// Healthcheck verifies the store can serve requests.
	Healthcheck(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}

// StoreStats summarises a store's contents.
type StoreStats struct {
	Backend     string `json:"backend"`
	Entries     int    `json:"entries"`
	Files       int    `json:"files"`
	Directories int    `json:"directories"`
	TotalBytes  uint64 `json:"total_bytes"`
}

// Summarize computes StoreStats over a listing.
func Summarize(backend string, files []File) *StoreStats {
	stats := &StoreStats{Backend: backend, Entries: len(files)}
	for _, f := range files {
		switch f.Type {
		case FileTypeDirectory:
			stats.Directories++
		default:
			stats.Files++
			stats.TotalBytes += f.Size
		}
	}
	return stats
}
