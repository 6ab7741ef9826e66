// Package memory provides an in-memory MetadataStore.
//
// Records are spread over a fixed number of shards selected by an xxhash of
// the path. Each shard has its own RWMutex, so reads of any key run in
// parallel and writers only contend when their paths share a shard. Every
// mutation is a read-modify-write performed under its shard's write lock.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/marmos91/nfs4d/pkg/metadata"
	"github.com/marmos91/nfs4d/pkg/metadata/errors"
)

// shardCount must be a power of two.
const shardCount = 32

type shard struct {
	mu    sync.RWMutex
	attrs map[string]*metadata.FileAttr
}

// MemoryMetadataStoreConfig configures a MemoryMetadataStore.
type MemoryMetadataStoreConfig struct {
	// RootHandle is returned by RootHandle. Defaults to metadata.DefaultRootHandle.
	RootHandle metadata.FileHandle

	// Clock stamps updates. Defaults to metadata.Now.
	Clock func() time.Time
}

// MemoryMetadataStore is a sharded, concurrency-safe in-memory store.
type MemoryMetadataStore struct {
	shards     [shardCount]shard
	rootHandle metadata.FileHandle
	clock      func() time.Time
}

// NewMemoryMetadataStore creates a store seeded with the root directory.
func NewMemoryMetadataStore(config MemoryMetadataStoreConfig) *MemoryMetadataStore {
	s := &MemoryMetadataStore{
		rootHandle: config.RootHandle,
		clock:      config.Clock,
	}
	if len(s.rootHandle) == 0 {
		s.rootHandle = metadata.DefaultRootHandle
	}
	if s.clock == nil {
		s.clock = metadata.Now
	}
	for i := range s.shards {
		s.shards[i].attrs = make(map[string]*metadata.FileAttr)
	}

	root := s.shardFor(metadata.RootPath)
	root.attrs[metadata.RootPath] = metadata.NewRootAttr(s.clock())
	return s
}

// NewMemoryMetadataStoreWithDefaults creates a store with the default root handle and clock.
func NewMemoryMetadataStoreWithDefaults() *MemoryMetadataStore {
	return NewMemoryMetadataStore(MemoryMetadataStoreConfig{})
}

func (s *MemoryMetadataStore) shardFor(path string) *shard {
	return &s.shards[xxhash.Sum64String(path)&(shardCount-1)]
}

// RootHandle returns a copy of the configured root handle.
func (s *MemoryMetadataStore) RootHandle(ctx context.Context) (metadata.FileHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	handle := make(metadata.FileHandle, len(s.rootHandle))
	copy(handle, s.rootHandle)
	return handle, nil
}

// GetAttr returns a copy of the record for path.
func (s *MemoryMetadataStore) GetAttr(ctx context.Context, path string) (*metadata.FileAttr, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key, err := metadata.NormalizePath(path)
	if err != nil {
		return nil, err
	}

	sh := s.shardFor(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	attr, ok := sh.attrs[key]
	if !ok {
		return nil, errors.NewNotFoundError(key, "entry")
	}
	out := *attr
	return &out, nil
}

// CreateFile records a regular file of the given size.
func (s *MemoryMetadataStore) CreateFile(ctx context.Context, path string, size uint64) error {
	return s.update(ctx, path, metadata.FileTypeRegular, size)
}

// ModifyFile updates the size of path.
func (s *MemoryMetadataStore) ModifyFile(ctx context.Context, path string, size uint64) error {
	return s.update(ctx, path, metadata.FileTypeRegular, size)
}

// CreateDir records a directory at path.
func (s *MemoryMetadataStore) CreateDir(ctx context.Context, path string) error {
	return s.update(ctx, path, metadata.FileTypeDirectory, 0)
}

func (s *MemoryMetadataStore) update(ctx context.Context, path string, fileType metadata.FileType, size uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key, err := metadata.NormalizePath(path)
	if err != nil {
		return err
	}
	if err := metadata.CheckUpdate(key, fileType); err != nil {
		return err
	}

	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	next, changed := metadata.Upsert(sh.attrs[key], fileType, size, s.clock())
	if changed {
		sh.attrs[key] = next
	}
	return nil
}

// Remove deletes the record for path. The root record cannot be removed.
func (s *MemoryMetadataStore) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key, err := metadata.NormalizePath(path)
	if err != nil {
		return err
	}
	if key == metadata.RootPath {
		return errors.NewInvalidPathError(key, "cannot remove root")
	}

	sh := s.shardFor(key)
	sh.mu.Lock()
	delete(sh.attrs, key)
	sh.mu.Unlock()
	return nil
}

// List returns every record ordered by path.
//
// Shards are locked one at a time so the result is not a point-in-time
// snapshot across shards.
func (s *MemoryMetadataStore) List(ctx context.Context) ([]metadata.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var files []metadata.File
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		for p, attr := range sh.attrs {
			files = append(files, metadata.File{Path: p, FileAttr: *attr})
		}
		sh.mu.RUnlock()
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Stats returns entry counters.
func (s *MemoryMetadataStore) Stats(ctx context.Context) (*metadata.StoreStats, error) {
	files, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return metadata.Summarize("memory", files), nil
}

// Healthcheck always succeeds unless ctx is done.
func (s *MemoryMetadataStore) Healthcheck(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op.
func (s *MemoryMetadataStore) Close() error {
	return nil
}
