// Package badger provides a persistent MetadataStore backed by BadgerDB.
//
// Key Namespace:
//
//	Data Type      Prefix   Key Format                 Value Type
//	=============================================================
//	Attributes     "a:"     a:<hex(blake2b-256(path))>  record (JSON)
//	Root Handle    "cfg:"   cfg:root_handle             raw bytes
//
// Paths are hashed so keys have a fixed width regardless of path length.
// The path itself is kept in the value for listing.
package badger

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/google/uuid"
	"github.com/marmos91/nfs4d/internal/logger"
	"github.com/marmos91/nfs4d/pkg/metadata"
	storeerrors "github.com/marmos91/nfs4d/pkg/metadata/errors"
	"golang.org/x/crypto/blake2b"
)

const (
	prefixAttr   = "a:"
	prefixConfig = "cfg:"

	// maxConflictRetries bounds how often an update is retried after
	// badger reports a transaction conflict.
	maxConflictRetries = 64
)

func keyAttr(path string) []byte {
	sum := blake2b.Sum256([]byte(path))
	return []byte(prefixAttr + hex.EncodeToString(sum[:]))
}

func keyRootHandle() []byte {
	return []byte(prefixConfig + "root_handle")
}

// record is the JSON value stored under an attribute key.
type record struct {
	Path string `json:"path"`
	metadata.FileAttr
}

func encodeRecord(path string, attr *metadata.FileAttr) ([]byte, error) {
	data, err := json.Marshal(record{Path: path, FileAttr: *attr})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	return data, nil
}

func decodeRecord(data []byte) (*record, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &r, nil
}

// BadgerMetadataStoreConfig configures a BadgerMetadataStore.
type BadgerMetadataStoreConfig struct {
	// DBPath is the directory BadgerDB stores its files in.
	DBPath string

	// InMemory runs BadgerDB without touching disk. DBPath is ignored.
	InMemory bool

	// BlockCacheSize and IndexCacheSize size Badger's caches in bytes.
	// Zero keeps Badger's defaults.
	BlockCacheSize int64
	IndexCacheSize int64

	// BadgerOptions overrides the derived options entirely when set.
	BadgerOptions *badgerdb.Options

	// Clock stamps updates. Defaults to metadata.Now.
	Clock func() time.Time
}

// BadgerMetadataStore persists attribute records in BadgerDB.
type BadgerMetadataStore struct {
	db         *badgerdb.DB
	rootHandle metadata.FileHandle
	clock      func() time.Time
}

// NewBadgerMetadataStore opens (or creates) a store.
//
// On first open the root directory record is seeded and a random root
// handle is generated and persisted, so handles survive restarts.
func NewBadgerMetadataStore(ctx context.Context, config BadgerMetadataStoreConfig) (*BadgerMetadataStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var opts badgerdb.Options
	switch {
	case config.BadgerOptions != nil:
		opts = *config.BadgerOptions
	case config.InMemory:
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	default:
		opts = badgerdb.DefaultOptions(config.DBPath)
	}
	if config.BadgerOptions == nil {
		opts = opts.WithLoggingLevel(badgerdb.WARNING) // Reduce log noise
		opts = opts.WithCompression(options.None)      // Records are small
		if config.BlockCacheSize > 0 {
			opts = opts.WithBlockCacheSize(config.BlockCacheSize)
		}
		if config.IndexCacheSize > 0 {
			opts = opts.WithIndexCacheSize(config.IndexCacheSize)
		}
	}

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", config.DBPath, err)
	}

	store := &BadgerMetadataStore{
		db:    db,
		clock: config.Clock,
	}
	if store.clock == nil {
		store.clock = metadata.Now
	}

	if err := store.initializeSingletons(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize singletons: %w", err)
	}

	logger.Debug("Badger metadata store opened", "path", config.DBPath, "in_memory", config.InMemory)
	return store, nil
}

// NewBadgerMetadataStoreWithDefaults opens a store at dbPath with default options.
func NewBadgerMetadataStoreWithDefaults(ctx context.Context, dbPath string) (*BadgerMetadataStore, error) {
	return NewBadgerMetadataStore(ctx, BadgerMetadataStoreConfig{DBPath: dbPath})
}

func (s *BadgerMetadataStore) initializeSingletons(ctx context.Context) error {
	return s.db.Update(func(txn *badgerdb.Txn) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		item, err := txn.Get(keyRootHandle())
		switch {
		case err == nil:
			handle, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			s.rootHandle = handle
		case errors.Is(err, badgerdb.ErrKeyNotFound):
			id := uuid.New()
			s.rootHandle = metadata.FileHandle(id[:])
			if err := txn.Set(keyRootHandle(), s.rootHandle); err != nil {
				return fmt.Errorf("failed to store root handle: %w", err)
			}
		default:
			return err
		}

		if _, err := txn.Get(keyAttr(metadata.RootPath)); errors.Is(err, badgerdb.ErrKeyNotFound) {
			data, err := encodeRecord(metadata.RootPath, metadata.NewRootAttr(s.clock()))
			if err != nil {
				return err
			}
			return txn.Set(keyAttr(metadata.RootPath), data)
		} else if err != nil {
			return err
		}
		return nil
	})
}

// RootHandle returns the persisted root handle.
func (s *BadgerMetadataStore) RootHandle(ctx context.Context) (metadata.FileHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	handle := make(metadata.FileHandle, len(s.rootHandle))
	copy(handle, s.rootHandle)
	return handle, nil
}

// GetAttr returns the record for path.
func (s *BadgerMetadataStore) GetAttr(ctx context.Context, path string) (*metadata.FileAttr, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key, err := metadata.NormalizePath(path)
	if err != nil {
		return nil, err
	}

	var attr *metadata.FileAttr
	err = s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(keyAttr(key))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return storeerrors.NewNotFoundError(key, "entry")
		}
		if err != nil {
			return storeerrors.NewIOError("get", err)
		}
		return item.Value(func(val []byte) error {
			r, err := decodeRecord(val)
			if err != nil {
				return storeerrors.NewIOError("decode", err)
			}
			attr = &r.FileAttr
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return attr, nil
}

// CreateFile records a regular file of the given size.
func (s *BadgerMetadataStore) CreateFile(ctx context.Context, path string, size uint64) error {
	return s.update(ctx, path, metadata.FileTypeRegular, size)
}

// ModifyFile updates the size of path.
func (s *BadgerMetadataStore) ModifyFile(ctx context.Context, path string, size uint64) error {
	return s.update(ctx, path, metadata.FileTypeRegular, size)
}

// CreateDir records a directory at path.
func (s *BadgerMetadataStore) CreateDir(ctx context.Context, path string) error {
	return s.update(ctx, path, metadata.FileTypeDirectory, 0)
}

func (s *BadgerMetadataStore) update(ctx context.Context, path string, fileType metadata.FileType, size uint64) error {
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

	return s.retryUpdate(ctx, func(txn *badgerdb.Txn) error {
		var current *metadata.FileAttr
		item, err := txn.Get(keyAttr(key))
		switch {
		case err == nil:
			if err := item.Value(func(val []byte) error {
				r, err := decodeRecord(val)
				if err != nil {
					return err
				}
				current = &r.FileAttr
				return nil
			}); err != nil {
				return storeerrors.NewIOError("decode", err)
			}
		case !errors.Is(err, badgerdb.ErrKeyNotFound):
			return storeerrors.NewIOError("get", err)
		}

		next, changed := metadata.Upsert(current, fileType, size, s.clock())
		if !changed {
			return nil
		}
		data, err := encodeRecord(key, next)
		if err != nil {
			return storeerrors.NewIOError("encode", err)
		}
		return txn.Set(keyAttr(key), data)
	})
}

// retryUpdate runs fn in a read-write transaction, retrying when badger
// detects a conflicting concurrent commit.
func (s *BadgerMetadataStore) retryUpdate(ctx context.Context, fn func(txn *badgerdb.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = s.db.Update(fn)
		if !errors.Is(err, badgerdb.ErrConflict) {
			return err
		}
	}
	return storeerrors.NewIOError("update", err)
}

// Remove deletes the record for path. The root record cannot be removed.
func (s *BadgerMetadataStore) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key, err := metadata.NormalizePath(path)
	if err != nil {
		return err
	}
	if key == metadata.RootPath {
		return storeerrors.NewInvalidPathError(key, "cannot remove root")
	}

	return s.retryUpdate(ctx, func(txn *badgerdb.Txn) error {
		return txn.Delete(keyAttr(key))
	})
}

// List returns every record ordered by path.
func (s *BadgerMetadataStore) List(ctx context.Context) ([]metadata.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var files []metadata.File
	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(prefixAttr)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := it.Item().Value(func(val []byte) error {
				r, err := decodeRecord(val)
				if err != nil {
					return err
				}
				files = append(files, metadata.File{Path: r.Path, FileAttr: r.FileAttr})
				return nil
			})
			if err != nil {
				return storeerrors.NewIOError("decode", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Stats returns entry counters.
func (s *BadgerMetadataStore) Stats(ctx context.Context) (*metadata.StoreStats, error) {
	files, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return metadata.Summarize("badger", files), nil
}

// Healthcheck verifies the database can serve a read transaction.
func (s *BadgerMetadataStore) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.View(func(txn *badgerdb.Txn) error {
		return nil
	})
	if err != nil {
		return fmt.Errorf("healthcheck failed: %w", err)
	}
	return nil
}

// Close flushes and closes the database.
func (s *BadgerMetadataStore) Close() error {
	return s.db.Close()
}
