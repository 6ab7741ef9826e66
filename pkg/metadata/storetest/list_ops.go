package storetest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runListingTests(t *testing.T, factory StoreFactory) {
	t.Run("ListIsSorted", func(t *testing.T) {
		store, _ := newStore(t, factory)
		ctx := t.Context()

		require.NoError(t, store.CreateFile(ctx, "/b", 2))
		require.NoError(t, store.CreateDir(ctx, "/a"))
		require.NoError(t, store.CreateFile(ctx, "/a/c", 3))

		files, err := store.List(ctx)
		require.NoError(t, err)

		paths := make([]string, len(files))
		for i, f := range files {
			paths[i] = f.Path
		}
		assert.Equal(t, []string{"/", "/a", "/a/c", "/b"}, paths)
	})

	t.Run("Stats", func(t *testing.T) {
		store, _ := newStore(t, factory)
		ctx := t.Context()

		require.NoError(t, store.CreateFile(ctx, "/x", 10))
		require.NoError(t, store.CreateFile(ctx, "/y", 32))
		require.NoError(t, store.CreateDir(ctx, "/d"))

		stats, err := store.Stats(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, stats.Backend)
		assert.Equal(t, 4, stats.Entries)
		assert.Equal(t, 2, stats.Files)
		assert.Equal(t, 2, stats.Directories)
		assert.Equal(t, uint64(42), stats.TotalBytes)
	})

	t.Run("ListedAttrsMatchGetAttr", func(t *testing.T) {
		store, _ := newStore(t, factory)
		ctx := t.Context()

		require.NoError(t, store.CreateFile(ctx, "/m", 9))
		files, err := store.List(ctx)
		require.NoError(t, err)

		for _, f := range files {
			attr, err := store.GetAttr(ctx, f.Path)
			require.NoError(t, err)
			assert.Equal(t, f.Size, attr.Size, f.Path)
			assert.Equal(t, f.ChangeID, attr.ChangeID, f.Path)
		}
	})
}
