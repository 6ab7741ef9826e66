package storetest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/nfs4d/pkg/metadata"
)

func runUpdateTests(t *testing.T, factory StoreFactory) {
	t.Run("CreateFileInsertsRecord", func(t *testing.T) {
		store, clock := newStore(t, factory)
		ctx := t.Context()

		require.NoError(t, store.CreateFile(ctx, "/a.txt", 42))

		attr, err := store.GetAttr(ctx, "/a.txt")
		require.NoError(t, err)
		assert.Equal(t, metadata.FileTypeRegular, attr.Type)
		assert.Equal(t, uint64(42), attr.Size)
		assert.Equal(t, uint64(clock.Now().Unix()), attr.ChangeID)
	})

	t.Run("ModifyMissingInserts", func(t *testing.T) {
		store, _ := newStore(t, factory)
		ctx := t.Context()

		require.NoError(t, store.ModifyFile(ctx, "/new", 7))

		attr, err := store.GetAttr(ctx, "/new")
		require.NoError(t, err)
		assert.Equal(t, uint64(7), attr.Size)
	})

	t.Run("CreateDir", func(t *testing.T) {
		store, _ := newStore(t, factory)
		ctx := t.Context()

		require.NoError(t, store.CreateDir(ctx, "/sub"))

		attr, err := store.GetAttr(ctx, "/sub")
		require.NoError(t, err)
		assert.Equal(t, metadata.FileTypeDirectory, attr.Type)
		assert.Equal(t, uint64(0), attr.Size)
	})

	t.Run("RootStaysDirectory", func(t *testing.T) {
		store, _ := newStore(t, factory)
		ctx := t.Context()

		before, err := store.GetAttr(ctx, metadata.RootPath)
		require.NoError(t, err)

		err = store.CreateFile(ctx, metadata.RootPath, 10)
		require.Error(t, err)
		assert.Equal(t, metadata.ErrInvalidArgument, metadata.CodeOf(err))

		err = store.ModifyFile(ctx, "//", 10)
		require.Error(t, err)
		assert.Equal(t, metadata.ErrInvalidArgument, metadata.CodeOf(err))

		after, err := store.GetAttr(ctx, metadata.RootPath)
		require.NoError(t, err)
		assert.Equal(t, metadata.FileTypeDirectory, after.Type)
		assert.Equal(t, before.Size, after.Size)
		assert.Equal(t, before.ChangeID, after.ChangeID)

		require.NoError(t, store.CreateDir(ctx, metadata.RootPath))
	})

	t.Run("SameSecondSameSizeIsCoalesced", func(t *testing.T) {
		store, _ := newStore(t, factory)
		ctx := t.Context()

		require.NoError(t, store.CreateFile(ctx, "/f", 10))
		before, err := store.GetAttr(ctx, "/f")
		require.NoError(t, err)

		require.NoError(t, store.ModifyFile(ctx, "/f", 10))
		after, err := store.GetAttr(ctx, "/f")
		require.NoError(t, err)
		assert.Equal(t, before.ChangeID, after.ChangeID)
	})

	t.Run("SameSecondSizeChangeAdvances", func(t *testing.T) {
		store, _ := newStore(t, factory)
		ctx := t.Context()

		require.NoError(t, store.CreateFile(ctx, "/f", 10))
		before, err := store.GetAttr(ctx, "/f")
		require.NoError(t, err)

		require.NoError(t, store.ModifyFile(ctx, "/f", 11))
		after, err := store.GetAttr(ctx, "/f")
		require.NoError(t, err)
		assert.Equal(t, uint64(11), after.Size)
		assert.Greater(t, after.ChangeID, before.ChangeID)
	})

	t.Run("LaterSecondAdvances", func(t *testing.T) {
		store, clock := newStore(t, factory)
		ctx := t.Context()

		require.NoError(t, store.CreateFile(ctx, "/f", 10))
		clock.Advance(3 * time.Second)
		require.NoError(t, store.ModifyFile(ctx, "/f", 10))

		attr, err := store.GetAttr(ctx, "/f")
		require.NoError(t, err)
		assert.Equal(t, uint64(clock.Now().Unix()), attr.ChangeID)
		assert.True(t, attr.Mtime.Equal(clock.Now()))
	})

	t.Run("CtimeIsPreserved", func(t *testing.T) {
		store, clock := newStore(t, factory)
		ctx := t.Context()

		require.NoError(t, store.CreateFile(ctx, "/f", 1))
		created := clock.Now()
		clock.Advance(time.Minute)
		require.NoError(t, store.ModifyFile(ctx, "/f", 2))

		attr, err := store.GetAttr(ctx, "/f")
		require.NoError(t, err)
		assert.True(t, attr.Ctime.Equal(created))
	})

	t.Run("GetAttrMissing", func(t *testing.T) {
		store, _ := newStore(t, factory)

		_, err := store.GetAttr(t.Context(), "/missing")
		require.Error(t, err)
		assert.Equal(t, metadata.ErrNotFound, metadata.CodeOf(err))
	})

	t.Run("ReturnedRecordIsACopy", func(t *testing.T) {
		store, _ := newStore(t, factory)
		ctx := t.Context()

		require.NoError(t, store.CreateFile(ctx, "/f", 5))
		attr, err := store.GetAttr(ctx, "/f")
		require.NoError(t, err)
		attr.Size = 999

		again, err := store.GetAttr(ctx, "/f")
		require.NoError(t, err)
		assert.Equal(t, uint64(5), again.Size)
	})

	t.Run("CancelledContext", func(t *testing.T) {
		store, _ := newStore(t, factory)
		ctx, cancel := contextWithCancel(t)
		cancel()

		assert.Error(t, store.CreateFile(ctx, "/f", 1))
		_, err := store.GetAttr(ctx, metadata.RootPath)
		assert.Error(t, err)
	})
}
