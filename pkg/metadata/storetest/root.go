package storetest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/nfs4d/pkg/metadata"
)

func runRootTests(t *testing.T, factory StoreFactory) {
	t.Run("SeededAsDirectory", func(t *testing.T) {
		store, clock := newStore(t, factory)
		ctx := t.Context()

		attr, err := store.GetAttr(ctx, metadata.RootPath)
		require.NoError(t, err)
		assert.Equal(t, metadata.FileTypeDirectory, attr.Type)
		assert.Equal(t, uint64(0), attr.Size)
		assert.Equal(t, uint64(clock.Now().Unix()), attr.ChangeID)
		assert.True(t, attr.Mtime.Equal(clock.Now()))
		assert.True(t, attr.Ctime.Equal(clock.Now()))
	})

	t.Run("HandleIsStable", func(t *testing.T) {
		store, _ := newStore(t, factory)
		ctx := t.Context()

		first, err := store.RootHandle(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, first)
		assert.LessOrEqual(t, len(first), 128)

		second, err := store.RootHandle(ctx)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("HandleIsCopied", func(t *testing.T) {
		store, _ := newStore(t, factory)
		ctx := t.Context()

		handle, err := store.RootHandle(ctx)
		require.NoError(t, err)
		original := append(metadata.FileHandle(nil), handle...)
		handle[0] ^= 0xFF

		again, err := store.RootHandle(ctx)
		require.NoError(t, err)
		assert.Equal(t, original, again)
	})

	t.Run("Healthcheck", func(t *testing.T) {
		store, _ := newStore(t, factory)
		assert.NoError(t, store.Healthcheck(t.Context()))
	})
}
