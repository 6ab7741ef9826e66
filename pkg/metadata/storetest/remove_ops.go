package storetest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/nfs4d/pkg/metadata"
)

func runRemoveTests(t *testing.T, factory StoreFactory) {
	t.Run("RemovesRecord", func(t *testing.T) {
		store, _ := newStore(t, factory)
		ctx := t.Context()

		require.NoError(t, store.CreateFile(ctx, "/gone", 1))
		require.NoError(t, store.Remove(ctx, "/gone"))

		_, err := store.GetAttr(ctx, "/gone")
		assert.Equal(t, metadata.ErrNotFound, metadata.CodeOf(err))
	})

	t.Run("MissingIsNoop", func(t *testing.T) {
		store, _ := newStore(t, factory)
		assert.NoError(t, store.Remove(t.Context(), "/never"))
	})

	t.Run("RootIsProtected", func(t *testing.T) {
		store, _ := newStore(t, factory)
		ctx := t.Context()

		err := store.Remove(ctx, "/")
		require.Error(t, err)
		assert.Equal(t, metadata.ErrInvalidArgument, metadata.CodeOf(err))

		_, err = store.GetAttr(ctx, metadata.RootPath)
		assert.NoError(t, err)
	})
}
