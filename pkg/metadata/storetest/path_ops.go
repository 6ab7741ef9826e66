package storetest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/nfs4d/pkg/metadata"
)

func contextWithCancel(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithCancel(t.Context())
}

func runPathTests(t *testing.T, factory StoreFactory) {
	t.Run("PathsAreCleaned", func(t *testing.T) {
		store, _ := newStore(t, factory)
		ctx := t.Context()

		require.NoError(t, store.CreateFile(ctx, "/dir//file/", 3))

		attr, err := store.GetAttr(ctx, "/dir/./file")
		require.NoError(t, err)
		assert.Equal(t, uint64(3), attr.Size)
	})

	t.Run("RejectsInvalidPaths", func(t *testing.T) {
		store, _ := newStore(t, factory)
		ctx := t.Context()

		tests := []struct {
			name string
			path string
			code metadata.ErrorCode
		}{
			{"empty", "", metadata.ErrInvalidArgument},
			{"relative", "a/b", metadata.ErrInvalidArgument},
			{"nul", "/a\x00b", metadata.ErrInvalidArgument},
			{"too long", "/" + strings.Repeat("x", metadata.MaxPathLength), metadata.ErrNameTooLong},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := store.CreateFile(ctx, tt.path, 1)
				require.Error(t, err)
				assert.Equal(t, tt.code, metadata.CodeOf(err))

				_, err = store.GetAttr(ctx, tt.path)
				require.Error(t, err)
				assert.Equal(t, tt.code, metadata.CodeOf(err))
			})
		}
	})
}
