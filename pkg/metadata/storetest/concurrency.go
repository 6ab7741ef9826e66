package storetest

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runConcurrencyTests(t *testing.T, factory StoreFactory) {
	t.Run("ParallelUpdatesOneKey", func(t *testing.T) {
		store, clock := newStore(t, factory)
		ctx := t.Context()

		require.NoError(t, store.CreateFile(ctx, "/hot", 0))
		start, err := store.GetAttr(ctx, "/hot")
		require.NoError(t, err)

		const writers = 16
		var wg sync.WaitGroup
		errs := make(chan error, writers)
		for i := 1; i <= writers; i++ {
			wg.Add(1)
			go func(size uint64) {
				defer wg.Done()
				errs <- store.ModifyFile(ctx, "/hot", size)
			}(uint64(i))
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		// Every writer used a distinct size, so none coalesced and the
		// change id advanced once per update.
		end, err := store.GetAttr(ctx, "/hot")
		require.NoError(t, err)
		assert.Equal(t, start.ChangeID+writers, end.ChangeID)
		assert.True(t, end.Mtime.Equal(clock.Now()))
	})

	t.Run("ParallelDistinctKeys", func(t *testing.T) {
		store, _ := newStore(t, factory)
		ctx := t.Context()

		const n = 64
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, store.CreateFile(ctx, fmt.Sprintf("/f%d", i), uint64(i)))
			}(i)
		}
		wg.Wait()

		files, err := store.List(ctx)
		require.NoError(t, err)
		assert.Len(t, files, n+1)
	})
}
