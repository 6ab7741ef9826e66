package storetest

import (
	"sync"
	"testing"
	"time"

	"github.com/marmos91/nfs4d/pkg/metadata"
)

// StoreFactory creates a fresh MetadataStore for each test. The store must
// stamp updates using clock, so tests can control time. The factory may use
// t.TempDir() and t.Cleanup() for stores with on-disk state.
type StoreFactory func(t *testing.T, clock func() time.Time) metadata.MetadataStore

// RunConformanceSuite runs the full conformance suite against factory.
//
// The suite covers:
//   - Root: seeded root record and root handle
//   - Updates: create, modify, coalescing and change id ordering
//   - Paths: normalization and invalid input
//   - Remove: deletion and root protection
//   - Listing: List and Stats
//   - Concurrency: parallel updates on one key
func RunConformanceSuite(t *testing.T, factory StoreFactory) {
	t.Helper()

	t.Run("Root", func(t *testing.T) {
		runRootTests(t, factory)
	})

	t.Run("Updates", func(t *testing.T) {
		runUpdateTests(t, factory)
	})

	t.Run("Paths", func(t *testing.T) {
		runPathTests(t, factory)
	})

	t.Run("Remove", func(t *testing.T) {
		runRemoveTests(t, factory)
	})

	t.Run("Listing", func(t *testing.T) {
		runListingTests(t, factory)
	})

	t.Run("Concurrency", func(t *testing.T) {
		runConcurrencyTests(t, factory)
	})
}

// fakeClock is a manually advanced clock safe for concurrent reads.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newStore(t *testing.T, factory StoreFactory) (metadata.MetadataStore, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	return factory(t, clock.Now), clock
}
