// Package storetest provides a conformance suite every MetadataStore
// implementation must pass.
//
// Usage from a store's test file:
//
//	func TestConformance(t *testing.T) {
//	    storetest.RunConformanceSuite(t, func(t *testing.T, clock func() time.Time) metadata.MetadataStore {
//	        return memory.NewMemoryMetadataStore(memory.MemoryMetadataStoreConfig{Clock: clock})
//	    })
//	}
package storetest
