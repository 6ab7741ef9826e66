package metrics

import "time"

// StoreMetrics observes metadata store calls.
//
// A nil StoreMetrics is valid wherever one is accepted and records nothing.
type StoreMetrics interface {
	// RecordStoreOperation records one store call.
	//
	// Parameters:
	//   - backend: Store backend ("memory", "badger")
	//   - operation: Method name (e.g., "GetAttr", "ModifyFile")
	//   - duration: Time spent in the store
	//   - err: Error returned by the store, nil on success
	RecordStoreOperation(backend string, operation string, duration time.Duration, err error)

	// SetEntries updates the gauge of records held by the store.
	SetEntries(backend string, count int)
}
