package metrics

import (
	"time"
)

// NFSMetrics provides observability for the NFSv4 adapter.
//
// Implementations collect metrics about RPC calls, COMPOUND operations,
// connection lifecycle and throughput. This interface is optional; pass nil
// to disable collection.
//
// Example usage:
//
//	// With metrics enabled
//	m := prometheus.NewNFSMetrics()
//	adapter := nfs.New(config, handler, m)
//
//	// Without metrics
//	adapter := nfs.New(config, handler, nil)
type NFSMetrics interface {
	// RecordRequest records a completed RPC call.
	//
	// Parameters:
	//   - procedure: RPC procedure name ("NULL", "COMPOUND", "UNKNOWN")
	//   - duration: Time taken to produce the reply
	//   - outcome: "ok" when a reply was written, otherwise the reason the
	//     connection was closed ("codec", "backend", "write")
	RecordRequest(procedure string, duration time.Duration, outcome string)

	// RecordRequestStart increments the in-flight request gauge.
	RecordRequestStart(procedure string)

	// RecordRequestEnd decrements the in-flight request gauge.
	RecordRequestEnd(procedure string)

	// RecordOperation counts one evaluated COMPOUND operation.
	//
	// Parameters:
	//   - op: Operation name (e.g., "PUTROOTFH", "GETATTR")
	//   - status: Symbolic nfsstat4 of the result (e.g., "NFS4_OK")
	RecordOperation(op string, status string)

	// RecordBytes records bytes moved over the wire.
	//
	// Parameters:
	//   - direction: "in" for received records, "out" for replies
	//   - bytes: Number of bytes including record marks
	RecordBytes(direction string, bytes uint64)

	// SetActiveConnections updates the current connection count.
	SetActiveConnections(count int32)

	// RecordConnectionAccepted increments the total accepted connections counter.
	RecordConnectionAccepted()

	// RecordConnectionClosed increments the total closed connections counter.
	RecordConnectionClosed()

	// RecordConnectionForceClosed increments the force-closed connections counter.
	// Called when connections are forcibly closed after shutdown timeout.
	RecordConnectionForceClosed()
}

// noopNFSMetrics discards everything.
type noopNFSMetrics struct{}

// NewNoopNFSMetrics returns an NFSMetrics that records nothing.
func NewNoopNFSMetrics() NFSMetrics {
	return noopNFSMetrics{}
}

func (noopNFSMetrics) RecordRequest(string, time.Duration, string) {}
func (noopNFSMetrics) RecordRequestStart(string)                   {}
func (noopNFSMetrics) RecordRequestEnd(string)                     {}
func (noopNFSMetrics) RecordOperation(string, string)              {}
func (noopNFSMetrics) RecordBytes(string, uint64)                  {}
func (noopNFSMetrics) SetActiveConnections(int32)                  {}
func (noopNFSMetrics) RecordConnectionAccepted()                   {}
func (noopNFSMetrics) RecordConnectionClosed()                     {}
func (noopNFSMetrics) RecordConnectionForceClosed()                {}
