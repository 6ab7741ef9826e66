// Package nfs serves NFSv4 over TCP.
//
// NFSAdapter embeds adapter.BaseAdapter for the accept loop and shutdown,
// and creates one NFSConnection per client. A connection reads
// record-marked RPC calls one at a time, hands them to the COMPOUND
// evaluator in internal/protocol/nfs/v4/handlers, and writes each reply
// before reading the next call.
package nfs

import (
	"context"
	"net"
	"time"

	"github.com/marmos91/nfs4d/internal/protocol/nfs/v4/handlers"
	"github.com/marmos91/nfs4d/pkg/adapter"
	"github.com/marmos91/nfs4d/pkg/metadata"
	"github.com/marmos91/nfs4d/pkg/metrics"
)

// NFSConfig configures the NFSv4 adapter.
type NFSConfig struct {
	adapter.BaseConfig

	Timeouts NFSTimeoutsConfig
}

// NFSTimeoutsConfig bounds blocking socket I/O. Zero disables a timeout.
type NFSTimeoutsConfig struct {
	// Read bounds the wait for one complete call record, including the
	// idle time before it starts.
	Read time.Duration

	// Write bounds writing one reply.
	Write time.Duration
}

// NFSAdapter is the NFSv4 protocol server.
type NFSAdapter struct {
	*adapter.BaseAdapter

	config  NFSConfig
	handler *handlers.Handler
	metrics metrics.NFSMetrics
}

// New creates an NFSAdapter that evaluates calls against store.
// m may be nil to disable metrics.
func New(config NFSConfig, store metadata.MetadataStore, m metrics.NFSMetrics) *NFSAdapter {
	if m == nil {
		m = metrics.NewNoopNFSMetrics()
	}

	base := adapter.NewBaseAdapter(config.BaseConfig, "NFS")
	base.Metrics = m

	return &NFSAdapter{
		BaseAdapter: base,
		config:      config,
		handler:     handlers.NewHandler(store, m),
		metrics:     m,
	}
}

// Serve runs the accept loop until ctx is cancelled or Stop is called.
func (s *NFSAdapter) Serve(ctx context.Context) error {
	return s.ServeWithFactory(ctx, s)
}

// NewConnection implements adapter.ConnectionFactory.
func (s *NFSAdapter) NewConnection(conn net.Conn) adapter.ConnectionHandler {
	return NewNFSConnection(s, conn)
}

var _ adapter.Adapter = (*NFSAdapter)(nil)
