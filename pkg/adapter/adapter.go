// Package adapter provides the TCP lifecycle shared by protocol servers:
// listener management, connection limits, and graceful shutdown.
package adapter

import "context"

// Adapter is a protocol server managed by the nfs4d process.
//
// Lifecycle:
//  1. Creation: the adapter is built with its config and backend
//  2. Startup: Serve binds the listener and blocks until shutdown
//  3. Shutdown: Stop stops accepting, drains, then force-closes
//
// Stop may be called concurrently with Serve and more than once.
type Adapter interface {
	// Serve starts the protocol server and blocks until ctx is cancelled or
	// an unrecoverable error occurs. It returns nil on graceful shutdown.
	Serve(ctx context.Context) error

	// Stop initiates graceful shutdown, bounded by ctx.
	Stop(ctx context.Context) error

	// Protocol returns the human-readable protocol name for logging.
	Protocol() string

	// Port returns the configured TCP port.
	Port() int
}
