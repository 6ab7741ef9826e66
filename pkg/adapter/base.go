package adapter

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/marmos91/nfs4d/internal/logger"
)

// ConnectionHandler serves one accepted connection. Serve blocks until the
// peer disconnects, the connection fails, or ctx is cancelled.
type ConnectionHandler interface {
	Serve(ctx context.Context)
}

// ConnectionFactory creates protocol-specific handlers for accepted
// connections. Protocol adapters pass themselves to ServeWithFactory.
type ConnectionFactory interface {
	NewConnection(conn net.Conn) ConnectionHandler
}

// BaseConfig holds the listener settings shared by protocol adapters.
type BaseConfig struct {
	// BindAddress is the IP address to bind to.
	// Empty string or "0.0.0.0" binds to all interfaces.
	BindAddress string

	// Port is the TCP port to listen on. 0 picks an ephemeral port.
	Port int

	// MaxConnections limits the number of concurrent client connections.
	// 0 means unlimited.
	MaxConnections int

	// ShutdownTimeout bounds how long Stop waits for active connections
	// before force-closing them.
	ShutdownTimeout time.Duration

	// MetricsLogInterval is the interval at which to log connection counts.
	// 0 disables periodic logging.
	MetricsLogInterval time.Duration
}

// ListenAddress returns the host:port the adapter binds to.
func (c BaseConfig) ListenAddress() string {
	return net.JoinHostPort(c.BindAddress, strconv.Itoa(c.Port))
}

// MetricsRecorder records connection lifecycle events. metrics.NFSMetrics
// satisfies it.
type MetricsRecorder interface {
	RecordConnectionAccepted()
	RecordConnectionClosed()
	RecordConnectionForceClosed()
	SetActiveConnections(count int32)
}

// BaseAdapter owns the TCP accept loop, connection tracking and graceful
// shutdown. Protocol adapters embed it and supply a ConnectionFactory.
//
// All exported methods are safe for concurrent use. Shutdown is guarded by
// sync.Once, so Stop may be called any number of times.
type BaseAdapter struct {
	Config BaseConfig

	// Metrics is optional; nil records nothing.
	Metrics MetricsRecorder

	protocolName string

	listener   net.Listener
	listenerMu sync.RWMutex

	// ListenerReady is closed once the listener is bound (or failed to bind).
	ListenerReady chan struct{}
	readyOnce     sync.Once

	// Shutdown is closed when shutdown starts.
	Shutdown     chan struct{}
	shutdownOnce sync.Once

	// ShutdownCtx is handed to every connection and cancelled on shutdown.
	ShutdownCtx    context.Context
	CancelRequests context.CancelFunc

	activeConns sync.WaitGroup
	ConnCount   atomic.Int32

	// ActiveConnections maps remote address to net.Conn for forced closure.
	ActiveConnections sync.Map

	// connSemaphore is nil when MaxConnections is 0.
	connSemaphore chan struct{}
}

// NewBaseAdapter creates a stopped BaseAdapter. Call ServeWithFactory to start.
func NewBaseAdapter(config BaseConfig, protocol string) *BaseAdapter {
	var connSemaphore chan struct{}
	if config.MaxConnections > 0 {
		connSemaphore = make(chan struct{}, config.MaxConnections)
		logger.Debug(protocol+" connection limit", "max_connections", config.MaxConnections)
	} else {
		logger.Debug(protocol+" connection limit", "max_connections", "unlimited")
	}

	shutdownCtx, cancelRequests := context.WithCancel(context.Background())

	return &BaseAdapter{
		Config:         config,
		protocolName:   protocol,
		Shutdown:       make(chan struct{}),
		connSemaphore:  connSemaphore,
		ShutdownCtx:    shutdownCtx,
		CancelRequests: cancelRequests,
		ListenerReady:  make(chan struct{}),
	}
}

// ServeWithFactory binds the listener and runs the accept loop until ctx is
// cancelled or Stop is called. Each accepted connection is served on its own
// goroutine by the handler factory returns.
//
// Returns nil after a graceful shutdown, or an error if the listener could
// not be bound or connections had to be force-closed.
func (b *BaseAdapter) ServeWithFactory(ctx context.Context, factory ConnectionFactory) error {
	listener, err := net.Listen("tcp", b.Config.ListenAddress())
	if err != nil {
		b.readyOnce.Do(func() { close(b.ListenerReady) })
		return fmt.Errorf("failed to create %s listener on %s: %w", b.protocolName, b.Config.ListenAddress(), err)
	}

	b.listenerMu.Lock()
	b.listener = listener
	b.listenerMu.Unlock()
	b.readyOnce.Do(func() { close(b.ListenerReady) })

	logger.Info(b.protocolName+" server listening", "address", listener.Addr().String())

	go func() {
		select {
		case <-ctx.Done():
			logger.Info(b.protocolName+" shutdown signal received", logger.Err(ctx.Err()))
			b.initiateShutdown()
		case <-b.Shutdown:
		}
	}()

	if b.Config.MetricsLogInterval > 0 {
		go b.logMetrics(b.ShutdownCtx)
	}

	for {
		if b.connSemaphore != nil {
			select {
			case b.connSemaphore <- struct{}{}:
			case <-b.Shutdown:
				return b.gracefulShutdown()
			}
		}

		tcpConn, err := listener.Accept()
		if err != nil {
			b.releaseSlot()

			select {
			case <-b.Shutdown:
				return b.gracefulShutdown()
			default:
				logger.Debug("Error accepting "+b.protocolName+" connection", logger.Err(err))
				continue
			}
		}

		if tcp, ok := tcpConn.(*net.TCPConn); ok {
			if err := tcp.SetNoDelay(true); err != nil {
				logger.Debug("Failed to set TCP_NODELAY", logger.Err(err))
			}
		}

		b.activeConns.Add(1)
		current := b.ConnCount.Add(1)

		connAddr := tcpConn.RemoteAddr().String()
		b.ActiveConnections.Store(connAddr, tcpConn)

		if b.Metrics != nil {
			b.Metrics.RecordConnectionAccepted()
			b.Metrics.SetActiveConnections(current)
		}

		logger.Debug(b.protocolName+" connection accepted", logger.Client(connAddr), "active", current)

		conn := factory.NewConnection(tcpConn)

		go func(addr string) {
			defer func() {
				b.ActiveConnections.Delete(addr)
				remaining := b.ConnCount.Add(-1)
				b.activeConns.Done()
				b.releaseSlot()

				if b.Metrics != nil {
					b.Metrics.RecordConnectionClosed()
					b.Metrics.SetActiveConnections(remaining)
				}

				logger.Debug(b.protocolName+" connection closed", logger.Client(addr), "active", remaining)
			}()

			conn.Serve(b.ShutdownCtx)
		}(connAddr)
	}
}

func (b *BaseAdapter) releaseSlot() {
	if b.connSemaphore != nil {
		<-b.connSemaphore
	}
}

// initiateShutdown stops accepting, unblocks reads on live connections and
// cancels ShutdownCtx. Safe to call more than once.
func (b *BaseAdapter) initiateShutdown() {
	b.shutdownOnce.Do(func() {
		logger.Debug(b.protocolName + " shutdown initiated")

		close(b.Shutdown)

		b.listenerMu.Lock()
		if b.listener != nil {
			if err := b.listener.Close(); err != nil {
				logger.Debug("Error closing "+b.protocolName+" listener", logger.Err(err))
			}
		}
		b.listenerMu.Unlock()

		b.interruptBlockingReads()
		b.CancelRequests()
	})
}

// interruptBlockingReads sets a short read deadline on every active
// connection so goroutines parked in Read notice the shutdown.
func (b *BaseAdapter) interruptBlockingReads() {
	deadline := time.Now().Add(100 * time.Millisecond)

	b.ActiveConnections.Range(func(key, value any) bool {
		if conn, ok := value.(net.Conn); ok {
			if err := conn.SetReadDeadline(deadline); err != nil {
				logger.Debug("Error setting shutdown deadline on connection",
					logger.Client(key.(string)), logger.Err(err))
			}
		}
		return true
	})
}

// gracefulShutdown waits up to ShutdownTimeout for connections to finish,
// then force-closes the rest.
func (b *BaseAdapter) gracefulShutdown() error {
	activeCount := b.ConnCount.Load()
	logger.Info(b.protocolName+" graceful shutdown: waiting for active connections",
		"active", activeCount, "timeout", b.Config.ShutdownTimeout)

	if b.waitForConnections(b.Config.ShutdownTimeout) {
		logger.Info(b.protocolName + " graceful shutdown complete")
		return nil
	}

	remaining := b.ConnCount.Load()
	logger.Warn(b.protocolName+" shutdown timeout exceeded, forcing closure",
		"active", remaining, "timeout", b.Config.ShutdownTimeout)
	b.forceCloseConnections()

	return fmt.Errorf("%s shutdown timeout: %d connections force-closed", b.protocolName, remaining)
}

// waitForConnections reports whether every connection finished within timeout.
// A non-positive timeout does not wait.
func (b *BaseAdapter) waitForConnections(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		b.activeConns.Wait()
		close(done)
	}()

	if timeout <= 0 {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}

func (b *BaseAdapter) forceCloseConnections() {
	closedCount := 0
	b.ActiveConnections.Range(func(key, value any) bool {
		addr := key.(string)
		conn := value.(net.Conn)

		if err := conn.Close(); err != nil {
			logger.Debug("Error force-closing connection", logger.Client(addr), logger.Err(err))
			return true
		}

		closedCount++
		logger.Debug("Force-closed connection", logger.Client(addr))
		if b.Metrics != nil {
			b.Metrics.RecordConnectionForceClosed()
		}
		return true
	})

	if closedCount > 0 {
		logger.Info("Force-closed connections", "count", closedCount)
	}
}

// Stop initiates shutdown and waits for active connections.
//
// If ctx expires first, the remaining connections are force-closed and
// ctx.Err() is returned. A nil ctx waits for ShutdownTimeout instead.
func (b *BaseAdapter) Stop(ctx context.Context) error {
	b.initiateShutdown()

	if ctx == nil {
		return b.gracefulShutdown()
	}

	done := make(chan struct{})
	go func() {
		b.activeConns.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		logger.Warn(b.protocolName+" shutdown context expired",
			"active", b.ConnCount.Load(), logger.Err(ctx.Err()))
		b.forceCloseConnections()
		return ctx.Err()
	}
}

func (b *BaseAdapter) logMetrics(ctx context.Context) {
	ticker := time.NewTicker(b.Config.MetricsLogInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logger.Info(b.protocolName+" metrics", "active_connections", b.ConnCount.Load())
		}
	}
}

// GetActiveConnections returns the current number of active connections.
func (b *BaseAdapter) GetActiveConnections() int32 {
	return b.ConnCount.Load()
}

// GetListenerAddr blocks until the listener is bound and returns its
// address, or "" if binding failed.
func (b *BaseAdapter) GetListenerAddr() string {
	<-b.ListenerReady

	b.listenerMu.RLock()
	defer b.listenerMu.RUnlock()

	if b.listener == nil {
		return ""
	}
	return b.listener.Addr().String()
}

// Port returns the configured TCP port.
func (b *BaseAdapter) Port() int {
	return b.Config.Port
}

// Protocol returns the protocol name used in log lines.
func (b *BaseAdapter) Protocol() string {
	return b.protocolName
}
