package logger

import (
	"context"
	"time"
)

type contextKey struct{}

// LogContext holds request-scoped fields that *Ctx functions prepend to
// every record.
type LogContext struct {
	TraceID    string    // OpenTelemetry trace ID
	SpanID     string    // OpenTelemetry span ID
	Procedure  string    // RPC procedure name (NULL, COMPOUND)
	XID        uint32    // RPC transaction id
	ClientAddr string    // Remote address, host:port
	StartTime  time.Time // Set when the request was read
}

// WithContext returns a copy of ctx carrying lc.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, contextKey{}, lc)
}

// FromContext returns the LogContext of ctx, or nil.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(contextKey{}).(*LogContext)
	return lc
}

// NewLogContext starts a LogContext for a request from clientAddr.
func NewLogContext(clientAddr string) *LogContext {
	return &LogContext{
		ClientAddr: clientAddr,
		StartTime:  time.Now(),
	}
}

// Clone returns a copy of lc. Cloning nil yields nil.
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	c := *lc
	return &c
}

// WithCall returns a copy tagged with an RPC call's xid and procedure.
func (lc *LogContext) WithCall(xid uint32, procedure string) *LogContext {
	c := lc.Clone()
	if c != nil {
		c.XID = xid
		c.Procedure = procedure
	}
	return c
}

// WithTrace returns a copy with trace info set
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	c := lc.Clone()
	if c != nil {
		c.TraceID = traceID
		c.SpanID = spanID
	}
	return c
}

// DurationMs returns the time since StartTime in milliseconds.
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return Duration(lc.StartTime)
}
