// Package logger is the process-wide structured logger of nfs4d.
//
// It is a thin facade over log/slog. Level and format can be switched at
// runtime (the config watcher does this on reload) without callers holding
// on to a stale *slog.Logger: every call goes through the current handler.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Level represents log levels
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Config holds logger configuration
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or file path
}

var (
	currentLevel  atomic.Int32
	currentFormat atomic.Value // "text" or "json"

	mu       sync.RWMutex
	slogger  *slog.Logger
	output   io.Writer = os.Stdout
	closer   io.Closer // set when output is a file we opened
	useColor bool
)

func init() {
	currentLevel.Store(int32(LevelInfo))
	currentFormat.Store("text")
	useColor = isTerminal(os.Stdout.Fd())
	reconfigure()
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name to a Level. The match is case-insensitive.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARN", "WARNING":
		return LevelWarn, true
	case "ERROR":
		return LevelError, true
	}
	return LevelInfo, false
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// reconfigure rebuilds the slog handler from the current settings.
func reconfigure() {
	mu.Lock()
	defer mu.Unlock()

	opts := &slog.HandlerOptions{Level: Level(currentLevel.Load()).slogLevel()}

	var h slog.Handler
	if format, _ := currentFormat.Load().(string); format == "json" {
		h = slog.NewJSONHandler(output, opts)
	} else {
		h = NewColorTextHandler(output, opts, useColor)
	}
	slogger = slog.New(h)
}

// Init applies cfg. Empty fields keep their current value.
// Output can be "stdout", "stderr", or a file path opened for append.
func Init(cfg Config) error {
	if cfg.Output != "" {
		var (
			w     io.Writer
			c     io.Closer
			color bool
		)
		switch strings.ToLower(cfg.Output) {
		case "stdout":
			w, color = os.Stdout, isTerminal(os.Stdout.Fd())
		case "stderr":
			w, color = os.Stderr, isTerminal(os.Stderr.Fd())
		default:
			f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("failed to open log file %q: %w", cfg.Output, err)
			}
			w, c = f, f
		}
		swapOutput(w, c, color)
	}

	if cfg.Level != "" {
		if _, ok := ParseLevel(cfg.Level); !ok {
			return fmt.Errorf("invalid log level %q", cfg.Level)
		}
		SetLevel(cfg.Level)
	}
	if cfg.Format != "" {
		SetFormat(cfg.Format)
	}

	reconfigure()
	return nil
}

// InitWithWriter routes output to w. Used by tests and the CLI.
func InitWithWriter(w io.Writer, level, format string, enableColor bool) {
	swapOutput(w, nil, enableColor)
	if level != "" {
		SetLevel(level)
	}
	if format != "" {
		SetFormat(format)
	}
	reconfigure()
}

func swapOutput(w io.Writer, c io.Closer, color bool) {
	mu.Lock()
	prev := closer
	output, closer, useColor = w, c, color
	mu.Unlock()

	if prev != nil {
		_ = prev.Close()
	}
}

// Close releases the log file opened by Init, if any, and falls back to stdout.
func Close() error {
	mu.Lock()
	c := closer
	output, closer = os.Stdout, nil
	mu.Unlock()

	reconfigure()
	if c != nil {
		return c.Close()
	}
	return nil
}

// SetLevel sets the minimum log level. Unknown names are ignored.
func SetLevel(level string) {
	l, ok := ParseLevel(level)
	if !ok {
		return
	}
	currentLevel.Store(int32(l))
	reconfigure()
}

// GetLevel returns the current minimum level.
func GetLevel() Level {
	return Level(currentLevel.Load())
}

// SetFormat sets the output format (text or json). Unknown names are ignored.
func SetFormat(format string) {
	format = strings.ToLower(format)
	if format != "text" && format != "json" {
		return
	}
	currentFormat.Store(format)
	reconfigure()
}

func enabled(l Level) bool {
	return l >= Level(currentLevel.Load())
}

func getLogger() *slog.Logger {
	mu.RLock()
	l := slogger
	mu.RUnlock()
	return l
}

// ============================================================================
// Structured Logging API
// ============================================================================

// Debug logs at debug level.
// Usage: Debug("message", "key1", value1, "key2", value2)
func Debug(msg string, args ...any) {
	if enabled(LevelDebug) {
		getLogger().Debug(msg, args...)
	}
}

// Info logs at info level.
func Info(msg string, args ...any) {
	if enabled(LevelInfo) {
		getLogger().Info(msg, args...)
	}
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	if enabled(LevelWarn) {
		getLogger().Warn(msg, args...)
	}
}

// Error logs at error level. Errors are never filtered.
func Error(msg string, args ...any) {
	getLogger().Error(msg, args...)
}

// ============================================================================
// Context-aware Logging API
// ============================================================================

// DebugCtx logs at debug level, prefixed with the LogContext fields of ctx.
func DebugCtx(ctx context.Context, msg string, args ...any) {
	if enabled(LevelDebug) {
		getLogger().Debug(msg, appendContextFields(ctx, args)...)
	}
}

// InfoCtx logs at info level with context
func InfoCtx(ctx context.Context, msg string, args ...any) {
	if enabled(LevelInfo) {
		getLogger().Info(msg, appendContextFields(ctx, args)...)
	}
}

// WarnCtx logs at warn level with context
func WarnCtx(ctx context.Context, msg string, args ...any) {
	if enabled(LevelWarn) {
		getLogger().Warn(msg, appendContextFields(ctx, args)...)
	}
}

// ErrorCtx logs at error level with context
func ErrorCtx(ctx context.Context, msg string, args ...any) {
	getLogger().Error(msg, appendContextFields(ctx, args)...)
}

func appendContextFields(ctx context.Context, args []any) []any {
	lc := FromContext(ctx)
	if lc == nil {
		return args
	}

	out := make([]any, 0, 10+len(args))
	if lc.TraceID != "" {
		out = append(out, KeyTraceID, lc.TraceID)
	}
	if lc.SpanID != "" {
		out = append(out, KeySpanID, lc.SpanID)
	}
	if lc.Procedure != "" {
		out = append(out, KeyProcedure, lc.Procedure)
	}
	if lc.XID != 0 {
		out = append(out, KeyXID, fmt.Sprintf("0x%x", lc.XID))
	}
	if lc.ClientAddr != "" {
		out = append(out, KeyClient, lc.ClientAddr)
	}
	return append(out, args...)
}

// With returns a logger with pre-bound attributes. It is bound to the
// handler active at call time and does not follow later SetLevel/SetFormat.
func With(args ...any) *slog.Logger {
	return getLogger().With(args...)
}

// Duration returns the time since start in milliseconds.
func Duration(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
