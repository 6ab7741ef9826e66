// Package instrumented decorates a metadata.MetadataStore with metrics and
// tracing. Every call is timed into metrics.StoreMetrics and, when tracing
// is on, recorded as a "store.<Method>" span.
package instrumented

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/marmos91/nfs4d/internal/telemetry"
	"github.com/marmos91/nfs4d/pkg/metadata"
	"github.com/marmos91/nfs4d/pkg/metrics"
)

// Store wraps another MetadataStore.
type Store struct {
	inner   metadata.MetadataStore
	backend string
	metrics metrics.StoreMetrics
}

// New wraps inner. backend labels metrics and spans ("memory", "badger").
// m may be nil.
func New(inner metadata.MetadataStore, backend string, m metrics.StoreMetrics) *Store {
	return &Store{inner: inner, backend: backend, metrics: m}
}

// Unwrap returns the decorated store.
func (s *Store) Unwrap() metadata.MetadataStore {
	return s.inner
}

func (s *Store) begin(ctx context.Context, op, path string) (context.Context, trace.Span, time.Time) {
	ctx, span := telemetry.StartSpan(ctx, "store."+op)
	span.SetAttributes(telemetry.StoreBackend(s.backend))
	if path != "" {
		span.SetAttributes(telemetry.StorePath(path))
	}
	return ctx, span, time.Now()
}

func (s *Store) end(ctx context.Context, span trace.Span, op string, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.RecordStoreOperation(s.backend, op, time.Since(start), err)
	}
	telemetry.RecordError(ctx, err)
	span.End()
}

func (s *Store) RootHandle(ctx context.Context) (h metadata.FileHandle, err error) {
	ctx, span, start := s.begin(ctx, "RootHandle", "")
	defer func() { s.end(ctx, span, "RootHandle", start, err) }()
	return s.inner.RootHandle(ctx)
}

func (s *Store) GetAttr(ctx context.Context, path string) (attr *metadata.FileAttr, err error) {
	ctx, span, start := s.begin(ctx, "GetAttr", path)
	defer func() { s.end(ctx, span, "GetAttr", start, err) }()
	return s.inner.GetAttr(ctx, path)
}

func (s *Store) CreateFile(ctx context.Context, path string, size uint64) (err error) {
	ctx, span, start := s.begin(ctx, "CreateFile", path)
	defer func() { s.end(ctx, span, "CreateFile", start, err) }()
	return s.inner.CreateFile(ctx, path, size)
}

func (s *Store) ModifyFile(ctx context.Context, path string, size uint64) (err error) {
	ctx, span, start := s.begin(ctx, "ModifyFile", path)
	defer func() { s.end(ctx, span, "ModifyFile", start, err) }()
	return s.inner.ModifyFile(ctx, path, size)
}

func (s *Store) CreateDir(ctx context.Context, path string) (err error) {
	ctx, span, start := s.begin(ctx, "CreateDir", path)
	defer func() { s.end(ctx, span, "CreateDir", start, err) }()
	return s.inner.CreateDir(ctx, path)
}

func (s *Store) Remove(ctx context.Context, path string) (err error) {
	ctx, span, start := s.begin(ctx, "Remove", path)
	defer func() { s.end(ctx, span, "Remove", start, err) }()
	return s.inner.Remove(ctx, path)
}

func (s *Store) List(ctx context.Context) (files []metadata.File, err error) {
	ctx, span, start := s.begin(ctx, "List", "")
	defer func() { s.end(ctx, span, "List", start, err) }()
	return s.inner.List(ctx)
}

// Stats also refreshes the entries gauge.
func (s *Store) Stats(ctx context.Context) (stats *metadata.StoreStats, err error) {
	ctx, span, start := s.begin(ctx, "Stats", "")
	defer func() { s.end(ctx, span, "Stats", start, err) }()

	stats, err = s.inner.Stats(ctx)
	if err == nil && s.metrics != nil {
		s.metrics.SetEntries(s.backend, stats.Entries)
	}
	return stats, err
}

func (s *Store) Healthcheck(ctx context.Context) (err error) {
	ctx, span, start := s.begin(ctx, "Healthcheck", "")
	defer func() { s.end(ctx, span, "Healthcheck", start, err) }()
	return s.inner.Healthcheck(ctx)
}

func (s *Store) Close() error {
	return s.inner.Close()
}

var _ metadata.MetadataStore = (*Store)(nil)
