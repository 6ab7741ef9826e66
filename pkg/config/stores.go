package config

import (
	"context"
	"fmt"

	"github.com/marmos91/nfs4d/internal/logger"
	"github.com/marmos91/nfs4d/pkg/metadata"
	"github.com/marmos91/nfs4d/pkg/metadata/store/badger"
	"github.com/marmos91/nfs4d/pkg/metadata/store/instrumented"
	"github.com/marmos91/nfs4d/pkg/metadata/store/memory"
	"github.com/marmos91/nfs4d/pkg/metrics"
)

// CreateMetadataStore opens the backend selected by cfg and wraps it with
// metrics and tracing. m may be nil.
func CreateMetadataStore(ctx context.Context, cfg BackendConfig, m metrics.StoreMetrics) (metadata.MetadataStore, error) {
	var store metadata.MetadataStore

	switch cfg.Type {
	case "memory":
		store = memory.NewMemoryMetadataStoreWithDefaults()

	case "badger":
		s, err := badger.NewBadgerMetadataStore(ctx, badger.BadgerMetadataStoreConfig{
			DBPath:         cfg.Badger.Path,
			InMemory:       cfg.Badger.InMemory,
			BlockCacheSize: int64(cfg.Badger.BlockCacheSize),
			IndexCacheSize: int64(cfg.Badger.IndexCacheSize),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open badger store: %w", err)
		}
		store = s

	default:
		return nil, fmt.Errorf("unknown backend type: %q", cfg.Type)
	}

	logger.Info("Metadata store ready", logger.Backend(cfg.Type), logger.Path(cfg.Badger.Path))
	return instrumented.New(store, cfg.Type, m), nil
}
