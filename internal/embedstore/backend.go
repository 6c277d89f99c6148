package embedstore

import (
	"context"
	"fmt"
	"path/filepath"

	"linearrag/internal/config"
)

// Open constructs the Store for namespace according to cfg.EmbedStore,
// matching the teacher's internal/persistence/databases/factory.go
// backend-selection switch but narrowed to this package's three
// embedding-store backends instead of a generic database Manager.
func Open(ctx context.Context, cfg config.Config, embedStoreCfg config.EmbedStoreConfig, namespace string, embedder Embedder, log func(string, map[string]any)) (Store, error) {
	switch embedStoreCfg.Backend {
	case "", "parquet":
		path := filepath.Join(cfg.Namespace(), namespace+"_embedding.parquet")
		return NewParquetStore(path, namespace, cfg.BatchSize, embedder, log)
	case "postgres":
		if embedStoreCfg.PostgresDSN == "" {
			return nil, fmt.Errorf("embedstore: postgres backend requires postgres_dsn")
		}
		return NewPostgresStore(ctx, embedStoreCfg.PostgresDSN, namespace, embedStoreCfg.Dimensions, cfg.BatchSize, embedder)
	case "qdrant":
		if embedStoreCfg.QdrantDSN == "" {
			return nil, fmt.Errorf("embedstore: qdrant backend requires qdrant_dsn")
		}
		return NewQdrantStore(ctx, embedStoreCfg.QdrantDSN, namespace, embedStoreCfg.Dimensions, cfg.BatchSize, embedder)
	default:
		return nil, fmt.Errorf("embedstore: unknown backend %q", embedStoreCfg.Backend)
	}
}
