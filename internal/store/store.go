package store

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"linearrag/internal/config"
	"linearrag/internal/objectstore"
)

// Open selects an objectstore.ObjectStore backend from cfg, defaulting
// to local disk (spec.md section 6's persisted namespace tree) unless
// "s3" is configured.
func Open(ctx context.Context, cfg config.ObjectStoreConfig, localDir string) (objectstore.ObjectStore, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalFSStore(localDir)
	case "s3":
		return objectstore.NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("store: unknown backend %q", cfg.Backend)
	}
}

// Mirror copies every object under prefix from src to dst, used to
// push a locally-built namespace tree up to S3 once indexing completes
// (spec.md section 6's "optionally mirrored to S3").
func Mirror(ctx context.Context, src, dst objectstore.ObjectStore, prefix string) error {
	listing, err := src.List(ctx, objectstore.ListOptions{Prefix: prefix})
	if err != nil {
		return fmt.Errorf("store: list %s: %w", prefix, err)
	}
	for _, obj := range listing.Objects {
		if err := copyOne(ctx, src, dst, obj.Key); err != nil {
			return fmt.Errorf("store: mirror %s: %w", obj.Key, err)
		}
	}
	return nil
}

func copyOne(ctx context.Context, src, dst objectstore.ObjectStore, key string) error {
	r, attrs, err := src.Get(ctx, key)
	if err != nil {
		return err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	_, err = dst.Put(ctx, key, bytes.NewReader(data), objectstore.PutOptions{ContentType: attrs.ContentType})
	return err
}
