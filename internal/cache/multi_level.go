package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"linearrag/internal/config"
)

// MultiLevelCache wires the three named tiers of cache_manager.py's
// MultiLevelCache: NER results keyed by document hash, embedding
// vectors keyed by text hash, and hypergraph structures keyed by
// hyperedge hash.
type MultiLevelCache struct {
	NER        Level
	Embedding  Level
	Hypergraph Level
}

// Open builds a MultiLevelCache under cacheDir, using disk levels by
// default or Redis when cfg.Backend == "redis".
func Open(ctx context.Context, cfg config.CacheConfig, cacheDir string) (*MultiLevelCache, error) {
	switch cfg.Backend {
	case "", "disk":
		return &MultiLevelCache{
			NER:        NewDiskLevel(filepath.Join(cacheDir, "ner_cache.bin")),
			Embedding:  NewDiskLevel(filepath.Join(cacheDir, "embedding_cache.bin")),
			Hypergraph: NewDiskLevel(filepath.Join(cacheDir, "hypergraph_cache.bin")),
		}, nil
	case "redis":
		ner, err := NewRedisLevel(ctx, cfg.RedisDSN, "ner")
		if err != nil {
			return nil, err
		}
		emb, err := NewRedisLevel(ctx, cfg.RedisDSN, "embedding")
		if err != nil {
			return nil, err
		}
		hg, err := NewRedisLevel(ctx, cfg.RedisDSN, "hypergraph")
		if err != nil {
			return nil, err
		}
		return &MultiLevelCache{NER: ner, Embedding: emb, Hypergraph: hg}, nil
	default:
		return nil, fmt.Errorf("cache: unknown backend %q", cfg.Backend)
	}
}

// GetNER fetches and JSON-decodes cached entities/sentence mappings
// for docHash, matching NERCache.get's {passage_entities,
// sentence_to_entities} payload shape.
func (c *MultiLevelCache) GetNER(ctx context.Context, docHash string, out any) (bool, error) {
	return getJSON(ctx, c.NER, docHash, out)
}

// SetNER JSON-encodes and stores value under docHash.
func (c *MultiLevelCache) SetNER(ctx context.Context, docHash string, value any) error {
	return setJSON(ctx, c.NER, docHash, value)
}

// GetEmbedding fetches a cached vector for textHash.
func (c *MultiLevelCache) GetEmbedding(ctx context.Context, textHash string) ([]float32, bool, error) {
	var vec []float32
	ok, err := getJSON(ctx, c.Embedding, textHash, &vec)
	return vec, ok, err
}

// SetEmbedding stores vec under textHash.
func (c *MultiLevelCache) SetEmbedding(ctx context.Context, textHash string, vec []float32) error {
	return setJSON(ctx, c.Embedding, textHash, vec)
}

// GetHyperedge fetches cached hyperedge data by its hash.
func (c *MultiLevelCache) GetHyperedge(ctx context.Context, hyperedgeHash string, out any) (bool, error) {
	return getJSON(ctx, c.Hypergraph, hyperedgeHash, out)
}

// SetHyperedge stores hyperedge data by its hash.
func (c *MultiLevelCache) SetHyperedge(ctx context.Context, hyperedgeHash string, value any) error {
	return setJSON(ctx, c.Hypergraph, hyperedgeHash, value)
}

// SaveAll flushes every disk-backed level, a no-op for Redis levels
// which persist on every Set.
func (c *MultiLevelCache) SaveAll() error {
	for _, lvl := range []Level{c.NER, c.Embedding, c.Hypergraph} {
		if d, ok := lvl.(*DiskLevel); ok {
			if err := d.Save(); err != nil {
				return err
			}
		}
	}
	return nil
}

func getJSON(ctx context.Context, lvl Level, key string, out any) (bool, error) {
	raw, ok, err := lvl.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return true, nil
}

func setJSON(ctx context.Context, lvl Level, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	return lvl.Set(ctx, key, raw)
}
