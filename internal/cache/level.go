// Package cache implements the multi-level cache manager of spec.md
// section 6 ("cache/ner_cache.*, cache/embedding_cache.*,
// cache/hypergraph_cache.*"), grounded on
// src/hypergraph/cache_manager.py's MultiLevelCache: three named
// levels (NER results, embedding vectors, hypergraph structures) each
// with its own hit/miss bookkeeping, backed by local disk by default
// or Redis when configured.
package cache

import "context"

// Stats mirrors CacheStats from cache_manager.py.
type Stats struct {
	Hits   int
	Misses int
	Size   int
}

// HitRate returns Hits/(Hits+Misses), or 0 when nothing has been
// requested yet.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Level is one cache tier: opaque byte values keyed by string,
// matching CacheLevel's abstract get/set/exists/clear contract.
type Level interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Exists(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
	Stats() Stats
}
