// Package embedstore implements the persisted hash→(text, vector) map
// described in spec.md section 4.1. A Store holds exactly one
// namespace's rows ("passage", "sentence", or "entity" in the
// default pipeline); callers construct one Store per namespace.
package embedstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Embedder is the black-box sentence-embedding collaborator (spec.md
// section 1, "out of scope"). It must return unit-norm vectors.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Row is one stored (text, hash, vector) tuple.
type Row struct {
	Text string
	Hash string
	Vec  []float32
}

// Store is the embedding-store contract shared by every backend
// (Parquet file, Postgres+pgvector, Qdrant). Namespace() identifies
// which of the three stores (passage/sentence/entity) this is, and is
// the salt for HashFor.
type Store interface {
	// Namespace returns the configured namespace, e.g. "passage".
	Namespace() string
	// InsertTexts deduplicates against already-stored text, embeds the
	// remainder in batches (halving on OOM, per spec.md 4.1/5/7), and
	// persists the result. Returns the hashes of the newly inserted
	// texts, in input order (duplicates omitted).
	InsertTexts(ctx context.Context, texts []string) ([]string, error)
	// HashFor computes the namespaced hash for a text without requiring
	// it to be stored.
	HashFor(text string) string
	// TextByHash looks up stored text by hash.
	TextByHash(hash string) (string, bool)
	// HashByText looks up the hash of already-stored text.
	HashByText(text string) (string, bool)
	// VectorByHash looks up the stored unit-norm vector by hash.
	VectorByHash(hash string) ([]float32, bool)
	// All returns every stored row, in insertion order. Callers must
	// not mutate the returned slice's vectors.
	All() []Row
	// Len reports the number of stored rows.
	Len() int
}

// HashFor implements spec.md section 4.1's
// `hash_for(text) = "<namespace>-" + sha256("<namespace>-" + text)`.
func HashFor(namespace, text string) string {
	sum := sha256.Sum256([]byte(namespace + "-" + text))
	return namespace + "-" + hex.EncodeToString(sum[:])
}

// validateNamespace guards against empty namespaces, which would make
// every text in every store collide under the same hash prefix.
func validateNamespace(ns string) error {
	if strings.TrimSpace(ns) == "" {
		return fmt.Errorf("embedstore: namespace must not be empty")
	}
	return nil
}
