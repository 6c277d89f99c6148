// Package hypergraph builds and scores the co-occurrence hypergraph of
// spec.md section 4.4, ported line-for-line in structure from
// _examples/original_source/src/hypergraph/cooccurrence_hyperedge.py
// (CooccurrenceHyperedgeBuilder / MedicalHyperedgeEnhancer).
package hypergraph

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
)

// Hyperedge is an n-ary relation between co-occurring entities,
// mirroring the original Hyperedge dataclass.
type Hyperedge struct {
	HashID     string            `json:"hash_id"`
	Text       string            `json:"text"`
	Entities   []string          `json:"entities"`
	Score      float64           `json:"score"`
	EntityType map[string]string `json:"entity_types,omitempty"`
}

// hashID reproduces Hyperedge._generate_hash_id: md5("<text>|<sorted
// entities joined by |>")[:16].
func hashID(text string, entities []string) string {
	sorted := append([]string(nil), entities...)
	sort.Strings(sorted)
	sum := md5.Sum([]byte(text + "|" + strings.Join(sorted, "|")))
	return hex.EncodeToString(sum[:])[:16]
}

// NewHyperedge builds a Hyperedge with a derived hash id, matching the
// original's __post_init__.
func NewHyperedge(text string, entities []string, score float64, entityTypes map[string]string) Hyperedge {
	return Hyperedge{
		HashID:     hashID(text, entities),
		Text:       text,
		Entities:   entities,
		Score:      score,
		EntityType: entityTypes,
	}
}
