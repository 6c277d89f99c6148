// Package activation implements spec.md section 4.5 (Seed Selector)
// and section 4.6 (Activation Engine): the sentence-mediated
// spreading-activation walk that turns a question's extracted entities
// into a set of reset weights for PPR scoring.
package activation

import (
	"context"
	"fmt"

	"linearrag/internal/embedstore"
	"linearrag/internal/vecmath"
)

// Seed is one question-entity resolved to its nearest stored entity
// (spec.md section 4.5).
type Seed struct {
	EntityText string // lowercased stored entity text
	EntityHash string // namespaced hash, embedstore.HashFor("entity", EntityText)
	Score      float64
}

// SeedSelector maps question-mentioned entities to the nearest stored
// entities by embedding cosine similarity.
type SeedSelector struct {
	Entities embedstore.Store
	Embedder embedstore.Embedder
}

// NewSeedSelector wraps the entity embedding store and the shared
// sentence-embedding collaborator (spec.md section 1's "out of scope"
// model).
func NewSeedSelector(entities embedstore.Store, embedder embedstore.Embedder) *SeedSelector {
	return &SeedSelector{Entities: entities, Embedder: embedder}
}

// Select implements spec.md section 4.5: encode each question entity,
// pick the stored entity of maximum cosine similarity (ties broken by
// first-seen index among stored rows), and return one Seed per
// question entity that has at least one stored entity to compare
// against. An empty questionEntities, or an empty entity store,
// signals "no seeds" by returning a nil slice — callers must fall back
// to dense-only retrieval per spec.md section 4.9 step 3.
func (s *SeedSelector) Select(ctx context.Context, questionEntities []string) ([]Seed, error) {
	if len(questionEntities) == 0 {
		return nil, nil
	}
	rows := s.Entities.All()
	if len(rows) == 0 {
		return nil, nil
	}

	vecs, err := s.Embedder.EmbedBatch(ctx, questionEntities)
	if err != nil {
		return nil, fmt.Errorf("activation: embed question entities: %w", err)
	}

	seeds := make([]Seed, 0, len(questionEntities))
	for i, entityVec := range vecs {
		if entityVec == nil {
			continue
		}
		bestIdx := -1
		bestScore := -2.0 // below any valid cosine value
		for idx, row := range rows {
			sim := vecmath.Cosine(entityVec, row.Vec)
			if sim > bestScore {
				bestScore = sim
				bestIdx = idx
			}
		}
		if bestIdx < 0 {
			continue
		}
		best := rows[bestIdx]
		seeds = append(seeds, Seed{
			EntityText: best.Text,
			EntityHash: best.Hash,
			Score:      bestScore,
		})
	}
	if len(seeds) == 0 {
		return nil, nil
	}
	return seeds, nil
}
