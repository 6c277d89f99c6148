package hypergraph

import (
	"linearrag/internal/embedstore"
	"linearrag/internal/graph"
)

// hyperedgeEntityWeightFactor is merge_with_linear_graph's fixed
// discount applied to entity→hyperedge edges relative to
// passage→hyperedge edges.
const hyperedgeEntityWeightFactor = 0.8

// MergeIntoGraph adds hyperedge nodes into g and connects
// passage→hyperedge and entity→hyperedge edges, weighted by the
// hyperedge's score (entity edges at 0.8× that weight), mirroring
// hypergraph_store.py::merge_with_linear_graph. SPEC_FULL.md's
// supplemented feature 4: this is an explicit opt-in
// (Config.MergeHypergraph, passed to index.Pipeline) — the default query path keeps the
// hypergraph in its own Store and only uses it for reranking/context,
// per spec.md section 9's open question.
func (s *Store) MergeIntoGraph(g *graph.Graph) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for passageHash, heIDs := range s.passageToHyperedgeIDs {
		if _, ok := g.NodeID(passageHash); !ok {
			continue
		}
		for _, heID := range heIDs {
			he, ok := s.byID[heID]
			if !ok {
				continue
			}
			g.AddEdge(passageHash, "hyperedge-"+heID, he.Score)
		}
	}
	for entity, heIDs := range s.entityToHyperedgeIDs {
		entityNode := embedstore.HashFor("entity", entity)
		if _, ok := g.NodeID(entityNode); !ok {
			continue
		}
		for _, heID := range heIDs {
			he, ok := s.byID[heID]
			if !ok {
				continue
			}
			g.AddEdge(entityNode, "hyperedge-"+heID, he.Score*hyperedgeEntityWeightFactor)
		}
	}
}
