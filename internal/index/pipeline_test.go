package index

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linearrag/internal/embedstore"
	"linearrag/internal/graph"
	"linearrag/internal/hypergraph"
	"linearrag/internal/ner"
	"linearrag/internal/obs"
)

type stubEmbedder struct{}

func (stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)%7) + 1, 1}
	}
	return out, nil
}

func mustStore(t *testing.T, dir, namespace, file string) embedstore.Store {
	t.Helper()
	s, err := embedstore.NewParquetStore(filepath.Join(dir, file), namespace, 8, stubEmbedder{}, nil)
	require.NoError(t, err)
	return s
}

func TestPipelineRunReachesReady(t *testing.T) {
	dir := t.TempDir()
	passages := mustStore(t, dir, "passage", "passage.parquet")
	sentences := mustStore(t, dir, "sentence", "sentence.parquet")
	entities := mustStore(t, dir, "entity", "entity.parquet")

	adapter := ner.NewSimpleAdapter([]string{"aspirin", "fever", "headache"})
	nerCache, err := ner.NewCache(dir, nil)
	require.NoError(t, err)

	g := graph.New()
	hg := hypergraph.NewStore(dir)

	manifest, err := Open(dir)
	require.NoError(t, err)

	pipeline := NewPipeline(passages, sentences, entities, adapter, nerCache, g, hg, manifest,
		Config{MinEntitiesPerHyperedge: 1, MaxEntitiesPerHyperedge: 10, MaxHyperedgeScoreBoost: 1.5},
		obs.NopLogger{}, "test-namespace", nil)

	passageTexts := []string{
		"1: Aspirin is commonly used to treat fever and headache in adult patients.",
		"2: Persistent fever accompanied by headache may indicate an underlying infection.",
	}

	ctx := context.Background()
	require.NoError(t, pipeline.Run(ctx, passageTexts))

	assert.Equal(t, Ready, manifest.State())
	assert.Equal(t, 2, passages.Len())
	assert.Greater(t, entities.Len(), 0)
	assert.Greater(t, g.NumNodes(), 0)

	// Re-running with the same texts should be a no-op (idempotent).
	require.NoError(t, pipeline.Run(ctx, passageTexts))
	assert.Equal(t, 2, passages.Len())
}
