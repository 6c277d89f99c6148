package activation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linearrag/internal/embedstore"
)

// fakeEntityEmbedder returns a fixed vector per input text, looked up
// by exact match; unknown text embeds to a zero vector.
type fakeEntityEmbedder struct {
	vecs map[string][]float32
}

func (f *fakeEntityEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, ok := f.vecs[t]
		if !ok {
			v = []float32{0, 0}
		}
		out[i] = v
	}
	return out, nil
}

func TestSeedSelectorPicksMaxCosine(t *testing.T) {
	store := newFakeSentenceStore()
	store.rows = []embedstore.Row{
		{Text: "aspirin", Hash: embedstore.HashFor("entity", "aspirin"), Vec: unitVec(1, 0)},
		{Text: "ibuprofen", Hash: embedstore.HashFor("entity", "ibuprofen"), Vec: unitVec(0, 1)},
	}

	embedder := &fakeEntityEmbedder{vecs: map[string][]float32{
		"pain reliever": unitVec(1, 0),
	}}

	selector := NewSeedSelector(store, embedder)
	seeds, err := selector.Select(context.Background(), []string{"pain reliever"})
	require.NoError(t, err)
	require.Len(t, seeds, 1)
	assert.Equal(t, "aspirin", seeds[0].EntityText)
	assert.InDelta(t, 1.0, seeds[0].Score, 1e-9)
}

func TestSeedSelectorNoEntitiesSignalsNoSeeds(t *testing.T) {
	store := newFakeSentenceStore()
	store.rows = []embedstore.Row{{Text: "aspirin", Hash: "h", Vec: unitVec(1, 0)}}
	selector := NewSeedSelector(store, &fakeEntityEmbedder{})

	seeds, err := selector.Select(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, seeds)
}

func TestSeedSelectorEmptyStoreSignalsNoSeeds(t *testing.T) {
	store := newFakeSentenceStore()
	selector := NewSeedSelector(store, &fakeEntityEmbedder{})

	seeds, err := selector.Select(context.Background(), []string{"aspirin"})
	require.NoError(t, err)
	assert.Nil(t, seeds)
}
