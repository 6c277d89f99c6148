package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linearrag/internal/embedstore"
	"linearrag/internal/ner"
)

// fakeQuestionEmbedder always returns the same fixed vector, regardless
// of input text, so retrieval tests can control similarity precisely.
type fakeQuestionEmbedder struct {
	vec []float32
}

func (f *fakeQuestionEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vec
	}
	return out, nil
}

func TestRetrieveFallsBackToDenseRankingWithoutSeeds(t *testing.T) {
	passages := newFakeStore("passage",
		embedstore.Row{Hash: "p1", Text: "1: aspirin reduces fever", Vec: []float32{1, 0}},
		embedstore.Row{Hash: "p2", Text: "2: unrelated content here", Vec: []float32{0, 1}},
	)
	entities := newFakeStore("entity") // empty: guarantees "no seeds"
	sentences := newFakeStore("sentence")

	r := &Retriever{
		Passages:  passages,
		Entities:  entities,
		Sentences: sentences,
		Embedder:  &fakeQuestionEmbedder{vec: []float32{1, 0}},
		NER:       ner.NewSimpleAdapter(nil),
		Config: Config{
			CandidatePoolSize: 10,
			RetrievalTopK:     2,
		},
	}

	result, err := r.Retrieve(context.Background(), "does aspirin reduce fever?")
	require.NoError(t, err)
	assert.False(t, result.HasEntities)
	require.Len(t, result.SortedPassages, 2)
	assert.Equal(t, "1: aspirin reduces fever", result.SortedPassages[0])
}
