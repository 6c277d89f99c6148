package activation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linearrag/internal/embedstore"
)

func unitVec(x, y float32) []float32 {
	return []float32{x, y}
}

// fakeSentenceStore is a minimal embedstore.Store double holding
// pre-seeded sentence vectors, for tests that only need VectorByHash
// and HashFor.
type fakeSentenceStore struct {
	rows []embedstore.Row
}

func newFakeSentenceStore() *fakeSentenceStore {
	return &fakeSentenceStore{}
}

func (s *fakeSentenceStore) seed(text string, vec []float32) {
	s.rows = append(s.rows, embedstore.Row{Text: text, Hash: embedstore.HashFor("sentence", text), Vec: vec})
}

func (s *fakeSentenceStore) Namespace() string { return "sentence" }

func (s *fakeSentenceStore) InsertTexts(ctx context.Context, texts []string) ([]string, error) {
	return nil, nil
}

func (s *fakeSentenceStore) HashFor(text string) string {
	return embedstore.HashFor("sentence", text)
}

func (s *fakeSentenceStore) TextByHash(hash string) (string, bool) {
	for _, r := range s.rows {
		if r.Hash == hash {
			return r.Text, true
		}
	}
	return "", false
}

func (s *fakeSentenceStore) HashByText(text string) (string, bool) {
	h := s.HashFor(text)
	for _, r := range s.rows {
		if r.Hash == h {
			return h, true
		}
	}
	return "", false
}

func (s *fakeSentenceStore) VectorByHash(hash string) ([]float32, bool) {
	for _, r := range s.rows {
		if r.Hash == hash {
			return r.Vec, true
		}
	}
	return nil, false
}

func (s *fakeSentenceStore) All() []embedstore.Row { return s.rows }

func (s *fakeSentenceStore) Len() int { return len(s.rows) }

func TestInvertSentenceToEntities(t *testing.T) {
	in := map[string][]string{
		"sentence one": {"aspirin", "fever"},
		"sentence two": {"aspirin"},
	}
	out := InvertSentenceToEntities(in)
	assert.ElementsMatch(t, []string{"sentence one"}, out["fever"])
	assert.ElementsMatch(t, []string{"sentence one", "sentence two"}, out["aspirin"])
}

func TestEngineRunPropagatesThroughSentences(t *testing.T) {
	ctx := context.Background()

	sentenceStore := newFakeSentenceStore()
	// "fever causes headache" mentions both aspirin and headache.
	sentenceStore.seed("fever causes headache", unitVec(1, 0))

	entityToSentences := map[string][]string{
		"aspirin":  {"fever causes headache"},
		"headache": {"fever causes headache"},
	}

	engine := NewEngine(sentenceStore, entityToSentences)
	seeds := []Seed{{EntityText: "aspirin", EntityHash: embedstore.HashFor("entity", "aspirin"), Score: 0.9}}

	result, err := engine.Run(ctx, unitVec(1, 0), seeds)
	require.NoError(t, err)

	// The seed keeps its own 0.9 and, being an entity of the selected
	// sentence itself, also receives the propagated 0.9 * 1.0.
	seedHash := embedstore.HashFor("entity", "aspirin")
	assert.InDelta(t, 1.8, result.EntityWeights[seedHash], 1e-9)

	headacheHash := embedstore.HashFor("entity", "headache")
	if w, ok := result.EntityWeights[headacheHash]; ok {
		assert.Greater(t, w, 0.0)
		_, activated := result.ActivatedEntities["headache"]
		assert.True(t, activated)
	}
}

func TestEngineRunWithNoSeedsReturnsEmpty(t *testing.T) {
	engine := NewEngine(newFakeSentenceStore(), nil)
	result, err := engine.Run(context.Background(), unitVec(1, 0), nil)
	require.NoError(t, err)
	assert.Empty(t, result.EntityWeights)
	assert.Empty(t, result.ActivatedEntities)
}
