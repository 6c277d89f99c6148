package qa

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"linearrag/internal/embedstore"
	"linearrag/internal/llm"
	"linearrag/internal/ner"
	"linearrag/internal/retrieval"
)

type fakeRow = embedstore.Row

type fakeStore struct {
	ns   string
	rows []fakeRow
}

func newFakeStore(ns string, rows ...fakeRow) *fakeStore { return &fakeStore{ns: ns, rows: rows} }

func (f *fakeStore) Namespace() string { return f.ns }
func (f *fakeStore) InsertTexts(ctx context.Context, texts []string) ([]string, error) {
	return nil, nil
}
func (f *fakeStore) HashFor(text string) string { return text }
func (f *fakeStore) TextByHash(hash string) (string, bool) {
	for _, r := range f.rows {
		if r.Hash == hash {
			return r.Text, true
		}
	}
	return "", false
}
func (f *fakeStore) HashByText(text string) (string, bool) {
	for _, r := range f.rows {
		if r.Text == text {
			return r.Hash, true
		}
	}
	return "", false
}
func (f *fakeStore) VectorByHash(hash string) ([]float32, bool) {
	for _, r := range f.rows {
		if r.Hash == hash {
			return r.Vec, true
		}
	}
	return nil, false
}
func (f *fakeStore) All() []embedstore.Row { return f.rows }
func (f *fakeStore) Len() int              { return len(f.rows) }

type fakeEmbedder struct{ vec []float32 }

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vec
	}
	return out, nil
}

type fakeAnswerer struct{ reply string }

func (f *fakeAnswerer) Answer(ctx context.Context, systemPrompt, question string) (string, error) {
	return f.reply, nil
}

func TestOrchestratorPreservesInputOrder(t *testing.T) {
	passages := newFakeStore("passage",
		embedstore.Row{Hash: "p1", Text: "1: aspirin reduces fever", Vec: []float32{1, 0}},
	)
	r := &retrieval.Retriever{
		Passages:  passages,
		Entities:  newFakeStore("entity"),
		Sentences: newFakeStore("sentence"),
		Embedder:  &fakeEmbedder{vec: []float32{1, 0}},
		NER:       ner.NewSimpleAdapter(nil),
		Config:    retrieval.Config{CandidatePoolSize: 10, RetrievalTopK: 1},
	}

	o := NewOrchestrator(r, &fakeAnswerer{reply: "The answer is A."}, 4)

	questions := make([]Question, 20)
	for i := range questions {
		questions[i] = Question{
			ID:          fmt.Sprintf("q%d", i),
			Text:        "does aspirin reduce fever?",
			Dataset:     "medqa",
			DatasetKind: llm.MCQ,
			GoldAnswer:  "A",
		}
	}

	answers, err := o.Run(context.Background(), questions)
	require.NoError(t, err)
	require.Len(t, answers, 20)
	for i, a := range answers {
		require.Equal(t, fmt.Sprintf("q%d", i), a.QuestionID)
		require.Equal(t, "A", a.PredAnswer)
	}
}
