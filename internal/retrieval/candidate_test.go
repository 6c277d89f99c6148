package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"linearrag/internal/activation"
	"linearrag/internal/embedstore"
)

// fakeStore is a minimal embedstore.Store double for pre-seeded rows.
type fakeStore struct {
	ns   string
	rows []embedstore.Row
}

func newFakeStore(ns string, rows ...embedstore.Row) *fakeStore {
	return &fakeStore{ns: ns, rows: rows}
}

func (s *fakeStore) Namespace() string { return s.ns }

func (s *fakeStore) InsertTexts(ctx context.Context, texts []string) ([]string, error) {
	return nil, nil
}

func (s *fakeStore) HashFor(text string) string { return embedstore.HashFor(s.ns, text) }

func (s *fakeStore) TextByHash(hash string) (string, bool) {
	for _, r := range s.rows {
		if r.Hash == hash {
			return r.Text, true
		}
	}
	return "", false
}

func (s *fakeStore) HashByText(text string) (string, bool) {
	h := s.HashFor(text)
	for _, r := range s.rows {
		if r.Hash == h {
			return h, true
		}
	}
	return "", false
}

func (s *fakeStore) VectorByHash(hash string) ([]float32, bool) {
	for _, r := range s.rows {
		if r.Hash == hash {
			return r.Vec, true
		}
	}
	return nil, false
}

func (s *fakeStore) All() []embedstore.Row { return s.rows }
func (s *fakeStore) Len() int              { return len(s.rows) }

func TestPreFilterRanksByDotProduct(t *testing.T) {
	passages := newFakeStore("passage",
		embedstore.Row{Hash: "p1", Text: "aspirin reduces fever", Vec: []float32{1, 0}},
		embedstore.Row{Hash: "p2", Text: "unrelated text", Vec: []float32{0, 1}},
	)
	candidates := preFilter([]float32{1, 0}, passages, 10)
	assert.Len(t, candidates, 2)
	assert.Equal(t, "p1", candidates[0].hash)
	assert.InDelta(t, 1.0, candidates[0].dense, 1e-9)
}

func TestScorePassagesAppliesBonusForActivatedEntities(t *testing.T) {
	candidates := []candidate{
		{hash: "p1", text: "aspirin aspirin reduces fever", dense: 1.0},
		{hash: "p2", text: "unrelated passage text", dense: 0.0},
	}
	activated := activation.Result{
		ActiveStates: map[string]activation.Active{
			"aspirin": {Score: 1.0, Tier: 1},
		},
	}
	weights := scorePassages(candidates, activated, 0.7, 1.0)
	assert.Greater(t, weights["p1"], weights["p2"])
}
