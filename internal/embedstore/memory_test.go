package embedstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder returns a deterministic unit-ish vector per text and can
// be told to OOM on batches above a given size, to exercise the halving
// fallback in encodeBatched without a real model. calls records every
// batch that encoded successfully.
type fakeEmbedder struct {
	oomAboveBatch int
	oomAlways     map[string]bool
	calls         [][]string
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.oomAboveBatch > 0 && len(texts) > f.oomAboveBatch {
		return nil, ErrOOM
	}
	for _, t := range texts {
		if f.oomAlways[t] {
			return nil, ErrOOM
		}
	}
	f.calls = append(f.calls, append([]string(nil), texts...))
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1}
	}
	return out, nil
}

func TestHashForIsNamespacedAndStable(t *testing.T) {
	h1 := HashFor("passage", "hello")
	h2 := HashFor("passage", "hello")
	h3 := HashFor("sentence", "hello")
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Contains(t, h1, "passage-")
}

func TestMemCoreDedupeAndAppend(t *testing.T) {
	c := newMemCore("passage")
	fresh := c.dedupe([]string{"a", "b", "a"})
	assert.Equal(t, []string{"a", "b"}, fresh)

	hashes := c.append([]string{"a", "b"}, [][]float32{{1}, {2}})
	assert.Len(t, hashes, 2)
	assert.Equal(t, 2, c.Len())

	fresh2 := c.dedupe([]string{"a", "c"})
	assert.Equal(t, []string{"c"}, fresh2)
}

func TestEncodeBatchedHalvesOnOOM(t *testing.T) {
	emb := &fakeEmbedder{oomAlways: map[string]bool{"bad": true}}
	texts := []string{"good1", "bad", "good2", "good3"}
	okTexts, vecs, failed, err := encodeBatched(context.Background(), emb, texts, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"bad"}, failed)
	assert.ElementsMatch(t, []string{"good1", "good2", "good3"}, okTexts)
	assert.Len(t, vecs, len(okTexts))
}

func TestEncodeBatchedSplitsOversizeBatches(t *testing.T) {
	emb := &fakeEmbedder{oomAboveBatch: 2}
	texts := []string{"a", "b", "c", "d", "e"}
	okTexts, vecs, failed, err := encodeBatched(context.Background(), emb, texts, 5)
	require.NoError(t, err)
	assert.Empty(t, failed)
	assert.Equal(t, texts, okTexts)
	assert.Len(t, vecs, 5)
	for _, call := range emb.calls {
		assert.LessOrEqual(t, len(call), 2)
	}
}

func TestEncodeBatchedFatalErrorAborts(t *testing.T) {
	emb := &fakeEmbedder{}
	texts := []string{"x"}
	// Wrap a non-OOM error by using an embedder that always fails.
	failing := failingEmbedder{}
	_, _, _, err := encodeBatched(context.Background(), failing, texts, 1)
	require.Error(t, err)
	_ = emb
}

type failingEmbedder struct{}

func (failingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, assertError{}
}

type assertError struct{}

func (assertError) Error() string { return "boom" }
