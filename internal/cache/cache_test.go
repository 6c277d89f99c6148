package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskLevelSetGetExistsRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ner_cache.bin")
	d := NewDiskLevel(path)

	ok, err := d.Exists(ctx, "doc1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, d.Set(ctx, "doc1", []byte("payload")))

	val, ok, err := d.Get(ctx, "doc1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "payload", string(val))
	assert.Equal(t, 1, d.Stats().Size)
}

func TestDiskLevelSavePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "embedding_cache.bin")

	d1 := NewDiskLevel(path)
	require.NoError(t, d1.Set(ctx, "h1", []byte("vec")))
	require.NoError(t, d1.Save())

	d2 := NewDiskLevel(path)
	val, ok, err := d2.Get(ctx, "h1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "vec", string(val))
}

func TestMultiLevelCacheJSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	mlc := &MultiLevelCache{
		NER:        NewDiskLevel(filepath.Join(dir, "ner_cache.bin")),
		Embedding:  NewDiskLevel(filepath.Join(dir, "embedding_cache.bin")),
		Hypergraph: NewDiskLevel(filepath.Join(dir, "hypergraph_cache.bin")),
	}

	require.NoError(t, mlc.SetEmbedding(ctx, "texthash", []float32{0.1, 0.2, 0.3}))
	vec, ok, err := mlc.GetEmbedding(ctx, "texthash")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)

	type nerPayload struct {
		Entities []string `json:"entities"`
	}
	require.NoError(t, mlc.SetNER(ctx, "dochash", nerPayload{Entities: []string{"aspirin"}}))
	var out nerPayload
	ok, err = mlc.GetNER(ctx, "dochash", &out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"aspirin"}, out.Entities)
}

func TestStatsHitRate(t *testing.T) {
	s := Stats{Hits: 3, Misses: 1}
	assert.InDelta(t, 0.75, s.HitRate(), 1e-9)
	assert.Equal(t, float64(0), Stats{}.HitRate())
}
