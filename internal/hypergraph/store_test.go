package hypergraph

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAddHyperedgesBuildsEntityAdjacency(t *testing.T) {
	s := NewStore(t.TempDir())
	he := NewHyperedge("fever and aspirin", []string{"fever", "aspirin"}, 0.8, nil)
	s.AddHyperedges([]Hyperedge{he})

	got, ok := s.Get(he.HashID)
	require.True(t, ok)
	assert.Equal(t, he, got)

	assert.Contains(t, s.HyperedgesForEntity("fever"), he.HashID)
	assert.Contains(t, s.HyperedgesForEntity("aspirin"), he.HashID)
}

func TestStoreGetUnknownIDIsMissNotError(t *testing.T) {
	s := NewStore(t.TempDir())
	_, ok := s.Get("does-not-exist")
	assert.False(t, ok)
}

func TestStoreFlushLoadRoundTrip(t *testing.T) {
	namespaceDir := t.TempDir()
	s := NewStore(namespaceDir)
	he := NewHyperedge("fever and aspirin", []string{"fever", "aspirin"}, 0.8, nil)
	s.AddHyperedges([]Hyperedge{he})
	s.SetPassageHyperedges("passage-1", []string{he.HashID})
	require.NoError(t, s.Flush())

	loaded, err := Load(namespaceDir)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())
	got, ok := loaded.Get(he.HashID)
	require.True(t, ok)
	assert.Equal(t, he, got)
	assert.Equal(t, []string{he.HashID}, loaded.HyperedgesForPassage("passage-1"))
}

func TestLoadMissingNamespaceStartsEmpty(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing-namespace"))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
}
