package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"linearrag/internal/embedstore"
)

// TestAddPassageEntityWeightsSumToOne covers spec.md section 8:
// "Σ weight(p,e) ≤ 1+ε over a passage's entity neighbors."
func TestAddPassageEntityWeightsSumToOne(t *testing.T) {
	g := New()
	b := NewBuilder(g)
	passageHash := "passage-1"
	text := "aspirin reduces fever; aspirin is a common drug for fever and pain"
	entities := []string{"aspirin", "fever", "pain"}

	b.AddPassage(passageHash, text, entities)

	passageID, ok := g.NodeID(passageHash)
	assert.True(t, ok)
	_, weights := g.WeightedNeighbors(passageID)

	var sum float64
	for _, w := range weights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestAddPassageSkipsEntitiesNotPresentInText(t *testing.T) {
	g := New()
	b := NewBuilder(g)
	b.AddPassage("passage-1", "only aspirin appears here", []string{"aspirin", "ibuprofen"})

	entityHash := embedstore.HashFor("entity", "ibuprofen")
	_, ok := g.NodeID(entityHash)
	assert.False(t, ok)
}

func TestAddSequentialAdjacencyLinksConsecutivePassagesOnly(t *testing.T) {
	g := New()
	b := NewBuilder(g)
	refs := []PassageRef{
		{Hash: "p0", Text: "0: first"},
		{Hash: "p1", Text: "1: second"},
		{Hash: "p3", Text: "3: fourth"},
	}
	b.AddSequentialAdjacency(refs)

	id0, _ := g.NodeID("p0")
	id1, _ := g.NodeID("p1")
	id3, _ := g.NodeID("p3")

	neighbors0, _ := g.WeightedNeighbors(id0)
	assert.Contains(t, neighbors0, id1)

	neighbors1, _ := g.WeightedNeighbors(id1)
	assert.NotContains(t, neighbors1, id3)
}
