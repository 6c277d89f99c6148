package graph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTriangleGraph() *Graph {
	g := New()
	g.EnsurePassageNode("passage-a")
	g.EnsurePassageNode("passage-b")
	g.EnsurePassageNode("passage-c")
	g.AddEdge("passage-a", "passage-b", 1.0)
	g.AddEdge("passage-b", "passage-c", 1.0)
	g.AddEdge("passage-a", "passage-c", 1.0)
	return g
}

func TestPPRAllZeroResetReturnsAllZeroScores(t *testing.T) {
	g := buildTriangleGraph()
	hashes, scores := g.PPR(map[string]float64{}, 0.85)
	require.Len(t, hashes, 3)
	require.Len(t, scores, 3)
	for _, s := range scores {
		assert.Equal(t, 0.0, s)
	}
}

func TestPPRAllZeroResetEvenWithNegativeAndNaNEntries(t *testing.T) {
	g := buildTriangleGraph()
	_, scores := g.PPR(map[string]float64{"passage-a": 0, "passage-b": -1, "passage-c": math.NaN()}, 0.85)
	for _, s := range scores {
		assert.Equal(t, 0.0, s)
	}
}

func TestPPRSingleSeedGetsMaxMass(t *testing.T) {
	g := buildTriangleGraph()
	hashes, scores := g.PPR(map[string]float64{"passage-a": 1}, 0.85)

	maxIdx := 0
	for i, s := range scores {
		if s > scores[maxIdx] {
			maxIdx = i
		}
	}
	assert.Equal(t, "passage-a", hashes[maxIdx])

	var total float64
	for _, s := range scores {
		assert.GreaterOrEqual(t, s, 0.0)
		total += s
	}
	assert.Greater(t, total, 0.0)
}
