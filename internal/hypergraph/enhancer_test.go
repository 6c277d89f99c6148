package hypergraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestEnhanceScoreIsBoundedByMaxBoost covers spec.md section 8:
// "0 < score ≤ max_boost per hyperedge."
func TestEnhanceScoreIsBoundedByMaxBoost(t *testing.T) {
	e := NewEnhancer(1.5)
	he := NewHyperedge("disease chemical interaction", []string{"disease", "chemical"}, 0.9, map[string]string{
		"disease":  "DISEASE",
		"chemical": "CHEMICAL",
	})

	score := e.EnhanceScore(he, nil)
	assert.Greater(t, score, 0.0)
	assert.LessOrEqual(t, score, e.MaxBoost)
}

func TestEnhanceScoreUnmatchedPatternLeavesScoreUnboosted(t *testing.T) {
	e := NewEnhancer(1.5)
	he := NewHyperedge("no domain pattern here", []string{"widget"}, 0.4, nil)

	score := e.EnhanceScore(he, nil)
	assert.Equal(t, 0.4, score)
}

func TestEnhanceAllMutatesEachHyperedgeInPlace(t *testing.T) {
	e := NewEnhancer(1.5)
	hyperedges := []Hyperedge{
		NewHyperedge("s1", []string{"disease", "chemical"}, 0.5, map[string]string{"disease": "DISEASE", "chemical": "CHEMICAL"}),
		NewHyperedge("s2", []string{"widget"}, 0.2, nil),
	}
	e.EnhanceAll(hyperedges, nil)
	assert.InDelta(t, 0.5*1.3, hyperedges[0].Score, 1e-9)
	assert.Equal(t, 0.2, hyperedges[1].Score)
}

func TestInferTypeFirstKeywordMatchWins(t *testing.T) {
	assert.Equal(t, "SYMPTOM", inferType("severe headache"))
	assert.Equal(t, "", inferType("unremarkable entity"))
}
