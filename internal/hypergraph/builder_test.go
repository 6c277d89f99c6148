package hypergraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func longEnoughSentence(suffix string) string {
	return "This is a medically relevant sentence about patients " + suffix
}

// TestBuildFromNERResultsRespectsEntityBounds covers spec.md section 8:
// "min_entities ≤ |entities| ≤ max_entities per hyperedge."
func TestBuildFromNERResultsRespectsEntityBounds(t *testing.T) {
	b := NewBuilder(2, 3)
	sentenceToEntities := map[string][]string{
		longEnoughSentence("with one entity"):     {"fever"},
		longEnoughSentence("with two entities"):   {"fever", "aspirin"},
		longEnoughSentence("with three entities"): {"fever", "aspirin", "pain"},
		longEnoughSentence("with four entities"):  {"fever", "aspirin", "pain", "cough"},
	}

	hyperedges := b.BuildFromNERResults(sentenceToEntities, nil)

	for _, he := range hyperedges {
		assert.GreaterOrEqual(t, len(he.Entities), 2)
		assert.LessOrEqual(t, len(he.Entities), 3)
	}
	// exactly the two-entity and three-entity sentences qualify
	assert.Len(t, hyperedges, 2)
}

func TestBuildFromNERResultsRejectsOutOfRangeSentenceLength(t *testing.T) {
	b := NewBuilder(1, 10)
	b.MinSentenceLength = 20
	b.MaxSentenceLength = 40

	tooShort := "short one"
	tooLong := longEnoughSentence("that goes on for a very long time indeed, well past the cap")

	hyperedges := b.BuildFromNERResults(map[string][]string{
		tooShort: {"fever"},
		tooLong:  {"fever"},
	}, nil)
	assert.Empty(t, hyperedges)
}

func TestBuildFromNERResultsScoreIsPositiveAndBoundedByOne(t *testing.T) {
	b := NewBuilder(1, 10)
	sentenceToEntities := map[string][]string{
		longEnoughSentence("alpha"): {"fever"},
		longEnoughSentence("beta"):  {"fever", "aspirin", "pain"},
	}
	hyperedges := b.BuildFromNERResults(sentenceToEntities, nil)
	require := assert.New(t)
	for _, he := range hyperedges {
		require.Greater(he.Score, 0.0)
		require.LessOrEqual(he.Score, 1.0)
	}
}

func TestBuildFromPassageSentencesSubstringMembership(t *testing.T) {
	b := NewBuilder(1, 10)
	sentence := longEnoughSentence("about aspirin and fever")
	hyperedges, passageToHyperedgeIDs := b.BuildFromPassageSentences(
		map[string][]string{sentence: {"fever", "aspirin"}},
		[]PassageRef{
			{Hash: "p-match", Text: "prefix " + sentence + " suffix"},
			{Hash: "p-nomatch", Text: "unrelated passage text"},
		},
		nil,
	)
	require := assert.New(t)
	require.Len(hyperedges, 1)
	ids, ok := passageToHyperedgeIDs["p-match"]
	require.True(ok)
	require.Equal(hyperedges[0].HashID, ids[0])
	_, ok = passageToHyperedgeIDs["p-nomatch"]
	require.False(ok)
}
