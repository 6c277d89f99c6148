// Package retrieval implements spec.md section 4.7 (candidate
// pre-filter + passage scorer) and section 4.9 (the hybrid retriever
// that glues seed selection, activation, PPR, and hypergraph
// reranking together into one ranked passage list).
package retrieval

import (
	"math"
	"strings"

	"linearrag/internal/activation"
	"linearrag/internal/embedstore"
	"linearrag/internal/vecmath"
)

// candidate is one passage in the pre-filtered working set.
type candidate struct {
	hash  string
	text  string
	dense float64 // raw dot product against the question vector
}

// preFilter computes the top candidatePoolSize passages by dense
// cosine similarity to the question (spec.md section 4.7's "a single
// matrix-vector product over the passage matrix").
func preFilter(questionVec []float32, passages embedstore.Store, candidatePoolSize int) []candidate {
	rows := passages.All()
	matrix := make([][]float32, len(rows))
	for i, r := range rows {
		matrix[i] = r.Vec
	}
	scored := vecmath.TopKByDot(questionVec, matrix, candidatePoolSize)

	out := make([]candidate, len(scored))
	for i, s := range scored {
		out[i] = candidate{hash: rows[s.Index].Hash, text: rows[s.Index].Text, dense: s.Score}
	}
	return out
}

// scorePassages implements spec.md section 4.7's passage_weight
// formula for every candidate: passage_weight[v(p)] = passage_node_weight
// * (passage_ratio * d_p + ln(1 + bonus_p)), where d_p is the min-max
// normalized dense score within the candidate set and bonus_p sums,
// over activated entities e, score(e) * ln(1+occurrences(e,p)) /
// max(tier(e),1). Passages outside the candidate set get weight 0 (the
// caller simply omits them from the returned map).
func scorePassages(candidates []candidate, activated activation.Result, passageRatio, passageNodeWeight float64) map[string]float64 {
	if len(candidates) == 0 {
		return nil
	}
	dense := make([]float64, len(candidates))
	for i, c := range candidates {
		dense[i] = c.dense
	}
	normalized := vecmath.MinMaxNormalize(dense)

	weights := make(map[string]float64, len(candidates))
	for i, c := range candidates {
		bonus := passageBonus(c.text, activated)
		weights[c.hash] = passageNodeWeight * (passageRatio*normalized[i] + math.Log1p(bonus))
	}
	return weights
}

// passageBonus sums, over every activated entity mentioning
// passageText, score(e) * ln(1+occurrences(e,p)) / max(tier(e),1).
func passageBonus(passageText string, activated activation.Result) float64 {
	if len(activated.ActiveStates) == 0 {
		return 0
	}
	lowerText := strings.ToLower(passageText)
	var bonus float64
	for entity, state := range activated.ActiveStates {
		occurrences := strings.Count(lowerText, entity)
		if occurrences == 0 {
			continue
		}
		tier := state.Tier
		if tier < 1 {
			tier = 1
		}
		bonus += state.Score * math.Log1p(float64(occurrences)) / float64(tier)
	}
	return bonus
}
