// Package vecmath implements the small dense-vector operations the
// retrieval core needs — cosine similarity and matrix-vector top-k —
// over row-major float32 matrices held as one slice per row, after spec.md section 9's design
// note: "pack as contiguous row-major float arrays; similarity is one
// BLAS-style matrix-vector product per query." No BLAS binding appears
// anywhere in the retrieved corpus, so this stays hand-written rather
// than reaching for an unattested dependency.
package vecmath

import (
	"math"
	"sort"
)

// Dot returns the dot product of a and b (equal length assumed).
func Dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// Norm returns the L2 norm of v.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum <= 0 {
		return 0
	}
	return math.Sqrt(sum)
}

// Cosine returns cosine similarity of a and b, assumed unit-norm per
// spec.md invariant 3 (so this reduces to the dot product); it still
// normalizes defensively in case a caller passes a non-unit vector
// (e.g. a freshly-encoded query vector before any guarantee is made).
func Cosine(a, b []float32) float64 {
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return Dot(a, b) / (na * nb)
}

// ScoredIndex pairs a row index with a score.
type ScoredIndex struct {
	Index int
	Score float64
}

// TopKByDot scores query against every row of matrix (row-major,
// dim floats per row) via dot product and returns the top k indices
// descending by score.
func TopKByDot(query []float32, matrix [][]float32, k int) []ScoredIndex {
	scored := make([]ScoredIndex, len(matrix))
	for i, row := range matrix {
		scored[i] = ScoredIndex{Index: i, Score: Dot(query, row)}
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if k > 0 && k < len(scored) {
		scored = scored[:k]
	}
	return scored
}

// MinMaxNormalize rescales scores to [0, 1] within the slice (spec.md
// section 4.7's "min-max normalized dense score within the candidate
// set"). A constant input maps to all-zero.
func MinMaxNormalize(scores []float64) []float64 {
	if len(scores) == 0 {
		return scores
	}
	min, max := scores[0], scores[0]
	for _, s := range scores {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	out := make([]float64, len(scores))
	if max == min {
		return out
	}
	for i, s := range scores {
		out[i] = (s - min) / (max - min)
	}
	return out
}
