package graph

import "math"

// pprMaxIterations bounds the power iteration; in practice it
// converges well before this on graphs of the size this module builds.
const pprMaxIterations = 100

// pprTolerance is the L1-distance convergence threshold between
// successive iterates.
const pprTolerance = 1e-9

// PPR runs Personalized PageRank (spec.md section 4.8): reset is the
// (unnormalized) personalization distribution keyed by node name,
// damping is typically 0.85. NaNs and negatives in reset are clamped
// to 0 before use, per spec.md section 7. Dangling nodes (no outgoing
// weighted edges) redistribute their probability mass through the
// reset distribution rather than vanishing, the standard fix for
// power-iteration PageRank.
//
// gonum.org/v1/gonum/graph/network.PageRank does not accept a
// caller-supplied reset/personalization vector (only uniform
// teleportation), so the iteration below is hand-written over the
// gonum-backed Graph; see DESIGN.md for the justification.
func (g *Graph) PPR(reset map[string]float64, damping float64) (passageHashes []string, scores []float64) {
	g.mu.RLock()
	n := len(g.nameByID)
	ids := make([]int64, 0, n)
	for id := range g.nameByID {
		ids = append(ids, id)
	}
	idxOf := make(map[int64]int, n)
	for i, id := range ids {
		idxOf[id] = i
	}

	r := make([]float64, n)
	var rSum float64
	for i, id := range ids {
		v := reset[g.nameByID[id]]
		if math.IsNaN(v) || v < 0 {
			v = 0
		}
		r[i] = v
		rSum += v
	}
	if rSum > 0 {
		for i := range r {
			r[i] /= rSum
		}
	} else {
		// An all-zero reset has no personalization mass to spread;
		// spec.md section 8 requires an all-zero result rather than
		// falling back to uniform teleportation.
		passageHashes = make([]string, len(g.passageIDs))
		scores = make([]float64, len(g.passageIDs))
		for i, id := range g.passageIDs {
			passageHashes[i] = g.nameByID[id]
		}
		g.mu.RUnlock()
		return passageHashes, scores
	}

	neighbors := make([][]int, n)
	weights := make([][]float64, n)
	outDegree := make([]float64, n)
	for i, id := range ids {
		nbrIDs, nbrW := g.weightedNeighborsLocked(id)
		neighbors[i] = make([]int, len(nbrIDs))
		weights[i] = nbrW
		for j, nid := range nbrIDs {
			neighbors[i][j] = idxOf[nid]
			outDegree[i] += nbrW[j]
		}
	}
	g.mu.RUnlock()

	p := append([]float64(nil), r...)
	for iter := 0; iter < pprMaxIterations && n > 0; iter++ {
		next := make([]float64, n)
		var dangling float64
		for i := range p {
			if outDegree[i] == 0 {
				dangling += p[i]
			}
		}
		for u := range p {
			if outDegree[u] == 0 {
				continue
			}
			share := p[u] / outDegree[u]
			for j, v := range neighbors[u] {
				next[v] += share * weights[u][j]
			}
		}
		var diff float64
		for i := range next {
			next[i] = (1-damping)*r[i] + damping*(next[i]+dangling*r[i])
			diff += math.Abs(next[i] - p[i])
		}
		p = next
		if diff < pprTolerance {
			break
		}
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	passageIdx := make([]int, 0, len(g.passageIDs))
	for _, id := range g.passageIDs {
		passageIdx = append(passageIdx, idxOf[id])
	}
	result := make([]scoredPair, 0, len(passageIdx))
	for _, idx := range passageIdx {
		result = append(result, scoredPair{hash: g.nameByID[ids[idx]], score: p[idx]})
	}
	sortScoredDesc(result)
	passageHashes = make([]string, len(result))
	scores = make([]float64, len(result))
	for i, s := range result {
		passageHashes[i] = s.hash
		scores[i] = s.score
	}
	return passageHashes, scores
}

func (g *Graph) weightedNeighborsLocked(id int64) ([]int64, []float64) {
	it := g.g.From(id)
	var ids []int64
	var w []float64
	for it.Next() {
		nb := it.Node()
		e := g.g.WeightedEdge(id, nb.ID())
		ids = append(ids, nb.ID())
		w = append(w, e.Weight())
	}
	return ids, w
}

type scoredPair struct {
	hash  string
	score float64
}

func sortScoredDesc(s []scoredPair) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].score > s[j-1].score; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
