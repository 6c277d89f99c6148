package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"linearrag/internal/activation"
	"linearrag/internal/embedstore"
	"linearrag/internal/graph"
	"linearrag/internal/hypergraph"
	"linearrag/internal/ner"
	"linearrag/internal/vecmath"
)

// Config collects the tunables Retriever needs from config.Config,
// kept narrow so this package doesn't import the whole config tree.
type Config struct {
	CandidatePoolSize  int
	MaxIterations      int
	IterationThreshold float64
	TopKSentence       int
	PassageRatio       float64
	PassageNodeWeight  float64
	Damping            float64
	RetrievalTopK      int

	UseHypergraph            bool
	HyperedgeTopK            int
	HyperedgeRetrievalThresh float64
	HyperedgeEntityBoost     float64
}

// Retriever implements spec.md section 4.9: the hybrid retrieval glue
// over the embedding stores, graph, and (optionally) hypergraph built
// by index().
type Retriever struct {
	Passages   embedstore.Store
	Entities   embedstore.Store
	Sentences  embedstore.Store
	Embedder   embedstore.Embedder
	NER        ner.Adapter
	Graph      *graph.Graph
	Hypergraph *hypergraph.Store // nil disables hypergraph reranking

	EntityToSentences map[string][]string // inverted ner.Result.SentenceToEntities

	Config Config
}

// Result is the hybrid retriever's output, matching spec.md section
// 4.9's "{question, sorted_passages, sorted_scores, has_entities,
// has_hyperedge_context, + pass-through fields}".
type Result struct {
	Question            string
	SortedPassages      []string
	SortedScores        []float64
	HasEntities         bool
	HasHyperedgeContext bool
}

const medicalKnowledgeFactsHeader = "[Medical Knowledge Facts]"

// Retrieve runs the full pipeline for one question.
func (r *Retriever) Retrieve(ctx context.Context, question string) (Result, error) {
	result := Result{Question: question}

	questionVecs, err := r.Embedder.EmbedBatch(ctx, []string{question})
	if err != nil {
		return result, fmt.Errorf("retrieval: embed question: %w", err)
	}
	if len(questionVecs) == 0 || questionVecs[0] == nil {
		return result, fmt.Errorf("retrieval: no embedding produced for question")
	}
	questionVec := questionVecs[0]

	questionEntities, _, err := r.NER.ExtractPassage(ctx, question)
	if err != nil {
		return result, fmt.Errorf("retrieval: extract question entities: %w", err)
	}

	selector := activation.NewSeedSelector(r.Entities, r.Embedder)
	seeds, err := selector.Select(ctx, questionEntities)
	if err != nil {
		return result, fmt.Errorf("retrieval: select seeds: %w", err)
	}
	result.HasEntities = len(seeds) > 0

	candidates := preFilter(questionVec, r.Passages, r.candidatePoolSize())

	var hashes []string
	var scores []float64
	if len(seeds) > 0 {
		hashes, scores, err = r.activatedRanking(ctx, questionVec, seeds, candidates)
		if err != nil {
			return result, err
		}
	} else {
		hashes, scores = denseRanking(candidates)
	}

	var expandedEntities map[string]struct{}
	var selectedHyperedges []hypergraph.Hyperedge
	if r.Config.UseHypergraph && r.Hypergraph != nil {
		selectedHyperedges, expandedEntities = r.selectHyperedges(questionVec)
		if len(expandedEntities) > 0 {
			hashes, scores = r.boostWithHyperedgeEntities(hashes, scores, expandedEntities)
		}
	}

	topK := r.Config.RetrievalTopK
	if topK <= 0 {
		topK = 3
	}
	if topK > len(hashes) {
		topK = len(hashes)
	}
	hashes = hashes[:topK]
	scores = scores[:topK]

	passageTexts := make([]string, len(hashes))
	for i, h := range hashes {
		text, _ := r.Passages.TextByHash(h)
		passageTexts[i] = text
	}

	if len(selectedHyperedges) > 0 && len(passageTexts) > 0 {
		passageTexts[0] = prependHyperedgeContext(passageTexts[0], selectedHyperedges)
		result.HasHyperedgeContext = true
	}

	result.SortedPassages = passageTexts
	result.SortedScores = scores
	return result, nil
}

func (r *Retriever) candidatePoolSize() int {
	if r.Config.CandidatePoolSize > 0 {
		return r.Config.CandidatePoolSize
	}
	return 500
}

// activatedRanking runs the activation engine, scores passages (spec.md
// section 4.7), and runs PPR over entity_weights + passage_weights
// (spec.md section 4.8).
func (r *Retriever) activatedRanking(ctx context.Context, questionVec []float32, seeds []activation.Seed, candidates []candidate) ([]string, []float64, error) {
	engine := activation.NewEngine(r.Sentences, r.EntityToSentences)
	if r.Config.MaxIterations > 0 {
		engine.MaxIterations = r.Config.MaxIterations
	}
	if r.Config.IterationThreshold > 0 {
		engine.IterationThreshold = r.Config.IterationThreshold
	}
	if r.Config.TopKSentence > 0 {
		engine.TopKSentence = r.Config.TopKSentence
	}

	activated, err := engine.Run(ctx, questionVec, seeds)
	if err != nil {
		return nil, nil, fmt.Errorf("retrieval: run activation: %w", err)
	}

	passageRatio := r.Config.PassageRatio
	if passageRatio == 0 {
		passageRatio = 0.7
	}
	passageNodeWeight := r.Config.PassageNodeWeight
	if passageNodeWeight == 0 {
		passageNodeWeight = 1.0
	}
	passageWeights := scorePassages(candidates, activated, passageRatio, passageNodeWeight)

	reset := make(map[string]float64, len(activated.EntityWeights)+len(passageWeights))
	for hash, w := range activated.EntityWeights {
		reset[hash] += w
	}
	for hash, w := range passageWeights {
		reset[hash] += w
	}

	damping := r.Config.Damping
	if damping == 0 {
		damping = 0.85
	}
	hashes, scores := r.Graph.PPR(reset, damping)
	return hashes, scores, nil
}

// denseRanking is the fallback path of spec.md section 4.9 step 3:
// "Else: rank passages purely by dense cosine."
func denseRanking(candidates []candidate) ([]string, []float64) {
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].dense > candidates[j].dense })
	hashes := make([]string, len(candidates))
	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		hashes[i] = c.hash
		scores[i] = c.dense
	}
	return hashes, scores
}

// selectHyperedges implements spec.md section 4.9 step 4's hyperedge
// selection: cosine(q, hyperedge) * stored confidence, top
// hyperedge_top_k above hyperedge_retrieval_threshold, collecting their
// entities into an expanded entity set.
func (r *Retriever) selectHyperedges(questionVec []float32) ([]hypergraph.Hyperedge, map[string]struct{}) {
	all := r.Hypergraph.All()
	if len(all) == 0 {
		return nil, nil
	}

	type scored struct {
		he    hypergraph.Hyperedge
		score float64
	}
	scoredEdges := make([]scored, 0, len(all))
	for _, he := range all {
		hash := r.Sentences.HashFor(he.Text)
		vec, ok := r.Sentences.VectorByHash(hash)
		if !ok {
			continue
		}
		cosine := vecmath.Cosine(questionVec, vec)
		score := cosine * he.Score
		threshold := r.Config.HyperedgeRetrievalThresh
		if threshold == 0 {
			threshold = 0.3
		}
		if score < threshold {
			continue
		}
		scoredEdges = append(scoredEdges, scored{he: he, score: score})
	}
	sort.Slice(scoredEdges, func(i, j int) bool { return scoredEdges[i].score > scoredEdges[j].score })

	topK := r.Config.HyperedgeTopK
	if topK <= 0 {
		topK = 30
	}
	if topK < len(scoredEdges) {
		scoredEdges = scoredEdges[:topK]
	}

	selected := make([]hypergraph.Hyperedge, len(scoredEdges))
	expanded := make(map[string]struct{})
	for i, s := range scoredEdges {
		selected[i] = s.he
		for _, e := range s.he.Entities {
			expanded[strings.ToLower(e)] = struct{}{}
		}
	}
	return selected, expanded
}

// boostWithHyperedgeEntities implements spec.md section 4.9 step 4's
// passage re-scoring: score *= 1 + (hyperedge_entity_boost - 1) *
// min(matches, 3) / 3, then re-sorts.
func (r *Retriever) boostWithHyperedgeEntities(hashes []string, scores []float64, expandedEntities map[string]struct{}) ([]string, []float64) {
	boost := r.Config.HyperedgeEntityBoost
	if boost == 0 {
		boost = 1.2
	}

	type pair struct {
		hash  string
		score float64
	}
	pairs := make([]pair, len(hashes))
	for i, h := range hashes {
		text, _ := r.Passages.TextByHash(h)
		matches := countEntityMatches(text, expandedEntities)
		if matches > 3 {
			matches = 3
		}
		factor := 1 + (boost-1)*float64(matches)/3
		pairs[i] = pair{hash: h, score: scores[i] * factor}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].score > pairs[j].score })

	outHashes := make([]string, len(pairs))
	outScores := make([]float64, len(pairs))
	for i, p := range pairs {
		outHashes[i] = p.hash
		outScores[i] = p.score
	}
	return outHashes, outScores
}

func countEntityMatches(passageText string, expandedEntities map[string]struct{}) int {
	lower := strings.ToLower(passageText)
	count := 0
	for entity := range expandedEntities {
		if strings.Contains(lower, entity) {
			count++
		}
	}
	return count
}

// prependHyperedgeContext implements spec.md section 4.9 step 5: up to
// 5 hyperedge texts, truncated to 200 chars each, formatted as a
// "[Medical Knowledge Facts]" preamble prepended to the first passage.
func prependHyperedgeContext(firstPassage string, hyperedges []hypergraph.Hyperedge) string {
	n := len(hyperedges)
	if n > 5 {
		n = 5
	}
	var b strings.Builder
	b.WriteString(medicalKnowledgeFactsHeader)
	b.WriteString("\n")
	for i := 0; i < n; i++ {
		text := hyperedges[i].Text
		if len(text) > 200 {
			text = text[:200]
		}
		b.WriteString("- ")
		b.WriteString(text)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(firstPassage)
	return b.String()
}
