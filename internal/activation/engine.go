package activation

import (
	"context"
	"fmt"
	"sort"

	"linearrag/internal/embedstore"
	"linearrag/internal/vecmath"
)

// Tuning constants for the spreading-activation walk, spec.md section 4.6.
const (
	DefaultMaxIterations      = 2
	DefaultIterationThreshold = 0.3
	DefaultTopKSentence       = 5
	noiseFloor                = 0.25
	tierDecay                 = 0.7
)

// Active is one entity's current activation state.
type Active struct {
	Score float64
	Tier  int
}

// Engine runs the bounded frontier-expansion walk described in
// spec.md section 4.6: activation spreads from seed entities through
// the sentences that mention them to further entities, accumulating
// additive weight per entity along the way.
type Engine struct {
	// SentenceEmbeds is the sentence embedding store; keys are sentence
	// text, looked up via HashFor("sentence", text).
	SentenceEmbeds embedstore.Store
	// EntityToSentences inverts ner.Result.SentenceToEntities: entity
	// text (lowercased) to the sentences that mention it.
	EntityToSentences map[string][]string

	MaxIterations      int
	IterationThreshold float64
	TopKSentence       int

	// sentenceEntities inverts EntityToSentences (sentence -> entities
	// that mention it), built once at construction for O(1) lookups in
	// entitiesInSentence.
	sentenceEntities map[string][]string
}

// NewEngine wires an Engine with spec.md's defaults; zero-value
// MaxIterations/IterationThreshold/TopKSentence are replaced.
func NewEngine(sentenceEmbeds embedstore.Store, entityToSentences map[string][]string) *Engine {
	sentenceEntities := make(map[string][]string, len(entityToSentences))
	for entity, sentences := range entityToSentences {
		for _, s := range sentences {
			sentenceEntities[s] = append(sentenceEntities[s], entity)
		}
	}
	return &Engine{
		SentenceEmbeds:     sentenceEmbeds,
		EntityToSentences:  entityToSentences,
		MaxIterations:      DefaultMaxIterations,
		IterationThreshold: DefaultIterationThreshold,
		TopKSentence:       DefaultTopKSentence,
		sentenceEntities:   sentenceEntities,
	}
}

// Result is the engine's output: per-entity accumulated weight keyed
// by the namespaced entity hash (ready to merge into a PPR reset
// vector), the set of entities that were ever active, and each
// activated entity's final (score, tier) — the passage scorer
// (spec.md section 4.7) needs both to compute its ln(1+occurrences)
// bonus term.
type Result struct {
	EntityWeights     map[string]float64  // entity_hash -> weight
	ActivatedEntities map[string]struct{} // lowercased entity text
	ActiveStates      map[string]Active   // lowercased entity text -> final (score, tier)
}

// InvertSentenceToEntities builds EntityToSentences from
// ner.Result.SentenceToEntities (entity text is lowercased, matching
// the hypergraph builder's dedupeLower convention).
func InvertSentenceToEntities(sentenceToEntities map[string][]string) map[string][]string {
	out := make(map[string][]string)
	for sentence, entities := range sentenceToEntities {
		for _, e := range entities {
			out[e] = append(out[e], sentence)
		}
	}
	return out
}

type frontierEntry struct {
	text string
	tier int
}

// Run executes the walk. questionVec is the encoded question used to
// rank candidate sentences by cosine similarity; seeds come from
// SeedSelector.Select.
func (e *Engine) Run(ctx context.Context, questionVec []float32, seeds []Seed) (Result, error) {
	maxIter := e.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	threshold := e.IterationThreshold
	if threshold <= 0 {
		threshold = DefaultIterationThreshold
	}
	topK := e.TopKSentence
	if topK <= 0 {
		topK = DefaultTopKSentence
	}

	result := Result{
		EntityWeights:     make(map[string]float64),
		ActivatedEntities: make(map[string]struct{}),
	}

	active := make(map[string]Active, len(seeds))
	var frontier []frontierEntry
	for _, s := range seeds {
		active[s.EntityText] = Active{Score: s.Score, Tier: 1}
		result.EntityWeights[s.EntityHash] += s.Score
		result.ActivatedEntities[s.EntityText] = struct{}{}
		frontier = append(frontier, frontierEntry{text: s.EntityText, tier: 1})
	}

	usedSentences := make(map[string]struct{})

	for iter := 0; iter < maxIter && len(frontier) > 0; iter++ {
		var nextFrontier []frontierEntry
		staged := make(map[string]struct{})

		for _, fe := range frontier {
			st, ok := active[fe.text]
			if !ok || st.Score < threshold {
				continue
			}

			candidates := e.rankSentences(st, fe, usedSentences, questionVec, topK)
			for _, c := range candidates {
				if c.cosine < noiseFloor {
					continue
				}
				usedSentences[c.sentence] = struct{}{}

				for _, entityPrime := range e.entitiesInSentence(c.sentence) {
					propagated := st.Score * c.cosine
					if fe.tier > 1 {
						propagated *= tierDecay
					}
					if propagated < threshold {
						continue
					}
					hash := embedstore.HashFor("entity", entityPrime)
					result.EntityWeights[hash] += propagated
					result.ActivatedEntities[entityPrime] = struct{}{}

					nextTier := fe.tier + 1
					if prev, ok := active[entityPrime]; !ok || propagated > prev.Score {
						active[entityPrime] = Active{Score: propagated, Tier: nextTier}
					}
					if _, already := staged[entityPrime]; !already {
						staged[entityPrime] = struct{}{}
						nextFrontier = append(nextFrontier, frontierEntry{text: entityPrime, tier: nextTier})
					}
				}
			}
		}

		frontier = nextFrontier
	}

	result.ActiveStates = active

	if ctx.Err() != nil {
		return result, fmt.Errorf("activation: %w", ctx.Err())
	}
	return result, nil
}

type sentenceCandidate struct {
	sentence string
	cosine   float64
}

// rankSentences takes the sentences mentioning the active entity,
// minus already-used sentences, ranks by cosine to the question among
// those with a stored embedding, and returns the top-k.
func (e *Engine) rankSentences(st Active, fe frontierEntry, used map[string]struct{}, questionVec []float32, topK int) []sentenceCandidate {
	sentences := e.EntityToSentences[fe.text]
	if len(sentences) == 0 {
		return nil
	}
	candidates := make([]sentenceCandidate, 0, len(sentences))
	for _, sentence := range sentences {
		if _, ok := used[sentence]; ok {
			continue
		}
		hash := e.SentenceEmbeds.HashFor(sentence)
		vec, ok := e.SentenceEmbeds.VectorByHash(hash)
		if !ok {
			continue
		}
		candidates = append(candidates, sentenceCandidate{
			sentence: sentence,
			cosine:   vecmath.Cosine(questionVec, vec),
		})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].cosine > candidates[j].cosine })
	if topK > 0 && topK < len(candidates) {
		candidates = candidates[:topK]
	}
	return candidates
}

// entitiesInSentence returns every entity known to mention this sentence.
func (e *Engine) entitiesInSentence(sentence string) []string {
	return e.sentenceEntities[sentence]
}
