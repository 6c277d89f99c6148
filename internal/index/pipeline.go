package index

import (
	"context"
	"fmt"
	"time"

	"linearrag/internal/embedstore"
	"linearrag/internal/events"
	"linearrag/internal/graph"
	"linearrag/internal/hypergraph"
	"linearrag/internal/ner"
	"linearrag/internal/obs"
)

// Config collects the index()-pipeline tunables needed from
// config.Config.
type Config struct {
	MinEntitiesPerHyperedge int
	MaxEntitiesPerHyperedge int
	MaxHyperedgeScoreBoost  float64
	MergeHypergraph         bool
}

// Pipeline wires the embedding stores, NER cache, graph, and
// hypergraph into the state machine of spec.md section 4.10. Sentence
// text doubles as hyperedge text (a hyperedge is built from exactly
// one sentence, per spec.md section 4.4), so hyperedges are embedded
// into the same Sentences store rather than a fourth store.
type Pipeline struct {
	Passages  embedstore.Store
	Sentences embedstore.Store
	Entities  embedstore.Store

	NERAdapter ner.Adapter
	NERCache   *ner.Cache

	Graph        *graph.Graph
	GraphBuilder *graph.Builder

	Hypergraph       *hypergraph.Store
	HyperedgeBuilder *hypergraph.Builder
	Enhancer         *hypergraph.Enhancer

	Manifest *Store
	Config   Config
	Log      obs.Logger

	// Namespace and Events are optional: when Events is non-nil, every
	// Manifest.Advance call during Run also publishes a Transition.
	Namespace string
	Events    *events.Publisher
}

// NewPipeline wires a Pipeline from its component collaborators.
// namespace and events are optional (namespace labels published
// events; a nil events.Publisher disables publishing entirely).
func NewPipeline(
	passages, sentences, entities embedstore.Store,
	nerAdapter ner.Adapter, nerCache *ner.Cache,
	g *graph.Graph, hg *hypergraph.Store,
	manifest *Store, cfg Config, log obs.Logger,
	namespace string, pub *events.Publisher,
) *Pipeline {
	if log == nil {
		log = obs.NopLogger{}
	}
	return &Pipeline{
		Passages:         passages,
		Sentences:        sentences,
		Entities:         entities,
		NERAdapter:       nerAdapter,
		NERCache:         nerCache,
		Graph:            g,
		GraphBuilder:     graph.NewBuilder(g),
		Hypergraph:       hg,
		HyperedgeBuilder: hypergraph.NewBuilder(cfg.MinEntitiesPerHyperedge, cfg.MaxEntitiesPerHyperedge),
		Enhancer:         hypergraph.NewEnhancer(cfg.MaxHyperedgeScoreBoost),
		Manifest:         manifest,
		Config:           cfg,
		Log:              log,
		Namespace:        namespace,
		Events:           pub,
	}
}

// advance moves the manifest to state and, when that changes the
// state, publishes an events.Transition.
func (p *Pipeline) advance(ctx context.Context, state State) {
	from := p.Manifest.State()
	p.Manifest.Advance(state)
	if from == state {
		return
	}
	if err := p.Events.Publish(ctx, events.Transition{
		Namespace: p.Namespace,
		FromState: from.String(),
		ToState:   state.String(),
		Timestamp: time.Now(),
	}); err != nil {
		p.Log.Error("index: publish transition event failed", map[string]any{"error": err.Error()})
	}
}

// Run takes the passages of passageTexts that the manifest has not
// recorded through every stage of the state machine in order and marks
// them indexed at the end. It returns at once only when there are no
// such passages and the manifest is already Ready. Stages are not
// skipped according to the manifest's current State: passages of an
// interrupted run are still unrecorded, so they go through every stage
// again, and the embedding stores skip texts they already hold.
func (p *Pipeline) Run(ctx context.Context, passageTexts []string) error {
	newTexts, newHashes := p.Manifest.NewDocuments(passageTexts)
	if len(newTexts) == 0 && p.Manifest.State() == Ready {
		p.Log.Info("index: nothing to do, all passages already indexed", map[string]any{"total": len(passageTexts)})
		return nil
	}

	if _, err := p.Passages.InsertTexts(ctx, newTexts); err != nil {
		return fmt.Errorf("index: embed passages: %w", err)
	}
	p.advance(ctx, PassagesEmbedded)

	passageEntities := make(map[string][]string, len(newTexts))
	passageRefs := make([]graph.PassageRef, 0, len(newTexts))
	for _, text := range newTexts {
		hash := p.Passages.HashFor(text)
		entities, err := p.NERCache.Extract(ctx, p.NERAdapter, hash, text)
		if err != nil {
			return fmt.Errorf("index: extract entities for passage %s: %w", hash, err)
		}
		passageEntities[hash] = entities
		passageRefs = append(passageRefs, graph.PassageRef{Hash: hash, Text: text})
	}
	p.advance(ctx, NERDone)

	nerResult := p.NERCache.Result()

	sentenceTexts := make([]string, 0, len(nerResult.SentenceToEntities))
	for sentence := range nerResult.SentenceToEntities {
		sentenceTexts = append(sentenceTexts, sentence)
	}
	if _, err := p.Sentences.InsertTexts(ctx, sentenceTexts); err != nil {
		return fmt.Errorf("index: embed sentences: %w", err)
	}

	entityTexts := uniqueEntities(nerResult.PassageHashIDToEntities)
	if _, err := p.Entities.InsertTexts(ctx, entityTexts); err != nil {
		return fmt.Errorf("index: embed entities: %w", err)
	}

	for hash, text := range textByHash(passageRefs) {
		p.GraphBuilder.AddPassage(hash, text, passageEntities[hash])
	}
	p.GraphBuilder.AddSequentialAdjacency(allPassageRefs(p.Passages))
	p.advance(ctx, GraphBuilt)

	hyperedgeRefs := make([]hypergraph.PassageRef, len(passageRefs))
	for i, r := range passageRefs {
		hyperedgeRefs[i] = hypergraph.PassageRef{Hash: r.Hash, Text: r.Text}
	}
	hyperedges, passageToHyperedges := p.HyperedgeBuilder.BuildFromPassageSentences(nerResult.SentenceToEntities, hyperedgeRefs, nil)
	hyperedges = p.Enhancer.EnhanceAll(hyperedges, nil)
	p.Hypergraph.AddHyperedges(hyperedges)
	for passageHash, heIDs := range passageToHyperedges {
		p.Hypergraph.SetPassageHyperedges(passageHash, heIDs)
	}
	p.advance(ctx, HypergraphBuilt)

	hyperedgeTexts := make([]string, len(hyperedges))
	for i, he := range hyperedges {
		hyperedgeTexts[i] = he.Text
	}
	if _, err := p.Sentences.InsertTexts(ctx, hyperedgeTexts); err != nil {
		return fmt.Errorf("index: embed hyperedge texts: %w", err)
	}
	p.advance(ctx, HyperedgesEmbedded)

	if p.Config.MergeHypergraph {
		p.Hypergraph.MergeIntoGraph(p.Graph)
	}

	p.Manifest.MarkIndexed(newHashes, p.Entities.Len(), p.Hypergraph.Len(), p.Passages.Len())
	p.advance(ctx, Ready)

	p.Log.Info("index: pipeline complete", map[string]any{
		"new_passages": len(newTexts),
		"entities":     p.Entities.Len(),
		"hyperedges":   p.Hypergraph.Len(),
	})
	return nil
}

func uniqueEntities(passageToEntities map[string][]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, entities := range passageToEntities {
		for _, e := range entities {
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}

func textByHash(refs []graph.PassageRef) map[string]string {
	out := make(map[string]string, len(refs))
	for _, r := range refs {
		out[r.Hash] = r.Text
	}
	return out
}

func allPassageRefs(passages embedstore.Store) []graph.PassageRef {
	rows := passages.All()
	out := make([]graph.PassageRef, len(rows))
	for i, r := range rows {
		out[i] = graph.PassageRef{Hash: r.Hash, Text: r.Text}
	}
	return out
}
