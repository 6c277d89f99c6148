// Package app wires config.Config into the concrete embedding stores,
// graph, hypergraph, NER cache, retriever, and orchestrator every
// cmd/ binary needs, so cmd/linearrag, cmd/linearrag-mcp, and
// cmd/linearrag-server share one assembly path instead of each
// duplicating it.
package app

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"linearrag/internal/cache"
	"linearrag/internal/config"
	"linearrag/internal/embedclient"
	"linearrag/internal/embedstore"
	"linearrag/internal/events"
	"linearrag/internal/graph"
	"linearrag/internal/hypergraph"
	"linearrag/internal/index"
	"linearrag/internal/llm"
	"linearrag/internal/ner"
	"linearrag/internal/obs"
	"linearrag/internal/objectstore"
	"linearrag/internal/qa"
	"linearrag/internal/retrieval"
	"linearrag/internal/store"
)

// App holds every wired collaborator for one namespace
// (<working_dir>/<dataset_name>, per spec.md section 6).
type App struct {
	Config config.Config
	Log    obs.Logger

	Passages  embedstore.Store
	Sentences embedstore.Store
	Entities  embedstore.Store

	NERAdapter ner.Adapter
	NERCache   *ner.Cache

	Graph      *graph.Graph
	Hypergraph *hypergraph.Store

	Manifest *index.Store
	Pipeline *index.Pipeline

	Cache *cache.MultiLevelCache

	Retriever    *retrieval.Retriever
	Answerer     llm.Answerer
	Orchestrator *qa.Orchestrator

	Events *events.Publisher

	// LocalArtifacts is always set; RemoteArtifacts is non-nil only
	// when cfg.ObjectStore.Backend == "s3" (spec.md section 6's
	// "optionally mirrored to S3").
	LocalArtifacts  objectstore.ObjectStore
	RemoteArtifacts objectstore.ObjectStore
}

// Close releases the Kafka event publisher. Embedding stores and the
// manifest persist through their own Flush/InsertTexts calls and need
// no explicit close.
func (a *App) Close() error {
	return a.Events.Close()
}

// MirrorArtifacts pushes every object under the namespace directory to
// RemoteArtifacts. A no-op when no remote backend is configured.
func (a *App) MirrorArtifacts(ctx context.Context) error {
	if a.RemoteArtifacts == nil {
		return nil
	}
	return store.Mirror(ctx, a.LocalArtifacts, a.RemoteArtifacts, "")
}

func namespaceDir(cfg config.Config) string {
	return filepath.Join(cfg.WorkingDir, cfg.DatasetName)
}

// Open builds an App from cfg, constructing the embedding stores named
// by cfg.EmbedStore.Backend and loading the incremental index manifest
// and hypergraph/graph state already on disk, if any.
func Open(ctx context.Context, cfg config.Config) (*App, error) {
	log := obs.NewLogger()
	nsDir := namespaceDir(cfg)

	embedder := embedclient.NewClient(embedclient.Config{
		BaseURL:    cfg.EmbeddingModel,
		Model:      cfg.EmbeddingModel,
		TimeoutSec: 60,
	}, cfg.EmbedStore.Dimensions)

	passages, sentences, entities, err := openEmbedStores(ctx, cfg, nsDir, embedder)
	if err != nil {
		return nil, fmt.Errorf("app: open embed stores: %w", err)
	}

	nerAdapter := ner.NewSimpleAdapter(nil)
	nerCache, err := ner.NewCache(nsDir, logAdapter(log))
	if err != nil {
		return nil, fmt.Errorf("app: open ner cache: %w", err)
	}

	g := graph.New()
	hg := hypergraph.NewStore(nsDir)

	manifest, err := index.Open(nsDir)
	if err != nil {
		return nil, fmt.Errorf("app: open manifest: %w", err)
	}

	eventPub := events.NewPublisher(cfg.Events)

	localArtifacts, err := store.NewLocalFSStore(nsDir)
	if err != nil {
		return nil, fmt.Errorf("app: open local artifact store: %w", err)
	}
	var remoteArtifacts objectstore.ObjectStore
	if cfg.ObjectStore.Backend == "s3" {
		remoteArtifacts, err = store.Open(ctx, cfg.ObjectStore, nsDir)
		if err != nil {
			return nil, fmt.Errorf("app: open remote artifact store: %w", err)
		}
	}

	pipeline := index.NewPipeline(passages, sentences, entities, nerAdapter, nerCache, g, hg, manifest,
		index.Config{
			MinEntitiesPerHyperedge: cfg.MinEntitiesPerHyperedge,
			MaxEntitiesPerHyperedge: cfg.MaxEntitiesPerHyperedge,
			MaxHyperedgeScoreBoost:  cfg.MaxHyperedgeScoreBoost,
			MergeHypergraph:         cfg.MergeHypergraph,
		}, log, cfg.DatasetName, eventPub)

	var multiCache *cache.MultiLevelCache
	if cfg.EnableMultiLevelCache {
		cacheDir := cfg.CacheDir
		if cacheDir == "" {
			cacheDir = filepath.Join(nsDir, "cache")
		}
		multiCache, err = cache.Open(ctx, cfg.Cache, cacheDir)
		if err != nil {
			return nil, fmt.Errorf("app: open cache: %w", err)
		}
	}

	var hgForRetrieval *hypergraph.Store
	if cfg.UseHypergraph {
		hgForRetrieval = hg
	}

	retriever := &retrieval.Retriever{
		Passages:          passages,
		Entities:          entities,
		Sentences:         sentences,
		Embedder:          embedder,
		NER:               nerAdapter,
		Graph:             g,
		Hypergraph:        hgForRetrieval,
		EntityToSentences: nil,
		Config: retrieval.Config{
			CandidatePoolSize:        cfg.CandidatePoolSize,
			MaxIterations:            cfg.MaxIterations,
			IterationThreshold:       cfg.IterationThreshold,
			TopKSentence:             cfg.TopKSentence,
			PassageRatio:             cfg.PassageRatio,
			PassageNodeWeight:        cfg.PassageNodeWeight,
			Damping:                  cfg.Damping,
			RetrievalTopK:            cfg.RetrievalTopK,
			UseHypergraph:            cfg.UseHypergraph,
			HyperedgeTopK:            cfg.HyperedgeTopK,
			HyperedgeRetrievalThresh: cfg.HyperedgeRetrievalThresh,
			HyperedgeEntityBoost:     cfg.HyperedgeEntityBoost,
		},
	}

	answerer, err := llm.New(ctx, cfg.LLM, http.DefaultClient)
	if err != nil {
		return nil, fmt.Errorf("app: open llm answerer: %w", err)
	}

	orchestrator := qa.NewOrchestrator(retriever, answerer, cfg.MaxWorkers)

	return &App{
		Config:          cfg,
		Log:             log,
		Passages:        passages,
		Sentences:       sentences,
		Entities:        entities,
		NERAdapter:      nerAdapter,
		NERCache:        nerCache,
		Graph:           g,
		Hypergraph:      hg,
		Manifest:        manifest,
		Pipeline:        pipeline,
		Cache:           multiCache,
		Retriever:       retriever,
		Answerer:        answerer,
		Orchestrator:    orchestrator,
		Events:          eventPub,
		LocalArtifacts:  localArtifacts,
		RemoteArtifacts: remoteArtifacts,
	}, nil
}

func openEmbedStores(ctx context.Context, cfg config.Config, nsDir string, embedder embedstore.Embedder) (passages, sentences, entities embedstore.Store, err error) {
	switch cfg.EmbedStore.Backend {
	case "", "parquet":
		passages, err = embedstore.NewParquetStore(filepath.Join(nsDir, "passage_embedding.parquet"), "passage", cfg.BatchSize, embedder, nil)
		if err != nil {
			return nil, nil, nil, err
		}
		sentences, err = embedstore.NewParquetStore(filepath.Join(nsDir, "sentence_embedding.parquet"), "sentence", cfg.BatchSize, embedder, nil)
		if err != nil {
			return nil, nil, nil, err
		}
		entities, err = embedstore.NewParquetStore(filepath.Join(nsDir, "entity_embedding.parquet"), "entity", cfg.BatchSize, embedder, nil)
		if err != nil {
			return nil, nil, nil, err
		}
		return passages, sentences, entities, nil
	case "postgres":
		passages, err = embedstore.NewPostgresStore(ctx, cfg.EmbedStore.PostgresDSN, "passage", cfg.EmbedStore.Dimensions, cfg.BatchSize, embedder)
		if err != nil {
			return nil, nil, nil, err
		}
		sentences, err = embedstore.NewPostgresStore(ctx, cfg.EmbedStore.PostgresDSN, "sentence", cfg.EmbedStore.Dimensions, cfg.BatchSize, embedder)
		if err != nil {
			return nil, nil, nil, err
		}
		entities, err = embedstore.NewPostgresStore(ctx, cfg.EmbedStore.PostgresDSN, "entity", cfg.EmbedStore.Dimensions, cfg.BatchSize, embedder)
		if err != nil {
			return nil, nil, nil, err
		}
		return passages, sentences, entities, nil
	case "qdrant":
		passages, err = embedstore.NewQdrantStore(ctx, cfg.EmbedStore.QdrantDSN, "passage", cfg.EmbedStore.Dimensions, cfg.BatchSize, embedder)
		if err != nil {
			return nil, nil, nil, err
		}
		sentences, err = embedstore.NewQdrantStore(ctx, cfg.EmbedStore.QdrantDSN, "sentence", cfg.EmbedStore.Dimensions, cfg.BatchSize, embedder)
		if err != nil {
			return nil, nil, nil, err
		}
		entities, err = embedstore.NewQdrantStore(ctx, cfg.EmbedStore.QdrantDSN, "entity", cfg.EmbedStore.Dimensions, cfg.BatchSize, embedder)
		if err != nil {
			return nil, nil, nil, err
		}
		return passages, sentences, entities, nil
	default:
		return nil, nil, nil, fmt.Errorf("app: unknown embed store backend %q", cfg.EmbedStore.Backend)
	}
}

func logAdapter(log obs.Logger) func(string, map[string]any) {
	return func(msg string, fields map[string]any) {
		log.Info(msg, fields)
	}
}
