// Package config holds the tunables for a LinearRAG index and query
// pipeline. It mirrors the original system's LinearRAGConfig
// (src/config.py) field for field so defaults stay comparable across
// ports.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config collects every tunable recognized by the retrieval core.
// Zero values are not meaningful; always start from Default().
type Config struct {
	// I/O
	WorkingDir  string `yaml:"working_dir"`
	DatasetName string `yaml:"dataset_name"`
	BatchSize   int    `yaml:"batch_size"`

	// Models (black-box external collaborators; names/endpoints only)
	EmbeddingModel string `yaml:"embedding_model"`
	LLMModel       string `yaml:"llm_model"`

	// Concurrency
	MaxWorkers int `yaml:"max_workers"`

	// Retrieval
	RetrievalTopK         int     `yaml:"retrieval_top_k"`
	UseCandidateFiltering bool    `yaml:"use_candidate_filtering"`
	CandidatePoolSize     int     `yaml:"candidate_pool_size"`
	MaxIterations         int     `yaml:"max_iterations"`
	IterationThreshold    float64 `yaml:"iteration_threshold"`
	TopKSentence          int     `yaml:"top_k_sentence"`
	PassageRatio          float64 `yaml:"passage_ratio"`
	PassageNodeWeight     float64 `yaml:"passage_node_weight"`
	Damping               float64 `yaml:"damping"`

	// Hypergraph
	UseHypergraph            bool    `yaml:"use_hypergraph"`
	MinEntitiesPerHyperedge  int     `yaml:"min_entities_per_hyperedge"`
	MaxEntitiesPerHyperedge  int     `yaml:"max_entities_per_hyperedge"`
	MaxHyperedgeScoreBoost   float64 `yaml:"max_hyperedge_score_boost"`
	HyperedgeTopK            int     `yaml:"hyperedge_top_k"`
	HyperedgeRetrievalThresh float64 `yaml:"hyperedge_retrieval_threshold"`
	HyperedgeEntityBoost     float64 `yaml:"hyperedge_entity_boost"`
	HyperedgeNodeWeight      float64 `yaml:"hyperedge_node_weight"`
	MergeHypergraph          bool    `yaml:"merge_hypergraph"`

	// NER
	NERBatchSize int `yaml:"ner_batch_size"`

	// Incremental indexing / caching
	EnableIncrementalIndex  bool   `yaml:"enable_incremental_index"`
	EnableMultiLevelCache   bool   `yaml:"enable_multi_level_cache"`
	CacheDir                string `yaml:"cache_dir"`

	// Backends
	EmbedStore  EmbedStoreConfig  `yaml:"embed_store"`
	LLM         LLMConfig         `yaml:"llm"`
	Cache       CacheConfig       `yaml:"cache"`
	Analytics   AnalyticsConfig   `yaml:"analytics"`
	ObjectStore ObjectStoreConfig `yaml:"object_store"`
	Events      EventsConfig      `yaml:"events"`
}

// EmbedStoreConfig selects the embedding-store persistence backend.
type EmbedStoreConfig struct {
	Backend    string `yaml:"backend"` // "parquet" (default), "postgres", "qdrant"
	PostgresDSN string `yaml:"postgres_dsn"`
	QdrantDSN   string `yaml:"qdrant_dsn"`
	Dimensions  int    `yaml:"dimensions"`
	Metric      string `yaml:"metric"` // cosine|l2|ip
}

// LLMConfig selects the single-shot answerer backend.
type LLMConfig struct {
	Provider   string `yaml:"provider"` // "openai", "anthropic", "genai"
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	TimeoutSec int    `yaml:"timeout_seconds"`
}

// CacheConfig selects the multi-level cache backend.
type CacheConfig struct {
	Backend  string `yaml:"backend"` // "disk" (default), "redis"
	RedisDSN string `yaml:"redis_dsn"`
}

// AnalyticsConfig configures the optional ClickHouse QA-run sink.
type AnalyticsConfig struct {
	Enabled bool   `yaml:"enabled"`
	DSN     string `yaml:"dsn"`
	Table   string `yaml:"table"`
}

// ObjectStoreConfig selects the artifact storage backend used for
// persisted indexes, graphs, and hypergraphs (spec.md section 6's
// "<working_dir>/<dataset_name>/" tree, optionally mirrored to S3).
type ObjectStoreConfig struct {
	Backend               string    `yaml:"backend"` // "local" (default), "s3"
	Bucket                string    `yaml:"bucket"`
	Region                string    `yaml:"region"`
	Prefix                string    `yaml:"prefix"`
	Endpoint              string    `yaml:"endpoint"` // non-empty for S3-compatible services (MinIO)
	UsePathStyle          bool      `yaml:"use_path_style"`
	AccessKey             string    `yaml:"access_key"`
	SecretKey             string    `yaml:"secret_key"`
	TLSInsecureSkipVerify bool      `yaml:"tls_insecure_skip_verify"`
	SSE                   SSEConfig `yaml:"sse"`
}

// SSEConfig configures S3 server-side encryption.
type SSEConfig struct {
	Mode     string `yaml:"mode"` // "", "sse-s3", "sse-kms"
	KMSKeyID string `yaml:"kms_key_id"`
}

// EventsConfig configures the optional index-state-transition event stream.
type EventsConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// Default returns the configuration with every default named in
// spec.md section 6, matching src/config.py's keyword defaults.
func Default() Config {
	return Config{
		WorkingDir:  "import",
		DatasetName: "pubmed",
		BatchSize:   32,

		EmbeddingModel: "sentence-transformers/all-mpnet-base-v2",
		LLMModel:       "gpt-4o-mini",

		MaxWorkers: 4,

		RetrievalTopK:         3,
		UseCandidateFiltering: true,
		CandidatePoolSize:     500,
		MaxIterations:         2,
		IterationThreshold:    0.3,
		TopKSentence:          5,
		PassageRatio:          0.7,
		PassageNodeWeight:     1.0,
		Damping:               0.85,

		UseHypergraph:            true,
		MinEntitiesPerHyperedge:  2,
		MaxEntitiesPerHyperedge:  10,
		MaxHyperedgeScoreBoost:   1.5,
		HyperedgeTopK:            30,
		HyperedgeRetrievalThresh: 0.3,
		HyperedgeEntityBoost:     1.2,
		HyperedgeNodeWeight:      1.2,
		MergeHypergraph:          false,

		NERBatchSize: 32,

		EnableIncrementalIndex: true,
		EnableMultiLevelCache:  true,
		CacheDir:               "cache",

		EmbedStore: EmbedStoreConfig{Backend: "parquet", Metric: "cosine"},
		LLM:        LLMConfig{Provider: "openai", TimeoutSec: 60},
		Cache:      CacheConfig{Backend: "disk"},
		ObjectStore: ObjectStoreConfig{Backend: "local"},
	}
}

// Load reads a YAML file into Default(), so unset fields keep their
// documented defaults rather than becoming zero values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Namespace returns the sealed working directory for this config's
// dataset (spec.md section 6: "<working_dir>/<dataset_name>/").
func (c Config) Namespace() string {
	return c.WorkingDir + "/" + c.DatasetName
}
