package embedstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// qdrantOriginalIDField stores the namespaced hash in the point
// payload, since Qdrant point ids must be UUIDs or positive integers
// (same constraint the teacher documents in
// internal/persistence/databases/qdrant_vector.go).
const qdrantOriginalIDField = "hash_id"
const qdrantTextField = "text"

// QdrantStore is the optional Qdrant backend for a namespace.
type QdrantStore struct {
	*memCore

	client     *qdrant.Client
	collection string
	batchSize  int
	embedder   Embedder
}

// NewQdrantStore connects to dsn (e.g. "http://localhost:6334"),
// ensures the namespace's collection exists, loads existing points,
// and returns a ready Store.
func NewQdrantStore(ctx context.Context, dsn, namespace string, dimensions int, batchSize int, embedder Embedder) (*QdrantStore, error) {
	if err := validateNamespace(namespace); err != nil {
		return nil, err
	}
	parsed, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("embedstore[qdrant]: parse dsn: %w", err)
	}
	host := parsed.Hostname()
	if host == "" {
		host = "localhost"
	}
	port := 6334
	if p := parsed.Port(); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			port = n
		}
	}
	cfg := &qdrant.Config{Host: host, Port: port}
	if parsed.Scheme == "https" {
		cfg.UseTLS = true
	}
	if apiKey := parsed.Query().Get("api_key"); apiKey != "" {
		cfg.APIKey = apiKey
	}
	client, err := qdrant.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("embedstore[qdrant]: client: %w", err)
	}

	collection := "linearrag_" + namespace
	s := &QdrantStore{
		memCore:    newMemCore(namespace),
		client:     client,
		collection: collection,
		batchSize:  batchSize,
		embedder:   embedder,
	}

	exists, err := client.CollectionExists(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("embedstore[qdrant]: collection exists: %w", err)
	}
	if !exists {
		err = client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(dimensions),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return nil, fmt.Errorf("embedstore[qdrant]: create collection: %w", err)
		}
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *QdrantStore) load(ctx context.Context) error {
	limit := uint32(1000)
	var offset *qdrant.PointId
	var out []Row
	for {
		req := &qdrant.ScrollPoints{
			CollectionName: s.collection,
			Limit:          &limit,
			WithVectors:    qdrant.NewWithVectors(true),
			WithPayload:    qdrant.NewWithPayload(true),
			Offset:         offset,
		}
		points, err := s.client.Scroll(ctx, req)
		if err != nil {
			return fmt.Errorf("embedstore[qdrant]: scroll: %w", err)
		}
		for _, p := range points {
			payload := p.GetPayload()
			hash := payload[qdrantOriginalIDField].GetStringValue()
			text := payload[qdrantTextField].GetStringValue()
			out = append(out, Row{Text: text, Hash: hash, Vec: p.GetVectors().GetVector().GetData()})
		}
		if len(points) < int(limit) {
			break
		}
		offset = points[len(points)-1].GetId()
	}
	s.memCore.replace(out)
	return nil
}

func (s *QdrantStore) HashFor(text string) string { return HashFor(s.Namespace(), text) }

// InsertTexts implements Store.
func (s *QdrantStore) InsertTexts(ctx context.Context, texts []string) ([]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	newTexts := s.memCore.dedupe(texts)
	if len(newTexts) == 0 {
		return nil, nil
	}
	okTexts, vecs, _, err := encodeBatched(ctx, s.embedder, newTexts, s.batchSize)
	if err != nil {
		return nil, fmt.Errorf("embedstore[qdrant/%s]: encode: %w", s.Namespace(), err)
	}
	hashes := s.memCore.append(okTexts, vecs)

	points := make([]*qdrant.PointStruct, len(okTexts))
	for i, t := range okTexts {
		pointUUID := uuid.NewSHA1(uuid.NameSpaceOID, []byte(hashes[i])).String()
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(pointUUID),
			Vectors: qdrant.NewVectors(vecs[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				qdrantOriginalIDField: hashes[i],
				qdrantTextField:       t,
			}),
		}
	}
	if _, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{CollectionName: s.collection, Points: points}); err != nil {
		return hashes, fmt.Errorf("embedstore[qdrant/%s]: upsert: %w", s.Namespace(), err)
	}
	return hashes, nil
}
