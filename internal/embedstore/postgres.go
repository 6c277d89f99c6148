package embedstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PostgresStore is the optional Postgres+pgvector backend for a
// namespace's embedding table, grounded on the teacher's
// internal/persistence/databases/postgres_vector.go pattern (a
// `CREATE EXTENSION IF NOT EXISTS vector` table keyed by a stable id)
// but shaped to this package's (text, hash, vector) row contract
// instead of a generic upsert-by-id VectorStore.
type PostgresStore struct {
	*memCore

	pool      *pgxpool.Pool
	table     string
	batchSize int
	embedder  Embedder
}

// NewPostgresStore connects to dsn, ensures the namespace's table
// exists, loads existing rows, and returns a ready Store.
func NewPostgresStore(ctx context.Context, dsn, namespace string, dimensions int, batchSize int, embedder Embedder) (*PostgresStore, error) {
	if err := validateNamespace(namespace); err != nil {
		return nil, err
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("embedstore[postgres]: parse dsn: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgvector.RegisterTypes(ctx, conn)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("embedstore[postgres]: connect: %w", err)
	}
	s := &PostgresStore{
		memCore:   newMemCore(namespace),
		pool:      pool,
		table:     "linearrag_embeddings_" + namespace,
		batchSize: batchSize,
		embedder:  embedder,
	}
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return nil, fmt.Errorf("embedstore[postgres]: create extension: %w", err)
	}
	vecType := "vector"
	if dimensions > 0 {
		vecType = fmt.Sprintf("vector(%d)", dimensions)
	}
	if _, err := pool.Exec(ctx, fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
  hash_id TEXT PRIMARY KEY,
  text TEXT NOT NULL,
  embedding %s NOT NULL
)`, s.table, vecType)); err != nil {
		return nil, fmt.Errorf("embedstore[postgres]: create table: %w", err)
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) load(ctx context.Context) error {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`SELECT hash_id, text, embedding FROM %s`, s.table))
	if err != nil {
		return fmt.Errorf("embedstore[postgres]: load: %w", err)
	}
	defer rows.Close()
	var out []Row
	for rows.Next() {
		var hash, text string
		var vec pgvector.Vector
		if err := rows.Scan(&hash, &text, &vec); err != nil {
			return fmt.Errorf("embedstore[postgres]: scan: %w", err)
		}
		out = append(out, Row{Text: text, Hash: hash, Vec: vec.Slice()})
	}
	s.memCore.replace(out)
	return rows.Err()
}

func (s *PostgresStore) HashFor(text string) string { return HashFor(s.Namespace(), text) }

// InsertTexts implements Store.
func (s *PostgresStore) InsertTexts(ctx context.Context, texts []string) ([]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	newTexts := s.memCore.dedupe(texts)
	if len(newTexts) == 0 {
		return nil, nil
	}
	okTexts, vecs, _, err := encodeBatched(ctx, s.embedder, newTexts, s.batchSize)
	if err != nil {
		return nil, fmt.Errorf("embedstore[postgres/%s]: encode: %w", s.Namespace(), err)
	}
	hashes := s.memCore.append(okTexts, vecs)

	batch := &pgx.Batch{}
	for i, t := range okTexts {
		batch.Queue(fmt.Sprintf(`
INSERT INTO %s (hash_id, text, embedding) VALUES ($1, $2, $3)
ON CONFLICT (hash_id) DO NOTHING`, s.table), hashes[i], t, pgvector.NewVector(vecs[i]))
	}
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range okTexts {
		if _, err := br.Exec(); err != nil {
			return hashes, fmt.Errorf("embedstore[postgres/%s]: insert: %w", s.Namespace(), err)
		}
	}
	return hashes, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() { s.pool.Close() }
