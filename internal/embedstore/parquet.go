package embedstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/segmentio/parquet-go"
)

// parquetRow is the on-disk schema named in spec.md section 6:
// columns (text:str, hash_id:str, embedding:list<float>).
type parquetRow struct {
	Text      string    `parquet:"text"`
	HashID    string    `parquet:"hash_id"`
	Embedding []float32 `parquet:"embedding,list"`
}

// ParquetStore is the default Store backend: one Parquet file per
// namespace under <working_dir>/<dataset_name>/, matching
// src/embedding_store.py's db_filename convention.
type ParquetStore struct {
	*memCore

	path      string
	batchSize int
	embedder  Embedder
	flushMu   sync.Mutex
}

// NewParquetStore opens (or creates) the Parquet-backed store at
// path for the given namespace. Existing data is loaded immediately;
// a missing or corrupt file starts the store empty and logs rather
// than failing (spec.md section 7).
func NewParquetStore(path, namespace string, batchSize int, embedder Embedder, log func(msg string, fields map[string]any)) (*ParquetStore, error) {
	if err := validateNamespace(namespace); err != nil {
		return nil, err
	}
	if batchSize <= 0 {
		batchSize = 32
	}
	s := &ParquetStore{
		memCore:   newMemCore(namespace),
		path:      path,
		batchSize: batchSize,
		embedder:  embedder,
	}
	if err := s.load(log); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ParquetStore) load(log func(string, map[string]any)) error {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		if log != nil {
			log("embedstore: open failed, starting empty", map[string]any{"namespace": s.Namespace(), "path": s.path, "error": err.Error()})
		}
		return nil
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil
	}
	reader := parquet.NewGenericReader[parquetRow](f, parquet.SchemaOf(parquetRow{}))
	defer reader.Close()

	rows := make([]Row, 0, info.Size()/64)
	buf := make([]parquetRow, 256)
	for {
		n, rerr := reader.Read(buf)
		for i := 0; i < n; i++ {
			rows = append(rows, Row{Text: buf[i].Text, Hash: buf[i].HashID, Vec: buf[i].Embedding})
		}
		if rerr != nil {
			break
		}
	}
	s.memCore.replace(rows)
	if log != nil {
		log("embedstore: loaded", map[string]any{"namespace": s.Namespace(), "rows": len(rows)})
	}
	return nil
}

// InsertTexts implements Store.
func (s *ParquetStore) InsertTexts(ctx context.Context, texts []string) ([]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	newTexts := s.memCore.dedupe(texts)
	if len(newTexts) == 0 {
		return nil, nil
	}
	okTexts, vecs, _, err := encodeBatched(ctx, s.embedder, newTexts, s.batchSize)
	if err != nil {
		return nil, fmt.Errorf("embedstore[%s]: encode: %w", s.Namespace(), err)
	}
	hashes := s.memCore.append(okTexts, vecs)
	if err := s.flush(); err != nil {
		return hashes, fmt.Errorf("embedstore[%s]: flush: %w", s.Namespace(), err)
	}
	return hashes, nil
}

func (s *ParquetStore) HashFor(text string) string { return HashFor(s.Namespace(), text) }

func (s *ParquetStore) flush() error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	writer := parquet.NewGenericWriter[parquetRow](f, parquet.SchemaOf(parquetRow{}))
	for _, r := range s.memCore.All() {
		if _, err := writer.Write([]parquetRow{{Text: r.Text, HashID: r.Hash, Embedding: r.Vec}}); err != nil {
			f.Close()
			return err
		}
	}
	if err := writer.Close(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
