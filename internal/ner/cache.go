package ner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Result is the on-disk shape named by spec.md section 6:
// ner_results.json holding {passage_hash_id_to_entities, sentence_to_entities}.
type Result struct {
	PassageHashIDToEntities map[string][]string `json:"passage_hash_id_to_entities"`
	SentenceToEntities      map[string][]string `json:"sentence_to_entities"`
}

func newResult() *Result {
	return &Result{
		PassageHashIDToEntities: make(map[string][]string),
		SentenceToEntities:      make(map[string][]string),
	}
}

// merge folds sentences/entities for one passage into the result.
func (r *Result) merge(passageHash string, passageEntities []string, sentences []Sentence) {
	r.PassageHashIDToEntities[passageHash] = passageEntities
	for _, s := range sentences {
		if existing, ok := r.SentenceToEntities[s.Text]; ok {
			r.SentenceToEntities[s.Text] = unionSorted(existing, s.Entities)
			continue
		}
		r.SentenceToEntities[s.Text] = s.Entities
	}
}

func unionSorted(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, v := range list {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// Cache persists a Result at ner_results.json beneath a namespace
// directory, so re-runs of index() (spec.md section 4.10) skip
// already-extracted passages (spec.md testable property 5: "must not
// re-embed/re-extract previously seen texts").
type Cache struct {
	path string

	mu     sync.Mutex
	result *Result
}

// NewCache opens (or initializes) the cache file at
// <namespace>/ner_results.json. A missing or corrupt file starts
// empty and logs, per spec.md section 7.
func NewCache(namespaceDir string, log func(string, map[string]any)) (*Cache, error) {
	path := filepath.Join(namespaceDir, "ner_results.json")
	c := &Cache{path: path, result: newResult()}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		if log != nil {
			log("ner: cache open failed, starting empty", map[string]any{"path": path, "error": err.Error()})
		}
		return c, nil
	}
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		if log != nil {
			log("ner: cache corrupt, starting empty", map[string]any{"path": path, "error": err.Error()})
		}
		return c, nil
	}
	if r.PassageHashIDToEntities == nil {
		r.PassageHashIDToEntities = make(map[string][]string)
	}
	if r.SentenceToEntities == nil {
		r.SentenceToEntities = make(map[string][]string)
	}
	c.result = &r
	return c, nil
}

// Has reports whether passageHash already has cached NER output.
func (c *Cache) Has(passageHash string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.result.PassageHashIDToEntities[passageHash]
	return ok
}

// Extract runs adapter on text for passageHash unless already cached,
// merges the result, and returns the passage's entity set.
func (c *Cache) Extract(ctx context.Context, adapter Adapter, passageHash, text string) ([]string, error) {
	c.mu.Lock()
	if existing, ok := c.result.PassageHashIDToEntities[passageHash]; ok {
		c.mu.Unlock()
		return existing, nil
	}
	c.mu.Unlock()

	entities, sentences, err := adapter.ExtractPassage(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("ner: extract passage %s: %w", passageHash, err)
	}

	c.mu.Lock()
	c.result.merge(passageHash, entities, sentences)
	c.mu.Unlock()
	return entities, nil
}

// Result returns a snapshot of the current cache contents.
func (c *Cache) Result() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Result{
		PassageHashIDToEntities: copyMap(c.result.PassageHashIDToEntities),
		SentenceToEntities:      copyMap(c.result.SentenceToEntities),
	}
}

func copyMap(m map[string][]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, v := range m {
		cp := make([]string, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

// Flush persists the cache to disk atomically.
func (c *Cache) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("ner: mkdir: %w", err)
	}
	data, err := json.MarshalIndent(c.result, "", "  ")
	if err != nil {
		return fmt.Errorf("ner: marshal: %w", err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("ner: write: %w", err)
	}
	return os.Rename(tmp, c.path)
}
