package embedstore

import "sync"

// memCore is the in-process row table shared by every backend
// (Parquet, Postgres, Qdrant): the persistence layer only differs in
// how rows are flushed to and reloaded from durable storage.
type memCore struct {
	mu sync.RWMutex

	namespace string
	rows      []Row
	byText    map[string]string // text -> hash
	byHash    map[string]int    // hash -> index into rows
}

func newMemCore(namespace string) *memCore {
	return &memCore{
		namespace: namespace,
		byText:    make(map[string]string),
		byHash:    make(map[string]int),
	}
}

func (c *memCore) Namespace() string { return c.namespace }

func (c *memCore) TextByHash(hash string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx, ok := c.byHash[hash]
	if !ok {
		return "", false
	}
	return c.rows[idx].Text, true
}

func (c *memCore) HashByText(text string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.byText[text]
	return h, ok
}

func (c *memCore) VectorByHash(hash string) ([]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx, ok := c.byHash[hash]
	if !ok {
		return nil, false
	}
	return c.rows[idx].Vec, true
}

func (c *memCore) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rows)
}

func (c *memCore) All() []Row {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Row, len(c.rows))
	copy(out, c.rows)
	return out
}

// dedupe returns texts not already present, preserving order, and
// dropping duplicate inputs after the first occurrence (spec.md 4.1:
// "deduplicates against previously stored texts").
func (c *memCore) dedupe(texts []string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]struct{}, len(texts))
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if _, ok := c.byText[t]; ok {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// append adds newly-encoded rows under the lock and returns their
// hashes in input order.
func (c *memCore) append(texts []string, vecs [][]float32) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	hashes := make([]string, len(texts))
	for i, t := range texts {
		h := HashFor(c.namespace, t)
		if _, exists := c.byText[t]; exists {
			hashes[i] = c.byText[t]
			continue
		}
		idx := len(c.rows)
		c.rows = append(c.rows, Row{Text: t, Hash: h, Vec: vecs[i]})
		c.byText[t] = h
		c.byHash[h] = idx
		hashes[i] = h
	}
	return hashes
}

// replace swaps the in-memory table wholesale, used when loading from
// a persisted file.
func (c *memCore) replace(rows []Row) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = rows
	c.byText = make(map[string]string, len(rows))
	c.byHash = make(map[string]int, len(rows))
	for idx, r := range rows {
		c.byText[r.Text] = r.Hash
		c.byHash[r.Hash] = idx
	}
}
