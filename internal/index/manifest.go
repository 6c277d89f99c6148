package index

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Manifest tracks indexed documents across index() runs, mirroring
// IncrementalIndexManager's IndexManifest: content hashes of
// already-processed passages plus running counts, so a re-run can skip
// documents it has already embedded/NER'd/graphed (spec.md section
// 4.10's "unchanged steps are skipped").
type Manifest struct {
	Version   string            `json:"version"`
	CreatedAt string            `json:"created_at"`
	UpdatedAt string            `json:"updated_at"`
	DocHashes map[string]string `json:"doc_hashes"` // doc_hash -> timestamp

	EntityCount    int `json:"entity_count"`
	HyperedgeCount int `json:"hyperedge_count"`
	PassageCount   int `json:"passage_count"`

	State State `json:"state"`
}

// ComputeDocHash reproduces IncrementalIndexer.compute_doc_hash:
// md5(text).hexdigest().
func ComputeDocHash(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Store persists a Manifest at <namespace>/index_manifest.json.
type Store struct {
	path string

	mu       sync.Mutex
	manifest Manifest
}

// Open loads (or initializes) the manifest under namespaceDir, per
// spec.md section 4.10's resumability guarantee.
func Open(namespaceDir string) (*Store, error) {
	path := filepath.Join(namespaceDir, "index_manifest.json")
	s := &Store{path: path, manifest: newManifest()}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, nil //nolint:nilerr // corrupt/missing manifest starts empty, per spec.md section 7
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return s, nil //nolint:nilerr
	}
	if m.DocHashes == nil {
		m.DocHashes = make(map[string]string)
	}
	s.manifest = m
	return s, nil
}

func newManifest() Manifest {
	return Manifest{Version: "1.0", DocHashes: make(map[string]string), State: Empty}
}

// State returns the manifest's current pipeline stage.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manifest.State
}

// Advance moves the manifest to state, never backward (advancing past
// a later stage is a no-op, matching an idempotent re-entrant
// pipeline).
func (s *Store) Advance(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state > s.manifest.State {
		s.manifest.State = state
	}
}

// NewDocuments partitions texts into ones whose content hash is not
// yet recorded (to process) and the rest (already indexed),
// reproducing get_new_documents.
func (s *Store) NewDocuments(texts []string) (newTexts []string, newHashes []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range texts {
		h := ComputeDocHash(t)
		if _, ok := s.manifest.DocHashes[h]; ok {
			continue
		}
		newTexts = append(newTexts, t)
		newHashes = append(newHashes, h)
	}
	return newTexts, newHashes
}

// MarkIndexed records docHashes as indexed and updates the running
// counts, mirroring mark_documents_indexed.
func (s *Store) MarkIndexed(docHashes []string, entityCount, hyperedgeCount, passageCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC().Format(time.RFC3339)
	for _, h := range docHashes {
		s.manifest.DocHashes[h] = now
	}
	if entityCount > 0 {
		s.manifest.EntityCount = entityCount
	}
	if hyperedgeCount > 0 {
		s.manifest.HyperedgeCount = hyperedgeCount
	}
	if passageCount > 0 {
		s.manifest.PassageCount = passageCount
	}
}

// Stats returns a snapshot of the manifest's running totals.
func (s *Store) Stats() Manifest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.manifest
	out.DocHashes = make(map[string]string, len(s.manifest.DocHashes))
	for k, v := range s.manifest.DocHashes {
		out.DocHashes[k] = v
	}
	return out
}

// Flush persists the manifest atomically.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	if s.manifest.CreatedAt == "" {
		s.manifest.CreatedAt = now
	}
	s.manifest.UpdatedAt = now

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.manifest, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
