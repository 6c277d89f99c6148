package cache

import (
	"context"
	"encoding/gob"
	"os"
	"path/filepath"
	"sync"
)

// DiskLevel persists a single cache level to one gob-encoded file,
// mirroring cache_manager.py's pickle.dump/pickle.load round trip for
// NERCache and HypergraphCache (encoding/gob is this codebase's
// pickle analogue, same as hypergraph.Store's adjacency snapshot).
type DiskLevel struct {
	path string

	mu      sync.RWMutex
	entries map[string][]byte
	stats   Stats
}

// NewDiskLevel loads path if present, starting empty otherwise
// (spec.md section 7: "missing input file / corrupt ... cache: log,
// treat as empty, continue").
func NewDiskLevel(path string) *DiskLevel {
	d := &DiskLevel{path: path, entries: make(map[string][]byte)}
	d.load()
	return d
}

func (d *DiskLevel) load() {
	f, err := os.Open(d.path)
	if err != nil {
		return
	}
	defer f.Close()

	var entries map[string][]byte
	if err := gob.NewDecoder(f).Decode(&entries); err != nil {
		return
	}
	d.entries = entries
	d.stats.Size = len(entries)
}

func (d *DiskLevel) Get(ctx context.Context, key string) ([]byte, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.entries[key]
	if ok {
		d.stats.Hits++
	} else {
		d.stats.Misses++
	}
	return v, ok, nil
}

func (d *DiskLevel) Set(ctx context.Context, key string, value []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[key] = value
	d.stats.Size = len(d.entries)
	return nil
}

func (d *DiskLevel) Exists(ctx context.Context, key string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.entries[key]
	return ok, nil
}

func (d *DiskLevel) Clear(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = make(map[string][]byte)
	d.stats = Stats{}
	if err := os.Remove(d.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (d *DiskLevel) Stats() Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.stats
}

// Save persists the level to disk atomically (temp file + rename),
// matching NERCache.save/HypergraphCache.save.
func (d *DiskLevel) Save() error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return err
	}
	tmp := d.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(d.entries); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, d.path)
}

var _ Level = (*DiskLevel)(nil)
