// Package store is the artifact-storage seam for a namespace's
// persisted tree (spec.md section 6: embedding-store Parquet files,
// GraphML, hypergraph adjacency/metadata, the NER cache, and the index
// manifest). Local disk is the default, matching every package that
// currently writes directly via os.File; LocalFSStore adapts that same
// tree to objectstore.ObjectStore so it can optionally be mirrored to
// S3 via Mirror.
package store

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"linearrag/internal/objectstore"
)

// LocalFSStore implements objectstore.ObjectStore by reading and
// writing files beneath root, keys treated as slash-separated relative
// paths, mirroring objectstore.MemoryStore's behavior but backed by
// disk instead of a map.
type LocalFSStore struct {
	root string
}

// NewLocalFSStore roots a LocalFSStore at dir, creating it if absent.
func NewLocalFSStore(dir string) (*LocalFSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalFSStore{root: dir}, nil
}

func (s *LocalFSStore) abs(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func (s *LocalFSStore) Get(ctx context.Context, key string) (io.ReadCloser, objectstore.ObjectAttrs, error) {
	path := s.abs(key)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, objectstore.ObjectAttrs{}, objectstore.ErrNotFound
	}
	if err != nil {
		return nil, objectstore.ObjectAttrs{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, objectstore.ObjectAttrs{}, err
	}
	return f, attrsFor(key, info), nil
}

func (s *LocalFSStore) Put(ctx context.Context, key string, r io.Reader, opts objectstore.PutOptions) (string, error) {
	path := s.abs(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", err
	}
	return "\"" + key + "-local\"", nil
}

func (s *LocalFSStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.abs(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *LocalFSStore) List(ctx context.Context, opts objectstore.ListOptions) (objectstore.ListResult, error) {
	var keys []string
	err := filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if opts.Prefix != "" && !strings.HasPrefix(key, opts.Prefix) {
			return nil
		}
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		return objectstore.ListResult{}, err
	}
	sort.Strings(keys)

	objects := make([]objectstore.ObjectAttrs, 0, len(keys))
	for _, key := range keys {
		info, err := os.Stat(s.abs(key))
		if err != nil {
			continue
		}
		objects = append(objects, attrsFor(key, info))
	}
	if opts.MaxKeys > 0 && len(objects) > opts.MaxKeys {
		return objectstore.ListResult{Objects: objects[:opts.MaxKeys], IsTruncated: true}, nil
	}
	return objectstore.ListResult{Objects: objects}, nil
}

func (s *LocalFSStore) Head(ctx context.Context, key string) (objectstore.ObjectAttrs, error) {
	info, err := os.Stat(s.abs(key))
	if os.IsNotExist(err) {
		return objectstore.ObjectAttrs{}, objectstore.ErrNotFound
	}
	if err != nil {
		return objectstore.ObjectAttrs{}, err
	}
	return attrsFor(key, info), nil
}

func (s *LocalFSStore) Copy(ctx context.Context, srcKey, dstKey string) error {
	data, err := os.ReadFile(s.abs(srcKey))
	if os.IsNotExist(err) {
		return objectstore.ErrNotFound
	}
	if err != nil {
		return err
	}
	_, err = s.Put(ctx, dstKey, bytes.NewReader(data), objectstore.PutOptions{})
	return err
}

func (s *LocalFSStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(s.abs(key))
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}

func attrsFor(key string, info os.FileInfo) objectstore.ObjectAttrs {
	return objectstore.ObjectAttrs{
		Key:          key,
		Size:         info.Size(),
		LastModified: info.ModTime().UTC(),
	}
}

var _ objectstore.ObjectStore = (*LocalFSStore)(nil)
