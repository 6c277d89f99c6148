package store

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linearrag/internal/objectstore"
)

func TestLocalFSStorePutGetExists(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalFSStore(dir)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = s.Put(ctx, "passage/passage.parquet", bytes.NewReader([]byte("hello")), objectstore.PutOptions{})
	require.NoError(t, err)

	exists, err := s.Exists(ctx, "passage/passage.parquet")
	require.NoError(t, err)
	assert.True(t, exists)

	r, attrs, err := s.Get(ctx, "passage/passage.parquet")
	require.NoError(t, err)
	defer r.Close()
	assert.EqualValues(t, 5, attrs.Size)
}

func TestLocalFSStoreGetMissingReturnsNotFound(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalFSStore(dir)
	require.NoError(t, err)

	_, _, err = s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, objectstore.ErrNotFound)
}

func TestMirrorCopiesAllObjects(t *testing.T) {
	src := objectstore.NewMemoryStore()
	dst := objectstore.NewMemoryStore()
	ctx := context.Background()

	_, err := src.Put(ctx, "namespace/a.txt", bytes.NewReader([]byte("a")), objectstore.PutOptions{})
	require.NoError(t, err)
	_, err = src.Put(ctx, "namespace/b.txt", bytes.NewReader([]byte("b")), objectstore.PutOptions{})
	require.NoError(t, err)

	require.NoError(t, Mirror(ctx, src, dst, "namespace/"))

	exists, err := dst.Exists(ctx, "namespace/a.txt")
	require.NoError(t, err)
	assert.True(t, exists)
}
