package docsource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchConvertsHTMLToMarkdown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><head><title>Aspirin</title></head><body><article><h1>Aspirin</h1><p>Aspirin reduces fever and inflammation in adult patients with persistent symptoms.</p></article></body></html>`))
	}))
	defer srv.Close()

	f := NewFetcher()
	doc, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, doc.Markdown, "Aspirin reduces fever")
}

func TestFetchRejectsNonHTTPScheme(t *testing.T) {
	f := NewFetcher()
	_, err := f.Fetch(context.Background(), "file:///etc/passwd")
	assert.Error(t, err)
}
