// Package embedclient is the concrete sentence-embedding collaborator
// named "out of scope" by spec.md section 1: a thin HTTP client over an
// OpenAI-compatible /embeddings endpoint (llama.cpp, vLLM, or a hosted
// provider), shaped to satisfy embedstore.Embedder.
package embedclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"linearrag/internal/embedstore"
)

// Config is the subset of connection details a client needs.
type Config struct {
	BaseURL    string
	Model      string
	APIKey     string
	TimeoutSec int
}

// Embedder is the richer, teacher-shaped contract: embedstore.Embedder
// plus identity and liveness, mirrored from the teacher's
// internal/rag/embedder.Embedder interface.
type Embedder interface {
	embedstore.Embedder
	Name() string
	Dimension() int
	Ping(ctx context.Context) error
}

// clientEmbedder calls an OpenAI-compatible embeddings endpoint one
// chunk at a time, spaced by minDelay between calls (NewClient leaves
// it at zero, so no delay is applied) — the same shape as the
// teacher's clientEmbedder, which sends single-item batches to avoid
// llama.cpp batching crashes.
type clientEmbedder struct {
	cfg       Config
	http      *http.Client
	dim       int
	batchSize int

	mu       sync.Mutex
	lastCall time.Time
	minDelay time.Duration
}

// NewClient constructs an embedder that calls cfg.BaseURL + "/embeddings".
func NewClient(cfg Config, dim int) Embedder {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &clientEmbedder{
		cfg:       cfg,
		http:      &http.Client{Timeout: timeout},
		dim:       dim,
		batchSize: 1,
	}
}

func (c *clientEmbedder) Name() string   { return c.cfg.Model }
func (c *clientEmbedder) Dimension() int { return c.dim }

func (c *clientEmbedder) Ping(ctx context.Context) error {
	_, err := c.rateLimitedCall(ctx, []string{"ping"})
	return err
}

func (c *clientEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if len(texts) <= c.batchSize {
		return c.rateLimitedCall(ctx, texts)
	}
	var all [][]float32
	for i := 0; i < len(texts); i += c.batchSize {
		end := i + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		got, err := c.rateLimitedCall(ctx, texts[i:end])
		if err != nil {
			return all, err
		}
		all = append(all, got...)
	}
	return all, nil
}

func (c *clientEmbedder) rateLimitedCall(ctx context.Context, texts []string) ([][]float32, error) {
	c.mu.Lock()
	if !c.lastCall.IsZero() {
		if elapsed := time.Since(c.lastCall); elapsed < c.minDelay {
			time.Sleep(c.minDelay - elapsed)
		}
	}
	c.lastCall = time.Now()
	c.mu.Unlock()
	return c.embed(ctx, texts)
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

func (c *clientEmbedder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{Model: c.cfg.Model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("embedclient: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embedclient: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedclient: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("embedclient: %w: status %d", embedstore.ErrOOM, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedclient: status %d: %s", resp.StatusCode, string(data))
	}

	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("embedclient: decode response: %w", err)
	}
	out := make([][]float32, len(texts))
	for _, d := range parsed.Data {
		if d.Index < 0 || d.Index >= len(out) {
			continue
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}
