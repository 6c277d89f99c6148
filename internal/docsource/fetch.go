// Package docsource implements the supplemented web-ingestion path:
// fetching a URL, extracting its main article, and converting it to
// markdown passage text suitable for index.Pipeline.Run. Grounded on
// the teacher's internal/tools/web.Fetcher, stripped of its tool-call
// wrapper and UA rotation.
package docsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	readability "github.com/go-shiori/go-readability"
)

// Document is one fetched and converted page.
type Document struct {
	URL          string
	FinalURL     string
	Title        string
	Markdown     string
	UsedReadable bool
	FetchedAt    time.Time
}

// Fetcher downloads pages and converts their main content to markdown.
type Fetcher struct {
	client         *http.Client
	maxBytes       int64
	preferReadable bool
}

// NewFetcher builds a Fetcher with hardened defaults: 20s timeout,
// 8MB body cap, readability-first extraction.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client:         &http.Client{Timeout: 20 * time.Second},
		maxBytes:       8 * 1024 * 1024,
		preferReadable: true,
	}
}

// Fetch downloads rawURL and converts its extracted article (falling
// back to the full document) to markdown.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("docsource: invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("docsource: unsupported scheme %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("docsource: fetch: %w", err)
	}
	defer resp.Body.Close()

	finalURL := resp.Request.URL.String()
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("docsource: read body: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("docsource: response exceeds max bytes (%d)", f.maxBytes)
	}

	html := string(body)
	var (
		articleHTML string
		title       string
		usedRead    bool
	)
	if f.preferReadable {
		base, _ := url.Parse(finalURL)
		art, rerr := readability.FromReader(strings.NewReader(html), base)
		if rerr == nil && strings.TrimSpace(art.Content) != "" {
			articleHTML = art.Content
			title = strings.TrimSpace(art.Title)
			usedRead = true
		}
	}
	if articleHTML == "" {
		articleHTML = html
	}

	md, err := htmltomarkdown.ConvertString(articleHTML, converter.WithDomain(baseOrigin(finalURL)))
	if err != nil {
		return nil, fmt.Errorf("docsource: html to markdown: %w", err)
	}

	return &Document{
		URL:          rawURL,
		FinalURL:     finalURL,
		Title:        title,
		Markdown:     strings.TrimSpace(md),
		UsedReadable: usedRead,
		FetchedAt:    time.Now(),
	}, nil
}

func baseOrigin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
