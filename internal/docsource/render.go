package docsource

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// Renderer fetches a page's fully rendered DOM via a headless Chrome
// instance, for JS-heavy pages Fetcher's plain HTTP GET can't read,
// grounded on internal/tools/web/screenshot.go's chromedp wiring.
type Renderer struct {
	execPath string
	timeout  time.Duration
}

// NewRenderer builds a Renderer. execPath overrides the Chrome/Chromium
// binary chromedp launches; empty uses chromedp's own discovery.
func NewRenderer(execPath string) *Renderer {
	return &Renderer{execPath: execPath, timeout: 30 * time.Second}
}

// RenderHTML navigates to rawURL in headless Chrome, waits for the
// body to be ready, and returns the rendered outer HTML.
func (r *Renderer) RenderHTML(ctx context.Context, rawURL string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
	)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, r.timeout)
	defer cancelRun()

	var html string
	tasks := chromedp.Tasks{
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(runCtx, tasks); err != nil {
		return "", fmt.Errorf("docsource: render %s: %w", rawURL, err)
	}
	return html, nil
}
