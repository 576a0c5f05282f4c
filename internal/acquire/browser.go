package acquire

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/jonathan/content-strategist/internal/types"
)

// minRenderedRunes is the minimum extracted text length to consider a plain
// HTTP fetch sufficient. Shorter content usually means a JavaScript-rendered
// page whose real content only exists after script execution.
const minRenderedRunes = 500

// browserTimeout bounds one headless rendering pass.
const browserTimeout = 30 * time.Second

// renderAndExtract renders the page in a headless browser and re-runs the
// ordered extraction on the resulting HTML. Returns nil when rendering fails
// so the caller can keep the plain-HTTP result.
func (f *Fetcher) renderAndExtract(ctx context.Context, pageURL string) *types.AcquisitionResult {
	rendered, err := renderPage(ctx, pageURL, f.verbose)
	if err != nil {
		log.Printf("browser rendering failed, keeping HTTP result: %v", err)
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rendered))
	if err != nil {
		log.Printf("failed to parse rendered HTML: %v", err)
		return nil
	}
	result := extractInOrder(doc, pageURL)
	return &result
}

// renderPage loads a page in headless Chrome and returns the rendered HTML.
// Requires Chrome/Chromium to be installed on the system.
func renderPage(ctx context.Context, pageURL string, verbose bool) (string, error) {
	if verbose {
		log.Printf("[BROWSER] rendering %s", pageURL)
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, browserTimeout)
	defer cancel()

	var rendered string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		// Let client-side rendering settle before snapshotting.
		chromedp.Sleep(3*time.Second),
		chromedp.OuterHTML("html", &rendered),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	if verbose {
		log.Printf("[BROWSER] rendered HTML: %d bytes", len(rendered))
	}
	return rendered, nil
}
