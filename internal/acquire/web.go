package acquire

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/jonathan/content-strategist/internal/types"
)

// Scrape bounds. Attempts include the initial request; the delay between
// attempts is fixed.
const (
	fetchTimeout     = 15 * time.Second
	maxAttempts      = 3
	retryDelay       = 1 * time.Second
	maxDocumentRunes = 10000
	truncationMarker = "\n[内容过长，已截断]"
	minLineRunes     = 5
)

// browserHeaders make the scrape look like an ordinary browser visit; profile
// hosts return empty shells to obvious bots.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language": "zh-CN,zh;q=0.8,zh-TW;q=0.7,zh-HK;q=0.5,en-US;q=0.3,en;q=0.2",
}

// noisePatterns drop platform boilerplate lines from extracted text.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`小红书.*号.*`),
	regexp.MustCompile(`©.*小红书`),
	regexp.MustCompile(`下载小红书`),
	regexp.MustCompile(`APP.*内打开`),
	regexp.MustCompile(`广告`),
}

// retryPrefixes are the failure prefixes that trigger another scrape attempt.
var retryPrefixes = []string{PrefixRequest, PrefixPageFetch, PrefixExtract}

// Fetcher scrapes creator-profile pages into ordered text-and-image documents.
type Fetcher struct {
	httpClient *http.Client
	sleep      func(time.Duration)
	useBrowser bool
	verbose    bool
}

// NewFetcher creates a Fetcher. When useBrowser is true, pages whose plain
// HTTP response yields too little text are re-rendered in a headless browser.
func NewFetcher(useBrowser, verbose bool) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: fetchTimeout},
		sleep:      time.Sleep,
		useBrowser: useBrowser,
		verbose:    verbose,
	}
}

// FromURL fetches and extracts profile content, retrying on empty or failed
// results up to maxAttempts total attempts with a fixed delay between them.
func (f *Fetcher) FromURL(ctx context.Context, pageURL string) types.AcquisitionResult {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		log.Printf("profile fetch attempt %d/%d: %s", attempt, maxAttempts, pageURL)
		result := f.fetchOnce(ctx, pageURL)
		if !needsRetry(result) {
			return result
		}
		if attempt < maxAttempts {
			log.Printf("profile fetch attempt %d failed (empty or error), retrying", attempt)
			f.sleep(retryDelay)
		}
	}
	return types.AcquisitionResult{
		Document: fmt.Sprintf("%s（%d次），无法获取网页内容", PrefixRetriesSpent, maxAttempts),
	}
}

// needsRetry reports whether a scrape result is empty or a retryable failure.
func needsRetry(result types.AcquisitionResult) bool {
	doc := strings.TrimSpace(result.Document)
	if doc == "" {
		return true
	}
	for _, prefix := range retryPrefixes {
		if strings.HasPrefix(doc, prefix) {
			return true
		}
	}
	return false
}

// fetchOnce issues a single GET and extracts the page.
func (f *Fetcher) fetchOnce(ctx context.Context, pageURL string) types.AcquisitionResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return types.AcquisitionResult{Document: fmt.Sprintf("%s: %v", PrefixPageFetch, err)}
	}
	for key, value := range browserHeaders {
		req.Header.Set(key, value)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return types.AcquisitionResult{Document: fmt.Sprintf("%s: %v", PrefixPageFetch, err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return types.AcquisitionResult{Document: fmt.Sprintf("%s，状态码: %d", PrefixRequest, resp.StatusCode)}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return types.AcquisitionResult{Document: fmt.Sprintf("%s: %v", PrefixExtract, err)}
	}

	result := extractInOrder(doc, pageURL)

	// SPA pages serve an empty shell over plain HTTP; render them for real.
	if f.useBrowser && utf8.RuneCountInString(strings.TrimSpace(result.Document)) < minRenderedRunes {
		if rendered := f.renderAndExtract(ctx, pageURL); rendered != nil {
			return *rendered
		}
	}
	return result
}

// extractInOrder walks the document body in DOM order, interleaving cleaned
// text blocks and image references so a downstream image-order-sensitive
// analysis sees text next to its illustrating image.
func extractInOrder(doc *goquery.Document, pageURL string) types.AcquisitionResult {
	base, err := url.Parse(pageURL)
	if err != nil {
		return types.AcquisitionResult{Document: fmt.Sprintf("%s: %v", PrefixExtract, err)}
	}

	body := doc.Find("body")
	if body.Length() == 0 {
		return types.AcquisitionResult{Succeeded: true}
	}

	w := &orderedWalker{base: base}
	for _, node := range body.Nodes {
		w.walk(node)
	}
	w.flushText()

	document := strings.Join(w.parts, "")
	if utf8.RuneCountInString(document) > maxDocumentRunes {
		runes := []rune(document)
		document = string(runes[:maxDocumentRunes]) + truncationMarker
	}

	return types.AcquisitionResult{
		Document:  document,
		ImageRefs: w.images,
		Succeeded: true,
	}
}

// orderedWalker accumulates text runs and flushes them whenever an image
// interrupts the flow, preserving document order in the assembled parts.
type orderedWalker struct {
	base    *url.URL
	textBuf []string
	parts   []string
	images  []string
}

// skippedTags have no user-visible content worth extracting.
var skippedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"meta":     true,
	"link":     true,
}

func (w *orderedWalker) walk(n *html.Node) {
	switch n.Type {
	case html.ElementNode:
		if skippedTags[n.Data] {
			return
		}
		if n.Data == "img" {
			w.visitImage(n)
			return
		}
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			w.textBuf = append(w.textBuf, text)
		}
		return
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		w.walk(child)
	}
}

func (w *orderedWalker) visitImage(n *html.Node) {
	src := attrValue(n, "src")
	if src == "" {
		src = attrValue(n, "data-src")
	}
	if src == "" || strings.HasPrefix(src, "data:image") {
		return
	}
	imgURL := src
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		if ref, err := url.Parse(src); err == nil {
			imgURL = w.base.ResolveReference(ref).String()
		}
	}
	w.flushText()
	w.parts = append(w.parts, fmt.Sprintf("[图片内容]\nURL: %s\n", imgURL))
	w.images = append(w.images, imgURL)
}

// flushText cleans and emits the buffered text runs as one block.
func (w *orderedWalker) flushText() {
	if len(w.textBuf) == 0 {
		return
	}
	cleaned := removeDuplicatesAndNoise(strings.Join(w.textBuf, "\n"))
	w.textBuf = nil
	if cleaned != "" {
		w.parts = append(w.parts, fmt.Sprintf("[文本内容]\n%s\n", cleaned))
	}
}

func attrValue(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

// removeDuplicatesAndNoise drops short lines, exact duplicates, and platform
// boilerplate from a text block.
func removeDuplicatesAndNoise(text string) string {
	seen := make(map[string]bool)
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) <= minLineRunes {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true
		if isNoise(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func isNoise(line string) bool {
	for _, pattern := range noisePatterns {
		if pattern.MatchString(line) {
			return true
		}
	}
	return false
}
