// Package fetcher retrieves operator-curated external URLs and distills
// them into plain text for the prompt. A failing source never aborts
// context assembly; it is simply omitted.
package fetcher

import (
	"context"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/kwlam/sitechat/internal/textutil"
)

const (
	fetchTimeout = 15 * time.Second
	maxBodyBytes = 2 << 20 // 2MB read cap per page
	// MaxContentChars bounds the cleaned text kept per source.
	MaxContentChars = 10000

	userAgent = "sitechat/1.0 (+https://github.com/kwlam/sitechat)"
)

// Fetcher downloads and cleans external pages.
type Fetcher struct {
	client *http.Client
}

// New creates a fetcher with the bounded per-request timeout.
func New() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: fetchTimeout},
	}
}

// Fetch GETs the URL and returns cleaned plain text, or "" on any
// failure. Errors are logged, never returned: per-source failure
// semantics belong to the caller's concatenation loop.
func (f *Fetcher) Fetch(ctx context.Context, url string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Printf("fetcher: building request for %s: %v", url, err)
		return ""
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		log.Printf("fetcher: fetching %s: %v", url, err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("fetcher: %s returned HTTP %d", url, resp.StatusCode)
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		log.Printf("fetcher: reading %s: %v", url, err)
		return ""
	}

	text := ExtractText(string(body))
	text = textutil.TruncateRunes(text, MaxContentChars)
	return textutil.Clean(text)
}

// Preview fetches a short excerpt for the data-sources admin screen.
func (f *Fetcher) Preview(ctx context.Context, url string, maxChars int) string {
	return textutil.TruncateRunes(f.Fetch(ctx, url), maxChars)
}

// skippedElements are subtrees that carry no content worth prompting
// with: code, styling and page chrome.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"nav":      true,
	"header":   true,
	"footer":   true,
	"aside":    true,
	"iframe":   true,
	"svg":      true,
}

// ExtractText strips markup and boilerplate from an HTML document and
// collapses the remainder into a single whitespace-normalized string.
// Non-HTML input comes back collapsed but otherwise intact.
func ExtractText(page string) string {
	root, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return textutil.CollapseWhitespace(page)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	text := textutil.CollapseWhitespace(b.String())
	return stripBoilerplate(text)
}

var boilerplatePatterns = []*regexp.Regexp{
	// Inline JS fragments that survive tag stripping.
	regexp.MustCompile(`\(function\([^)]*\)\{[^}]*\}\)[^;]*;?`),
	// JSON-LD blobs.
	regexp.MustCompile(`\{"@context"[^}]*\}`),
	// Cookie consent banners, both locales.
	regexp.MustCompile(`(?i)(this website uses cookies|we use cookies)[^.]*\.`),
	regexp.MustCompile(`為增進您的使用體驗.{0,200}?(Accept|接受)`),
	// Skip links and copyright tails.
	regexp.MustCompile(`(?i)skip to (main )?content`),
	regexp.MustCompile(`©\s*\d{4}[^©]{0,120}?(保留所有權[利]?|all rights reserved)`),
}

func stripBoilerplate(text string) string {
	for _, p := range boilerplatePatterns {
		text = p.ReplaceAllString(text, "")
	}
	return textutil.CollapseWhitespace(text)
}
