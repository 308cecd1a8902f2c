package content

import (
	"context"
	"encoding/xml"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// sitemapDoc covers the two sitemap shapes: a urlset of pages and an
// index of child sitemaps.
type sitemapDoc struct {
	XMLName  xml.Name     `xml:""`
	URLs     []sitemapLoc `xml:"url"`
	Sitemaps []sitemapLoc `xml:"sitemap"`
}

type sitemapLoc struct {
	Loc string `xml:"loc"`
}

// SitemapIndex resolves catalog item URLs from the site's sitemaps. The
// sitemap's view of a permalink reflects redirects and slug rewrites the
// store database may not, so a sitemap match is preferred for link
// accuracy.
type SitemapIndex struct {
	client *http.Client
	urls   []string
}

// NewSitemapIndex creates an index over the configured sitemap URLs.
func NewSitemapIndex(sitemapURLs []string) *SitemapIndex {
	return &SitemapIndex{
		client: &http.Client{Timeout: 10 * time.Second},
		urls:   sitemapURLs,
	}
}

// ProductURLs returns sitemap entries that look like catalog item pages,
// keyed by trailing slug. Any sitemap failure yields a nil map; the
// caller falls back to store permalinks.
func (s *SitemapIndex) ProductURLs(ctx context.Context) map[string]string {
	for _, sitemapURL := range s.urls {
		locs := s.fetch(ctx, sitemapURL, 1)
		if len(locs) == 0 {
			continue
		}

		bySlug := make(map[string]string)
		for _, loc := range locs {
			if !strings.Contains(loc, "/product/") {
				continue
			}
			if slug := trailingSlug(loc); slug != "" {
				bySlug[slug] = loc
			}
		}
		if len(bySlug) > 0 {
			return bySlug
		}
	}
	return nil
}

// fetch loads one sitemap, following a sitemap index one level deep.
func (s *SitemapIndex) fetch(ctx context.Context, url string, depth int) []string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil
	}

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("content: fetching sitemap %s: %v", url, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil
	}

	var doc sitemapDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		log.Printf("content: parsing sitemap %s: %v", url, err)
		return nil
	}

	if len(doc.URLs) > 0 {
		locs := make([]string, 0, len(doc.URLs))
		for _, u := range doc.URLs {
			if loc := strings.TrimSpace(u.Loc); loc != "" {
				locs = append(locs, loc)
			}
		}
		return locs
	}

	// Sitemap index: descend into the first child only, as the original
	// crawler does.
	if len(doc.Sitemaps) > 0 && depth > 0 {
		child := strings.TrimSpace(doc.Sitemaps[0].Loc)
		if child != "" {
			return s.fetch(ctx, child, depth-1)
		}
	}
	return nil
}

func trailingSlug(u string) string {
	trimmed := strings.TrimRight(u, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return ""
}
