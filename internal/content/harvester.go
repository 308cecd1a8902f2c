package content

import (
	"context"
	"log"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/kwlam/sitechat/internal/config"
	"github.com/kwlam/sitechat/internal/textutil"
)

// ExternalContext supplies the operator-curated external-source block.
// Implemented by the fetcher's SourceContext.
type ExternalContext interface {
	Block(ctx context.Context) string
}

// Harvest is everything gathered for one completion request. The
// composer merges the blocks by fixed position, so gathering order
// never affects the prompt.
type Harvest struct {
	Articles   []Snippet
	Pages      []Snippet
	Items      []Item
	Categories []Category
	Popular    []Item
	External   string
}

// Harvester reads site content and normalizes it into snippets.
type Harvester struct {
	source     Source
	commerce   CommerceSource
	sitemap    *SitemapIndex
	external   ExternalContext
	classifier *Classifier
	cfg        config.HarvestSettings
}

// NewHarvester wires the content sources together. commerce, sitemap and
// external may be nil when the corresponding feature is not configured.
func NewHarvester(source Source, commerce CommerceSource, sitemap *SitemapIndex, external ExternalContext, cfg config.HarvestSettings) *Harvester {
	return &Harvester{
		source:     source,
		commerce:   commerce,
		sitemap:    sitemap,
		external:   external,
		classifier: NewClassifier(cfg.PageKeywords, cfg.ImportantThreshold),
		cfg:        cfg,
	}
}

// Gather runs all sub-harvests. With parallel set, the four independent
// fetches run concurrently; the merged result is identical either way.
// Individual harvest failures degrade to empty blocks, never abort.
func (h *Harvester) Gather(ctx context.Context) Harvest {
	var out Harvest

	if !h.cfg.Parallel {
		out.Articles = h.Articles(ctx)
		out.Pages = h.Pages(ctx)
		out.Items, out.Categories, out.Popular = h.Catalog(ctx)
		if h.external != nil {
			out.External = h.external.Block(ctx)
		}
		return out
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { out.Articles = h.Articles(gctx); return nil })
	g.Go(func() error { out.Pages = h.Pages(gctx); return nil })
	g.Go(func() error { out.Items, out.Categories, out.Popular = h.Catalog(gctx); return nil })
	g.Go(func() error {
		if h.external != nil {
			out.External = h.external.Block(gctx)
		}
		return nil
	})
	g.Wait()
	return out
}

// Articles harvests the most recently published articles.
func (h *Harvester) Articles(ctx context.Context) []Snippet {
	if h.cfg.MaxArticles == 0 {
		return nil
	}
	docs, err := h.source.RecentArticles(ctx, h.cfg.MaxArticles)
	if err != nil {
		log.Printf("content: harvesting articles: %v", err)
		return nil
	}

	snippets := make([]Snippet, 0, len(docs))
	for _, doc := range docs {
		snippets = append(snippets, Snippet{
			Kind:  KindArticle,
			Title: textutil.Clean(doc.Title),
			Body:  textutil.TrimWords(textutil.Clean(stripHTML(doc.BodyHTML)), h.cfg.ArticleWords),
			URL:   doc.Permalink,
		})
	}
	return snippets
}

// Pages harvests published pages, important ones first. Important pages
// get the larger word budget; when fewer than MinImportantPages qualify,
// ordinary pages backfill the shortage, and the total is capped at
// MaxPages.
func (h *Harvester) Pages(ctx context.Context) []Snippet {
	if h.cfg.MaxPages == 0 {
		return nil
	}

	// Read generously, then classify down to the cap.
	fetchLimit := h.cfg.MaxPages * 5
	if fetchLimit < 50 {
		fetchLimit = 50
	}
	docs, err := h.source.Pages(ctx, fetchLimit)
	if err != nil {
		log.Printf("content: harvesting pages: %v", err)
		return nil
	}

	type classified struct {
		doc       Document
		body      string
		important bool
	}

	var key, other []classified
	for _, doc := range docs {
		body := textutil.Clean(stripHTML(doc.BodyHTML))
		c := classified{doc: doc, body: body}
		if h.classifier.Important(doc.Title, doc.Slug, body) {
			c.important = true
			key = append(key, c)
		} else {
			other = append(other, c)
		}
	}

	for len(key) < h.cfg.MinImportantPages && len(other) > 0 {
		key = append(key, other[0])
		other = other[1:]
	}
	if len(key) > h.cfg.MaxPages {
		key = key[:h.cfg.MaxPages]
	}

	snippets := make([]Snippet, 0, len(key))
	for _, c := range key {
		budget := h.cfg.PageWords
		if c.important {
			budget = h.cfg.ImportantPageWords
		}
		snippets = append(snippets, Snippet{
			Kind:  KindPage,
			Title: textutil.Clean(c.doc.Title),
			Body:  textutil.TrimWords(c.body, budget),
			URL:   c.doc.Permalink,
		})
	}
	return snippets
}

// Catalog harvests commerce items, categories and the popular block.
// Item permalinks prefer sitemap-discovered URLs for link accuracy.
func (h *Harvester) Catalog(ctx context.Context) ([]Item, []Category, []Item) {
	if h.commerce == nil || h.cfg.MaxProducts == 0 {
		return nil, nil, nil
	}

	items, err := h.commerce.Items(ctx, h.cfg.MaxProducts)
	if err != nil {
		log.Printf("content: harvesting catalog: %v", err)
		return nil, nil, nil
	}

	var sitemapURLs map[string]string
	if h.sitemap != nil {
		sitemapURLs = h.sitemap.ProductURLs(ctx)
	}

	for i := range items {
		items[i].Name = textutil.Clean(items[i].Name)
		items[i].PriceHTML = textutil.Clean(stripHTML(items[i].PriceHTML))
		items[i].Description = textutil.TrimWords(textutil.Clean(stripHTML(items[i].Description)), 50)
		if loc, ok := sitemapURLs[trailingSlug(items[i].Permalink)]; ok {
			items[i].Permalink = loc
		}
	}

	categories, err := h.commerce.Categories(ctx, 20)
	if err != nil {
		log.Printf("content: harvesting categories: %v", err)
	}
	for i := range categories {
		categories[i].Name = textutil.Clean(categories[i].Name)
		categories[i].Description = textutil.Clean(stripHTML(categories[i].Description))
	}

	popular, err := h.commerce.Popular(ctx, 10)
	if err != nil {
		log.Printf("content: harvesting popular items: %v", err)
	}
	for i := range popular {
		popular[i].Name = textutil.Clean(popular[i].Name)
		popular[i].PriceHTML = textutil.Clean(stripHTML(popular[i].PriceHTML))
	}

	return items, categories, popular
}

// stripHTML removes markup from a CMS-rendered body without the
// fetcher's boilerplate heuristics; CMS bodies carry no page chrome.
func stripHTML(fragment string) string {
	if !strings.ContainsRune(fragment, '<') {
		return textutil.CollapseWhitespace(fragment)
	}

	root, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return textutil.CollapseWhitespace(fragment)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
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

	return textutil.CollapseWhitespace(b.String())
}
