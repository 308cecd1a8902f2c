package content

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/kwlam/sitechat/internal/config"
)

type stubSource struct {
	articles []Document
	pages    []Document
	err      error
}

func (s *stubSource) RecentArticles(ctx context.Context, limit int) ([]Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	if limit < len(s.articles) {
		return s.articles[:limit], nil
	}
	return s.articles, nil
}

func (s *stubSource) Pages(ctx context.Context, limit int) ([]Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	if limit < len(s.pages) {
		return s.pages[:limit], nil
	}
	return s.pages, nil
}

type stubCommerce struct {
	items      []Item
	categories []Category
	popular    []Item
}

func (s *stubCommerce) Items(ctx context.Context, limit int) ([]Item, error) {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *stubCommerce) Categories(ctx context.Context, limit int) ([]Category, error) {
	out := make([]Category, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

func (s *stubCommerce) Popular(ctx context.Context, limit int) ([]Item, error) {
	out := make([]Item, len(s.popular))
	copy(out, s.popular)
	return out, nil
}

type stubExternal struct{ block string }

func (s *stubExternal) Block(ctx context.Context) string { return s.block }

func testHarvestSettings() config.HarvestSettings {
	cfg := config.DefaultSettings().Harvest
	cfg.Parallel = false
	return cfg
}

func TestArticlesStripMarkup(t *testing.T) {
	src := &stubSource{articles: []Document{
		{
			Title:     "Opening <em>hours</em>",
			BodyHTML:  "<p>We open at <strong>9am</strong>.</p><script>alert(1)</script>",
			Permalink: "https://shop.example/opening-hours/",
		},
	}}
	h := NewHarvester(src, nil, nil, nil, testHarvestSettings())

	got := h.Articles(context.Background())
	if len(got) != 1 {
		t.Fatalf("expected 1 snippet, got %d", len(got))
	}
	if got[0].Body != "We open at 9am ." {
		t.Errorf("unexpected body: %q", got[0].Body)
	}
	if strings.Contains(got[0].Body, "alert") {
		t.Error("script content leaked into snippet body")
	}
	if got[0].Kind != KindArticle {
		t.Errorf("Kind = %q, want %q", got[0].Kind, KindArticle)
	}
}

func TestArticlesSourceError(t *testing.T) {
	h := NewHarvester(&stubSource{err: errors.New("boom")}, nil, nil, nil, testHarvestSettings())
	if got := h.Articles(context.Background()); got != nil {
		t.Errorf("expected nil on source error, got %v", got)
	}
}

func TestPagesImportantFirst(t *testing.T) {
	src := &stubSource{pages: []Document{
		{Title: "Blog", Slug: "blog", BodyHTML: "Latest updates."},
		{Title: "Contact Us", Slug: "contact", BodyHTML: "Call us or visit the shop. 地址: Main St 1."},
		{Title: "Press", Slug: "press", BodyHTML: "Media kit."},
	}}
	cfg := testHarvestSettings()
	cfg.MaxPages = 2
	cfg.MinImportantPages = 2
	h := NewHarvester(src, nil, nil, nil, cfg)

	got := h.Pages(context.Background())
	if len(got) != 2 {
		t.Fatalf("expected 2 snippets, got %d", len(got))
	}
	if got[0].Title != "Contact Us" {
		t.Errorf("important page should come first, got %q", got[0].Title)
	}
	if got[1].Title != "Blog" {
		t.Errorf("backfill should follow source order, got %q", got[1].Title)
	}
}

func TestPagesBackfillToMinimum(t *testing.T) {
	src := &stubSource{pages: []Document{
		{Title: "Blog", Slug: "blog", BodyHTML: "Latest updates."},
		{Title: "Press", Slug: "press", BodyHTML: "Media kit."},
		{Title: "Careers", Slug: "careers", BodyHTML: "Join us."},
	}}
	cfg := testHarvestSettings()
	cfg.MaxPages = 10
	cfg.MinImportantPages = 2
	h := NewHarvester(src, nil, nil, nil, cfg)

	got := h.Pages(context.Background())
	if len(got) != 2 {
		t.Fatalf("expected backfill up to the minimum of 2, got %d", len(got))
	}
	for _, s := range got {
		if s.Kind != KindPage {
			t.Errorf("Kind = %q, want %q", s.Kind, KindPage)
		}
	}
}

func TestPagesCap(t *testing.T) {
	var pages []Document
	for i := 0; i < 30; i++ {
		pages = append(pages, Document{
			Title:    fmt.Sprintf("Contact branch %d", i),
			Slug:     fmt.Sprintf("contact-%d", i),
			BodyHTML: "Phone and address inside.",
		})
	}
	cfg := testHarvestSettings()
	cfg.MaxPages = 4
	h := NewHarvester(&stubSource{pages: pages}, nil, nil, nil, cfg)

	if got := h.Pages(context.Background()); len(got) != 4 {
		t.Errorf("expected cap of 4 pages, got %d", len(got))
	}
}

func TestCatalogPrefersSitemapURLs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://cdn.example/product/red-mug/</loc></url>
</urlset>`)
	}))
	defer srv.Close()

	commerce := &stubCommerce{
		items: []Item{
			{Name: "Red Mug", Permalink: "https://shop.example/product/red-mug/", PriceHTML: "<span>$10</span>"},
			{Name: "Green Mug", Permalink: "https://shop.example/product/green-mug/"},
		},
	}
	h := NewHarvester(&stubSource{}, commerce, NewSitemapIndex([]string{srv.URL}), nil, testHarvestSettings())

	items, _, _ := h.Catalog(context.Background())
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Permalink != "https://cdn.example/product/red-mug/" {
		t.Errorf("sitemap URL not preferred: %q", items[0].Permalink)
	}
	if items[1].Permalink != "https://shop.example/product/green-mug/" {
		t.Errorf("unmatched item should keep store permalink: %q", items[1].Permalink)
	}
	if items[0].PriceHTML != "$10" {
		t.Errorf("price markup not stripped: %q", items[0].PriceHTML)
	}
}

func TestCatalogWithoutCommerce(t *testing.T) {
	h := NewHarvester(&stubSource{}, nil, nil, nil, testHarvestSettings())
	items, cats, popular := h.Catalog(context.Background())
	if items != nil || cats != nil || popular != nil {
		t.Error("expected empty catalog without a commerce source")
	}
}

func TestGatherParallelMatchesSequential(t *testing.T) {
	src := &stubSource{
		articles: []Document{{Title: "News", BodyHTML: "<p>Fresh stock arrived.</p>"}},
		pages: []Document{
			{Title: "Contact", Slug: "contact", BodyHTML: "Visit the shop."},
			{Title: "Blog", Slug: "blog", BodyHTML: "Updates."},
		},
	}
	commerce := &stubCommerce{
		items:      []Item{{Name: "Mug", Permalink: "https://shop.example/product/mug/"}},
		categories: []Category{{Name: "Drinkware"}},
		popular:    []Item{{Name: "Mug", Sales: 12}},
	}
	ext := &stubExternal{block: "外部數據源：\n來源: Promo\n"}

	cfg := testHarvestSettings()
	seq := NewHarvester(src, commerce, nil, ext, cfg).Gather(context.Background())

	cfg.Parallel = true
	par := NewHarvester(src, commerce, nil, ext, cfg).Gather(context.Background())

	if !reflect.DeepEqual(seq, par) {
		t.Errorf("parallel harvest differs from sequential:\nseq: %+v\npar: %+v", seq, par)
	}
	if par.External != ext.block {
		t.Errorf("external block missing: %q", par.External)
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<p>hello <b>world</b></p>", "hello world"},
		{"plain   text", "plain text"},
		{"<div><style>.x{}</style>visible</div>", "visible"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := stripHTML(tt.in); got != tt.want {
			t.Errorf("stripHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
