package content

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const productSitemap = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://shop.example/product/red-mug/</loc></url>
  <url><loc>https://shop.example/product/blue-mug</loc></url>
  <url><loc>https://shop.example/about/</loc></url>
</urlset>`

func TestProductURLs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, productSitemap)
	}))
	defer srv.Close()

	idx := NewSitemapIndex([]string{srv.URL + "/product-sitemap.xml"})
	urls := idx.ProductURLs(context.Background())

	if len(urls) != 2 {
		t.Fatalf("expected 2 product URLs, got %d: %v", len(urls), urls)
	}
	if urls["red-mug"] != "https://shop.example/product/red-mug/" {
		t.Errorf("unexpected URL for red-mug: %q", urls["red-mug"])
	}
	if urls["blue-mug"] != "https://shop.example/product/blue-mug" {
		t.Errorf("unexpected URL for blue-mug: %q", urls["blue-mug"])
	}
	if _, ok := urls["about"]; ok {
		t.Error("non-product URL should be excluded")
	}
}

func TestProductURLsFollowsIndex(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/sitemap_index.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<?xml version="1.0"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>%s/product-sitemap.xml</loc></sitemap>
</sitemapindex>`, srv.URL)
	})
	mux.HandleFunc("/product-sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, productSitemap)
	})

	idx := NewSitemapIndex([]string{srv.URL + "/sitemap_index.xml"})
	urls := idx.ProductURLs(context.Background())
	if len(urls) != 2 {
		t.Fatalf("expected 2 product URLs via index, got %d", len(urls))
	}
}

func TestProductURLsFallsThroughFailures(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, productSitemap)
	}))
	defer good.Close()

	idx := NewSitemapIndex([]string{bad.URL + "/missing.xml", good.URL + "/sitemap.xml"})
	urls := idx.ProductURLs(context.Background())
	if len(urls) != 2 {
		t.Fatalf("expected fallback to second sitemap, got %d URLs", len(urls))
	}
}

func TestProductURLsAllFail(t *testing.T) {
	idx := NewSitemapIndex([]string{"http://127.0.0.1:1/sitemap.xml"})
	if urls := idx.ProductURLs(context.Background()); urls != nil {
		t.Errorf("expected nil map on total failure, got %v", urls)
	}
}

func TestTrailingSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://shop.example/product/red-mug/", "red-mug"},
		{"https://shop.example/product/red-mug", "red-mug"},
		{"red-mug", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := trailingSlug(tt.in); got != tt.want {
			t.Errorf("trailingSlug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
