package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// WordPressClient reads site content over the CMS REST API. It
// implements Source, and CommerceSource when the commerce extension's
// store API is enabled.
type WordPressClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewWordPressClient creates a client for the given site root
// (e.g. "https://shop.example").
func NewWordPressClient(baseURL string) *WordPressClient {
	return &WordPressClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type wpRendered struct {
	Rendered string `json:"rendered"`
}

type wpPost struct {
	ID      int64      `json:"id"`
	Link    string     `json:"link"`
	Slug    string     `json:"slug"`
	Title   wpRendered `json:"title"`
	Content wpRendered `json:"content"`
}

// RecentArticles returns up to limit published posts, newest first.
func (c *WordPressClient) RecentArticles(ctx context.Context, limit int) ([]Document, error) {
	endpoint := fmt.Sprintf("%s/wp-json/wp/v2/posts?per_page=%d&status=publish&orderby=date&order=desc",
		c.baseURL, clampPerPage(limit))
	return c.fetchDocuments(ctx, endpoint)
}

// Pages returns up to limit published pages in menu order.
func (c *WordPressClient) Pages(ctx context.Context, limit int) ([]Document, error) {
	endpoint := fmt.Sprintf("%s/wp-json/wp/v2/pages?per_page=%d&status=publish&orderby=menu_order&order=asc",
		c.baseURL, clampPerPage(limit))
	return c.fetchDocuments(ctx, endpoint)
}

func (c *WordPressClient) fetchDocuments(ctx context.Context, endpoint string) ([]Document, error) {
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var posts []wpPost
	if err := json.Unmarshal(body, &posts); err != nil {
		return nil, fmt.Errorf("decoding content response: %w", err)
	}

	docs := make([]Document, 0, len(posts))
	for _, p := range posts {
		docs = append(docs, Document{
			ID:        p.ID,
			Title:     p.Title.Rendered,
			BodyHTML:  p.Content.Rendered,
			Slug:      p.Slug,
			Permalink: p.Link,
		})
	}
	return docs, nil
}

type wcProduct struct {
	Name             string `json:"name"`
	Permalink        string `json:"permalink"`
	SKU              string `json:"sku"`
	PriceHTML        string `json:"price_html"`
	IsInStock        bool   `json:"is_in_stock"`
	Description      string `json:"description"`
	ShortDescription string `json:"short_description"`
	Categories       []struct {
		Name string `json:"name"`
	} `json:"categories"`
	TotalSales int `json:"total_sales"`
}

type wcCategory struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Permalink   string `json:"permalink"`
}

// Items returns up to limit catalog items.
func (c *WordPressClient) Items(ctx context.Context, limit int) ([]Item, error) {
	endpoint := fmt.Sprintf("%s/wp-json/wc/store/v1/products?per_page=%d", c.baseURL, clampPerPage(limit))
	return c.fetchItems(ctx, endpoint)
}

// Popular returns the best-selling items.
func (c *WordPressClient) Popular(ctx context.Context, limit int) ([]Item, error) {
	endpoint := fmt.Sprintf("%s/wp-json/wc/store/v1/products?per_page=%d&orderby=popularity", c.baseURL, clampPerPage(limit))
	return c.fetchItems(ctx, endpoint)
}

func (c *WordPressClient) fetchItems(ctx context.Context, endpoint string) ([]Item, error) {
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var products []wcProduct
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("decoding catalog response: %w", err)
	}

	items := make([]Item, 0, len(products))
	for _, p := range products {
		stock := "outofstock"
		if p.IsInStock {
			stock = "instock"
		}
		desc := p.Description
		if desc == "" {
			desc = p.ShortDescription
		}
		var cats []string
		for _, cat := range p.Categories {
			cats = append(cats, cat.Name)
		}
		items = append(items, Item{
			Name:        p.Name,
			PriceHTML:   p.PriceHTML,
			StockStatus: stock,
			SKU:         p.SKU,
			Categories:  cats,
			Description: desc,
			Permalink:   p.Permalink,
			Sales:       p.TotalSales,
		})
	}
	return items, nil
}

// Categories returns up to limit catalog categories.
func (c *WordPressClient) Categories(ctx context.Context, limit int) ([]Category, error) {
	endpoint := fmt.Sprintf("%s/wp-json/wc/store/v1/products/categories?per_page=%d", c.baseURL, clampPerPage(limit))
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var raw []wcCategory
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decoding category response: %w", err)
	}

	cats := make([]Category, 0, len(raw))
	for _, c := range raw {
		cats = append(cats, Category(c))
	}
	return cats, nil
}

func (c *WordPressClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("content API error (%d): %s", resp.StatusCode, string(detail))
	}

	return io.ReadAll(io.LimitReader(resp.Body, 8<<20))
}

// clampPerPage keeps per_page inside the REST API's accepted range.
func clampPerPage(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > 100 {
		return 100
	}
	return limit
}
