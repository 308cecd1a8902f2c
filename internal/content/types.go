// Package content reads site content from the CMS and normalizes it
// into bounded plain-text snippets for the prompt.
package content

import "context"

// Kind tags where a snippet came from.
type Kind string

const (
	KindArticle  Kind = "article"
	KindPage     Kind = "page"
	KindCatalog  Kind = "catalog-item"
	KindExternal Kind = "external-url"
	KindOperator Kind = "operator-text"
)

// Snippet is one normalized piece of context, built fresh per request.
type Snippet struct {
	Kind  Kind
	Title string
	Body  string
	URL   string
}

// Document is a raw article or page as the CMS returns it.
type Document struct {
	ID        int64
	Title     string
	BodyHTML  string
	Slug      string
	Permalink string
}

// Item is one catalog entry from the commerce extension.
type Item struct {
	Name        string
	PriceHTML   string
	StockStatus string
	SKU         string
	Categories  []string
	Description string
	Permalink   string
	Sales       int
}

// Category is a catalog category.
type Category struct {
	Name        string
	Description string
	Permalink   string
}

// Source is the read-only CMS content API.
type Source interface {
	// RecentArticles returns up to limit published articles, newest first.
	RecentArticles(ctx context.Context, limit int) ([]Document, error)
	// Pages returns up to limit published pages in menu order.
	Pages(ctx context.Context, limit int) ([]Document, error)
}

// CommerceSource is the optional commerce extension's read API.
type CommerceSource interface {
	Items(ctx context.Context, limit int) ([]Item, error)
	Categories(ctx context.Context, limit int) ([]Category, error)
	// Popular returns the best-selling items for the recommendation
	// block; implementations may return nil when sales data is absent.
	Popular(ctx context.Context, limit int) ([]Item, error)
}
