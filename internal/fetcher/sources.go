package fetcher

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/kwlam/sitechat/internal/datasource"
)

// Marker opens the external-source block in the system prompt. The
// composer treats everything from this line on as operator-curated
// content that truncation must preserve.
const Marker = "外部數據源："

// cacheTTL is how long one assembled external-source block is reused
// across chat messages.
const cacheTTL = 5 * time.Minute

// SourceContext assembles the external-source block for the prompt,
// caching the result process-wide keyed by the active source set.
// Concurrent requests may race to populate the cache; redundant fetches
// are idempotent and cheaper than a lock held across network I/O.
type SourceContext struct {
	fetcher *Fetcher
	store   *datasource.Store

	mu      sync.RWMutex
	key     string
	block   string
	expires time.Time
}

// NewSourceContext wires the fetcher to the data source store.
func NewSourceContext(f *Fetcher, store *datasource.Store) *SourceContext {
	return &SourceContext{fetcher: f, store: store}
}

// Block returns the concatenated context block for all active sources,
// or "" when none are configured or every fetch failed.
func (sc *SourceContext) Block(ctx context.Context) string {
	sources, err := sc.store.ListActive(ctx)
	if err != nil {
		log.Printf("fetcher: listing active sources: %v", err)
		return ""
	}
	if len(sources) == 0 {
		return ""
	}

	key := cacheKey(sources)

	sc.mu.RLock()
	if sc.key == key && time.Now().Before(sc.expires) {
		block := sc.block
		sc.mu.RUnlock()
		return block
	}
	sc.mu.RUnlock()

	block := sc.build(ctx, sources)

	sc.mu.Lock()
	sc.key = key
	sc.block = block
	sc.expires = time.Now().Add(cacheTTL)
	sc.mu.Unlock()

	return block
}

// Invalidate drops the cached block, used after the operator edits the
// source list.
func (sc *SourceContext) Invalidate() {
	sc.mu.Lock()
	sc.expires = time.Time{}
	sc.mu.Unlock()
}

func (sc *SourceContext) build(ctx context.Context, sources []datasource.DataSource) string {
	var b strings.Builder

	for _, src := range sources {
		content := sc.fetcher.Fetch(ctx, src.URL)
		if content == "" {
			// Failed or empty source: omit, keep going.
			continue
		}

		title := src.Title
		if title == "" {
			title = "無標題"
		}

		fmt.Fprintf(&b, "來源: %s\nURL: %s\n內容: %s\n\n", title, src.URL, content)

		if err := sc.store.RecordFetch(ctx, src.ID); err != nil {
			log.Printf("fetcher: recording fetch for source %d: %v", src.ID, err)
		}
	}

	if b.Len() == 0 {
		return ""
	}
	return Marker + "\n" + b.String()
}

func cacheKey(sources []datasource.DataSource) string {
	urls := make([]string, len(sources))
	for i, s := range sources {
		urls[i] = s.URL
	}
	return strings.Join(urls, "\n")
}
