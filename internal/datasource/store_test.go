package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kwlam/sitechat/internal/db"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestCreateAndList(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "https://example.com/stores", "Store list", "Our stores...")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == 0 {
		t.Error("expected non-zero id")
	}
	if created.Status != StatusActive {
		t.Errorf("expected active status, got %q", created.Status)
	}

	// Duplicate URL is rejected by the unique constraint.
	if _, err := store.Create(ctx, "https://example.com/stores", "dup", ""); err == nil {
		t.Error("expected duplicate URL to fail")
	}

	sources, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(sources))
	}
}

func TestListActiveFiltersInactive(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	a, _ := store.Create(ctx, "https://example.com/a", "A", "")
	b, _ := store.Create(ctx, "https://example.com/b", "B", "")

	if err := store.SetStatus(ctx, b.ID, StatusInactive); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	active, err := store.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(active) != 1 || active[0].ID != a.ID {
		t.Fatalf("expected only source %d active, got %+v", a.ID, active)
	}
}

func TestRecordFetch(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	src, _ := store.Create(ctx, "https://example.com/a", "A", "")
	if err := store.RecordFetch(ctx, src.ID); err != nil {
		t.Fatalf("RecordFetch: %v", err)
	}
	if err := store.RecordFetch(ctx, src.ID); err != nil {
		t.Fatalf("RecordFetch again: %v", err)
	}

	got, err := store.Get(ctx, src.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.FetchCount != 2 {
		t.Errorf("expected fetch_count 2, got %d", got.FetchCount)
	}
	if got.LastFetched == nil {
		t.Error("expected last_fetched to be set")
	}
}

type stubPreviewer struct{ text string }

func (s stubPreviewer) Preview(ctx context.Context, url string, maxChars int) string { return s.text }

type countingCache struct{ calls int }

func (c *countingCache) Invalidate() { c.calls++ }

func TestRoutes(t *testing.T) {
	store := setupTestStore(t)
	cache := &countingCache{}

	r := chi.NewRouter()
	RegisterRoutes(r, store, stubPreviewer{text: "preview text"}, cache)
	ts := httptest.NewServer(r)
	defer ts.Close()

	// Create.
	body, _ := json.Marshal(map[string]string{"url": "https://example.com/info", "title": "Info"})
	resp, err := http.Post(ts.URL+"/api/admin/sources", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created DataSource
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()
	if created.Preview != "preview text" {
		t.Errorf("expected preview from previewer, got %q", created.Preview)
	}

	// Reject malformed URL.
	body, _ = json.Marshal(map[string]string{"url": "not a url"})
	resp, _ = http.Post(ts.URL+"/api/admin/sources", "application/json", bytes.NewReader(body))
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed url, got %d", resp.StatusCode)
	}

	// List.
	resp, _ = http.Get(ts.URL + "/api/admin/sources")
	var listed []DataSource
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()
	if len(listed) != 1 {
		t.Fatalf("expected 1 listed source, got %d", len(listed))
	}

	// Only the successful create touched the cache.
	if cache.calls != 1 {
		t.Errorf("expected 1 cache invalidation, got %d", cache.calls)
	}
}
