package datasource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kwlam/sitechat/internal/textutil"
)

// Previewer fetches a short content preview when a source is created.
// Implemented by the external source fetcher.
type Previewer interface {
	Preview(ctx context.Context, url string, maxChars int) string
}

// Invalidator drops any cached external-source block after the source
// list changes. Implemented by the fetcher's SourceContext; may be nil.
type Invalidator interface {
	Invalidate()
}

// RegisterRoutes mounts data source admin endpoints under
// /api/admin/sources on the given router.
func RegisterRoutes(r chi.Router, store *Store, previewer Previewer, cache Invalidator) {
	r.Route("/api/admin/sources", func(r chi.Router) {
		r.Get("/", handleList(store))
		r.Post("/", handleCreate(store, previewer, cache))
		r.Delete("/{id}", handleDelete(store, cache))
		r.Put("/{id}/status", handleSetStatus(store, cache))
	})
}

func invalidate(cache Invalidator) {
	if cache != nil {
		cache.Invalidate()
	}
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sources, err := store.List(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if sources == nil {
			sources = []DataSource{}
		}
		writeJSON(w, http.StatusOK, sources)
	}
}

type createRequest struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

func handleCreate(store *Store, previewer Previewer, cache Invalidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		parsed, err := url.ParseRequestURI(req.URL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			http.Error(w, "invalid source url", http.StatusBadRequest)
			return
		}

		title := textutil.Clean(req.Title)
		preview := ""
		if previewer != nil {
			preview = previewer.Preview(r.Context(), req.URL, 200)
		}

		source, err := store.Create(r.Context(), req.URL, title, preview)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		invalidate(cache)
		writeJSON(w, http.StatusCreated, source)
	}
}

func handleDelete(store *Store, cache Invalidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}
		if err := store.Delete(r.Context(), id); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		invalidate(cache)
		w.WriteHeader(http.StatusNoContent)
	}
}

type statusRequest struct {
	Status string `json:"status"`
}

func handleSetStatus(store *Store, cache Invalidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}

		var req statusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if err := store.SetStatus(r.Context(), id, req.Status); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		invalidate(cache)
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
