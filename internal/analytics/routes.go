package analytics

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the admin analytics endpoints.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Route("/api/admin/analytics", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			days := 30
			if raw := req.URL.Query().Get("days"); raw != "" {
				n, err := strconv.Atoi(raw)
				if err != nil || n < 1 || n > 365 {
					writeJSON(w, http.StatusBadRequest, map[string]string{"error": "days must be between 1 and 365"})
					return
				}
				days = n
			}

			sum, err := store.Window(req.Context(), days)
			if err != nil {
				log.Printf("analytics: loading summary: %v", err)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load analytics"})
				return
			}
			writeJSON(w, http.StatusOK, sum)
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("analytics: encoding response: %v", err)
	}
}
