package platforms

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kwlam/sitechat/internal/config"
)

// RegisterRoutes mounts the widget-facing platform redirect endpoint.
func RegisterRoutes(r chi.Router, contact config.ContactSettings) {
	r.Get("/api/platforms/{platform}", func(w http.ResponseWriter, req *http.Request) {
		platform := chi.URLParam(req, "platform")

		target, err := RedirectURL(platform, contact)
		switch {
		case errors.Is(err, ErrUnknown):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown platform"})
		case errors.Is(err, ErrNotConfigured):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "platform not configured"})
		case err != nil:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to build redirect"})
		default:
			writeJSON(w, http.StatusOK, map[string]string{"platform": platform, "url": target})
		}
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("platforms: encoding response: %v", err)
	}
}
